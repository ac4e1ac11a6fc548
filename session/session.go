/*
Package session owns the live state of one salary-estimation session.

PURPOSE:
  The controller between the transport layer and the pure engine. It
  holds the income/deduction records, the bonus-rule list, the grade
  selection, UI preferences, and the trust-projection parameters.
  Every mutation runs the same ordered pipeline:

    payroll derivation -> totals composition -> trust projection

  then mirrors the new state to the injected Store. Recomputation is
  synchronous and deterministic; there are no reactive subscriptions
  and no way to form an update loop.

CONCURRENCY:
  There is exactly one logical session, but the HTTP server calls in
  from many goroutines, so a mutex serializes access. Each mutation
  completes (including recompute and persist) before the next begins.

ERROR POLICY:
  Mutations only fail on domain errors (unknown field, unknown grade,
  unknown bonus id, missing confirmation). Storage errors never fail a
  mutation: they are logged and the in-memory state remains
  authoritative.
*/
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	gojson "github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/warp/salary-engine/engine"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrUnknownField is returned for a field name outside the record.
	ErrUnknownField = errors.New("unknown record field")
	// ErrUnknownGrade is returned for a grade code not in the ladder.
	ErrUnknownGrade = errors.New("unknown salary grade")
	// ErrUnknownBonus is returned for a bonus id not in the list.
	ErrUnknownBonus = errors.New("unknown bonus rule")
	// ErrConfirmationRequired gates the destructive reset.
	ErrConfirmationRequired = errors.New("reset requires explicit confirmation")
	// ErrFieldNotEditable is returned for derived or mirrored fields.
	ErrFieldNotEditable = errors.New("field is derived and not editable")
)

// =============================================================================
// SESSION
// =============================================================================

// State is a read-only snapshot of the full session.
type State struct {
	Income         engine.IncomeRecord
	Deduction      engine.DeductionRecord
	Bonuses        []engine.BonusRule
	GradeCode      string
	DarkMode       bool
	DisclaimerSeen bool
	TrustParams    engine.TrustParams
	Results        engine.ComputedResults
	Projection     engine.TrustProjection
}

// Session is the single mutable state holder.
type Session struct {
	mu    sync.Mutex
	store Store
	log   *zap.Logger

	income         engine.IncomeRecord
	deduction      engine.DeductionRecord
	bonuses        []engine.BonusRule
	gradeCode      string
	darkMode       bool
	disclaimerSeen bool
	trust          engine.TrustParams

	results    engine.ComputedResults
	projection engine.TrustProjection
}

// New builds a session from the store, or from defaults when the
// store is empty or carries a stale schema version.
func New(ctx context.Context, store Store, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Session{store: store, log: log}
	s.load(ctx)
	s.recompute()
	s.persist(ctx)
	return s
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() State {
	bonuses := make([]engine.BonusRule, len(s.bonuses))
	copy(bonuses, s.bonuses)

	// The overrides map must not escape the mutex: callers range over
	// snapshots lock-free while mutations keep writing to the live map.
	trust := s.trust
	trust.ManualStructuralRaises = copyOverrides(s.trust.ManualStructuralRaises)

	return State{
		Income:         s.income,
		Deduction:      s.deduction,
		Bonuses:        bonuses,
		GradeCode:      s.gradeCode,
		DarkMode:       s.darkMode,
		DisclaimerSeen: s.disclaimerSeen,
		TrustParams:    trust,
		Results:        s.results,
		Projection:     s.projection,
	}
}

func copyOverrides(m map[int]decimal.Decimal) map[int]decimal.Decimal {
	if m == nil {
		return nil
	}
	out := make(map[int]decimal.Decimal, len(m))
	for year, amount := range m {
		out[year] = amount
	}
	return out
}

// =============================================================================
// LOAD / PERSIST / RESET
// =============================================================================

func (s *Session) applyDefaults() {
	s.income = engine.DefaultIncome()
	s.deduction = engine.DefaultDeduction()
	s.bonuses = engine.DefaultBonusRules()
	s.gradeCode = ""
	s.darkMode = false
	s.disclaimerSeen = false
	s.trust = engine.DefaultTrustParams()
}

// load reads persisted state, wiping it first on a version mismatch.
func (s *Session) load(ctx context.Context) {
	s.applyDefaults()

	raw, ok, err := s.store.Get(ctx, KeySchemaVersion)
	if err != nil {
		s.log.Warn("reading schema version failed, using defaults", zap.Error(err))
		return
	}
	if !ok || string(raw) != quoted(SchemaVersion) {
		if ok {
			s.log.Info("schema version mismatch, discarding persisted state",
				zap.String("stored", string(raw)), zap.String("current", SchemaVersion))
		}
		s.wipe(ctx)
		return
	}

	loadKey(ctx, s, KeyIncome, &s.income)
	loadKey(ctx, s, KeyDeduction, &s.deduction)
	loadKey(ctx, s, KeyBonuses, &s.bonuses)
	loadKey(ctx, s, KeyGradeCode, &s.gradeCode)
	loadKey(ctx, s, KeyDarkMode, &s.darkMode)
	loadKey(ctx, s, KeyDisclaimerSeen, &s.disclaimerSeen)
	loadKey(ctx, s, KeyTrustParams, &s.trust)
}

// loadKey unmarshals one key into dst, leaving the default in place on
// any storage or decode failure.
func loadKey[T any](ctx context.Context, s *Session, key string, dst *T) {
	raw, ok, err := s.store.Get(ctx, key)
	if err != nil {
		s.log.Warn("reading persisted key failed", zap.String("key", key), zap.Error(err))
		return
	}
	if !ok {
		return
	}
	var v T
	if err := gojson.Unmarshal(raw, &v); err != nil {
		s.log.Warn("decoding persisted key failed", zap.String("key", key), zap.Error(err))
		return
	}
	*dst = v
}

// persist mirrors the full state to the store, best effort.
func (s *Session) persist(ctx context.Context) {
	writeKey(ctx, s, KeySchemaVersion, SchemaVersion)
	writeKey(ctx, s, KeyIncome, s.income)
	writeKey(ctx, s, KeyDeduction, s.deduction)
	writeKey(ctx, s, KeyBonuses, s.bonuses)
	writeKey(ctx, s, KeyGradeCode, s.gradeCode)
	writeKey(ctx, s, KeyDarkMode, s.darkMode)
	writeKey(ctx, s, KeyDisclaimerSeen, s.disclaimerSeen)
	writeKey(ctx, s, KeyTrustParams, s.trust)
}

func writeKey(ctx context.Context, s *Session, key string, v any) {
	data, err := gojson.Marshal(v)
	if err != nil {
		s.log.Warn("encoding state failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.store.Set(ctx, key, data); err != nil {
		s.log.Warn("persisting state failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *Session) wipe(ctx context.Context) {
	for _, key := range allKeys {
		if err := s.store.Delete(ctx, key); err != nil {
			s.log.Warn("clearing persisted key failed", zap.String("key", key), zap.Error(err))
		}
	}
}

// Reset clears persisted state and restores defaults. Destructive, so
// it demands explicit confirmation.
func (s *Session) Reset(ctx context.Context, confirm bool) error {
	if !confirm {
		return ErrConfirmationRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.wipe(ctx)
	s.applyDefaults()
	s.recompute()
	s.persist(ctx)
	s.log.Info("session reset to defaults")
	return nil
}

// =============================================================================
// RECOMPUTE PIPELINE
// =============================================================================

// recompute runs the ordered derivation pipeline. Callers hold the lock.
func (s *Session) recompute() {
	s.income, s.deduction = engine.DerivePayroll(s.income, s.deduction)
	s.results = engine.ComposeResults(s.income, s.deduction, s.bonuses)
	s.projection = engine.ProjectTrust(s.trust)
}

// mutate wraps the lock/recompute/persist cycle around a state change.
func (s *Session) mutate(ctx context.Context, fn func() error) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := fn(); err != nil {
		return State{}, err
	}
	s.recompute()
	s.persist(ctx)
	return s.snapshotLocked(), nil
}

// =============================================================================
// RECORD MUTATIONS
// =============================================================================

// SetIncomeField updates a manual income field from raw user input.
func (s *Session) SetIncomeField(ctx context.Context, field, raw string) (State, error) {
	return s.mutate(ctx, func() error {
		cell := engine.ParseCell(raw)
		switch field {
		case "base":
			s.income.Base = cell
		case "level":
			s.setLevelLocked(cell)
		case "meal":
			s.income.Meal = cell
		case "transport":
			s.income.Transport = cell
		case "attendance", "stockBonus", "retentionBonus":
			return fmt.Errorf("%w: %s", ErrFieldNotEditable, field)
		default:
			return fmt.Errorf("%w: %s", ErrUnknownField, field)
		}
		return nil
	})
}

// SetDeductionField updates a manual deduction field.
func (s *Session) SetDeductionField(ctx context.Context, field, raw string) (State, error) {
	return s.mutate(ctx, func() error {
		cell := engine.ParseCell(raw)
		switch field {
		case "unionMutual":
			s.deduction.UnionMutual = cell
		case "labor":
			s.deduction.Labor = cell
		case "dependents":
			s.deduction.Dependents = cell
		case "voluntaryPensionRate":
			s.deduction.VoluntaryPensionRate = cell
		case "unionFee", "welfare", "health", "stockTrust", "stockBonus", "retentionBonus", "voluntaryPension":
			return fmt.Errorf("%w: %s", ErrFieldNotEditable, field)
		default:
			return fmt.Errorf("%w: %s", ErrUnknownField, field)
		}
		return nil
	})
}

// SelectGrade picks a grade code from the ladder and overwrites the
// level allowance with its table value. GradeCustom leaves the
// allowance untouched.
func (s *Session) SelectGrade(ctx context.Context, code string) (State, error) {
	return s.mutate(ctx, func() error {
		if code == engine.GradeCustom || code == "" {
			s.gradeCode = code
			return nil
		}
		opt, ok := engine.GradeByCode(code)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownGrade, code)
		}
		s.gradeCode = code
		s.income.Level = engine.NewCell(opt.Value)
		return nil
	})
}

// setLevelLocked sets the allowance amount directly and re-selects a
// matching grade code, or marks the selection custom.
func (s *Session) setLevelLocked(cell engine.Cell) {
	s.income.Level = cell
	if cell.IsBlank() {
		return
	}
	if opt, ok := engine.GradeByValue(cell.Decimal()); ok {
		s.gradeCode = opt.Code
	} else {
		s.gradeCode = engine.GradeCustom
	}
}

// =============================================================================
// BONUS MUTATIONS
// =============================================================================

// AddBonus appends a fresh rule with the next id.
func (s *Session) AddBonus(ctx context.Context) (State, error) {
	return s.mutate(ctx, func() error {
		s.bonuses = append(s.bonuses, engine.BonusRule{
			ID:   engine.NextBonusID(s.bonuses),
			Name: "New bonus",
			Type: engine.BonusFixed,
		})
		return nil
	})
}

// BonusPatch carries optional field edits for one rule.
type BonusPatch struct {
	Name  *string
	Type  *engine.BonusType
	Value *string
}

// UpdateBonus edits a rule by id.
func (s *Session) UpdateBonus(ctx context.Context, id int, patch BonusPatch) (State, error) {
	return s.mutate(ctx, func() error {
		for i := range s.bonuses {
			if s.bonuses[i].ID != id {
				continue
			}
			if patch.Name != nil {
				s.bonuses[i].Name = *patch.Name
			}
			if patch.Type != nil {
				s.bonuses[i].Type = *patch.Type
			}
			if patch.Value != nil {
				s.bonuses[i].Value = engine.ParseCell(*patch.Value)
			}
			return nil
		}
		return fmt.Errorf("%w: id %d", ErrUnknownBonus, id)
	})
}

// RemoveBonus deletes a rule by id.
func (s *Session) RemoveBonus(ctx context.Context, id int) (State, error) {
	return s.mutate(ctx, func() error {
		for i := range s.bonuses {
			if s.bonuses[i].ID == id {
				s.bonuses = append(s.bonuses[:i], s.bonuses[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("%w: id %d", ErrUnknownBonus, id)
	})
}

// =============================================================================
// TRUST PROJECTION MUTATIONS
// =============================================================================

// SetTrustParams replaces the projection parameters wholesale.
func (s *Session) SetTrustParams(ctx context.Context, params engine.TrustParams) (State, error) {
	return s.mutate(ctx, func() error {
		// Manual overrides are managed through their own operations;
		// keep the existing map when the caller omits one, and never
		// adopt the caller's map (they may keep mutating it).
		if params.ManualStructuralRaises == nil {
			params.ManualStructuralRaises = s.trust.ManualStructuralRaises
		} else {
			params.ManualStructuralRaises = copyOverrides(params.ManualStructuralRaises)
		}
		s.trust = params
		return nil
	})
}

// SetStructuralOverride pins the structural raise for one year.
func (s *Session) SetStructuralOverride(ctx context.Context, year int, amount decimal.Decimal) (State, error) {
	return s.mutate(ctx, func() error {
		if s.trust.ManualStructuralRaises == nil {
			s.trust.ManualStructuralRaises = map[int]decimal.Decimal{}
		}
		s.trust.ManualStructuralRaises[year] = amount
		return nil
	})
}

// ClearStructuralOverride returns a year to its policy schedule.
func (s *Session) ClearStructuralOverride(ctx context.Context, year int) (State, error) {
	return s.mutate(ctx, func() error {
		delete(s.trust.ManualStructuralRaises, year)
		return nil
	})
}

// =============================================================================
// PREFERENCES
// =============================================================================

// SetPreferences updates the UI flags; nil fields are untouched.
func (s *Session) SetPreferences(ctx context.Context, darkMode, disclaimerSeen *bool) (State, error) {
	return s.mutate(ctx, func() error {
		if darkMode != nil {
			s.darkMode = *darkMode
		}
		if disclaimerSeen != nil {
			s.disclaimerSeen = *disclaimerSeen
		}
		return nil
	})
}

func quoted(s string) string { return `"` + s + `"` }
