package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/salary-engine/engine"
	"github.com/warp/salary-engine/session"
	"github.com/warp/salary-engine/store/memory"
)

func newSession(t *testing.T) (*session.Session, *memory.Store) {
	t.Helper()
	st := memory.New()
	return session.New(context.Background(), st, nil), st
}

func TestSession_DefaultsOnEmptyStore(t *testing.T) {
	// GIVEN an empty store
	s, st := newSession(t)

	// THEN the session starts from defaults, fully derived
	state := s.Snapshot()
	assert.Equal(t, "50020", state.Income.Base.String())
	assert.Equal(t, "1667", state.Income.Attendance.String())
	assert.True(t, state.Results.MonthlyNet.Equal(decimal.NewFromInt(49046)))
	assert.Len(t, state.Bonuses, 6)

	// AND the defaults are mirrored to the store with a version marker
	raw, ok, err := st.Get(context.Background(), "salary_schema_version")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `"1"`, string(raw))
}

func TestSession_PersistenceRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := memory.New()

	// GIVEN a session with edits
	s1 := session.New(ctx, st, nil)
	_, err := s1.SetIncomeField(ctx, "base", "30000")
	require.NoError(t, err)
	_, err = s1.SelectGrade(ctx, "15")
	require.NoError(t, err)
	_, err = s1.SetPreferences(ctx, boolPtr(true), nil)
	require.NoError(t, err)

	// WHEN a fresh session loads from the same store
	s2 := session.New(ctx, st, nil)

	// THEN the edited state survives, blanks and all
	state := s2.Snapshot()
	assert.Equal(t, "30000", state.Income.Base.String())
	assert.Equal(t, "32370", state.Income.Level.String())
	assert.Equal(t, "15", state.GradeCode)
	assert.True(t, state.DarkMode)
	assert.Equal(t, s1.Snapshot().Results, state.Results)
}

func TestSession_VersionMismatchDiscardsState(t *testing.T) {
	ctx := context.Background()
	st := memory.New()

	// GIVEN persisted state under a stale schema version
	require.NoError(t, st.Set(ctx, "salary_schema_version", []byte(`"0"`)))
	require.NoError(t, st.Set(ctx, "salary_income", []byte(`{"base":99999}`)))

	// WHEN a session loads
	s := session.New(ctx, st, nil)

	// THEN the stale state is gone and defaults rule
	state := s.Snapshot()
	assert.Equal(t, "50020", state.Income.Base.String())

	raw, ok, err := st.Get(ctx, "salary_schema_version")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `"1"`, string(raw))
}

func TestSession_CorruptKeyFallsBackToDefault(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	session.New(ctx, st, nil)
	require.NoError(t, st.Set(ctx, "salary_bonuses", []byte(`{not json`)))

	s := session.New(ctx, st, nil)
	assert.Len(t, s.Snapshot().Bonuses, 6, "corrupt key should fall back, not fail")
}

func TestSession_ResetRequiresConfirmation(t *testing.T) {
	ctx := context.Background()
	s, _ := newSession(t)
	_, err := s.SetIncomeField(ctx, "base", "12345")
	require.NoError(t, err)

	// WHEN reset is attempted without confirmation
	err = s.Reset(ctx, false)

	// THEN nothing changes
	assert.ErrorIs(t, err, session.ErrConfirmationRequired)
	assert.Equal(t, "12345", s.Snapshot().Income.Base.String())

	// AND a confirmed reset restores defaults
	require.NoError(t, s.Reset(ctx, true))
	assert.Equal(t, "50020", s.Snapshot().Income.Base.String())
}

func TestSession_GradeSelection(t *testing.T) {
	ctx := context.Background()
	s, _ := newSession(t)

	// Selecting a ladder grade overwrites the allowance.
	state, err := s.SelectGrade(ctx, "18")
	require.NoError(t, err)
	assert.Equal(t, "44735", state.Income.Level.String())
	assert.Equal(t, "18", state.GradeCode)

	// Typing an amount that matches a grade re-selects it.
	state, err = s.SetIncomeField(ctx, "level", "2360")
	require.NoError(t, err)
	assert.Equal(t, "01", state.GradeCode)

	// Typing anything else marks the selection custom.
	state, err = s.SetIncomeField(ctx, "level", "12345")
	require.NoError(t, err)
	assert.Equal(t, engine.GradeCustom, state.GradeCode)

	_, err = s.SelectGrade(ctx, "99")
	assert.ErrorIs(t, err, session.ErrUnknownGrade)
}

func TestSession_FieldValidation(t *testing.T) {
	ctx := context.Background()
	s, _ := newSession(t)

	_, err := s.SetIncomeField(ctx, "attendance", "999")
	assert.ErrorIs(t, err, session.ErrFieldNotEditable)

	_, err = s.SetIncomeField(ctx, "bogus", "1")
	assert.ErrorIs(t, err, session.ErrUnknownField)

	_, err = s.SetDeductionField(ctx, "health", "1")
	assert.ErrorIs(t, err, session.ErrFieldNotEditable)

	_, err = s.SetDeductionField(ctx, "labor", "987")
	assert.NoError(t, err)
}

func TestSession_BonusLifecycle(t *testing.T) {
	ctx := context.Background()
	s, _ := newSession(t)

	// Default ids run 1,2,3,5,6,7; the next id is max+1.
	state, err := s.AddBonus(ctx)
	require.NoError(t, err)
	require.Len(t, state.Bonuses, 7)
	added := state.Bonuses[6]
	assert.Equal(t, 8, added.ID)

	name := "Signing bonus"
	val := "50000"
	state, err = s.UpdateBonus(ctx, added.ID, session.BonusPatch{Name: &name, Value: &val})
	require.NoError(t, err)
	assert.Equal(t, "Signing bonus", state.Bonuses[6].Name)
	assert.Equal(t, "50000", state.Bonuses[6].Value.String())

	state, err = s.RemoveBonus(ctx, added.ID)
	require.NoError(t, err)
	assert.Len(t, state.Bonuses, 6)

	_, err = s.RemoveBonus(ctx, 42)
	assert.ErrorIs(t, err, session.ErrUnknownBonus)
	_, err = s.UpdateBonus(ctx, 42, session.BonusPatch{})
	assert.ErrorIs(t, err, session.ErrUnknownBonus)
}

func TestSession_StructuralOverrides(t *testing.T) {
	ctx := context.Background()
	s, _ := newSession(t)

	state, err := s.SetStructuralOverride(ctx, 2, decimal.NewFromInt(777))
	require.NoError(t, err)
	assert.True(t, state.Projection.Rows[2].StructuralRaise.Equal(decimal.NewFromInt(777)))

	// Replacing the parameters wholesale keeps the override map.
	params := engine.DefaultTrustParams()
	params.AnnualRaise = engine.CellFromInt(1000)
	state, err = s.SetTrustParams(ctx, params)
	require.NoError(t, err)
	assert.True(t, state.Projection.Rows[2].StructuralRaise.Equal(decimal.NewFromInt(777)))

	state, err = s.ClearStructuralOverride(ctx, 2)
	require.NoError(t, err)
	assert.True(t, state.Projection.Rows[2].StructuralRaise.IsZero())
}

func TestSession_SnapshotDetachedFromLiveOverrides(t *testing.T) {
	ctx := context.Background()
	s, _ := newSession(t)

	_, err := s.SetStructuralOverride(ctx, 1, decimal.NewFromInt(100))
	require.NoError(t, err)
	before := s.Snapshot()

	// Snapshots must be safe to range while mutations keep writing to
	// the live overrides map. Run with -race.
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			_, _ = s.SetStructuralOverride(ctx, i%10, decimal.NewFromInt(int64(i)))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			total := decimal.Zero
			for _, amount := range s.Snapshot().TrustParams.ManualStructuralRaises {
				total = total.Add(amount)
			}
		}
	}()
	wg.Wait()

	// The earlier snapshot kept its own copy of the map.
	require.Len(t, before.TrustParams.ManualStructuralRaises, 1)
	assert.True(t, before.TrustParams.ManualStructuralRaises[1].Equal(decimal.NewFromInt(100)))
}

func TestSession_SetTrustParamsCopiesCallerMap(t *testing.T) {
	ctx := context.Background()
	s, _ := newSession(t)

	params := engine.DefaultTrustParams()
	params.ManualStructuralRaises = map[int]decimal.Decimal{3: decimal.NewFromInt(500)}
	state, err := s.SetTrustParams(ctx, params)
	require.NoError(t, err)
	assert.True(t, state.Projection.Rows[3].StructuralRaise.Equal(decimal.NewFromInt(500)))

	// Mutating the caller's map afterwards must not reach the session.
	params.ManualStructuralRaises[4] = decimal.NewFromInt(999)
	assert.True(t, s.Snapshot().Projection.Rows[4].StructuralRaise.IsZero())
	assert.Len(t, s.Snapshot().TrustParams.ManualStructuralRaises, 1)
}

func TestSession_StorageFailureDoesNotFailMutations(t *testing.T) {
	ctx := context.Background()
	s := session.New(ctx, failingStore{}, nil)

	// WHEN the store rejects every write
	state, err := s.SetIncomeField(ctx, "base", "60000")

	// THEN the mutation still lands in memory
	require.NoError(t, err)
	assert.Equal(t, "60000", state.Income.Base.String())
}

// failingStore errors on every operation.
type failingStore struct{}

var errStore = errors.New("store down")

func (failingStore) Get(context.Context, string) ([]byte, bool, error) { return nil, false, errStore }
func (failingStore) Set(context.Context, string, []byte) error         { return errStore }
func (failingStore) Delete(context.Context, string) error              { return errStore }

func boolPtr(b bool) *bool { return &b }
