/*
handlers.go - HTTP API handlers for the salary estimator

PURPOSE:
  Exposes the estimation session via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to the session.

ENDPOINTS:
  State:
    GET    /api/state                    Full snapshot
    GET    /api/results                  Headline figures only

  Records:
    PUT    /api/income/{field}           Edit a manual income field
    PUT    /api/deduction/{field}        Edit a manual deduction field
    PUT    /api/grade                    Select a grade from the ladder

  Bonuses:
    POST   /api/bonuses                  Add a rule
    PUT    /api/bonuses/{id}             Edit a rule
    DELETE /api/bonuses/{id}             Remove a rule

  Projection:
    GET    /api/projection               Full trust simulation
    PUT    /api/projection/params        Replace parameters
    PUT    /api/projection/overrides/{year}   Pin a structural raise
    DELETE /api/projection/overrides/{year}   Unpin it

  Misc:
    PUT    /api/preferences              UI flags
    POST   /api/reset                    Confirmed reset
    GET    /api/reference/*              Static lookup tables
    GET    /api/export/summary.pdf       PDF summary

REQUEST FLOW:
  1. Parse HTTP request
  2. Call the session (which validates, recomputes, persists)
  3. Serialize the new snapshot
  4. Handle errors

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input, missing confirmation
  - 404: Unknown bonus id
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - session/session.go: The mutations behind every endpoint
*/
package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	gojson "github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/warp/salary-engine/engine"
	"github.com/warp/salary-engine/report"
	"github.com/warp/salary-engine/session"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Session *session.Session
	Log     *zap.Logger
}

// NewHandler creates a new handler around the session.
func NewHandler(s *session.Session, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{Session: s, Log: log}
}

// =============================================================================
// STATE HANDLERS
// =============================================================================

// GetState returns the full session snapshot.
func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toStateDTO(h.Session.Snapshot()))
}

// GetResults returns the headline figures only.
func (h *Handler) GetResults(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toResultsDTO(h.Session.Snapshot().Results))
}

// =============================================================================
// RECORD HANDLERS
// =============================================================================

// SetIncomeField edits one manual income field.
func (h *Handler) SetIncomeField(w http.ResponseWriter, r *http.Request) {
	var req SetFieldRequest
	if err := gojson.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	state, err := h.Session.SetIncomeField(r.Context(), chi.URLParam(r, "field"), req.Value.String())
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toStateDTO(state))
}

// SetDeductionField edits one manual deduction field.
func (h *Handler) SetDeductionField(w http.ResponseWriter, r *http.Request) {
	var req SetFieldRequest
	if err := gojson.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	state, err := h.Session.SetDeductionField(r.Context(), chi.URLParam(r, "field"), req.Value.String())
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toStateDTO(state))
}

// SelectGrade picks a grade code from the ladder.
func (h *Handler) SelectGrade(w http.ResponseWriter, r *http.Request) {
	var req SelectGradeRequest
	if err := gojson.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	state, err := h.Session.SelectGrade(r.Context(), req.Code)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toStateDTO(state))
}

// =============================================================================
// BONUS HANDLERS
// =============================================================================

// AddBonus appends a fresh rule.
func (h *Handler) AddBonus(w http.ResponseWriter, r *http.Request) {
	state, err := h.Session.AddBonus(r.Context())
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toStateDTO(state))
}

// UpdateBonus edits a rule by id.
func (h *Handler) UpdateBonus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid bonus id", err)
		return
	}

	var req UpdateBonusRequest
	if err := gojson.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	patch := session.BonusPatch{Name: req.Name}
	if req.Type != nil {
		bt := engine.BonusType(*req.Type)
		if bt != engine.BonusFixed && bt != engine.BonusMonth {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid bonus type %q", *req.Type), nil)
			return
		}
		patch.Type = &bt
	}
	if req.Value != nil {
		raw := req.Value.String()
		patch.Value = &raw
	}

	state, err := h.Session.UpdateBonus(r.Context(), id, patch)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toStateDTO(state))
}

// RemoveBonus deletes a rule by id.
func (h *Handler) RemoveBonus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid bonus id", err)
		return
	}

	state, err := h.Session.RemoveBonus(r.Context(), id)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toStateDTO(state))
}

// =============================================================================
// PROJECTION HANDLERS
// =============================================================================

// GetProjection returns the full trust simulation.
func (h *Handler) GetProjection(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toProjectionDTO(h.Session.Snapshot().Projection))
}

// SetTrustParams replaces the projection parameters.
func (h *Handler) SetTrustParams(w http.ResponseWriter, r *http.Request) {
	var params engine.TrustParams
	if err := gojson.NewDecoder(r.Body).Decode(&params); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	state, err := h.Session.SetTrustParams(r.Context(), params)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toStateDTO(state))
}

// SetStructuralOverride pins the structural raise for one year.
func (h *Handler) SetStructuralOverride(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year < 0 {
		writeError(w, http.StatusBadRequest, "Invalid projection year", err)
		return
	}

	var req SetOverrideRequest
	if err := gojson.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	state, err := h.Session.SetStructuralOverride(r.Context(), year, decimal.NewFromFloat(req.Amount))
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toStateDTO(state))
}

// ClearStructuralOverride returns a year to its policy schedule.
func (h *Handler) ClearStructuralOverride(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year < 0 {
		writeError(w, http.StatusBadRequest, "Invalid projection year", err)
		return
	}

	state, err := h.Session.ClearStructuralOverride(r.Context(), year)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toStateDTO(state))
}

// =============================================================================
// PREFERENCES AND RESET
// =============================================================================

// SetPreferences updates the UI flags.
func (h *Handler) SetPreferences(w http.ResponseWriter, r *http.Request) {
	var req PreferencesRequest
	if err := gojson.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	state, err := h.Session.SetPreferences(r.Context(), req.DarkMode, req.DisclaimerSeen)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toStateDTO(state))
}

// Reset clears persisted state and restores defaults.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	var req ResetRequest
	if err := gojson.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.Session.Reset(r.Context(), req.Confirm); err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toStateDTO(h.Session.Snapshot()))
}

// =============================================================================
// REFERENCE TABLES
// =============================================================================

// ListGrades returns the salary grade ladder.
func (h *Handler) ListGrades(w http.ResponseWriter, r *http.Request) {
	dtos := make([]GradeOptionDTO, len(engine.GradeOptions))
	for i, opt := range engine.GradeOptions {
		dtos[i] = GradeOptionDTO{Code: opt.Code, Value: num(opt.Value)}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ListHealthGrades returns the health-insurance contribution ladder.
func (h *Handler) ListHealthGrades(w http.ResponseWriter, r *http.Request) {
	grades := make([]float64, len(engine.HealthInsuranceGrades))
	for i, g := range engine.HealthInsuranceGrades {
		grades[i] = num(g)
	}
	writeJSON(w, http.StatusOK, grades)
}

// ListDividends returns the historical dividend series.
func (h *Handler) ListDividends(w http.ResponseWriter, r *http.Request) {
	dtos := make([]DividendRecordDTO, len(engine.DividendHistory))
	for i, rec := range engine.DividendHistory {
		dtos[i] = DividendRecordDTO{Year: rec.Year, Dividend: num(rec.Dividend)}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetPayoutCalendar returns the payout schedule priced at the current
// bonus base.
func (h *Handler) GetPayoutCalendar(w http.ResponseWriter, r *http.Request) {
	base := h.Session.Snapshot().Results.BonusBase

	dtos := make([]PayoutSlotDTO, len(engine.PayoutCalendar))
	for i, slot := range engine.PayoutCalendar {
		items := make([]PayoutItemDTO, len(slot.Items))
		for j, item := range slot.Items {
			items[j] = PayoutItemDTO{Name: item.Name, Months: num(item.Months)}
		}
		dtos[i] = PayoutSlotDTO{
			ID:     slot.ID,
			Month:  slot.Month,
			Items:  items,
			Amount: num(engine.SlotAmount(slot, base)),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// EXPORT
// =============================================================================

// ExportSummaryPDF renders the current snapshot as a PDF document.
func (h *Handler) ExportSummaryPDF(w http.ResponseWriter, r *http.Request) {
	state := h.Session.Snapshot()

	pdf, err := report.SummaryPDF(state)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to render PDF", err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="salary-summary.pdf"`)
	w.WriteHeader(http.StatusOK)
	w.Write(pdf)
}

// =============================================================================
// HELPERS
// =============================================================================

// writeJSON writes a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	gojson.NewEncoder(w).Encode(data)
}

// writeSessionError maps session errors to HTTP statuses.
func writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrUnknownBonus):
		writeError(w, http.StatusNotFound, "Bonus not found", err)
	case errors.Is(err, session.ErrUnknownField),
		errors.Is(err, session.ErrFieldNotEditable),
		errors.Is(err, session.ErrUnknownGrade),
		errors.Is(err, session.ErrConfirmationRequired):
		writeError(w, http.StatusBadRequest, err.Error(), nil)
	default:
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string, err error) {
	body := map[string]string{"error": message}
	if err != nil {
		body["detail"] = err.Error()
	}
	writeJSON(w, status, body)
}
