/*
handlers.go - HTTP API handlers for the budget forecasting engine

PURPOSE:
  Exposes budgets, planned operations and the forecast via REST API.
  Handles HTTP request/response, JSON serialization, and delegates to
  domain logic.

ENDPOINTS:
  Budgets:
    GET    /api/budgets                  List all budgets
    POST   /api/budgets                  Create budget
    GET    /api/budgets/{id}             Get budget
    PUT    /api/budgets/{id}             Update budget
    DELETE /api/budgets/{id}             Delete budget
    POST   /api/budgets/{id}/split       Split recurring budget at a date

  Planned operations:
    GET    /api/planned-operations                 List
    POST   /api/planned-operations                 Create
    GET    /api/planned-operations/{id}            Get
    PUT    /api/planned-operations/{id}            Update
    DELETE /api/planned-operations/{id}            Delete
    POST   /api/planned-operations/{id}/split      Split at a date
    POST   /api/planned-operations/{id}/archive    Hide from forecasts

  Forecast:
    GET    /api/forecast?start=2024-01-01&months=12

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Record not found
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/warp/forecast-engine/forecast"
	"github.com/warp/forecast-engine/schedule"
	"github.com/warp/forecast-engine/store"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Repo store.Repository
	Log  *logrus.Logger
}

// NewHandler creates a new handler over the given repository.
func NewHandler(repo store.Repository, log *logrus.Logger) *Handler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Handler{Repo: repo, Log: log}
}

// =============================================================================
// BUDGET HANDLERS
// =============================================================================

// ListBudgets returns all budgets.
func (h *Handler) ListBudgets(w http.ResponseWriter, r *http.Request) {
	budgets, err := h.Repo.ListBudgets(r.Context())
	if err != nil {
		h.writeError(w, r, "failed to list budgets", err)
		return
	}

	dtos := make([]BudgetDTO, len(budgets))
	for i, b := range budgets {
		dtos[i] = toBudgetDTO(b)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateBudget creates a budget from the request body.
func (h *Handler) CreateBudget(w http.ResponseWriter, r *http.Request) {
	var req SaveBudgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", err)
		return
	}

	b, err := budgetFromRequest(0, req)
	if err != nil {
		h.writeError(w, r, "invalid budget", err)
		return
	}

	saved, err := h.Repo.SaveBudget(r.Context(), b)
	if err != nil {
		h.writeError(w, r, "failed to save budget", err)
		return
	}

	h.Log.WithFields(logrus.Fields{
		"budget_id": saved.ID(),
		"category":  saved.Category(),
	}).Info("budget created")
	writeJSON(w, http.StatusCreated, toBudgetDTO(saved))
}

// GetBudget returns a single budget.
func (h *Handler) GetBudget(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	b, err := h.Repo.GetBudget(r.Context(), forecast.BudgetID(id))
	if err != nil {
		h.writeError(w, r, "failed to get budget", err)
		return
	}
	writeJSON(w, http.StatusOK, toBudgetDTO(b))
}

// UpdateBudget replaces a stored budget's fields.
func (h *Handler) UpdateBudget(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req SaveBudgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", err)
		return
	}

	// Existence check keeps update from silently creating rows.
	if _, err := h.Repo.GetBudget(r.Context(), forecast.BudgetID(id)); err != nil {
		h.writeError(w, r, "failed to get budget", err)
		return
	}

	b, err := budgetFromRequest(forecast.BudgetID(id), req)
	if err != nil {
		h.writeError(w, r, "invalid budget", err)
		return
	}

	saved, err := h.Repo.SaveBudget(r.Context(), b)
	if err != nil {
		h.writeError(w, r, "failed to save budget", err)
		return
	}
	writeJSON(w, http.StatusOK, toBudgetDTO(saved))
}

// DeleteBudget removes a budget.
func (h *Handler) DeleteBudget(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.Repo.DeleteBudget(r.Context(), forecast.BudgetID(id)); err != nil {
		h.writeError(w, r, "failed to delete budget", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SplitBudget divides a recurring budget at a date. The terminated half
// keeps the record's id; the continuation is saved as a new record.
func (h *Handler) SplitBudget(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req SplitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", err)
		return
	}

	b, err := h.Repo.GetBudget(r.Context(), forecast.BudgetID(id))
	if err != nil {
		h.writeError(w, r, "failed to get budget", err)
		return
	}

	splitDate, overrides, err := splitArgs(req, b.Amount().Currency)
	if err != nil {
		h.writeError(w, r, "invalid split request", err)
		return
	}

	terminated, continuation, err := b.SplitAt(splitDate, overrides)
	if err != nil {
		h.writeError(w, r, "failed to split budget", err)
		return
	}

	terminated, err = h.Repo.SaveBudget(r.Context(), terminated)
	if err != nil {
		h.writeError(w, r, "failed to save terminated budget", err)
		return
	}
	continuation, err = h.Repo.SaveBudget(r.Context(), continuation)
	if err != nil {
		h.writeError(w, r, "failed to save continuation budget", err)
		return
	}

	h.Log.WithFields(logrus.Fields{
		"budget_id":       terminated.ID(),
		"continuation_id": continuation.ID(),
		"split_date":      splitDate,
	}).Info("budget split")
	writeJSON(w, http.StatusOK, SplitBudgetResponse{
		Terminated:   toBudgetDTO(terminated),
		Continuation: toBudgetDTO(continuation),
	})
}

func budgetFromRequest(id forecast.BudgetID, req SaveBudgetRequest) (forecast.Budget, error) {
	amount, err := amountFromRequest(req.Amount, req.Currency)
	if err != nil {
		return forecast.Budget{}, err
	}
	rng, err := rangeFromDTO(req.Schedule)
	if err != nil {
		return forecast.Budget{}, err
	}

	b := forecast.NewBudget(id, req.Description, amount, forecast.Category(req.Category), rng)
	if req.MatchParams != nil {
		b = b.WithMatchParams(matchParamsFromDTO(*req.MatchParams))
	}
	return b, nil
}

// =============================================================================
// PLANNED OPERATION HANDLERS
// =============================================================================

// ListPlannedOperations returns all planned operations, archived included.
func (h *Handler) ListPlannedOperations(w http.ResponseWriter, r *http.Request) {
	operations, err := h.Repo.ListPlannedOperations(r.Context())
	if err != nil {
		h.writeError(w, r, "failed to list planned operations", err)
		return
	}

	dtos := make([]PlannedOperationDTO, len(operations))
	for i, po := range operations {
		dtos[i] = toPlannedOperationDTO(po)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreatePlannedOperation creates a planned operation from the request body.
func (h *Handler) CreatePlannedOperation(w http.ResponseWriter, r *http.Request) {
	var req SavePlannedOperationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", err)
		return
	}

	po, err := plannedOperationFromRequest(0, req)
	if err != nil {
		h.writeError(w, r, "invalid planned operation", err)
		return
	}

	saved, err := h.Repo.SavePlannedOperation(r.Context(), po)
	if err != nil {
		h.writeError(w, r, "failed to save planned operation", err)
		return
	}

	h.Log.WithFields(logrus.Fields{
		"planned_operation_id": saved.ID(),
		"category":             saved.Category(),
	}).Info("planned operation created")
	writeJSON(w, http.StatusCreated, toPlannedOperationDTO(saved))
}

// GetPlannedOperation returns a single planned operation.
func (h *Handler) GetPlannedOperation(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	po, err := h.Repo.GetPlannedOperation(r.Context(), forecast.PlannedOperationID(id))
	if err != nil {
		h.writeError(w, r, "failed to get planned operation", err)
		return
	}
	writeJSON(w, http.StatusOK, toPlannedOperationDTO(po))
}

// UpdatePlannedOperation replaces a stored planned operation's fields.
func (h *Handler) UpdatePlannedOperation(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req SavePlannedOperationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", err)
		return
	}

	if _, err := h.Repo.GetPlannedOperation(r.Context(), forecast.PlannedOperationID(id)); err != nil {
		h.writeError(w, r, "failed to get planned operation", err)
		return
	}

	po, err := plannedOperationFromRequest(forecast.PlannedOperationID(id), req)
	if err != nil {
		h.writeError(w, r, "invalid planned operation", err)
		return
	}

	saved, err := h.Repo.SavePlannedOperation(r.Context(), po)
	if err != nil {
		h.writeError(w, r, "failed to save planned operation", err)
		return
	}
	writeJSON(w, http.StatusOK, toPlannedOperationDTO(saved))
}

// DeletePlannedOperation removes a planned operation.
func (h *Handler) DeletePlannedOperation(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.Repo.DeletePlannedOperation(r.Context(), forecast.PlannedOperationID(id)); err != nil {
		h.writeError(w, r, "failed to delete planned operation", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ArchivePlannedOperation hides a planned operation from active forecasts
// without deleting its history.
func (h *Handler) ArchivePlannedOperation(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	po, err := h.Repo.GetPlannedOperation(r.Context(), forecast.PlannedOperationID(id))
	if err != nil {
		h.writeError(w, r, "failed to get planned operation", err)
		return
	}

	saved, err := h.Repo.SavePlannedOperation(r.Context(), po.WithArchived(true))
	if err != nil {
		h.writeError(w, r, "failed to save planned operation", err)
		return
	}
	writeJSON(w, http.StatusOK, toPlannedOperationDTO(saved))
}

// SplitPlannedOperation divides a recurring planned operation at a date.
func (h *Handler) SplitPlannedOperation(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req SplitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", err)
		return
	}

	po, err := h.Repo.GetPlannedOperation(r.Context(), forecast.PlannedOperationID(id))
	if err != nil {
		h.writeError(w, r, "failed to get planned operation", err)
		return
	}

	splitDate, overrides, err := splitArgs(req, po.Amount().Currency)
	if err != nil {
		h.writeError(w, r, "invalid split request", err)
		return
	}

	terminated, continuation, err := po.SplitAt(splitDate, overrides)
	if err != nil {
		h.writeError(w, r, "failed to split planned operation", err)
		return
	}

	terminated, err = h.Repo.SavePlannedOperation(r.Context(), terminated)
	if err != nil {
		h.writeError(w, r, "failed to save terminated planned operation", err)
		return
	}
	continuation, err = h.Repo.SavePlannedOperation(r.Context(), continuation)
	if err != nil {
		h.writeError(w, r, "failed to save continuation planned operation", err)
		return
	}

	writeJSON(w, http.StatusOK, SplitPlannedOperationResponse{
		Terminated:   toPlannedOperationDTO(terminated),
		Continuation: toPlannedOperationDTO(continuation),
	})
}

func plannedOperationFromRequest(id forecast.PlannedOperationID, req SavePlannedOperationRequest) (forecast.PlannedOperation, error) {
	amount, err := amountFromRequest(req.Amount, req.Currency)
	if err != nil {
		return forecast.PlannedOperation{}, err
	}

	// Planned operations always cover single days.
	if req.Schedule.Duration == (DurationDTO{}) {
		req.Schedule.Duration = DurationDTO{Days: 1}
	}
	rng, err := rangeFromDTO(req.Schedule)
	if err != nil {
		return forecast.PlannedOperation{}, err
	}

	po, err := forecast.NewPlannedOperation(id, req.Description, amount, forecast.Category(req.Category), rng)
	if err != nil {
		return forecast.PlannedOperation{}, err
	}
	po = po.WithArchived(req.Archived)
	if req.MatchParams != nil {
		po = po.WithMatchParams(matchParamsFromDTO(*req.MatchParams))
	}
	return po, nil
}

// =============================================================================
// FORECAST HANDLER
// =============================================================================

// GetForecast prorates all records into monthly per-category summaries.
// GET /api/forecast?start=2024-01-01&months=12
func (h *Handler) GetForecast(w http.ResponseWriter, r *http.Request) {
	start := schedule.Today()
	if s := r.URL.Query().Get("start"); s != "" {
		parsed, err := schedule.ParseDate(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid start date", err)
			return
		}
		start = parsed
	}

	months := 12
	if s := r.URL.Query().Get("months"); s != "" {
		parsed, err := strconv.Atoi(s)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "months must be a positive integer", err)
			return
		}
		months = parsed
	}

	budgets, err := h.Repo.ListBudgets(r.Context())
	if err != nil {
		h.writeError(w, r, "failed to list budgets", err)
		return
	}
	planned, err := h.Repo.ListPlannedOperations(r.Context())
	if err != nil {
		h.writeError(w, r, "failed to list planned operations", err)
		return
	}

	summaries, err := forecast.NewForecast(budgets, planned).MonthlySummaries(start, months)
	if err != nil {
		h.writeError(w, r, "failed to compute forecast", err)
		return
	}

	dtos := make([]MonthlySummaryDTO, len(summaries))
	for i, s := range summaries {
		dtos[i] = toMonthlySummaryDTO(s)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// HELPERS
// =============================================================================

func splitArgs(req SplitRequest, currency string) (schedule.Date, forecast.SplitOverrides, error) {
	splitDate, err := schedule.ParseDate(req.SplitDate)
	if err != nil {
		return schedule.Date{}, forecast.SplitOverrides{},
			&schedule.InvalidArgumentError{Field: "split_date", Reason: err.Error()}
	}

	var overrides forecast.SplitOverrides
	if req.Amount != nil {
		amount, err := amountFromRequest(*req.Amount, currency)
		if err != nil {
			return schedule.Date{}, forecast.SplitOverrides{}, err
		}
		overrides.Amount = &amount
	}
	if req.Period != nil {
		period := durationFromDTO(*req.Period)
		overrides.Period = &period
	}
	if req.Duration != nil {
		duration := durationFromDTO(*req.Duration)
		overrides.Duration = &duration
	}
	return splitDate, overrides, nil
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid id", err)
		return 0, false
	}
	return id, true
}

// writeError maps domain errors to HTTP statuses.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, message string, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, message, err)
	case forecast.IsInvalidArgument(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		h.Log.WithError(err).WithField("path", r.URL.Path).Error(message)
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
