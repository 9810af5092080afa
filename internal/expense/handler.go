package expense

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/groupsplit/internal/expense/split"
	"github.com/fkhayef/groupsplit/internal/group"
	"github.com/fkhayef/groupsplit/pkg/middleware"
	"github.com/fkhayef/groupsplit/pkg/response"
)

// Handler handles HTTP requests for expense operations
type Handler struct {
	service *Service
}

// NewHandler creates a new expense handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for expense endpoints, mounted under
// /groups/{groupId}/expenses
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/export.csv", h.Export)
	r.Get("/{expenseId}", h.GetByID)
	r.Put("/{expenseId}", h.Update)
	r.Delete("/{expenseId}", h.Delete)

	return r
}

var validationErrors = []error{
	ErrInvalidAmount,
	ErrInvalidDescription,
	ErrInvalidCategory,
	ErrInvalidNotes,
	ErrInvalidDate,
	ErrInvalidPeriod,
	ErrUnknownUser,
	split.ErrUnknownSplitType,
	split.ErrNoParticipants,
	split.ErrDuplicateParticipant,
	split.ErrInvalidPercentages,
	split.ErrInvalidCustomAmounts,
	split.ErrNegativeAmount,
	split.ErrMissingPercentage,
	split.ErrMissingCustomAmount,
	split.ErrPercentageOutOfRange,
	split.ErrOneOwesAllArity,
	split.ErrOneOwesAllPayerOwes,
}

// WriteError maps expense errors to HTTP responses. It reports whether err
// was recognised.
func WriteError(w http.ResponseWriter, err error) bool {
	if group.WriteError(w, err) {
		return true
	}

	switch {
	case errors.Is(err, ErrExpenseNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, ErrNotPayer):
		response.Forbidden(w, err.Error())
	case errors.Is(err, ErrSettlementImmutable):
		response.Conflict(w, err.Error())
	default:
		for _, target := range validationErrors {
			if errors.Is(err, target) {
				response.UnprocessableEntity(w, err.Error())
				return true
			}
		}
		return false
	}
	return true
}

func userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
	}
	return id, ok
}

// Create handles POST /groups/{groupId}/expenses
// @Summary      Create an expense
// @Description  Record an expense and split it between group members
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        groupId path string true "Group ID"
// @Param        request body CreateExpenseRequest true "Expense creation request"
// @Success      201 {object} response.APIResponse{data=ExpenseResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      422 {object} response.APIResponse
// @Router       /groups/{groupId}/expenses [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actorID, ok := userID(w, r)
	if !ok {
		return
	}

	var req CreateExpenseRequest
	if err := response.Decode(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	expense, err := h.service.Create(r.Context(), chi.URLParam(r, "groupId"), actorID, &req)
	if err != nil {
		if WriteError(w, err) {
			return
		}
		response.InternalError(w, "Failed to create expense")
		return
	}

	response.JSON(w, http.StatusCreated, expense.ToResponse())
}

// GetByID handles GET /groups/{groupId}/expenses/{expenseId}
// @Summary      Get expense by ID
// @Tags         expenses
// @Produce      json
// @Param        groupId path string true "Group ID"
// @Param        expenseId path string true "Expense ID"
// @Success      200 {object} response.APIResponse{data=ExpenseResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /groups/{groupId}/expenses/{expenseId} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	actorID, ok := userID(w, r)
	if !ok {
		return
	}

	expense, err := h.service.GetByID(r.Context(), chi.URLParam(r, "groupId"), chi.URLParam(r, "expenseId"), actorID)
	if err != nil {
		if WriteError(w, err) {
			return
		}
		response.InternalError(w, "Failed to get expense")
		return
	}

	response.JSON(w, http.StatusOK, expense.ToResponse())
}

// List handles GET /groups/{groupId}/expenses
// @Summary      List group expenses
// @Description  List expenses newest first, optionally within a month or date range
// @Tags         expenses
// @Produce      json
// @Param        groupId path string true "Group ID"
// @Param        month query string false "Month (YYYY-MM)"
// @Param        from query string false "From date (YYYY-MM-DD)"
// @Param        to query string false "To date (YYYY-MM-DD)"
// @Param        page query int false "Page number"
// @Param        per_page query int false "Items per page"
// @Success      200 {object} response.APIResponse{data=[]ExpenseResponse}
// @Router       /groups/{groupId}/expenses [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	actorID, ok := userID(w, r)
	if !ok {
		return
	}

	period, err := ParsePeriod(r.URL.Query())
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	expenses, total, err := h.service.ListByGroupID(r.Context(), chi.URLParam(r, "groupId"), actorID, period, page, perPage)
	if err != nil {
		if WriteError(w, err) {
			return
		}
		response.InternalError(w, "Failed to list expenses")
		return
	}

	expenseResponses := make([]*ExpenseResponse, len(expenses))
	for i, e := range expenses {
		expenseResponses[i] = e.ToResponse()
	}

	meta := &response.Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: (total + perPage - 1) / perPage,
	}

	response.JSONWithMeta(w, http.StatusOK, expenseResponses, meta)
}

// Update handles PUT /groups/{groupId}/expenses/{expenseId}
// @Summary      Update an expense
// @Description  Change description, category or notes (payer only)
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        groupId path string true "Group ID"
// @Param        expenseId path string true "Expense ID"
// @Param        request body UpdateExpenseRequest true "Expense update request"
// @Success      200 {object} response.APIResponse{data=ExpenseResponse}
// @Failure      403 {object} response.APIResponse
// @Router       /groups/{groupId}/expenses/{expenseId} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	actorID, ok := userID(w, r)
	if !ok {
		return
	}

	var req UpdateExpenseRequest
	if err := response.Decode(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	expense, err := h.service.Update(r.Context(), chi.URLParam(r, "groupId"), chi.URLParam(r, "expenseId"), actorID, &req)
	if err != nil {
		if WriteError(w, err) {
			return
		}
		response.InternalError(w, "Failed to update expense")
		return
	}

	response.JSON(w, http.StatusOK, expense.ToResponse())
}

// Delete handles DELETE /groups/{groupId}/expenses/{expenseId}
// @Summary      Delete an expense
// @Tags         expenses
// @Param        groupId path string true "Group ID"
// @Param        expenseId path string true "Expense ID"
// @Success      204
// @Failure      403 {object} response.APIResponse
// @Router       /groups/{groupId}/expenses/{expenseId} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	actorID, ok := userID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), chi.URLParam(r, "groupId"), chi.URLParam(r, "expenseId"), actorID); err != nil {
		if WriteError(w, err) {
			return
		}
		response.InternalError(w, "Failed to delete expense")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Export handles GET /groups/{groupId}/expenses/export.csv
// @Summary      Export expenses as CSV
// @Tags         expenses
// @Produce      text/csv
// @Param        groupId path string true "Group ID"
// @Param        month query string false "Month (YYYY-MM)"
// @Param        from query string false "From date (YYYY-MM-DD)"
// @Param        to query string false "To date (YYYY-MM-DD)"
// @Success      200 {string} string "CSV file"
// @Router       /groups/{groupId}/expenses/export.csv [get]
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	actorID, ok := userID(w, r)
	if !ok {
		return
	}

	period, err := ParsePeriod(r.URL.Query())
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	var buf bytes.Buffer
	if err := h.service.ExportCSV(r.Context(), chi.URLParam(r, "groupId"), actorID, period, &buf); err != nil {
		if WriteError(w, err) {
			return
		}
		response.InternalError(w, "Failed to export expenses")
		return
	}

	filename := "expenses.csv"
	if month := r.URL.Query().Get("month"); month != "" {
		filename = "expenses-" + month + ".csv"
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
