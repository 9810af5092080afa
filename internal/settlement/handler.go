package settlement

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/groupsplit/internal/expense"
	"github.com/fkhayef/groupsplit/pkg/middleware"
	"github.com/fkhayef/groupsplit/pkg/response"
)

// Handler handles HTTP requests for balances and settlements
type Handler struct {
	service *Service
}

// NewHandler creates a new settlement handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// BalanceRoutes returns the router mounted under /groups/{groupId}/balances
func (h *Handler) BalanceRoutes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.GetBalances)
	r.Get("/summary", h.GetSummary)
	r.Get("/me", h.GetMyBalance)
	r.Get("/{userId}", h.GetUserBalance)

	return r
}

// SettlementRoutes returns the router mounted under /groups/{groupId}/settlements
func (h *Handler) SettlementRoutes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Record)
	r.Get("/suggestions", h.GetSuggestions)

	return r
}

func writeError(w http.ResponseWriter, err error) bool {
	switch {
	case errors.Is(err, ErrCannotSettleSelf), errors.Is(err, ErrNotInGroup),
		errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrInvalidNotes):
		response.UnprocessableEntity(w, err.Error())
		return true
	default:
		return expense.WriteError(w, err)
	}
}

func userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
	}
	return id, ok
}

func period(w http.ResponseWriter, r *http.Request) (expense.Period, bool) {
	p, err := expense.ParsePeriod(r.URL.Query())
	if err != nil {
		response.BadRequest(w, err.Error())
		return expense.Period{}, false
	}
	return p, true
}

// GetBalances handles GET /groups/{groupId}/balances
// @Summary      Get group balances
// @Description  Net balance of every member, optionally within a month or date range
// @Tags         balances
// @Produce      json
// @Param        groupId path string true "Group ID"
// @Param        month query string false "Month (YYYY-MM)"
// @Param        from query string false "From date (YYYY-MM-DD)"
// @Param        to query string false "To date (YYYY-MM-DD)"
// @Success      200 {object} response.APIResponse{data=GroupBalances}
// @Failure      403 {object} response.APIResponse
// @Router       /groups/{groupId}/balances [get]
func (h *Handler) GetBalances(w http.ResponseWriter, r *http.Request) {
	actorID, ok := userID(w, r)
	if !ok {
		return
	}
	p, ok := period(w, r)
	if !ok {
		return
	}

	balances, err := h.service.Balances(r.Context(), chi.URLParam(r, "groupId"), actorID, p)
	if err != nil {
		if writeError(w, err) {
			return
		}
		response.InternalError(w, "Failed to get balances")
		return
	}

	response.JSON(w, http.StatusOK, balances)
}

// GetMyBalance handles GET /groups/{groupId}/balances/me
// @Summary      Get my balance
// @Description  The caller's net balance with the payments they should make or receive
// @Tags         balances
// @Produce      json
// @Param        groupId path string true "Group ID"
// @Success      200 {object} response.APIResponse{data=MyBalance}
// @Router       /groups/{groupId}/balances/me [get]
func (h *Handler) GetMyBalance(w http.ResponseWriter, r *http.Request) {
	actorID, ok := userID(w, r)
	if !ok {
		return
	}
	h.writeUserBalance(w, r, actorID, actorID)
}

// GetUserBalance handles GET /groups/{groupId}/balances/{userId}
// @Summary      Get a member's balance
// @Tags         balances
// @Produce      json
// @Param        groupId path string true "Group ID"
// @Param        userId path string true "User ID"
// @Success      200 {object} response.APIResponse{data=MyBalance}
// @Failure      404 {object} response.APIResponse
// @Router       /groups/{groupId}/balances/{userId} [get]
func (h *Handler) GetUserBalance(w http.ResponseWriter, r *http.Request) {
	actorID, ok := userID(w, r)
	if !ok {
		return
	}
	h.writeUserBalance(w, r, actorID, chi.URLParam(r, "userId"))
}

func (h *Handler) writeUserBalance(w http.ResponseWriter, r *http.Request, actorID, target string) {
	result, err := h.service.UserBalance(r.Context(), chi.URLParam(r, "groupId"), actorID, target)
	if err != nil {
		if writeError(w, err) {
			return
		}
		response.InternalError(w, "Failed to get balance")
		return
	}

	response.JSON(w, http.StatusOK, result)
}

// GetSummary handles GET /groups/{groupId}/balances/summary
// @Summary      Get spending summary
// @Description  Total spent and per-payer totals, excluding settlements
// @Tags         balances
// @Produce      json
// @Param        groupId path string true "Group ID"
// @Param        month query string false "Month (YYYY-MM)"
// @Param        from query string false "From date (YYYY-MM-DD)"
// @Param        to query string false "To date (YYYY-MM-DD)"
// @Success      200 {object} response.APIResponse{data=SummaryResponse}
// @Router       /groups/{groupId}/balances/summary [get]
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	actorID, ok := userID(w, r)
	if !ok {
		return
	}
	p, ok := period(w, r)
	if !ok {
		return
	}

	summary, err := h.service.Summary(r.Context(), chi.URLParam(r, "groupId"), actorID, p)
	if err != nil {
		if writeError(w, err) {
			return
		}
		response.InternalError(w, "Failed to get summary")
		return
	}

	response.JSON(w, http.StatusOK, summary)
}

// GetSuggestions handles GET /groups/{groupId}/settlements/suggestions
// @Summary      Suggest settlements
// @Description  The simplified list of payments that settles everyone up
// @Tags         settlements
// @Produce      json
// @Param        groupId path string true "Group ID"
// @Param        month query string false "Month (YYYY-MM)"
// @Param        from query string false "From date (YYYY-MM-DD)"
// @Param        to query string false "To date (YYYY-MM-DD)"
// @Success      200 {object} response.APIResponse{data=SuggestionsResponse}
// @Router       /groups/{groupId}/settlements/suggestions [get]
func (h *Handler) GetSuggestions(w http.ResponseWriter, r *http.Request) {
	actorID, ok := userID(w, r)
	if !ok {
		return
	}
	p, ok := period(w, r)
	if !ok {
		return
	}

	debts, err := h.service.Suggestions(r.Context(), chi.URLParam(r, "groupId"), actorID, p)
	if err != nil {
		if writeError(w, err) {
			return
		}
		response.InternalError(w, "Failed to compute settlements")
		return
	}

	response.JSON(w, http.StatusOK, &SuggestionsResponse{Currency: h.service.Currency(), Suggestions: debts})
}

// Record handles POST /groups/{groupId}/settlements
// @Summary      Record a settlement
// @Description  Record a payment made from one member to another
// @Tags         settlements
// @Accept       json
// @Produce      json
// @Param        groupId path string true "Group ID"
// @Param        request body RecordSettlementRequest true "Settlement"
// @Success      201 {object} response.APIResponse{data=SettlementResponse}
// @Failure      422 {object} response.APIResponse
// @Router       /groups/{groupId}/settlements [post]
func (h *Handler) Record(w http.ResponseWriter, r *http.Request) {
	actorID, ok := userID(w, r)
	if !ok {
		return
	}

	var req RecordSettlementRequest
	if err := response.Decode(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	settlement, err := h.service.Record(r.Context(), chi.URLParam(r, "groupId"), actorID, &req)
	if err != nil {
		if writeError(w, err) {
			return
		}
		response.InternalError(w, "Failed to record settlement")
		return
	}

	response.JSON(w, http.StatusCreated, settlement.ToResponse(h.service.Currency()))
}
