package recurring

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/groupsplit/internal/expense"
	"github.com/fkhayef/groupsplit/pkg/middleware"
	"github.com/fkhayef/groupsplit/pkg/response"
)

// Handler handles HTTP requests for recurring expenses
type Handler struct {
	service *Service
}

// NewHandler creates a new recurring expense handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router mounted under /groups/{groupId}/recurring
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/month", h.GetMonth)
	r.Post("/confirm", h.BulkConfirm)
	r.Delete("/confirmations/{confirmationId}", h.Undo)
	r.Get("/{recurringId}", h.GetByID)
	r.Put("/{recurringId}", h.Update)
	r.Delete("/{recurringId}", h.Delete)
	r.Post("/{recurringId}/confirm", h.Confirm)

	return r
}

func writeError(w http.ResponseWriter, err error) bool {
	switch {
	case errors.Is(err, ErrTemplateNotFound), errors.Is(err, ErrConfirmationNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, ErrAlreadyConfirmed):
		response.Conflict(w, err.Error())
	case errors.Is(err, ErrInvalidMonth), errors.Is(err, ErrNoItems):
		response.UnprocessableEntity(w, err.Error())
	default:
		return expense.WriteError(w, err)
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

func templateResponses(templates []*Template) []*TemplateResponse {
	out := make([]*TemplateResponse, len(templates))
	for i, t := range templates {
		out[i] = t.ToResponse()
	}
	return out
}

// List handles GET /groups/{groupId}/recurring
// @Summary      List recurring expenses
// @Tags         recurring
// @Produce      json
// @Param        groupId path string true "Group ID"
// @Success      200 {object} response.APIResponse{data=[]TemplateResponse}
// @Router       /groups/{groupId}/recurring [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	actorID, ok := userID(w, r)
	if !ok {
		return
	}

	templates, err := h.service.ListTemplates(r.Context(), chi.URLParam(r, "groupId"), actorID)
	if err != nil {
		if writeError(w, err) {
			return
		}
		response.InternalError(w, "Failed to list recurring expenses")
		return
	}

	response.JSON(w, http.StatusOK, templateResponses(templates))
}

// Create handles POST /groups/{groupId}/recurring
// @Summary      Create a recurring expense
// @Description  Add a fixed monthly cost that members confirm each month
// @Tags         recurring
// @Accept       json
// @Produce      json
// @Param        groupId path string true "Group ID"
// @Param        request body CreateTemplateRequest true "Recurring expense"
// @Success      201 {object} response.APIResponse{data=TemplateResponse}
// @Failure      422 {object} response.APIResponse
// @Router       /groups/{groupId}/recurring [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actorID, ok := userID(w, r)
	if !ok {
		return
	}

	var req CreateTemplateRequest
	if err := response.Decode(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	t, err := h.service.CreateTemplate(r.Context(), chi.URLParam(r, "groupId"), actorID, &req)
	if err != nil {
		if writeError(w, err) {
			return
		}
		response.InternalError(w, "Failed to create recurring expense")
		return
	}

	response.JSON(w, http.StatusCreated, t.ToResponse())
}

// GetByID handles GET /groups/{groupId}/recurring/{recurringId}
// @Summary      Get a recurring expense
// @Tags         recurring
// @Produce      json
// @Param        groupId path string true "Group ID"
// @Param        recurringId path string true "Recurring expense ID"
// @Success      200 {object} response.APIResponse{data=TemplateResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /groups/{groupId}/recurring/{recurringId} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	actorID, ok := userID(w, r)
	if !ok {
		return
	}

	t, err := h.service.GetTemplate(r.Context(), chi.URLParam(r, "groupId"), chi.URLParam(r, "recurringId"), actorID)
	if err != nil {
		if writeError(w, err) {
			return
		}
		response.InternalError(w, "Failed to get recurring expense")
		return
	}

	response.JSON(w, http.StatusOK, t.ToResponse())
}

// Update handles PUT /groups/{groupId}/recurring/{recurringId}
// @Summary      Update a recurring expense
// @Tags         recurring
// @Accept       json
// @Produce      json
// @Param        groupId path string true "Group ID"
// @Param        recurringId path string true "Recurring expense ID"
// @Param        request body UpdateTemplateRequest true "Changes"
// @Success      200 {object} response.APIResponse{data=TemplateResponse}
// @Router       /groups/{groupId}/recurring/{recurringId} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	actorID, ok := userID(w, r)
	if !ok {
		return
	}

	var req UpdateTemplateRequest
	if err := response.Decode(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	t, err := h.service.UpdateTemplate(r.Context(), chi.URLParam(r, "groupId"), chi.URLParam(r, "recurringId"), actorID, &req)
	if err != nil {
		if writeError(w, err) {
			return
		}
		response.InternalError(w, "Failed to update recurring expense")
		return
	}

	response.JSON(w, http.StatusOK, t.ToResponse())
}

// Delete handles DELETE /groups/{groupId}/recurring/{recurringId}
// @Summary      Stop a recurring expense
// @Tags         recurring
// @Param        groupId path string true "Group ID"
// @Param        recurringId path string true "Recurring expense ID"
// @Success      204
// @Router       /groups/{groupId}/recurring/{recurringId} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	actorID, ok := userID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteTemplate(r.Context(), chi.URLParam(r, "groupId"), chi.URLParam(r, "recurringId"), actorID); err != nil {
		if writeError(w, err) {
			return
		}
		response.InternalError(w, "Failed to delete recurring expense")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetMonth handles GET /groups/{groupId}/recurring/month
// @Summary      Recurring expenses for a month
// @Description  Which recurring expenses are confirmed and how much is still to pay
// @Tags         recurring
// @Produce      json
// @Param        groupId path string true "Group ID"
// @Param        month query string false "Month (YYYY-MM), defaults to the current month"
// @Success      200 {object} response.APIResponse{data=MonthResponse}
// @Router       /groups/{groupId}/recurring/month [get]
func (h *Handler) GetMonth(w http.ResponseWriter, r *http.Request) {
	actorID, ok := userID(w, r)
	if !ok {
		return
	}

	status, err := h.service.Month(r.Context(), chi.URLParam(r, "groupId"), actorID, r.URL.Query().Get("month"))
	if err != nil {
		if writeError(w, err) {
			return
		}
		response.InternalError(w, "Failed to get recurring expenses")
		return
	}

	response.JSON(w, http.StatusOK, status.ToResponse())
}

// Confirm handles POST /groups/{groupId}/recurring/{recurringId}/confirm
// @Summary      Confirm a recurring expense
// @Description  Record this month's expense, optionally with a different amount
// @Tags         recurring
// @Accept       json
// @Produce      json
// @Param        groupId path string true "Group ID"
// @Param        recurringId path string true "Recurring expense ID"
// @Param        request body ConfirmRequest false "Month and amount"
// @Success      201 {object} response.APIResponse{data=ConfirmationResponse}
// @Failure      409 {object} response.APIResponse
// @Router       /groups/{groupId}/recurring/{recurringId}/confirm [post]
func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	actorID, ok := userID(w, r)
	if !ok {
		return
	}

	var req ConfirmRequest
	if r.ContentLength != 0 {
		if err := response.Decode(r, &req); err != nil {
			response.BadRequest(w, "Invalid request body")
			return
		}
	}

	c, err := h.service.Confirm(r.Context(), chi.URLParam(r, "groupId"), chi.URLParam(r, "recurringId"), actorID, &req)
	if err != nil {
		if writeError(w, err) {
			return
		}
		response.InternalError(w, "Failed to confirm recurring expense")
		return
	}

	response.JSON(w, http.StatusCreated, c.ToResponse())
}

// BulkConfirm handles POST /groups/{groupId}/recurring/confirm
// @Summary      Confirm several recurring expenses
// @Tags         recurring
// @Accept       json
// @Produce      json
// @Param        groupId path string true "Group ID"
// @Param        request body BulkConfirmRequest true "Month and items"
// @Success      201 {object} response.APIResponse{data=[]ConfirmationResponse}
// @Router       /groups/{groupId}/recurring/confirm [post]
func (h *Handler) BulkConfirm(w http.ResponseWriter, r *http.Request) {
	actorID, ok := userID(w, r)
	if !ok {
		return
	}

	var req BulkConfirmRequest
	if err := response.Decode(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	confirmations, err := h.service.BulkConfirm(r.Context(), chi.URLParam(r, "groupId"), actorID, &req)
	if err != nil {
		if writeError(w, err) {
			return
		}
		response.InternalError(w, "Failed to confirm recurring expenses")
		return
	}

	out := make([]*ConfirmationResponse, len(confirmations))
	for i, c := range confirmations {
		out[i] = c.ToResponse()
	}
	response.JSON(w, http.StatusCreated, out)
}

// Undo handles DELETE /groups/{groupId}/recurring/confirmations/{confirmationId}
// @Summary      Undo a confirmation
// @Description  Remove a month's confirmation and the expense it recorded
// @Tags         recurring
// @Param        groupId path string true "Group ID"
// @Param        confirmationId path string true "Confirmation ID"
// @Success      204
// @Failure      403 {object} response.APIResponse
// @Router       /groups/{groupId}/recurring/confirmations/{confirmationId} [delete]
func (h *Handler) Undo(w http.ResponseWriter, r *http.Request) {
	actorID, ok := userID(w, r)
	if !ok {
		return
	}

	if err := h.service.Undo(r.Context(), chi.URLParam(r, "groupId"), chi.URLParam(r, "confirmationId"), actorID); err != nil {
		if writeError(w, err) {
			return
		}
		response.InternalError(w, "Failed to undo confirmation")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
