package group

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/groupsplit/pkg/middleware"
	"github.com/fkhayef/groupsplit/pkg/response"
)

// Handler handles HTTP requests for group operations
type Handler struct {
	service *Service
}

// NewHandler creates a new group handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for group endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{groupId}", h.GetByID)
	r.Put("/{groupId}", h.Update)
	r.Delete("/{groupId}", h.Delete)

	// Member management
	r.Post("/{groupId}/members", h.AddMember)
	r.Get("/{groupId}/members", h.GetMembers)
	r.Put("/{groupId}/members/me", h.UpdateMe)
	r.Delete("/{groupId}/members/{userId}", h.RemoveMember)

	return r
}

// WriteError maps group errors to HTTP responses. It reports whether err
// was recognised.
func WriteError(w http.ResponseWriter, err error) bool {
	switch {
	case errors.Is(err, ErrGroupNotFound), errors.Is(err, ErrMemberNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, ErrNotMember), errors.Is(err, ErrNotAuthorized):
		response.Forbidden(w, err.Error())
	case errors.Is(err, ErrMemberAlreadyExists), errors.Is(err, ErrMemberHasBalance), errors.Is(err, ErrLastAdmin):
		response.Conflict(w, err.Error())
	case errors.Is(err, ErrInvalidGroupName), errors.Is(err, ErrInvalidDisplayName),
		errors.Is(err, ErrInvalidUserID), errors.Is(err, ErrInvalidRole):
		response.UnprocessableEntity(w, err.Error())
	default:
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

func withMembers(g *Group, members []*GroupMember) *GroupResponse {
	resp := g.ToResponse()
	resp.Members = make([]*MemberResponse, len(members))
	for i, m := range members {
		resp.Members[i] = m.ToResponse()
	}
	return resp
}

// Create handles POST /groups
// @Summary      Create a new group
// @Description  Create a new group and add the creator as admin
// @Tags         groups
// @Accept       json
// @Produce      json
// @Param        request body CreateGroupRequest true "Group creation request"
// @Success      201 {object} response.APIResponse{data=GroupResponse}
// @Failure      400 {object} response.APIResponse
// @Router       /groups [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	creatorID, ok := userID(w, r)
	if !ok {
		return
	}

	var req CreateGroupRequest
	if err := response.Decode(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	group, members, err := h.service.Create(r.Context(), creatorID, &req)
	if err != nil {
		if WriteError(w, err) {
			return
		}
		response.InternalError(w, "Failed to create group")
		return
	}

	response.JSON(w, http.StatusCreated, withMembers(group, members))
}

// GetByID handles GET /groups/{groupId}
// @Summary      Get group by ID
// @Description  Get a group with all its members
// @Tags         groups
// @Produce      json
// @Param        groupId path string true "Group ID"
// @Success      200 {object} response.APIResponse{data=GroupResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /groups/{groupId} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	actorID, ok := userID(w, r)
	if !ok {
		return
	}

	group, members, err := h.service.GetByID(r.Context(), chi.URLParam(r, "groupId"), actorID)
	if err != nil {
		if WriteError(w, err) {
			return
		}
		response.InternalError(w, "Failed to get group")
		return
	}

	response.JSON(w, http.StatusOK, withMembers(group, members))
}

// List handles GET /groups
// @Summary      List my groups
// @Tags         groups
// @Produce      json
// @Param        page query int false "Page number"
// @Param        per_page query int false "Items per page"
// @Success      200 {object} response.APIResponse{data=[]GroupResponse}
// @Router       /groups [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	actorID, ok := userID(w, r)
	if !ok {
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

	groups, total, err := h.service.ListByUserID(r.Context(), actorID, page, perPage)
	if err != nil {
		response.InternalError(w, "Failed to list groups")
		return
	}

	groupResponses := make([]*GroupResponse, len(groups))
	for i, g := range groups {
		groupResponses[i] = g.ToResponse()
	}

	meta := &response.Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: (total + perPage - 1) / perPage,
	}

	response.JSONWithMeta(w, http.StatusOK, groupResponses, meta)
}

// Update handles PUT /groups/{groupId}
// @Summary      Update a group
// @Tags         groups
// @Accept       json
// @Produce      json
// @Param        groupId path string true "Group ID"
// @Param        request body UpdateGroupRequest true "Group update request"
// @Success      200 {object} response.APIResponse{data=GroupResponse}
// @Failure      403 {object} response.APIResponse
// @Router       /groups/{groupId} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	actorID, ok := userID(w, r)
	if !ok {
		return
	}

	var req UpdateGroupRequest
	if err := response.Decode(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	group, err := h.service.Update(r.Context(), chi.URLParam(r, "groupId"), actorID, &req)
	if err != nil {
		if WriteError(w, err) {
			return
		}
		response.InternalError(w, "Failed to update group")
		return
	}

	response.JSON(w, http.StatusOK, group.ToResponse())
}

// Delete handles DELETE /groups/{groupId}
// @Summary      Delete a group
// @Tags         groups
// @Param        groupId path string true "Group ID"
// @Success      204
// @Failure      403 {object} response.APIResponse
// @Router       /groups/{groupId} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	actorID, ok := userID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), chi.URLParam(r, "groupId"), actorID); err != nil {
		if WriteError(w, err) {
			return
		}
		response.InternalError(w, "Failed to delete group")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AddMember handles POST /groups/{groupId}/members
// @Summary      Add a member
// @Tags         members
// @Accept       json
// @Produce      json
// @Param        groupId path string true "Group ID"
// @Param        request body AddMemberRequest true "New member"
// @Success      201 {object} response.APIResponse{data=MemberResponse}
// @Failure      409 {object} response.APIResponse
// @Router       /groups/{groupId}/members [post]
func (h *Handler) AddMember(w http.ResponseWriter, r *http.Request) {
	actorID, ok := userID(w, r)
	if !ok {
		return
	}

	var req AddMemberRequest
	if err := response.Decode(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	member, err := h.service.AddMember(r.Context(), chi.URLParam(r, "groupId"), actorID, &req)
	if err != nil {
		if WriteError(w, err) {
			return
		}
		response.InternalError(w, "Failed to add member")
		return
	}

	response.JSON(w, http.StatusCreated, member.ToResponse())
}

// GetMembers handles GET /groups/{groupId}/members
// @Summary      List members
// @Tags         members
// @Produce      json
// @Param        groupId path string true "Group ID"
// @Success      200 {object} response.APIResponse{data=[]MemberResponse}
// @Router       /groups/{groupId}/members [get]
func (h *Handler) GetMembers(w http.ResponseWriter, r *http.Request) {
	actorID, ok := userID(w, r)
	if !ok {
		return
	}

	members, err := h.service.GetMembers(r.Context(), chi.URLParam(r, "groupId"), actorID)
	if err != nil {
		if WriteError(w, err) {
			return
		}
		response.InternalError(w, "Failed to get members")
		return
	}

	memberResponses := make([]*MemberResponse, len(members))
	for i, m := range members {
		memberResponses[i] = m.ToResponse()
	}

	response.JSON(w, http.StatusOK, memberResponses)
}

// UpdateMe handles PUT /groups/{groupId}/members/me
// @Summary      Change my display name in the group
// @Tags         members
// @Accept       json
// @Produce      json
// @Param        groupId path string true "Group ID"
// @Param        request body UpdateMemberRequest true "New display name"
// @Success      200 {object} response.APIResponse{data=MemberResponse}
// @Router       /groups/{groupId}/members/me [put]
func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	actorID, ok := userID(w, r)
	if !ok {
		return
	}

	var req UpdateMemberRequest
	if err := response.Decode(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	member, err := h.service.UpdateMemberName(r.Context(), chi.URLParam(r, "groupId"), actorID, &req)
	if err != nil {
		if WriteError(w, err) {
			return
		}
		response.InternalError(w, "Failed to update member")
		return
	}

	response.JSON(w, http.StatusOK, member.ToResponse())
}

// RemoveMember handles DELETE /groups/{groupId}/members/{userId}
// @Summary      Remove a member
// @Description  Members may leave; admins may remove anyone. Fails while the member has an unsettled balance.
// @Tags         members
// @Param        groupId path string true "Group ID"
// @Param        userId path string true "User ID"
// @Success      204
// @Failure      409 {object} response.APIResponse
// @Router       /groups/{groupId}/members/{userId} [delete]
func (h *Handler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	actorID, ok := userID(w, r)
	if !ok {
		return
	}

	err := h.service.RemoveMember(r.Context(), chi.URLParam(r, "groupId"), actorID, chi.URLParam(r, "userId"))
	if err != nil {
		if WriteError(w, err) {
			return
		}
		response.InternalError(w, "Failed to remove member")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
