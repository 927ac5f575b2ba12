package handlers

import (
	"net/http"

	"jios-backend/pkg/middleware"
	"jios-backend/pkg/models"
	"jios-backend/pkg/services"
	"jios-backend/pkg/utils"
)

// ProfileHandler 处理 /api/profile（调用者自己的资料）
type ProfileHandler struct {
	service   *services.ProfileService
	validator *utils.Validator
}

// NewProfileHandler 创建资料处理器
func NewProfileHandler(service *services.ProfileService, validator *utils.Validator) *ProfileHandler {
	return &ProfileHandler{service: service, validator: validator}
}

// Get GET /api/profile
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.RequireUser(r.Context())
	if err != nil {
		utils.WriteUnauthorizedResponse(w, "Authentication required")
		return
	}

	profile, err := h.service.GetProfile(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteSuccessResponse(w, profile)
}

// Put PUT /api/profile
func (h *ProfileHandler) Put(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.RequireUser(r.Context())
	if err != nil {
		utils.WriteUnauthorizedResponse(w, "Authentication required")
		return
	}

	var req models.UpdateProfileRequest
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid request body: "+err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		utils.WriteValidationErrorResponse(w, "Validation failed", utils.FormatValidationError(err))
		return
	}

	profile, err := h.service.SaveProfile(r.Context(), user.ID, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteSuccessResponse(w, profile)
}
