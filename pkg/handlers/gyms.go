package handlers

import (
	"net/http"

	"jios-backend/pkg/models"
	"jios-backend/pkg/services"
	"jios-backend/pkg/utils"
)

// GymsHandler 健身房列表（公开）
type GymsHandler struct {
	service *services.JioService
}

// NewGymsHandler 创建健身房处理器
func NewGymsHandler(service *services.JioService) *GymsHandler {
	return &GymsHandler{service: service}
}

// List GET /api/gyms
func (h *GymsHandler) List(w http.ResponseWriter, r *http.Request) {
	gyms, err := h.service.ListGyms(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if gyms == nil {
		gyms = []models.Gym{}
	}
	utils.WriteSuccessResponse(w, gyms)
}
