package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"jios-backend/pkg/middleware"
	"jios-backend/pkg/models"
	"jios-backend/pkg/services"
	"jios-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

// JiosHandler 处理 /api/posts 下的请求
type JiosHandler struct {
	service   *services.JioService
	validator *utils.Validator
}

// NewJiosHandler 创建Jio处理器
func NewJiosHandler(service *services.JioService) *JiosHandler {
	return &JiosHandler{
		service:   service,
		validator: utils.NewValidator(service.Now, service.Location()),
	}
}

// ListOwn GET /api/posts
func (h *JiosHandler) ListOwn(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.RequireUser(r.Context())
	if err != nil {
		utils.WriteUnauthorizedResponse(w, "Authentication required")
		return
	}

	jios, err := h.service.GetOwnJios(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteSuccessResponse(w, nonNil(jios))
}

// Create POST /api/posts
func (h *JiosHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.RequireUser(r.Context())
	if err != nil {
		utils.WriteUnauthorizedResponse(w, "Authentication required")
		return
	}

	var req models.CreateJioRequest
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid request body: "+err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		utils.WriteValidationErrorResponse(w, "Validation failed", utils.FormatValidationError(err))
		return
	}

	jio, err := h.service.CreateJio(r.Context(), user.ID, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteCreatedResponse(w, jio)
}

// Search GET /api/posts/search
func (h *JiosHandler) Search(w http.ResponseWriter, r *http.Request) {
	req, err := parseSearchQuery(r.URL.Query(), h.service.Location())
	if err != nil {
		utils.WriteValidationErrorResponse(w, "Invalid search query", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		utils.WriteValidationErrorResponse(w, "Invalid search query", utils.FormatValidationError(err))
		return
	}

	jios, err := h.service.SearchJios(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteSuccessResponse(w, nonNil(jios))
}

// Get GET /api/posts/{postId}（公开）
func (h *JiosHandler) Get(w http.ResponseWriter, r *http.Request) {
	jio, err := h.service.GetJio(r.Context(), chi.URLParam(r, "postId"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if viewer, ok := middleware.GetUserFromContext(r.Context()); ok {
		logrus.WithFields(logrus.Fields{
			"jio_id": jio.ID,
			"viewer": viewer.ID,
			"owner":  viewer.ID == jio.UserID,
		}).Debug("👀 Jio viewed")
	}
	utils.WriteSuccessResponse(w, jio)
}

// Patch PATCH /api/posts/{postId}
func (h *JiosHandler) Patch(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.RequireUser(r.Context())
	if err != nil {
		utils.WriteUnauthorizedResponse(w, "Authentication required")
		return
	}

	var req models.PatchJioRequest
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid request body: "+err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		utils.WriteValidationErrorResponse(w, "Validation failed", utils.FormatValidationError(err))
		return
	}

	jio, err := h.service.PatchJio(r.Context(), user.ID, chi.URLParam(r, "postId"), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteSuccessResponse(w, jio)
}

// writeServiceError 将服务层错误映射为HTTP响应
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var svcErr *services.Error
	if errors.As(err, &svcErr) {
		switch status := svcErr.HTTPStatus(); status {
		case http.StatusBadRequest:
			utils.WriteBadRequestResponse(w, svcErr.Message)
		case http.StatusForbidden:
			utils.WriteForbiddenResponse(w, svcErr.Message)
		case http.StatusNotFound:
			utils.WriteNotFoundResponse(w, svcErr.Message)
		default:
			utils.WriteErrorResponse(w, status, svcErr.Message)
		}
		return
	}

	logrus.WithError(err).WithFields(logrus.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
	}).Error("Request failed")
	utils.WriteInternalServerErrorResponse(w, "Internal server error occurred")
}

// parseSearchQuery reads the optional search filters from the query string.
// date accepts YYYY-MM-DD or any accepted datetime; only its calendar day in loc is used.
func parseSearchQuery(q url.Values, loc *time.Location) (models.SearchJioRequest, error) {
	var req models.SearchJioRequest

	if v := strings.TrimSpace(q.Get("gymId")); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return req, fmt.Errorf("gymId: must be an integer")
		}
		req.GymID = &id
	}
	if v := strings.TrimSpace(q.Get("type")); v != "" {
		t := models.JioType(v)
		req.Type = &t
	}
	if v := strings.TrimSpace(q.Get("date")); v != "" {
		day, err := parseDay(v, loc)
		if err != nil {
			return req, fmt.Errorf("date: %w", err)
		}
		req.Date = &day
	}
	if v := strings.TrimSpace(q.Get("startDateTime")); v != "" {
		dt, err := models.ParseDateTime(v)
		if err != nil {
			return req, fmt.Errorf("startDateTime: %w", err)
		}
		req.StartDateTime = &dt
	}
	if v := strings.TrimSpace(q.Get("endDateTime")); v != "" {
		dt, err := models.ParseDateTime(v)
		if err != nil {
			return req, fmt.Errorf("endDateTime: %w", err)
		}
		req.EndDateTime = &dt
	}
	if v := strings.TrimSpace(q.Get("openToClimbTogether")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return req, fmt.Errorf("openToClimbTogether: must be true or false")
		}
		req.OpenToClimbTogether = &b
	}
	if v := strings.TrimSpace(q.Get("numPasses")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return req, fmt.Errorf("numPasses: must be an integer")
		}
		req.NumPasses = &n
	}
	return req, nil
}

func parseDay(v string, loc *time.Location) (time.Time, error) {
	if day, err := time.ParseInLocation("2006-01-02", v, loc); err == nil {
		return day, nil
	}
	dt, err := models.ParseDateTime(v)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", v)
	}
	return dt.In(loc), nil
}

// nonNil keeps empty lists as [] in JSON.
func nonNil(jios []models.Jio) []models.Jio {
	if jios == nil {
		return []models.Jio{}
	}
	return jios
}
