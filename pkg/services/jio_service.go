// Package services holds the Jio business rules. Handlers call into it with an
// already-authenticated caller id; repositories sit behind database interfaces.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"jios-backend/pkg/database"
	"jios-backend/pkg/models"
	"jios-backend/pkg/utils"

	"github.com/sirupsen/logrus"
)

// JioService owns the Jio lifecycle: create, owner-only patch, listing and search.
type JioService struct {
	jios database.JioRepository
	gyms database.GymDirectory
	loc  *time.Location
	now  func() time.Time
	log  *logrus.Entry
}

// Option customizes a JioService.
type Option func(*JioService)

// WithLocation sets the zone used for calendar-day comparisons.
func WithLocation(loc *time.Location) Option {
	return func(s *JioService) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithClock overrides time.Now (tests).
func WithClock(now func() time.Time) Option {
	return func(s *JioService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewJioService 创建Jio服务
func NewJioService(jios database.JioRepository, gyms database.GymDirectory, opts ...Option) *JioService {
	s := &JioService{
		jios: jios,
		gyms: gyms,
		loc:  time.Local,
		now:  time.Now,
		log:  logrus.WithField("component", "jio_service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Location returns the zone used for calendar-day rules.
func (s *JioService) Location() *time.Location { return s.loc }

// Now returns the service clock.
func (s *JioService) Now() time.Time { return s.now() }

// CreateJio 创建Jio
//
// Pre-condition (checked by the request validator): startDateTime and endDateTime
// fall on the same day, start is before end, both are after now.
func (s *JioService) CreateJio(ctx context.Context, callerID string, req models.CreateJioRequest) (*models.Jio, error) {
	if err := s.ensureGym(ctx, req.GymID); err != nil {
		return nil, err
	}

	jio := &models.Jio{
		UserID:              callerID,
		Type:                req.Type,
		NumPasses:           req.NumPasses,
		Price:               req.Price,
		GymID:               req.GymID,
		OpenToClimbTogether: req.OpenToClimbTogether,
		OptionalNote:        req.OptionalNote,
		IsClosed:            false,
	}
	if req.StartDateTime != nil {
		jio.StartDateTime = req.StartDateTime.Time
	}
	if req.EndDateTime != nil {
		jio.EndDateTime = req.EndDateTime.Time
	}

	if err := s.jios.CreateJio(ctx, jio); err != nil {
		return nil, fmt.Errorf("create jio: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"jio_id":  jio.ID,
		"user_id": callerID,
		"gym_id":  jio.GymID,
		"type":    jio.Type,
	}).Info("Jio created")

	// 重新读取，返回与 GET 相同的形态（gym / timings / creatorProfile）
	created, err := s.jios.GetJioByID(ctx, jio.ID)
	if err != nil {
		return nil, fmt.Errorf("reload jio: %w", err)
	}
	return created, nil
}

// PatchJio 部分更新Jio，仅限发帖人
func (s *JioService) PatchJio(ctx context.Context, callerID, jioID string, req models.PatchJioRequest) (*models.Jio, error) {
	existing, err := s.getJio(ctx, jioID)
	if err != nil {
		return nil, err
	}

	// ownership first, before looking at any field
	if existing.UserID != callerID {
		s.log.WithFields(logrus.Fields{
			"jio_id":  jioID,
			"user_id": callerID,
		}).Warn("Patch rejected: caller is not the owner")
		return nil, newError(ErrForbidden, MsgForbidden)
	}

	start := existing.StartDateTime
	if req.StartDateTime != nil {
		start = req.StartDateTime.Time
	}
	end := existing.EndDateTime
	if req.EndDateTime != nil {
		end = req.EndDateTime.Time
	}

	if !utils.SameDay(start, end, s.loc) {
		return nil, newError(ErrInvalidTimeWindow, MsgNotSameDay)
	}
	// start == end passes; only a strictly later start is rejected
	if start.After(end) {
		return nil, newError(ErrInvalidTimeWindow, MsgStartAfterEnd)
	}

	if req.GymID != nil && *req.GymID != existing.GymID {
		if err := s.ensureGym(ctx, *req.GymID); err != nil {
			return nil, err
		}
	}

	// 只写入真正变化的字段；无变化时不触碰 updated_at
	patch := changedFields(existing, req.ToPatchMap())
	if len(patch) == 0 {
		return existing, nil
	}

	updated, err := s.jios.PatchJio(ctx, jioID, patch)
	if err != nil {
		if errors.Is(err, database.ErrRecordNotFound) {
			return nil, newError(ErrNotFound, MsgJioNotFound)
		}
		return nil, fmt.Errorf("patch jio: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"jio_id":  jioID,
		"user_id": callerID,
		"fields":  len(patch),
	}).Info("Jio patched")
	return updated, nil
}

// GetOwnJios 获取调用者自己的Jio（按创建顺序）
func (s *JioService) GetOwnJios(ctx context.Context, callerID string) ([]models.Jio, error) {
	jios, err := s.jios.ListJiosByUser(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("list own jios: %w", err)
	}
	return jios, nil
}

// GetJio returns a single Jio; public.
func (s *JioService) GetJio(ctx context.Context, jioID string) (*models.Jio, error) {
	return s.getJio(ctx, jioID)
}

// SearchJios returns upcoming, open Jios narrowed by the optional filters.
func (s *JioService) SearchJios(ctx context.Context, req models.SearchJioRequest) ([]models.Jio, error) {
	filter := models.JioFilter{
		GymID:               req.GymID,
		Type:                req.Type,
		StartsFrom:          s.now(),
		OpenToClimbTogether: req.OpenToClimbTogether,
		MinPasses:           req.NumPasses,
	}
	if req.Date != nil {
		dayStart, dayEnd := utils.DayBounds(*req.Date, s.loc)
		filter.DayStart = &dayStart
		filter.DayEnd = &dayEnd
	}
	if req.StartDateTime != nil {
		t := req.StartDateTime.Time
		filter.StartAfter = &t
	}
	if req.EndDateTime != nil {
		t := req.EndDateTime.Time
		filter.EndBefore = &t
	}

	jios, err := s.jios.SearchJios(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("search jios: %w", err)
	}
	return jios, nil
}

// ListGyms 列出全部健身房
func (s *JioService) ListGyms(ctx context.Context) ([]models.Gym, error) {
	gyms, err := s.gyms.ListGyms(ctx)
	if err != nil {
		return nil, fmt.Errorf("list gyms: %w", err)
	}
	return gyms, nil
}

func (s *JioService) getJio(ctx context.Context, jioID string) (*models.Jio, error) {
	jio, err := s.jios.GetJioByID(ctx, jioID)
	if err != nil {
		if errors.Is(err, database.ErrRecordNotFound) {
			return nil, newError(ErrNotFound, MsgJioNotFound)
		}
		return nil, fmt.Errorf("get jio: %w", err)
	}
	return jio, nil
}

func (s *JioService) ensureGym(ctx context.Context, gymID int64) error {
	if _, err := s.gyms.GetGymByID(ctx, gymID); err != nil {
		if errors.Is(err, database.ErrRecordNotFound) {
			s.log.WithField("gym_id", gymID).Warn("Rejected unknown gym id")
			return newError(ErrInvalidReference, MsgInvalidGym)
		}
		return fmt.Errorf("lookup gym: %w", err)
	}
	return nil
}

// changedFields drops patch entries that already match the stored record.
func changedFields(existing *models.Jio, patch map[string]interface{}) map[string]interface{} {
	changed := make(map[string]interface{}, len(patch))
	for col, val := range patch {
		if !sameValue(existing, col, val) {
			changed[col] = val
		}
	}
	return changed
}

func sameValue(j *models.Jio, col string, val interface{}) bool {
	switch col {
	case "type":
		return string(j.Type) == val
	case "num_passes":
		return j.NumPasses == val
	case "price":
		return j.Price != nil && *j.Price == val
	case "gym_id":
		return j.GymID == val
	case "start_date_time":
		t, ok := val.(time.Time)
		return ok && j.StartDateTime.Equal(t)
	case "end_date_time":
		t, ok := val.(time.Time)
		return ok && j.EndDateTime.Equal(t)
	case "open_to_climb_together":
		return j.OpenToClimbTogether == val
	case "optional_note":
		return j.OptionalNote == val
	case "is_closed":
		return j.IsClosed == val
	}
	return false
}
