package services

import (
	"context"
	"errors"
	"fmt"

	"jios-backend/pkg/database"
	"jios-backend/pkg/models"

	"github.com/sirupsen/logrus"
)

// ProfileService 管理发帖人的联系资料（Telegram）
type ProfileService struct {
	profiles database.ProfileStore
	log      *logrus.Entry
}

// NewProfileService 创建资料服务
func NewProfileService(profiles database.ProfileStore) *ProfileService {
	return &ProfileService{
		profiles: profiles,
		log:      logrus.WithField("component", "profile_service"),
	}
}

// GetProfile returns the caller's own profile.
func (s *ProfileService) GetProfile(ctx context.Context, callerID string) (*models.UserProfile, error) {
	profile, err := s.profiles.GetProfile(ctx, callerID)
	if err != nil {
		if errors.Is(err, database.ErrRecordNotFound) {
			return nil, newError(ErrNotFound, MsgProfileNotFound)
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return profile, nil
}

// SaveProfile creates or replaces the caller's Telegram handle.
func (s *ProfileService) SaveProfile(ctx context.Context, callerID string, req models.UpdateProfileRequest) (*models.UserProfile, error) {
	profile, err := s.profiles.UpsertProfile(ctx, &models.UserProfile{
		UserID:         callerID,
		TelegramHandle: models.NormalizeTelegramHandle(req.TelegramHandle),
	})
	if err != nil {
		return nil, fmt.Errorf("save profile: %w", err)
	}

	s.log.WithField("user_id", callerID).Info("Profile saved")
	return profile, nil
}
