package profiles

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/voyagent/voyagent/internal/models"
)

var _ ProfileService = (*ProfileServiceImpl)(nil)

type ProfileService interface {
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
	UpdateProfile(ctx context.Context, userID string, params models.UpdateProfileParams) error
}

type ProfileServiceImpl struct {
	logger *zap.Logger
	repo   ProfileRepo
}

func NewProfileService(repo ProfileRepo, logger *zap.Logger) *ProfileServiceImpl {
	return &ProfileServiceImpl{logger: logger, repo: repo}
}

// GetProfile returns the stored profile, or an empty one when the user has
// never filled anything in. The UI treats both the same way.
func (s *ProfileServiceImpl) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	profile, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return &models.Profile{UserID: userID}, nil
		}
		return nil, err
	}
	return profile, nil
}

// UpdateProfile validates and applies the PUT /api/profile fields.
func (s *ProfileServiceImpl) UpdateProfile(ctx context.Context, userID string, params models.UpdateProfileParams) error {
	l := s.logger.With(zap.String("method", "UpdateProfile"), zap.String("userID", userID))

	fields := map[string]any{}
	if params.FullName != nil {
		fields["full_name"] = *params.FullName
	}
	if params.Email != nil {
		fields["email"] = *params.Email
	}
	if params.Phone != nil {
		fields["phone"] = *params.Phone
	}
	if params.PassportNumber != nil {
		fields["passport_number"] = *params.PassportNumber
	}
	if params.Nationality != nil {
		fields["nationality"] = *params.Nationality
	}
	if params.DateOfBirth != nil && *params.DateOfBirth != "" {
		dob, err := time.Parse("2006-01-02", *params.DateOfBirth)
		if err != nil {
			return fmt.Errorf("invalid date_of_birth %q: %w", *params.DateOfBirth, models.ErrValidation)
		}
		fields["date_of_birth"] = dob
	}

	if len(fields) == 0 {
		l.Debug("No profile fields to update")
		return nil
	}

	if err := s.repo.UpdateProfile(ctx, userID, fields); err != nil {
		l.Error("Profile update failed", zap.Error(err))
		return err
	}
	l.Info("Profile updated", zap.Int("fields", len(fields)))
	return nil
}
