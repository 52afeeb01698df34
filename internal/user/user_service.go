// Package user owns the profile rows that give message senders and typers
// a display name.
package user

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"camerpulse/internal/common"
	"camerpulse/internal/dbsql"
)

const maxDisplayName = 120

type UserService interface {
	GetProfile(ctx context.Context, userID string) (*dbsql.Profile, error)
	// UpdateProfile creates the profile on first use. Empty fields keep
	// their stored value.
	UpdateProfile(ctx context.Context, userID, displayName, avatarURL string) (*dbsql.Profile, error)
}

type userService struct {
	profiles ProfileRepository
}

func NewUserService(profiles ProfileRepository) UserService {
	return &userService{profiles: profiles}
}

func (s *userService) GetProfile(ctx context.Context, userID string) (*dbsql.Profile, error) {
	if err := common.ValidateID("user id", userID); err != nil {
		return nil, err
	}
	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, common.Remote("get profile", err)
	}
	return profile, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID, displayName, avatarURL string) (*dbsql.Profile, error) {
	if err := common.ValidateID("user id", userID); err != nil {
		return nil, err
	}
	displayName = strings.TrimSpace(displayName)
	avatarURL = strings.TrimSpace(avatarURL)
	if displayName == "" && avatarURL == "" {
		return nil, fmt.Errorf("nothing to update: %w", common.ErrValidation)
	}
	if utf8.RuneCountInString(displayName) > maxDisplayName {
		return nil, fmt.Errorf("display name exceeds %d characters: %w", maxDisplayName, common.ErrValidation)
	}
	if avatarURL != "" {
		if err := validateAvatarURL(avatarURL); err != nil {
			return nil, err
		}
	}

	profile, err := s.profiles.GetProfile(ctx, userID)
	switch {
	case err == nil:
	case errors.Is(err, common.ErrNotFound):
		profile = &dbsql.Profile{UserID: userID}
	default:
		return nil, common.Remote("get profile", err)
	}

	if displayName != "" {
		profile.DisplayName = displayName
	}
	if avatarURL != "" {
		profile.AvatarURL = avatarURL
	}
	if profile.DisplayName == "" {
		return nil, fmt.Errorf("display name is required: %w", common.ErrValidation)
	}

	if err := s.profiles.UpsertProfile(ctx, profile); err != nil {
		return nil, common.Remote("save profile", err)
	}
	return profile, nil
}

func validateAvatarURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("avatar url must be an absolute http(s) url: %w", common.ErrValidation)
	}
	return nil
}
