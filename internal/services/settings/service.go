package settings

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/KirkDiggler/profile-onboarding/internal/domain/profile"
	apperr "github.com/KirkDiggler/profile-onboarding/internal/errors"
	"github.com/KirkDiggler/profile-onboarding/internal/identity"
	"github.com/KirkDiggler/profile-onboarding/internal/repositories/profiles"
)

// DefaultProfilePicture is shown when the record has no picture
const DefaultProfilePicture = "default-profile.png"

// ViewState holds the screen-local flags of the settings editor
type ViewState struct {
	EditingDisplayName bool `json:"editing_display_name"`
}

// Form is the editable copy of the settings fields
type Form struct {
	DisplayName    string    `json:"display_name"`
	ProfilePicture string    `json:"profile_picture"`
	View           ViewState `json:"view"`
}

// StartEditing opens the display name for editing
func (f *Form) StartEditing() {
	f.View.EditingDisplayName = true
}

// SetDisplayName changes the name; only allowed while editing
func (f *Form) SetDisplayName(name string) error {
	if !f.View.EditingDisplayName {
		return apperr.FailedPrecondition("display name is not being edited")
	}
	f.DisplayName = strings.TrimSpace(name)
	return nil
}

// FinishEditing closes the name editor
func (f *Form) FinishEditing() {
	f.View.EditingDisplayName = false
}

// Service backs the edit-profile screen: one step, one save
type Service interface {
	Load(ctx context.Context, who identity.Provider) (*Form, error)
	Save(ctx context.Context, who identity.Provider, form *Form) error
	Discard(ctx context.Context, who identity.Provider) (*Form, error)
}

// ServiceConfig holds configuration for the service
type ServiceConfig struct {
	Repository profiles.Repository // Required
	Logger     *zap.Logger
}

type service struct {
	repository profiles.Repository
	logger     *zap.Logger
}

// NewService creates a new settings service
func NewService(cfg *ServiceConfig) Service {
	if cfg.Repository == nil {
		panic("profile repository is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{repository: cfg.Repository, logger: logger}
}

func principalID(who identity.Provider) (string, error) {
	if who == nil {
		return "", apperr.Unauthenticated("no identity provider")
	}
	p, ok := who.Current()
	if !ok || p.ID == "" {
		return "", apperr.Unauthenticated("sign in to edit your profile")
	}
	return p.ID, nil
}

// Load reads the current settings
func (s *service) Load(ctx context.Context, who identity.Provider) (*Form, error) {
	id, err := principalID(who)
	if err != nil {
		return nil, err
	}

	record, err := s.repository.Get(ctx, id)
	if err != nil {
		return nil, apperr.Wrapf(err, "failed to load settings for '%s'", id)
	}

	form := &Form{
		DisplayName:    record.DisplayName,
		ProfilePicture: record.ProfilePicture,
	}
	if form.ProfilePicture == "" {
		form.ProfilePicture = DefaultProfilePicture
	}
	return form, nil
}

// Save writes both fields with one merge and closes the editor
func (s *service) Save(ctx context.Context, who identity.Provider, form *Form) error {
	id, err := principalID(who)
	if err != nil {
		return err
	}
	if form == nil {
		return apperr.InvalidArgument("form cannot be nil")
	}

	update := &profile.Update{
		DisplayName:    profile.Ptr(form.DisplayName),
		ProfilePicture: profile.Ptr(form.ProfilePicture),
	}
	if err := s.repository.Merge(ctx, id, update); err != nil {
		return apperr.Wrapf(err, "failed to save settings for '%s'", id)
	}

	form.FinishEditing()
	s.logger.Info("settings saved", zap.String("profile_id", id))
	return nil
}

// Discard drops local edits by reloading from the store
func (s *service) Discard(ctx context.Context, who identity.Provider) (*Form, error) {
	return s.Load(ctx, who)
}
