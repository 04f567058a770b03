package onboarding

import (
	"time"

	"github.com/KirkDiggler/profile-onboarding/internal/domain/profile"
	apperr "github.com/KirkDiggler/profile-onboarding/internal/errors"
)

// StepType identifies a step in the onboarding flow
type StepType string

const (
	StepTypeWelcome   StepType = "welcome"
	StepTypeName      StepType = "name"
	StepTypeGender    StepType = "gender"
	StepTypePicture   StepType = "picture"
	StepTypeBio       StepType = "bio"
	StepTypeInterests StepType = "interests"
	StepTypeSchedule  StepType = "schedule"
	StepTypeSummary   StepType = "summary"
)

// WelcomeDelay is how long the welcome step waits before moving on by itself
const WelcomeDelay = 3000 * time.Millisecond

// StepDefinition describes one screen of the wizard
type StepDefinition struct {
	Type   StepType `json:"type"`
	Title  string   `json:"title"`
	Prompt string   `json:"prompt,omitempty"`

	// Fields are the draft regions this step may change
	Fields []profile.Field `json:"fields,omitempty"`

	// Validate must pass before the engine leaves the step going forward
	Validate func(d *profile.Draft) error `json:"-"`

	// AutoAdvance, when non-zero, moves forward once without user input
	AutoAdvance time.Duration `json:"auto_advance,omitempty"`

	// Terminal marks the summary step whose forward action is the commit
	Terminal bool `json:"terminal"`
}

// Owns reports whether the step may change the given field
func (s *StepDefinition) Owns(field profile.Field) bool {
	for _, f := range s.Fields {
		if f == field {
			return true
		}
	}
	return false
}

func validateBio(d *profile.Draft) error {
	// SetBio already enforces the limit; this catches drafts built some other way
	if d.BioLength() > profile.MaxBioLength {
		return apperr.Validationf("bio is %d characters, the limit is %d", d.BioLength(), profile.MaxBioLength)
	}
	return nil
}

// DefaultSteps returns the eight steps of the profile onboarding flow
func DefaultSteps() []StepDefinition {
	return []StepDefinition{
		{
			Type:        StepTypeWelcome,
			Title:       "Welcome!",
			Prompt:      "Let's set up your account!",
			AutoAdvance: WelcomeDelay,
		},
		{
			Type:   StepTypeName,
			Title:  "What's your display name?",
			Prompt: "(You can change this later in settings.)",
			Fields: []profile.Field{profile.FieldDisplayName},
		},
		{
			Type:   StepTypeGender,
			Title:  "Select your gender",
			Fields: []profile.Field{profile.FieldGender},
		},
		{
			Type:   StepTypePicture,
			Title:  "Choose a profile picture",
			Prompt: "Pick an avatar and a highlight color.",
			Fields: []profile.Field{profile.FieldPicture, profile.FieldHighlightColor},
		},
		{
			Type:     StepTypeBio,
			Title:    "Tell us a little about yourself!",
			Prompt:   "Enter a short bio (up to 500 characters)",
			Fields:   []profile.Field{profile.FieldBio},
			Validate: validateBio,
		},
		{
			Type:   StepTypeInterests,
			Title:  "Select your interests",
			Prompt: "Choose from various academic disciplines to personalize your profile.",
			Fields: []profile.Field{profile.FieldInterests},
		},
		{
			Type:   StepTypeSchedule,
			Title:  "Select your availability",
			Fields: []profile.Field{profile.FieldAvailability},
		},
		{
			Type:     StepTypeSummary,
			Title:    "Profile Summary",
			Terminal: true,
		},
	}
}
