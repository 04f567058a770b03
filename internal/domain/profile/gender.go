package profile

import (
	apperr "github.com/KirkDiggler/profile-onboarding/internal/errors"
)

// Gender is the user's self-selected gender
type Gender string

const (
	GenderUnset     Gender = ""
	GenderMale      Gender = "male"
	GenderFemale    Gender = "female"
	GenderNonBinary Gender = "non-binary"
)

// Genders returns the selectable genders
func Genders() []Gender {
	return []Gender{GenderMale, GenderFemale, GenderNonBinary}
}

// ParseGender validates a gender value. The empty string means unset.
func ParseGender(s string) (Gender, error) {
	switch Gender(s) {
	case GenderUnset, GenderMale, GenderFemale, GenderNonBinary:
		return Gender(s), nil
	}
	return "", apperr.InvalidArgumentf("unknown gender %q", s)
}

// Label returns a display label
func (g Gender) Label() string {
	switch g {
	case GenderMale:
		return "Male"
	case GenderFemale:
		return "Female"
	case GenderNonBinary:
		return "Non-binary"
	default:
		return "Not set"
	}
}
