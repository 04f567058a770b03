package profile

import (
	"regexp"
	"strconv"
	"strings"

	apperr "github.com/KirkDiggler/profile-onboarding/internal/errors"
)

// HighlightColor is an #RRGGBB color used to frame the profile picture
type HighlightColor string

// DefaultHighlightColor is tomato
const DefaultHighlightColor HighlightColor = "#FF6347"

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// ParseHighlightColor validates and normalises a color to upper-case #RRGGBB
func ParseHighlightColor(s string) (HighlightColor, error) {
	s = strings.TrimSpace(s)
	if !hexColor.MatchString(s) {
		return "", apperr.InvalidArgumentf("highlight color %q must be in #RRGGBB form", s)
	}
	return HighlightColor(strings.ToUpper(s)), nil
}

// Int returns the color as a 24-bit integer (Discord embed colors use this)
func (c HighlightColor) Int() int {
	v, err := strconv.ParseInt(strings.TrimPrefix(string(c), "#"), 16, 32)
	if err != nil {
		return 0
	}
	return int(v)
}

// DefaultAvatars are the stock pictures offered when the user has none
var DefaultAvatars = []string{
	"/images/avatar1.png",
	"/images/avatar2.png",
	"/images/avatar3.png",
	"/images/avatar4.png",
}
