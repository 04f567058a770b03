package onboarding

import (
	"fmt"
	"strings"

	"github.com/KirkDiggler/profile-onboarding/internal/domain/profile"
)

// Summary is the read-only view shown on the terminal step
type Summary struct {
	DisplayName    string                 `json:"display_name"`
	Gender         string                 `json:"gender"`
	Picture        string                 `json:"picture,omitempty"`
	HighlightColor string                 `json:"highlight_color"`
	Bio            string                 `json:"bio"`
	Interests      []string               `json:"interests"`
	Availability   []profile.DaySelection `json:"availability"`
}

// Summarize builds the summary view of a draft
func Summarize(d *profile.Draft) Summary {
	return Summary{
		DisplayName:    d.DisplayName(),
		Gender:         d.Gender().Label(),
		Picture:        d.Picture(),
		HighlightColor: string(d.HighlightColor()),
		Bio:            d.Bio(),
		Interests:      d.Interests().Strings(),
		Availability:   d.AvailabilitySummary(),
	}
}

// AvailabilityLines renders one "Day: Block, Block" line per selected day
func (s Summary) AvailabilityLines() []string {
	lines := make([]string, 0, len(s.Availability))
	for _, sel := range s.Availability {
		blocks := make([]string, len(sel.Blocks))
		for i, b := range sel.Blocks {
			blocks[i] = string(b)
		}
		lines = append(lines, fmt.Sprintf("%s: %s", sel.Day, strings.Join(blocks, ", ")))
	}
	return lines
}
