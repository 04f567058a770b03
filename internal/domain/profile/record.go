package profile

import (
	"time"
)

// Record is the stored user profile. Signup creates it; onboarding and the
// settings screen merge into it.
type Record struct {
	ID               string                     `json:"id"`
	FirstName        string                     `json:"first_name"`
	Name             string                     `json:"name"`
	DisplayName      string                     `json:"display_name"`
	Gender           Gender                     `json:"gender"`
	Bio              string                     `json:"bio"`
	HighlightColor   HighlightColor             `json:"highlight_color"`
	ProfilePicture   string                     `json:"profile_picture"`
	Interests        []string                   `json:"interests"`
	Availability     map[string]map[string]bool `json:"availability"`
	ProfileCompleted bool                       `json:"profile_completed"`
	UpdatedAt        time.Time                  `json:"updated_at"`
}

// Update is a partial record. Nil fields are left untouched by a merge;
// every non-nil field is applied together or not at all.
type Update struct {
	ProfileCompleted *bool
	Name             *string
	DisplayName      *string
	Gender           *Gender
	Bio              *string
	HighlightColor   *HighlightColor
	ProfilePicture   *string
	Interests        []string
	Availability     map[string]map[string]bool
}

// Ptr returns a pointer to v
func Ptr[T any](v T) *T {
	return &v
}

// IsEmpty reports whether the update carries no fields
func (u *Update) IsEmpty() bool {
	return u == nil || (u.ProfileCompleted == nil && u.Name == nil && u.DisplayName == nil &&
		u.Gender == nil && u.Bio == nil && u.HighlightColor == nil && u.ProfilePicture == nil &&
		u.Interests == nil && u.Availability == nil)
}

// ApplyTo merges the update into a record in place
func (u *Update) ApplyTo(r *Record) {
	if u == nil || r == nil {
		return
	}
	if u.ProfileCompleted != nil {
		r.ProfileCompleted = *u.ProfileCompleted
	}
	if u.Name != nil {
		r.Name = *u.Name
	}
	if u.DisplayName != nil {
		r.DisplayName = *u.DisplayName
	}
	if u.Gender != nil {
		r.Gender = *u.Gender
	}
	if u.Bio != nil {
		r.Bio = *u.Bio
	}
	if u.HighlightColor != nil {
		r.HighlightColor = *u.HighlightColor
	}
	if u.ProfilePicture != nil {
		r.ProfilePicture = *u.ProfilePicture
	}
	if u.Interests != nil {
		r.Interests = append([]string{}, u.Interests...)
	}
	if u.Availability != nil {
		r.Availability = copyCells(u.Availability)
	}
}

func copyCells(cells map[string]map[string]bool) map[string]map[string]bool {
	out := make(map[string]map[string]bool, len(cells))
	for day, row := range cells {
		inner := make(map[string]bool, len(row))
		for block, v := range row {
			inner[block] = v
		}
		out[day] = inner
	}
	return out
}

// Clone returns a deep copy
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	c := *r
	if r.Interests != nil {
		c.Interests = append([]string{}, r.Interests...)
	}
	if r.Availability != nil {
		c.Availability = copyCells(r.Availability)
	}
	return &c
}
