package profile

import (
	"unicode/utf8"

	apperr "github.com/KirkDiggler/profile-onboarding/internal/errors"
)

// MaxBioLength is the bio limit in characters
const MaxBioLength = 500

// Field names a region of the draft that a single step owns
type Field string

const (
	FieldDisplayName    Field = "display_name"
	FieldGender         Field = "gender"
	FieldPicture        Field = "picture"
	FieldHighlightColor Field = "highlight_color"
	FieldBio            Field = "bio"
	FieldInterests      Field = "interests"
	FieldAvailability   Field = "availability"
)

// Draft accumulates the output of every onboarding step. It is never
// persisted on its own; the commit turns it into an Update.
type Draft struct {
	displayName    string
	gender         Gender
	picture        string
	highlightColor HighlightColor
	bio            string
	interests      InterestSet
	availability   AvailabilityGrid
}

// NewDraft returns a draft holding the defaults
func NewDraft() *Draft {
	return &Draft{
		highlightColor: DefaultHighlightColor,
	}
}

func (d *Draft) DisplayName() string { return d.displayName }
func (d *Draft) Gender() Gender { return d.gender }
func (d *Draft) Picture() string { return d.picture }
func (d *Draft) HighlightColor() HighlightColor { return d.highlightColor }
func (d *Draft) Bio() string { return d.bio }
func (d *Draft) Interests() InterestSet { return d.interests.clone() }
func (d *Draft) Availability() AvailabilityGrid { return d.availability }
func (d *Draft) HasInterest(interest Interest) bool { return d.interests.Has(interest) }
func (d *Draft) BioLength() int { return utf8.RuneCountInString(d.bio) }
func (d *Draft) HasPicture() bool { return d.picture != "" }
func (d *Draft) AvailabilitySummary() []DaySelection { return d.availability.SelectedSummary() }
func (d *Draft) InterestList() []Interest { return d.interests.List() }

// SetDisplayName replaces the display name. Empty names are allowed.
func (d *Draft) SetDisplayName(name string) {
	d.displayName = name
}

// SetGender replaces the gender
func (d *Draft) SetGender(g Gender) error {
	parsed, err := ParseGender(string(g))
	if err != nil {
		return err
	}
	d.gender = parsed
	return nil
}

// SetPicture replaces the picture reference; empty clears it
func (d *Draft) SetPicture(ref string) {
	d.picture = ref
}

// SetHighlightColor replaces the highlight color
func (d *Draft) SetHighlightColor(c HighlightColor) error {
	parsed, err := ParseHighlightColor(string(c))
	if err != nil {
		return err
	}
	d.highlightColor = parsed
	return nil
}

// SetBio replaces the bio. Input longer than MaxBioLength characters is
// rejected and the current bio is kept.
func (d *Draft) SetBio(bio string) error {
	if n := utf8.RuneCountInString(bio); n > MaxBioLength {
		return apperr.Validationf("bio is %d characters, the limit is %d", n, MaxBioLength).
			WithMeta("length", n)
	}
	d.bio = bio
	return nil
}

// ToggleInterest flips membership of a vocabulary interest
func (d *Draft) ToggleInterest(interest Interest) error {
	return d.interests.Toggle(interest)
}

// ToggleAvailability flips one availability cell
func (d *Draft) ToggleAvailability(day Day, block TimeBlock) error {
	return d.availability.Toggle(day, block)
}

// Clone returns a deep copy
func (d *Draft) Clone() *Draft {
	c := *d
	c.interests = d.interests.clone()
	return &c
}
