package profile

import (
	apperr "github.com/KirkDiggler/profile-onboarding/internal/errors"
)

// Interest is one of the academic disciplines a user can pick
type Interest string

const (
	InterestComputerScience  Interest = "Computer Science"
	InterestMathematics      Interest = "Mathematics"
	InterestPhysics          Interest = "Physics"
	InterestBiology          Interest = "Biology"
	InterestChemistry        Interest = "Chemistry"
	InterestLiterature       Interest = "Literature"
	InterestHistory          Interest = "History"
	InterestPsychology       Interest = "Psychology"
	InterestEconomics        Interest = "Economics"
	InterestPhilosophy       Interest = "Philosophy"
	InterestEngineering      Interest = "Engineering"
	InterestPoliticalScience Interest = "Political Science"
	InterestArt              Interest = "Art"
	InterestMusic            Interest = "Music"
	InterestSociology        Interest = "Sociology"
)

var vocabulary = [...]Interest{
	InterestComputerScience, InterestMathematics, InterestPhysics, InterestBiology, InterestChemistry,
	InterestLiterature, InterestHistory, InterestPsychology, InterestEconomics, InterestPhilosophy,
	InterestEngineering, InterestPoliticalScience, InterestArt, InterestMusic, InterestSociology,
}

// AvailableInterests returns the closed vocabulary in display order
func AvailableInterests() []Interest {
	return append([]Interest(nil), vocabulary[:]...)
}

// ParseInterest validates an interest name against the vocabulary
func ParseInterest(s string) (Interest, error) {
	for _, interest := range vocabulary {
		if string(interest) == s {
			return interest, nil
		}
	}
	return "", apperr.InvalidArgumentf("unknown interest %q", s)
}

// InterestSet is a set over the interest vocabulary. The zero value is empty.
type InterestSet struct {
	members map[Interest]struct{}
}

// Toggle adds the interest if absent and removes it if present
func (s *InterestSet) Toggle(interest Interest) error {
	if _, err := ParseInterest(string(interest)); err != nil {
		return err
	}
	if s.members == nil {
		s.members = make(map[Interest]struct{})
	}
	if _, ok := s.members[interest]; ok {
		delete(s.members, interest)
		return nil
	}
	s.members[interest] = struct{}{}
	return nil
}

// Has reports membership
func (s InterestSet) Has(interest Interest) bool {
	_, ok := s.members[interest]
	return ok
}

// Len returns the number of selected interests
func (s InterestSet) Len() int {
	return len(s.members)
}

// List returns the members in vocabulary order
func (s InterestSet) List() []Interest {
	out := make([]Interest, 0, len(s.members))
	for _, interest := range vocabulary {
		if s.Has(interest) {
			out = append(out, interest)
		}
	}
	return out
}

// Strings returns the members as plain strings in vocabulary order
func (s InterestSet) Strings() []string {
	list := s.List()
	out := make([]string, len(list))
	for i, interest := range list {
		out[i] = string(interest)
	}
	return out
}

func (s InterestSet) clone() InterestSet {
	if len(s.members) == 0 {
		return InterestSet{}
	}
	members := make(map[Interest]struct{}, len(s.members))
	for k := range s.members {
		members[k] = struct{}{}
	}
	return InterestSet{members: members}
}
