package onboarding

import (
	"github.com/KirkDiggler/profile-onboarding/internal/domain/profile"
	apperr "github.com/KirkDiggler/profile-onboarding/internal/errors"
)

// Registry is the fixed, ordered list of steps for a flow. It is checked
// once when built and never changes afterwards.
type Registry struct {
	steps []StepDefinition
	index map[StepType]int
}

// NewRegistry validates the steps and returns a registry over a private copy
func NewRegistry(steps ...StepDefinition) (*Registry, error) {
	if len(steps) == 0 {
		return nil, apperr.InvalidArgument("registry needs at least one step")
	}

	r := &Registry{
		steps: make([]StepDefinition, len(steps)),
		index: make(map[StepType]int, len(steps)),
	}
	owners := make(map[profile.Field]StepType)

	for i, step := range steps {
		if step.Type == "" {
			return nil, apperr.InvalidArgumentf("step %d has no type", i)
		}
		if _, dup := r.index[step.Type]; dup {
			return nil, apperr.InvalidArgumentf("step %q registered twice", step.Type)
		}

		last := i == len(steps)-1
		if step.Terminal && !last {
			return nil, apperr.InvalidArgumentf("terminal step %q must be last", step.Type)
		}
		if last && !step.Terminal {
			return nil, apperr.InvalidArgumentf("last step %q must be terminal", step.Type)
		}
		if step.Terminal && step.AutoAdvance > 0 {
			return nil, apperr.InvalidArgumentf("terminal step %q cannot auto-advance", step.Type)
		}

		for _, field := range step.Fields {
			if owner, taken := owners[field]; taken {
				return nil, apperr.InvalidArgumentf("field %q owned by both %q and %q", field, owner, step.Type).
					WithMeta("field", field)
			}
			owners[field] = step.Type
		}

		step.Fields = append([]profile.Field(nil), step.Fields...)
		r.steps[i] = step
		r.index[step.Type] = i
	}

	return r, nil
}

// DefaultRegistry returns the registry for the profile onboarding flow
func DefaultRegistry() *Registry {
	r, err := NewRegistry(DefaultSteps()...)
	if err != nil {
		panic(err)
	}
	return r
}

// Len returns the number of steps
func (r *Registry) Len() int {
	return len(r.steps)
}

// Types returns the step types in flow order
func (r *Registry) Types() []StepType {
	types := make([]StepType, len(r.steps))
	for i, step := range r.steps {
		types[i] = step.Type
	}
	return types
}
