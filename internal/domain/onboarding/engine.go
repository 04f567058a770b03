package onboarding

import (
	"sync"

	"github.com/KirkDiggler/profile-onboarding/internal/domain/profile"
	apperr "github.com/KirkDiggler/profile-onboarding/internal/errors"
)

// Trigger records what caused a transition
type Trigger string

const (
	TriggerAdvance Trigger = "advance"
	TriggerRetreat Trigger = "retreat"
	TriggerAuto    Trigger = "auto"
)

// Transition is delivered to observers after the step pointer moves
type Transition struct {
	From      StepType `json:"from"`
	To        StepType `json:"to"`
	FromIndex int      `json:"from_index"`
	ToIndex   int      `json:"to_index"`
	Trigger   Trigger  `json:"trigger"`
}

// TransitionFunc observes transitions
type TransitionFunc func(Transition)

// EngineConfig holds the engine's collaborators
type EngineConfig struct {
	Registry *Registry
	Clock    Clock
	// Draft seeds the engine; a fresh draft is used when nil
	Draft *profile.Draft
}

// State is a consistent snapshot of the engine
type State struct {
	Index    int
	Total    int
	Step     StepDefinition
	Progress float64
	Finished bool
	Frozen   bool
	Draft    *profile.Draft
	Steps    []StepType
}

// Engine drives the step pointer over a registry and guards the draft.
// Every method is safe for concurrent use; timer callbacks go through the
// same lock as user input.
type Engine struct {
	mu        sync.Mutex
	registry  *Registry
	clock     Clock
	draft     *profile.Draft
	index     int
	finished  bool
	frozen    bool
	timer     Timer
	timerGen  uint64
	observers []TransitionFunc
}

// NewEngine creates an engine positioned on the first step and arms its
// auto-advance timer if it declares one
func NewEngine(cfg *EngineConfig) (*Engine, error) {
	if cfg == nil || cfg.Registry == nil {
		return nil, apperr.InvalidArgument("registry is required")
	}

	clock := cfg.Clock
	if clock == nil {
		clock = RealClock{}
	}

	draft := cfg.Draft
	if draft == nil {
		draft = profile.NewDraft()
	} else {
		draft = draft.Clone()
	}

	e := &Engine{
		registry: cfg.Registry,
		clock:    clock,
		draft:    draft,
	}

	e.mu.Lock()
	e.armLocked()
	e.mu.Unlock()

	return e, nil
}

// OnTransition registers an observer. Observers run outside the engine lock
// and may call back into the engine.
func (e *Engine) OnTransition(fn TransitionFunc) {
	if fn == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observers = append(e.observers, fn)
}

// Advance moves to the next step once the current step's predicate holds.
// The terminal step cannot be advanced; its forward action is the commit.
func (e *Engine) Advance() error {
	t, observers, err := e.advance(TriggerAdvance, 0)
	if err != nil {
		return err
	}
	notify(observers, t)
	return nil
}

// Retreat moves back one step. It is a no-op on the first step.
func (e *Engine) Retreat() error {
	e.mu.Lock()
	if err := e.openLocked(); err != nil {
		e.mu.Unlock()
		return err
	}
	if e.index == 0 {
		e.mu.Unlock()
		return nil
	}
	t := e.moveLocked(e.index-1, TriggerRetreat)
	observers := e.observersLocked()
	e.mu.Unlock()

	notify(observers, t)
	return nil
}

func (e *Engine) advance(trigger Trigger, gen uint64) (Transition, []TransitionFunc, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.openLocked(); err != nil {
		return Transition{}, nil, err
	}
	// a timer that lost the race with a manual move must not fire
	if trigger == TriggerAuto && gen != e.timerGen {
		return Transition{}, nil, errStaleTimer
	}

	step := e.registry.steps[e.index]
	if step.Terminal {
		return Transition{}, nil, apperr.FailedPreconditionf("step %q is terminal; commit instead", step.Type)
	}
	if step.Validate != nil {
		if err := step.Validate(e.draft); err != nil {
			if apperr.IsValidation(err) {
				return Transition{}, nil, err
			}
			return Transition{}, nil, apperr.WrapWithCode(err, apperr.CodeValidation, "step validation failed")
		}
	}

	t := e.moveLocked(e.index+1, trigger)
	return t, e.observersLocked(), nil
}

func (e *Engine) fire(gen uint64) {
	t, observers, err := e.advance(TriggerAuto, gen)
	if err != nil {
		return
	}
	notify(observers, t)
}

// moveLocked changes the index, cancels any pending timer and arms the new
// step's timer
func (e *Engine) moveLocked(to int, trigger Trigger) Transition {
	from := e.index
	e.cancelLocked()
	e.index = to
	e.armLocked()

	return Transition{
		From:      e.registry.steps[from].Type,
		To:        e.registry.steps[to].Type,
		FromIndex: from,
		ToIndex:   to,
		Trigger:   trigger,
	}
}

func (e *Engine) armLocked() {
	step := e.registry.steps[e.index]
	if step.AutoAdvance <= 0 || e.finished {
		return
	}
	e.timerGen++
	gen := e.timerGen
	e.timer = e.clock.AfterFunc(step.AutoAdvance, func() { e.fire(gen) })
}

func (e *Engine) cancelLocked() {
	e.timerGen++
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}

func (e *Engine) observersLocked() []TransitionFunc {
	return append([]TransitionFunc(nil), e.observers...)
}

func notify(observers []TransitionFunc, t Transition) {
	for _, fn := range observers {
		fn(t)
	}
}

// Index returns the current step index
func (e *Engine) Index() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.index
}

// CurrentStep returns the definition of the current step
func (e *Engine) CurrentStep() StepDefinition {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.registry.steps[e.index]
}

// Progress returns (index+1)/N
func (e *Engine) Progress() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.progressLocked()
}

// ProgressPercent returns the progress rounded down to a whole percent
func (e *Engine) ProgressPercent() int {
	return int(e.Progress() * 100)
}

func (e *Engine) progressLocked() float64 {
	return float64(e.index+1) / float64(e.registry.Len())
}

// Draft returns a copy of the draft
func (e *Engine) Draft() *profile.Draft {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.draft.Clone()
}

// State returns a snapshot taken under a single lock
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return State{
		Index:    e.index,
		Total:    e.registry.Len(),
		Step:     e.registry.steps[e.index],
		Progress: e.progressLocked(),
		Finished: e.finished,
		Frozen:   e.frozen,
		Draft:    e.draft.Clone(),
		Steps:    e.registry.Types(),
	}
}

// Finished reports whether the engine was completed or closed
func (e *Engine) Finished() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.finished
}

// Freeze locks the engine on the terminal step for a commit and returns the
// draft to write. Until Complete or Thaw, navigation and every mutation fail.
func (e *Engine) Freeze() (*profile.Draft, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.openLocked(); err != nil {
		return nil, err
	}
	step := e.registry.steps[e.index]
	if !step.Terminal {
		return nil, apperr.FailedPreconditionf("cannot commit from step %q", step.Type).
			WithMeta("step", string(step.Type))
	}
	e.frozen = true
	e.cancelLocked()
	return e.draft.Clone(), nil
}

// Thaw reopens a frozen engine after a failed commit
func (e *Engine) Thaw() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.frozen = false
}

// Complete finishes a frozen engine after a successful commit
func (e *Engine) Complete() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.finished {
		return errFinished()
	}
	if !e.frozen {
		return apperr.FailedPrecondition("engine must be frozen before it completes")
	}
	e.frozen = false
	e.finished = true
	e.cancelLocked()
	return nil
}

// Close abandons the engine. Closing twice is harmless.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.frozen = false
	e.finished = true
	e.cancelLocked()
}

func (e *Engine) openLocked() error {
	if e.finished {
		return errFinished()
	}
	if e.frozen {
		return errFrozen()
	}
	return nil
}

// SetDisplayName sets the display name. Empty names are allowed.
func (e *Engine) SetDisplayName(name string) error {
	return e.mutate(profile.FieldDisplayName, func(d *profile.Draft) error {
		d.SetDisplayName(name)
		return nil
	})
}

// SetGender sets the gender
func (e *Engine) SetGender(g profile.Gender) error {
	return e.mutate(profile.FieldGender, func(d *profile.Draft) error {
		return d.SetGender(g)
	})
}

// SetPicture sets the picture reference
func (e *Engine) SetPicture(ref string) error {
	return e.mutate(profile.FieldPicture, func(d *profile.Draft) error {
		d.SetPicture(ref)
		return nil
	})
}

// SetHighlightColor sets the highlight color
func (e *Engine) SetHighlightColor(c profile.HighlightColor) error {
	return e.mutate(profile.FieldHighlightColor, func(d *profile.Draft) error {
		return d.SetHighlightColor(c)
	})
}

// SetBio replaces the bio; over-long input leaves the draft unchanged
func (e *Engine) SetBio(bio string) error {
	return e.mutate(profile.FieldBio, func(d *profile.Draft) error {
		return d.SetBio(bio)
	})
}

// ToggleInterest flips membership of one interest
func (e *Engine) ToggleInterest(interest profile.Interest) error {
	return e.mutate(profile.FieldInterests, func(d *profile.Draft) error {
		return d.ToggleInterest(interest)
	})
}

// ToggleAvailability flips one availability cell
func (e *Engine) ToggleAvailability(day profile.Day, block profile.TimeBlock) error {
	return e.mutate(profile.FieldAvailability, func(d *profile.Draft) error {
		return d.ToggleAvailability(day, block)
	})
}

func (e *Engine) mutate(field profile.Field, apply func(d *profile.Draft) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.openLocked(); err != nil {
		return err
	}
	step := e.registry.steps[e.index]
	if !step.Owns(field) {
		return apperr.InvalidStepMutationf("step %q does not own field %q", step.Type, field).
			WithMeta("step", string(step.Type)).
			WithMeta("field", string(field))
	}
	return apply(e.draft)
}

var errStaleTimer = apperr.FailedPrecondition("auto-advance timer is stale")

func errFrozen() error {
	return apperr.FailedPrecondition("onboarding is being saved")
}

func errFinished() error {
	return apperr.FailedPrecondition("onboarding session is finished")
}
