package onboarding_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/profile-onboarding/internal/domain/onboarding"
	"github.com/KirkDiggler/profile-onboarding/internal/domain/profile"
	apperr "github.com/KirkDiggler/profile-onboarding/internal/errors"
	"github.com/KirkDiggler/profile-onboarding/internal/testutils"
)

type EngineTestSuite struct {
	suite.Suite
	clock       *testutils.FakeClock
	engine      *onboarding.Engine
	transitions []onboarding.Transition
}

func (s *EngineTestSuite) SetupTest() {
	s.clock = testutils.NewFakeClock()
	s.transitions = nil

	engine, err := onboarding.NewEngine(&onboarding.EngineConfig{
		Registry: onboarding.DefaultRegistry(),
		Clock:    s.clock,
	})
	s.Require().NoError(err)
	engine.OnTransition(func(t onboarding.Transition) {
		s.transitions = append(s.transitions, t)
	})
	s.engine = engine
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineTestSuite))
}

func (s *EngineTestSuite) advanceTo(step onboarding.StepType) {
	for s.engine.CurrentStep().Type != step {
		s.Require().NoError(s.engine.Advance())
	}
}

func (s *EngineTestSuite) TestStartsOnWelcome() {
	s.Equal(0, s.engine.Index())
	s.Equal(onboarding.StepTypeWelcome, s.engine.CurrentStep().Type)
	s.Equal(1, s.clock.Pending())
}

func (s *EngineTestSuite) TestProgress() {
	s.InDelta(1.0/8.0, s.engine.Progress(), 1e-9)
	s.Equal(12, s.engine.ProgressPercent())

	s.advanceTo(onboarding.StepTypeSummary)

	s.Equal(7, s.engine.Index())
	s.InDelta(1.0, s.engine.Progress(), 1e-9)
	s.Equal(100, s.engine.ProgressPercent())
}

func (s *EngineTestSuite) TestAdvanceAtTerminalFails() {
	s.advanceTo(onboarding.StepTypeSummary)

	err := s.engine.Advance()

	s.True(apperr.IsFailedPrecondition(err))
	s.Equal(7, s.engine.Index())
}

func (s *EngineTestSuite) TestRetreatAtFirstStepIsNoop() {
	s.NoError(s.engine.Retreat())
	s.Equal(0, s.engine.Index())
	s.Empty(s.transitions)
}

func (s *EngineTestSuite) TestIndexStaysInBoundsForRandomSequences() {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 2000; i++ {
		if rng.Intn(2) == 0 {
			_ = s.engine.Advance()
		} else {
			s.Require().NoError(s.engine.Retreat())
		}
		idx := s.engine.Index()
		s.Require().GreaterOrEqual(idx, 0)
		s.Require().LessOrEqual(idx, 7)
	}
}

func (s *EngineTestSuite) TestNavigationPreservesDraft() {
	s.advanceTo(onboarding.StepTypeName)
	s.Require().NoError(s.engine.SetDisplayName("Ada"))
	s.advanceTo(onboarding.StepTypeBio)
	s.Require().NoError(s.engine.SetBio("Hello"))
	s.advanceTo(onboarding.StepTypeSchedule)
	s.Require().NoError(s.engine.ToggleAvailability(profile.Wednesday, profile.Evening))

	for k := s.engine.Index(); k > 0; k-- {
		before := s.engine.Draft()
		s.Require().NoError(s.engine.Retreat())
		s.Require().NoError(s.engine.Advance())
		s.Equal(before, s.engine.Draft(), "step %d", k)
		s.Require().NoError(s.engine.Retreat())
	}

	draft := s.engine.Draft()
	s.Equal("Ada", draft.DisplayName())
	s.Equal("Hello", draft.Bio())
	s.Equal(1, draft.Availability().SelectedCount())
}

func (s *EngineTestSuite) TestMutationOutsideCurrentStep() {
	err := s.engine.SetBio("too early")

	s.True(apperr.IsInvalidStepMutation(err))
	s.Equal("", s.engine.Draft().Bio())
}

func (s *EngineTestSuite) TestPictureStepOwnsColor() {
	s.advanceTo(onboarding.StepTypePicture)

	s.NoError(s.engine.SetPicture(profile.DefaultAvatars[1]))
	s.NoError(s.engine.SetHighlightColor("#123abc"))
	s.True(apperr.IsInvalidStepMutation(s.engine.SetGender(profile.GenderFemale)))

	draft := s.engine.Draft()
	s.Equal(profile.DefaultAvatars[1], draft.Picture())
	s.Equal(profile.HighlightColor("#123ABC"), draft.HighlightColor())
}

func (s *EngineTestSuite) TestAutoAdvanceFiresOnce() {
	s.clock.Advance(onboarding.WelcomeDelay - time.Millisecond)
	s.Equal(0, s.engine.Index())

	s.clock.Advance(time.Millisecond)
	s.Equal(1, s.engine.Index())

	s.clock.Advance(10 * onboarding.WelcomeDelay)
	s.Equal(1, s.engine.Index())

	s.Require().Len(s.transitions, 1)
	s.Equal(onboarding.Transition{
		From:      onboarding.StepTypeWelcome,
		To:        onboarding.StepTypeName,
		FromIndex: 0,
		ToIndex:   1,
		Trigger:   onboarding.TriggerAuto,
	}, s.transitions[0])
}

func (s *EngineTestSuite) TestManualAdvanceCancelsTimer() {
	s.Require().NoError(s.engine.Advance())
	s.Equal(0, s.clock.Pending())

	s.clock.Advance(onboarding.WelcomeDelay)
	s.Equal(1, s.engine.Index())

	// a callback whose Stop lost the race must still be ignored
	s.clock.FireAll(true)
	s.Equal(1, s.engine.Index())
	s.Len(s.transitions, 1)
	s.Equal(onboarding.TriggerAdvance, s.transitions[0].Trigger)
}

func (s *EngineTestSuite) TestReenteringWelcomeRearmsTimer() {
	s.Require().NoError(s.engine.Advance())
	s.Require().NoError(s.engine.Retreat())
	s.Equal(1, s.clock.Pending())

	s.clock.Advance(onboarding.WelcomeDelay)

	s.Equal(1, s.engine.Index())
}

func (s *EngineTestSuite) TestCloseStopsEverything() {
	s.engine.Close()

	s.clock.FireAll(true)
	s.Equal(0, s.engine.Index())
	s.True(s.engine.Finished())
	s.True(apperr.IsFailedPrecondition(s.engine.Advance()))
	s.True(apperr.IsFailedPrecondition(s.engine.Retreat()))
	s.True(apperr.IsFailedPrecondition(s.engine.SetDisplayName("x")))

	s.engine.Close()
}

func (s *EngineTestSuite) TestComplete() {
	s.True(apperr.IsFailedPrecondition(s.engine.Complete()))

	s.advanceTo(onboarding.StepTypeSummary)
	s.True(apperr.IsFailedPrecondition(s.engine.Complete()))

	_, err := s.engine.Freeze()
	s.Require().NoError(err)
	s.Require().NoError(s.engine.Complete())

	s.True(s.engine.Finished())
	s.False(s.engine.State().Frozen)
	s.True(apperr.IsFailedPrecondition(s.engine.Complete()))
}

func (s *EngineTestSuite) TestFreezeOnlyOnTerminal() {
	_, err := s.engine.Freeze()

	s.True(apperr.IsFailedPrecondition(err))
	s.False(s.engine.State().Frozen)
}

func (s *EngineTestSuite) TestFreezeBlocksNavigationAndMutation() {
	s.advanceTo(onboarding.StepTypeSummary)
	moves := len(s.transitions)

	draft, err := s.engine.Freeze()
	s.Require().NoError(err)
	s.Require().NotNil(draft)

	s.True(apperr.IsFailedPrecondition(s.engine.Retreat()))
	s.True(apperr.IsFailedPrecondition(s.engine.Advance()))
	s.True(apperr.IsFailedPrecondition(s.engine.ToggleAvailability(profile.Friday, profile.Night)))
	_, err = s.engine.Freeze()
	s.True(apperr.IsFailedPrecondition(err))
	s.Equal(7, s.engine.Index())
	s.Len(s.transitions, moves)

	s.engine.Thaw()

	s.Require().NoError(s.engine.Retreat())
	s.Require().NoError(s.engine.ToggleAvailability(profile.Friday, profile.Night))
	on, err := s.engine.Draft().Availability().IsSet(profile.Friday, profile.Night)
	s.Require().NoError(err)
	s.True(on)
}

func (s *EngineTestSuite) TestStateSnapshot() {
	s.advanceTo(onboarding.StepTypeGender)
	s.Require().NoError(s.engine.SetGender(profile.GenderFemale))

	state := s.engine.State()

	s.Equal(2, state.Index)
	s.Equal(8, state.Total)
	s.Equal(onboarding.StepTypeGender, state.Step.Type)
	s.InDelta(3.0/8.0, state.Progress, 1e-9)
	s.False(state.Finished)
	s.Equal(profile.GenderFemale, state.Draft.Gender())
}

func TestEngine_ValidationBlocksAdvance(t *testing.T) {
	registry, err := onboarding.NewRegistry(
		onboarding.StepDefinition{
			Type:   onboarding.StepTypeName,
			Fields: []profile.Field{profile.FieldDisplayName},
			Validate: func(d *profile.Draft) error {
				if d.DisplayName() == "" {
					return apperr.Validation("name is required")
				}
				return nil
			},
		},
		onboarding.StepDefinition{Type: onboarding.StepTypeSummary, Terminal: true},
	)
	require.NoError(t, err)

	engine, err := onboarding.NewEngine(&onboarding.EngineConfig{
		Registry: registry,
		Clock:    testutils.NewFakeClock(),
	})
	require.NoError(t, err)

	err = engine.Advance()
	assert.True(t, apperr.IsValidation(err))
	assert.Equal(t, 0, engine.Index())

	require.NoError(t, engine.SetDisplayName("Ada"))
	require.NoError(t, engine.Advance())
	assert.Equal(t, 1, engine.Index())
}

func TestEngine_SeedDraftIsCopied(t *testing.T) {
	seed := profile.NewDraft()
	seed.SetDisplayName("Grace")

	engine, err := onboarding.NewEngine(&onboarding.EngineConfig{
		Registry: onboarding.DefaultRegistry(),
		Clock:    testutils.NewFakeClock(),
		Draft:    seed,
	})
	require.NoError(t, err)

	seed.SetDisplayName("changed")
	assert.Equal(t, "Grace", engine.Draft().DisplayName())
}

func TestNewEngine_RequiresRegistry(t *testing.T) {
	_, err := onboarding.NewEngine(&onboarding.EngineConfig{})
	assert.True(t, apperr.IsInvalidArgument(err))
}
