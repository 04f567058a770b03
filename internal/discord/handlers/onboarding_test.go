package handlers_test

import (
	"context"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/profile-onboarding/internal/discord/core"
	"github.com/KirkDiggler/profile-onboarding/internal/discord/handlers"
	domain "github.com/KirkDiggler/profile-onboarding/internal/domain/onboarding"
	"github.com/KirkDiggler/profile-onboarding/internal/domain/profile"
	apperr "github.com/KirkDiggler/profile-onboarding/internal/errors"
	"github.com/KirkDiggler/profile-onboarding/internal/repositories/profiles"
	"github.com/KirkDiggler/profile-onboarding/internal/services/onboarding"
	"github.com/KirkDiggler/profile-onboarding/internal/testutils"
	"github.com/KirkDiggler/profile-onboarding/internal/uuid"
)

const (
	ownerID   = "test-user-123"
	sessionID = "session-1"
)

type OnboardingHandlerTestSuite struct {
	suite.Suite
	repo      *profiles.InMemoryRepository
	clock     *testutils.FakeClock
	service   onboarding.Service
	handler   *handlers.OnboardingHandler
	responder *core.MockResponder
}

func (s *OnboardingHandlerTestSuite) SetupTest() {
	s.repo = profiles.NewInMemoryRepository(nil)
	testutils.SeedProfile(s.T(), s.repo, ownerID, "Ada")

	s.clock = testutils.NewFakeClock()
	s.service = onboarding.NewService(&onboarding.ServiceConfig{
		ProfileRepository: s.repo,
		Clock:             s.clock,
		UUIDGenerator:     uuid.NewSequenceGenerator("session"),
	})
	s.handler = handlers.NewOnboardingHandler(&handlers.OnboardingHandlerConfig{
		Service:      s.service,
		AssetBaseURL: "https://cdn.example.com/",
	})
	s.responder = core.NewMockResponder()
}

func TestOnboardingHandlerSuite(t *testing.T) {
	suite.Run(t, new(OnboardingHandlerTestSuite))
}

func (s *OnboardingHandlerTestSuite) start() *core.Response {
	ctx := core.NewTestInteractionContext().
		WithResponder(s.responder).
		AsCommand(handlers.Domain)

	result, err := s.handler.Start(ctx.InteractionContext)
	s.Require().NoError(err)
	s.Require().NotNil(result.Response)
	return result.Response
}

func (s *OnboardingHandlerTestSuite) component(action string, values ...string) *core.InteractionContext {
	return core.NewTestInteractionContext().
		WithResponder(s.responder).
		AsComponent(handlers.Domain+":"+action+":"+sessionID, values...).
		InteractionContext
}

func (s *OnboardingHandlerTestSuite) modal(action string, inputs map[string]string) *core.InteractionContext {
	return core.NewTestInteractionContext().
		WithResponder(s.responder).
		AsModal(handlers.Domain+":"+action+":"+sessionID, inputs).
		InteractionContext
}

func (s *OnboardingHandlerTestSuite) pastWelcome() {
	s.start()
	s.clock.Advance(domain.WelcomeDelay)
}

func (s *OnboardingHandlerTestSuite) next() *core.Response {
	result, err := s.handler.Next(s.component(handlers.ActionNext))
	s.Require().NoError(err)
	return result.Response
}

func field(response *core.Response, name string) string {
	for _, f := range response.Embeds[0].Fields {
		if f.Name == name {
			return f.Value
		}
	}
	return ""
}

func buttonLabels(response *core.Response) []string {
	var labels []string
	for _, row := range response.Components {
		for _, c := range row.(discordgo.ActionsRow).Components {
			if b, ok := c.(discordgo.Button); ok {
				labels = append(labels, b.Label)
			}
		}
	}
	return labels
}

func (s *OnboardingHandlerTestSuite) TestStart_ShowsGreeting() {
	response := s.start()

	s.True(response.Ephemeral)
	s.False(response.Update)
	s.Require().Len(response.Embeds, 1)
	s.Equal("Welcome!", response.Embeds[0].Title)
	s.Equal("Welcome, Ada!\nLet's set up your account!", response.Embeds[0].Description)
	s.Equal(profile.DefaultHighlightColor.Int(), response.Embeds[0].Color)
	s.Contains(response.Embeds[0].Footer.Text, "Step 1 of 8")
	s.Equal([]string{"Back", "Next", "Cancel"}, buttonLabels(response))
}

func (s *OnboardingHandlerTestSuite) TestStart_ResumesLiveSession() {
	s.pastWelcome()

	response := s.start()

	s.Equal("What's your display name?", response.Embeds[0].Title)
}

func (s *OnboardingHandlerTestSuite) TestAutoAdvance_EditsMessage() {
	s.start()
	s.Equal(0, s.responder.EditCount())

	s.clock.Advance(domain.WelcomeDelay)

	s.Require().Equal(1, s.responder.EditCount())
	s.Equal("What's your display name?", s.responder.LastEdit().Embeds[0].Title)
}

func (s *OnboardingHandlerTestSuite) TestAutoAdvance_SkippedWhenUserMovedFirst() {
	s.start()
	s.next()

	s.clock.Advance(domain.WelcomeDelay)

	s.Equal(0, s.responder.EditCount())
}

func (s *OnboardingHandlerTestSuite) TestFullFlow_CommitsProfile() {
	s.pastWelcome()

	result, err := s.handler.OpenName(s.component(handlers.ActionName))
	s.Require().NoError(err)
	s.Require().NotNil(result.Response.Modal)
	s.Equal("onboard:submit_name:session-1", result.Response.Modal.CustomID)

	result, err = s.handler.SubmitName(s.modal(handlers.ActionSubmitName, map[string]string{
		handlers.InputDisplayName: "Ada L",
	}))
	s.Require().NoError(err)
	s.True(result.Response.Update)
	s.Equal("Ada L", field(result.Response, "Display name"))

	s.next()
	_, err = s.handler.SelectGender(s.component(handlers.ActionGender, "female"))
	s.Require().NoError(err)

	s.next()
	result, err = s.handler.SelectAvatar(s.component(handlers.ActionAvatar, "/images/avatar2.png"))
	s.Require().NoError(err)
	s.Equal("https://cdn.example.com/images/avatar2.png", result.Response.Embeds[0].Thumbnail.URL)
	result, err = s.handler.SelectColor(s.component(handlers.ActionColor, "#1e90ff"))
	s.Require().NoError(err)
	s.Equal("#1E90FF", field(result.Response, "Highlight color"))

	s.next()
	_, err = s.handler.SubmitBio(s.modal(handlers.ActionSubmitBio, map[string]string{handlers.InputBio: "Hello"}))
	s.Require().NoError(err)

	s.next()
	_, err = s.handler.ToggleInterest(s.component(handlers.ActionInterest))
	s.Require().Error(err)

	result, err = s.handler.ToggleInterest(s.componentArgs(handlers.ActionInterest, "Physics"))
	s.Require().NoError(err)
	s.Equal("Physics", field(result.Response, "Selected"))

	s.next()
	result, err = s.handler.SelectDay(s.component(handlers.ActionDay, "Monday"))
	s.Require().NoError(err)
	s.Contains(buttonLabels(result.Response), "Morning")
	_, err = s.handler.ToggleSlot(s.componentArgs(handlers.ActionSlot, "Monday", "Morning"))
	s.Require().NoError(err)

	summary := s.next()
	s.Equal("Profile Summary", summary.Embeds[0].Title)
	s.Equal([]string{"Back", "Finish", "Cancel"}, buttonLabels(summary))

	result, err = s.handler.Finish(s.component(handlers.ActionFinish))
	s.Require().NoError(err)
	s.True(result.Response.Update)
	s.Empty(result.Response.Components)
	s.Equal("Your profile is all set, Ada L.", result.Response.Embeds[0].Description)

	record, err := s.repo.Get(context.Background(), ownerID)
	s.Require().NoError(err)
	s.True(record.ProfileCompleted)
	s.Equal("Ada L", record.Name)
	s.Equal(profile.GenderFemale, record.Gender)
	s.Equal(profile.HighlightColor("#1E90FF"), record.HighlightColor)
	s.Equal("/images/avatar2.png", record.ProfilePicture)
	s.Equal("Hello", record.Bio)
	s.True(record.Availability["Monday"]["Morning"])
	s.False(record.Availability["Monday"]["Evening"])

	_, err = s.service.Get(context.Background(), sessionID)
	s.True(apperr.IsNotFound(err))
}

func (s *OnboardingHandlerTestSuite) componentArgs(action string, args ...string) *core.InteractionContext {
	return core.NewTestInteractionContext().
		WithResponder(s.responder).
		AsComponent(handlers.Domain + ":" + action + ":" + sessionID + ":" + strings.Join(args, ":")).
		InteractionContext
}

func (s *OnboardingHandlerTestSuite) TestSubmitBio_TooLongKeepsPrevious() {
	s.pastWelcome()
	s.next()
	s.next()
	s.next()

	_, err := s.handler.SubmitBio(s.modal(handlers.ActionSubmitBio, map[string]string{handlers.InputBio: "short"}))
	s.Require().NoError(err)

	_, err = s.handler.SubmitBio(s.modal(handlers.ActionSubmitBio, map[string]string{
		handlers.InputBio: strings.Repeat("a", profile.MaxBioLength+1),
	}))
	s.Require().Error(err)
	s.True(apperr.IsValidation(err))

	session, err := s.service.Get(context.Background(), sessionID)
	s.Require().NoError(err)
	s.Equal("short", session.Engine.Draft().Bio())
}

func (s *OnboardingHandlerTestSuite) TestMutation_WrongStep() {
	s.pastWelcome()

	_, err := s.handler.SelectGender(s.component(handlers.ActionGender, "female"))

	s.Require().Error(err)
	s.True(apperr.IsInvalidStepMutation(err))
}

func (s *OnboardingHandlerTestSuite) TestSelectAvatar_RejectsUnknown() {
	s.pastWelcome()
	s.next()
	s.next()

	_, err := s.handler.SelectAvatar(s.component(handlers.ActionAvatar, "https://evil.example.com/x.png"))

	s.Require().Error(err)
	s.True(apperr.IsInvalidArgument(err))
}

func (s *OnboardingHandlerTestSuite) TestToggleSlot_Twice() {
	s.pastWelcome()
	for i := 0; i < 5; i++ {
		s.next()
	}

	_, err := s.handler.ToggleSlot(s.componentArgs(handlers.ActionSlot, "Friday", "Night"))
	s.Require().NoError(err)
	result, err := s.handler.ToggleSlot(s.componentArgs(handlers.ActionSlot, "Friday", "Night"))
	s.Require().NoError(err)

	s.Equal("-", field(result.Response, "Selected"))

	_, err = s.handler.ToggleSlot(s.componentArgs(handlers.ActionSlot, "Funday", "Night"))
	s.Error(err)
}

func (s *OnboardingHandlerTestSuite) TestBack_StaysOnFirstStep() {
	s.start()

	result, err := s.handler.Back(s.component(handlers.ActionBack))

	s.Require().NoError(err)
	s.Equal("Welcome!", result.Response.Embeds[0].Title)
}

func (s *OnboardingHandlerTestSuite) TestBack_KeepsDraft() {
	s.pastWelcome()
	_, err := s.handler.SubmitName(s.modal(handlers.ActionSubmitName, map[string]string{
		handlers.InputDisplayName: "Ada L",
	}))
	s.Require().NoError(err)
	s.next()

	result, err := s.handler.Back(s.component(handlers.ActionBack))

	s.Require().NoError(err)
	s.Equal("Ada L", field(result.Response, "Display name"))
}

func (s *OnboardingHandlerTestSuite) TestCancel() {
	s.start()

	result, err := s.handler.Cancel(s.component(handlers.ActionCancel))
	s.Require().NoError(err)
	s.Equal("Onboarding cancelled", result.Response.Embeds[0].Title)
	s.True(result.Response.Update)

	_, err = s.service.Get(context.Background(), sessionID)
	s.True(apperr.IsNotFound(err))

	record, err := s.repo.Get(context.Background(), ownerID)
	s.Require().NoError(err)
	s.False(record.ProfileCompleted)
}

func (s *OnboardingHandlerTestSuite) TestAuthorize() {
	s.start()

	ok, _ := s.handler.Authorize(core.NewTestInteractionContext().AsCommand(handlers.Domain).InteractionContext)
	s.True(ok)

	ok, _ = s.handler.Authorize(s.component(handlers.ActionNext))
	s.True(ok)

	stranger := core.NewTestInteractionContext().
		WithUserID("someone-else").
		AsComponent(handlers.Domain + ":" + handlers.ActionNext + ":" + sessionID).
		InteractionContext
	ok, message := s.handler.Authorize(stranger)
	s.False(ok)
	s.Contains(message, "Only the person who started")

	gone := core.NewTestInteractionContext().
		AsComponent(handlers.Domain + ":" + handlers.ActionNext + ":session-99").
		InteractionContext
	ok, message = s.handler.Authorize(gone)
	s.False(ok)
	s.Contains(message, "has ended")
}
