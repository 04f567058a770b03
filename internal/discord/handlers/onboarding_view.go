package handlers

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/KirkDiggler/profile-onboarding/internal/discord/builders"
	"github.com/KirkDiggler/profile-onboarding/internal/discord/core"
	"github.com/KirkDiggler/profile-onboarding/internal/domain/onboarding"
	"github.com/KirkDiggler/profile-onboarding/internal/domain/profile"
)

// PaletteColor is a highlight color offered by the picture step
type PaletteColor struct {
	Label string
	Color profile.HighlightColor
}

// HighlightPalette lists the colors offered in the color select
var HighlightPalette = []PaletteColor{
	{Label: "Tomato", Color: profile.DefaultHighlightColor},
	{Label: "Dodger Blue", Color: "#1E90FF"},
	{Label: "Emerald", Color: "#2ECC71"},
	{Label: "Gold", Color: "#FFD700"},
	{Label: "Orchid", Color: "#DA70D6"},
	{Label: "Slate Gray", Color: "#708090"},
}

// render draws the session's current step. day selects which weekday's
// time blocks the schedule step shows.
func (h *OnboardingHandler) render(session *onboarding.Session, day profile.Day) *core.Response {
	state := session.Engine.State()
	step := state.Step
	draft := state.Draft

	embed := builders.NewEmbed().
		Title(step.Title).
		Description(step.Prompt).
		Color(draft.HighlightColor().Int()).
		ProgressFooter(state.Index+1, state.Total)
	components := builders.NewComponentBuilder(h.ids, session.ID)

	switch step.Type {
	case onboarding.StepTypeWelcome:
		if greeting := session.Greeting(); greeting != "" {
			embed.Description(greeting + "\n" + step.Prompt)
		}

	case onboarding.StepTypeName:
		embed.Field("Display name", draft.DisplayName(), false)
		components.PrimaryButton("Set display name", ActionName).NewRow()

	case onboarding.StepTypeGender:
		embed.Field("Gender", draft.Gender().Label(), false)
		options := make([]builders.SelectOption, 0, len(profile.Genders()))
		for _, g := range profile.Genders() {
			options = append(options, builders.SelectOption{
				Label:   g.Label(),
				Value:   string(g),
				Default: g == draft.Gender(),
			})
		}
		components.SelectMenu("Select your gender", ActionGender, options)

	case onboarding.StepTypePicture:
		embed.Thumbnail(h.assetURL(draft.Picture())).
			Field("Picture", draft.Picture(), true).
			Field("Highlight color", string(draft.HighlightColor()), true)

		avatars := make([]builders.SelectOption, 0, len(profile.DefaultAvatars))
		for i, ref := range profile.DefaultAvatars {
			avatars = append(avatars, builders.SelectOption{
				Label:   fmt.Sprintf("Avatar %d", i+1),
				Value:   ref,
				Default: ref == draft.Picture(),
			})
		}
		colors := make([]builders.SelectOption, 0, len(HighlightPalette))
		for _, c := range HighlightPalette {
			colors = append(colors, builders.SelectOption{
				Label:       c.Label,
				Value:       string(c.Color),
				Description: string(c.Color),
				Default:     c.Color == draft.HighlightColor(),
			})
		}
		components.SelectMenu("Choose an avatar", ActionAvatar, avatars).
			SelectMenu("Choose a highlight color", ActionColor, colors)

	case onboarding.StepTypeBio:
		embed.Field("Bio", draft.Bio(), false).
			Field("Length", fmt.Sprintf("%d/%d", draft.BioLength(), profile.MaxBioLength), true)
		components.PrimaryButton("Write bio", ActionBio).NewRow()

	case onboarding.StepTypeInterests:
		embed.Field("Selected", strings.Join(draft.Interests().Strings(), ", "), false)
		for i, interest := range profile.AvailableInterests() {
			if i > 0 && i%5 == 0 {
				components.NewRow()
			}
			components.ToggleButton(string(interest), draft.HasInterest(interest), ActionInterest, string(interest))
		}
		components.NewRow()

	case onboarding.StepTypeSchedule:
		summary := onboarding.Summarize(draft)
		embed.Field("Selected", strings.Join(summary.AvailabilityLines(), "\n"), false)

		days := make([]builders.SelectOption, 0, 7)
		for _, d := range profile.Days() {
			days = append(days, builders.SelectOption{
				Label:   string(d),
				Value:   string(d),
				Default: d == day,
			})
		}
		components.SelectMenu("Pick a day", ActionDay, days)
		if day != "" {
			grid := draft.Availability()
			for _, block := range profile.TimeBlocks() {
				on, _ := grid.IsSet(day, block)
				components.ToggleButton(string(block), on, ActionSlot, string(day), string(block))
			}
			components.NewRow()
		}

	case onboarding.StepTypeSummary:
		summary := onboarding.Summarize(draft)
		embed.Thumbnail(h.assetURL(summary.Picture)).
			Field("Display name", summary.DisplayName, true).
			Field("Gender", summary.Gender, true).
			Field("Highlight color", summary.HighlightColor, true).
			Field("Bio", summary.Bio, false).
			Field("Interests", strings.Join(summary.Interests, ", "), false).
			Field("Availability", strings.Join(summary.AvailabilityLines(), "\n"), false)
	}

	h.navigation(components, state)

	return &core.Response{
		Embeds:     []*discordgo.MessageEmbed{embed.Build()},
		Components: components.Build(),
		Ephemeral:  true,
	}
}

func (h *OnboardingHandler) navigation(components *builders.ComponentBuilder, state onboarding.State) {
	components.NewRow()
	if state.Index == 0 {
		components.DisabledButton("Back", discordgo.SecondaryButton, ActionBack)
	} else {
		components.SecondaryButton("Back", ActionBack)
	}
	if state.Step.Terminal {
		components.SuccessButton("Finish", ActionFinish)
	} else {
		components.PrimaryButton("Next", ActionNext)
	}
	components.DangerButton("Cancel", ActionCancel)
}

func (h *OnboardingHandler) nameModal(session *onboarding.Session) *core.Response {
	modal := builders.NewModal(h.ids.Encode(ActionSubmitName, session.ID), "Display name").
		TextInput(InputDisplayName, "What's your display name?", session.Engine.Draft().DisplayName(),
			discordgo.TextInputShort, false, 100)
	return core.NewModalResponse(modal.Build())
}

func (h *OnboardingHandler) bioModal(session *onboarding.Session) *core.Response {
	modal := builders.NewModal(h.ids.Encode(ActionSubmitBio, session.ID), "About you").
		TextInput(InputBio, "Tell us a little about yourself!", session.Engine.Draft().Bio(),
			discordgo.TextInputParagraph, false, profile.MaxBioLength)
	return core.NewModalResponse(modal.Build())
}

func (h *OnboardingHandler) assetURL(ref string) string {
	if ref == "" || h.assetBaseURL == "" {
		return ""
	}
	return strings.TrimRight(h.assetBaseURL, "/") + "/" + strings.TrimLeft(ref, "/")
}

func finishedResponse(displayName string) *core.Response {
	description := "Your profile is all set."
	if displayName != "" {
		description = fmt.Sprintf("Your profile is all set, %s.", displayName)
	}
	return &core.Response{
		Embeds:     []*discordgo.MessageEmbed{builders.SuccessEmbed("Profile saved", description).Build()},
		Components: []discordgo.MessageComponent{},
		Ephemeral:  true,
		Update:     true,
	}
}

func cancelledResponse() *core.Response {
	return &core.Response{
		Embeds: []*discordgo.MessageEmbed{
			builders.WarningEmbed("Onboarding cancelled", "Nothing was saved. Run /onboard to start again.").Build(),
		},
		Components: []discordgo.MessageComponent{},
		Ephemeral:  true,
		Update:     true,
	}
}
