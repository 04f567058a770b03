package core

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeInteractionAPI struct {
	responses []*discordgo.InteractionResponse
	edits     []*discordgo.WebhookEdit
}

func (f *fakeInteractionAPI) InteractionRespond(_ *discordgo.Interaction, resp *discordgo.InteractionResponse, _ ...discordgo.RequestOption) error {
	f.responses = append(f.responses, resp)
	return nil
}

func (f *fakeInteractionAPI) InteractionResponseEdit(_ *discordgo.Interaction, edit *discordgo.WebhookEdit, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.edits = append(f.edits, edit)
	return &discordgo.Message{}, nil
}

func TestDiscordResponder_ResponseTypes(t *testing.T) {
	tests := []struct {
		name        string
		interaction discordgo.InteractionType
		response    *Response
		expected    discordgo.InteractionResponseType
	}{
		{
			name:        "command reply",
			interaction: discordgo.InteractionApplicationCommand,
			response:    NewEphemeralResponse("hi"),
			expected:    discordgo.InteractionResponseChannelMessageWithSource,
		},
		{
			name:        "update ignored for commands",
			interaction: discordgo.InteractionApplicationCommand,
			response:    NewResponse("hi").AsUpdate(),
			expected:    discordgo.InteractionResponseChannelMessageWithSource,
		},
		{
			name:        "component update",
			interaction: discordgo.InteractionMessageComponent,
			response:    NewResponse("hi").AsUpdate(),
			expected:    discordgo.InteractionResponseUpdateMessage,
		},
		{
			name:        "modal submit update",
			interaction: discordgo.InteractionModalSubmit,
			response:    NewResponse("hi").AsUpdate(),
			expected:    discordgo.InteractionResponseUpdateMessage,
		},
		{
			name:        "modal",
			interaction: discordgo.InteractionMessageComponent,
			response:    NewModalResponse(&Modal{CustomID: "onboard:submit_bio:s1", Title: "Bio"}),
			expected:    discordgo.InteractionResponseModal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeInteractionAPI{}
			responder := NewDiscordResponder(api, &discordgo.Interaction{Type: tt.interaction})

			require.NoError(t, responder.Respond(tt.response))

			require.Len(t, api.responses, 1)
			assert.Equal(t, tt.expected, api.responses[0].Type)
			assert.True(t, responder.HasResponded())
		})
	}
}

func TestDiscordResponder_EphemeralFlag(t *testing.T) {
	api := &fakeInteractionAPI{}
	responder := NewDiscordResponder(api, &discordgo.Interaction{Type: discordgo.InteractionApplicationCommand})

	require.NoError(t, responder.Respond(NewEphemeralResponse("secret")))

	assert.Equal(t, discordgo.MessageFlagsEphemeral, api.responses[0].Data.Flags)
	assert.Equal(t, "secret", api.responses[0].Data.Content)
}

func TestDiscordResponder_EditAfterRespond(t *testing.T) {
	api := &fakeInteractionAPI{}
	responder := NewDiscordResponder(api, &discordgo.Interaction{Type: discordgo.InteractionApplicationCommand})

	assert.Error(t, responder.Edit(NewResponse("too early")))

	require.NoError(t, responder.Respond(NewResponse("first")))
	require.NoError(t, responder.Respond(NewResponse("second")))

	require.Len(t, api.responses, 1)
	require.Len(t, api.edits, 1)
	assert.Equal(t, "second", *api.edits[0].Content)
	assert.NotNil(t, *api.edits[0].Components)

	assert.Error(t, responder.Respond(NewModalResponse(&Modal{})))
}

func TestDiscordResponder_Defer(t *testing.T) {
	api := &fakeInteractionAPI{}
	responder := NewDiscordResponder(api, &discordgo.Interaction{Type: discordgo.InteractionMessageComponent})

	require.NoError(t, responder.Defer(false))

	assert.Equal(t, discordgo.InteractionResponseDeferredMessageUpdate, api.responses[0].Type)
	assert.True(t, responder.IsDeferred())
	assert.Error(t, responder.Defer(false))
}
