package core

import (
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"
)

// InteractionResponder provides an abstraction over Discord's interaction response API
type InteractionResponder interface {
	// Defer sends a deferred response, optionally ephemeral
	Defer(ephemeral bool) error

	// Respond sends the initial response
	Respond(response *Response) error

	// Edit updates the message created by the initial response
	Edit(response *Response) error

	// HasResponded reports whether the initial response was sent
	HasResponded() bool

	// IsDeferred reports whether the initial response was a deferral
	IsDeferred() bool
}

// InteractionAPI is the part of *discordgo.Session the responder calls
type InteractionAPI interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	InteractionResponseEdit(interaction *discordgo.Interaction, newresp *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// DiscordResponder implements InteractionResponder using Discord's API. It
// may be kept after the handler returns and used from other goroutines, for
// example to edit the message when a timer fires.
type DiscordResponder struct {
	api         InteractionAPI
	interaction *discordgo.Interaction

	mu        sync.Mutex
	responded bool
	deferred  bool
}

// NewDiscordResponder creates a new Discord responder
func NewDiscordResponder(api InteractionAPI, i *discordgo.Interaction) *DiscordResponder {
	return &DiscordResponder{
		api:         api,
		interaction: i,
	}
}

// Defer sends a deferred response
func (r *DiscordResponder) Defer(ephemeral bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.responded {
		return fmt.Errorf("interaction already responded to")
	}

	responseType := discordgo.InteractionResponseDeferredChannelMessageWithSource
	if r.interaction.Type == discordgo.InteractionMessageComponent {
		responseType = discordgo.InteractionResponseDeferredMessageUpdate
	}

	data := &discordgo.InteractionResponseData{}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}

	err := r.api.InteractionRespond(r.interaction, &discordgo.InteractionResponse{
		Type: responseType,
		Data: data,
	})
	if err == nil {
		r.deferred = true
		r.responded = true
	}
	return err
}

// Respond sends the initial response, or edits it when one was already sent
func (r *DiscordResponder) Respond(response *Response) error {
	r.mu.Lock()
	responded := r.responded
	r.mu.Unlock()

	if responded {
		if response.Modal != nil {
			return fmt.Errorf("a modal must be the first response to an interaction")
		}
		return r.Edit(response)
	}

	resp := &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: buildResponseData(response),
	}
	switch {
	case response.Modal != nil:
		resp.Type = discordgo.InteractionResponseModal
		resp.Data = &discordgo.InteractionResponseData{
			CustomID:   response.Modal.CustomID,
			Title:      response.Modal.Title,
			Components: response.Modal.Components,
		}
	case response.Update && r.interaction.Type != discordgo.InteractionApplicationCommand:
		// components and modals opened from a component edit the message in place
		resp.Type = discordgo.InteractionResponseUpdateMessage
	}

	if err := r.api.InteractionRespond(r.interaction, resp); err != nil {
		return err
	}

	r.mu.Lock()
	r.responded = true
	r.mu.Unlock()
	return nil
}

// Edit updates the message created by the initial response
func (r *DiscordResponder) Edit(response *Response) error {
	if !r.HasResponded() {
		return fmt.Errorf("cannot edit before responding")
	}

	content := response.Content
	embeds := response.Embeds
	components := response.Components
	if components == nil {
		components = []discordgo.MessageComponent{}
	}

	_, err := r.api.InteractionResponseEdit(r.interaction, &discordgo.WebhookEdit{
		Content:    &content,
		Embeds:     &embeds,
		Components: &components,
	})
	return err
}

func buildResponseData(response *Response) *discordgo.InteractionResponseData {
	data := &discordgo.InteractionResponseData{
		Content:    response.Content,
		Embeds:     response.Embeds,
		Components: response.Components,
	}
	if response.Ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	return data
}

// HasResponded returns whether this responder has already sent a response
func (r *DiscordResponder) HasResponded() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.responded
}

// IsDeferred returns whether this responder has sent a deferred response
func (r *DiscordResponder) IsDeferred() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.deferred
}
