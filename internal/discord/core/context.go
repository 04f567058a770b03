package core

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

type responderKey struct{}

// InteractionContext wraps a Discord interaction with useful helpers and context
type InteractionContext struct {
	// Core Discord objects
	Session     *discordgo.Session
	Interaction *discordgo.InteractionCreate

	// Extracted common fields for convenience
	UserID    string
	Username  string
	GuildID   string
	ChannelID string
	Member    *discordgo.Member

	// Context for cancellation and values
	Context context.Context

	// Parsed interaction data
	params   map[string]interface{}
	values   []string
	customID *CustomID
}

// NewInteractionContext creates a new InteractionContext from a Discord interaction
func NewInteractionContext(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) *InteractionContext {
	ic := &InteractionContext{
		Session:     s,
		Interaction: i,
		Context:     ctx,
		params:      make(map[string]interface{}),
	}

	if i.Member != nil && i.Member.User != nil {
		ic.Member = i.Member
		ic.UserID = i.Member.User.ID
		ic.Username = i.Member.User.Username
	} else if i.User != nil {
		ic.UserID = i.User.ID
		ic.Username = i.User.Username
	}

	ic.GuildID = i.GuildID
	ic.ChannelID = i.ChannelID

	ic.parseParams()

	return ic
}

// parseParams extracts parameters from different interaction types
func (ic *InteractionContext) parseParams() {
	if ic.Interaction == nil || ic.Interaction.Interaction == nil {
		return
	}
	switch ic.Interaction.Type {
	case discordgo.InteractionApplicationCommand:
		ic.parseCommandParams()
	case discordgo.InteractionMessageComponent:
		ic.parseComponentParams()
	case discordgo.InteractionModalSubmit:
		ic.parseModalParams()
	}
}

func (ic *InteractionContext) parseCommandParams() {
	options := ic.Interaction.ApplicationCommandData().Options
	if options == nil {
		return
	}
	ic.parseOptions(options)
}

// parseOptions recursively extracts command options
func (ic *InteractionContext) parseOptions(options []*discordgo.ApplicationCommandInteractionDataOption) {
	for _, opt := range options {
		switch opt.Type {
		case discordgo.ApplicationCommandOptionSubCommand, discordgo.ApplicationCommandOptionSubCommandGroup:
			ic.params["subcommand"] = opt.Name
			ic.parseOptions(opt.Options)
		default:
			ic.params[opt.Name] = opt.Value
		}
	}
}

func (ic *InteractionContext) parseComponentParams() {
	data := ic.Interaction.MessageComponentData()
	ic.params["custom_id"] = data.CustomID
	ic.values = data.Values
	if parsed, err := ParseCustomID(data.CustomID); err == nil {
		ic.customID = parsed
	}
}

func (ic *InteractionContext) parseModalParams() {
	data := ic.Interaction.ModalSubmitData()
	ic.params["custom_id"] = data.CustomID
	if parsed, err := ParseCustomID(data.CustomID); err == nil {
		ic.customID = parsed
	}

	for _, comp := range data.Components {
		row, ok := comp.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, inner := range row.Components {
			if input, ok := inner.(*discordgo.TextInput); ok {
				ic.params[input.CustomID] = input.Value
			}
		}
	}
}

// GetParam retrieves a parameter by name
func (ic *InteractionContext) GetParam(name string) interface{} {
	return ic.params[name]
}

// GetStringParam retrieves a string parameter or returns empty string
func (ic *InteractionContext) GetStringParam(name string) string {
	if val, ok := ic.params[name]; ok {
		if strVal, ok := val.(string); ok {
			return strVal
		}
	}
	return ""
}

// GetIntParam retrieves an int parameter or returns 0
func (ic *InteractionContext) GetIntParam(name string) int {
	if val, ok := ic.params[name]; ok {
		switch v := val.(type) {
		case float64:
			return int(v)
		case int:
			return v
		case int64:
			return int(v)
		}
	}
	return 0
}

// GetValues returns the options picked in a select menu
func (ic *InteractionContext) GetValues() []string {
	return ic.values
}

// ParsedCustomID returns the component or modal custom ID, nil when it did
// not parse
func (ic *InteractionContext) ParsedCustomID() *CustomID {
	return ic.customID
}

// IsCommand checks if this is a slash command interaction
func (ic *InteractionContext) IsCommand() bool {
	return ic.interactionType() == discordgo.InteractionApplicationCommand
}

// IsComponent checks if this is a message component interaction
func (ic *InteractionContext) IsComponent() bool {
	return ic.interactionType() == discordgo.InteractionMessageComponent
}

// IsModal checks if this is a modal submit interaction
func (ic *InteractionContext) IsModal() bool {
	return ic.interactionType() == discordgo.InteractionModalSubmit
}

func (ic *InteractionContext) interactionType() discordgo.InteractionType {
	if ic.Interaction == nil || ic.Interaction.Interaction == nil {
		return 0
	}
	return ic.Interaction.Type
}

// GetCustomID returns the custom ID for component and modal interactions
func (ic *InteractionContext) GetCustomID() string {
	return ic.GetStringParam("custom_id")
}

// GetCommandName returns the command name for slash commands
func (ic *InteractionContext) GetCommandName() string {
	if ic.IsCommand() {
		return ic.Interaction.ApplicationCommandData().Name
	}
	return ""
}

// GetSubcommand returns the subcommand name if present
func (ic *InteractionContext) GetSubcommand() string {
	return ic.GetStringParam("subcommand")
}

// DisplayName returns the best available name for the user
func (ic *InteractionContext) DisplayName() string {
	if ic.Member != nil && ic.Member.Nick != "" {
		return ic.Member.Nick
	}
	if ic.Username != "" {
		return ic.Username
	}
	return ic.UserID
}

// WithValue adds a value to the context
func (ic *InteractionContext) WithValue(key, val interface{}) {
	ic.Context = context.WithValue(ic.Context, key, val)
}

// Value retrieves a value from the context
func (ic *InteractionContext) Value(key interface{}) interface{} {
	return ic.Context.Value(key)
}

// WithResponder attaches the responder answering this interaction
func (ic *InteractionContext) WithResponder(r InteractionResponder) {
	ic.WithValue(responderKey{}, r)
}

// Responder returns the responder answering this interaction, nil outside
// the pipeline
func (ic *InteractionContext) Responder() InteractionResponder {
	r, _ := ic.Value(responderKey{}).(InteractionResponder)
	return r
}
