package builders

import (
	"github.com/bwmarrin/discordgo"

	"github.com/KirkDiggler/profile-onboarding/internal/discord/core"
)

const (
	maxComponentsPerRow = 5
	maxRows             = 5
	maxSelectOptions    = 25
)

// ComponentBuilder builds Discord message components for one target
type ComponentBuilder struct {
	rows       []discordgo.MessageComponent
	currentRow []discordgo.MessageComponent
	ids        *core.CustomIDBuilder
	target     string
}

// NewComponentBuilder creates a builder whose custom IDs carry target
func NewComponentBuilder(ids *core.CustomIDBuilder, target string) *ComponentBuilder {
	return &ComponentBuilder{
		rows:       make([]discordgo.MessageComponent, 0, maxRows),
		currentRow: make([]discordgo.MessageComponent, 0, maxComponentsPerRow),
		ids:        ids,
		target:     target,
	}
}

// Button adds a button to the current row
func (b *ComponentBuilder) Button(label string, style discordgo.ButtonStyle, action string, args ...string) *ComponentBuilder {
	b.addComponent(discordgo.Button{
		Label:    label,
		Style:    style,
		CustomID: b.ids.Encode(action, b.target, args...),
	})
	return b
}

// DisabledButton adds a button that cannot be pressed
func (b *ComponentBuilder) DisabledButton(label string, style discordgo.ButtonStyle, action string) *ComponentBuilder {
	b.addComponent(discordgo.Button{
		Label:    label,
		Style:    style,
		CustomID: b.ids.Encode(action, b.target),
		Disabled: true,
	})
	return b
}

// PrimaryButton adds a primary button
func (b *ComponentBuilder) PrimaryButton(label, action string, args ...string) *ComponentBuilder {
	return b.Button(label, discordgo.PrimaryButton, action, args...)
}

// SecondaryButton adds a secondary button
func (b *ComponentBuilder) SecondaryButton(label, action string, args ...string) *ComponentBuilder {
	return b.Button(label, discordgo.SecondaryButton, action, args...)
}

// SuccessButton adds a success button
func (b *ComponentBuilder) SuccessButton(label, action string, args ...string) *ComponentBuilder {
	return b.Button(label, discordgo.SuccessButton, action, args...)
}

// DangerButton adds a danger button
func (b *ComponentBuilder) DangerButton(label, action string, args ...string) *ComponentBuilder {
	return b.Button(label, discordgo.DangerButton, action, args...)
}

// ToggleButton adds a button styled by its on/off state
func (b *ComponentBuilder) ToggleButton(label string, on bool, action string, args ...string) *ComponentBuilder {
	style := discordgo.SecondaryButton
	if on {
		style = discordgo.SuccessButton
	}
	return b.Button(label, style, action, args...)
}

// SelectMenu adds a single-choice select menu on its own row
func (b *ComponentBuilder) SelectMenu(placeholder, action string, options []SelectOption) *ComponentBuilder {
	if len(options) > maxSelectOptions {
		options = options[:maxSelectOptions]
	}

	discordOptions := make([]discordgo.SelectMenuOption, len(options))
	for i, opt := range options {
		discordOptions[i] = discordgo.SelectMenuOption{
			Label:       opt.Label,
			Value:       opt.Value,
			Description: opt.Description,
			Default:     opt.Default,
		}
	}

	b.NewRow()
	b.addComponent(discordgo.SelectMenu{
		CustomID:    b.ids.Encode(action, b.target),
		Placeholder: placeholder,
		Options:     discordOptions,
	})
	return b.NewRow()
}

// NewRow starts a new action row
func (b *ComponentBuilder) NewRow() *ComponentBuilder {
	if len(b.currentRow) > 0 {
		b.rows = append(b.rows, discordgo.ActionsRow{
			Components: b.currentRow,
		})
		b.currentRow = make([]discordgo.MessageComponent, 0, maxComponentsPerRow)
	}
	return b
}

// Build returns the built components, at most five rows
func (b *ComponentBuilder) Build() []discordgo.MessageComponent {
	b.NewRow()
	if len(b.rows) > maxRows {
		return b.rows[:maxRows]
	}
	return b.rows
}

func (b *ComponentBuilder) addComponent(component discordgo.MessageComponent) {
	if len(b.currentRow) >= maxComponentsPerRow {
		b.NewRow()
	}
	b.currentRow = append(b.currentRow, component)
}

// SelectOption represents an option in a select menu
type SelectOption struct {
	Label       string
	Value       string
	Description string
	Default     bool
}

// ModalBuilder builds a modal of short and paragraph text inputs
type ModalBuilder struct {
	modal *core.Modal
}

// NewModal creates a modal builder
func NewModal(customID, title string) *ModalBuilder {
	return &ModalBuilder{modal: &core.Modal{CustomID: customID, Title: title}}
}

// TextInput adds a text input on its own row
func (b *ModalBuilder) TextInput(id, label, value string, style discordgo.TextInputStyle, required bool, maxLength int) *ModalBuilder {
	b.modal.Components = append(b.modal.Components, discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			discordgo.TextInput{
				CustomID:  id,
				Label:     label,
				Style:     style,
				Value:     value,
				Required:  required,
				MaxLength: maxLength,
			},
		},
	})
	return b
}

// Build returns the modal
func (b *ModalBuilder) Build() *core.Modal {
	return b.modal
}
