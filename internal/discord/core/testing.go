package core

import (
	"context"
	"sync"

	"github.com/bwmarrin/discordgo"
)

// TestInteractionContext creates an InteractionContext for testing
type TestInteractionContext struct {
	*InteractionContext
}

// NewTestInteractionContext creates a test interaction context
func NewTestInteractionContext() *TestInteractionContext {
	ctx := &InteractionContext{
		Context:  context.Background(),
		UserID:   "test-user-123",
		Username: "tester",
		GuildID:  "test-guild-123",
		params:   make(map[string]interface{}),
	}

	return &TestInteractionContext{InteractionContext: ctx}
}

// WithUserID sets the user ID
func (t *TestInteractionContext) WithUserID(userID string) *TestInteractionContext {
	t.UserID = userID
	return t
}

// WithUsername sets the user name
func (t *TestInteractionContext) WithUsername(name string) *TestInteractionContext {
	t.Username = name
	return t
}

// WithResponder attaches a responder the way the pipeline does
func (t *TestInteractionContext) WithResponder(r InteractionResponder) *TestInteractionContext {
	t.InteractionContext.WithResponder(r)
	return t
}

// AsCommand simulates a slash command interaction
func (t *TestInteractionContext) AsCommand(name string) *TestInteractionContext {
	t.Interaction = &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{
			Type: discordgo.InteractionApplicationCommand,
			Data: discordgo.ApplicationCommandInteractionData{
				Name: name,
			},
		},
	}
	t.reparse()
	return t
}

// AsComponent simulates a button or select menu interaction
func (t *TestInteractionContext) AsComponent(customID string, values ...string) *TestInteractionContext {
	t.Interaction = &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{
			Type: discordgo.InteractionMessageComponent,
			Data: discordgo.MessageComponentInteractionData{
				CustomID: customID,
				Values:   values,
			},
		},
	}
	t.reparse()
	return t
}

// AsModal simulates a modal submit carrying the given text inputs
func (t *TestInteractionContext) AsModal(customID string, inputs map[string]string) *TestInteractionContext {
	rows := make([]discordgo.MessageComponent, 0, len(inputs))
	for id, value := range inputs {
		rows = append(rows, &discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				&discordgo.TextInput{CustomID: id, Value: value},
			},
		})
	}

	t.Interaction = &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{
			Type: discordgo.InteractionModalSubmit,
			Data: discordgo.ModalSubmitInteractionData{
				CustomID:   customID,
				Components: rows,
			},
		},
	}
	t.reparse()
	return t
}

func (t *TestInteractionContext) reparse() {
	t.params = make(map[string]interface{})
	t.values = nil
	t.customID = nil
	t.parseParams()
}

// MockResponder is a test implementation of InteractionResponder
type MockResponder struct {
	mu sync.Mutex

	DeferCalls   []bool // Track ephemeral flags
	Responses    []*Response
	Edits        []*Response
	DeferError   error
	RespondError error
	EditError    error
	Deferred     bool
	Responded    bool
}

// NewMockResponder creates a new mock responder
func NewMockResponder() *MockResponder {
	return &MockResponder{}
}

func (m *MockResponder) Defer(ephemeral bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeferCalls = append(m.DeferCalls, ephemeral)
	m.Deferred = true
	m.Responded = true
	return m.DeferError
}

func (m *MockResponder) Respond(response *Response) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Responses = append(m.Responses, response)
	m.Responded = true
	return m.RespondError
}

func (m *MockResponder) Edit(response *Response) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Edits = append(m.Edits, response)
	return m.EditError
}

func (m *MockResponder) HasResponded() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Responded
}

func (m *MockResponder) IsDeferred() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Deferred
}

// EditCount returns the number of edits so far
func (m *MockResponder) EditCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Edits)
}

// LastEdit returns the last edit sent
func (m *MockResponder) LastEdit() *Response {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Edits) == 0 {
		return nil
	}
	return m.Edits[len(m.Edits)-1]
}

// LastResponse returns the last response sent
func (m *MockResponder) LastResponse() *Response {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Responses) > 0 {
		return m.Responses[len(m.Responses)-1]
	}
	if len(m.Edits) > 0 {
		return m.Edits[len(m.Edits)-1]
	}
	return nil
}
