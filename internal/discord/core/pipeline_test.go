package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperr "github.com/KirkDiggler/profile-onboarding/internal/errors"
)

// MockHandler for testing
type MockHandler struct {
	canHandle bool
	result    *HandlerResult
	err       error
	called    bool
}

func (m *MockHandler) CanHandle(ctx *InteractionContext) bool {
	return m.canHandle
}

func (m *MockHandler) Handle(ctx *InteractionContext) (*HandlerResult, error) {
	m.called = true
	return m.result, m.err
}

func TestPipeline_Register(t *testing.T) {
	pipeline := NewPipeline(nil)

	pipeline.Register(&MockHandler{}, &MockHandler{})

	assert.Equal(t, 2, pipeline.HandlerCount())
}

func TestPipeline_Execute_FirstMatchWins(t *testing.T) {
	pipeline := NewPipeline(nil)
	skipped := &MockHandler{canHandle: false}
	first := &MockHandler{canHandle: true, result: &HandlerResult{Response: NewResponse("first")}}
	second := &MockHandler{canHandle: true, result: &HandlerResult{Response: NewResponse("second")}}
	pipeline.Register(skipped, first, second)

	responder := NewMockResponder()
	ctx := NewTestInteractionContext().AsCommand("onboard")

	require.NoError(t, pipeline.Execute(ctx.InteractionContext, responder))

	assert.False(t, skipped.called)
	assert.True(t, first.called)
	assert.False(t, second.called)
	require.Len(t, responder.Responses, 1)
	assert.Equal(t, "first", responder.Responses[0].Content)
	assert.Same(t, responder, ctx.Responder())
}

func TestPipeline_Execute_NoHandler(t *testing.T) {
	pipeline := NewPipeline(nil)
	pipeline.Register(&MockHandler{canHandle: false})

	responder := NewMockResponder()
	ctx := NewTestInteractionContext().AsCommand("unknown")

	require.NoError(t, pipeline.Execute(ctx.InteractionContext, responder))

	require.Len(t, responder.Responses, 1)
	assert.True(t, responder.Responses[0].Ephemeral)
}

func TestPipeline_Execute_ErrorsBecomeEphemeralReplies(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "handler error",
			err:      NewUserError("nope", ErrorCodeForbidden),
			expected: "nope",
		},
		{
			name:     "validation keeps the innermost message",
			err:      apperr.Wrap(apperr.Validation("bio is too long"), "failed to set bio"),
			expected: "bio is too long",
		},
		{
			name:     "unknown error hides its cause",
			err:      errors.New("dial tcp: refused"),
			expected: "An internal error occurred. Please try again later.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pipeline := NewPipeline(nil)
			pipeline.Register(&MockHandler{canHandle: true, err: tt.err})

			responder := NewMockResponder()
			ctx := NewTestInteractionContext().AsCommand("onboard")

			require.NoError(t, pipeline.Execute(ctx.InteractionContext, responder))

			resp := responder.LastResponse()
			require.NotNil(t, resp)
			assert.True(t, resp.Ephemeral)
			assert.Equal(t, tt.expected, resp.Content)
		})
	}
}

func TestPipeline_MiddlewareOrder(t *testing.T) {
	var order []string
	mw := func(name string) Middleware {
		return func(next Handler) Handler {
			return HandlerFunc(func(ctx *InteractionContext) (*HandlerResult, error) {
				order = append(order, name)
				return next.Handle(ctx)
			})
		}
	}

	pipeline := NewPipeline(nil)
	pipeline.Use(mw("outer"), mw("inner"))
	declined := &MockHandler{canHandle: false}
	accepted := &MockHandler{canHandle: true}
	pipeline.Register(declined, accepted)

	ctx := NewTestInteractionContext().AsCommand("onboard")
	require.NoError(t, pipeline.Execute(ctx.InteractionContext, NewMockResponder()))

	assert.Equal(t, []string{"outer", "inner"}, order)
	assert.True(t, accepted.called)
}

func TestPipeline_DeferredResultIsEdited(t *testing.T) {
	pipeline := NewPipeline(nil)
	pipeline.Register(&MockHandler{canHandle: true, result: &HandlerResult{
		Response: NewResponse("done"),
		Deferred: true,
	}})

	responder := NewMockResponder()
	ctx := NewTestInteractionContext().AsCommand("onboard")

	require.NoError(t, pipeline.Execute(ctx.InteractionContext, responder))

	assert.Empty(t, responder.Responses)
	require.Len(t, responder.Edits, 1)
	assert.Equal(t, "done", responder.Edits[0].Content)
}

func TestFromError_Codes(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{apperr.InvalidArgument("x"), ErrorCodeBadRequest},
		{apperr.Validation("x"), ErrorCodeUnprocessable},
		{apperr.Unauthenticated("x"), ErrorCodeUnauthorized},
		{apperr.PermissionDenied("x"), ErrorCodeForbidden},
		{apperr.NotFound("x"), ErrorCodeNotFound},
		{apperr.FailedPrecondition("x"), ErrorCodeConflict},
		{apperr.InvalidStepMutationf("x"), ErrorCodeConflict},
		{apperr.Unavailable(errors.New("down"), "x"), ErrorCodeUnavailable},
		{errors.New("x"), ErrorCodeInternal},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.code, FromError(tt.err).Code, "%v", tt.err)
	}
	assert.Nil(t, FromError(nil))
}
