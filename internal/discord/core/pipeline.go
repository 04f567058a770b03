package core

import (
	"context"
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// Pipeline manages handler registration and execution
type Pipeline struct {
	// Handlers registered in the pipeline
	handlers []Handler

	// Middleware to apply to all handlers
	middleware []Middleware

	// Error handler for uncaught errors
	errorHandler ErrorHandler

	logger *zap.Logger

	// Mutex for thread-safe handler registration
	mu sync.RWMutex
}

// Middleware is a function that wraps a handler
type Middleware func(Handler) Handler

// ErrorHandler handles errors that occur during pipeline execution
type ErrorHandler func(ctx *InteractionContext, err error) *HandlerResult

// NewPipeline creates a new handler pipeline
func NewPipeline(logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		handlers:     make([]Handler, 0),
		middleware:   make([]Middleware, 0),
		errorHandler: defaultErrorHandler,
		logger:       logger,
	}
}

// Register adds handlers to the pipeline. Middleware added with Use must be
// registered before the handlers it should wrap.
func (p *Pipeline) Register(handlers ...Handler) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, h := range handlers {
		wrapped := h
		for i := len(p.middleware) - 1; i >= 0; i-- {
			wrapped = p.middleware[i](wrapped)
		}
		p.handlers = append(p.handlers, &guardedHandler{inner: h, wrapped: wrapped})
	}
}

// guardedHandler routes CanHandle to the bare handler so middleware only
// runs for interactions the handler accepts
type guardedHandler struct {
	inner   Handler
	wrapped Handler
}

func (g *guardedHandler) CanHandle(ctx *InteractionContext) bool {
	return g.inner.CanHandle(ctx)
}

func (g *guardedHandler) Handle(ctx *InteractionContext) (*HandlerResult, error) {
	return g.wrapped.Handle(ctx)
}

// Use adds middleware to the pipeline
func (p *Pipeline) Use(middleware ...Middleware) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.middleware = append(p.middleware, middleware...)
}

// SetErrorHandler sets a custom error handler
func (p *Pipeline) SetErrorHandler(handler ErrorHandler) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.errorHandler = handler
}

// HandleInteraction is the discordgo event handler for interactions
func (p *Pipeline) HandleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := NewInteractionContext(context.Background(), s, i)
	responder := NewDiscordResponder(s, i.Interaction)

	if err := p.Execute(ctx, responder); err != nil {
		p.logger.Error("failed to answer interaction",
			zap.String("user_id", ctx.UserID),
			zap.String("custom_id", ctx.GetCustomID()),
			zap.Error(err),
		)
	}
}

// Execute runs the first handler that accepts the interaction and sends its
// response through responder
func (p *Pipeline) Execute(ctx *InteractionContext, responder InteractionResponder) error {
	ctx.WithResponder(responder)

	p.mu.RLock()
	handlers := make([]Handler, len(p.handlers))
	copy(handlers, p.handlers)
	errorHandler := p.errorHandler
	p.mu.RUnlock()

	for _, handler := range handlers {
		if !handler.CanHandle(ctx) {
			continue
		}

		result, err := handler.Handle(ctx)
		if err != nil {
			result = errorHandler(ctx, err)
		}

		if result != nil && result.Response != nil {
			if err := sendResponse(responder, result); err != nil {
				return fmt.Errorf("failed to send response: %w", err)
			}
		}
		return nil
	}

	p.logger.Debug("no handler for interaction",
		zap.String("command", ctx.GetCommandName()),
		zap.String("custom_id", ctx.GetCustomID()),
	)
	if responder.HasResponded() {
		return nil
	}
	return responder.Respond(NewEphemeralResponse("I don't know how to handle that."))
}

func sendResponse(responder InteractionResponder, result *HandlerResult) error {
	if result.Deferred || responder.IsDeferred() {
		return responder.Edit(result.Response)
	}
	return responder.Respond(result.Response)
}

// HandlerCount returns the number of registered handlers
func (p *Pipeline) HandlerCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return len(p.handlers)
}

func defaultErrorHandler(ctx *InteractionContext, err error) *HandlerResult {
	handlerErr := FromError(err)
	message := "An error occurred while processing your request."
	if handlerErr.ShowToUser {
		message = handlerErr.UserMessage
	}
	return &HandlerResult{
		Response: NewEphemeralResponse(message),
	}
}

// MiddlewareChain creates a single middleware from multiple middleware
func MiddlewareChain(middleware ...Middleware) Middleware {
	return func(next Handler) Handler {
		for i := len(middleware) - 1; i >= 0; i-- {
			next = middleware[i](next)
		}
		return next
	}
}
