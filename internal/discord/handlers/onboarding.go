package handlers

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/KirkDiggler/profile-onboarding/internal/discord/core"
	"github.com/KirkDiggler/profile-onboarding/internal/domain/onboarding"
	"github.com/KirkDiggler/profile-onboarding/internal/domain/profile"
	apperr "github.com/KirkDiggler/profile-onboarding/internal/errors"
	"github.com/KirkDiggler/profile-onboarding/internal/identity"
	onboardingService "github.com/KirkDiggler/profile-onboarding/internal/services/onboarding"
)

// Domain is the slash command name and the custom ID prefix of the wizard
const Domain = "onboard"

// Component and modal actions
const (
	ActionNext       = "next"
	ActionBack       = "back"
	ActionName       = "name"
	ActionSubmitName = "submit_name"
	ActionGender     = "gender"
	ActionAvatar     = "avatar"
	ActionColor      = "color"
	ActionBio        = "bio"
	ActionSubmitBio  = "submit_bio"
	ActionInterest   = "interest"
	ActionDay        = "day"
	ActionSlot       = "slot"
	ActionFinish     = "finish"
	ActionCancel     = "cancel"
)

// Modal text input IDs
const (
	InputDisplayName = "display_name"
	InputBio         = "bio"
)

// DefaultGreetingWait bounds how long /onboard waits for the welcome lookup
const DefaultGreetingWait = 750 * time.Millisecond

// OnboardingHandlerConfig holds the handler's dependencies
type OnboardingHandlerConfig struct {
	Service onboardingService.Service // Required
	Logger  *zap.Logger

	// AssetBaseURL turns picture references into thumbnail URLs; thumbnails
	// are omitted when empty
	AssetBaseURL string

	// GreetingWait bounds how long /onboard waits for the welcome lookup
	GreetingWait time.Duration
}

// OnboardingHandler drives onboarding sessions from Discord interactions
type OnboardingHandler struct {
	service      onboardingService.Service
	logger       *zap.Logger
	ids          *core.CustomIDBuilder
	assetBaseURL string
	greetingWait time.Duration

	mu sync.Mutex

	// views holds, per owner, the responder of the last interaction that
	// drew the wizard so timer-driven moves can edit that message
	views map[string]core.InteractionResponder
}

// NewOnboardingHandler creates a new onboarding handler
func NewOnboardingHandler(cfg *OnboardingHandlerConfig) *OnboardingHandler {
	if cfg.Service == nil {
		panic("onboarding service is required")
	}

	h := &OnboardingHandler{
		service:      cfg.Service,
		logger:       cfg.Logger,
		ids:          core.NewCustomIDBuilder(Domain),
		assetBaseURL: cfg.AssetBaseURL,
		greetingWait: cfg.GreetingWait,
		views:        make(map[string]core.InteractionResponder),
	}
	if h.logger == nil {
		h.logger = zap.NewNop()
	}
	if h.greetingWait <= 0 {
		h.greetingWait = DefaultGreetingWait
	}
	return h
}

// Start handles /onboard: it starts the caller's session or resumes the
// live one
func (h *OnboardingHandler) Start(ctx *core.InteractionContext) (*core.HandlerResult, error) {
	ownerID := ctx.UserID
	who := identity.NewStatic(identity.Principal{ID: ownerID, Name: ctx.DisplayName()})

	session, _, err := h.service.Start(ctx.Context, &onboardingService.StartInput{
		Identity:     who,
		OnTransition: h.followAutoAdvance(ownerID),
	})
	if err != nil {
		return nil, err
	}

	h.track(ownerID, ctx.Responder())

	select {
	case <-session.GreetingReady():
	case <-time.After(h.greetingWait):
	case <-ctx.Context.Done():
	}

	return &core.HandlerResult{Response: h.render(session, "")}, nil
}

// followAutoAdvance returns an observer that redraws the wizard after the
// welcome timer moves it, since no interaction is there to answer
func (h *OnboardingHandler) followAutoAdvance(ownerID string) onboarding.TransitionFunc {
	return func(t onboarding.Transition) {
		if t.Trigger != onboarding.TriggerAuto {
			return
		}

		responder := h.view(ownerID)
		if responder == nil {
			return
		}
		session, err := h.service.GetByOwner(context.Background(), ownerID)
		if err != nil {
			h.logger.Debug("auto-advance for a session that is gone", zap.String("owner_id", ownerID), zap.Error(err))
			return
		}

		view := h.render(session, "")
		if err := responder.Edit(view); err != nil {
			h.logger.Warn("failed to redraw wizard after auto-advance",
				zap.String("session_id", session.ID),
				zap.Error(err),
			)
		}
	}
}

// Authorize lets only the session owner use the wizard's components
func (h *OnboardingHandler) Authorize(ctx *core.InteractionContext) (bool, string) {
	if ctx.IsCommand() {
		return true, ""
	}

	id := ctx.ParsedCustomID()
	if id == nil || id.Target == "" {
		return false, "That control is no longer valid."
	}

	session, err := h.service.Get(ctx.Context, id.Target)
	if apperr.IsNotFound(err) {
		return false, "This onboarding session has ended. Run /onboard to start again."
	}
	if err != nil {
		// let the handler surface store errors with their own message
		return true, ""
	}
	if session.OwnerID != ctx.UserID {
		return false, "Only the person who started this onboarding can use these controls."
	}
	return true, ""
}

// Next moves forward one step
func (h *OnboardingHandler) Next(ctx *core.InteractionContext) (*core.HandlerResult, error) {
	return h.mutate(ctx, func(s *onboarding.Session) error {
		return s.Engine.Advance()
	})
}

// Back moves back one step
func (h *OnboardingHandler) Back(ctx *core.InteractionContext) (*core.HandlerResult, error) {
	return h.mutate(ctx, func(s *onboarding.Session) error {
		return s.Engine.Retreat()
	})
}

// OpenName shows the display name modal
func (h *OnboardingHandler) OpenName(ctx *core.InteractionContext) (*core.HandlerResult, error) {
	session, err := h.session(ctx)
	if err != nil {
		return nil, err
	}
	return &core.HandlerResult{Response: h.nameModal(session)}, nil
}

// SubmitName stores the display name from the modal
func (h *OnboardingHandler) SubmitName(ctx *core.InteractionContext) (*core.HandlerResult, error) {
	name := ctx.GetStringParam(InputDisplayName)
	return h.mutate(ctx, func(s *onboarding.Session) error {
		return s.Engine.SetDisplayName(name)
	})
}

// SelectGender stores the picked gender
func (h *OnboardingHandler) SelectGender(ctx *core.InteractionContext) (*core.HandlerResult, error) {
	return h.mutate(ctx, func(s *onboarding.Session) error {
		gender, err := profile.ParseGender(firstValue(ctx))
		if err != nil {
			return err
		}
		return s.Engine.SetGender(gender)
	})
}

// SelectAvatar stores one of the stock avatars
func (h *OnboardingHandler) SelectAvatar(ctx *core.InteractionContext) (*core.HandlerResult, error) {
	return h.mutate(ctx, func(s *onboarding.Session) error {
		ref := firstValue(ctx)
		for _, avatar := range profile.DefaultAvatars {
			if avatar == ref {
				return s.Engine.SetPicture(ref)
			}
		}
		return apperr.InvalidArgumentf("unknown avatar %q", ref)
	})
}

// SelectColor stores the picked highlight color
func (h *OnboardingHandler) SelectColor(ctx *core.InteractionContext) (*core.HandlerResult, error) {
	return h.mutate(ctx, func(s *onboarding.Session) error {
		color, err := profile.ParseHighlightColor(firstValue(ctx))
		if err != nil {
			return err
		}
		return s.Engine.SetHighlightColor(color)
	})
}

// OpenBio shows the bio modal
func (h *OnboardingHandler) OpenBio(ctx *core.InteractionContext) (*core.HandlerResult, error) {
	session, err := h.session(ctx)
	if err != nil {
		return nil, err
	}
	return &core.HandlerResult{Response: h.bioModal(session)}, nil
}

// SubmitBio stores the bio from the modal; over-long bios are rejected and
// the previous bio is kept
func (h *OnboardingHandler) SubmitBio(ctx *core.InteractionContext) (*core.HandlerResult, error) {
	bio := ctx.GetStringParam(InputBio)
	return h.mutate(ctx, func(s *onboarding.Session) error {
		return s.Engine.SetBio(bio)
	})
}

// ToggleInterest flips one interest
func (h *OnboardingHandler) ToggleInterest(ctx *core.InteractionContext) (*core.HandlerResult, error) {
	return h.mutate(ctx, func(s *onboarding.Session) error {
		interest, err := profile.ParseInterest(ctx.ParsedCustomID().Arg(0))
		if err != nil {
			return err
		}
		return s.Engine.ToggleInterest(interest)
	})
}

// SelectDay shows the time blocks of the picked day
func (h *OnboardingHandler) SelectDay(ctx *core.InteractionContext) (*core.HandlerResult, error) {
	session, err := h.session(ctx)
	if err != nil {
		return nil, err
	}
	day, err := profile.ParseDay(firstValue(ctx))
	if err != nil {
		return nil, err
	}
	return h.update(ctx, session, day), nil
}

// ToggleSlot flips one availability cell and keeps its day on screen
func (h *OnboardingHandler) ToggleSlot(ctx *core.InteractionContext) (*core.HandlerResult, error) {
	session, err := h.session(ctx)
	if err != nil {
		return nil, err
	}

	id := ctx.ParsedCustomID()
	day, err := profile.ParseDay(id.Arg(0))
	if err != nil {
		return nil, err
	}
	block, err := profile.ParseTimeBlock(id.Arg(1))
	if err != nil {
		return nil, err
	}
	if err := session.Engine.ToggleAvailability(day, block); err != nil {
		return nil, err
	}
	return h.update(ctx, session, day), nil
}

// Finish commits the draft. A failed commit leaves the wizard as it was so
// the user can retry.
func (h *OnboardingHandler) Finish(ctx *core.InteractionContext) (*core.HandlerResult, error) {
	session, err := h.session(ctx)
	if err != nil {
		return nil, err
	}
	displayName := session.Engine.Draft().DisplayName()

	if err := h.service.Commit(ctx.Context, session.ID); err != nil {
		return nil, err
	}

	h.untrack(session.OwnerID)
	return &core.HandlerResult{Response: finishedResponse(displayName)}, nil
}

// Cancel abandons the session
func (h *OnboardingHandler) Cancel(ctx *core.InteractionContext) (*core.HandlerResult, error) {
	session, err := h.session(ctx)
	if err != nil {
		return nil, err
	}
	if err := h.service.Abandon(ctx.Context, session.ID); err != nil {
		return nil, err
	}

	h.untrack(session.OwnerID)
	return &core.HandlerResult{Response: cancelledResponse()}, nil
}

func (h *OnboardingHandler) mutate(ctx *core.InteractionContext, apply func(s *onboarding.Session) error) (*core.HandlerResult, error) {
	session, err := h.session(ctx)
	if err != nil {
		return nil, err
	}
	if err := apply(session); err != nil {
		return nil, err
	}
	return h.update(ctx, session, ""), nil
}

func (h *OnboardingHandler) update(ctx *core.InteractionContext, session *onboarding.Session, day profile.Day) *core.HandlerResult {
	h.track(session.OwnerID, ctx.Responder())
	return &core.HandlerResult{Response: h.render(session, day).AsUpdate()}
}

func (h *OnboardingHandler) session(ctx *core.InteractionContext) (*onboarding.Session, error) {
	id := ctx.ParsedCustomID()
	if id == nil || id.Target == "" {
		return nil, apperr.InvalidArgument("missing session ID")
	}
	return h.service.Get(ctx.Context, id.Target)
}

func (h *OnboardingHandler) track(ownerID string, responder core.InteractionResponder) {
	if responder == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.views[ownerID] = responder
}

func (h *OnboardingHandler) untrack(ownerID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.views, ownerID)
}

func (h *OnboardingHandler) view(ownerID string) core.InteractionResponder {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.views[ownerID]
}

func firstValue(ctx *core.InteractionContext) string {
	if values := ctx.GetValues(); len(values) > 0 {
		return values[0]
	}
	return ""
}
