package routers

import (
	"github.com/bwmarrin/discordgo"

	"github.com/KirkDiggler/profile-onboarding/internal/discord/core"
	"github.com/KirkDiggler/profile-onboarding/internal/discord/handlers"
	"github.com/KirkDiggler/profile-onboarding/internal/discord/middleware"
)

// OnboardingRouter wires the /onboard command and the wizard's components
type OnboardingRouter struct {
	router  *core.Router
	handler *handlers.OnboardingHandler
}

// NewOnboardingRouter creates the router and registers it with the pipeline
func NewOnboardingRouter(pipeline *core.Pipeline, handler *handlers.OnboardingHandler) *OnboardingRouter {
	router := core.NewRouter(handlers.Domain, pipeline)

	r := &OnboardingRouter{
		router:  router,
		handler: handler,
	}

	// only the owner may press a session's buttons
	router.Use(middleware.AuthorizationMiddleware(&middleware.AuthConfig{
		CustomChecker: handler.Authorize,
	}))

	r.registerRoutes()
	router.Register()

	return r
}

func (r *OnboardingRouter) registerRoutes() {
	h := r.handler

	r.router.CommandFunc(handlers.Domain, h.Start)

	// Navigation
	r.router.ComponentFunc(handlers.ActionNext, h.Next)
	r.router.ComponentFunc(handlers.ActionBack, h.Back)
	r.router.ComponentFunc(handlers.ActionFinish, h.Finish)
	r.router.ComponentFunc(handlers.ActionCancel, h.Cancel)

	// Step inputs
	r.router.ComponentFunc(handlers.ActionName, h.OpenName)
	r.router.ComponentFunc(handlers.ActionGender, h.SelectGender)
	r.router.ComponentFunc(handlers.ActionAvatar, h.SelectAvatar)
	r.router.ComponentFunc(handlers.ActionColor, h.SelectColor)
	r.router.ComponentFunc(handlers.ActionBio, h.OpenBio)
	r.router.ComponentFunc(handlers.ActionInterest, h.ToggleInterest)
	r.router.ComponentFunc(handlers.ActionDay, h.SelectDay)
	r.router.ComponentFunc(handlers.ActionSlot, h.ToggleSlot)

	// Modals
	r.router.ModalFunc(handlers.ActionSubmitName, h.SubmitName)
	r.router.ModalFunc(handlers.ActionSubmitBio, h.SubmitBio)
}

// Commands returns the application commands this router answers
func Commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        handlers.Domain,
			Description: "Set up your profile",
		},
	}
}
