package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/KirkDiggler/profile-onboarding/internal/domain/onboarding"
	"github.com/KirkDiggler/profile-onboarding/internal/domain/profile"
	apperr "github.com/KirkDiggler/profile-onboarding/internal/errors"
	onboardingService "github.com/KirkDiggler/profile-onboarding/internal/services/onboarding"
)

// OnboardingHandler serves the wizard over JSON
type OnboardingHandler struct {
	service onboardingService.Service
}

// NewOnboardingHandler creates a new onboarding handler
func NewOnboardingHandler(service onboardingService.Service) *OnboardingHandler {
	if service == nil {
		panic("onboarding service is required")
	}
	return &OnboardingHandler{service: service}
}

type nameRequest struct {
	DisplayName string `json:"display_name"`
}

type genderRequest struct {
	Gender string `json:"gender"`
}

type pictureRequest struct {
	Picture        *string `json:"picture"`
	HighlightColor *string `json:"highlight_color"`
}

type bioRequest struct {
	Bio string `json:"bio"`
}

type interestRequest struct {
	Interest string `json:"interest" binding:"required"`
}

type availabilityRequest struct {
	Day   string `json:"day" binding:"required"`
	Block string `json:"block" binding:"required"`
}

// Start creates the caller's session (201) or returns the live one (200)
func (h *OnboardingHandler) Start(c *gin.Context) {
	_, who, err := currentIdentity(c)
	if err != nil {
		respondError(c, err)
		return
	}

	session, resumed, err := h.service.Start(c.Request.Context(), &onboardingService.StartInput{Identity: who})
	if err != nil {
		respondError(c, err)
		return
	}
	status := http.StatusCreated
	if resumed {
		status = http.StatusOK
	}
	respondOK(c, status, newSessionView(session))
}

// Get returns the session's current state
func (h *OnboardingHandler) Get(c *gin.Context) {
	session, ok := h.ownedSession(c)
	if !ok {
		return
	}
	respondOK(c, http.StatusOK, newSessionView(session))
}

// Advance moves forward one step
func (h *OnboardingHandler) Advance(c *gin.Context) {
	h.mutate(c, func(s *onboarding.Session) error {
		return s.Engine.Advance()
	})
}

// Retreat moves back one step
func (h *OnboardingHandler) Retreat(c *gin.Context) {
	h.mutate(c, func(s *onboarding.Session) error {
		return s.Engine.Retreat()
	})
}

// SetName sets the display name
func (h *OnboardingHandler) SetName(c *gin.Context) {
	var req nameRequest
	if !bindJSON(c, &req) {
		return
	}
	h.mutate(c, func(s *onboarding.Session) error {
		return s.Engine.SetDisplayName(req.DisplayName)
	})
}

// SetGender sets the gender
func (h *OnboardingHandler) SetGender(c *gin.Context) {
	var req genderRequest
	if !bindJSON(c, &req) {
		return
	}
	h.mutate(c, func(s *onboarding.Session) error {
		gender, err := profile.ParseGender(req.Gender)
		if err != nil {
			return err
		}
		return s.Engine.SetGender(gender)
	})
}

// SetPicture sets the picture reference and the highlight color; either
// may be omitted
func (h *OnboardingHandler) SetPicture(c *gin.Context) {
	var req pictureRequest
	if !bindJSON(c, &req) {
		return
	}
	h.mutate(c, func(s *onboarding.Session) error {
		var color profile.HighlightColor
		if req.HighlightColor != nil {
			parsed, err := profile.ParseHighlightColor(*req.HighlightColor)
			if err != nil {
				return err
			}
			color = parsed
		}
		if req.Picture != nil {
			if err := s.Engine.SetPicture(*req.Picture); err != nil {
				return err
			}
		}
		if color != "" {
			return s.Engine.SetHighlightColor(color)
		}
		return nil
	})
}

// SetBio sets the bio
func (h *OnboardingHandler) SetBio(c *gin.Context) {
	var req bioRequest
	if !bindJSON(c, &req) {
		return
	}
	h.mutate(c, func(s *onboarding.Session) error {
		return s.Engine.SetBio(req.Bio)
	})
}

// ToggleInterest flips one interest
func (h *OnboardingHandler) ToggleInterest(c *gin.Context) {
	var req interestRequest
	if !bindJSON(c, &req) {
		return
	}
	h.mutate(c, func(s *onboarding.Session) error {
		interest, err := profile.ParseInterest(req.Interest)
		if err != nil {
			return err
		}
		return s.Engine.ToggleInterest(interest)
	})
}

// ToggleAvailability flips one availability cell
func (h *OnboardingHandler) ToggleAvailability(c *gin.Context) {
	var req availabilityRequest
	if !bindJSON(c, &req) {
		return
	}
	h.mutate(c, func(s *onboarding.Session) error {
		day, err := profile.ParseDay(req.Day)
		if err != nil {
			return err
		}
		block, err := profile.ParseTimeBlock(req.Block)
		if err != nil {
			return err
		}
		return s.Engine.ToggleAvailability(day, block)
	})
}

// Commit writes the draft to the caller's profile
func (h *OnboardingHandler) Commit(c *gin.Context) {
	session, ok := h.ownedSession(c)
	if !ok {
		return
	}
	if err := h.service.Commit(c.Request.Context(), session.ID); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"id": session.ID, "committed": true})
}

// Abandon discards the session
func (h *OnboardingHandler) Abandon(c *gin.Context) {
	session, ok := h.ownedSession(c)
	if !ok {
		return
	}
	if err := h.service.Abandon(c.Request.Context(), session.ID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *OnboardingHandler) mutate(c *gin.Context, apply func(s *onboarding.Session) error) {
	session, ok := h.ownedSession(c)
	if !ok {
		return
	}
	if err := apply(session); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, newSessionView(session))
}

// ownedSession loads the session named in the path and checks the caller
// owns it. It writes the error reply itself.
func (h *OnboardingHandler) ownedSession(c *gin.Context) (*onboarding.Session, bool) {
	principal, _, err := currentIdentity(c)
	if err != nil {
		respondError(c, err)
		return nil, false
	}

	session, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	if session.OwnerID != principal.ID {
		respondError(c, apperr.PermissionDenied("session belongs to another user"))
		return nil, false
	}
	return session, true
}
