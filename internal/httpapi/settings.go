package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	settingsService "github.com/KirkDiggler/profile-onboarding/internal/services/settings"
)

// SettingsHandler serves the edit-profile screen
type SettingsHandler struct {
	service settingsService.Service
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(service settingsService.Service) *SettingsHandler {
	if service == nil {
		panic("settings service is required")
	}
	return &SettingsHandler{service: service}
}

type settingsRequest struct {
	DisplayName    *string `json:"display_name"`
	ProfilePicture *string `json:"profile_picture"`
}

// Load returns the caller's settings
func (h *SettingsHandler) Load(c *gin.Context) {
	_, who, err := currentIdentity(c)
	if err != nil {
		respondError(c, err)
		return
	}

	form, err := h.service.Load(c.Request.Context(), who)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, form)
}

// Save applies the given fields on top of the stored settings and writes
// them with one merge
func (h *SettingsHandler) Save(c *gin.Context) {
	var req settingsRequest
	if !bindJSON(c, &req) {
		return
	}
	_, who, err := currentIdentity(c)
	if err != nil {
		respondError(c, err)
		return
	}

	form, err := h.service.Load(c.Request.Context(), who)
	if err != nil {
		respondError(c, err)
		return
	}
	if req.DisplayName != nil {
		form.StartEditing()
		if err := form.SetDisplayName(*req.DisplayName); err != nil {
			respondError(c, err)
			return
		}
	}
	if req.ProfilePicture != nil {
		form.ProfilePicture = *req.ProfilePicture
	}

	if err := h.service.Save(c.Request.Context(), who, form); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, form)
}
