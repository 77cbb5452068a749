package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"heartwave/dating-app/internal/domain"
	"heartwave/dating-app/internal/service"
)

// ProfileHandler holds the profile service dependency.
type ProfileHandler struct {
	profileService service.ProfileService
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(profileService service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

// GetMyProfile returns the authenticated user's profile, creating it
// from the configured seed defaults on first access.
func (h *ProfileHandler) GetMyProfile(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	profile, err := h.profileService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load profile")
		return
	}

	c.JSON(http.StatusOK, profile)
}

// SetMyProfilePhoto accepts a multipart photo, runs the upload session
// and persists the resulting reference on the profile.
func (h *ProfileHandler) SetMyProfilePhoto(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	blob, ok := readImageUpload(c)
	if !ok {
		return
	}

	photo, err := h.profileService.SetProfilePhoto(c.Request.Context(), userID, blob, nil)
	if err != nil {
		code, message := uploadErrorStatus(err)
		abortWithError(c, code, message)
		return
	}

	c.JSON(http.StatusOK, photo)
}

// WatchMyProfile streams profile changes as server-sent events until
// the client disconnects.
func (h *ProfileHandler) WatchMyProfile(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	changes := make(chan domain.Profile, 8)
	unsubscribe, err := h.profileService.WatchProfile(c.Request.Context(), userID, func(p domain.Profile) {
		select {
		case changes <- p:
		default:
			// Drop when the client is slower than the stream; the next
			// change carries the full document anyway.
		}
	})
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to subscribe to profile changes")
		return
	}
	defer unsubscribe()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")

	c.Stream(func(w io.Writer) bool {
		select {
		case profile := <-changes:
			payload, err := json.Marshal(profile)
			if err != nil {
				return false
			}
			c.SSEvent("profile", string(payload))
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
