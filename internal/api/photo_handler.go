package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"heartwave/dating-app/internal/service"
)

// PhotoHandler holds the photo-share service dependency.
type PhotoHandler struct {
	shareService service.ShareService
}

// NewPhotoHandler creates a new PhotoHandler.
func NewPhotoHandler(shareService service.ShareService) *PhotoHandler {
	return &PhotoHandler{shareService: shareService}
}

// SharePhoto accepts a multipart photo and posts it into the chat.
func (h *PhotoHandler) SharePhoto(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	chatID := c.Param("chatId")
	if chatID == "" {
		abortWithError(c, http.StatusBadRequest, "Chat ID is required")
		return
	}

	blob, ok := readImageUpload(c)
	if !ok {
		return
	}

	message, err := h.shareService.SharePhoto(c.Request.Context(), chatID, userID, blob, nil)
	if err != nil {
		code, msg := uploadErrorStatus(err)
		abortWithError(c, code, msg)
		return
	}

	c.JSON(http.StatusCreated, message)
}

// GetChatMessages returns the chat's recent messages.
func (h *PhotoHandler) GetChatMessages(c *gin.Context) {
	chatID := c.Param("chatId")
	if chatID == "" {
		abortWithError(c, http.StatusBadRequest, "Chat ID is required")
		return
	}

	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "50"), 10, 64)

	messages, err := h.shareService.GetChatMessages(c.Request.Context(), chatID, limit)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load messages")
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// GetPhotoURL issues a short-lived download URL for a photo message.
func (h *PhotoHandler) GetPhotoURL(c *gin.Context) {
	messageID, err := primitive.ObjectIDFromHex(c.Param("messageId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid message ID format")
		return
	}

	url, err := h.shareService.PhotoDownloadURL(c.Request.Context(), messageID)
	if err != nil {
		if errors.Is(err, service.ErrMessageNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else if errors.Is(err, service.ErrNotAPhoto) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to generate download URL")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}
