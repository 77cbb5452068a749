package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"heartwave/dating-app/internal/upload"
)

// readImageUpload extracts the "photo" multipart file as an upload.Blob.
// The declared Content-Type header and size travel with the bytes; the
// upload session does the actual validation.
func readImageUpload(c *gin.Context) (upload.Blob, bool) {
	fileHeader, err := c.FormFile("photo")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "A 'photo' file field is required")
		return upload.Blob{}, false
	}

	file, err := fileHeader.Open()
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to read uploaded file")
		return upload.Blob{}, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to read uploaded file")
		return upload.Blob{}, false
	}

	return upload.Blob{
		Name:     fileHeader.Filename,
		MimeType: fileHeader.Header.Get("Content-Type"),
		Size:     fileHeader.Size,
		Data:     data,
	}, true
}

// uploadErrorStatus maps a classified upload error to an HTTP status.
// Only the classified user-facing message is returned to the client.
func uploadErrorStatus(err error) (int, string) {
	var classified *upload.ClassifiedError
	if !errors.As(err, &classified) {
		return http.StatusInternalServerError, "Upload failed. Please try again."
	}

	switch classified.Category {
	case upload.CategoryValidation:
		return http.StatusBadRequest, classified.Message
	case upload.CategoryPermission:
		return http.StatusForbidden, classified.Message
	case upload.CategoryQuota:
		return http.StatusRequestEntityTooLarge, classified.Message
	case upload.CategoryNetwork:
		return http.StatusBadGateway, classified.Message
	default:
		return http.StatusInternalServerError, classified.Message
	}
}
