package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"heartwave/dating-app/internal/service"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	profileService service.ProfileService,
	shareService service.ShareService,
) {
	authHandler := NewAuthHandler(authService)
	profileHandler := NewProfileHandler(profileService)
	photoHandler := NewPhotoHandler(shareService)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		// --- Profile screen ---
		profileGroup := protected.Group("/profile")
		{
			profileGroup.GET("/me", profileHandler.GetMyProfile)
			profileGroup.PUT("/me/photo", profileHandler.SetMyProfilePhoto)
			profileGroup.GET("/me/watch", profileHandler.WatchMyProfile)
		}

		// --- Photo-share dialog ---
		chatGroup := protected.Group("/chats")
		{
			chatGroup.POST("/:chatId/photos", photoHandler.SharePhoto)
			chatGroup.GET("/:chatId/messages", photoHandler.GetChatMessages)
			chatGroup.GET("/:chatId/photos/:messageId/url", photoHandler.GetPhotoURL)
		}
	}
}
