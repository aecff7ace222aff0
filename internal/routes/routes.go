package routes

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"matrimony-server/internal/config"
	"matrimony-server/internal/handlers"
	"matrimony-server/internal/mailer"
	"matrimony-server/internal/middleware"
	"matrimony-server/internal/presence"
	"matrimony-server/internal/realtime"
)

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config, log *zap.Logger, hub *realtime.Hub, tracker *presence.Tracker, m mailer.Mailer) {
	// Initialize handlers
	authHandler := handlers.NewAuthHandler(db, cfg, m)
	profileHandler := handlers.NewProfileHandler(db, cfg)
	interestHandler := handlers.NewInterestHandler(db, hub)
	likeHandler := handlers.NewLikeHandler(db, hub)
	messageHandler := handlers.NewMessageHandler(db)
	paymentHandler := handlers.NewPaymentHandler(db, cfg, log)
	miscHandler := handlers.NewMiscHandler(db, tracker)

	// Uploaded images are served statically by relative URL
	router.Static("/uploads", cfg.UploadsDir)

	// Public routes (no authentication required)
	public := router.Group("/api/v1")
	{
		authRoutes := public.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/verify-registration", authHandler.VerifyRegistration)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/verify-login", authHandler.VerifyLogin)
		}

		public.GET("/success-stories", miscHandler.GetSuccessStories)
		public.POST("/contact", miscHandler.SubmitContactForm)

		// The webhook authenticates via the provider signature over the raw
		// body, not a bearer token.
		public.POST("/payments/webhook", paymentHandler.HandleWebhook)
	}

	// Authenticated routes
	private := router.Group("/api/v1")
	private.Use(middleware.AuthMiddleware(db, cfg))
	{
		private.GET("/auth/me", authHandler.GetMe)

		profileRoutes := private.Group("/profiles")
		{
			profileRoutes.GET("/me", profileHandler.GetMyProfile)
			profileRoutes.GET("/all", profileHandler.GetAllProfiles)
			profileRoutes.GET("", profileHandler.GetProfiles)
			profileRoutes.POST("/picture", profileHandler.UploadMainPicture)
			profileRoutes.PUT("/picture", profileHandler.SetMainPicture)
			profileRoutes.POST("/images", profileHandler.UploadGalleryImages)
			profileRoutes.DELETE("/images/:imageId", profileHandler.DeleteGalleryImage)
			profileRoutes.PUT("/interests", profileHandler.UpdateInterests)
			profileRoutes.GET("/:userId", profileHandler.GetSingleProfile)
		}

		interestRoutes := private.Group("/interests")
		{
			interestRoutes.POST("/send", interestHandler.SendInterest)
			interestRoutes.GET("/received", interestHandler.GetReceivedInterests)
			interestRoutes.GET("/sent", interestHandler.GetSentInterests)
			interestRoutes.GET("/accepted", interestHandler.GetAcceptedInterests)
			interestRoutes.PUT("/respond/:interestId", interestHandler.RespondToInterest)
		}

		likeRoutes := private.Group("/likes")
		{
			likeRoutes.GET("/received", likeHandler.GetReceivedLikes)
			likeRoutes.GET("/sent", likeHandler.GetSentLikes)
			likeRoutes.POST("/:profileUserId", likeHandler.LikeProfile)
		}

		private.GET("/conversations/:otherUserId", messageHandler.GetConversationWithUser)
		private.GET("/messages/:conversationId", messageHandler.GetMessages)
		private.PUT("/messages/read/:conversationId", messageHandler.MarkMessagesRead)

		private.POST("/payments/create-checkout-session", paymentHandler.CreateCheckoutSession)

		private.GET("/presence/:userId", miscHandler.GetPresence)
	}

	// Realtime endpoint; the JWT rides in the token query parameter.
	router.GET("/ws", realtime.ServeWS(hub, db, cfg))

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})
}
