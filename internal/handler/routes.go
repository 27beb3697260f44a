package handler

import (
	"net/http"

	"gameboard/backend/internal/auth"
	"gameboard/backend/internal/middleware"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RouterOptions tune the router.
type RouterOptions struct {
	JoinRatePerMinute int
}

// NewRouter wires every route of the API.
func NewRouter(h *Handler, opts RouterOptions) *gin.Engine {
	RegisterValidations()

	router := gin.New()
	router.Use(gin.Recovery(), middleware.Logger())

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	joinLimiter := middleware.NewRateLimiter(opts.JoinRatePerMinute)

	// API v1 routes
	apiV1 := router.Group("/api/v1")
	{
		// Auth routes
		authRoutes := apiV1.Group("/auth")
		{
			authRoutes.POST("/register", h.RegisterUser)
			authRoutes.POST("/login", h.LoginUser)
		}

		// Game routes; reading works signed out, the card decides who may join
		gameRoutes := apiV1.Group("/games")
		gameRoutes.Use(auth.OptionalAuthMiddleware(h.jwtSecret))
		{
			gameRoutes.GET("", h.GetGames)
			gameRoutes.GET("/:id", h.GetGameByID)
			gameRoutes.GET("/:id/events", h.StreamGameEvents)
			gameRoutes.POST("/:id/join", joinLimiter.Middleware(), h.JoinGame)
			gameRoutes.POST("", auth.AuthMiddleware(h.jwtSecret), h.CreateGame)
		}
	}

	return router
}
