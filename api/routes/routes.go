package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/gra-paradise/patrol-contest-backend/internal/config"
	"github.com/gra-paradise/patrol-contest-backend/internal/handlers"
	"github.com/gra-paradise/patrol-contest-backend/internal/middleware"
)

// HandlerDependencies groups the handlers wired in main
type HandlerDependencies struct {
	AuthHandler    *handlers.AuthHandler
	SessionHandler *handlers.SessionHandler
	ContestHandler *handlers.ContestHandler
	LotteryHandler *handlers.LotteryHandler
}

// SetupRouter sets up the router
func SetupRouter(cfg *config.Config, deps HandlerDependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	// Add middleware
	router.Use(middleware.CORSMiddleware(cfg))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware())

	// Public routes
	public := router.Group("/api/v1")
	{
		// Health check
		public.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status": "ok",
			})
		})

		// Auth routes
		auth := public.Group("/auth")
		{
			auth.POST("/login", deps.AuthHandler.Login)
		}

		// Session ingestion is unauthenticated: the bot that closes
		// patrol sessions posts here without an operator token.
		public.POST("/sessions/close", deps.SessionHandler.CloseSession)
	}

	// Protected routes
	protected := router.Group("/api/v1")
	protected.Use(middleware.JWTAuthMiddleware(cfg))
	{
		// Contest routes
		contests := protected.Group("/contests")
		{
			contests.POST("", deps.ContestHandler.CreateContest)
			contests.GET("/:id", deps.ContestHandler.GetContest)
			contests.GET("/guild/:guildId", deps.ContestHandler.ListContests)
			contests.GET("/active/:guildId", deps.ContestHandler.GetActiveContest)
			contests.POST("/:id/deactivate", deps.ContestHandler.DeactivateContest)

			// Participant queries
			contests.GET("/:id/participants/:participantId", deps.ContestHandler.GetParticipant)
			contests.GET("/:id/participants/:participantId/records", deps.ContestHandler.GetParticipantRecords)
			contests.GET("/:id/eligible", deps.ContestHandler.GetEligible)
			contests.GET("/:id/leaderboard", deps.ContestHandler.GetLeaderboard)

			// Lottery routes
			contests.POST("/:id/draws/afternoon", deps.LotteryHandler.DrawAfternoon)
			contests.POST("/:id/draws/night-vip", deps.LotteryHandler.DrawNightVip)
			contests.POST("/:id/draws/full", deps.LotteryHandler.DrawFull)
			contests.GET("/:id/winners", deps.LotteryHandler.GetWinners)
			contests.GET("/:id/winners/drawn", deps.LotteryHandler.HasDrawnWinners)
		}

		// Hours record routes
		hours := protected.Group("/hours")
		{
			hours.POST("/:id/invalidate", deps.SessionHandler.InvalidateRecord)
		}
	}

	return router
}
