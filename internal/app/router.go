package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"sawari/internal/handler"
	"sawari/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	WalletHandler  *handler.WalletHandler
	BookingHandler *handler.BookingHandler
	ReviewHandler  *handler.ReviewHandler
	RedisClient    *redis.Client
	NewRelicApp    *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.IdempotencyMiddleware(deps.RedisClient))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// Wallet routes.
		wallet := v1.Group("/wallet")
		{
			wallet.GET("/:driverId", deps.WalletHandler.GetWallet)
			wallet.GET("/:driverId/transactions", deps.WalletHandler.GetTransactions)
			wallet.POST("/:driverId/add-money", deps.WalletHandler.AddMoney)
			wallet.POST("/:driverId/withdraw", deps.WalletHandler.Withdraw)
			wallet.POST("/:driverId/adjust", deps.WalletHandler.Adjust)
		}

		// Withdrawal resolution (bank processing callback).
		v1.POST("/transactions/:id/resolve", deps.WalletHandler.ResolveWithdrawal)

		// Booking routes.
		bookings := v1.Group("/bookings")
		{
			bookings.POST("", deps.BookingHandler.CreateBooking)
			bookings.GET("", deps.BookingHandler.ListBookings)
			bookings.GET("/:id", deps.BookingHandler.GetBooking)
			bookings.PATCH("/:id", deps.BookingHandler.UpdateBooking)
			bookings.DELETE("/:id", deps.BookingHandler.CancelBooking)
		}

		// Review routes.
		reviews := v1.Group("/reviews")
		{
			reviews.POST("", deps.ReviewHandler.CreateReview)
			reviews.GET("/driver/:driverId", deps.ReviewHandler.GetDriverReviews)
			reviews.GET("/customer/:customerId", deps.ReviewHandler.GetCustomerReviews)
		}
	}

	return router
}
