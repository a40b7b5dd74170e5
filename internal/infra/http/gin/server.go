package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"addisstay/internal/infra/obs"
)

// Options carries the parts of the process config the router needs.
type Options struct {
	Env         string
	Addr        string
	CORSOrigins []string
}

type Handlers struct {
	Auth          *AuthHandler
	Profile       *ProfileHandler
	Currency      *CurrencyHandler
	Listing       *ListingHandler
	Review        *ReviewHandler
	Booking       *BookingHandler
	Wishlist      *WishlistHandler
	Notification  *NotificationHandler
	Conversation  *ConversationHandler
	HostListing   *HostListingHandler
	HostBooking   *HostBookingHandler
	Analytics     *AnalyticsHandler
	Authenticator gin.HandlerFunc
	Metrics       *obs.Metrics
}

func NewServer(opts Options, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(opts.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}
	return &http.Server{
		Addr:              opts.Addr,
		Handler:           NewRouter(opts, obsMW, health, h),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// NewRouter builds the engine without touching the global gin mode.
func NewRouter(opts Options, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.AccessLog())
	router.Use(cors.New(corsConfig(opts.CORSOrigins)))
	if h.Authenticator != nil {
		router.Use(h.Authenticator)
	}

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)
	if h.Metrics != nil {
		router.GET("/metrics", h.Metrics.Handler())
	}

	api := router.Group("/api/v1")
	if h.Auth != nil {
		g := api.Group("/auth")
		g.POST("/register", h.Auth.Register)
		g.POST("/login", h.Auth.Login)
		g.POST("/logout", h.Auth.Logout)
		g.GET("/me", h.Auth.Me)
		g.POST("/password-reset", h.Auth.RequestPasswordReset)
		g.POST("/password-reset/confirm", h.Auth.ConfirmPasswordReset)
		g.POST("/verify-email", h.Auth.VerifyEmail)
		g.POST("/verify-email/request", h.Auth.RequestVerification)
	}
	if h.Profile != nil {
		api.PUT("/me/profile", h.Profile.Update)
		api.POST("/me/host", h.Profile.BecomeHost)
	}
	if h.Currency != nil {
		api.GET("/currencies", h.Currency.List)
		api.GET("/currencies/convert", h.Currency.Convert)
		api.GET("/languages", h.Currency.Languages)
	}
	if h.Listing != nil {
		api.GET("/listings", h.Listing.Catalog)
		api.GET("/listings/:id", h.Listing.Detail)
		api.GET("/listings/:id/recommendations", h.Listing.Recommendations)
		api.POST("/listings/:id/quote", h.Listing.Quote)
	}
	if h.Review != nil {
		api.GET("/listings/:id/reviews", h.Review.List)
		api.POST("/listings/:id/reviews", h.Review.Submit)
		api.POST("/reviews/:id/helpful", h.Review.MarkHelpful)
	}
	if h.Booking != nil {
		api.POST("/bookings", h.Booking.Create)
		api.GET("/me/bookings", h.Booking.List)
		api.POST("/me/bookings/:id/cancel", h.Booking.Cancel)
	}
	if h.Wishlist != nil {
		api.GET("/me/wishlist", h.Wishlist.List)
		api.POST("/me/wishlist/:listingId", h.Wishlist.Toggle)
	}
	if h.Notification != nil {
		g := api.Group("/me/notifications")
		g.GET("", h.Notification.List)
		g.POST("/read-all", h.Notification.MarkAllRead)
		g.POST("/:id/read", h.Notification.MarkRead)
		g.DELETE("/:id", h.Notification.Delete)
	}
	if h.Conversation != nil {
		g := api.Group("/conversations")
		g.GET("", h.Conversation.List)
		g.POST("", h.Conversation.Start)
		g.GET("/:id/messages", h.Conversation.Messages)
		g.POST("/:id/messages", h.Conversation.Send)
		g.POST("/:id/read", h.Conversation.MarkRead)
	}
	host := api.Group("/host")
	if h.HostListing != nil {
		host.GET("/listings", h.HostListing.List)
		host.POST("/listings", h.HostListing.Create)
		host.PUT("/listings/:id", h.HostListing.Update)
		host.POST("/listings/:id/activate", h.HostListing.Activate)
		host.POST("/listings/:id/deactivate", h.HostListing.Deactivate)
		host.POST("/listings/:id/photos", h.HostListing.UploadPhotos)
	}
	if h.HostBooking != nil {
		host.GET("/bookings", h.HostBooking.List)
		host.POST("/bookings/:id/confirm", h.HostBooking.Confirm)
		host.POST("/bookings/:id/cancel", h.HostBooking.Cancel)
		host.POST("/bookings/:id/complete", h.HostBooking.Complete)
	}
	if h.Analytics != nil {
		host.GET("/analytics", h.Analytics.Dashboard)
	}
	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "Idempotency-Key"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug", "dev", "local":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
