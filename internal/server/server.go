package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"chargeslot/internal/auth"
	"chargeslot/internal/booking"
	"chargeslot/internal/config"
	"chargeslot/internal/profile"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Bookings *booking.Handler
	Profiles *profile.Handler
}

type Server struct {
	router  *gin.Engine
	http    *http.Server
	limiter *RateLimiter
}

func New(cfg *config.Config, h Handlers, checks ...HealthCheck) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())
	router.Use(TracingMiddleware())
	router.Use(corsMiddleware())

	limiter := NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, 3*time.Minute)
	router.Use(limiter.Middleware())

	router.GET("/health", Health(checks...))
	router.GET("/metrics", Metrics())
	SetupSwagger(router)

	public := router.Group("/auth")
	{
		public.POST("/register", h.Profiles.Register)
		public.POST("/login", h.Profiles.Login)
		public.POST("/refresh", h.Profiles.RefreshToken)
	}

	authMiddleware := auth.AuthMiddleware(cfg.JWTSecret)
	protected := router.Group("/")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", h.Profiles.GetMe)
		protected.PATCH("/me", h.Profiles.UpdateMe)
		protected.GET("/me/reputation", h.Profiles.GetReputation)

		protected.GET("/slots", h.Bookings.ListSlots)
		protected.GET("/calendar", h.Bookings.Calendar)
		protected.POST("/bookings", h.Bookings.BookSlot)
		protected.GET("/bookings", h.Bookings.ListMyBookings)
		protected.POST("/bookings/:id/cancel", h.Bookings.CancelBooking)
		protected.POST("/bookings/:id/report", h.Bookings.ReportAbuse)
		protected.DELETE("/bookings/:id/report", h.Bookings.UndoReport)
		protected.POST("/bookings/:id/confirm", h.Bookings.ConfirmCharging)
	}

	admin := router.Group("/admin")
	admin.Use(authMiddleware, auth.RequireRole(auth.RoleAdmin))
	{
		admin.POST("/bookings/:id/cancel", h.Bookings.AdminCancelBooking)
	}

	return &Server{
		router:  router,
		limiter: limiter,
		http: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Start blocks until the server stops. After Shutdown it returns nil.
func (s *Server) Start() error {
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Stop()
	return s.http.Shutdown(ctx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, traceparent")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PATCH, DELETE")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
