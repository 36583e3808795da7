package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"gardiens/internal/app/outbox"
	"gardiens/internal/infra/config"
	"gardiens/internal/infra/obs"
)

type ListingHTTP interface {
	Search(c *gin.Context)
	CareTypes(c *gin.Context)
}

type SessionHTTP interface {
	Open(c *gin.Context)
	Get(c *gin.Context)
	Close(c *gin.Context)
	Navigate(c *gin.Context)
	Back(c *gin.Context)
	Home(c *gin.Context)
	UpdateCriteria(c *gin.Context)
	Results(c *gin.Context)
	Refresh(c *gin.Context)
	RotateCredential(c *gin.Context)
	ToggleFavorite(c *gin.Context)
}

type Handlers struct {
	Listing ListingHTTP
	Session SessionHTTP
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           NewRouter(cfg, obsMW, health, h),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func NewRouter(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *gin.Engine {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(eventHeaders())
	router.Use(obsMW.AccessLog())
	router.Use(cors.New(corsConfig(cfg.CORSOrigins)))
	router.Use(Credential())

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Listing != nil {
		api.GET("/listings", h.Listing.Search)
		api.GET("/care-types", h.Listing.CareTypes)
	}
	if h.Session != nil {
		api.POST("/sessions", h.Session.Open)
		sessionGroup := api.Group("/sessions/:id")
		sessionGroup.GET("", h.Session.Get)
		sessionGroup.DELETE("", h.Session.Close)
		sessionGroup.POST("/navigate", h.Session.Navigate)
		sessionGroup.POST("/back", h.Session.Back)
		sessionGroup.POST("/home", h.Session.Home)
		sessionGroup.PUT("/criteria", h.Session.UpdateCriteria)
		sessionGroup.GET("/results", h.Session.Results)
		sessionGroup.POST("/refresh", h.Session.Refresh)
		sessionGroup.PUT("/credential", h.Session.RotateCredential)
		sessionGroup.POST("/listings/:listingID/favorite", h.Session.ToggleFavorite)
	}
	return router
}

// eventHeaders tags domain events recorded during the request with its request id.
func eventHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id := obs.RequestIDFromContext(c.Request.Context()); id != "" {
			ctx := outbox.ContextWithHeaders(c.Request.Context(), map[string]string{"x-request-id": id})
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	}
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
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
