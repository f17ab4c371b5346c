package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/transfermarket-backend/internal/http/handlers"
	httpMW "github.com/yungbote/transfermarket-backend/internal/http/middleware"
	"github.com/yungbote/transfermarket-backend/internal/observability"
	"github.com/yungbote/transfermarket-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	ServiceName string
	CORSOrigins []string

	AuthHandler            *httpH.AuthHandler
	AuthMiddleware         *httpMW.AuthMiddleware
	TransferHandler        *httpH.TransferHandler
	TransferListingHandler *httpH.TransferListingHandler
	PlayerHandler          *httpH.PlayerHandler
	TeamHandler            *httpH.TeamHandler
	FeedHandler            *httpH.FeedHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins...))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		// Auth (public)
		if cfg.AuthHandler != nil {
			api.POST("/register", cfg.AuthHandler.Register)
			api.POST("/login", cfg.AuthHandler.Login)
		}

		// Market (public)
		if cfg.TransferListingHandler != nil {
			api.GET("/transfer-listings", cfg.TransferListingHandler.ListActive)
		}
		if cfg.FeedHandler != nil {
			api.GET("/transfers/stream", cfg.FeedHandler.Stream)
		}
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		if cfg.TeamHandler != nil {
			protected.GET("/teams/me", cfg.TeamHandler.GetMe)
		}
		if cfg.PlayerHandler != nil {
			protected.GET("/players", cfg.PlayerHandler.ListMine)
		}
		if cfg.TransferListingHandler != nil {
			protected.POST("/transfer-listings", cfg.TransferListingHandler.Create)
			protected.DELETE("/transfer-listings/:id", cfg.TransferListingHandler.Cancel)
		}
		if cfg.TransferHandler != nil {
			protected.POST("/transfer/purchase/:player", cfg.TransferHandler.Purchase)
		}
	}

	return r
}
