package app

import (
	"gorm.io/gorm"

	httpapi "github.com/yungbote/transfermarket-backend/internal/http"
	httpH "github.com/yungbote/transfermarket-backend/internal/http/handlers"
	httpMW "github.com/yungbote/transfermarket-backend/internal/http/middleware"
	"github.com/yungbote/transfermarket-backend/internal/observability"
	"github.com/yungbote/transfermarket-backend/internal/platform/logger"
	"github.com/yungbote/transfermarket-backend/internal/realtime"
)

type Handlers struct {
	Auth            *httpH.AuthHandler
	Transfer        *httpH.TransferHandler
	TransferListing *httpH.TransferListingHandler
	Player          *httpH.PlayerHandler
	Team            *httpH.TeamHandler
	Feed            *httpH.FeedHandler
	Health          *httpH.HealthHandler
}

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

func wireHandlers(db *gorm.DB, serviceset Services, hub *realtime.Hub) Handlers {
	return Handlers{
		Auth:            httpH.NewAuthHandler(serviceset.Auth),
		Transfer:        httpH.NewTransferHandler(serviceset.Transfer),
		TransferListing: httpH.NewTransferListingHandler(serviceset.TransferListing),
		Player:          httpH.NewPlayerHandler(serviceset.Player),
		Team:            httpH.NewTeamHandler(serviceset.Team),
		Feed:            httpH.NewFeedHandler(hub),
		Health:          httpH.NewHealthHandler(db),
	}
}

func wireMiddleware(log *logger.Logger, serviceset Services) Middleware {
	return Middleware{Auth: httpMW.NewAuthMiddleware(log, serviceset.Auth)}
}

func wireServer(log *logger.Logger, cfg Config, metrics *observability.Metrics, h Handlers, mw Middleware) *httpapi.Server {
	log.Info("Wiring router...")
	return httpapi.NewServer(httpapi.RouterConfig{
		Log:                    log,
		Metrics:                metrics,
		ServiceName:            cfg.ServiceName,
		CORSOrigins:            cfg.CORSOrigins,
		AuthHandler:            h.Auth,
		AuthMiddleware:         mw.Auth,
		TransferHandler:        h.Transfer,
		TransferListingHandler: h.TransferListing,
		PlayerHandler:          h.Player,
		TeamHandler:            h.Team,
		FeedHandler:            h.Feed,
		HealthHandler:          h.Health,
	})
}
