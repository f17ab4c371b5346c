package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/transfermarket-backend/internal/data/aggregates"
	"github.com/yungbote/transfermarket-backend/internal/data/eventstore"
	"github.com/yungbote/transfermarket-backend/internal/data/projectors"
	domainagg "github.com/yungbote/transfermarket-backend/internal/domain/aggregates"
	"github.com/yungbote/transfermarket-backend/internal/observability"
	"github.com/yungbote/transfermarket-backend/internal/platform/logger"
	"github.com/yungbote/transfermarket-backend/internal/realtime"
	"github.com/yungbote/transfermarket-backend/internal/services"
	"github.com/yungbote/transfermarket-backend/internal/temporalx"
	"github.com/yungbote/transfermarket-backend/internal/temporalx/valuegrowth"
)

type Services struct {
	// Core
	Runner    aggregates.TxRunner
	Store     eventstore.Store
	Projector *projectors.Projector

	// Aggregates
	Listings    domainagg.ListingStateMachine
	TeamAgg     domainagg.TeamAggregate
	TransferAgg domainagg.TransferAggregate

	// Market
	Team            services.TeamService
	Player          services.PlayerService
	TransferListing services.TransferListingService
	Transfer        services.TransferService
	Auth            services.AuthService

	// Post-commit
	ValueGrowth     services.ValueGrowthService
	GrowthScheduler services.ValueGrowthScheduler
	Publisher       services.EventPublisher
}

func wireServices(
	db *gorm.DB,
	log *logger.Logger,
	cfg Config,
	reposet Repos,
	clients Clients,
	hub *realtime.Hub,
	metrics *observability.Metrics,
) Services {
	log.Info("Wiring services...")

	base := aggregates.BaseDeps{
		DB:    db,
		Log:   log,
		Hooks: aggregates.NewObservabilityHooks(metrics),
	}
	runner := aggregates.NewGormTxRunner(db)

	listings := aggregates.NewListingStateMachine(aggregates.ListingStateMachineDeps{
		Base:     base,
		Listings: reposet.TransferListing,
	})

	// The projector folds streams through a hookless reader; the store that
	// aggregates append through runs the projector on every event.
	proj := projectors.New(projectors.Deps{
		DB:       db,
		Log:      log,
		Reader:   eventstore.New(db, log, nil),
		Teams:    reposet.Team,
		Players:  reposet.Player,
		Listings: listings,
	})
	store := eventstore.New(db, log, proj.Handle)

	teamAgg := aggregates.NewTeamAggregate(aggregates.TeamAggregateDeps{Base: base, Store: store})
	transferAgg := aggregates.NewTransferAggregate(aggregates.TransferAggregateDeps{
		Base:       base,
		Store:      store,
		Teams:      teamAgg,
		TeamRepo:   reposet.Team,
		PlayerRepo: reposet.Player,
	})

	teamSvc := services.NewTeamService(log, runner, teamAgg, reposet.Team, reposet.Player, nil, cfg.Market)
	playerSvc := services.NewPlayerService(log, reposet.Player, cfg.Market)
	listingSvc := services.NewTransferListingService(log, runner, listings, reposet.TransferListing, reposet.Player, reposet.Team, metrics, cfg.Market)
	authSvc := services.NewAuthService(log, runner, reposet.User, teamSvc, cfg.JWTSecretKey, cfg.AccessTokenTTL)

	growth := services.NewValueGrowthService(db, log, reposet.Player, cfg.Market, nil)
	var scheduler services.ValueGrowthScheduler
	if clients.Temporal != nil {
		scheduler = valuegrowth.NewScheduler(log, clients.Temporal, temporalx.LoadConfig().TaskQueue, metrics)
	} else {
		scheduler = services.NewInProcessGrowthScheduler(log, growth, metrics)
	}
	log.Info("Value growth scheduler selected", "scheduler", scheduler.Name())

	// With redis every replica's hub is fed by the forwarder; without it the
	// local hub is the only audience.
	var sink services.FeedSink = hub
	if clients.TransferBus != nil {
		sink = clients.TransferBus
	}
	publisher := services.NewEventPublisher(log, sink, metrics)

	transferSvc := services.NewTransferService(log, services.TransferServiceDeps{
		Runner:    runner,
		Listings:  listings,
		Transfers: transferAgg,
		Teams:     reposet.Team,
		Players:   reposet.Player,
		Publisher: publisher,
		Growth:    scheduler,
		Metrics:   metrics,
		Config:    cfg.Market,
	})

	return Services{
		Runner:          runner,
		Store:           store,
		Projector:       proj,
		Listings:        listings,
		TeamAgg:         teamAgg,
		TransferAgg:     transferAgg,
		Team:            teamSvc,
		Player:          playerSvc,
		TransferListing: listingSvc,
		Transfer:        transferSvc,
		Auth:            authSvc,
		ValueGrowth:     growth,
		GrowthScheduler: scheduler,
		Publisher:       publisher,
	}
}
