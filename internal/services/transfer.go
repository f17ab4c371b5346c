package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/transfermarket-backend/internal/data/aggregates"
	"github.com/yungbote/transfermarket-backend/internal/data/repos"
	domainagg "github.com/yungbote/transfermarket-backend/internal/domain/aggregates"
	types "github.com/yungbote/transfermarket-backend/internal/domain/market"
	"github.com/yungbote/transfermarket-backend/internal/observability"
	"github.com/yungbote/transfermarket-backend/internal/platform/dbctx"
	"github.com/yungbote/transfermarket-backend/internal/platform/logger"
)

const MsgPurchaseRetry = "Transfer could not be completed, please try again."

type PurchaseResult struct {
	Player       *types.Player   `json:"player"`
	BuyingTeam   *types.Team     `json:"buying_team"`
	SellingTeam  *types.Team     `json:"selling_team"`
	TransferFee  decimal.Decimal `json:"transfer_fee"`
	TransferUUID uuid.UUID       `json:"transfer_uuid"`

	events []types.RecordedEvent
}

// Events returns the events committed by the purchase, in append order.
func (r *PurchaseResult) Events() []types.RecordedEvent {
	if r == nil {
		return nil
	}
	return r.events
}

type TransferService interface {
	// Purchase buys playerID for buyerTeamUUID at the listing's asking price.
	Purchase(ctx context.Context, playerID, buyerTeamUUID uuid.UUID) (*PurchaseResult, error)
	// PurchaseAtFee is Purchase with an offered fee, which must be within
	// market.FeeTolerance of the asking price.
	PurchaseAtFee(ctx context.Context, playerID, buyerTeamUUID uuid.UUID, fee decimal.Decimal) (*PurchaseResult, error)
}

type TransferServiceDeps struct {
	Runner    aggregates.TxRunner
	Listings  domainagg.ListingStateMachine
	Transfers domainagg.TransferAggregate
	Teams     repos.TeamRepo
	Players   repos.PlayerRepo

	Publisher EventPublisher
	Growth    ValueGrowthScheduler
	Metrics   *observability.Metrics
	Config    MarketConfig

	// NewID generates transfer ids; tests pin it.
	NewID func() uuid.UUID
}

type transferService struct {
	log  *logger.Logger
	deps TransferServiceDeps
}

func NewTransferService(baseLog *logger.Logger, deps TransferServiceDeps) TransferService {
	if deps.Publisher == nil {
		deps.Publisher = NewNoopEventPublisher()
	}
	if deps.NewID == nil {
		deps.NewID = uuid.New
	}
	deps.Config = deps.Config.withDefaults()
	return &transferService{
		log:  baseLog.With("service", "TransferService"),
		deps: deps,
	}
}

func (s *transferService) Purchase(ctx context.Context, playerID, buyerTeamUUID uuid.UUID) (*PurchaseResult, error) {
	return s.purchase(ctx, playerID, buyerTeamUUID, nil)
}

func (s *transferService) PurchaseAtFee(ctx context.Context, playerID, buyerTeamUUID uuid.UUID, fee decimal.Decimal) (*PurchaseResult, error) {
	return s.purchase(ctx, playerID, buyerTeamUUID, &fee)
}

func (s *transferService) purchase(ctx context.Context, playerID, buyerTeamUUID uuid.UUID, offered *decimal.Decimal) (*PurchaseResult, error) {
	const op = "Market.TransferService.Purchase"
	if s == nil || s.deps.Runner == nil || s.deps.Listings == nil || s.deps.Transfers == nil || s.deps.Teams == nil || s.deps.Players == nil {
		return nil, fmt.Errorf("transfer service not configured")
	}
	if playerID == uuid.Nil || buyerTeamUUID == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "player and buying team are required", nil)
	}

	ctx, span := observability.Tracer().Start(ctx, "TransferService.Purchase", trace.WithAttributes(
		attribute.String("player.id", playerID.String()),
		attribute.String("team.buyer", buyerTeamUUID.String()),
	))
	defer span.End()
	start := time.Now()

	var result *PurchaseResult
	err := s.deps.Runner.InTx(ctx, func(dbc dbctx.Context) error {
		if err := setLockTimeout(dbc, s.deps.Config.LockTimeout); err != nil {
			return err
		}

		listing, err := s.deps.Listings.LockActiveForPlayer(dbc, playerID)
		if err != nil {
			return err
		}
		owner, err := s.deps.Players.LockByID(dbc, playerID)
		if err != nil {
			return err
		}
		if owner == nil || owner.TeamID != listing.TeamID {
			// The listing outlived its seller's ownership.
			return domainagg.NewError(domainagg.CodeNotAvailable, op, domainagg.MsgNotAvailable, nil)
		}
		askingPrice := listing.AskingPrice
		fee := askingPrice
		if offered != nil {
			fee = *offered
		}
		if err := s.deps.Listings.MarkProcessing(dbc, listing); err != nil {
			return err
		}

		transferUUID := s.deps.NewID()
		span.SetAttributes(attribute.String("transfer.id", transferUUID.String()))

		initiated, err := s.deps.Transfers.InitiateTransfer(dbc, domainagg.InitiateTransferInput{
			TransferUUID:  transferUUID,
			PlayerID:      playerID,
			BuyerTeamUUID: buyerTeamUUID,
			Fee:           fee,
			AskingPrice:   askingPrice,
		})
		if err != nil {
			return err
		}
		funded, err := s.deps.Transfers.TransferFunds(dbc, transferUUID)
		if err != nil {
			return err
		}
		completed, err := s.deps.Transfers.CompleteTransfer(dbc, transferUUID)
		if err != nil {
			return err
		}

		player, err := s.deps.Players.GetByID(dbc, playerID)
		if err != nil {
			return err
		}
		buyer, err := s.deps.Teams.GetByID(dbc, buyerTeamUUID)
		if err != nil {
			return err
		}
		seller, err := s.deps.Teams.GetByID(dbc, listing.TeamID)
		if err != nil {
			return err
		}

		events := make([]types.RecordedEvent, 0, len(initiated.Events)+len(funded.Events)+len(completed.Events))
		events = append(events, initiated.Events...)
		events = append(events, funded.Events...)
		events = append(events, completed.Events...)

		result = &PurchaseResult{
			Player:       player,
			BuyingTeam:   buyer,
			SellingTeam:  seller,
			TransferFee:  initiated.State.Fee,
			TransferUUID: transferUUID,
			events:       events,
		}
		return nil
	})
	err = surfacePurchaseError(op, err)

	outcome := "success"
	if err != nil {
		outcome = string(domainagg.CodeOf(err))
		if outcome == "" {
			outcome = "failure"
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
	}
	s.deps.Metrics.ObservePurchase(outcome, time.Since(start))
	if err != nil {
		if domainagg.IsDomainRejection(err) {
			s.log.Info("Purchase rejected", "player_id", playerID, "buyer_team", buyerTeamUUID, "code", outcome)
		} else {
			s.log.Error("Purchase failed", "player_id", playerID, "buyer_team", buyerTeamUUID, "error", err)
		}
		return nil, err
	}

	s.log.Info("Player transferred",
		"transfer_uuid", result.TransferUUID,
		"player_id", playerID,
		"buyer_team", buyerTeamUUID,
		"fee", result.TransferFee.StringFixed(2),
	)
	s.afterCommit(ctx, result)
	return result, nil
}

// afterCommit runs the side effects of a committed sale. Failures are logged
// and never reported to the buyer.
func (s *transferService) afterCommit(ctx context.Context, result *PurchaseResult) {
	if err := s.deps.Publisher.Publish(ctx, result.events); err != nil {
		s.log.Warn("Publishing transfer events failed", "transfer_uuid", result.TransferUUID, "error", err)
	}
	if s.deps.Growth == nil {
		return
	}
	if err := s.deps.Growth.Schedule(ctx, result.TransferUUID, result.Player.ID); err != nil {
		s.deps.Metrics.IncValueGrowth(s.deps.Growth.Name(), "schedule_failed")
		s.log.Warn("Scheduling player value growth failed", "transfer_uuid", result.TransferUUID, "player_id", result.Player.ID, "error", err)
	}
}

func setLockTimeout(dbc dbctx.Context, timeout time.Duration) error {
	if dbc.Tx == nil || timeout <= 0 {
		return nil
	}
	return dbc.DB(nil).Exec(fmt.Sprintf("SET LOCAL lock_timeout = %d", timeout.Milliseconds())).Error
}

// surfacePurchaseError keeps business rejections intact and folds every
// transient or concurrency failure into CodeInfrastructureFailure.
func surfacePurchaseError(op string, err error) error {
	if err == nil {
		return nil
	}
	mapped := aggregates.MapError(op, err)
	switch domainagg.CodeOf(mapped) {
	case domainagg.CodeConcurrentModification,
		domainagg.CodeConflict,
		domainagg.CodeRetryable,
		domainagg.CodeInfrastructureFailure:
		return domainagg.NewError(domainagg.CodeInfrastructureFailure, op, MsgPurchaseRetry, mapped)
	default:
		return mapped
	}
}
