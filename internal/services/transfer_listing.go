package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yungbote/transfermarket-backend/internal/data/aggregates"
	"github.com/yungbote/transfermarket-backend/internal/data/repos"
	domainagg "github.com/yungbote/transfermarket-backend/internal/domain/aggregates"
	types "github.com/yungbote/transfermarket-backend/internal/domain/market"
	"github.com/yungbote/transfermarket-backend/internal/observability"
	"github.com/yungbote/transfermarket-backend/internal/platform/dbctx"
	"github.com/yungbote/transfermarket-backend/internal/platform/logger"
)

var minAskingPrice = decimal.NewFromInt(1)

type PlayerSummary struct {
	ID        uuid.UUID       `json:"id"`
	FirstName string          `json:"first_name"`
	LastName  string          `json:"last_name"`
	Country   string          `json:"country"`
	Position  types.Position  `json:"position"`
	Age       int             `json:"age"`
	Value     decimal.Decimal `json:"value"`
}

type TeamSummary struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Country string    `json:"country"`
}

type ListingView struct {
	ID                uuid.UUID            `json:"id"`
	AskingPrice       decimal.Decimal      `json:"asking_price"`
	Status            types.TransferStatus `json:"status"`
	StatusLabel       string               `json:"status_label"`
	StatusDescription string               `json:"status_description"`
	CreatedAt         time.Time            `json:"created_at"`
	Player            *PlayerSummary       `json:"player"`
	SellingTeam       *TeamSummary         `json:"selling_team"`
}

type TransferListingService interface {
	ListForTransfer(ctx context.Context, playerID, sellingTeamID uuid.UUID, askingPrice decimal.Decimal) (*types.TransferListing, error)
	CancelListing(ctx context.Context, listingID, sellingTeamID uuid.UUID) (*types.TransferListing, error)
	ListActive(ctx context.Context, page, perPage int) (Page[ListingView], error)
}

type transferListingService struct {
	log      *logger.Logger
	runner   aggregates.TxRunner
	listings domainagg.ListingStateMachine
	rows     repos.TransferListingRepo
	players  repos.PlayerRepo
	teams    repos.TeamRepo
	metrics  *observability.Metrics
	cfg      MarketConfig
}

func NewTransferListingService(
	baseLog *logger.Logger,
	runner aggregates.TxRunner,
	listings domainagg.ListingStateMachine,
	rows repos.TransferListingRepo,
	players repos.PlayerRepo,
	teams repos.TeamRepo,
	metrics *observability.Metrics,
	cfg MarketConfig,
) TransferListingService {
	return &transferListingService{
		log:      baseLog.With("service", "TransferListingService"),
		runner:   runner,
		listings: listings,
		rows:     rows,
		players:  players,
		teams:    teams,
		metrics:  metrics,
		cfg:      cfg.withDefaults(),
	}
}

func (s *transferListingService) ListForTransfer(ctx context.Context, playerID, sellingTeamID uuid.UUID, askingPrice decimal.Decimal) (*types.TransferListing, error) {
	const op = "Market.TransferListingService.ListForTransfer"
	if s == nil || s.runner == nil || s.listings == nil || s.players == nil {
		return nil, fmt.Errorf("transfer listing service not configured")
	}

	var out *types.TransferListing
	err := s.runner.InTx(ctx, func(dbc dbctx.Context) error {
		// Held until commit so a concurrent sale cannot move the player
		// between the ownership check and the insert.
		player, err := s.players.LockByID(dbc, playerID)
		if err != nil {
			return err
		}
		if player == nil || player.TeamID != sellingTeamID {
			return domainagg.NewError(domainagg.CodePlayerNotOwned, op, domainagg.MsgPlayerNotOwned, nil)
		}
		askingPrice = types.RoundMoney(askingPrice)
		if askingPrice.LessThan(minAskingPrice) {
			return domainagg.NewError(domainagg.CodeValidation, op, "The asking price must be at least 1.", nil)
		}
		row, err := s.listings.Create(dbc, playerID, sellingTeamID, askingPrice)
		if err != nil {
			return err
		}
		out = row
		return nil
	})
	err = aggregates.MapError(op, err)
	s.metrics.IncListing("create", listingOutcome(err))
	if err != nil {
		return nil, err
	}
	s.log.Info("Player listed for transfer", "listing_id", out.ID, "player_id", playerID, "team_id", sellingTeamID, "asking_price", out.AskingPrice.StringFixed(2))
	return out, nil
}

func (s *transferListingService) CancelListing(ctx context.Context, listingID, sellingTeamID uuid.UUID) (*types.TransferListing, error) {
	const op = "Market.TransferListingService.CancelListing"
	if s == nil || s.runner == nil || s.listings == nil {
		return nil, fmt.Errorf("transfer listing service not configured")
	}

	var out *types.TransferListing
	err := s.runner.InTx(ctx, func(dbc dbctx.Context) error {
		listing, err := s.listings.LockByID(dbc, listingID)
		if err != nil {
			return err
		}
		if listing.TeamID != sellingTeamID {
			return domainagg.NewError(domainagg.CodePlayerNotOwned, op, domainagg.MsgPlayerNotOwned, nil)
		}
		if !listing.Status.IsAvailableForPurchase() {
			return domainagg.NewError(domainagg.CodeNotAvailable, op, domainagg.MsgNotAvailable, nil)
		}
		if err := s.listings.MarkCanceled(dbc, listing); err != nil {
			return err
		}
		out = listing
		return nil
	})
	err = aggregates.MapError(op, err)
	s.metrics.IncListing("cancel", listingOutcome(err))
	if err != nil {
		return nil, err
	}
	s.log.Info("Transfer listing canceled", "listing_id", out.ID, "player_id", out.PlayerID, "team_id", sellingTeamID)
	return out, nil
}

func (s *transferListingService) ListActive(ctx context.Context, page, perPage int) (Page[ListingView], error) {
	page, perPage = normalizePage(page, perPage, s.cfg.ListingsPerPage, s.cfg.MaxPerPage)
	dbc := dbctx.Background(ctx)
	statuses := types.AvailableForPurchase()

	total, err := s.rows.CountByStatus(dbc, statuses)
	if err != nil {
		return Page[ListingView]{}, fmt.Errorf("count listings: %w", err)
	}
	rows, err := s.rows.ListByStatus(dbc, statuses, pageOffset(page, perPage), perPage)
	if err != nil {
		return Page[ListingView]{}, fmt.Errorf("list listings: %w", err)
	}

	playerIDs := make([]uuid.UUID, 0, len(rows))
	teamIDs := make([]uuid.UUID, 0, len(rows))
	for _, r := range rows {
		playerIDs = append(playerIDs, r.PlayerID)
		teamIDs = append(teamIDs, r.TeamID)
	}
	players, err := s.players.GetByIDs(dbc, playerIDs)
	if err != nil {
		return Page[ListingView]{}, fmt.Errorf("load listed players: %w", err)
	}
	teams, err := s.teams.GetByIDs(dbc, teamIDs)
	if err != nil {
		return Page[ListingView]{}, fmt.Errorf("load selling teams: %w", err)
	}
	playerByID := make(map[uuid.UUID]*types.Player, len(players))
	for _, p := range players {
		playerByID[p.ID] = p
	}
	teamByID := make(map[uuid.UUID]*types.Team, len(teams))
	for _, t := range teams {
		teamByID[t.ID] = t
	}

	now := time.Now().UTC()
	views := make([]ListingView, 0, len(rows))
	for _, r := range rows {
		views = append(views, ListingView{
			ID:                r.ID,
			AskingPrice:       r.AskingPrice,
			Status:            r.Status,
			StatusLabel:       r.Status.Label(),
			StatusDescription: r.Status.Description(),
			CreatedAt:         r.CreatedAt,
			Player:            summarizePlayer(playerByID[r.PlayerID], now),
			SellingTeam:       summarizeTeam(teamByID[r.TeamID]),
		})
	}
	return newPage(views, page, perPage, total), nil
}

func summarizePlayer(p *types.Player, now time.Time) *PlayerSummary {
	if p == nil {
		return nil
	}
	return &PlayerSummary{
		ID:        p.ID,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Country:   p.Country,
		Position:  p.Position,
		Age:       p.Age(now),
		Value:     p.Value,
	}
}

func summarizeTeam(t *types.Team) *TeamSummary {
	if t == nil {
		return nil
	}
	return &TeamSummary{ID: t.ID, Name: t.Name, Country: t.Country}
}

func listingOutcome(err error) string {
	if err == nil {
		return "success"
	}
	if code := domainagg.CodeOf(err); code != "" {
		return string(code)
	}
	return "failure"
}
