package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yungbote/transfermarket-backend/internal/data/aggregates"
	"github.com/yungbote/transfermarket-backend/internal/data/repos"
	domainagg "github.com/yungbote/transfermarket-backend/internal/domain/aggregates"
	types "github.com/yungbote/transfermarket-backend/internal/domain/market"
	"github.com/yungbote/transfermarket-backend/internal/platform/dbctx"
	"github.com/yungbote/transfermarket-backend/internal/platform/logger"
)

type TeamView struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Country     string          `json:"country"`
	Balance     decimal.Decimal `json:"balance"`
	PlayerCount int64           `json:"player_count"`
	TeamValue   decimal.Decimal `json:"team_value"`
}

type TeamService interface {
	// CreateTeam records the team and its initial funds on the team stream and
	// generates its roster. It joins dbc.Tx when present.
	CreateTeam(dbc dbctx.Context, name, country string) (*types.Team, error)
	GetTeam(ctx context.Context, teamID uuid.UUID) (*TeamView, error)
}

type teamService struct {
	log     *logger.Logger
	runner  aggregates.TxRunner
	teamAgg domainagg.TeamAggregate
	teams   repos.TeamRepo
	players repos.PlayerRepo
	roster  *RosterGenerator
	cfg     MarketConfig
}

func NewTeamService(
	baseLog *logger.Logger,
	runner aggregates.TxRunner,
	teamAgg domainagg.TeamAggregate,
	teams repos.TeamRepo,
	players repos.PlayerRepo,
	roster *RosterGenerator,
	cfg MarketConfig,
) TeamService {
	if roster == nil {
		roster = NewRosterGenerator(nil)
	}
	return &teamService{
		log:     baseLog.With("service", "TeamService"),
		runner:  runner,
		teamAgg: teamAgg,
		teams:   teams,
		players: players,
		roster:  roster,
		cfg:     cfg.withDefaults(),
	}
}

func (s *teamService) CreateTeam(dbc dbctx.Context, name, country string) (*types.Team, error) {
	const op = "Market.TeamService.CreateTeam"
	if s == nil || s.runner == nil || s.teamAgg == nil || s.teams == nil || s.players == nil {
		return nil, fmt.Errorf("team service not configured")
	}
	name = strings.TrimSpace(name)
	country = strings.TrimSpace(country)
	if name == "" {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "team name is required", nil)
	}

	teamUUID := uuid.New()
	var out *types.Team
	err := s.runner.InNestedTx(dbc, func(dbc dbctx.Context) error {
		if _, err := s.teamAgg.CreateTeam(dbc, domainagg.CreateTeamInput{TeamUUID: teamUUID, Name: name, Country: country}); err != nil {
			return err
		}
		if _, err := s.teamAgg.AllocateInitialFunds(dbc, teamUUID, s.cfg.TeamInitialBalance); err != nil {
			return err
		}
		roster := s.roster.Generate(teamUUID, s.cfg.Positions, s.cfg.PlayerInitialValue)
		if _, err := s.players.Create(dbc, roster); err != nil {
			return fmt.Errorf("create roster: %w", err)
		}
		team, err := s.teams.GetByID(dbc, teamUUID)
		if err != nil {
			return err
		}
		if team == nil {
			return domainagg.NewError(domainagg.CodeInternal, op, "team projection missing after create", nil)
		}
		out = team
		return nil
	})
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	s.log.Info("Team created", "team_id", out.ID, "name", out.Name, "balance", out.Balance.StringFixed(2))
	return out, nil
}

func (s *teamService) GetTeam(ctx context.Context, teamID uuid.UUID) (*TeamView, error) {
	const op = "Market.TeamService.GetTeam"
	dbc := dbctx.Background(ctx)
	team, err := s.teams.GetByID(dbc, teamID)
	if err != nil {
		return nil, fmt.Errorf("load team: %w", err)
	}
	if team == nil {
		return nil, domainagg.NewError(domainagg.CodeNotFound, op, "Team not found.", nil)
	}
	count, err := s.players.CountByTeam(dbc, teamID)
	if err != nil {
		return nil, fmt.Errorf("count players: %w", err)
	}
	value, err := s.players.SumValueByTeam(dbc, teamID)
	if err != nil {
		return nil, fmt.Errorf("sum player values: %w", err)
	}
	return &TeamView{
		ID:          team.ID,
		Name:        team.Name,
		Country:     team.Country,
		Balance:     team.Balance,
		PlayerCount: count,
		TeamValue:   value,
	}, nil
}
