package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/transfermarket-backend/internal/data/repos"
	"github.com/yungbote/transfermarket-backend/internal/platform/dbctx"
	"github.com/yungbote/transfermarket-backend/internal/platform/logger"
)

type PlayerService interface {
	ListTeamPlayers(ctx context.Context, teamID uuid.UUID, page, perPage int) (Page[PlayerSummary], error)
}

type playerService struct {
	log     *logger.Logger
	players repos.PlayerRepo
	cfg     MarketConfig
}

func NewPlayerService(baseLog *logger.Logger, players repos.PlayerRepo, cfg MarketConfig) PlayerService {
	return &playerService{
		log:     baseLog.With("service", "PlayerService"),
		players: players,
		cfg:     cfg.withDefaults(),
	}
}

func (s *playerService) ListTeamPlayers(ctx context.Context, teamID uuid.UUID, page, perPage int) (Page[PlayerSummary], error) {
	if s == nil || s.players == nil {
		return Page[PlayerSummary]{}, fmt.Errorf("player service not configured")
	}
	page, perPage = normalizePage(page, perPage, s.cfg.PlayersPerPage, s.cfg.MaxPerPage)
	dbc := dbctx.Background(ctx)

	total, err := s.players.CountByTeam(dbc, teamID)
	if err != nil {
		return Page[PlayerSummary]{}, fmt.Errorf("count players: %w", err)
	}
	rows, err := s.players.ListByTeam(dbc, teamID, pageOffset(page, perPage), perPage)
	if err != nil {
		return Page[PlayerSummary]{}, fmt.Errorf("list players: %w", err)
	}
	now := time.Now().UTC()
	items := make([]PlayerSummary, 0, len(rows))
	for _, p := range rows {
		items = append(items, *summarizePlayer(p, now))
	}
	return newPage(items, page, perPage, total), nil
}
