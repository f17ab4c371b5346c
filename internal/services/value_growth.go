package services

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/yungbote/transfermarket-backend/internal/data/repos"
	domainagg "github.com/yungbote/transfermarket-backend/internal/domain/aggregates"
	types "github.com/yungbote/transfermarket-backend/internal/domain/market"
	"github.com/yungbote/transfermarket-backend/internal/observability"
	"github.com/yungbote/transfermarket-backend/internal/platform/dbctx"
	"github.com/yungbote/transfermarket-backend/internal/platform/logger"
)

// PercentSource returns a growth percentage in [min, max].
type PercentSource func(min, max int) int

func RandomPercent(min, max int) int {
	if max <= min {
		return min
	}
	return min + rand.IntN(max-min+1)
}

// GrowValue applies pct percent growth to value, rounded to cents.
func GrowValue(value decimal.Decimal, pct int) decimal.Decimal {
	factor := decimal.NewFromInt(int64(100 + pct)).Div(decimal.NewFromInt(100))
	return types.RoundMoney(value.Mul(factor))
}

// ValueGrowthService raises a sold player's market value.
type ValueGrowthService interface {
	Grow(ctx context.Context, playerID uuid.UUID) (*types.Player, error)
}

// ValueGrowthScheduler runs Grow out of band after a purchase commits.
type ValueGrowthScheduler interface {
	Schedule(ctx context.Context, transferUUID, playerID uuid.UUID) error
	Name() string
}

type valueGrowthService struct {
	db      *gorm.DB
	log     *logger.Logger
	players repos.PlayerRepo
	cfg     MarketConfig
	pct     PercentSource
}

func NewValueGrowthService(db *gorm.DB, baseLog *logger.Logger, players repos.PlayerRepo, cfg MarketConfig, pct PercentSource) ValueGrowthService {
	if pct == nil {
		pct = RandomPercent
	}
	return &valueGrowthService{
		db:      db,
		log:     baseLog.With("service", "ValueGrowthService"),
		players: players,
		cfg:     cfg.withDefaults(),
		pct:     pct,
	}
}

func (s *valueGrowthService) Grow(ctx context.Context, playerID uuid.UUID) (*types.Player, error) {
	const op = "Market.ValueGrowth.Grow"
	if s == nil || s.db == nil || s.players == nil {
		return nil, fmt.Errorf("value growth service not configured")
	}
	if playerID == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing player_id", nil)
	}

	var out *types.Player
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		player, err := s.players.LockByID(dbc, playerID)
		if err != nil {
			return err
		}
		if player == nil {
			return domainagg.NewError(domainagg.CodeNotFound, op, "Player not found.", nil)
		}
		pct := s.pct(s.cfg.ValueIncreaseMin, s.cfg.ValueIncreaseMax)
		if pct < s.cfg.ValueIncreaseMin {
			pct = s.cfg.ValueIncreaseMin
		}
		if pct > s.cfg.ValueIncreaseMax {
			pct = s.cfg.ValueIncreaseMax
		}
		next := GrowValue(player.Value, pct)
		if err := s.players.UpdateValue(dbc, player.ID, next); err != nil {
			return err
		}
		s.log.Info("Player value increased", "player_id", player.ID, "from", player.Value.StringFixed(2), "to", next.StringFixed(2), "pct", pct)
		player.Value = next
		out = player
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

type inProcessGrowthScheduler struct {
	log     *logger.Logger
	growth  ValueGrowthService
	metrics *observability.Metrics
	timeout time.Duration
}

// NewInProcessGrowthScheduler runs growth on a detached goroutine. It is the
// fallback when no workflow engine is configured.
func NewInProcessGrowthScheduler(baseLog *logger.Logger, growth ValueGrowthService, metrics *observability.Metrics) ValueGrowthScheduler {
	return &inProcessGrowthScheduler{
		log:     baseLog.With("service", "InProcessGrowthScheduler"),
		growth:  growth,
		metrics: metrics,
		timeout: 30 * time.Second,
	}
}

func (s *inProcessGrowthScheduler) Name() string { return "inprocess" }

func (s *inProcessGrowthScheduler) Schedule(ctx context.Context, transferUUID, playerID uuid.UUID) error {
	if s == nil || s.growth == nil {
		return fmt.Errorf("value growth scheduler not configured")
	}
	go func() {
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()
		if _, err := s.growth.Grow(runCtx, playerID); err != nil {
			s.metrics.IncValueGrowth(s.Name(), "failed")
			s.log.Warn("Player value growth failed", "transfer_uuid", transferUUID, "player_id", playerID, "error", err)
			return
		}
		s.metrics.IncValueGrowth(s.Name(), "succeeded")
	}()
	return nil
}
