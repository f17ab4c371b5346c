package services

import (
	"time"

	"github.com/shopspring/decimal"

	types "github.com/yungbote/transfermarket-backend/internal/domain/market"
)

// MarketConfig holds the game rules shared by the marketplace services.
type MarketConfig struct {
	TeamInitialBalance decimal.Decimal
	PlayerInitialValue decimal.Decimal

	// ValueIncreaseMin and ValueIncreaseMax bound the post-sale value growth, in percent.
	ValueIncreaseMin int
	ValueIncreaseMax int

	ListingsPerPage int
	PlayersPerPage  int
	MaxPerPage      int

	// Positions is the number of generated players per position for a new team.
	Positions map[types.Position]int

	// LockTimeout bounds the wait on a listing row lock during a purchase.
	LockTimeout time.Duration
}

func DefaultMarketConfig() MarketConfig {
	return MarketConfig{
		TeamInitialBalance: decimal.NewFromInt(5_000_000),
		PlayerInitialValue: decimal.NewFromInt(1_000_000),
		ValueIncreaseMin:   10,
		ValueIncreaseMax:   100,
		ListingsPerPage:    15,
		PlayersPerPage:     20,
		MaxPerPage:         100,
		Positions: map[types.Position]int{
			types.PositionGoalkeeper: 3,
			types.PositionDefender:   6,
			types.PositionMidfielder: 6,
			types.PositionAttacker:   5,
		},
		LockTimeout: 5 * time.Second,
	}
}

func (c MarketConfig) withDefaults() MarketConfig {
	def := DefaultMarketConfig()
	if !c.TeamInitialBalance.IsPositive() {
		c.TeamInitialBalance = def.TeamInitialBalance
	}
	if !c.PlayerInitialValue.IsPositive() {
		c.PlayerInitialValue = def.PlayerInitialValue
	}
	if c.ValueIncreaseMin <= 0 && c.ValueIncreaseMax <= 0 {
		c.ValueIncreaseMin = def.ValueIncreaseMin
		c.ValueIncreaseMax = def.ValueIncreaseMax
	}
	if c.ValueIncreaseMax < c.ValueIncreaseMin {
		c.ValueIncreaseMax = c.ValueIncreaseMin
	}
	if c.ListingsPerPage <= 0 {
		c.ListingsPerPage = def.ListingsPerPage
	}
	if c.PlayersPerPage <= 0 {
		c.PlayersPerPage = def.PlayersPerPage
	}
	if c.MaxPerPage <= 0 {
		c.MaxPerPage = def.MaxPerPage
	}
	if len(c.Positions) == 0 {
		c.Positions = def.Positions
	}
	if c.LockTimeout <= 0 {
		c.LockTimeout = def.LockTimeout
	}
	return c
}

// RosterSize is the number of players generated for a new team.
func (c MarketConfig) RosterSize() int {
	n := 0
	for _, count := range c.Positions {
		n += count
	}
	return n
}
