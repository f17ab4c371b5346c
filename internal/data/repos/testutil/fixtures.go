package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	types "github.com/yungbote/transfermarket-backend/internal/domain/market"
)

// SeedTeam writes a team read-model row directly. Tests that exercise the
// event log should create teams through the team aggregate instead.
func SeedTeam(tb testing.TB, ctx context.Context, tx *gorm.DB, balance decimal.Decimal) *types.Team {
	tb.Helper()
	t := &types.Team{
		ID:      uuid.New(),
		Name:    "Team " + uuid.NewString()[:8],
		Country: "Brazil",
		Balance: balance,
	}
	if err := tx.WithContext(ctx).Create(t).Error; err != nil {
		tb.Fatalf("seed team: %v", err)
	}
	return t
}

func SeedPlayer(tb testing.TB, ctx context.Context, tx *gorm.DB, teamID uuid.UUID, value decimal.Decimal) *types.Player {
	tb.Helper()
	p := &types.Player{
		ID:          uuid.New(),
		TeamID:      teamID,
		FirstName:   "Test",
		LastName:    "Player",
		Country:     "Brazil",
		Position:    types.PositionMidfielder,
		DateOfBirth: time.Date(2000, time.January, 15, 0, 0, 0, 0, time.UTC),
		Value:       value,
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed player: %v", err)
	}
	return p
}

func SeedListing(tb testing.TB, ctx context.Context, tx *gorm.DB, playerID, teamID uuid.UUID, price decimal.Decimal, status types.TransferStatus) *types.TransferListing {
	tb.Helper()
	l := &types.TransferListing{
		ID:          uuid.New(),
		PlayerID:    playerID,
		TeamID:      teamID,
		AskingPrice: price,
		Status:      status,
		UniqueKey:   status.UniqueKey(),
	}
	if err := tx.WithContext(ctx).Create(l).Error; err != nil {
		tb.Fatalf("seed listing: %v", err)
	}
	return l
}

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string, teamID uuid.UUID) *types.User {
	tb.Helper()
	u := &types.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: "pw",
		TeamID:       teamID,
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

// Cleanup deletes the given teams with their players, listings, users and
// event streams once the test ends. Used by tests that must commit.
func Cleanup(tb testing.TB, db *gorm.DB, teamIDs ...uuid.UUID) {
	tb.Helper()
	tb.Cleanup(func() {
		if len(teamIDs) == 0 {
			return
		}
		_ = db.Exec(`DELETE FROM stored_events WHERE stream_id IN (
			SELECT DISTINCT stream_id FROM stored_events
			WHERE stream_type = 'transfer'
				AND ((payload->>'buyer_uuid')::uuid IN ? OR (payload->>'seller_uuid')::uuid IN ?)
		)`, teamIDs, teamIDs).Error
		_ = db.Exec(`DELETE FROM stored_events WHERE stream_id IN ?`, teamIDs).Error
		_ = db.Exec(`DELETE FROM transfer_listings WHERE team_id IN ?`, teamIDs).Error
		_ = db.Exec(`DELETE FROM players WHERE team_id IN ?`, teamIDs).Error
		_ = db.Exec(`DELETE FROM users WHERE team_id IN ?`, teamIDs).Error
		_ = db.Exec(`DELETE FROM teams WHERE id IN ?`, teamIDs).Error
	})
}
