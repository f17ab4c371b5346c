package aggregates

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yungbote/transfermarket-backend/internal/domain/market"
	"github.com/yungbote/transfermarket-backend/internal/platform/dbctx"
)

var ListingStateMachineContract = Contract{
	Name:             "Market.ListingStateMachine",
	WriteTxOwnership: WriteTxJoinsCaller,
	ReadPolicy:       ReadPolicyInvariantScoped,
	Notes:            "active -> processing -> sold, active -> canceled; unique_key is non-null only while active.",
}

// ListingStateMachine guards a player's market availability.
type ListingStateMachine interface {
	Aggregate

	// Create inserts an active listing. A second in-progress listing for the
	// same player fails with CodeAlreadyListed through the unique index.
	Create(dbc dbctx.Context, playerID, teamID uuid.UUID, askingPrice decimal.Decimal) (*market.TransferListing, error)

	// LockActiveForPlayer takes a row lock on the player's active listing for
	// the rest of the enclosing transaction. Fails with CodeNotAvailable.
	LockActiveForPlayer(dbc dbctx.Context, playerID uuid.UUID) (*market.TransferListing, error)

	// LockByID locks a listing regardless of status.
	LockByID(dbc dbctx.Context, listingID uuid.UUID) (*market.TransferListing, error)

	MarkProcessing(dbc dbctx.Context, listing *market.TransferListing) error
	MarkSold(dbc dbctx.Context, playerID uuid.UUID) error
	MarkCanceled(dbc dbctx.Context, listing *market.TransferListing) error
}
