package aggregates

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yungbote/transfermarket-backend/internal/data/repos"
	domainagg "github.com/yungbote/transfermarket-backend/internal/domain/aggregates"
	types "github.com/yungbote/transfermarket-backend/internal/domain/market"
	"github.com/yungbote/transfermarket-backend/internal/platform/dbctx"
)

type ListingStateMachineDeps struct {
	Base BaseDeps

	Listings repos.TransferListingRepo
}

type listingStateMachine struct {
	deps ListingStateMachineDeps
}

func NewListingStateMachine(deps ListingStateMachineDeps) domainagg.ListingStateMachine {
	deps.Base = deps.Base.withDefaults()
	return &listingStateMachine{deps: deps}
}

func (m *listingStateMachine) Contract() domainagg.Contract {
	return domainagg.ListingStateMachineContract
}

func (m *listingStateMachine) Create(dbc dbctx.Context, playerID, teamID uuid.UUID, askingPrice decimal.Decimal) (*types.TransferListing, error) {
	const op = "Market.Listing.Create"
	if playerID == uuid.Nil || teamID == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "player_id and team_id are required", nil)
	}
	askingPrice = types.RoundMoney(askingPrice)
	if !askingPrice.IsPositive() {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "asking price must be positive", nil)
	}

	var out *types.TransferListing
	err := executeWrite(dbc, m.deps.Base, op, func(dbc dbctx.Context) error {
		row, err := m.deps.Listings.Create(dbc, &types.TransferListing{
			PlayerID:    playerID,
			TeamID:      teamID,
			AskingPrice: askingPrice,
			Status:      types.TransferStatusActive,
		})
		if isUniqueViolation(err) {
			return domainagg.NewError(domainagg.CodeAlreadyListed, op, domainagg.MsgAlreadyListed, err)
		}
		if err != nil {
			return err
		}
		out = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (m *listingStateMachine) LockActiveForPlayer(dbc dbctx.Context, playerID uuid.UUID) (*types.TransferListing, error) {
	const op = "Market.Listing.LockActiveForPlayer"
	if dbc.Tx == nil {
		return nil, domainagg.NewError(domainagg.CodeInternal, op, "row lock requires a caller transaction", nil)
	}
	row, err := m.deps.Listings.LockByPlayerID(dbc, playerID, types.AvailableForPurchase())
	if err != nil {
		return nil, MapError(op, err)
	}
	if row == nil {
		return nil, domainagg.NewError(domainagg.CodeNotAvailable, op, domainagg.MsgNotAvailable, nil)
	}
	return row, nil
}

func (m *listingStateMachine) LockByID(dbc dbctx.Context, listingID uuid.UUID) (*types.TransferListing, error) {
	const op = "Market.Listing.LockByID"
	if dbc.Tx == nil {
		return nil, domainagg.NewError(domainagg.CodeInternal, op, "row lock requires a caller transaction", nil)
	}
	row, err := m.deps.Listings.LockByID(dbc, listingID)
	if err != nil {
		return nil, MapError(op, err)
	}
	if row == nil {
		return nil, domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("listing %s not found", listingID), nil)
	}
	return row, nil
}

func (m *listingStateMachine) MarkProcessing(dbc dbctx.Context, listing *types.TransferListing) error {
	return m.transition(dbc, "Market.Listing.MarkProcessing", listing, types.TransferStatusProcessing, types.AvailableForPurchase())
}

func (m *listingStateMachine) MarkCanceled(dbc dbctx.Context, listing *types.TransferListing) error {
	return m.transition(dbc, "Market.Listing.MarkCanceled", listing, types.TransferStatusCanceled, types.AvailableForPurchase())
}

// MarkSold closes the player's in-progress listing. A player bought without
// a listing row (a replay of an old transfer) is not an error.
func (m *listingStateMachine) MarkSold(dbc dbctx.Context, playerID uuid.UUID) error {
	const op = "Market.Listing.MarkSold"
	return executeWrite(dbc, m.deps.Base, op, func(dbc dbctx.Context) error {
		row, err := m.deps.Listings.LockByPlayerID(dbc, playerID, types.InProgress())
		if err != nil {
			return err
		}
		if row == nil {
			return nil
		}
		return m.apply(dbc, op, row, types.TransferStatusSold, types.InProgress())
	})
}

func (m *listingStateMachine) transition(dbc dbctx.Context, op string, listing *types.TransferListing, next types.TransferStatus, from []types.TransferStatus) error {
	if listing == nil || listing.ID == uuid.Nil {
		return domainagg.NewError(domainagg.CodeValidation, op, "missing listing", nil)
	}
	if err := RequireStatusAllowed(string(listing.Status), types.StatusStrings(from)...); err != nil {
		return domainagg.NewError(domainagg.CodeInvalidTransition, op, fmt.Sprintf("listing is %s", listing.Status), err)
	}
	return executeWrite(dbc, m.deps.Base, op, func(dbc dbctx.Context) error {
		return m.apply(dbc, op, listing, next, from)
	})
}

func (m *listingStateMachine) apply(dbc dbctx.Context, op string, listing *types.TransferListing, next types.TransferStatus, from []types.TransferStatus) error {
	now := time.Now().UTC()
	ok, err := m.deps.Base.CASGuard.UpdateByStatus(dbc, listing.TableName(), listing.ID, types.StatusStrings(from), map[string]any{
		"status":     next,
		"unique_key": next.UniqueKey(),
		"updated_at": now,
	})
	if err != nil {
		return err
	}
	if err := RequireCASSuccess(ok, fmt.Sprintf("listing %s left %v before %s", listing.ID, from, op)); err != nil {
		return err
	}
	listing.Status = next
	listing.UniqueKey = next.UniqueKey()
	listing.UpdatedAt = now
	return nil
}
