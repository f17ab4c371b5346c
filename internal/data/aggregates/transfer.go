package aggregates

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/yungbote/transfermarket-backend/internal/data/eventstore"
	"github.com/yungbote/transfermarket-backend/internal/data/repos"
	domainagg "github.com/yungbote/transfermarket-backend/internal/domain/aggregates"
	types "github.com/yungbote/transfermarket-backend/internal/domain/market"
	"github.com/yungbote/transfermarket-backend/internal/platform/dbctx"
)

type TransferAggregateDeps struct {
	Base BaseDeps

	Store      eventstore.Store
	Teams      domainagg.TeamAggregate
	TeamRepo   repos.TeamRepo
	PlayerRepo repos.PlayerRepo
}

type transferAggregate struct {
	deps TransferAggregateDeps
}

func NewTransferAggregate(deps TransferAggregateDeps) domainagg.TransferAggregate {
	deps.Base = deps.Base.withDefaults()
	return &transferAggregate{deps: deps}
}

func (a *transferAggregate) Contract() domainagg.Contract {
	return domainagg.TransferAggregateContract
}

func (a *transferAggregate) Retrieve(dbc dbctx.Context, transferUUID uuid.UUID) (*types.TransferState, error) {
	events, err := eventstore.Collect(eventstore.Decoded(a.deps.Store.Load(dbc, transferUUID)))
	if err != nil {
		return nil, err
	}
	return types.FoldTransfer(transferUUID, events), nil
}

func (a *transferAggregate) InitiateTransfer(dbc dbctx.Context, in domainagg.InitiateTransferInput) (domainagg.TransferResult, error) {
	const op = "Market.Transfer.InitiateTransfer"
	var out domainagg.TransferResult

	fee := types.RoundMoney(in.Fee)
	if in.TransferUUID == uuid.Nil || in.PlayerID == uuid.Nil || in.BuyerTeamUUID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "transfer_uuid, player_id and buyer team are required", nil)
	}
	if !fee.IsPositive() {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "transfer fee must be positive", nil)
	}
	if a.deps.TeamRepo == nil || a.deps.PlayerRepo == nil {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "transfer aggregate repos not configured", nil)
	}

	err := executeWrite(dbc, a.deps.Base, op, func(dbc dbctx.Context) error {
		player, err := a.deps.PlayerRepo.GetByID(dbc, in.PlayerID)
		if err != nil {
			return err
		}
		if player == nil {
			return domainagg.NewError(domainagg.CodeNotFound, op, "Player not found.", nil)
		}
		seller, err := a.deps.TeamRepo.GetByID(dbc, player.TeamID)
		if err != nil {
			return err
		}
		if seller == nil {
			return domainagg.NewError(domainagg.CodeNotFound, op, "Selling team not found.", nil)
		}
		buyer, err := a.deps.TeamRepo.GetByID(dbc, in.BuyerTeamUUID)
		if err != nil {
			return err
		}
		if buyer == nil {
			return domainagg.NewError(domainagg.CodeNotFound, op, "Buying team not found.", nil)
		}

		if buyer.Balance.LessThan(fee) {
			return domainagg.NewError(domainagg.CodeInsufficientFunds, op, domainagg.MsgInsufficientFunds, nil)
		}
		if seller.ID == buyer.ID {
			return domainagg.NewError(domainagg.CodeSelfPurchase, op, domainagg.MsgSelfPurchase, nil)
		}
		if !types.FeeMatches(fee, in.AskingPrice) {
			return domainagg.NewError(domainagg.CodePriceMismatch, op, domainagg.MsgPriceMismatch, nil)
		}

		state, err := a.Retrieve(dbc, in.TransferUUID)
		if err != nil {
			return err
		}
		if state.Version > 0 {
			return domainagg.NewError(domainagg.CodeInvalidTransition, op, fmt.Sprintf("transfer %s already %s", in.TransferUUID, state.Phase), nil)
		}

		out, err = a.record(dbc, state, types.TransferInitiated{
			TransferUUID: in.TransferUUID,
			PlayerID:     player.ID,
			SellerUUID:   seller.ID,
			BuyerUUID:    buyer.ID,
			Fee:          fee,
		})
		return err
	})
	if err != nil {
		return domainagg.TransferResult{}, err
	}
	return out, nil
}

func (a *transferAggregate) TransferFunds(dbc dbctx.Context, transferUUID uuid.UUID) (domainagg.TransferResult, error) {
	const op = "Market.Transfer.TransferFunds"
	var out domainagg.TransferResult

	if transferUUID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing transfer_uuid", nil)
	}
	if a.deps.Teams == nil || a.deps.TeamRepo == nil {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "team aggregate not configured", nil)
	}

	err := executeWrite(dbc, a.deps.Base, op, func(dbc dbctx.Context) error {
		state, err := a.Retrieve(dbc, transferUUID)
		if err != nil {
			return err
		}
		if state.Phase != types.TransferPhaseInitiated || !state.Initiated() {
			return domainagg.NewError(domainagg.CodeInvalidTransition, op, "Transfer not properly initiated.", nil)
		}

		// Both team streams are appended below; lock their rows in id order
		// so concurrent transfers between the same teams queue instead of
		// racing on stream versions.
		if _, err := a.deps.TeamRepo.LockByIDs(dbc, []uuid.UUID{state.BuyerUUID, state.SellerUUID}); err != nil {
			return err
		}

		moved := types.FundsTransferred{
			TransferUUID: transferUUID,
			FromUUID:     state.BuyerUUID,
			ToUUID:       state.SellerUUID,
			Amount:       state.Fee,
			Reason:       types.ReasonPlayerTransfer,
		}
		out, err = a.record(dbc, state, moved)
		if err != nil {
			return err
		}
		if _, err := a.deps.Teams.RecordFundsTransferred(dbc, state.BuyerUUID, moved); err != nil {
			return err
		}
		if _, err := a.deps.Teams.RecordFundsTransferred(dbc, state.SellerUUID, moved); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return domainagg.TransferResult{}, err
	}
	return out, nil
}

func (a *transferAggregate) CompleteTransfer(dbc dbctx.Context, transferUUID uuid.UUID) (domainagg.TransferResult, error) {
	const op = "Market.Transfer.CompleteTransfer"
	var out domainagg.TransferResult

	if transferUUID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing transfer_uuid", nil)
	}

	err := executeWrite(dbc, a.deps.Base, op, func(dbc dbctx.Context) error {
		state, err := a.Retrieve(dbc, transferUUID)
		if err != nil {
			return err
		}
		if state.Phase != types.TransferPhaseFundsMoved {
			return domainagg.NewError(domainagg.CodeInvalidTransition, op, fmt.Sprintf("cannot complete transfer in phase %q", state.Phase), nil)
		}
		out, err = a.record(dbc, state, types.TransferCompleted{
			TransferUUID:     transferUUID,
			PlayerID:         state.PlayerID,
			NewTeamUUID:      state.BuyerUUID,
			PreviousTeamUUID: state.SellerUUID,
		})
		return err
	})
	if err != nil {
		return domainagg.TransferResult{}, err
	}
	return out, nil
}

func (a *transferAggregate) record(dbc dbctx.Context, state *types.TransferState, events ...types.Event) (domainagg.TransferResult, error) {
	res, err := a.deps.Store.Append(dbc, state.TransferUUID, types.StreamTransfer, state.Version, events...)
	if err != nil {
		return domainagg.TransferResult{}, err
	}
	for _, rec := range res.Events {
		state.Apply(rec.Event)
	}
	return domainagg.TransferResult{State: *state, Events: res.Events}, nil
}
