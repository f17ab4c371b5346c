package aggregates

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yungbote/transfermarket-backend/internal/domain/market"
	"github.com/yungbote/transfermarket-backend/internal/platform/dbctx"
)

var TransferAggregateContract = Contract{
	Name:             "Market.TransferAggregate",
	WriteTxOwnership: WriteTxJoinsCaller,
	ReadPolicy:       ReadPolicyEventStream,
	Notes:            "Drives one transfer through initiated, funds_moved and completed; every step appends before projecting.",
}

// TransferAggregate owns the per-transfer state machine.
//
// Write method failures return *aggregates.Error with codes:
// CodeValidation, CodeNotFound, CodeInsufficientFunds, CodeSelfPurchase,
// CodePriceMismatch, CodeInvalidTransition, CodeConcurrentModification,
// CodeRetryable, CodeInternal.
type TransferAggregate interface {
	Aggregate

	Retrieve(dbc dbctx.Context, transferUUID uuid.UUID) (*market.TransferState, error)

	// InitiateTransfer validates the purchase against read models and appends TransferInitiated.
	InitiateTransfer(dbc dbctx.Context, in InitiateTransferInput) (TransferResult, error)

	// TransferFunds appends FundsTransferred to the transfer and both team streams.
	TransferFunds(dbc dbctx.Context, transferUUID uuid.UUID) (TransferResult, error)

	// CompleteTransfer appends TransferCompleted.
	CompleteTransfer(dbc dbctx.Context, transferUUID uuid.UUID) (TransferResult, error)
}

type InitiateTransferInput struct {
	TransferUUID  uuid.UUID
	PlayerID      uuid.UUID
	BuyerTeamUUID uuid.UUID
	Fee           decimal.Decimal
	AskingPrice   decimal.Decimal
}

type TransferResult struct {
	State  market.TransferState
	Events []market.RecordedEvent
}
