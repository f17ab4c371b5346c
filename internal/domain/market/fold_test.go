package market

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFoldTeamBalance(t *testing.T) {
	buyer := uuid.New()
	seller := uuid.New()
	transfer := uuid.New()
	fee := decimal.NewFromInt(1_000_000)

	buyerState := FoldTeam(buyer, []Event{
		TeamCreated{TeamUUID: buyer, Name: "Buyers FC", Country: "PT"},
		InitialFundsAllocated{TeamUUID: buyer, Amount: decimal.NewFromInt(5_000_000), Reason: ReasonInitialFunding},
		&FundsTransferred{TransferUUID: transfer, FromUUID: buyer, ToUUID: seller, Amount: fee, Reason: ReasonPlayerTransfer},
	})
	require.True(t, buyerState.Created)
	assert.Equal(t, "Buyers FC", buyerState.Name)
	assert.True(t, buyerState.Balance.Equal(decimal.NewFromInt(4_000_000)), "buyer balance %s", buyerState.Balance)
	assert.EqualValues(t, 3, buyerState.Version)

	sellerState := FoldTeam(seller, []Event{
		TeamCreated{TeamUUID: seller},
		InitialFundsAllocated{TeamUUID: seller, Amount: decimal.NewFromInt(5_000_000)},
		FundsTransferred{TransferUUID: transfer, FromUUID: buyer, ToUUID: seller, Amount: fee},
	})
	assert.True(t, sellerState.Balance.Equal(decimal.NewFromInt(6_000_000)), "seller balance %s", sellerState.Balance)
}

func TestFoldTransferRoundTrip(t *testing.T) {
	id := uuid.New()
	player := uuid.New()
	buyer := uuid.New()
	seller := uuid.New()
	fee := decimal.RequireFromString("1000000.00")

	events := []Event{
		TransferInitiated{TransferUUID: id, PlayerID: player, SellerUUID: seller, BuyerUUID: buyer, Fee: fee},
		FundsTransferred{TransferUUID: id, FromUUID: buyer, ToUUID: seller, Amount: fee},
		TransferCompleted{TransferUUID: id, PlayerID: player, NewTeamUUID: buyer, PreviousTeamUUID: seller},
	}

	live := NewTransferState(id)
	for _, ev := range events {
		live.Apply(ev)
	}
	replayed := FoldTransfer(id, events)

	assert.Equal(t, live, replayed)
	assert.Equal(t, player, replayed.PlayerID)
	assert.Equal(t, buyer, replayed.BuyerUUID)
	assert.True(t, replayed.Fee.Equal(fee))
	assert.True(t, replayed.Completed)
	assert.Equal(t, TransferPhaseCompleted, replayed.Phase)
	assert.EqualValues(t, 3, replayed.Version)
}

func TestTransferStateInitiated(t *testing.T) {
	s := NewTransferState(uuid.New())
	assert.False(t, s.Initiated())
	s.Apply(TransferInitiated{PlayerID: uuid.New(), SellerUUID: uuid.New(), BuyerUUID: uuid.New(), Fee: decimal.NewFromInt(1)})
	assert.True(t, s.Initiated())
	assert.Equal(t, TransferPhaseInitiated, s.Phase)
}

func TestFeeMatchesBoundary(t *testing.T) {
	asking := decimal.RequireFromString("1000000.00")
	assert.True(t, FeeMatches(asking, asking))
	assert.True(t, FeeMatches(decimal.RequireFromString("1000000.01"), asking))
	assert.True(t, FeeMatches(decimal.RequireFromString("999999.99"), asking))
	assert.False(t, FeeMatches(decimal.RequireFromString("1000000.02"), asking))
	assert.False(t, FeeMatches(decimal.RequireFromString("999999.98"), asking))
}

func TestTransferStatusGroups(t *testing.T) {
	assert.Equal(t, []TransferStatus{TransferStatusActive}, AvailableForPurchase())
	assert.Equal(t, []TransferStatus{TransferStatusActive, TransferStatusProcessing}, InProgress())
	assert.Equal(t, []TransferStatus{TransferStatusSold, TransferStatusCanceled}, Completed())

	require.NotNil(t, TransferStatusActive.UniqueKey())
	assert.Equal(t, ListingUniqueKeyActive, *TransferStatusActive.UniqueKey())
	for _, s := range []TransferStatus{TransferStatusProcessing, TransferStatusSold, TransferStatusCanceled} {
		assert.Nil(t, s.UniqueKey(), "status %s must clear the unique key", s)
	}
	assert.Contains(t, TransferStatusCanceled.Description(), "canceled")
	assert.Equal(t, "Processing", TransferStatusProcessing.Label())
	assert.False(t, TransferStatus("pending").Valid())
}
