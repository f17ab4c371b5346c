package market

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransferPhase walks empty -> initiated -> funds_moved -> completed.
type TransferPhase string

const (
	TransferPhaseEmpty      TransferPhase = ""
	TransferPhaseInitiated  TransferPhase = "initiated"
	TransferPhaseFundsMoved TransferPhase = "funds_moved"
	TransferPhaseCompleted  TransferPhase = "completed"
)

// TransferState is the transfer aggregate state derived from its stream.
type TransferState struct {
	TransferUUID uuid.UUID
	PlayerID     uuid.UUID
	SellerUUID   uuid.UUID
	BuyerUUID    uuid.UUID
	Fee          decimal.Decimal
	Phase        TransferPhase
	Completed    bool
	Version      int64
}

func NewTransferState(transferUUID uuid.UUID) *TransferState {
	return &TransferState{TransferUUID: transferUUID, Fee: decimal.Zero}
}

func (s *TransferState) Apply(ev Event) {
	switch e := Deref(ev).(type) {
	case TransferInitiated:
		s.PlayerID = e.PlayerID
		s.SellerUUID = e.SellerUUID
		s.BuyerUUID = e.BuyerUUID
		s.Fee = e.Fee
		s.Phase = TransferPhaseInitiated
	case FundsTransferred:
		s.Phase = TransferPhaseFundsMoved
	case TransferCompleted:
		s.Phase = TransferPhaseCompleted
		s.Completed = true
	}
	s.Version++
}

// Initiated reports whether the initiation fields are populated.
func (s *TransferState) Initiated() bool {
	return s.Phase != TransferPhaseEmpty && s.PlayerID != uuid.Nil && s.BuyerUUID != uuid.Nil && s.SellerUUID != uuid.Nil
}

func FoldTransfer(transferUUID uuid.UUID, events []Event) *TransferState {
	s := NewTransferState(transferUUID)
	for _, ev := range events {
		s.Apply(ev)
	}
	return s
}
