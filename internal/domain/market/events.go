package market

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StreamType names the aggregate kind that owns an event stream.
type StreamType string

const (
	StreamTeam     StreamType = "team"
	StreamTransfer StreamType = "transfer"
)

type EventType string

const (
	EventTeamCreated           EventType = "team_created"
	EventInitialFundsAllocated EventType = "initial_funds_allocated"
	EventTransferInitiated     EventType = "transfer_initiated"
	EventFundsTransferred      EventType = "funds_transferred"
	EventTransferCompleted     EventType = "transfer_completed"
)

const (
	ReasonInitialFunding = "Initial team funding"
	ReasonPlayerTransfer = "Player transfer"
)

// Event is an immutable domain fact.
type Event interface {
	EventType() EventType
}

type TeamCreated struct {
	TeamUUID uuid.UUID `json:"team_uuid"`
	Name     string    `json:"name"`
	Country  string    `json:"country"`
}

func (TeamCreated) EventType() EventType { return EventTeamCreated }

type InitialFundsAllocated struct {
	TeamUUID uuid.UUID       `json:"team_uuid"`
	Amount   decimal.Decimal `json:"amount"`
	Reason   string          `json:"reason"`
}

func (InitialFundsAllocated) EventType() EventType { return EventInitialFundsAllocated }

type TransferInitiated struct {
	TransferUUID uuid.UUID       `json:"transfer_uuid"`
	PlayerID     uuid.UUID       `json:"player_id"`
	SellerUUID   uuid.UUID       `json:"seller_uuid"`
	BuyerUUID    uuid.UUID       `json:"buyer_uuid"`
	Fee          decimal.Decimal `json:"fee"`
}

func (TransferInitiated) EventType() EventType { return EventTransferInitiated }

// FundsTransferred moves Amount from FromUUID to ToUUID. The same fact is
// recorded on the transfer stream and on both team streams.
type FundsTransferred struct {
	TransferUUID uuid.UUID       `json:"transfer_uuid"`
	FromUUID     uuid.UUID       `json:"from_uuid"`
	ToUUID       uuid.UUID       `json:"to_uuid"`
	Amount       decimal.Decimal `json:"amount"`
	Reason       string          `json:"reason"`
}

func (FundsTransferred) EventType() EventType { return EventFundsTransferred }

type TransferCompleted struct {
	TransferUUID     uuid.UUID `json:"transfer_uuid"`
	PlayerID         uuid.UUID `json:"player_id"`
	NewTeamUUID      uuid.UUID `json:"new_team_uuid"`
	PreviousTeamUUID uuid.UUID `json:"previous_team_uuid"`
}

func (TransferCompleted) EventType() EventType { return EventTransferCompleted }

// NewEvent returns a zero value for the given type, ready for decoding.
func NewEvent(t EventType) (Event, bool) {
	switch t {
	case EventTeamCreated:
		return &TeamCreated{}, true
	case EventInitialFundsAllocated:
		return &InitialFundsAllocated{}, true
	case EventTransferInitiated:
		return &TransferInitiated{}, true
	case EventFundsTransferred:
		return &FundsTransferred{}, true
	case EventTransferCompleted:
		return &TransferCompleted{}, true
	default:
		return nil, false
	}
}

// RecordedEvent is a decoded event together with its log coordinates.
type RecordedEvent struct {
	Position   int64      `json:"position"`
	StreamID   uuid.UUID  `json:"stream_id"`
	StreamType StreamType `json:"stream_type"`
	Version    int64      `json:"version"`
	Type       EventType  `json:"event_type"`
	Event      Event      `json:"payload"`
	RecordedAt time.Time  `json:"recorded_at"`
}

// Deref returns the event by value whether it was decoded as a pointer or not.
func Deref(ev Event) Event {
	switch e := ev.(type) {
	case *TeamCreated:
		return *e
	case *InitialFundsAllocated:
		return *e
	case *TransferInitiated:
		return *e
	case *FundsTransferred:
		return *e
	case *TransferCompleted:
		return *e
	default:
		return ev
	}
}
