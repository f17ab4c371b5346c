package market

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Team is the read model of a team aggregate. ID doubles as the team's
// event stream id. Balance is written only by projectors.
type Team struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	Name    string          `gorm:"column:name;not null" json:"name"`
	Country string          `gorm:"column:country;not null;default:''" json:"country"`
	Balance decimal.Decimal `gorm:"column:balance;type:numeric(15,2);not null;default:0" json:"balance"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Team) TableName() string { return "teams" }

// Player is a squad member. TeamID is reassigned only by the transfer
// completion projector.
type Player struct {
	ID uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`

	TeamID uuid.UUID `gorm:"type:uuid;not null;index" json:"team_id"`

	FirstName   string          `gorm:"column:first_name;not null" json:"first_name"`
	LastName    string          `gorm:"column:last_name;not null" json:"last_name"`
	Country     string          `gorm:"column:country;not null;default:''" json:"country"`
	Position    Position        `gorm:"column:position;not null;index" json:"position"`
	DateOfBirth time.Time       `gorm:"column:date_of_birth;type:date;not null" json:"date_of_birth"`
	Value       decimal.Decimal `gorm:"column:value;type:numeric(15,2);not null" json:"value"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Player) TableName() string { return "players" }

// Age returns the player's age in whole years at now.
func (p Player) Age(now time.Time) int {
	if p.DateOfBirth.IsZero() {
		return 0
	}
	dob := p.DateOfBirth
	years := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		years--
	}
	return years
}

// TransferListing is the sellable-state record for one player's offer.
// The (player_id, unique_key) unique index admits one active listing per
// player; unique_key is NULL outside the active status.
type TransferListing struct {
	ID uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`

	PlayerID uuid.UUID `gorm:"type:uuid;not null;index;index:idx_transfer_listing_player_unique,unique,priority:1" json:"player_id"`
	TeamID   uuid.UUID `gorm:"type:uuid;not null;index" json:"team_id"`

	AskingPrice decimal.Decimal `gorm:"column:asking_price;type:numeric(15,2);not null" json:"asking_price"`
	Status      TransferStatus  `gorm:"column:status;not null;default:'active';index" json:"status"`
	UniqueKey   *string         `gorm:"column:unique_key;index:idx_transfer_listing_player_unique,unique,priority:2" json:"-"`

	CreatedAt time.Time `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (TransferListing) TableName() string { return "transfer_listings" }

// User owns exactly one team and authenticates API calls for it.
type User struct {
	ID uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`

	Email        string    `gorm:"column:email;not null;uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"column:password_hash;not null" json:"-"`
	TeamID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"team_id"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (User) TableName() string { return "users" }

// StoredEvent is one row of the append-only event log.
// Position is the global replay order; (StreamID, Version) is unique.
type StoredEvent struct {
	Position int64 `gorm:"column:position;primaryKey;autoIncrement" json:"position"`

	StreamID   uuid.UUID  `gorm:"type:uuid;not null;index:idx_stored_event_stream_version,unique,priority:1" json:"stream_id"`
	StreamType StreamType `gorm:"column:stream_type;not null;index" json:"stream_type"`
	Version    int64      `gorm:"column:version;type:bigint;not null;index:idx_stored_event_stream_version,unique,priority:2" json:"version"`

	EventType EventType      `gorm:"column:event_type;not null;index" json:"event_type"`
	Payload   datatypes.JSON `gorm:"column:payload;type:jsonb;not null" json:"payload"`
	Metadata  datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now();index" json:"created_at"`
}

func (StoredEvent) TableName() string { return "stored_events" }
