package realtime

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/transfermarket-backend/internal/domain/market"
)

// FeedMessage is one committed transfer event as seen by feed subscribers.
type FeedMessage struct {
	Event      types.EventType  `json:"event"`
	StreamID   uuid.UUID        `json:"stream_id"`
	StreamType types.StreamType `json:"stream_type"`
	Position   int64            `json:"position"`
	Version    int64            `json:"version"`
	Data       json.RawMessage  `json:"data,omitempty"`
	RecordedAt time.Time        `json:"recorded_at"`
}

func FromRecorded(rec types.RecordedEvent) (FeedMessage, error) {
	msg := FeedMessage{
		Event:      rec.Type,
		StreamID:   rec.StreamID,
		StreamType: rec.StreamType,
		Position:   rec.Position,
		Version:    rec.Version,
		RecordedAt: rec.RecordedAt,
	}
	if rec.Event == nil {
		return msg, nil
	}
	raw, err := json.Marshal(rec.Event)
	if err != nil {
		return FeedMessage{}, fmt.Errorf("encode %s: %w", rec.Type, err)
	}
	msg.Data = raw
	return msg, nil
}
