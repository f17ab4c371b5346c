package eventstore

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"

	"gorm.io/datatypes"

	domainagg "github.com/yungbote/transfermarket-backend/internal/domain/aggregates"
	types "github.com/yungbote/transfermarket-backend/internal/domain/market"
	"github.com/yungbote/transfermarket-backend/internal/platform/ctxutil"
)

// Metadata is stored next to each payload for audit and log correlation.
type Metadata struct {
	TraceID   string `json:"trace_id,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	UserID    string `json:"user_id,omitempty"`
}

func encode(ev types.Event) (types.EventType, datatypes.JSON, error) {
	if ev == nil {
		return "", nil, fmt.Errorf("encode: nil event")
	}
	b, err := json.Marshal(ev)
	if err != nil {
		return "", nil, fmt.Errorf("encode %s: %w", ev.EventType(), err)
	}
	return ev.EventType(), datatypes.JSON(b), nil
}

func metadataFor(ctx context.Context) datatypes.JSON {
	var md Metadata
	if ctx != nil {
		if td := ctxutil.GetTraceData(ctx); td != nil {
			md.TraceID = td.TraceID
			md.RequestID = td.RequestID
		}
		if rd := ctxutil.GetRequestData(ctx); rd != nil {
			md.UserID = rd.UserID.String()
		}
	}
	b, err := json.Marshal(md)
	if err != nil {
		return datatypes.JSON([]byte("{}"))
	}
	return datatypes.JSON(b)
}

// Decode turns a stored row into a typed event. Unknown event types are an error.
func Decode(row types.StoredEvent) (types.RecordedEvent, error) {
	ev, ok := types.NewEvent(row.EventType)
	if !ok {
		return types.RecordedEvent{}, domainagg.NewError(
			domainagg.CodeInternal,
			"eventstore.decode",
			fmt.Sprintf("unknown event type %q at position %d", row.EventType, row.Position),
			nil,
		)
	}
	if err := json.Unmarshal(row.Payload, ev); err != nil {
		return types.RecordedEvent{}, domainagg.Wrap(domainagg.CodeInternal, "eventstore.decode", err)
	}
	return types.RecordedEvent{
		Position:   row.Position,
		StreamID:   row.StreamID,
		StreamType: row.StreamType,
		Version:    row.Version,
		Type:       row.EventType,
		Event:      types.Deref(ev),
		RecordedAt: row.CreatedAt,
	}, nil
}

// Decoded maps a row sequence through Decode, stopping at the first error.
func Decoded(rows iter.Seq2[types.StoredEvent, error]) iter.Seq2[types.RecordedEvent, error] {
	return func(yield func(types.RecordedEvent, error) bool) {
		for row, err := range rows {
			if err != nil {
				yield(types.RecordedEvent{}, err)
				return
			}
			rec, err := Decode(row)
			if !yield(rec, err) || err != nil {
				return
			}
		}
	}
}

// Collect drains a decoded sequence into its events in order.
func Collect(seq iter.Seq2[types.RecordedEvent, error]) ([]types.Event, error) {
	var out []types.Event
	for rec, err := range seq {
		if err != nil {
			return nil, err
		}
		out = append(out, rec.Event)
	}
	return out, nil
}
