package eventstore

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainagg "github.com/yungbote/transfermarket-backend/internal/domain/aggregates"
	types "github.com/yungbote/transfermarket-backend/internal/domain/market"
	"github.com/yungbote/transfermarket-backend/internal/platform/ctxutil"
)

func TestDecodeFundsTransferred(t *testing.T) {
	from, to, transfer := uuid.New(), uuid.New(), uuid.New()
	evType, payload, err := encode(&types.FundsTransferred{
		TransferUUID: transfer,
		FromUUID:     from,
		ToUUID:       to,
		Amount:       decimal.RequireFromString("1500000.50"),
		Reason:       types.ReasonPlayerTransfer,
	})
	require.NoError(t, err)
	require.Equal(t, types.EventFundsTransferred, evType)

	rec, err := Decode(types.StoredEvent{
		Position:   7,
		StreamID:   transfer,
		StreamType: types.StreamTransfer,
		Version:    2,
		EventType:  evType,
		Payload:    payload,
		CreatedAt:  time.Now(),
	})
	require.NoError(t, err)

	ev, ok := rec.Event.(types.FundsTransferred)
	require.True(t, ok, "decoded event should be a value, got %T", rec.Event)
	assert.Equal(t, from, ev.FromUUID)
	assert.Equal(t, to, ev.ToUUID)
	assert.True(t, ev.Amount.Equal(decimal.RequireFromString("1500000.50")))
	assert.Equal(t, int64(2), rec.Version)
	assert.Equal(t, int64(7), rec.Position)
}

func TestDecodeUnknownType(t *testing.T) {
	_, err := Decode(types.StoredEvent{EventType: "player_retired", Payload: []byte(`{}`)})
	require.Error(t, err)
	assert.True(t, domainagg.IsCode(err, domainagg.CodeInternal))
}

func TestDecodeBadPayload(t *testing.T) {
	_, err := Decode(types.StoredEvent{EventType: types.EventTeamCreated, Payload: []byte(`{"name":`)})
	require.Error(t, err)
}

func TestMetadataCarriesTraceAndUser(t *testing.T) {
	userID := uuid.New()
	ctx := ctxutil.WithTraceData(context.Background(), &ctxutil.TraceData{TraceID: "t-1", RequestID: "r-1"})
	ctx = ctxutil.WithRequestData(ctx, &ctxutil.RequestData{UserID: userID})

	var md Metadata
	require.NoError(t, json.Unmarshal(metadataFor(ctx), &md))
	assert.Equal(t, "t-1", md.TraceID)
	assert.Equal(t, "r-1", md.RequestID)
	assert.Equal(t, userID.String(), md.UserID)
}

func TestDecodedStopsAtFirstError(t *testing.T) {
	_, good, err := encode(types.TeamCreated{TeamUUID: uuid.New(), Name: "A"})
	require.NoError(t, err)
	rows := func(yield func(types.StoredEvent, error) bool) {
		if !yield(types.StoredEvent{EventType: types.EventTeamCreated, Payload: good, Version: 1}, nil) {
			return
		}
		if !yield(types.StoredEvent{EventType: "bogus", Payload: good, Version: 2}, nil) {
			return
		}
		yield(types.StoredEvent{EventType: types.EventTeamCreated, Payload: good, Version: 3}, nil)
	}

	var seen int
	var gotErr error
	for _, err := range Decoded(rows) {
		if err != nil {
			gotErr = err
			continue
		}
		seen++
	}
	assert.Equal(t, 1, seen)
	assert.Error(t, gotErr)

	_, err = Collect(Decoded(rows))
	assert.Error(t, err)
}
