package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"

	types "github.com/yungbote/transfermarket-backend/internal/domain/market"
	"github.com/yungbote/transfermarket-backend/internal/platform/logger"
)

func mustTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	t.Cleanup(log.Sync)
	return log
}

func recvMessage(t *testing.T, ch <-chan FeedMessage, timeout time.Duration) FeedMessage {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for feed message")
	}
	return FeedMessage{}
}

func TestHubOrderingAndReconnect(t *testing.T) {
	hub := NewHub(mustTestLogger(t), nil)

	clientA := hub.NewClient()
	first := FeedMessage{Event: types.EventTransferInitiated, Position: 1}
	second := FeedMessage{Event: types.EventTransferCompleted, Position: 2}
	hub.Broadcast(first)
	hub.Broadcast(second)

	if got := recvMessage(t, clientA.Outbound, time.Second); got.Event != types.EventTransferInitiated {
		t.Fatalf("first event: want=%s got=%s", types.EventTransferInitiated, got.Event)
	}
	if got := recvMessage(t, clientA.Outbound, time.Second); got.Event != types.EventTransferCompleted {
		t.Fatalf("second event: want=%s got=%s", types.EventTransferCompleted, got.Event)
	}

	hub.CloseClient(clientA)
	hub.CloseClient(clientA)
	if _, ok := <-clientA.Outbound; ok {
		t.Fatalf("clientA outbound should be closed after disconnect")
	}
	if hub.ClientCount() != 0 {
		t.Fatalf("client count: want=0 got=%d", hub.ClientCount())
	}

	clientB := hub.NewClient()
	if err := hub.Publish(context.Background(), FeedMessage{Event: types.EventFundsTransferred, Position: 3}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if got := recvMessage(t, clientB.Outbound, time.Second); got.Position != 3 {
		t.Fatalf("reconnect position: want=3 got=%d", got.Position)
	}
}

func TestHubDropsWhenBufferFull(t *testing.T) {
	hub := NewHub(mustTestLogger(t), nil)
	c := hub.NewClient()
	for i := 0; i < sendBufferSize+5; i++ {
		hub.Broadcast(FeedMessage{Position: int64(i)})
	}
	if len(c.Outbound) != sendBufferSize {
		t.Fatalf("buffered: want=%d got=%d", sendBufferSize, len(c.Outbound))
	}
}

func TestHubPublishCanceledContext(t *testing.T) {
	hub := NewHub(mustTestLogger(t), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := hub.Publish(ctx, FeedMessage{}); err == nil {
		t.Fatalf("Publish: expected error on canceled context")
	}
}

func TestHubServeWSDeliversJSON(t *testing.T) {
	hub := NewHub(mustTestLogger(t), nil)
	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("client never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	transferID := uuid.New()
	msg, err := FromRecorded(types.RecordedEvent{
		Position:   7,
		StreamID:   transferID,
		StreamType: types.StreamTransfer,
		Version:    3,
		Type:       types.EventTransferCompleted,
		Event:      types.TransferCompleted{TransferUUID: transferID, PlayerID: uuid.New()},
	})
	if err != nil {
		t.Fatalf("FromRecorded: %v", err)
	}
	hub.Broadcast(msg)

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	var got FeedMessage
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Event != types.EventTransferCompleted || got.StreamID != transferID || got.Position != 7 {
		t.Fatalf("unexpected message: %+v", got)
	}
	var payload types.TransferCompleted
	if err := json.Unmarshal(got.Data, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.TransferUUID != transferID {
		t.Fatalf("payload transfer: want=%s got=%s", transferID, payload.TransferUUID)
	}
}

func TestFromRecordedEncodesPayload(t *testing.T) {
	id := uuid.New()
	msg, err := FromRecorded(types.RecordedEvent{
		Type:  types.EventFundsTransferred,
		Event: types.FundsTransferred{TransferUUID: id, Amount: decimal.RequireFromString("500.00")},
	})
	if err != nil {
		t.Fatalf("FromRecorded: %v", err)
	}
	var payload types.FundsTransferred
	if err := json.Unmarshal(msg.Data, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if !payload.Amount.Equal(decimal.RequireFromString("500")) {
		t.Fatalf("amount: want=500 got=%s", payload.Amount)
	}
}
