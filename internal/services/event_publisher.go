package services

import (
	"context"

	types "github.com/yungbote/transfermarket-backend/internal/domain/market"
	"github.com/yungbote/transfermarket-backend/internal/observability"
	"github.com/yungbote/transfermarket-backend/internal/platform/logger"
	"github.com/yungbote/transfermarket-backend/internal/realtime"
)

// EventPublisher announces committed events to feed subscribers.
// Publish is only called after the owning transaction committed.
type EventPublisher interface {
	Publish(ctx context.Context, events []types.RecordedEvent) error
}

// FeedSink is satisfied by the redis transfer bus and by realtime.Hub.
type FeedSink interface {
	Publish(ctx context.Context, msg realtime.FeedMessage) error
}

type feedPublisher struct {
	log     *logger.Logger
	sink    FeedSink
	metrics *observability.Metrics
}

func NewEventPublisher(log *logger.Logger, sink FeedSink, metrics *observability.Metrics) EventPublisher {
	if log == nil {
		log = logger.Nop()
	}
	return &feedPublisher{
		log:     log.With("service", "EventPublisher"),
		sink:    sink,
		metrics: metrics,
	}
}

// Publish forwards transfer-stream events in order. Team-stream copies of
// FundsTransferred are skipped so every transfer step appears once.
func (p *feedPublisher) Publish(ctx context.Context, events []types.RecordedEvent) error {
	if p == nil || p.sink == nil {
		return nil
	}
	sent := 0
	for _, rec := range events {
		if rec.StreamType != types.StreamTransfer {
			continue
		}
		msg, err := realtime.FromRecorded(rec)
		if err != nil {
			p.metrics.IncEventsPublished("failed", 1)
			return err
		}
		if err := p.sink.Publish(ctx, msg); err != nil {
			p.metrics.IncEventsPublished("failed", 1)
			p.metrics.IncEventsPublished("sent", sent)
			return err
		}
		sent++
	}
	p.metrics.IncEventsPublished("sent", sent)
	return nil
}

type noopPublisher struct{}

func NewNoopEventPublisher() EventPublisher { return noopPublisher{} }

func (noopPublisher) Publish(context.Context, []types.RecordedEvent) error { return nil }
