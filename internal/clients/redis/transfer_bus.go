package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/transfermarket-backend/internal/platform/envutil"
	"github.com/yungbote/transfermarket-backend/internal/platform/logger"
	"github.com/yungbote/transfermarket-backend/internal/realtime"
)

// TransferBus carries committed transfer events between API processes.
type TransferBus interface {
	Publish(ctx context.Context, msg realtime.FeedMessage) error
	StartForwarder(ctx context.Context, onMsg func(m realtime.FeedMessage)) error
	Client() *goredis.Client
	Close() error
}

type transferBus struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
}

// NewTransferBus connects to REDIS_ADDR. It returns (nil, nil) when redis is
// not configured so callers can fall back to in-process delivery.
func NewTransferBus(log *logger.Logger) (TransferBus, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(envutil.String("REDIS_ADDR", ""))
	if addr == "" {
		return nil, nil
	}
	ch := strings.TrimSpace(envutil.String("REDIS_TRANSFER_CHANNEL", "transfers"))
	if ch == "" {
		ch = "transfers"
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    envutil.String("REDIS_PASSWORD", ""),
		DB:          envutil.Int("REDIS_DB", 0),
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return newTransferBus(log, rdb, ch), nil
}

func newTransferBus(log *logger.Logger, rdb *goredis.Client, channel string) *transferBus {
	return &transferBus{
		log:     log.With("service", "RedisTransferBus"),
		rdb:     rdb,
		channel: channel,
	}
}

func (b *transferBus) Client() *goredis.Client {
	if b == nil {
		return nil
	}
	return b.rdb
}

func (b *transferBus) Publish(ctx context.Context, msg realtime.FeedMessage) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("redis transfer bus not initialized")
	}
	raw, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, b.channel, raw).Err()
}

func (b *transferBus) StartForwarder(ctx context.Context, onMsg func(m realtime.FeedMessage)) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("redis transfer bus not initialized")
	}
	if onMsg == nil {
		return fmt.Errorf("onMsg callback required")
	}

	sub := b.rdb.Subscribe(ctx, b.channel)

	// ensures subscription actually started
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close()
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					_ = sub.Close()
					return
				}
				var msg realtime.FeedMessage
				if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
					b.log.Warn("bad redis transfer payload", "error", err)
					continue
				}
				onMsg(msg)
			}
		}
	}()

	return nil
}

func (b *transferBus) Close() error {
	if b == nil || b.rdb == nil {
		return nil
	}
	return b.rdb.Close()
}
