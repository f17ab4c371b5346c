package app

import (
	"fmt"

	temporalsdkclient "go.temporal.io/sdk/client"

	"github.com/yungbote/transfermarket-backend/internal/clients/redis"
	"github.com/yungbote/transfermarket-backend/internal/platform/logger"
	"github.com/yungbote/transfermarket-backend/internal/temporalx"
)

// Clients are the optional external services. Each is nil when its address
// is not configured.
type Clients struct {
	TransferBus redis.TransferBus
	Temporal    temporalsdkclient.Client
}

func wireClients(log *logger.Logger) (Clients, error) {
	log.Info("Wiring clients...")

	// Redis
	bus, err := redis.NewTransferBus(log)
	if err != nil {
		return Clients{}, fmt.Errorf("init redis transfer bus: %w", err)
	}

	// Temporal
	tc, err := temporalx.NewClient(log)
	if err != nil {
		if bus != nil {
			_ = bus.Close()
		}
		return Clients{}, fmt.Errorf("init temporal client: %w", err)
	}

	return Clients{TransferBus: bus, Temporal: tc}, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.TransferBus != nil {
		_ = c.TransferBus.Close()
	}
	if c.Temporal != nil {
		c.Temporal.Close()
	}
}
