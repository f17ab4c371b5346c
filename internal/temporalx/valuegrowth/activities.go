package valuegrowth

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.temporal.io/sdk/temporal"

	domainagg "github.com/yungbote/transfermarket-backend/internal/domain/aggregates"
	"github.com/yungbote/transfermarket-backend/internal/observability"
	"github.com/yungbote/transfermarket-backend/internal/platform/logger"
	"github.com/yungbote/transfermarket-backend/internal/services"
)

const runnerName = "temporal"

type Activities struct {
	Log     *logger.Logger
	Growth  services.ValueGrowthService
	Metrics *observability.Metrics
}

func (a *Activities) Grow(ctx context.Context, in Input) (Result, error) {
	if a == nil || a.Growth == nil {
		return Result{}, fmt.Errorf("valuegrowth: activity not configured")
	}
	playerID, err := uuid.Parse(strings.TrimSpace(in.PlayerID))
	if err != nil || playerID == uuid.Nil {
		return Result{}, temporal.NewNonRetryableApplicationError("invalid player_id", "validation", err)
	}

	player, err := a.Growth.Grow(ctx, playerID)
	if err != nil {
		a.Metrics.IncValueGrowth(runnerName, "failed")
		if domainagg.IsDomainRejection(err) {
			return Result{}, temporal.NewNonRetryableApplicationError(err.Error(), string(domainagg.CodeOf(err)), err)
		}
		if a.Log != nil {
			a.Log.Warn("Player value growth attempt failed", "transfer_uuid", in.TransferUUID, "player_id", playerID, "error", err)
		}
		return Result{}, err
	}
	a.Metrics.IncValueGrowth(runnerName, "succeeded")
	return Result{PlayerID: player.ID.String(), Value: player.Value.StringFixed(2)}, nil
}
