package valuegrowth

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	temporalsdkclient "go.temporal.io/sdk/client"

	"github.com/yungbote/transfermarket-backend/internal/observability"
	"github.com/yungbote/transfermarket-backend/internal/platform/logger"
	"github.com/yungbote/transfermarket-backend/internal/services"
)

type scheduler struct {
	log       *logger.Logger
	tc        temporalsdkclient.Client
	taskQueue string
	metrics   *observability.Metrics
}

// NewScheduler starts one growth workflow per completed transfer.
func NewScheduler(log *logger.Logger, tc temporalsdkclient.Client, taskQueue string, metrics *observability.Metrics) services.ValueGrowthScheduler {
	return &scheduler{
		log:       log.With("service", "TemporalGrowthScheduler"),
		tc:        tc,
		taskQueue: taskQueue,
		metrics:   metrics,
	}
}

func (s *scheduler) Name() string { return runnerName }

func (s *scheduler) Schedule(ctx context.Context, transferUUID, playerID uuid.UUID) error {
	if s == nil || s.tc == nil {
		return fmt.Errorf("temporal client is not configured")
	}
	opts := temporalsdkclient.StartWorkflowOptions{
		ID:        WorkflowID(transferUUID.String()),
		TaskQueue: s.taskQueue,
	}
	run, err := s.tc.ExecuteWorkflow(context.WithoutCancel(ctx), opts, WorkflowName, Input{
		TransferUUID: transferUUID.String(),
		PlayerID:     playerID.String(),
	})
	if err != nil {
		return fmt.Errorf("start value growth workflow: %w", err)
	}
	s.metrics.IncValueGrowth(runnerName, "scheduled")
	s.log.Debug("Value growth workflow started", "workflow_id", run.GetID(), "run_id", run.GetRunID(), "player_id", playerID)
	return nil
}
