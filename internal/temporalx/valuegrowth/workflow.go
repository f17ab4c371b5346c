package valuegrowth

import (
	"fmt"
	"strings"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

func Workflow(ctx workflow.Context, in Input) (Result, error) {
	if strings.TrimSpace(in.PlayerID) == "" {
		return Result{}, fmt.Errorf("valuegrowth: missing player_id")
	}

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2,
			MaximumInterval:    30 * time.Second,
			MaximumAttempts:    5,
		},
	})

	var out Result
	if err := workflow.ExecuteActivity(ctx, ActivityGrow, in).Get(ctx, &out); err != nil {
		return Result{}, err
	}
	return out, nil
}
