package temporalx

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestClampBackoff(t *testing.T) {
	base := 100 * time.Millisecond
	max := time.Second
	assert.Equal(t, 100*time.Millisecond, clampBackoff(base, max, 1))
	assert.Equal(t, 200*time.Millisecond, clampBackoff(base, max, 2))
	assert.Equal(t, 800*time.Millisecond, clampBackoff(base, max, 4))
	assert.Equal(t, time.Second, clampBackoff(base, max, 5))
	assert.Equal(t, time.Second, clampBackoff(base, max, 50))
	assert.Equal(t, 250*time.Millisecond, clampBackoff(0, 0, 1))
}

func TestIsRetryableRPC(t *testing.T) {
	assert.False(t, isRetryableRPC(nil))
	assert.True(t, isRetryableRPC(status.Error(codes.Unavailable, "down")))
	assert.True(t, isRetryableRPC(status.Error(codes.ResourceExhausted, "busy")))
	assert.False(t, isRetryableRPC(status.Error(codes.PermissionDenied, "no")))
	assert.True(t, isRetryableRPC(fmt.Errorf("dial: %w", context.DeadlineExceeded)))
	assert.False(t, isRetryableRPC(errors.New("boom")))
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("TEMPORAL_ADDRESS", "")
	t.Setenv("TEMPORAL_NAMESPACE", "")
	t.Setenv("TEMPORAL_TASK_QUEUE", " market-q ")

	cfg := LoadConfig()
	assert.False(t, cfg.Enabled())
	assert.Equal(t, "transfermarket", cfg.Namespace)
	assert.Equal(t, "market-q", cfg.TaskQueue)
	assert.False(t, cfg.UsesTLS())
}
