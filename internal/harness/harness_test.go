package harness_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pako-23/browserbench/internal/harness"
	"gotest.tools/v3/assert"
)

func TestRecorderAddObject(t *testing.T) {
	t.Parallel()

	recorder := harness.NewRecorder()
	ctx := context.Background()

	assert.NilError(t, recorder.AddObject(ctx, map[string]float64{"a": 1, "b": 2}))
	assert.NilError(t, recorder.AddObject(ctx, map[string]float64{"b": 3}))
	assert.DeepEqual(t, recorder.Metrics(), map[string]float64{"a": 1, "b": 3})

	metrics := recorder.Metrics()
	metrics["a"] = 10
	assert.Equal(t, recorder.Metrics()["a"], 1.0)

	recorder.Reset()
	assert.Equal(t, len(recorder.Metrics()), 0)
}

func TestRecorderEmptyName(t *testing.T) {
	t.Parallel()

	recorder := harness.NewRecorder()
	err := recorder.AddObject(context.Background(), map[string]float64{"": 1, "a": 2})
	assert.Check(t, errors.Is(err, harness.ErrEmptyMetricName))
	assert.Equal(t, len(recorder.Metrics()), 0)
}

func TestSleepWaiter(t *testing.T) {
	t.Parallel()

	start := time.Now()
	assert.NilError(t, harness.SleepWaiter{}.ByTime(context.Background(), 10*time.Millisecond))
	assert.Check(t, time.Since(start) >= 10*time.Millisecond)
}

func TestSleepWaiterCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := harness.SleepWaiter{}.ByTime(ctx, time.Hour)
	assert.Check(t, errors.Is(err, context.Canceled))
}
