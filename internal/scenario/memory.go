package scenario

import (
	"context"
	"fmt"
	"time"

	"github.com/pako-23/browserbench/internal/browser"
	"github.com/pako-23/browserbench/internal/harness"
	"github.com/pako-23/browserbench/internal/memory"
)

// MemoryCollector returns memory metrics of the running browser.
type MemoryCollector interface {
	CollectFor(ctx context.Context, attrs browser.Attributes) (map[string]float64, error)
}

// Memory opens every configured page in its own tab, lets the browser settle
// and records its memory metrics while all of them are loaded.
type Memory struct {
	OpenURLDelay time.Duration
	MeasureDelay time.Duration
	Collector    MemoryCollector
}

func NewMemory() *Memory {
	return &Memory{
		OpenURLDelay: 5 * time.Second,
		MeasureDelay: 60 * time.Second,
		Collector:    memory.NewCollector(),
	}
}

func (m *Memory) Name() string {
	return "memory"
}

func (m *Memory) Run(ctx context.Context, env *harness.Context, commands *harness.Commands) error {
	if len(env.URLs) == 0 {
		return ErrNoURLs
	}

	for _, page := range env.URLs {
		if err := commands.Tabs.Open(ctx, page); err != nil {
			return fmt.Errorf("failed to open %s: %w", page, err)
		}

		if err := commands.Wait.ByTime(ctx, m.OpenURLDelay); err != nil {
			return err
		}
	}

	if err := commands.Wait.ByTime(ctx, m.MeasureDelay); err != nil {
		return err
	}

	metrics, err := m.Collector.CollectFor(ctx, env.Attributes)
	if err != nil {
		return err
	}

	return commands.Measure.AddObject(ctx, metrics)
}
