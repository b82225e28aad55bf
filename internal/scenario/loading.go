package scenario

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/pako-23/browserbench/internal/harness"
	"github.com/pako-23/browserbench/internal/results"
	log "github.com/sirupsen/logrus"
)

const loadEventScript = "return performance.getEntriesByType('navigation')[0]?.loadEventEnd"

var ErrNoURLs = errors.New("no urls to open")

// Loading measures the time to the load event of every configured page.
type Loading struct {
	// PreURLDelay is the pause before each navigation.
	PreURLDelay time.Duration
}

func NewLoading() *Loading {
	return &Loading{PreURLDelay: 10 * time.Second}
}

func (l *Loading) Name() string {
	return "loading"
}

func (l *Loading) Run(ctx context.Context, env *harness.Context, commands *harness.Commands) error {
	if len(env.URLs) == 0 {
		return ErrNoURLs
	}

	for _, page := range env.URLs {
		if err := commands.Wait.ByTime(ctx, l.PreURLDelay); err != nil {
			return err
		}

		if err := commands.Measure.Start(ctx, page); err != nil {
			return fmt.Errorf("failed to open %s: %w", page, err)
		}

		value, err := commands.JS.Run(ctx, loadEventScript)
		if err != nil {
			return fmt.Errorf("failed to read navigation timing of %s: %w", page, err)
		}

		loadTime, ok := value.(float64)
		if !ok {
			log.Warnf("no navigation timing for %s", page)
			continue
		}

		metric := results.JoinMetric("load_ms", host(page))
		if err := commands.Measure.AddObject(ctx, map[string]float64{metric: loadTime}); err != nil {
			return err
		}
	}

	return nil
}

func host(page string) string {
	u, err := url.Parse(page)
	if err != nil || u.Host == "" {
		return page
	}

	return u.Host
}
