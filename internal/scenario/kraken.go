package scenario

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/pako-23/browserbench/internal/harness"
	"github.com/pako-23/browserbench/internal/poll"
	log "github.com/sirupsen/logrus"
)

const (
	KrakenURL = "https://mozilla.github.io/krakenbenchmark.mozilla.org/index.html"

	krakenConsoleScript = "return window.document.getElementById('console')?.textContent"
	krakenPollInterval  = 3000 * time.Millisecond
)

var (
	ErrParse         = errors.New("failed to parse benchmark result")
	ErrResultTimeout = errors.New("benchmark result did not appear")
)

// ParseError is returned when the console banner does not carry the total
// time of the run.
type ParseError struct {
	Text string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %q", ErrParse.Error(), e.Text)
}

func (e *ParseError) Unwrap() error {
	return ErrParse
}

// Example: "Total:   1499.9ms +/- 18.8%".
var krakenTotal = regexp.MustCompile(`Total:\s*([\d.]*)ms\s+\+/-\s*([\d.]*)%`)

// ParseKrakenTotal extracts the total time and its error from the Kraken
// console banner.
func ParseKrakenTotal(text string) (map[string]float64, error) {
	m := krakenTotal.FindStringSubmatch(text)
	if m == nil {
		return nil, &ParseError{Text: text}
	}

	total, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return nil, &ParseError{Text: text}
	}

	deviation, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return nil, &ParseError{Text: text}
	}

	return map[string]float64{
		"kraken_ms":     total,
		"kraken_error%": deviation,
	}, nil
}

// Kraken runs the Kraken JavaScript benchmark.
type Kraken struct {
	URL    string
	Poller *poll.Poller
}

// NewKraken waits for the result banner every three seconds for at most
// fifteen minutes.
func NewKraken() *Kraken {
	return &Kraken{
		URL: KrakenURL,
		Poller: &poll.Poller{
			Interval:  krakenPollInterval,
			Attempts:  int((poll.DefaultAttempts * poll.DefaultInterval) / krakenPollInterval),
			WaitFirst: true,
		},
	}
}

func (k *Kraken) Name() string {
	return "kraken"
}

func (k *Kraken) Run(ctx context.Context, _ *harness.Context, commands *harness.Commands) error {
	if err := commands.Measure.Start(ctx, k.URL); err != nil {
		return fmt.Errorf("failed to open kraken: %w", err)
	}

	if err := commands.Click.BySelectorAndWait(ctx, "a"); err != nil {
		return fmt.Errorf("failed to start kraken: %w", err)
	}

	raw, ok, err := k.Poller.UntilScript(ctx, commands.JS, commands.Wait, krakenConsoleScript)
	if err != nil {
		return fmt.Errorf("failed to read kraken console: %w", err)
	} else if !ok {
		return fmt.Errorf("%w after %d attempts", ErrResultTimeout, k.Poller.Attempts)
	}

	metrics, err := ParseKrakenTotal(raw)
	if err != nil {
		log.Errorf("unexpected kraken console: %s", raw)
		return err
	}
	log.Infof("got total %vms +/- %v%%", metrics["kraken_ms"], metrics["kraken_error%"])

	if err := commands.Measure.AddObject(ctx, metrics); err != nil {
		return err
	}

	return commands.Screenshot.Take(ctx, "result")
}
