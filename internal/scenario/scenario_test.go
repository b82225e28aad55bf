package scenario_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pako-23/browserbench/internal/browser"
	"github.com/pako-23/browserbench/internal/harness"
	"github.com/pako-23/browserbench/internal/harness/fake"
	"github.com/pako-23/browserbench/internal/poll"
	"github.com/pako-23/browserbench/internal/scenario"
	"gotest.tools/v3/assert"
)

func TestRegistry(t *testing.T) {
	t.Parallel()

	registry := scenario.NewRegistry()
	assert.DeepEqual(t, registry.Names(), []string{"kraken", "loading", "memory"})

	s, err := registry.Get("kraken")
	assert.NilError(t, err)
	assert.Equal(t, s.Name(), "kraken")

	_, err = registry.Get("octane")
	assert.Check(t, errors.Is(err, scenario.ErrUnknownScenario))
}

func TestParseKrakenTotal(t *testing.T) {
	t.Parallel()

	metrics, err := scenario.ParseKrakenTotal("Total:   1499.9ms +/- 18.8%")
	assert.NilError(t, err)
	assert.DeepEqual(t, metrics, map[string]float64{"kraken_ms": 1499.9, "kraken_error%": 18.8})

	metrics, err = scenario.ParseKrakenTotal("RESULTS (means and 95% confidence intervals)\n" +
		"-----------------------------------------------\n" +
		"Total:                 812.3ms +/- 2.1%\n" +
		"-----------------------------------------------\n")
	assert.NilError(t, err)
	assert.DeepEqual(t, metrics, map[string]float64{"kraken_ms": 812.3, "kraken_error%": 2.1})
}

func TestParseKrakenTotalErr(t *testing.T) {
	t.Parallel()

	var tests = []string{
		"ai-astar: 123.4ms +/- 1.0%",
		"Total: ms +/- %",
		"Total: 1.2.3ms +/- 1%",
		"",
	}

	for _, test := range tests {
		metrics, err := scenario.ParseKrakenTotal(test)
		assert.Check(t, metrics == nil)

		var parseErr *scenario.ParseError
		assert.Check(t, errors.As(err, &parseErr))
		assert.Equal(t, parseErr.Text, test)
		assert.Check(t, errors.Is(err, scenario.ErrParse))
	}
}

func TestKrakenRun(t *testing.T) {
	t.Parallel()

	h := fake.New()
	h.Values = []any{nil, "", "Total:   1499.9ms +/- 18.8%"}

	err := scenario.NewKraken().Run(context.Background(), &harness.Context{}, h.Commands())
	assert.NilError(t, err)
	assert.DeepEqual(t, h.Visited, []string{scenario.KrakenURL})
	assert.DeepEqual(t, h.Clicked, []string{"a"})
	assert.Equal(t, len(h.Scripts), 3)
	assert.Equal(t, h.Scripts[0], "return window.document.getElementById('console')?.textContent")
	assert.DeepEqual(t, h.Waits, []time.Duration{3 * time.Second, 3 * time.Second, 3 * time.Second})
	assert.DeepEqual(t, h.Recorder.Metrics(), map[string]float64{"kraken_ms": 1499.9, "kraken_error%": 18.8})
	assert.DeepEqual(t, h.Screenshots, []string{"result"})
}

func TestKrakenDefaultBudget(t *testing.T) {
	t.Parallel()

	kraken := scenario.NewKraken()
	assert.Equal(t, kraken.Poller.Attempts, 300)
	assert.Equal(t, kraken.Poller.Interval, 3*time.Second)
	assert.Check(t, kraken.Poller.WaitFirst)
}

func TestKrakenParseError(t *testing.T) {
	t.Parallel()

	h := fake.New()
	h.Values = []any{"Error: benchmark crashed"}

	err := scenario.NewKraken().Run(context.Background(), &harness.Context{}, h.Commands())
	assert.Check(t, errors.Is(err, scenario.ErrParse))
	assert.Equal(t, len(h.Recorder.Metrics()), 0)
	assert.Equal(t, len(h.Screenshots), 0)
}

func TestKrakenTimeout(t *testing.T) {
	t.Parallel()

	h := fake.New()

	kraken := scenario.NewKraken()
	kraken.Poller = &poll.Poller{Interval: time.Second, Attempts: 3, WaitFirst: true}

	err := kraken.Run(context.Background(), &harness.Context{}, h.Commands())
	assert.Check(t, errors.Is(err, scenario.ErrResultTimeout))
	assert.Equal(t, len(h.Scripts), 3)
}

func TestKrakenCommandErrors(t *testing.T) {
	t.Parallel()

	var tests = []string{"Start", "BySelectorAndWait", "ByTime", "Run", "AddObject", "Take"}

	for _, test := range tests {
		h := fake.New(test)
		h.Values = []any{"Total: 1ms +/- 1%"}

		err := scenario.NewKraken().Run(context.Background(), &harness.Context{}, h.Commands())
		assert.Check(t, errors.Is(err, fake.ErrInjectedFailure), test)
	}
}

func TestLoadingRun(t *testing.T) {
	t.Parallel()

	h := fake.New()
	h.Values = []any{float64(120), nil}

	loading := &scenario.Loading{PreURLDelay: time.Second}
	env := &harness.Context{URLs: []string{"https://a.com/index.html", "https://b.com"}}

	assert.NilError(t, loading.Run(context.Background(), env, h.Commands()))
	assert.DeepEqual(t, h.Visited, env.URLs)
	assert.DeepEqual(t, h.Recorder.Metrics(), map[string]float64{"load_ms@a.com": 120})
	assert.Equal(t, h.Elapsed(), 2*time.Second)
}

func TestNoURLs(t *testing.T) {
	t.Parallel()

	for _, s := range []scenario.Scenario{scenario.NewLoading(), scenario.NewMemory()} {
		err := s.Run(context.Background(), &harness.Context{}, fake.New().Commands())
		assert.Check(t, errors.Is(err, scenario.ErrNoURLs))
	}
}

type mockCollector struct {
	attrs   browser.Attributes
	metrics map[string]float64
	err     error
}

func (m *mockCollector) CollectFor(_ context.Context, attrs browser.Attributes) (map[string]float64, error) {
	m.attrs = attrs
	return m.metrics, m.err
}

func TestMemoryRun(t *testing.T) {
	t.Parallel()

	h := fake.New()
	collector := &mockCollector{metrics: map[string]float64{"private_bytes": 2048}}
	mem := &scenario.Memory{OpenURLDelay: time.Second, MeasureDelay: 10 * time.Second, Collector: collector}
	env := &harness.Context{
		URLs:       []string{"https://a.com", "https://b.com"},
		Attributes: browser.Attributes{Type: browser.Chrome, BinaryPath: "/chrome"},
	}

	assert.NilError(t, mem.Run(context.Background(), env, h.Commands()))
	assert.DeepEqual(t, h.Opened, env.URLs)
	assert.Equal(t, len(h.Visited), 0)
	assert.Equal(t, h.Elapsed(), 12*time.Second)
	assert.Equal(t, collector.attrs.BinaryPath, "/chrome")
	assert.DeepEqual(t, h.Recorder.Metrics(), map[string]float64{"private_bytes": 2048})
}

func TestMemoryOpenError(t *testing.T) {
	t.Parallel()

	h := fake.New("Open")
	collector := &mockCollector{metrics: map[string]float64{"private_bytes": 2048}}
	mem := &scenario.Memory{Collector: collector}

	err := mem.Run(context.Background(), &harness.Context{URLs: []string{"https://a.com"}}, h.Commands())
	assert.Check(t, errors.Is(err, fake.ErrInjectedFailure))
	assert.Equal(t, len(h.Recorder.Metrics()), 0)
}

func TestMemoryCollectorError(t *testing.T) {
	t.Parallel()

	h := fake.New()
	collector := &mockCollector{err: fake.ErrInjectedFailure}
	mem := &scenario.Memory{Collector: collector}

	err := mem.Run(context.Background(), &harness.Context{URLs: []string{"https://a.com"}}, h.Commands())
	assert.Check(t, errors.Is(err, fake.ErrInjectedFailure))
	assert.Equal(t, len(h.Recorder.Metrics()), 0)
}
