// Package fake provides an in-memory implementation of the harness commands
// for tests. Failures can be injected per method name.
package fake

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/pako-23/browserbench/internal/harness"
)

var ErrInjectedFailure = errors.New("test injected failure")

// Harness records every command it receives. JS evaluations return the
// entries of Values in order; once exhausted the last entry is repeated.
type Harness struct {
	mu       sync.Mutex
	failures map[string]struct{}

	Values      []any
	Scripts     []string
	Waits       []time.Duration
	Visited     []string
	Clicked     []string
	Screenshots []string
	Opened      []string
	Recorder    *harness.Recorder
}

// New creates a fake harness failing on the given method names.
func New(failures ...string) *Harness {
	h := &Harness{
		failures: make(map[string]struct{}, len(failures)),
		Recorder: harness.NewRecorder(),
	}

	for _, failure := range failures {
		h.failures[failure] = struct{}{}
	}

	return h
}

// Commands exposes the fake as harness commands.
func (h *Harness) Commands() *harness.Commands {
	return &harness.Commands{
		Measure:    h,
		Click:      h,
		Wait:       h,
		JS:         h,
		Screenshot: h,
		Tabs:       h,
	}
}

func (h *Harness) fails(method string) bool {
	_, ok := h.failures[method]
	return ok
}

func (h *Harness) Start(_ context.Context, url string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.fails("Start") {
		return ErrInjectedFailure
	}
	h.Visited = append(h.Visited, url)

	return nil
}

func (h *Harness) AddObject(ctx context.Context, metrics map[string]float64) error {
	if h.fails("AddObject") {
		return ErrInjectedFailure
	}

	return h.Recorder.AddObject(ctx, metrics)
}

func (h *Harness) BySelectorAndWait(_ context.Context, selector string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.fails("BySelectorAndWait") {
		return ErrInjectedFailure
	}
	h.Clicked = append(h.Clicked, selector)

	return nil
}

func (h *Harness) ByTime(_ context.Context, d time.Duration) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.fails("ByTime") {
		return ErrInjectedFailure
	}
	h.Waits = append(h.Waits, d)

	return nil
}

func (h *Harness) Run(_ context.Context, script string) (any, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.fails("Run") {
		return nil, ErrInjectedFailure
	}

	call := len(h.Scripts)
	h.Scripts = append(h.Scripts, script)

	if len(h.Values) == 0 {
		return nil, nil
	}

	return h.Values[min(call, len(h.Values)-1)], nil
}

func (h *Harness) Take(_ context.Context, name string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.fails("Take") {
		return ErrInjectedFailure
	}
	h.Screenshots = append(h.Screenshots, name)

	return nil
}

func (h *Harness) Open(_ context.Context, url string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.fails("Open") {
		return ErrInjectedFailure
	}
	h.Opened = append(h.Opened, url)

	return nil
}

// Elapsed is the total time the scenario asked to wait.
func (h *Harness) Elapsed() time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()

	var total time.Duration
	for _, d := range h.Waits {
		total += d
	}

	return total
}
