package poll_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pako-23/browserbench/internal/harness/fake"
	"github.com/pako-23/browserbench/internal/poll"
	"gotest.tools/v3/assert"
)

func TestNewDefaults(t *testing.T) {
	t.Parallel()

	p := poll.New()
	assert.Equal(t, p.Interval, time.Second)
	assert.Equal(t, p.Attempts, 900)
	assert.Check(t, !p.WaitFirst)
}

func TestUntilReturnsFirstValue(t *testing.T) {
	t.Parallel()

	h := fake.New()
	h.Values = []any{"", "", "", "", "done"}

	result, ok, err := poll.New().Until(context.Background(), h, h, "document.title")
	assert.NilError(t, err)
	assert.Check(t, ok)
	assert.Equal(t, result, "done")
	assert.Equal(t, len(h.Scripts), 5)
	assert.Equal(t, h.Scripts[0], "return (document.title)")
	assert.Equal(t, h.Elapsed(), 4*time.Second)
}

func TestUntilTimesOut(t *testing.T) {
	t.Parallel()

	h := fake.New()
	h.Values = []any{nil}

	p := &poll.Poller{Interval: time.Second, Attempts: 3}
	result, ok, err := p.Until(context.Background(), h, h, "null")
	assert.NilError(t, err)
	assert.Check(t, !ok)
	assert.Equal(t, result, "")
	assert.Equal(t, len(h.Scripts), 3)
}

func TestUntilNonStringValue(t *testing.T) {
	t.Parallel()

	var tests = []struct {
		value    any
		expected string
	}{
		{true, "true"},
		{float64(42), "42"},
		{map[string]any{}, "map[]"},
		{[]any{float64(0)}, "[0]"},
		{[]any{nil, nil}, "[<nil> <nil>]"},
	}

	for _, test := range tests {
		h := fake.New()
		h.Values = []any{test.value}

		result, ok, err := poll.New().Until(context.Background(), h, h, "x")
		assert.NilError(t, err)
		assert.Check(t, ok)
		assert.Equal(t, result, test.expected)
		assert.Equal(t, len(h.Waits), 0)
	}
}

func TestUntilFalsyValues(t *testing.T) {
	t.Parallel()

	h := fake.New()
	h.Values = []any{false, float64(0), "", nil, []any{}, []any{""}, []any{[]any{}}, "ok"}

	result, ok, err := poll.New().Until(context.Background(), h, h, "x")
	assert.NilError(t, err)
	assert.Check(t, ok)
	assert.Equal(t, result, "ok")
	assert.Equal(t, len(h.Scripts), 8)
}

func TestUntilScriptWaitFirst(t *testing.T) {
	t.Parallel()

	h := fake.New()
	h.Values = []any{nil, "ready"}

	p := &poll.Poller{Interval: 3 * time.Second, Attempts: 10, WaitFirst: true}
	result, ok, err := p.UntilScript(context.Background(), h, h, "return 1")
	assert.NilError(t, err)
	assert.Check(t, ok)
	assert.Equal(t, result, "ready")
	assert.DeepEqual(t, h.Scripts, []string{"return 1", "return 1"})
	assert.DeepEqual(t, h.Waits, []time.Duration{3 * time.Second, 3 * time.Second})
}

func TestUntilErrors(t *testing.T) {
	t.Parallel()

	var tests = []string{"Run", "ByTime"}

	for _, test := range tests {
		h := fake.New(test)
		h.Values = []any{""}

		_, ok, err := poll.New().Until(context.Background(), h, h, "x")
		assert.Check(t, !ok)
		assert.Check(t, errors.Is(err, fake.ErrInjectedFailure))
	}
}
