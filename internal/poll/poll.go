// Copyright 2024 The Browserbench Authors. All rights reserved.
// Use of this source code is governed by a GPL-style
// license that can be found in the LICENSE file.

// Polls a page until a condition produces a value.

package poll

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pako-23/browserbench/internal/harness"
	log "github.com/sirupsen/logrus"
)

const (
	// DefaultInterval is the pause between two evaluations.
	DefaultInterval = 1000 * time.Millisecond
	// DefaultAttempts allows 15 minutes worth of one second ticks.
	DefaultAttempts = 15 * 60
)

// Poller evaluates a condition at a fixed interval until it yields a value.
// The budget is a number of evaluations: the time spent evaluating is not
// counted against it.
type Poller struct {
	Interval time.Duration
	Attempts int
	// WaitFirst makes the poller wait before every evaluation instead of
	// after every unsuccessful one.
	WaitFirst bool
}

// New returns a poller with the default interval and budget.
func New() *Poller {
	return &Poller{Interval: DefaultInterval, Attempts: DefaultAttempts}
}

// Until evaluates the condition expression inside the page. It returns the
// first value that is neither null nor the empty string. When the budget is
// exhausted, it returns false with no error. Evaluation and wait errors are
// returned unchanged.
func (p *Poller) Until(ctx context.Context, js harness.Evaluator, wait harness.Waiter, condition string) (string, bool, error) {
	return p.UntilScript(ctx, js, wait, fmt.Sprintf("return (%s)", condition))
}

// UntilScript is like Until, but evaluates a complete script body.
func (p *Poller) UntilScript(ctx context.Context, js harness.Evaluator, wait harness.Waiter, script string) (string, bool, error) {
	for attempt := 0; attempt < p.Attempts; attempt++ {
		if p.WaitFirst {
			if err := wait.ByTime(ctx, p.Interval); err != nil {
				return "", false, err
			}
		}

		value, err := js.Run(ctx, script)
		if err != nil {
			return "", false, err
		}

		if result, ok := ready(value); ok {
			log.Debugf("condition satisfied after %d attempts", attempt+1)
			return result, true, nil
		}

		if !p.WaitFirst {
			if err := wait.ByTime(ctx, p.Interval); err != nil {
				return "", false, err
			}
		}
	}
	log.Debugf("condition not satisfied after %d attempts", p.Attempts)

	return "", false, nil
}

// ready reports whether an evaluation result counts as a value. False, zero
// and arrays that join to nothing are loosely equal to the empty string in
// the page, so they do not.
func ready(value any) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", false
	case string:
		return v, v != ""
	case bool:
		return "true", v
	case float64:
		return fmt.Sprint(v), v != 0
	case []any:
		return fmt.Sprint(v), joinArray(v) != ""
	default:
		return fmt.Sprint(v), true
	}
}

// joinArray converts an array to a string the way the page does: elements
// are joined with commas and null elements become empty.
func joinArray(values []any) string {
	parts := make([]string, len(values))

	for i, value := range values {
		switch v := value.(type) {
		case nil:
		case string:
			parts[i] = v
		case []any:
			parts[i] = joinArray(v)
		case map[string]any:
			parts[i] = "[object Object]"
		default:
			parts[i] = fmt.Sprint(v)
		}
	}

	return strings.Join(parts, ",")
}
