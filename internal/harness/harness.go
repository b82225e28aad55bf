// Copyright 2024 The Browserbench Authors. All rights reserved.
// Use of this source code is governed by a GPL-style
// license that can be found in the LICENSE file.

// The command surface through which benchmark scenarios drive a browser.

package harness

import (
	"context"
	"time"

	"github.com/pako-23/browserbench/internal/browser"
)

// Measurer starts timed navigations and records metrics for the current
// iteration.
type Measurer interface {
	Start(ctx context.Context, url string) error
	AddObject(ctx context.Context, metrics map[string]float64) error
}

// Clicker clicks on page elements.
type Clicker interface {
	// BySelectorAndWait clicks the first element matching the CSS selector
	// and waits for the resulting page transition.
	BySelectorAndWait(ctx context.Context, selector string) error
}

// Waiter pauses the scenario.
type Waiter interface {
	ByTime(ctx context.Context, d time.Duration) error
}

// Evaluator runs script bodies inside the current page. A body is a
// function body, so it produces a value only through a return statement.
// Run returns nil when the script returns null or undefined.
type Evaluator interface {
	Run(ctx context.Context, script string) (any, error)
}

// Tabber opens pages next to the current one. Opened tabs stay loaded until
// the browser is closed.
type Tabber interface {
	Open(ctx context.Context, url string) error
}

// Screenshotter captures the current page.
type Screenshotter interface {
	Take(ctx context.Context, name string) error
}

// Commands groups the capabilities a scenario can use.
type Commands struct {
	Measure    Measurer
	Click      Clicker
	Wait       Waiter
	JS         Evaluator
	Screenshot Screenshotter
	Tabs       Tabber
}

// Context carries the configuration of the run a scenario belongs to.
type Context struct {
	Options    *browser.Options
	Attributes browser.Attributes
	// URLs is the list of pages for scenarios that do not have a fixed
	// target.
	URLs []string
	// ResultDir is where artifacts such as screenshots are written.
	ResultDir string
}

// SleepWaiter waits on the wall clock. It returns early with the context
// error if the context is done.
type SleepWaiter struct{}

func (SleepWaiter) ByTime(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
