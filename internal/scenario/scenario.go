// Copyright 2024 The Browserbench Authors. All rights reserved.
// Use of this source code is governed by a GPL-style
// license that can be found in the LICENSE file.

// Benchmark scenarios driven through the harness commands.

package scenario

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/pako-23/browserbench/internal/harness"
)

var ErrUnknownScenario = errors.New("unknown scenario")

// Scenario is a single benchmark run inside a browser session.
type Scenario interface {
	Name() string
	Run(ctx context.Context, env *harness.Context, commands *harness.Commands) error
}

// Registry maps scenario names to scenarios.
type Registry map[string]Scenario

// NewRegistry returns a registry holding all the built-in scenarios.
func NewRegistry() Registry {
	registry := Registry{}
	for _, s := range []Scenario{NewKraken(), NewLoading(), NewMemory()} {
		registry[s.Name()] = s
	}

	return registry
}

// Get returns the scenario with the given name.
func (r Registry) Get(name string) (Scenario, error) {
	s, ok := r[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownScenario, name)
	}

	return s, nil
}

// Names returns the sorted names of the registered scenarios.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}
