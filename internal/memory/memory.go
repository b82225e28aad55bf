// Copyright 2024 The Browserbench Authors. All rights reserved.
// Use of this source code is governed by a GPL-style
// license that can be found in the LICENSE file.

// Collects memory metrics of the running browser through an external helper.

package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"github.com/pako-23/browserbench/internal/browser"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultInterpreter = "python3"
	DefaultScript      = "get_memory_metrics.py"

	userDataPrefix = "user-data"
)

// Shell runs a command line through the host shell and returns its
// standard output.
type Shell interface {
	Output(ctx context.Context, cmd string) ([]byte, error)
}

type hostShell struct{}

func (hostShell) Output(ctx context.Context, cmd string) ([]byte, error) {
	var stderr bytes.Buffer

	c := exec.CommandContext(ctx, "sh", "-c", cmd)
	c.Stderr = &stderr

	out, err := c.Output()
	if err != nil {
		return nil, fmt.Errorf("command %q failed: %w: %s", cmd, err, strings.TrimSpace(stderr.String()))
	}

	return out, nil
}

// Collector invokes the memory metrics helper for the configured browser.
type Collector struct {
	Interpreter string
	Script      string
	Shell       Shell
}

// NewCollector creates a collector running the default helper on the host
// shell.
func NewCollector() *Collector {
	return &Collector{
		Interpreter: DefaultInterpreter,
		Script:      DefaultScript,
		Shell:       hostShell{},
	}
}

// Command builds the helper command line for the given browser. The first
// launch argument is forwarded only if it points the browser to a user data
// directory.
func (c *Collector) Command(attrs browser.Attributes) string {
	cmd := fmt.Sprintf("%s %s %s", c.Interpreter, c.Script, attrs.Type)
	if len(attrs.Args) > 0 && strings.HasPrefix(attrs.Args[0], userDataPrefix) {
		cmd += ` "` + attrs.Args[0] + `"`
	}

	return cmd
}

// Collect resolves the configured browser, runs the helper and decodes the
// JSON object it prints. Failures are returned as they are.
func (c *Collector) Collect(ctx context.Context, opts *browser.Options) (map[string]float64, error) {
	attrs, err := browser.Resolve(opts)
	if err != nil {
		return nil, err
	}

	return c.CollectFor(ctx, attrs)
}

// CollectFor is like Collect for already resolved attributes.
func (c *Collector) CollectFor(ctx context.Context, attrs browser.Attributes) (map[string]float64, error) {
	cmd := c.Command(attrs)
	log.Infof("collecting memory metrics: %s", cmd)

	out, err := c.Shell.Output(ctx, cmd)
	if err != nil {
		return nil, err
	}
	log.Debugf("memory metrics helper output: %s", out)

	var metrics map[string]float64
	if err := json.Unmarshal(out, &metrics); err != nil {
		return nil, fmt.Errorf("failed to decode memory metrics: %w", err)
	}

	return metrics, nil
}
