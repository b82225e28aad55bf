// Copyright 2024 The Browserbench Authors. All rights reserved.
// Use of this source code is governed by a GPL-style
// license that can be found in the LICENSE file.

// Resolves which browser a benchmark run is configured for.

package browser

import (
	"encoding/json"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"
)

// Kind identifies one of the browsers the harness knows how to drive.
type Kind int

const (
	Safari Kind = iota
	Firefox
	Edge
	Chrome
)

// priority is the order in which configured browsers are considered.
var priority = []Kind{Safari, Firefox, Edge, Chrome}

var kindNames = map[Kind]string{
	Safari:  "safari",
	Firefox: "firefox",
	Edge:    "edge",
	Chrome:  "chrome",
}

var ErrUnsupportedBrowser = errors.New("browser is not supported")

// ConfigurationError is returned when no browser in the configuration
// carries a binary path.
type ConfigurationError struct {
	Browser string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s %s", ErrUnsupportedBrowser.Error(), e.Browser)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrUnsupportedBrowser
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}

	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind translates a browser name to the corresponding Kind.
func ParseKind(name string) (Kind, error) {
	for kind, kindName := range kindNames {
		if kindName == name {
			return kind, nil
		}
	}

	return 0, &ConfigurationError{Browser: name}
}

// Settings is the per browser section of the configuration.
type Settings struct {
	BinaryPath string   `mapstructure:"binaryPath" json:"binaryPath,omitempty"`
	Args       []string `mapstructure:"args" json:"args,omitempty"`
}

// Options is the browser part of the harness configuration. Every section
// is optional.
type Options struct {
	Browser string    `mapstructure:"browser" json:"browser,omitempty"`
	Safari  *Settings `mapstructure:"safari" json:"safari,omitempty"`
	Firefox *Settings `mapstructure:"firefox" json:"firefox,omitempty"`
	Edge    *Settings `mapstructure:"edge" json:"edge,omitempty"`
	Chrome  *Settings `mapstructure:"chrome" json:"chrome,omitempty"`
}

// Settings returns the section of the given browser, nil if absent.
func (o *Options) Settings(kind Kind) *Settings {
	switch kind {
	case Safari:
		return o.Safari
	case Firefox:
		return o.Firefox
	case Edge:
		return o.Edge
	case Chrome:
		return o.Chrome
	default:
		return nil
	}
}

// Configured returns the kinds that carry a binary path, in priority order.
func (o *Options) Configured() []Kind {
	kinds := []Kind{}

	for _, kind := range priority {
		if s := o.Settings(kind); s != nil && s.BinaryPath != "" {
			kinds = append(kinds, kind)
		}
	}

	return kinds
}

// Attributes describes the browser selected for a run.
type Attributes struct {
	Type       Kind
	BinaryPath string
	Args       []string
}

// Resolve selects the first configured browser in priority order and returns
// its attributes. If no browser carries a binary path, the options are logged
// and a ConfigurationError is returned.
func Resolve(opts *Options) (Attributes, error) {
	configured := opts.Configured()
	if len(configured) == 0 {
		dump, _ := json.Marshal(opts)
		log.WithField("options", string(dump)).Error("no browser binary configured")

		return Attributes{}, &ConfigurationError{Browser: opts.Browser}
	}

	kind := configured[0]
	attrs := Attributes{
		Type:       kind,
		BinaryPath: opts.Settings(kind).BinaryPath,
	}

	switch kind {
	case Safari, Firefox, Chrome:
		attrs.Args = slices.Clone(opts.Settings(kind).Args)
	case Edge:
		// Edge is launched with the chrome arguments, never its own.
		if opts.Chrome != nil {
			attrs.Args = slices.Clone(opts.Chrome.Args)
		}
	}

	log.Debugf("resolved browser %s at %s", attrs.Type, attrs.BinaryPath)

	return attrs, nil
}
