package main

import (
	"context"
	"fmt"

	"github.com/pako-23/browserbench/internal/browser"
	"github.com/pako-23/browserbench/internal/memory"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// loadOptions reads the browser configuration.
func loadOptions() (*browser.Options, error) {
	var options browser.Options

	if err := viper.Unmarshal(&options); err != nil {
		return nil, fmt.Errorf("failed to read browser configuration: %w", err)
	}

	return &options, nil
}

func newCollector() *memory.Collector {
	collector := memory.NewCollector()

	if interpreter := viper.GetString("memory.interpreter"); interpreter != "" {
		collector.Interpreter = interpreter
	}

	if script := viper.GetString("memory.script"); script != "" {
		collector.Script = script
	}

	return collector
}

// browserVersion returns the version of the browser, or an empty string if
// it cannot be determined.
func browserVersion(ctx context.Context, binaryPath string) string {
	version, err := browser.Version(ctx, binaryPath)
	if err != nil {
		log.Warnf("failed to determine browser version: %v", err)
		return ""
	}

	return version
}
