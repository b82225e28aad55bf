// Copyright 2024 The Browserbench Authors. All rights reserved.
// Use of this source code is governed by a GPL-style
// license that can be found in the LICENSE file.

// Run browser benchmarks and collect their metrics.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newRootCmd() *cobra.Command {
	var cfgFile string

	rootCommand := &cobra.Command{
		Use:          "browserbench",
		Short:        "Run browser benchmarks",
		Long:         `Run benchmark scenarios against the configured browser and report their metrics`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range []string{"log", "log-format", "log-file"} {
				viper.BindPFlag(name, cmd.Flags().Lookup(name))
			}

			loadConfiguration(cfgFile)

			return configureLogging(viper.GetString("log"), viper.GetString("log-format"), viper.GetString("log-file"))
		},
	}

	rootCommand.PersistentFlags().StringVar(&cfgFile, "config", ".browserbench.yaml", "Configuration file")
	rootCommand.PersistentFlags().String("log", "info", "Log level")
	rootCommand.PersistentFlags().String("log-format", "plain", "Log format (plain or json)")
	rootCommand.PersistentFlags().String("log-file", "", "Append logs to this file instead of stderr")

	rootCommand.AddCommand(
		newBrowsersCmd(),
		newMemoryCmd(),
		newRunCmd(),
	)

	return rootCommand
}

// loadConfiguration reads the configuration file, if any, and enables
// environment overrides. A missing file is not an error.
func loadConfiguration(cfgFile string) {
	viper.AutomaticEnv()
	if cfgFile == "" {
		return
	}

	viper.SetConfigFile(cfgFile)
	if err := viper.ReadInConfig(); err != nil {
		log.Debugf("no configuration file loaded: %v", err)
	}
}

// configureLogging sets up the standard logger.
func configureLogging(level, format, file string) error {
	logLevel, err := toLogLevel(level)
	if err != nil {
		return err
	}
	log.SetLevel(logLevel)

	switch format {
	case "plain":
		log.SetFormatter(&log.TextFormatter{})
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	default:
		return fmt.Errorf("%s is not a supported log format", format)
	}

	if file == "" {
		return nil
	}

	output, err := os.OpenFile(file, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	log.SetOutput(output)

	return nil
}

// toLogLevel translates a string to the corresponding log level.
func toLogLevel(level string) (log.Level, error) {
	switch strings.ToLower(level) {
	case log.InfoLevel.String():
		return log.InfoLevel, nil
	case log.DebugLevel.String():
		return log.DebugLevel, nil
	case log.WarnLevel.String(), "warn":
		return log.WarnLevel, nil
	case log.ErrorLevel.String():
		return log.ErrorLevel, nil
	default:
		return log.InfoLevel, fmt.Errorf("%s is not a supported logging level", level)
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		log.Error(err)
		stop()
		os.Exit(1)
	}
}
