package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pako-23/browserbench/internal/browser"
	"github.com/pako-23/browserbench/internal/harness"
	rod_harness "github.com/pako-23/browserbench/internal/harness/rod-harness"
	"github.com/pako-23/browserbench/internal/results"
	"github.com/pako-23/browserbench/internal/scenario"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newRunCmd() *cobra.Command {
	registry := scenario.NewRegistry()

	runCommand := &cobra.Command{
		Use:   "run [flags] [scenario]",
		Short: "Run a benchmark scenario in the configured browser",
		Args:  cobra.ExactArgs(1),
		Long: fmt.Sprintf(`Runs a benchmark scenario for a number of iterations in the
configured browser and writes the collected metrics to a CSV report.
Available scenarios: %s.`, strings.Join(registry.Names(), ", ")),
		PreRun: func(cmd *cobra.Command, args []string) {
			viper.BindPFlags(cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := registry.Get(args[0])
			if err != nil {
				return err
			}

			if m, ok := s.(*scenario.Memory); ok {
				m.Collector = newCollector()
			}

			options, err := loadOptions()
			if err != nil {
				return err
			}

			attrs, err := browser.Resolve(options)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			version := browserVersion(ctx, attrs.BinaryPath)

			env := &harness.Context{
				Options:    options,
				Attributes: attrs,
				URLs:       viper.GetStringSlice("urls"),
			}

			report := results.NewMap()
			iterations := viper.GetInt("iterations")
			errorMessages := []string{}

			for i := 0; i < iterations; i++ {
				iterationEnv := *env
				iterationEnv.ResultDir = filepath.Join(viper.GetString("result-dir"),
					attrs.Type.String(), s.Name(), strconv.Itoa(i))

				start := time.Now()
				metrics, err := runIteration(ctx, s, &iterationEnv)
				if err != nil {
					errorMessages = append(errorMessages, fmt.Sprintf("iteration %d: %v", i, err))
					log.Errorf("iteration %d of %s failed: %v", i, s.Name(), err)

					if ctx.Err() != nil {
						break
					}
					continue
				}
				log.Infof("run iteration %d of %s in %v", i, s.Name(), time.Since(start))

				if err := report.AddAll(attrs.Type.String(), version, metrics); err != nil {
					return err
				}
			}

			if err := writeReport(report, viper.GetString("output")); err != nil {
				return err
			}

			if len(errorMessages) > 0 {
				return errors.New(strings.Join(errorMessages, "\n"))
			}

			return nil
		},
	}

	runCommand.Flags().IntP("iterations", "n", 1, "the number of times the scenario is run")
	runCommand.Flags().StringP("output", "o", "results.csv", "the file the report is written to")
	runCommand.Flags().String("result-dir", "results", "the directory for screenshots and other artifacts")
	runCommand.Flags().StringSliceP("urls", "u", []string{}, "the pages opened by the loading and memory scenarios")
	runCommand.Flags().Bool("headless", true, "run the browser without a window")
	runCommand.Flags().Duration("navigation-timeout", rod_harness.DefaultNavigationTimeout, "the maximum time to wait for a page to load")

	return runCommand
}

func runIteration(ctx context.Context, s scenario.Scenario, env *harness.Context) (map[string]float64, error) {
	driver, err := rod_harness.NewDriver(ctx, env.Attributes,
		rod_harness.WithHeadless(viper.GetBool("headless")),
		rod_harness.WithNavigationTimeout(viper.GetDuration("navigation-timeout")),
		rod_harness.WithResultDir(env.ResultDir))
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := driver.Close(); err != nil {
			log.Warnf("failed to close browser: %v", err)
		}
	}()

	if err := s.Run(ctx, env, driver.Commands()); err != nil {
		return nil, err
	}

	return driver.Recorder().Metrics(), nil
}

func writeReport(report *results.Map, output string) error {
	file, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	defer file.Close()

	if err := report.WriteCSV(file); err != nil {
		return err
	}
	log.Infof("report written to %s", output)

	return nil
}
