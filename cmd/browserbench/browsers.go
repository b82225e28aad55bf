package main

import (
	"fmt"
	"strings"

	"github.com/pako-23/browserbench/internal/browser"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newBrowsersCmd() *cobra.Command {
	browsersCommand := &cobra.Command{
		Use:   "browsers",
		Short: "Show the configured browsers",
		Args:  cobra.NoArgs,
		Long: `Shows the browser selected for benchmark runs and the version of
every configured browser binary.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			options, err := loadOptions()
			if err != nil {
				return err
			}

			attrs, err := browser.Resolve(options)
			if err != nil {
				return err
			}

			configured := options.Configured()
			versions := make([]string, len(configured))

			var waitgroup errgroup.Group
			for i, kind := range configured {
				i, kind, binaryPath := i, kind, options.Settings(kind).BinaryPath

				waitgroup.Go(func() error {
					version, err := browser.Version(cmd.Context(), binaryPath)
					if err != nil {
						versions[i] = "unknown"
						return fmt.Errorf("failed to determine %s version: %w", kind, err)
					}
					versions[i] = version

					return nil
				})
			}

			if err := waitgroup.Wait(); err != nil {
				log.Warn(err)
			}

			out := cmd.OutOrStdout()
			for i, kind := range configured {
				marker := " "
				if kind == attrs.Type {
					marker = "*"
				}

				fmt.Fprintf(out, "%s %-8s %-16s %s\n", marker, kind, versions[i], options.Settings(kind).BinaryPath)
			}

			if len(attrs.Args) > 0 {
				fmt.Fprintf(out, "args: %s\n", strings.Join(attrs.Args, " "))
			}

			return nil
		},
	}

	return browsersCommand
}
