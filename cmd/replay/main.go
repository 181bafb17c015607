package main

import (
	"fmt"
	"io"
	"os"

	"dex-parser-sol/internal/consts"
	"dex-parser-sol/internal/logic/replay"
	"dex-parser-sol/internal/pkg/logger"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "replay",
		Short:        "Parse recorded Solana transactions offline",
		SilenceUsage: true,
	}
	root.AddCommand(newRunCmd())
	return root
}

func newRunCmd() *cobra.Command {
	var (
		output  string
		workers int
		level   string
	)
	cmd := &cobra.Command{
		Use:   "run <fixture.yaml>...",
		Short: "Parse every transaction in the fixture files and print one JSON line per transaction",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := logger.Init(logger.LogOption{Format: "console", Level: level}); err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}

			failed := 0
			for _, path := range args {
				file, err := replay.Load(path)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				outs, err := replay.Run(file, workers)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				for _, o := range outs {
					if o.Error != "" {
						failed++
					}
				}
				if err := replay.WriteJSONLines(w, outs); err != nil {
					return err
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d transactions failed to parse", failed)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write JSON lines to this file instead of stdout")
	cmd.Flags().IntVarP(&workers, "workers", "w", consts.CpuCount, "number of parsing goroutines")
	cmd.Flags().StringVar(&level, "log-level", "warn", "log level: debug / info / warn / error")
	return cmd
}
