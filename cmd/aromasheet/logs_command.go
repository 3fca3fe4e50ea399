package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"aromasheet/internal/logs"
	"aromasheet/internal/workbench"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var follow bool
	var lines int
	var sheetRef string
	var debug bool

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the edit history recorded in the log file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			filter := logs.Filter{MinLevel: slog.LevelInfo}
			if debug {
				filter.MinLevel = slog.LevelDebug
			}
			if sheetRef != "" {
				err := ctx.withWorkbench(cmd, false, func(c context.Context, wb *workbench.Workbench) error {
					meta, err := wb.Resolve(c, sheetRef)
					if err != nil {
						return err
					}
					filter.SheetID = meta.ID
					return nil
				})
				if err != nil {
					return err
				}
			}

			runCtx := cmd.Context()
			if runCtx == nil {
				runCtx = context.Background()
			}
			out := cmd.OutOrStdout()
			path := cfg.LogPath()

			// Read everything once so the line count applies after filtering.
			result, err := logs.Tail(runCtx, path, logs.TailOptions{Offset: 0})
			if err != nil {
				return fmt.Errorf("read logs: %w", err)
			}
			entries := logs.Select(result.Lines, filter)
			if lines > 0 && len(entries) > lines {
				entries = entries[len(entries)-lines:]
			}
			for _, e := range entries {
				fmt.Fprintln(out, e.Format())
			}
			if !follow {
				if len(entries) == 0 {
					fmt.Fprintln(out, "No log entries available")
				}
				return nil
			}

			offset := result.Offset
			for {
				next, err := logs.Tail(runCtx, path, logs.TailOptions{Offset: offset, Follow: true, Wait: 5 * time.Second})
				if err != nil {
					if errors.Is(err, context.Canceled) {
						return nil
					}
					return fmt.Errorf("follow logs: %w", err)
				}
				for _, e := range logs.Select(next.Lines, filter) {
					fmt.Fprintln(out, e.Format())
				}
				offset = next.Offset
			}
		},
	}

	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Follow log output")
	cmd.Flags().IntVarP(&lines, "lines", "n", 20, "Number of entries to show (0 for all)")
	cmd.Flags().StringVarP(&sheetRef, "sheet", "s", "", "Only entries of this sheet")
	cmd.Flags().BoolVar(&debug, "debug", false, "Include debug entries such as individual edits")
	return cmd
}
