package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"ripline/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var pruneOlder time.Duration

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ctx.openSession(cmd, false)
			if err != nil {
				return err
			}
			defer s.Close()
			if s.history == nil {
				return fmt.Errorf("run history is unavailable (%s)", s.cfg.HistoryPath())
			}

			out := cmd.OutOrStdout()
			if pruneOlder > 0 {
				removed, err := s.history.Prune(cmd.Context(), time.Now().Add(-pruneOlder))
				if err != nil {
					return fmt.Errorf("prune history: %w", err)
				}
				fmt.Fprintf(out, "Removed %d run(s) older than %s\n", removed, pruneOlder)
			}

			runs, err := s.history.List(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("list history: %w", err)
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			fmt.Fprintln(out, historyTable(runs))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show")
	cmd.Flags().DurationVar(&pruneOlder, "prune-older-than", 0, "Delete runs started longer ago than this (e.g. 2160h)")
	return cmd
}

func historyTable(runs []history.Run) string {
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		duration := "-"
		if d := r.Duration(); d > 0 {
			duration = d.Round(time.Second).String()
		}
		detail := r.OutputPath
		if r.ErrorKind != "" {
			detail = r.ErrorKind
			if r.LastMessage != "" {
				detail += ": " + r.LastMessage
			}
		}
		rows = append(rows, []string{
			humanize.Time(r.StartedAt),
			r.Profile,
			r.Mode,
			string(r.Status),
			duration,
			r.Title,
			detail,
		})
	}
	return renderTable(
		[]string{"Started", "Profile", "Mode", "Status", "Duration", "Title", "Output / Error"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
	)
}
