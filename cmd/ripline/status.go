package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"ripline/internal/preflight"
	"ripline/internal/staging"
)

var (
	statusOK   = color.New(color.FgGreen)
	statusWarn = color.New(color.FgYellow)
	statusFail = color.New(color.FgRed, color.Bold)
	statusIdle = color.New(color.Faint)
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show running tools, scratch contents and system checks",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ctx.openSession(cmd, false)
			if err != nil {
				return err
			}
			defer s.Close()

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Tools")
			for _, tool := range s.tools() {
				if h, ok := s.supervisor.Find(cmd.Context(), tool); ok {
					renderStatusLine(out, statusWarn, tool, fmt.Sprintf("running (pid %d)", h.PID))
				} else {
					renderStatusLine(out, statusIdle, tool, "idle")
				}
			}

			fmt.Fprintf(out, "\nScratch %s\n", s.cfg.Paths.ScratchDir)
			entries, err := staging.ListEntries(s.cfg.Paths.ScratchDir)
			if err != nil {
				return fmt.Errorf("list scratch: %w", err)
			}
			if len(entries) == 0 {
				fmt.Fprintln(out, "  empty")
			} else {
				fmt.Fprintln(out, scratchTable(entries))
			}

			fmt.Fprintln(out, "\nChecks")
			for _, r := range preflight.RunAll(cmd.Context(), s.cfg) {
				renderCheck(out, r)
			}
			return nil
		},
	}
}

func scratchTable(entries []staging.Entry) string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		kind := "file"
		if e.IsDir {
			kind = "dir"
		}
		rows = append(rows, []string{
			e.Name,
			kind,
			humanize.IBytes(uint64(max(e.Size, 0))),
			humanize.Time(e.ModTime),
		})
	}
	return renderTable(
		[]string{"Name", "Type", "Size", "Modified"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
	)
}

func renderCheck(out io.Writer, r preflight.Result) {
	switch {
	case !r.Passed:
		renderStatusLine(out, statusFail, r.Name, "failed: "+r.Detail)
	case r.Warning:
		renderStatusLine(out, statusWarn, r.Name, r.Detail)
	default:
		renderStatusLine(out, statusOK, r.Name, strings.TrimSpace("ok "+r.Detail))
	}
}

func renderStatusLine(out io.Writer, c *color.Color, label, value string) {
	fmt.Fprintf(out, "  %-24s %s\n", label, c.Sprint(value))
}
