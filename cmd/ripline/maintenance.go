package main

import (
	"github.com/spf13/cobra"
)

func newKillCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "kill",
		Short: "Stop running makemkvcon, HandBrakeCLI and mkisofs processes",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ctx.openSession(cmd, false)
			if err != nil {
				return err
			}
			defer s.Close()
			return s.killActive(cmd.Context())
		},
	}
}

func newCleanCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Empty the scratch directory",
		Long:  "Clean removes everything in the scratch directory. It refuses while a ripline tool is running.",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ctx.openSession(cmd, true)
			if err != nil {
				return err
			}
			defer s.Close()
			return s.cleanScratch(cmd.Context())
		},
	}
}

func newFinishCommand(ctx *commandContext) *cobra.Command {
	var title string
	cmd := &cobra.Command{
		Use:   "finish",
		Short: "Publish the file left in scratch by an interrupted rip",
		Long: `Finish copies the largest video in scratch to the destination, removes
it from scratch and refreshes the library.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			runCtx, stop := signalContext(cmd.Context())
			defer stop()

			s, err := ctx.openSession(cmd, true)
			if err != nil {
				return err
			}
			defer s.Close()
			return s.completeAbortedRip(runCtx, title)
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "Title to use for a generically named file")
	return cmd
}
