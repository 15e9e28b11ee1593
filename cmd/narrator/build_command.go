package main

import (
	"github.com/spf13/cobra"
)

func newBuildCommand(ctx *commandContext) *cobra.Command {
	flags := &synthesisFlags{}
	var pauseSeconds float64

	cmd := &cobra.Command{
		Use:   "build <file>",
		Short: "Synthesize chapters and merge each into {title}_cat.wav",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var pause *float64
			if cmd.Flags().Changed("pause") {
				pause = &pauseSeconds
			}
			return runDocument(cmd, ctx, flags, args[0], pause, true)
		},
	}

	flags.register(cmd)
	cmd.Flags().Float64Var(&pauseSeconds, "pause", 0, "Override concat.pause_seconds")
	return cmd
}
