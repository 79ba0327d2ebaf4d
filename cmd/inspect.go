package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ingeniero-f1/ingeniero/engineer/ingest"
)

// inspectCmd prints a summary of a recording
var inspectCmd = &cobra.Command{
	Use:   "inspect <recording>",
	Short: "Summarize a recording: packet ids, lengths, duration and a timeline",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := ingest.Inspect(args[0], inspectEvery)
		if err != nil {
			return err
		}
		if s.Truncated {
			logrus.Warnf("%s ends with a truncated record", args[0])
		}
		return s.WriteText(cmd.OutOrStdout())
	},
}
