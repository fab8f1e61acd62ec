// Package main provides the feedback-triage entry point.
// feedback-triage ingests customer feedback and produces a structured
// triage result: sentiment, root cause, an action plan, an escalation
// decision, and a drafted reply.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/otherjamesbrown/feedback-triage/cmd"
)

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:          "feedback-triage",
		Short:        "Customer feedback triage service",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config file")

	rootCmd.AddCommand(cmd.NewServeCommand(&configPath))
	rootCmd.AddCommand(cmd.NewVersionCommand())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
