package main

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pavelsavara/xharness/internal/messages"
	"github.com/pavelsavara/xharness/internal/terminal"
)

var colorEnabled = terminal.ColorEnabled

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	verbose    bool
	configPath string
	noHistory  bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           messages.RootUse,
		Short:         messages.RootShort,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			color.NoColor = !colorEnabled(cmd.OutOrStdout())
		},
	}
	cmd.Flags().Bool("version", false, messages.RootVersionFlag)
	flags := cmd.PersistentFlags()
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, messages.RootFlagVerbose)
	flags.StringVar(&opts.configPath, "config", "", messages.RootFlagConfig)
	flags.BoolVar(&opts.noHistory, "no-history", false, messages.RootFlagNoHistory)

	cmd.AddCommand(
		newAndroidCmd(opts),
		newAppleCmd(opts),
		newDoctorCmd(opts),
		newHistoryCmd(opts),
	)
	return cmd
}
