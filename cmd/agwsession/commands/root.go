package cmd

import (
	"io"

	"github.com/abstract-foundation/agw-session-keys/cmd/agwsession/commands/flags"

	"github.com/spf13/cobra"
)

type RootFlags struct {
	Output   string
	Home     string
	LogLevel string
}

func NewCmdRoot(w io.Writer) *cobra.Command {
	return BuildCmdRoot(w)
}

func BuildCmdRoot(w io.Writer) *cobra.Command {
	f := &RootFlags{}

	cmd := &cobra.Command{
		Use:   "agwsession",
		Short: "Manage the session keys of Abstract Global Wallet accounts",
		Long:  "Manage the session keys of Abstract Global Wallet accounts",
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return flags.ValidateOutput(f.Output)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&f.Output,
		"output", "o",
		flags.InteractiveOutput,
		"Specify the output format: json,interactive",
	)
	cmd.PersistentFlags().StringVar(&f.Home,
		"home",
		"",
		"Specify the location of a custom home",
	)
	cmd.PersistentFlags().StringVar(&f.LogLevel,
		"level",
		"",
		"Set the log level, overriding the configuration",
	)

	autoCompleteLogLevel(cmd)

	cmd.AddCommand(NewCmdConfig(w, f))
	cmd.AddCommand(NewCmdSession(w, f))

	return cmd
}
