package cmd

import (
	"io"

	"github.com/spf13/cobra"
)

func NewCmdConfig(w io.Writer, rf *RootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration",
		Long:  "Manage the configuration",
	}

	cmd.AddCommand(NewCmdInitConfig(w, rf))
	cmd.AddCommand(NewCmdLocateConfig(w, rf))
	return cmd
}
