package cmd

import (
	"fmt"
	"io"

	"github.com/abstract-foundation/agw-session-keys/cmd/agwsession/commands/cli"
	"github.com/abstract-foundation/agw-session-keys/cmd/agwsession/commands/flags"
	"github.com/abstract-foundation/agw-session-keys/cmd/agwsession/commands/printer"
	"github.com/abstract-foundation/agw-session-keys/paths"
	"github.com/abstract-foundation/agw-session-keys/service"

	"github.com/spf13/cobra"
)

var (
	locateConfigLong = cli.LongDesc(`
		Locate the configuration file.
	`)

	locateConfigExample = cli.Examples(`
		# Locate the configuration file
		{{.Software}} config locate
	`)
)

type LocateConfigResponse struct {
	Path   string `json:"path"`
	Exists bool   `json:"exists"`
}

type LocateConfigHandler func() (*LocateConfigResponse, error)

func NewCmdLocateConfig(w io.Writer, rf *RootFlags) *cobra.Command {
	h := func() (*LocateConfigResponse, error) {
		store, err := service.InitialiseConfigStore(paths.New(rf.Home))
		if err != nil {
			return nil, fmt.Errorf("couldn't initialise the configuration store: %w", err)
		}

		exists, err := store.ConfigExists()
		if err != nil {
			return nil, err
		}

		return &LocateConfigResponse{
			Path:   store.ConfigPath(),
			Exists: exists,
		}, nil
	}

	return BuildCmdLocateConfig(w, h, rf)
}

func BuildCmdLocateConfig(w io.Writer, handler LocateConfigHandler, rf *RootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "locate",
		Short:   "Locate the configuration file",
		Long:    locateConfigLong,
		Example: locateConfigExample,
		RunE: func(_ *cobra.Command, _ []string) error {
			resp, err := handler()
			if err != nil {
				return err
			}

			switch rf.Output {
			case flags.InteractiveOutput:
				PrintLocateConfigResponse(w, resp)
			case flags.JSONOutput:
				return printer.FprintJSON(w, resp)
			}

			return nil
		},
	}

	return cmd
}

func PrintLocateConfigResponse(w io.Writer, resp *LocateConfigResponse) {
	p := printer.NewInteractivePrinter(w)

	str := p.String()
	defer p.Print(str)

	str.Text("The configuration file is located at: ").SuccessText(resp.Path).NextLine()
	if !resp.Exists {
		str.BangMark().WarningText("The file does not exist yet, the default configuration is used.").NextLine()
	}
}
