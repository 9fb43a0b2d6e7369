package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/abstract-foundation/agw-session-keys/cmd/agwsession/commands/cli"
	"github.com/abstract-foundation/agw-session-keys/cmd/agwsession/commands/flags"
	"github.com/abstract-foundation/agw-session-keys/cmd/agwsession/commands/printer"
	"github.com/abstract-foundation/agw-session-keys/network"
	"github.com/abstract-foundation/agw-session-keys/paths"
	"github.com/abstract-foundation/agw-session-keys/service"

	"github.com/spf13/cobra"
)

var ErrConfigAlreadyExists = errors.New("the configuration file already exists, use --force to overwrite it")

var (
	initConfigLong = cli.LongDesc(`
		Create the configuration file with the default values, for the
		specified network.
	`)

	initConfigExample = cli.Examples(`
		# Initialise the configuration for the testnet
		{{.Software}} config init

		# Re-initialise the configuration for the mainnet
		{{.Software}} config init --network mainnet --force
	`)
)

type InitConfigHandler func(home string, f *InitConfigFlags) (*InitConfigResponse, error)

func NewCmdInitConfig(w io.Writer, rf *RootFlags) *cobra.Command {
	return BuildCmdInitConfig(w, InitConfig, rf)
}

func BuildCmdInitConfig(w io.Writer, handler InitConfigHandler, rf *RootFlags) *cobra.Command {
	f := &InitConfigFlags{}

	cmd := &cobra.Command{
		Use:     "init",
		Short:   "Initialise the configuration",
		Long:    initConfigLong,
		Example: initConfigExample,
		RunE: func(_ *cobra.Command, _ []string) error {
			resp, err := handler(rf.Home, f)
			if err != nil {
				return err
			}

			switch rf.Output {
			case flags.InteractiveOutput:
				PrintInitConfigResponse(w, resp)
			case flags.JSONOutput:
				return printer.FprintJSON(w, resp)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&f.Network,
		"network",
		"testnet",
		fmt.Sprintf("Network to configure: %v", network.ListNetworks()),
	)
	cmd.Flags().BoolVarP(&f.Force,
		"force", "f",
		false,
		"Overwrite the existing configuration file",
	)

	return cmd
}

type InitConfigFlags struct {
	Network string
	Force   bool
}

type InitConfigResponse struct {
	Path    string `json:"path"`
	Network string `json:"network"`
}

func InitConfig(home string, f *InitConfigFlags) (*InitConfigResponse, error) {
	if f.Network == "" {
		return nil, flags.MustBeSpecifiedError("network")
	}
	net, err := network.GetNetwork(f.Network)
	if err != nil {
		return nil, err
	}

	store, err := service.InitialiseConfigStore(paths.New(home))
	if err != nil {
		return nil, fmt.Errorf("couldn't initialise the configuration store: %w", err)
	}

	exists, err := store.ConfigExists()
	if err != nil {
		return nil, err
	}
	if exists && !f.Force {
		return nil, ErrConfigAlreadyExists
	}

	cfg := service.DefaultConfig()
	cfg.Network = net

	if err := store.SaveConfig(cfg); err != nil {
		return nil, err
	}

	return &InitConfigResponse{
		Path:    store.ConfigPath(),
		Network: net.Name,
	}, nil
}

func PrintInitConfigResponse(w io.Writer, resp *InitConfigResponse) {
	p := printer.NewInteractivePrinter(w)

	str := p.String()
	defer p.Print(str)

	str.CheckMark().Text("Configuration for ").Bold(resp.Network).Text(" created at: ").SuccessText(resp.Path).NextSection()
	str.BlueArrow().InfoText("Define the session policy").NextLine()
	str.Text("The default policy only allows spending on fees. Edit the ").Bold("[policy]").Text(" section to allow calls and transfers.").NextLine()
}
