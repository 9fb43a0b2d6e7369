package cmd

import (
	"context"
	"io"

	"github.com/abstract-foundation/agw-session-keys/cmd/agwsession/commands/cli"
	"github.com/abstract-foundation/agw-session-keys/cmd/agwsession/commands/flags"
	"github.com/abstract-foundation/agw-session-keys/cmd/agwsession/commands/printer"
	"github.com/abstract-foundation/agw-session-keys/service"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

var (
	revokeSessionLong = cli.LongDesc(`
		Forget the session of the account. By default, the session stays active
		on-chain, and only this device loses access to it. Use --on-chain to
		close it on-chain as well.
	`)

	revokeSessionExample = cli.Examples(`
		# Forget the session of an account
		{{.Software}} session revoke --account ACCOUNT_ADDRESS

		# Close the session on-chain, then forget it
		{{.Software}} session revoke --account ACCOUNT_ADDRESS --on-chain
	`)
)

type RevokeSessionResponse struct {
	OnChain bool   `json:"onChain"`
	TxHash  string `json:"txHash,omitempty"`
}

type RevokeSessionHandler func(ctx context.Context, account common.Address, f *RevokeSessionFlags) (*RevokeSessionResponse, error)

func NewCmdRevokeSession(w io.Writer, rf *RootFlags) *cobra.Command {
	h := func(ctx context.Context, account common.Address, f *RevokeSessionFlags) (*RevokeSessionResponse, error) {
		resp := &RevokeSessionResponse{
			OnChain: f.OnChain,
		}
		err := withService(ctx, rf, f.PassphraseFile, func(svc *service.Service) error {
			if !f.OnChain {
				return svc.Manager.RevokeSession(ctx, account)
			}

			txHash, err := svc.Manager.CloseOnChain(ctx, account)
			if err != nil {
				return err
			}
			resp.TxHash = txHash.Hex()
			return nil
		})
		if err != nil {
			return nil, err
		}
		return resp, nil
	}

	return BuildCmdRevokeSession(w, h, rf)
}

func BuildCmdRevokeSession(w io.Writer, handler RevokeSessionHandler, rf *RootFlags) *cobra.Command {
	f := &RevokeSessionFlags{}

	cmd := &cobra.Command{
		Use:     "revoke",
		Short:   "Forget the session of the account",
		Long:    revokeSessionLong,
		Example: revokeSessionExample,
		RunE: func(cmd *cobra.Command, _ []string) error {
			account, err := f.Validate()
			if err != nil {
				return err
			}

			resp, err := handler(cmd.Context(), account, f)
			if err != nil {
				return err
			}

			switch rf.Output {
			case flags.InteractiveOutput:
				PrintRevokeSessionResponse(w, resp)
			case flags.JSONOutput:
				return printer.FprintJSON(w, resp)
			}

			return nil
		},
	}

	f.register(cmd)
	cmd.Flags().BoolVar(&f.OnChain,
		"on-chain",
		false,
		"Close the session on-chain before forgetting it",
	)

	return cmd
}

type RevokeSessionFlags struct {
	AccountFlags
	OnChain bool
}

func PrintRevokeSessionResponse(w io.Writer, resp *RevokeSessionResponse) {
	p := printer.NewInteractivePrinter(w)

	str := p.String()
	defer p.Print(str)

	if resp.OnChain {
		str.CheckMark().SuccessText("The session has been closed on-chain and forgotten").NextLine()
		str.Text("Transaction hash: ").Bold(resp.TxHash).NextLine()
		return
	}

	str.CheckMark().SuccessText("The session has been forgotten").NextSection()
	str.BangMark().WarningText("The session is still active on-chain. ").Text("Use ").Bold("--on-chain").Text(" to close it.").NextLine()
}
