package cmd

import (
	"context"
	"errors"
	"io"

	"github.com/abstract-foundation/agw-session-keys/cmd/agwsession/commands/cli"
	"github.com/abstract-foundation/agw-session-keys/cmd/agwsession/commands/flags"
	"github.com/abstract-foundation/agw-session-keys/cmd/agwsession/commands/printer"
	"github.com/abstract-foundation/agw-session-keys/network"
	"github.com/abstract-foundation/agw-session-keys/service"
	"github.com/abstract-foundation/agw-session-keys/session/validator"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

var ErrNoStoredSession = errors.New("there is no session saved for this account")

var (
	describeSessionStatusLong = cli.LongDesc(`
		Describe the on-chain status of the session saved for the account. Unlike
		"session get", the saved session is left untouched, whatever its status.
	`)

	describeSessionStatusExample = cli.Examples(`
		# Describe the status of the session of an account
		{{.Software}} session status --account ACCOUNT_ADDRESS
	`)
)

type DescribeSessionStatusResponse struct {
	ChainID     string `json:"chainId"`
	SessionHash string `json:"sessionHash"`
	Status      string `json:"status"`
	Usable      bool   `json:"usable"`
	Permissive  bool   `json:"permissiveNetwork"`
}

type DescribeSessionStatusHandler func(ctx context.Context, account common.Address, passphraseFile string) (*DescribeSessionStatusResponse, error)

func NewCmdDescribeSessionStatus(w io.Writer, rf *RootFlags) *cobra.Command {
	h := func(ctx context.Context, account common.Address, passphraseFile string) (*DescribeSessionStatusResponse, error) {
		var resp *DescribeSessionStatusResponse
		err := withService(ctx, rf, passphraseFile, func(svc *service.Service) error {
			cred, err := svc.Store.Load(ctx, account)
			if err != nil {
				return err
			}
			if cred == nil {
				return ErrNoStoredSession
			}

			sessionHash, err := cred.Hash()
			if err != nil {
				return err
			}

			chainID, err := svc.Client.ChainID(ctx)
			if err != nil {
				return err
			}

			status, err := svc.Client.SessionStatus(ctx, account, sessionHash)
			if err != nil {
				return err
			}

			resp = &DescribeSessionStatusResponse{
				ChainID:     chainID.String(),
				SessionHash: sessionHash.Hex(),
				Status:      status.String(),
				Usable:      validator.IsUsable(status, chainID),
				Permissive:  network.IsPermissive(chainID),
			}
			return nil
		})
		return resp, err
	}

	return BuildCmdDescribeSessionStatus(w, h, rf)
}

func BuildCmdDescribeSessionStatus(w io.Writer, handler DescribeSessionStatusHandler, rf *RootFlags) *cobra.Command {
	f := &AccountFlags{}

	cmd := &cobra.Command{
		Use:     "status",
		Short:   "Describe the on-chain status of the session",
		Long:    describeSessionStatusLong,
		Example: describeSessionStatusExample,
		RunE: func(cmd *cobra.Command, _ []string) error {
			account, err := f.Validate()
			if err != nil {
				return err
			}

			resp, err := handler(cmd.Context(), account, f.PassphraseFile)
			if err != nil {
				return err
			}

			switch rf.Output {
			case flags.InteractiveOutput:
				PrintDescribeSessionStatusResponse(w, resp)
			case flags.JSONOutput:
				return printer.FprintJSON(w, resp)
			}

			return nil
		},
	}

	f.register(cmd)

	return cmd
}

func PrintDescribeSessionStatusResponse(w io.Writer, resp *DescribeSessionStatusResponse) {
	p := printer.NewInteractivePrinter(w)

	str := p.String()
	defer p.Print(str)

	if resp.Usable {
		str.CheckMark().SuccessText("The session can be used").NextSection()
	} else {
		str.CrossMark().DangerText("The session cannot be used").NextSection()
	}

	str.Text("Session hash: ").Bold(resp.SessionHash).NextLine()
	str.Text("Status: ").Bold(resp.Status).NextLine()
	str.Text("Chain ID: ").Bold(resp.ChainID).NextLine()
	if resp.Permissive {
		str.BangMark().WarningText("This network accepts sessions that are not initialised yet.").NextLine()
	}
}
