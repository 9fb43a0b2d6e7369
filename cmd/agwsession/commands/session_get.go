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
	getSessionLong = cli.LongDesc(`
		Get the session of the account, if it can still be used. A saved session
		that the chain no longer accepts, or that does not follow the policy of
		the configuration anymore, is forgotten.
	`)

	getSessionExample = cli.Examples(`
		# Get the valid session of an account
		{{.Software}} session get --account ACCOUNT_ADDRESS
	`)
)

type GetSessionResponse struct {
	Found   bool            `json:"found"`
	Session *SessionSummary `json:"session,omitempty"`
}

type GetSessionHandler func(ctx context.Context, account common.Address, passphraseFile string) (*GetSessionResponse, error)

func NewCmdGetSession(w io.Writer, rf *RootFlags) *cobra.Command {
	h := func(ctx context.Context, account common.Address, passphraseFile string) (*GetSessionResponse, error) {
		resp := &GetSessionResponse{}
		err := withService(ctx, rf, passphraseFile, func(svc *service.Service) error {
			cred, err := svc.Manager.GetValidSession(ctx, account)
			if err != nil {
				return err
			}
			if cred == nil {
				return nil
			}
			resp.Found = true
			resp.Session, err = summarise(*cred)
			return err
		})
		if err != nil {
			return nil, err
		}
		return resp, nil
	}

	return BuildCmdGetSession(w, h, rf)
}

func BuildCmdGetSession(w io.Writer, handler GetSessionHandler, rf *RootFlags) *cobra.Command {
	f := &AccountFlags{}

	cmd := &cobra.Command{
		Use:     "get",
		Short:   "Get the valid session of the account",
		Long:    getSessionLong,
		Example: getSessionExample,
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
				PrintGetSessionResponse(w, resp)
			case flags.JSONOutput:
				return printer.FprintJSON(w, resp)
			}

			return nil
		},
	}

	f.register(cmd)

	return cmd
}

func PrintGetSessionResponse(w io.Writer, resp *GetSessionResponse) {
	p := printer.NewInteractivePrinter(w)

	str := p.String()
	defer p.Print(str)

	if !resp.Found {
		str.BangMark().WarningText("There is no valid session for this account").NextSection()
		str.BlueArrow().InfoText("Create a session").NextLine()
		str.Text("To create a session, use the following command:").NextSection()
		str.Code("agwsession session create --account ACCOUNT_ADDRESS").NextLine()
		return
	}

	str.CheckMark().SuccessText("The session is valid").NextSection()
	printSessionSummary(str, resp.Session)
}
