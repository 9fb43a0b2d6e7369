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
	createSessionLong = cli.LongDesc(`
		Create a session for the account, following the policy of the
		configuration. The session is registered on-chain by the wallet of the
		account, then saved encrypted. It replaces the previous session of the
		account.
	`)

	createSessionExample = cli.Examples(`
		# Create a session
		{{.Software}} session create --account ACCOUNT_ADDRESS
	`)
)

type CreateSessionHandler func(ctx context.Context, account common.Address, passphraseFile string) (*SessionSummary, error)

func NewCmdCreateSession(w io.Writer, rf *RootFlags) *cobra.Command {
	h := func(ctx context.Context, account common.Address, passphraseFile string) (*SessionSummary, error) {
		var summary *SessionSummary
		err := withService(ctx, rf, passphraseFile, func(svc *service.Service) error {
			cred, err := svc.Manager.CreateSession(ctx, account, svc.Policy.Template())
			if err != nil {
				return err
			}
			summary, err = summarise(cred)
			return err
		})
		return summary, err
	}

	return BuildCmdCreateSession(w, h, rf)
}

func BuildCmdCreateSession(w io.Writer, handler CreateSessionHandler, rf *RootFlags) *cobra.Command {
	f := &AccountFlags{}

	cmd := &cobra.Command{
		Use:     "create",
		Short:   "Create a session for the account",
		Long:    createSessionLong,
		Example: createSessionExample,
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
				PrintCreateSessionResponse(w, resp)
			case flags.JSONOutput:
				return printer.FprintJSON(w, resp)
			}

			return nil
		},
	}

	f.register(cmd)

	return cmd
}

func PrintCreateSessionResponse(w io.Writer, resp *SessionSummary) {
	p := printer.NewInteractivePrinter(w)

	str := p.String()
	defer p.Print(str)

	str.CheckMark().SuccessText("Session created").NextSection()
	printSessionSummary(str, resp)
}
