package cmd

import (
	"io"
	"math/big"
	"strconv"
	"time"

	"github.com/abstract-foundation/agw-session-keys/cmd/agwsession/commands/flags"
	"github.com/abstract-foundation/agw-session-keys/cmd/agwsession/commands/printer"
	vgcrypto "github.com/abstract-foundation/agw-session-keys/libs/crypto"
	"github.com/abstract-foundation/agw-session-keys/session"

	"github.com/dustin/go-humanize"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

func NewCmdSession(w io.Writer, rf *RootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage the sessions of the accounts",
		Long:  "Manage the sessions of the accounts",
	}

	cmd.AddCommand(NewCmdCreateSession(w, rf))
	cmd.AddCommand(NewCmdGetSession(w, rf))
	cmd.AddCommand(NewCmdDescribeSessionStatus(w, rf))
	cmd.AddCommand(NewCmdRevokeSession(w, rf))
	cmd.AddCommand(NewCmdSendTransaction(w, rf))
	cmd.AddCommand(NewCmdHashSession(w, rf))
	cmd.AddCommand(NewCmdMonitorSession(w, rf))
	return cmd
}

// SessionSummary describes a session without its secret.
type SessionSummary struct {
	Account          string    `json:"account"`
	Signer           string    `json:"signer"`
	SessionHash      string    `json:"sessionHash"`
	ExpiresAt        time.Time `json:"expiresAt"`
	FeeLimit         string    `json:"feeLimit"`
	FeeLimitType     string    `json:"feeLimitType"`
	CallPolicies     int       `json:"callPolicies"`
	TransferPolicies int       `json:"transferPolicies"`
}

func summarise(cred session.Credential) (*SessionSummary, error) {
	sessionHash, err := cred.Hash()
	if err != nil {
		return nil, err
	}

	return &SessionSummary{
		Account:          cred.Account.Hex(),
		Signer:           cred.Config.Signer.Hex(),
		SessionHash:      sessionHash.Hex(),
		ExpiresAt:        time.Unix(cred.Config.ExpiresAt.Int64(), 0).UTC(),
		FeeLimit:         cred.Config.FeeLimit.Limit.String(),
		FeeLimitType:     cred.Config.FeeLimit.Type.String(),
		CallPolicies:     len(cred.Config.CallPolicies),
		TransferPolicies: len(cred.Config.TransferPolicies),
	}, nil
}

func printSessionSummary(str *printer.FormattedString, s *SessionSummary) {
	feeLimit, _ := new(big.Int).SetString(s.FeeLimit, 10)

	str.Text("Account: ").Bold(s.Account).NextLine()
	str.Text("Signer: ").Bold(s.Signer).NextLine()
	str.Text("Session hash: ").Bold(s.SessionHash).NextLine()
	str.Text("Expires at: ").Bold(s.ExpiresAt.Format(time.RFC1123)).Text(" (").Text(humanize.Time(s.ExpiresAt)).Text(")").NextLine()
	str.Text("Fee limit: ").Bold(printer.WeiToETH(feeLimit)).Text(" (").Text(s.FeeLimitType).Text(")").NextLine()
	str.Text("Call policies: ").Bold(strconv.Itoa(s.CallPolicies)).NextLine()
	str.Text("Transfer policies: ").Bold(strconv.Itoa(s.TransferPolicies)).NextLine()
}

// AccountFlags are shared by the commands working on the session of an
// account.
type AccountFlags struct {
	Account        string
	PassphraseFile string
}

func (f *AccountFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.Account,
		"account", "a",
		"",
		"Address of the Abstract Global Wallet account",
	)
	cmd.Flags().StringVarP(&f.PassphraseFile,
		"passphrase-file", "p",
		"",
		"Path to the file containing the passphrase protecting the encryption keys",
	)
}

func (f *AccountFlags) Validate() (common.Address, error) {
	if len(f.Account) == 0 {
		return common.Address{}, flags.MustBeSpecifiedError("account")
	}

	account, err := vgcrypto.ParseEthereumAddress(f.Account)
	if err != nil {
		return common.Address{}, flags.InvalidFlagFormatError("account", err)
	}
	return account, nil
}
