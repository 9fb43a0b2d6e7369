package cmd

import (
	"context"
	"errors"
	"io"
	"math/big"

	"github.com/abstract-foundation/agw-session-keys/cmd/agwsession/commands/cli"
	"github.com/abstract-foundation/agw-session-keys/cmd/agwsession/commands/flags"
	"github.com/abstract-foundation/agw-session-keys/cmd/agwsession/commands/printer"
	vgcrypto "github.com/abstract-foundation/agw-session-keys/libs/crypto"
	"github.com/abstract-foundation/agw-session-keys/service"
	"github.com/abstract-foundation/agw-session-keys/session"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"
)

var ErrValueCannotBeNegative = errors.New("the value cannot be negative")

var (
	sendTransactionLong = cli.LongDesc(`
		Send a transaction on behalf of the account, signed with its session.
		The transaction is checked against the session policy before being sent.
	`)

	sendTransactionExample = cli.Examples(`
		# Transfer 0.0001 ETH
		{{.Software}} session send --account ACCOUNT_ADDRESS --to RECIPIENT_ADDRESS --value 100000000000000

		# Call a contract
		{{.Software}} session send --account ACCOUNT_ADDRESS --to CONTRACT_ADDRESS --data 0xa9059cbb...
	`)
)

type SendTransactionResponse struct {
	TxHash string `json:"txHash"`
	To     string `json:"to"`
	Value  string `json:"value"`
}

type SendTransactionHandler func(ctx context.Context, account common.Address, call session.Call, passphraseFile string) (*SendTransactionResponse, error)

func NewCmdSendTransaction(w io.Writer, rf *RootFlags) *cobra.Command {
	h := func(ctx context.Context, account common.Address, call session.Call, passphraseFile string) (*SendTransactionResponse, error) {
		var resp *SendTransactionResponse
		err := withService(ctx, rf, passphraseFile, func(svc *service.Service) error {
			txHash, err := svc.Manager.SendTransaction(ctx, account, call)
			if err != nil {
				return err
			}
			resp = &SendTransactionResponse{
				TxHash: txHash.Hex(),
				To:     call.To.Hex(),
				Value:  call.Value.String(),
			}
			return nil
		})
		return resp, err
	}

	return BuildCmdSendTransaction(w, h, rf)
}

func BuildCmdSendTransaction(w io.Writer, handler SendTransactionHandler, rf *RootFlags) *cobra.Command {
	f := &SendTransactionFlags{}

	cmd := &cobra.Command{
		Use:     "send",
		Short:   "Send a transaction with the session of the account",
		Long:    sendTransactionLong,
		Example: sendTransactionExample,
		RunE: func(cmd *cobra.Command, _ []string) error {
			account, call, err := f.Validate()
			if err != nil {
				return err
			}

			resp, err := handler(cmd.Context(), account, call, f.PassphraseFile)
			if err != nil {
				return err
			}

			switch rf.Output {
			case flags.InteractiveOutput:
				PrintSendTransactionResponse(w, resp)
			case flags.JSONOutput:
				return printer.FprintJSON(w, resp)
			}

			return nil
		},
	}

	f.register(cmd)
	cmd.Flags().StringVar(&f.To,
		"to",
		"",
		"Address of the recipient or of the contract to call",
	)
	cmd.Flags().StringVar(&f.Value,
		"value",
		"0",
		"Amount to send, in wei",
	)
	cmd.Flags().StringVar(&f.Data,
		"data",
		"",
		"Call data, as hexadecimal",
	)

	return cmd
}

type SendTransactionFlags struct {
	AccountFlags
	To    string
	Value string
	Data  string
}

func (f *SendTransactionFlags) Validate() (common.Address, session.Call, error) {
	account, err := f.AccountFlags.Validate()
	if err != nil {
		return common.Address{}, session.Call{}, err
	}

	if len(f.To) == 0 {
		return common.Address{}, session.Call{}, flags.MustBeSpecifiedError("to")
	}
	to, err := vgcrypto.ParseEthereumAddress(f.To)
	if err != nil {
		return common.Address{}, session.Call{}, flags.InvalidFlagFormatError("to", err)
	}

	value := big.NewInt(0)
	if len(f.Value) != 0 {
		v, ok := new(big.Int).SetString(f.Value, 10)
		if !ok {
			return common.Address{}, session.Call{}, flags.InvalidFlagFormatError("value", errors.New("not an integer"))
		}
		if v.Sign() < 0 {
			return common.Address{}, session.Call{}, flags.InvalidFlagFormatError("value", ErrValueCannotBeNegative)
		}
		value = v
	}

	var data []byte
	if len(f.Data) != 0 {
		data, err = hexutil.Decode(f.Data)
		if err != nil {
			return common.Address{}, session.Call{}, flags.InvalidFlagFormatError("data", err)
		}
	}

	return account, session.Call{
		To:    to,
		Value: value,
		Data:  data,
	}, nil
}

func PrintSendTransactionResponse(w io.Writer, resp *SendTransactionResponse) {
	p := printer.NewInteractivePrinter(w)

	str := p.String()
	defer p.Print(str)

	value, _ := new(big.Int).SetString(resp.Value, 10)

	str.CheckMark().SuccessText("Transaction sent").NextSection()
	str.Text("Transaction hash: ").Bold(resp.TxHash).NextLine()
	str.Text("To: ").Bold(resp.To).NextLine()
	str.Text("Value: ").Bold(printer.WeiToETH(value)).NextLine()
}
