package cmd

import (
	"fmt"
	"io"

	"github.com/abstract-foundation/agw-session-keys/cmd/agwsession/commands/cli"
	"github.com/abstract-foundation/agw-session-keys/cmd/agwsession/commands/flags"
	"github.com/abstract-foundation/agw-session-keys/cmd/agwsession/commands/printer"
	vgfs "github.com/abstract-foundation/agw-session-keys/libs/fs"
	vgjson "github.com/abstract-foundation/agw-session-keys/libs/json"
	"github.com/abstract-foundation/agw-session-keys/session"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"
)

var (
	hashSessionLong = cli.LongDesc(`
		Compute the hash identifying a session on-chain, from its JSON
		description. Big integers are described as {"type": "bigint", "value": "..."}.
	`)

	hashSessionExample = cli.Examples(`
		# Hash a session
		{{.Software}} session hash --session-file SESSION_FILE
	`)
)

type HashSessionResponse struct {
	SessionHash string `json:"sessionHash"`
	Encoded     string `json:"encoded"`
}

type HashSessionHandler func(f *HashSessionFlags) (*HashSessionResponse, error)

func NewCmdHashSession(w io.Writer, rf *RootFlags) *cobra.Command {
	return BuildCmdHashSession(w, HashSession, rf)
}

func BuildCmdHashSession(w io.Writer, handler HashSessionHandler, rf *RootFlags) *cobra.Command {
	f := &HashSessionFlags{}

	cmd := &cobra.Command{
		Use:     "hash",
		Short:   "Compute the hash of a session",
		Long:    hashSessionLong,
		Example: hashSessionExample,
		RunE: func(_ *cobra.Command, _ []string) error {
			resp, err := handler(f)
			if err != nil {
				return err
			}

			switch rf.Output {
			case flags.InteractiveOutput:
				PrintHashSessionResponse(w, resp)
			case flags.JSONOutput:
				return printer.FprintJSON(w, resp)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&f.SessionFile,
		"session-file", "f",
		"",
		"Path to the JSON file describing the session",
	)

	return cmd
}

type HashSessionFlags struct {
	SessionFile string
}

func HashSession(f *HashSessionFlags) (*HashSessionResponse, error) {
	if len(f.SessionFile) == 0 {
		return nil, flags.MustBeSpecifiedError("session-file")
	}

	buf, err := vgfs.ReadFile(f.SessionFile)
	if err != nil {
		return nil, fmt.Errorf("couldn't read the session file: %w", err)
	}

	tree, err := vgjson.Unmarshal(buf)
	if err != nil {
		return nil, fmt.Errorf("couldn't decode the session file: %w", err)
	}

	cfg, err := session.ParseConfig(tree)
	if err != nil {
		return nil, err
	}

	encoded, err := cfg.Encode()
	if err != nil {
		return nil, err
	}
	sessionHash, err := cfg.Hash()
	if err != nil {
		return nil, err
	}

	return &HashSessionResponse{
		SessionHash: sessionHash.Hex(),
		Encoded:     hexutil.Encode(encoded),
	}, nil
}

func PrintHashSessionResponse(w io.Writer, resp *HashSessionResponse) {
	p := printer.NewInteractivePrinter(w)

	str := p.String()
	defer p.Print(str)

	str.Text("Session hash: ").SuccessText(resp.SessionHash).NextLine()
}
