package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/abstract-foundation/agw-session-keys/cmd/agwsession/commands/cli"
	"github.com/abstract-foundation/agw-session-keys/cmd/agwsession/commands/flags"
	"github.com/abstract-foundation/agw-session-keys/cmd/agwsession/commands/printer"
	"github.com/abstract-foundation/agw-session-keys/paths"
	"github.com/abstract-foundation/agw-session-keys/service"
	"github.com/abstract-foundation/agw-session-keys/session"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const defaultMonitoringInterval = 30 * time.Second

var ErrIntervalMustBePositive = errors.New("the interval must be positive")

var (
	monitorSessionLong = cli.LongDesc(`
		Check the session of the account at regular interval, until interrupted.
		A session that is no longer usable is forgotten, and reported.

		While running, the policy changes made to the configuration file are
		applied, and the metrics are served if enabled.
	`)

	monitorSessionExample = cli.Examples(`
		# Check the session of an account every minute
		{{.Software}} session monitor --account ACCOUNT_ADDRESS --interval 1m
	`)
)

// MonitorSessionEvent is emitted when the session of the account is first
// checked, and every time its usability changes.
type MonitorSessionEvent struct {
	CheckedAt   time.Time `json:"checkedAt"`
	Account     string    `json:"account"`
	Usable      bool      `json:"usable"`
	SessionHash string    `json:"sessionHash,omitempty"`
}

type MonitorSessionHandler func(ctx context.Context, account common.Address, f *MonitorSessionFlags, onEvent func(*MonitorSessionEvent)) error

func NewCmdMonitorSession(w io.Writer, rf *RootFlags) *cobra.Command {
	h := func(ctx context.Context, account common.Address, f *MonitorSessionFlags, onEvent func(*MonitorSessionEvent)) error {
		configStore, err := service.InitialiseConfigStore(paths.New(rf.Home))
		if err != nil {
			return fmt.Errorf("couldn't initialise the configuration store: %w", err)
		}
		configExists, err := configStore.ConfigExists()
		if err != nil {
			return err
		}

		return withService(ctx, rf, f.PassphraseFile, func(svc *service.Service) error {
			if configExists {
				if err := svc.WatchConfig(ctx, configStore.ConfigPath()); err != nil {
					return err
				}
			}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return svc.ServeMetrics(gctx)
			})
			g.Go(func() error {
				return MonitorSession(gctx, svc.Manager, account, f.Interval, onEvent)
			})
			return g.Wait()
		})
	}

	return BuildCmdMonitorSession(w, h, rf)
}

// SessionGetter returns the usable session of the account, if any.
type SessionGetter interface {
	GetValidSession(ctx context.Context, address common.Address) (*session.Credential, error)
}

// MonitorSession checks the session at every interval, until the context
// is cancelled.
func MonitorSession(ctx context.Context, getter SessionGetter, account common.Address, interval time.Duration, onEvent func(*MonitorSessionEvent)) error {
	if interval <= 0 {
		return ErrIntervalMustBePositive
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var last *MonitorSessionEvent
	for {
		cred, err := getter.GetValidSession(ctx, account)
		if err != nil {
			return err
		}

		event := &MonitorSessionEvent{
			CheckedAt: time.Now().UTC(),
			Account:   account.Hex(),
			Usable:    cred != nil,
		}
		if cred != nil {
			sessionHash, err := cred.Hash()
			if err != nil {
				return err
			}
			event.SessionHash = sessionHash.Hex()
		}

		if last == nil || last.Usable != event.Usable || last.SessionHash != event.SessionHash {
			onEvent(event)
		}
		last = event

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func BuildCmdMonitorSession(w io.Writer, handler MonitorSessionHandler, rf *RootFlags) *cobra.Command {
	f := &MonitorSessionFlags{}

	cmd := &cobra.Command{
		Use:     "monitor",
		Short:   "Check the session of the account at regular interval",
		Long:    monitorSessionLong,
		Example: monitorSessionExample,
		RunE: func(cmd *cobra.Command, _ []string) error {
			account, err := f.Validate()
			if err != nil {
				return err
			}

			onEvent := func(event *MonitorSessionEvent) {
				switch rf.Output {
				case flags.InteractiveOutput:
					PrintMonitorSessionEvent(w, event)
				case flags.JSONOutput:
					_ = printer.FprintJSON(w, event)
				}
			}

			return handler(cmd.Context(), account, f, onEvent)
		},
	}

	f.register(cmd)
	cmd.Flags().DurationVar(&f.Interval,
		"interval",
		defaultMonitoringInterval,
		"Time between two checks",
	)

	return cmd
}

type MonitorSessionFlags struct {
	AccountFlags
	Interval time.Duration
}

func (f *MonitorSessionFlags) Validate() (common.Address, error) {
	account, err := f.AccountFlags.Validate()
	if err != nil {
		return common.Address{}, err
	}
	if f.Interval <= 0 {
		return common.Address{}, flags.InvalidFlagFormatError("interval", ErrIntervalMustBePositive)
	}
	return account, nil
}

func PrintMonitorSessionEvent(w io.Writer, event *MonitorSessionEvent) {
	p := printer.NewInteractivePrinter(w)

	str := p.String()
	defer p.Print(str)

	str.Text(event.CheckedAt.Format(time.RFC3339)).Text(" ")
	if event.Usable {
		str.CheckMark().SuccessText("The session is usable: ").Bold(event.SessionHash).NextLine()
	} else {
		str.CrossMark().DangerText("No usable session for ").Bold(event.Account).NextLine()
	}
}
