package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/abstract-foundation/agw-session-keys/cmd/agwsession/commands/flags"
	"github.com/abstract-foundation/agw-session-keys/cmd/agwsession/commands/printer"
	"github.com/abstract-foundation/agw-session-keys/libs/encoding"
	vgterm "github.com/abstract-foundation/agw-session-keys/libs/term"
	vgzap "github.com/abstract-foundation/agw-session-keys/libs/zap"
	"github.com/abstract-foundation/agw-session-keys/logging"
	"github.com/abstract-foundation/agw-session-keys/paths"
	"github.com/abstract-foundation/agw-session-keys/service"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type Error struct {
	Err string `json:"error"`
}

type Writer struct {
	Out io.Writer
	Err io.Writer
}

func Execute(w *Writer) {
	c := NewCmdRoot(w.Out)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	execErr := c.ExecuteContext(ctx)
	if execErr == nil {
		return
	}

	defer os.Exit(1)

	if errors.Is(execErr, flags.ErrUnsupportedOutput) {
		_, _ = fmt.Fprintln(w.Err, execErr)
	}

	output, _ := c.Flags().GetString("output")
	switch output {
	case flags.InteractiveOutput:
		fprintErrorInteractive(w, execErr)
	case flags.JSONOutput:
		fprintErrorJSON(w.Err, execErr)
	}
}

func fprintErrorInteractive(w *Writer, execErr error) {
	if vgterm.HasTTY() {
		p := printer.NewInteractivePrinter(w.Out)
		p.Print(p.String().CrossMark().DangerText("Error: ").DangerText(execErr.Error()).NextLine())
	} else {
		_, _ = fmt.Fprintln(w.Err, execErr)
	}
}

func fprintErrorJSON(w io.Writer, err error) {
	jsonErr := printer.FprintJSON(w, Error{
		Err: err.Error(),
	})
	if jsonErr != nil {
		_, _ = fmt.Fprintf(os.Stderr, "couldn't format error as JSON: %v\n", jsonErr)
		_, _ = fmt.Fprintf(os.Stderr, "original error: %v\n", err)
	}
}

func autoCompleteLogLevel(cmd *cobra.Command) {
	err := cmd.RegisterFlagCompletionFunc("level", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return vgzap.SupportedLogLevels, cobra.ShellCompDirectiveDefault
	})
	if err != nil {
		panic(err)
	}
}

// buildCmdLogger writes to stderr, so the output of the commands stays
// parsable.
func buildCmdLogger(agwPaths paths.Paths, output, level string, logFile service.LogFileConfig) (*zap.Logger, error) {
	logLevel := &encoding.LogLevel{}
	if err := logLevel.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	env := logging.ProdEnv
	if output == flags.InteractiveOutput {
		env = logging.DevEnv
	}

	if !logFile.Enabled {
		return logging.Build(env, logLevel.Get(), "stderr")
	}

	filename, err := agwPaths.CreateDataPathFor(paths.LogFile)
	if err != nil {
		return nil, fmt.Errorf("couldn't get the path for the log file: %w", err)
	}
	return logging.BuildWithRotation(env, logLevel.Get(), logging.Rotation{
		Filename:   filename,
		MaxSize:    logFile.MaxSizeMB,
		MaxAge:     logFile.MaxAgeDays,
		MaxBackups: logFile.MaxBackups,
	})
}

// withService runs the function against a service built from the
// configuration file of the home.
func withService(ctx context.Context, rf *RootFlags, passphraseFile string, fn func(svc *service.Service) error) error {
	agwPaths := paths.New(rf.Home)

	store, err := service.InitialiseConfigStore(agwPaths)
	if err != nil {
		return fmt.Errorf("couldn't initialise the configuration store: %w", err)
	}

	cfg, err := store.GetConfig()
	if err != nil {
		return err
	}

	level := rf.LogLevel
	if level == "" {
		level = cfg.LogLevel.String()
	}
	log, err := buildCmdLogger(agwPaths, rf.Output, level, cfg.LogFile)
	if err != nil {
		return err
	}
	defer vgzap.Sync(log)()

	var passphrase string
	if cfg.Storage.ProtectKeys {
		passphrase, err = flags.GetPassphrase(passphraseFile)
		if err != nil {
			return err
		}
	}

	svc, err := service.NewService(ctx, log, cfg, agwPaths, passphrase)
	if err != nil {
		return fmt.Errorf("couldn't start the session service: %w", err)
	}
	defer svc.Close()

	return fn(svc)
}
