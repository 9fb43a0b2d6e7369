package flags

import (
	"errors"
	"fmt"
	"os"
	"strings"

	vgfs "github.com/abstract-foundation/agw-session-keys/libs/fs"
	vgterm "github.com/abstract-foundation/agw-session-keys/libs/term"

	"golang.org/x/term"
)

// PassphraseEnvVar holds the passphrase when neither a file nor a terminal
// is available.
const PassphraseEnvVar = "AGWSESSION_PASSPHRASE"

var (
	ErrPassphraseIsEmpty       = errors.New("the passphrase cannot be empty")
	ErrPassphraseCannotBeAsked = errors.New("the passphrase cannot be asked without a terminal")
)

// GetPassphrase reads the passphrase from the file if specified, then from
// the environment, and finally asks for it.
func GetPassphrase(passphraseFile string) (string, error) {
	if len(passphraseFile) != 0 {
		return ReadPassphraseFile(passphraseFile)
	}

	if passphrase, ok := os.LookupEnv(PassphraseEnvVar); ok {
		if passphrase == "" {
			return "", ErrPassphraseIsEmpty
		}
		return passphrase, nil
	}

	return promptForPassphrase()
}

func ReadPassphraseFile(passphraseFilePath string) (string, error) {
	rawPassphrase, err := vgfs.ReadFile(passphraseFilePath)
	if err != nil {
		return "", fmt.Errorf("couldn't read passphrase file: %w", err)
	}

	// Only the first line is the passphrase.
	passphrase := strings.Split(string(rawPassphrase), "\n")[0]
	if passphrase == "" {
		return "", ErrPassphraseIsEmpty
	}
	return passphrase, nil
}

func promptForPassphrase() (string, error) {
	if !vgterm.HasTTY() {
		return "", ErrPassphraseCannotBeAsked
	}

	fmt.Print("Enter passphrase: ") //nolint:forbidigo
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println() //nolint:forbidigo
	if err != nil {
		return "", fmt.Errorf("couldn't read password from input: %w", err)
	}

	if len(password) == 0 {
		return "", ErrPassphraseIsEmpty
	}
	return string(password), nil
}
