package flags

import (
	"errors"
)

const (
	InteractiveOutput = "interactive"
	JSONOutput        = "json"
)

var (
	ErrUnsupportedOutput = errors.New("unsupported output")

	AvailableOutputs = []string{
		InteractiveOutput,
		JSONOutput,
	}
)

func ValidateOutput(output string) error {
	if len(output) == 0 {
		return MustBeSpecifiedError("output")
	}

	for _, o := range AvailableOutputs {
		if output == o {
			return nil
		}
	}

	// Errors are printed according to the output, so an unsupported output
	// gets its own error to be told apart.
	return ErrUnsupportedOutput
}
