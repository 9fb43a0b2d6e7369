package flags

import (
	"fmt"
)

type FlagError struct {
	message string
}

func (f FlagError) Error() string {
	return f.message
}

func MustBeSpecifiedError(name string) error {
	return FlagError{
		message: fmt.Sprintf("--%s flag must be specified", name),
	}
}

func InvalidFlagFormatError(name string, err error) error {
	return FlagError{
		message: fmt.Sprintf("--%s flag has not a valid format: %v", name, err),
	}
}

func MutuallyExclusiveError(n1, n2 string) error {
	return FlagError{
		message: fmt.Sprintf("--%s and --%s flags are mutually exclusive", n1, n2),
	}
}
