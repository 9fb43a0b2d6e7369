package session

import (
	"errors"
	"fmt"
)

var (
	ErrSignerIsRequired             = errors.New("the session signer is required")
	ErrExpiryIsRequired             = errors.New("the session expiry is required")
	ErrExpiryDurationMustBePositive = errors.New("the session expiry duration must be greater than 0")
	ErrValueOutOfRange              = errors.New("the value does not fit in 256 bits")
	ErrUnlimitedMustHaveNoLimit     = errors.New("an unlimited usage limit cannot have a limit or a period")
	ErrLifetimeMustHaveNoPeriod     = errors.New("a lifetime usage limit cannot have a period")
	ErrAllowanceRequiresPeriod      = errors.New("an allowance usage limit requires a period greater than 0")
	ErrSignerKeyIsRequired          = errors.New("the signer key is required")
	ErrSignerKeyDoesNotMatch        = errors.New("the signer key does not match the session signer")
	ErrAccountIsRequired            = errors.New("the account is required")
	ErrPolicyMismatch               = errors.New("the session policy does not match the expected policy")
	ErrExpiryBeyondPolicy           = errors.New("the session expires later than the expected policy allows")
	ErrSessionExpired               = errors.New("the session has expired")
	ErrCallNotAllowed               = errors.New("the session does not allow this call")
	ErrValueExceedsLimit            = errors.New("the value exceeds the maximum value per use")
	ErrConstraintViolated           = errors.New("the call data violates a constraint of the session")
	ErrSessionIsMissing             = errors.New("the session is missing")
)

type UnknownLimitTypeError struct {
	Value uint8
}

func (e UnknownLimitTypeError) Error() string {
	return fmt.Sprintf("the limit type %d is not supported", e.Value)
}

type UnknownConditionError struct {
	Value uint8
}

func (e UnknownConditionError) Error() string {
	return fmt.Sprintf("the constraint condition %d is not supported", e.Value)
}

type UnknownStatusError struct {
	Value uint8
}

func (e UnknownStatusError) Error() string {
	return fmt.Sprintf("the session status %d is not supported", e.Value)
}
