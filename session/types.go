package session

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// LimitType defines how a usage limit is enforced by the session key
// validator.
type LimitType uint8

const (
	// LimitUnlimited does not restrict the usage.
	LimitUnlimited LimitType = iota
	// LimitLifetime caps the cumulative usage over the whole session.
	LimitLifetime
	// LimitAllowance caps the cumulative usage per period.
	LimitAllowance
)

func (t LimitType) String() string {
	switch t {
	case LimitUnlimited:
		return "unlimited"
	case LimitLifetime:
		return "lifetime"
	case LimitAllowance:
		return "allowance"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

// ConstraintCondition is the comparison applied between a call data
// parameter and the reference value of a constraint.
type ConstraintCondition uint8

const (
	ConditionUnconstrained ConstraintCondition = iota
	ConditionEqual
	ConditionGreater
	ConditionLess
	ConditionGreaterOrEqual
	ConditionLessOrEqual
	ConditionNotEqual
)

func (c ConstraintCondition) String() string {
	switch c {
	case ConditionUnconstrained:
		return "unconstrained"
	case ConditionEqual:
		return "equal"
	case ConditionGreater:
		return "greater"
	case ConditionLess:
		return "less"
	case ConditionGreaterOrEqual:
		return "greater-or-equal"
	case ConditionLessOrEqual:
		return "less-or-equal"
	case ConditionNotEqual:
		return "not-equal"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

// Status is the on-chain state of a session.
type Status uint8

const (
	StatusNotInitialized Status = iota
	StatusActive
	StatusClosed
	StatusExpired
)

func (s Status) String() string {
	switch s {
	case StatusNotInitialized:
		return "not-initialized"
	case StatusActive:
		return "active"
	case StatusClosed:
		return "closed"
	case StatusExpired:
		return "expired"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(s))
	}
}

// ParseStatus converts the raw value returned by the validator contract.
func ParseStatus(raw uint8) (Status, error) {
	status := Status(raw)
	if status > StatusExpired {
		return 0, UnknownStatusError{Value: raw}
	}
	return status, nil
}

// Selector is a 4-byte function selector.
type Selector [4]byte

func (s Selector) MarshalText() ([]byte, error) {
	return []byte(hexutil.Encode(s[:])), nil
}

func (s *Selector) UnmarshalText(text []byte) error {
	buf, err := hexutil.Decode(string(text))
	if err != nil {
		return fmt.Errorf("invalid selector %q: %w", string(text), err)
	}
	if len(buf) != len(s) {
		return fmt.Errorf("invalid selector %q: expected %d bytes", string(text), len(s))
	}
	copy(s[:], buf)
	return nil
}

func (s Selector) String() string {
	return hexutil.Encode(s[:])
}

type UsageLimit struct {
	Type   LimitType `json:"limitType"`
	Limit  *big.Int  `json:"limit"`
	Period *big.Int  `json:"period"`
}

func Unlimited() UsageLimit {
	return UsageLimit{
		Type:   LimitUnlimited,
		Limit:  big.NewInt(0),
		Period: big.NewInt(0),
	}
}

func Lifetime(limit *big.Int) UsageLimit {
	return UsageLimit{
		Type:   LimitLifetime,
		Limit:  limit,
		Period: big.NewInt(0),
	}
}

func Allowance(limit, period *big.Int) UsageLimit {
	return UsageLimit{
		Type:   LimitAllowance,
		Limit:  limit,
		Period: period,
	}
}

type Constraint struct {
	Condition ConstraintCondition `json:"condition"`
	// Index is the position of the 32-byte parameter in the call data,
	// after the selector.
	Index    uint64      `json:"index"`
	RefValue common.Hash `json:"refValue"`
	Limit    UsageLimit  `json:"limit"`
}

// CallPolicy authorises calls to a function of a contract.
type CallPolicy struct {
	Target         common.Address `json:"target"`
	Selector       Selector       `json:"selector"`
	MaxValuePerUse *big.Int       `json:"maxValuePerUse"`
	ValueLimit     UsageLimit     `json:"valueLimit"`
	Constraints    []Constraint   `json:"constraints"`
}

// TransferPolicy authorises plain value transfers to an address.
type TransferPolicy struct {
	Target         common.Address `json:"target"`
	MaxValuePerUse *big.Int       `json:"maxValuePerUse"`
	ValueLimit     UsageLimit     `json:"valueLimit"`
}

// Config is the policy attached to a session signer. It must not be
// mutated once the session is created: any change requires a new signer
// and a new session.
type Config struct {
	Signer common.Address `json:"signer"`
	// ExpiresAt is a unix timestamp, in seconds.
	ExpiresAt        *big.Int         `json:"expiresAt"`
	FeeLimit         UsageLimit       `json:"feeLimit"`
	CallPolicies     []CallPolicy     `json:"callPolicies"`
	TransferPolicies []TransferPolicy `json:"transferPolicies"`
}
