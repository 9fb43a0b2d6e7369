package session

import (
	"bytes"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

const (
	selectorSize = 4
	wordSize     = 32
)

// Call is a transaction to be sent with a session signer.
type Call struct {
	To    common.Address `json:"to"`
	Value *big.Int       `json:"value"`
	Data  []byte         `json:"data"`
}

// Authorize verifies the call is allowed by the policy, the way the session
// key validator would. Cumulative usage limits are tracked on-chain and
// are not verified here.
func (c Config) Authorize(call Call, now time.Time) error {
	if c.ExpiresAt == nil || c.ExpiresAt.Cmp(big.NewInt(now.Unix())) <= 0 {
		return ErrSessionExpired
	}

	value := orZero(call.Value)

	if len(call.Data) < selectorSize {
		for _, p := range c.TransferPolicies {
			if p.Target != call.To {
				continue
			}
			if value.Cmp(orZero(p.MaxValuePerUse)) > 0 {
				return ErrValueExceedsLimit
			}
			return nil
		}
		return fmt.Errorf("%w: no transfer policy for %s", ErrCallNotAllowed, call.To.Hex())
	}

	var selector Selector
	copy(selector[:], call.Data[:selectorSize])

	for _, p := range c.CallPolicies {
		if p.Target != call.To || p.Selector != selector {
			continue
		}
		if value.Cmp(orZero(p.MaxValuePerUse)) > 0 {
			return ErrValueExceedsLimit
		}
		for i, constraint := range p.Constraints {
			if !constraint.Allows(call.Data) {
				return fmt.Errorf("%w: constraint %d on parameter %d", ErrConstraintViolated, i, constraint.Index)
			}
		}
		return nil
	}

	return fmt.Errorf("%w: no call policy for %s on %s", ErrCallNotAllowed, selector, call.To.Hex())
}

// Allows verifies the call data parameter targeted by the constraint
// satisfies its condition. The parameter is compared to the reference
// value as an unsigned 32-byte word.
func (c Constraint) Allows(data []byte) bool {
	if c.Condition == ConditionUnconstrained {
		return true
	}

	start := uint64(selectorSize) + c.Index*wordSize
	if c.Index > (uint64(len(data))/wordSize) || start+wordSize > uint64(len(data)) {
		return false
	}

	cmp := bytes.Compare(data[start:start+wordSize], c.RefValue[:])
	switch c.Condition {
	case ConditionEqual:
		return cmp == 0
	case ConditionGreater:
		return cmp > 0
	case ConditionLess:
		return cmp < 0
	case ConditionGreaterOrEqual:
		return cmp >= 0
	case ConditionLessOrEqual:
		return cmp <= 0
	case ConditionNotEqual:
		return cmp != 0
	default:
		return false
	}
}
