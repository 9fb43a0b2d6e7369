package session

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Validate verifies the configuration can be registered on-chain.
func (c Config) Validate() error {
	if c.Signer == (common.Address{}) {
		return ErrSignerIsRequired
	}

	if c.ExpiresAt == nil || c.ExpiresAt.Sign() <= 0 {
		return ErrExpiryIsRequired
	}

	if err := checkUint256(c.ExpiresAt); err != nil {
		return fmt.Errorf("expiresAt: %w", err)
	}

	return validatePolicies(c.FeeLimit, c.CallPolicies, c.TransferPolicies)
}

func validatePolicies(feeLimit UsageLimit, callPolicies []CallPolicy, transferPolicies []TransferPolicy) error {
	if err := feeLimit.Validate(); err != nil {
		return fmt.Errorf("feeLimit: %w", err)
	}

	for i, p := range callPolicies {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("callPolicies[%d]: %w", i, err)
		}
	}

	for i, p := range transferPolicies {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("transferPolicies[%d]: %w", i, err)
		}
	}

	return nil
}

func (l UsageLimit) Validate() error {
	if err := checkUint256(l.Limit); err != nil {
		return fmt.Errorf("limit: %w", err)
	}
	if err := checkUint256(l.Period); err != nil {
		return fmt.Errorf("period: %w", err)
	}

	switch l.Type {
	case LimitUnlimited:
		if !isZero(l.Limit) || !isZero(l.Period) {
			return ErrUnlimitedMustHaveNoLimit
		}
	case LimitLifetime:
		if !isZero(l.Period) {
			return ErrLifetimeMustHaveNoPeriod
		}
	case LimitAllowance:
		if isZero(l.Period) {
			return ErrAllowanceRequiresPeriod
		}
	default:
		return UnknownLimitTypeError{Value: uint8(l.Type)}
	}
	return nil
}

func (c Constraint) Validate() error {
	if c.Condition > ConditionNotEqual {
		return UnknownConditionError{Value: uint8(c.Condition)}
	}
	if err := c.Limit.Validate(); err != nil {
		return fmt.Errorf("limit: %w", err)
	}
	return nil
}

func (p CallPolicy) Validate() error {
	if err := checkUint256(p.MaxValuePerUse); err != nil {
		return fmt.Errorf("maxValuePerUse: %w", err)
	}
	if err := p.ValueLimit.Validate(); err != nil {
		return fmt.Errorf("valueLimit: %w", err)
	}
	for i, c := range p.Constraints {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("constraints[%d]: %w", i, err)
		}
	}
	return nil
}

func (p TransferPolicy) Validate() error {
	if err := checkUint256(p.MaxValuePerUse); err != nil {
		return fmt.Errorf("maxValuePerUse: %w", err)
	}
	if err := p.ValueLimit.Validate(); err != nil {
		return fmt.Errorf("valueLimit: %w", err)
	}
	return nil
}

// checkUint256 accepts nil, which is treated as 0.
func checkUint256(n *big.Int) error {
	if n == nil {
		return nil
	}
	if n.Sign() < 0 {
		return ErrValueOutOfRange
	}
	if _, overflow := uint256.FromBig(n); overflow {
		return ErrValueOutOfRange
	}
	return nil
}

func isZero(n *big.Int) bool {
	return n == nil || n.Sign() == 0
}

func orZero(n *big.Int) *big.Int {
	if n == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(n)
}
