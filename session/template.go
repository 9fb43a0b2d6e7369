package session

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Template is the default policy of the application. Every session created
// by the application is an instance of it, and a stored session that is no
// longer an instance of it is discarded.
type Template struct {
	ExpiresIn        time.Duration
	FeeLimit         UsageLimit
	CallPolicies     []CallPolicy
	TransferPolicies []TransferPolicy
}

func (t Template) Validate() error {
	if t.ExpiresIn <= 0 {
		return ErrExpiryDurationMustBePositive
	}
	return validatePolicies(t.FeeLimit, t.CallPolicies, t.TransferPolicies)
}

func (t Template) Shape() Shape {
	return Shape{
		FeeLimit:         t.FeeLimit,
		CallPolicies:     t.CallPolicies,
		TransferPolicies: t.TransferPolicies,
	}
}

// Instantiate builds the policy of a new session for the given signer. The
// expiry is truncated to the second.
func (t Template) Instantiate(signer common.Address, now time.Time) Config {
	shape := t.Shape().normalised()
	return Config{
		Signer:           signer,
		ExpiresAt:        big.NewInt(now.Add(t.ExpiresIn).Unix()),
		FeeLimit:         shape.FeeLimit,
		CallPolicies:     shape.CallPolicies,
		TransferPolicies: shape.TransferPolicies,
	}
}

// CoversExpiry reports whether a session expiring at expiresAt could have
// been instantiated from the template at or before now.
func (t Template) CoversExpiry(expiresAt *big.Int, now time.Time) bool {
	if expiresAt == nil {
		return false
	}
	return expiresAt.Cmp(big.NewInt(now.Add(t.ExpiresIn).Unix())) <= 0
}
