package session

import (
	"bytes"
	"fmt"

	vgjson "github.com/abstract-foundation/agw-session-keys/libs/json"
)

// Shape is the part of a session policy that is fixed by the application:
// everything but the signer and the expiry, which differ from one session
// to another.
type Shape struct {
	FeeLimit         UsageLimit       `json:"feeLimit"`
	CallPolicies     []CallPolicy     `json:"callPolicies"`
	TransferPolicies []TransferPolicy `json:"transferPolicies"`
}

func ShapeOf(c Config) Shape {
	return Shape{
		FeeLimit:         c.FeeLimit,
		CallPolicies:     c.CallPolicies,
		TransferPolicies: c.TransferPolicies,
	}
}

// Canonical returns the canonical encoding of the shape. Missing integers
// are encoded as 0 and missing lists as empty lists, so a shape read back
// from storage encodes exactly like the one it was created from.
func (s Shape) Canonical() ([]byte, error) {
	buf, err := vgjson.Encode(s.normalised())
	if err != nil {
		return nil, fmt.Errorf("could not encode the session shape: %w", err)
	}
	return buf, nil
}

// SameShape returns true when both shapes have the exact same canonical
// encoding.
func SameShape(a, b Shape) (bool, error) {
	encodedA, err := a.Canonical()
	if err != nil {
		return false, err
	}
	encodedB, err := b.Canonical()
	if err != nil {
		return false, err
	}
	return bytes.Equal(encodedA, encodedB), nil
}

// normalised returns a deep copy of the shape.
func (s Shape) normalised() Shape {
	n := Shape{
		FeeLimit:         s.FeeLimit.normalised(),
		CallPolicies:     make([]CallPolicy, 0, len(s.CallPolicies)),
		TransferPolicies: make([]TransferPolicy, 0, len(s.TransferPolicies)),
	}

	for _, p := range s.CallPolicies {
		constraints := make([]Constraint, 0, len(p.Constraints))
		for _, c := range p.Constraints {
			constraints = append(constraints, Constraint{
				Condition: c.Condition,
				Index:     c.Index,
				RefValue:  c.RefValue,
				Limit:     c.Limit.normalised(),
			})
		}
		n.CallPolicies = append(n.CallPolicies, CallPolicy{
			Target:         p.Target,
			Selector:       p.Selector,
			MaxValuePerUse: orZero(p.MaxValuePerUse),
			ValueLimit:     p.ValueLimit.normalised(),
			Constraints:    constraints,
		})
	}

	for _, p := range s.TransferPolicies {
		n.TransferPolicies = append(n.TransferPolicies, TransferPolicy{
			Target:         p.Target,
			MaxValuePerUse: orZero(p.MaxValuePerUse),
			ValueLimit:     p.ValueLimit.normalised(),
		})
	}

	return n
}

func (l UsageLimit) normalised() UsageLimit {
	return UsageLimit{
		Type:   l.Type,
		Limit:  orZero(l.Limit),
		Period: orZero(l.Period),
	}
}
