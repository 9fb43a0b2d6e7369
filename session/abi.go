package session

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// The ABI mirror of the SessionSpec structure of the session key
// validator contract. The abi tags map the fields to the tuple components.

type ABIUsageLimit struct {
	LimitType uint8    `abi:"limitType"`
	Limit     *big.Int `abi:"limit"`
	Period    *big.Int `abi:"period"`
}

type ABIConstraint struct {
	Condition uint8         `abi:"condition"`
	Index     uint64        `abi:"index"`
	RefValue  [32]byte      `abi:"refValue"`
	Limit     ABIUsageLimit `abi:"limit"`
}

type ABICallSpec struct {
	Target         common.Address  `abi:"target"`
	Selector       [4]byte         `abi:"selector"`
	MaxValuePerUse *big.Int        `abi:"maxValuePerUse"`
	ValueLimit     ABIUsageLimit   `abi:"valueLimit"`
	Constraints    []ABIConstraint `abi:"constraints"`
}

type ABITransferSpec struct {
	Target         common.Address `abi:"target"`
	MaxValuePerUse *big.Int       `abi:"maxValuePerUse"`
	ValueLimit     ABIUsageLimit  `abi:"valueLimit"`
}

type ABISessionSpec struct {
	Signer           common.Address    `abi:"signer"`
	ExpiresAt        *big.Int          `abi:"expiresAt"`
	FeeLimit         ABIUsageLimit     `abi:"feeLimit"`
	CallPolicies     []ABICallSpec     `abi:"callPolicies"`
	TransferPolicies []ABITransferSpec `abi:"transferPolicies"`
}

var (
	usageLimitComponents = []abi.ArgumentMarshaling{
		{Name: "limitType", Type: "uint8"},
		{Name: "limit", Type: "uint256"},
		{Name: "period", Type: "uint256"},
	}

	// SpecComponents describes the SessionSpec tuple, so other packages can
	// build contract definitions that use it.
	SpecComponents = []abi.ArgumentMarshaling{
		{Name: "signer", Type: "address"},
		{Name: "expiresAt", Type: "uint256"},
		{Name: "feeLimit", Type: "tuple", Components: usageLimitComponents},
		{Name: "callPolicies", Type: "tuple[]", Components: []abi.ArgumentMarshaling{
			{Name: "target", Type: "address"},
			{Name: "selector", Type: "bytes4"},
			{Name: "maxValuePerUse", Type: "uint256"},
			{Name: "valueLimit", Type: "tuple", Components: usageLimitComponents},
			{Name: "constraints", Type: "tuple[]", Components: []abi.ArgumentMarshaling{
				{Name: "condition", Type: "uint8"},
				{Name: "index", Type: "uint64"},
				{Name: "refValue", Type: "bytes32"},
				{Name: "limit", Type: "tuple", Components: usageLimitComponents},
			}},
		}},
		{Name: "transferPolicies", Type: "tuple[]", Components: []abi.ArgumentMarshaling{
			{Name: "target", Type: "address"},
			{Name: "maxValuePerUse", Type: "uint256"},
			{Name: "valueLimit", Type: "tuple", Components: usageLimitComponents},
		}},
	}

	specArguments = mustSpecArguments()
)

func mustSpecArguments() abi.Arguments {
	specType, err := abi.NewType("tuple", "struct SessionLib.SessionSpec", SpecComponents)
	if err != nil {
		panic(fmt.Errorf("invalid session spec ABI definition: %w", err))
	}
	return abi.Arguments{{Name: "sessionSpec", Type: specType}}
}

// ABI converts the configuration into its ABI mirror. Missing integers are
// encoded as 0 and missing lists as empty lists.
func (c Config) ABI() ABISessionSpec {
	spec := ABISessionSpec{
		Signer:           c.Signer,
		ExpiresAt:        orZero(c.ExpiresAt),
		FeeLimit:         c.FeeLimit.abi(),
		CallPolicies:     make([]ABICallSpec, 0, len(c.CallPolicies)),
		TransferPolicies: make([]ABITransferSpec, 0, len(c.TransferPolicies)),
	}

	for _, p := range c.CallPolicies {
		callSpec := ABICallSpec{
			Target:         p.Target,
			Selector:       p.Selector,
			MaxValuePerUse: orZero(p.MaxValuePerUse),
			ValueLimit:     p.ValueLimit.abi(),
			Constraints:    make([]ABIConstraint, 0, len(p.Constraints)),
		}
		for _, ct := range p.Constraints {
			callSpec.Constraints = append(callSpec.Constraints, ABIConstraint{
				Condition: uint8(ct.Condition),
				Index:     ct.Index,
				RefValue:  ct.RefValue,
				Limit:     ct.Limit.abi(),
			})
		}
		spec.CallPolicies = append(spec.CallPolicies, callSpec)
	}

	for _, p := range c.TransferPolicies {
		spec.TransferPolicies = append(spec.TransferPolicies, ABITransferSpec{
			Target:         p.Target,
			MaxValuePerUse: orZero(p.MaxValuePerUse),
			ValueLimit:     p.ValueLimit.abi(),
		})
	}

	return spec
}

func (l UsageLimit) abi() ABIUsageLimit {
	return ABIUsageLimit{
		LimitType: uint8(l.Type),
		Limit:     orZero(l.Limit),
		Period:    orZero(l.Period),
	}
}

// Encode returns the ABI encoding of the configuration, as a single
// SessionSpec parameter.
func (c Config) Encode() ([]byte, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	buf, err := specArguments.Pack(c.ABI())
	if err != nil {
		return nil, fmt.Errorf("could not ABI encode the session: %w", err)
	}
	return buf, nil
}

// Hash returns the session hash: the keccak256 of the ABI encoded
// configuration. It identifies the session on-chain and does not depend on
// the signer private key.
func (c Config) Hash() (common.Hash, error) {
	buf, err := c.Encode()
	if err != nil {
		return common.Hash{}, err
	}
	return crypto.Keccak256Hash(buf), nil
}
