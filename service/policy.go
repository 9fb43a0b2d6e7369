package service

import (
	"errors"
	"fmt"
	"math/big"
	"time"

	vgcrypto "github.com/abstract-foundation/agw-session-keys/libs/crypto"
	vgencoding "github.com/abstract-foundation/agw-session-keys/libs/encoding"
	"github.com/abstract-foundation/agw-session-keys/session"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

const defaultFeeLimit = "1000000000000000"

var ErrInvalidInteger = errors.New("the value is not a valid integer")

// PolicyConfig is the default policy of the sessions created by the
// application. Amounts are expressed in wei, as decimal or 0x-prefixed
// hexadecimal strings, since TOML integers cannot hold them.
type PolicyConfig struct {
	ExpiresIn        vgencoding.Duration    `toml:"expires_in"`
	FeeLimit         UsageLimitConfig       `toml:"fee_limit"`
	CallPolicies     []CallPolicyConfig     `toml:"call_policies"`
	TransferPolicies []TransferPolicyConfig `toml:"transfer_policies"`
}

type UsageLimitConfig struct {
	Type   string `toml:"type"`
	Limit  string `toml:"limit,omitempty"`
	Period string `toml:"period,omitempty"`
}

type ConstraintConfig struct {
	Condition string           `toml:"condition"`
	Index     uint64           `toml:"index"`
	RefValue  string           `toml:"ref_value"`
	Limit     UsageLimitConfig `toml:"limit"`
}

type CallPolicyConfig struct {
	Target         string             `toml:"target"`
	Selector       string             `toml:"selector"`
	MaxValuePerUse string             `toml:"max_value_per_use"`
	ValueLimit     UsageLimitConfig   `toml:"value_limit"`
	Constraints    []ConstraintConfig `toml:"constraints"`
}

type TransferPolicyConfig struct {
	Target         string           `toml:"target"`
	MaxValuePerUse string           `toml:"max_value_per_use"`
	ValueLimit     UsageLimitConfig `toml:"value_limit"`
}

func DefaultPolicyConfig() PolicyConfig {
	return PolicyConfig{
		ExpiresIn: vgencoding.Duration{Duration: 24 * time.Hour},
		FeeLimit: UsageLimitConfig{
			Type:  session.LimitLifetime.String(),
			Limit: defaultFeeLimit,
		},
	}
}

// Template converts the configuration into a validated session template.
func (c PolicyConfig) Template() (session.Template, error) {
	feeLimit, err := c.FeeLimit.toUsageLimit()
	if err != nil {
		return session.Template{}, fmt.Errorf("invalid fee limit: %w", err)
	}

	template := session.Template{
		ExpiresIn:        c.ExpiresIn.Get(),
		FeeLimit:         feeLimit,
		CallPolicies:     make([]session.CallPolicy, 0, len(c.CallPolicies)),
		TransferPolicies: make([]session.TransferPolicy, 0, len(c.TransferPolicies)),
	}

	for i, p := range c.CallPolicies {
		policy, err := p.toCallPolicy()
		if err != nil {
			return session.Template{}, fmt.Errorf("invalid call policy %d: %w", i, err)
		}
		template.CallPolicies = append(template.CallPolicies, policy)
	}

	for i, p := range c.TransferPolicies {
		policy, err := p.toTransferPolicy()
		if err != nil {
			return session.Template{}, fmt.Errorf("invalid transfer policy %d: %w", i, err)
		}
		template.TransferPolicies = append(template.TransferPolicies, policy)
	}

	if err := template.Validate(); err != nil {
		return session.Template{}, err
	}

	return template, nil
}

func (c UsageLimitConfig) toUsageLimit() (session.UsageLimit, error) {
	limitType, err := parseLimitType(c.Type)
	if err != nil {
		return session.UsageLimit{}, err
	}

	limit, err := parseInteger(c.Limit)
	if err != nil {
		return session.UsageLimit{}, fmt.Errorf("invalid limit: %w", err)
	}

	period, err := parseInteger(c.Period)
	if err != nil {
		return session.UsageLimit{}, fmt.Errorf("invalid period: %w", err)
	}

	return session.UsageLimit{
		Type:   limitType,
		Limit:  limit,
		Period: period,
	}, nil
}

func (c CallPolicyConfig) toCallPolicy() (session.CallPolicy, error) {
	target, err := vgcrypto.ParseEthereumAddress(c.Target)
	if err != nil {
		return session.CallPolicy{}, fmt.Errorf("invalid target: %w", err)
	}

	var selector session.Selector
	if err := selector.UnmarshalText([]byte(c.Selector)); err != nil {
		return session.CallPolicy{}, fmt.Errorf("invalid selector: %w", err)
	}

	maxValuePerUse, err := parseInteger(c.MaxValuePerUse)
	if err != nil {
		return session.CallPolicy{}, fmt.Errorf("invalid maximum value per use: %w", err)
	}

	valueLimit, err := c.ValueLimit.toUsageLimit()
	if err != nil {
		return session.CallPolicy{}, fmt.Errorf("invalid value limit: %w", err)
	}

	policy := session.CallPolicy{
		Target:         target,
		Selector:       selector,
		MaxValuePerUse: maxValuePerUse,
		ValueLimit:     valueLimit,
		Constraints:    make([]session.Constraint, 0, len(c.Constraints)),
	}

	for i, cc := range c.Constraints {
		constraint, err := cc.toConstraint()
		if err != nil {
			return session.CallPolicy{}, fmt.Errorf("invalid constraint %d: %w", i, err)
		}
		policy.Constraints = append(policy.Constraints, constraint)
	}

	return policy, nil
}

func (c ConstraintConfig) toConstraint() (session.Constraint, error) {
	condition, err := parseCondition(c.Condition)
	if err != nil {
		return session.Constraint{}, err
	}

	refValue, err := parseWord(c.RefValue)
	if err != nil {
		return session.Constraint{}, fmt.Errorf("invalid reference value: %w", err)
	}

	limit, err := c.Limit.toUsageLimit()
	if err != nil {
		return session.Constraint{}, fmt.Errorf("invalid limit: %w", err)
	}

	return session.Constraint{
		Condition: condition,
		Index:     c.Index,
		RefValue:  refValue,
		Limit:     limit,
	}, nil
}

func (c TransferPolicyConfig) toTransferPolicy() (session.TransferPolicy, error) {
	target, err := vgcrypto.ParseEthereumAddress(c.Target)
	if err != nil {
		return session.TransferPolicy{}, fmt.Errorf("invalid target: %w", err)
	}

	maxValuePerUse, err := parseInteger(c.MaxValuePerUse)
	if err != nil {
		return session.TransferPolicy{}, fmt.Errorf("invalid maximum value per use: %w", err)
	}

	valueLimit, err := c.ValueLimit.toUsageLimit()
	if err != nil {
		return session.TransferPolicy{}, fmt.Errorf("invalid value limit: %w", err)
	}

	return session.TransferPolicy{
		Target:         target,
		MaxValuePerUse: maxValuePerUse,
		ValueLimit:     valueLimit,
	}, nil
}

// An empty limit type is read as unlimited.
func parseLimitType(s string) (session.LimitType, error) {
	if s == "" {
		return session.LimitUnlimited, nil
	}
	for _, t := range []session.LimitType{session.LimitUnlimited, session.LimitLifetime, session.LimitAllowance} {
		if t.String() == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unsupported limit type %q", s)
}

func parseCondition(s string) (session.ConstraintCondition, error) {
	for c := session.ConditionUnconstrained; c <= session.ConditionNotEqual; c++ {
		if c.String() == s {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unsupported constraint condition %q", s)
}

// parseInteger reads an empty string as 0.
func parseInteger(s string) (*big.Int, error) {
	if s == "" {
		return big.NewInt(0), nil
	}
	n, ok := new(big.Int).SetString(s, 0)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidInteger, s)
	}
	return n, nil
}

// parseWord reads a 32-byte value given as hexadecimal, or an address,
// left-padded.
func parseWord(s string) (common.Hash, error) {
	if s == "" {
		return common.Hash{}, nil
	}
	buf, err := hexutil.Decode(s)
	if err != nil {
		return common.Hash{}, err
	}
	if len(buf) > common.HashLength {
		return common.Hash{}, fmt.Errorf("the value is longer than %d bytes", common.HashLength)
	}
	return common.BytesToHash(buf), nil
}
