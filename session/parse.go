package session

import (
	"fmt"

	vgjson "github.com/abstract-foundation/agw-session-keys/libs/json"
)

// ParseConfig converts an external value into a validated configuration.
// It accepts the ABI mirror, as unpacked from a contract event, or an
// untyped tree, such as a decoded JSON document. In the latter case, any
// field that is missing, unknown or of the wrong type is rejected.
func ParseConfig(raw interface{}) (Config, error) {
	var cfg Config

	switch v := raw.(type) {
	case nil:
		return Config{}, ErrSessionIsMissing
	case ABISessionSpec:
		cfg = FromABI(v)
	case *ABISessionSpec:
		if v == nil {
			return Config{}, ErrSessionIsMissing
		}
		cfg = FromABI(*v)
	default:
		if err := vgjson.DecodeTree(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("could not parse the session: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid session: %w", err)
	}

	return cfg, nil
}

// ParseCredential converts an untyped tree, such as a decoded JSON
// document, into a validated credential.
func ParseCredential(raw interface{}) (Credential, error) {
	if raw == nil {
		return Credential{}, ErrSessionIsMissing
	}

	cred := Credential{}
	if err := vgjson.DecodeTree(raw, &cred); err != nil {
		return Credential{}, fmt.Errorf("could not parse the credential: %w", err)
	}

	if err := cred.Validate(); err != nil {
		return Credential{}, fmt.Errorf("invalid credential: %w", err)
	}

	return cred, nil
}

// FromABI converts the ABI mirror into a configuration. The result is not
// validated.
func FromABI(spec ABISessionSpec) Config {
	cfg := Config{
		Signer:           spec.Signer,
		ExpiresAt:        orZero(spec.ExpiresAt),
		FeeLimit:         usageLimitFromABI(spec.FeeLimit),
		CallPolicies:     make([]CallPolicy, 0, len(spec.CallPolicies)),
		TransferPolicies: make([]TransferPolicy, 0, len(spec.TransferPolicies)),
	}

	for _, p := range spec.CallPolicies {
		policy := CallPolicy{
			Target:         p.Target,
			Selector:       p.Selector,
			MaxValuePerUse: orZero(p.MaxValuePerUse),
			ValueLimit:     usageLimitFromABI(p.ValueLimit),
			Constraints:    make([]Constraint, 0, len(p.Constraints)),
		}
		for _, c := range p.Constraints {
			policy.Constraints = append(policy.Constraints, Constraint{
				Condition: ConstraintCondition(c.Condition),
				Index:     c.Index,
				RefValue:  c.RefValue,
				Limit:     usageLimitFromABI(c.Limit),
			})
		}
		cfg.CallPolicies = append(cfg.CallPolicies, policy)
	}

	for _, p := range spec.TransferPolicies {
		cfg.TransferPolicies = append(cfg.TransferPolicies, TransferPolicy{
			Target:         p.Target,
			MaxValuePerUse: orZero(p.MaxValuePerUse),
			ValueLimit:     usageLimitFromABI(p.ValueLimit),
		})
	}

	return cfg
}

func usageLimitFromABI(l ABIUsageLimit) UsageLimit {
	return UsageLimit{
		Type:   LimitType(l.LimitType),
		Limit:  orZero(l.Limit),
		Period: orZero(l.Period),
	}
}
