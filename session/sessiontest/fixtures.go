package sessiontest

import (
	"math/big"
	"testing"
	"time"

	"github.com/abstract-foundation/agw-session-keys/session"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

var (
	// TransferSelector is the selector of transfer(address,uint256).
	TransferSelector = session.Selector{0xa9, 0x05, 0x9c, 0xbb}

	TokenAddress     = common.HexToAddress("0xE4C7fBB0a626ed208021ccabA6Be1566905E2dFc")
	RecipientAddress = common.HexToAddress("0x8e729E23CDc8bC21c37a73DA4bA9ebdddA3C8B6d")
)

// BigIntComparer compares big integers by value.
var BigIntComparer = cmp.Comparer(func(a, b *big.Int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Cmp(b) == 0
})

// NewTemplate returns a policy allowing token transfers capped per use,
// and plain value transfers to a single recipient.
func NewTemplate() session.Template {
	return session.Template{
		ExpiresIn: 24 * time.Hour,
		FeeLimit:  session.Lifetime(big.NewInt(1_000_000_000_000_000)),
		CallPolicies: []session.CallPolicy{
			{
				Target:         TokenAddress,
				Selector:       TransferSelector,
				MaxValuePerUse: big.NewInt(0),
				ValueLimit:     session.Unlimited(),
				Constraints: []session.Constraint{
					{
						Condition: session.ConditionEqual,
						Index:     0,
						RefValue:  common.BytesToHash(RecipientAddress.Bytes()),
						Limit:     session.Unlimited(),
					},
				},
			},
		},
		TransferPolicies: []session.TransferPolicy{
			{
				Target:         RecipientAddress,
				MaxValuePerUse: big.NewInt(100_000_000_000_000),
				ValueLimit:     session.Allowance(big.NewInt(1_000_000_000_000_000), big.NewInt(86400)),
			},
		},
	}
}

func NewCredential(t *testing.T, account common.Address, template session.Template, now time.Time) session.Credential {
	t.Helper()

	key, encodedKey, err := session.GenerateSignerKey()
	require.NoError(t, err)

	return session.Credential{
		Account:   account,
		SignerKey: encodedKey,
		Config:    template.Instantiate(crypto.PubkeyToAddress(key.PublicKey), now),
	}
}

func RandomAddress(t *testing.T) common.Address {
	t.Helper()

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	return crypto.PubkeyToAddress(key.PublicKey)
}

func AssertEqualCredential(t *testing.T, expected, actual session.Credential) {
	t.Helper()

	if diff := cmp.Diff(expected, actual, BigIntComparer); diff != "" {
		t.Errorf("credentials differ (-expected +actual):\n%s", diff)
	}
}

func AssertEqualConfig(t *testing.T, expected, actual session.Config) {
	t.Helper()

	if diff := cmp.Diff(expected, actual, BigIntComparer); diff != "" {
		t.Errorf("sessions differ (-expected +actual):\n%s", diff)
	}
}
