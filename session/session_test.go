package session_test

import (
	"math/big"
	"testing"
	"time"

	vgjson "github.com/abstract-foundation/agw-session-keys/libs/json"
	"github.com/abstract-foundation/agw-session-keys/session"
	"github.com/abstract-foundation/agw-session-keys/session/sessiontest"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatingConfig(t *testing.T) {
	t.Run("Validating an instance of the template succeeds", testValidatingInstanceOfTemplateSucceeds)
	t.Run("Validating invalid configurations fails", testValidatingInvalidConfigurationsFails)
	t.Run("Validating unknown enumerations fails", testValidatingUnknownEnumerationsFails)
	t.Run("Validating a template without expiry fails", testValidatingTemplateWithoutExpiryFails)
}

func testValidatingInstanceOfTemplateSucceeds(t *testing.T) {
	// given
	cfg := sessiontest.NewTemplate().Instantiate(sessiontest.RandomAddress(t), time.Now())

	// then
	require.NoError(t, cfg.Validate())
}

func testValidatingInvalidConfigurationsFails(t *testing.T) {
	overflow := new(big.Int).Lsh(big.NewInt(1), 256)

	tcs := []struct {
		name   string
		mutate func(*session.Config)
		err    error
	}{
		{
			name:   "without signer",
			mutate: func(c *session.Config) { c.Signer = common.Address{} },
			err:    session.ErrSignerIsRequired,
		}, {
			name:   "without expiry",
			mutate: func(c *session.Config) { c.ExpiresAt = nil },
			err:    session.ErrExpiryIsRequired,
		}, {
			name:   "with overflowing expiry",
			mutate: func(c *session.Config) { c.ExpiresAt = overflow },
			err:    session.ErrValueOutOfRange,
		}, {
			name:   "with negative fee limit",
			mutate: func(c *session.Config) { c.FeeLimit = session.Lifetime(big.NewInt(-1)) },
			err:    session.ErrValueOutOfRange,
		}, {
			name:   "with unlimited fee limit having a limit",
			mutate: func(c *session.Config) { c.FeeLimit = session.UsageLimit{Type: session.LimitUnlimited, Limit: big.NewInt(1)} },
			err:    session.ErrUnlimitedMustHaveNoLimit,
		}, {
			name:   "with lifetime fee limit having a period",
			mutate: func(c *session.Config) { c.FeeLimit = session.Allowance(big.NewInt(1), big.NewInt(1)); c.FeeLimit.Type = session.LimitLifetime },
			err:    session.ErrLifetimeMustHaveNoPeriod,
		}, {
			name:   "with allowance without period",
			mutate: func(c *session.Config) { c.TransferPolicies[0].ValueLimit.Period = nil },
			err:    session.ErrAllowanceRequiresPeriod,
		}, {
			name:   "with overflowing max value per use",
			mutate: func(c *session.Config) { c.CallPolicies[0].MaxValuePerUse = overflow },
			err:    session.ErrValueOutOfRange,
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(tt *testing.T) {
			// given
			cfg := sessiontest.NewTemplate().Instantiate(sessiontest.RandomAddress(tt), time.Now())
			tc.mutate(&cfg)

			// when
			err := cfg.Validate()

			// then
			require.ErrorIs(tt, err, tc.err)
		})
	}
}

func testValidatingUnknownEnumerationsFails(t *testing.T) {
	// given
	cfg := sessiontest.NewTemplate().Instantiate(sessiontest.RandomAddress(t), time.Now())
	cfg.FeeLimit.Type = 7

	// when
	err := cfg.Validate()

	// then
	var limitErr session.UnknownLimitTypeError
	require.ErrorAs(t, err, &limitErr)
	assert.Equal(t, uint8(7), limitErr.Value)

	// given
	cfg = sessiontest.NewTemplate().Instantiate(sessiontest.RandomAddress(t), time.Now())
	cfg.CallPolicies[0].Constraints[0].Condition = 42

	// when
	err = cfg.Validate()

	// then
	var conditionErr session.UnknownConditionError
	require.ErrorAs(t, err, &conditionErr)
	assert.Equal(t, uint8(42), conditionErr.Value)
}

func testValidatingTemplateWithoutExpiryFails(t *testing.T) {
	// given
	template := sessiontest.NewTemplate()
	template.ExpiresIn = 0

	// then
	require.ErrorIs(t, template.Validate(), session.ErrExpiryDurationMustBePositive)
}

func TestHashingConfig(t *testing.T) {
	t.Run("Hashing is deterministic", testHashingIsDeterministic)
	t.Run("Hashing depends on every field", testHashingDependsOnEveryField)
	t.Run("Hashing a credential only depends on its session", testHashingCredentialOnlyDependsOnSession)
	t.Run("Encoding a session writes a single dynamic tuple", testEncodingSessionWritesSingleDynamicTuple)
	t.Run("Hashing an invalid session fails", testHashingInvalidSessionFails)
}

func testHashingIsDeterministic(t *testing.T) {
	// given
	now := time.Now()
	signer := sessiontest.RandomAddress(t)

	// when
	hash1, err := sessiontest.NewTemplate().Instantiate(signer, now).Hash()
	require.NoError(t, err)
	hash2, err := sessiontest.NewTemplate().Instantiate(signer, now).Hash()
	require.NoError(t, err)

	// then
	assert.Equal(t, hash1, hash2)
	assert.NotEqual(t, common.Hash{}, hash1)
}

func testHashingDependsOnEveryField(t *testing.T) {
	now := time.Now()
	signer := sessiontest.RandomAddress(t)
	reference, err := sessiontest.NewTemplate().Instantiate(signer, now).Hash()
	require.NoError(t, err)

	mutations := map[string]func(*session.Config){
		"signer":           func(c *session.Config) { c.Signer = sessiontest.RandomAddress(t) },
		"expiry":           func(c *session.Config) { c.ExpiresAt = new(big.Int).Add(c.ExpiresAt, big.NewInt(1)) },
		"fee limit":        func(c *session.Config) { c.FeeLimit.Limit = big.NewInt(1) },
		"selector":         func(c *session.Config) { c.CallPolicies[0].Selector = session.Selector{1, 2, 3, 4} },
		"constraint":       func(c *session.Config) { c.CallPolicies[0].Constraints[0].Index = 1 },
		"transfer target":  func(c *session.Config) { c.TransferPolicies[0].Target = sessiontest.TokenAddress },
		"transfer removed": func(c *session.Config) { c.TransferPolicies = nil },
	}

	for name, mutate := range mutations {
		t.Run(name, func(tt *testing.T) {
			// given
			cfg := sessiontest.NewTemplate().Instantiate(signer, now)
			mutate(&cfg)

			// when
			hash, err := cfg.Hash()

			// then
			require.NoError(tt, err)
			assert.NotEqual(tt, reference, hash)
		})
	}
}

func testHashingCredentialOnlyDependsOnSession(t *testing.T) {
	// given
	cred := sessiontest.NewCredential(t, sessiontest.RandomAddress(t), sessiontest.NewTemplate(), time.Now())
	other := cred
	other.Account = sessiontest.RandomAddress(t)
	other.SignerKey = "0x01"

	// when
	credHash, err := cred.Hash()
	require.NoError(t, err)
	otherHash, err := other.Hash()
	require.NoError(t, err)
	cfgHash, err := cred.Config.Hash()
	require.NoError(t, err)

	// then
	assert.Equal(t, cfgHash, credHash)
	assert.Equal(t, cfgHash, otherHash)
}

func testEncodingSessionWritesSingleDynamicTuple(t *testing.T) {
	// given
	cfg := sessiontest.NewTemplate().Instantiate(sessiontest.RandomAddress(t), time.Now())

	// when
	encoded, err := cfg.Encode()

	// then
	require.NoError(t, err)
	require.Greater(t, len(encoded), 32)
	assert.Equal(t, common.LeftPadBytes([]byte{0x20}, 32), encoded[:32])
	assert.Equal(t, crypto.Keccak256Hash(encoded), mustHash(t, cfg))
}

func testHashingInvalidSessionFails(t *testing.T) {
	// given
	cfg := sessiontest.NewTemplate().Instantiate(common.Address{}, time.Now())

	// when
	hash, err := cfg.Hash()

	// then
	require.ErrorIs(t, err, session.ErrSignerIsRequired)
	assert.Equal(t, common.Hash{}, hash)
}

func TestShapes(t *testing.T) {
	t.Run("Instances of a template have its shape", testInstancesOfTemplateHaveItsShape)
	t.Run("Changing a policy changes the shape", testChangingPolicyChangesShape)
	t.Run("Missing values are normalised", testMissingValuesAreNormalised)
	t.Run("Instantiating a template copies it", testInstantiatingTemplateCopiesIt)
	t.Run("Template covers the expiry of its instances only", testTemplateCoversExpiryOfItsInstancesOnly)
}

func testInstancesOfTemplateHaveItsShape(t *testing.T) {
	// given
	template := sessiontest.NewTemplate()
	instance1 := template.Instantiate(sessiontest.RandomAddress(t), time.Now())
	instance2 := template.Instantiate(sessiontest.RandomAddress(t), time.Now().Add(time.Hour))

	// when
	same, err := session.SameShape(session.ShapeOf(instance1), session.ShapeOf(instance2))

	// then
	require.NoError(t, err)
	assert.True(t, same)

	// when
	same, err = session.SameShape(session.ShapeOf(instance1), template.Shape())

	// then
	require.NoError(t, err)
	assert.True(t, same)
}

func testChangingPolicyChangesShape(t *testing.T) {
	// given
	template := sessiontest.NewTemplate()
	instance := template.Instantiate(sessiontest.RandomAddress(t), time.Now())
	template.CallPolicies[0].MaxValuePerUse = big.NewInt(1)

	// when
	same, err := session.SameShape(session.ShapeOf(instance), template.Shape())

	// then
	require.NoError(t, err)
	assert.False(t, same)
}

func testMissingValuesAreNormalised(t *testing.T) {
	// given
	withNils := session.Shape{
		FeeLimit: session.UsageLimit{Type: session.LimitUnlimited},
	}
	withZeros := session.Shape{
		FeeLimit:         session.Unlimited(),
		CallPolicies:     []session.CallPolicy{},
		TransferPolicies: []session.TransferPolicy{},
	}

	// when
	same, err := session.SameShape(withNils, withZeros)

	// then
	require.NoError(t, err)
	assert.True(t, same)
}

func testInstantiatingTemplateCopiesIt(t *testing.T) {
	// given
	template := sessiontest.NewTemplate()
	now := time.Unix(1_700_000_000, 0)

	// when
	cfg := template.Instantiate(sessiontest.RandomAddress(t), now)
	cfg.CallPolicies[0].MaxValuePerUse.SetInt64(42)

	// then
	assert.Equal(t, int64(1_700_000_000+86400), cfg.ExpiresAt.Int64())
	assert.Equal(t, int64(0), template.CallPolicies[0].MaxValuePerUse.Int64())
}

func testTemplateCoversExpiryOfItsInstancesOnly(t *testing.T) {
	// given
	template := sessiontest.NewTemplate()
	createdAt := time.Unix(1_700_000_000, 0)
	cfg := template.Instantiate(sessiontest.RandomAddress(t), createdAt)

	// then
	assert.True(t, template.CoversExpiry(cfg.ExpiresAt, createdAt))
	assert.True(t, template.CoversExpiry(cfg.ExpiresAt, createdAt.Add(time.Hour)))
	assert.False(t, template.CoversExpiry(nil, createdAt))

	// when
	template.ExpiresIn = time.Hour

	// then
	assert.False(t, template.CoversExpiry(cfg.ExpiresAt, createdAt))
	assert.True(t, template.CoversExpiry(cfg.ExpiresAt, createdAt.Add(23*time.Hour)))
}

func TestParsing(t *testing.T) {
	t.Run("Parsing a decoded JSON session succeeds", testParsingDecodedJSONSessionSucceeds)
	t.Run("Parsing an ABI unpacked session succeeds", testParsingABIUnpackedSessionSucceeds)
	t.Run("Parsing malformed sessions fails", testParsingMalformedSessionsFails)
	t.Run("Parsing a credential with foreign signer key fails", testParsingCredentialWithForeignSignerKeyFails)
	t.Run("Parsing a credential succeeds", testParsingCredentialSucceeds)
}

func testParsingDecodedJSONSessionSucceeds(t *testing.T) {
	// given
	cfg := sessiontest.NewTemplate().Instantiate(sessiontest.RandomAddress(t), time.Now())
	encoded, err := vgjson.Encode(cfg)
	require.NoError(t, err)
	tree, err := vgjson.Unmarshal(encoded)
	require.NoError(t, err)

	// when
	parsed, err := session.ParseConfig(tree)

	// then
	require.NoError(t, err)
	sessiontest.AssertEqualConfig(t, cfg, parsed)
}

func testParsingABIUnpackedSessionSucceeds(t *testing.T) {
	// given
	cfg := sessiontest.NewTemplate().Instantiate(sessiontest.RandomAddress(t), time.Now())
	specType, err := abi.NewType("tuple", "", session.SpecComponents)
	require.NoError(t, err)
	arguments := abi.Arguments{{Name: "sessionSpec", Type: specType}}
	packed, err := arguments.Pack(cfg.ABI())
	require.NoError(t, err)
	values, err := arguments.Unpack(packed)
	require.NoError(t, err)
	unpacked := struct{ Spec session.ABISessionSpec }{}
	require.NoError(t, arguments.Copy(&unpacked, values))

	// when
	parsed, err := session.ParseConfig(unpacked.Spec)

	// then
	require.NoError(t, err)
	sessiontest.AssertEqualConfig(t, cfg, parsed)
}

func testParsingMalformedSessionsFails(t *testing.T) {
	// when
	_, err := session.ParseConfig(nil)

	// then
	require.ErrorIs(t, err, session.ErrSessionIsMissing)

	// when
	_, err = session.ParseConfig(map[string]interface{}{
		"signer":  sessiontest.RecipientAddress.Hex(),
		"unknown": "field",
	})

	// then
	require.Error(t, err)

	// given
	cfg := sessiontest.NewTemplate().Instantiate(sessiontest.RandomAddress(t), time.Now())
	cfg.FeeLimit.Type = session.LimitAllowance

	// when
	_, err = session.ParseConfig(cfg.ABI())

	// then
	require.ErrorIs(t, err, session.ErrAllowanceRequiresPeriod)
}

func testParsingCredentialWithForeignSignerKeyFails(t *testing.T) {
	// given
	cred := sessiontest.NewCredential(t, sessiontest.RandomAddress(t), sessiontest.NewTemplate(), time.Now())
	_, otherKey, err := session.GenerateSignerKey()
	require.NoError(t, err)
	cred.SignerKey = otherKey
	encoded, err := vgjson.Encode(cred)
	require.NoError(t, err)
	tree, err := vgjson.Unmarshal(encoded)
	require.NoError(t, err)

	// when
	_, err = session.ParseCredential(tree)

	// then
	require.ErrorIs(t, err, session.ErrSignerKeyDoesNotMatch)
}

func testParsingCredentialSucceeds(t *testing.T) {
	// given
	cred := sessiontest.NewCredential(t, sessiontest.RandomAddress(t), sessiontest.NewTemplate(), time.Now())
	encoded, err := vgjson.Encode(cred)
	require.NoError(t, err)
	tree, err := vgjson.Unmarshal(encoded)
	require.NoError(t, err)

	// when
	parsed, err := session.ParseCredential(tree)

	// then
	require.NoError(t, err)
	sessiontest.AssertEqualCredential(t, cred, parsed)
}

func TestAuthorizingCalls(t *testing.T) {
	t.Run("Authorizing allowed transfers succeeds", testAuthorizingAllowedTransfersSucceeds)
	t.Run("Authorizing transfers above the cap fails", testAuthorizingTransfersAboveCapFails)
	t.Run("Authorizing calls to unknown targets fails", testAuthorizingCallsToUnknownTargetsFails)
	t.Run("Authorizing calls satisfying constraints succeeds", testAuthorizingCallsSatisfyingConstraintsSucceeds)
	t.Run("Authorizing calls violating constraints fails", testAuthorizingCallsViolatingConstraintsFails)
	t.Run("Authorizing calls after expiry fails", testAuthorizingCallsAfterExpiryFails)
	t.Run("Constraints compare parameters as unsigned words", testConstraintsCompareParametersAsUnsignedWords)
}

func testAuthorizingAllowedTransfersSucceeds(t *testing.T) {
	// given
	now := time.Now()
	cfg := sessiontest.NewTemplate().Instantiate(sessiontest.RandomAddress(t), now)

	// when
	err := cfg.Authorize(session.Call{
		To:    sessiontest.RecipientAddress,
		Value: big.NewInt(100_000_000_000_000),
	}, now)

	// then
	require.NoError(t, err)
}

func testAuthorizingTransfersAboveCapFails(t *testing.T) {
	// given
	now := time.Now()
	cfg := sessiontest.NewTemplate().Instantiate(sessiontest.RandomAddress(t), now)

	// when
	err := cfg.Authorize(session.Call{
		To:    sessiontest.RecipientAddress,
		Value: big.NewInt(100_000_000_000_001),
	}, now)

	// then
	require.ErrorIs(t, err, session.ErrValueExceedsLimit)
}

func testAuthorizingCallsToUnknownTargetsFails(t *testing.T) {
	// given
	now := time.Now()
	cfg := sessiontest.NewTemplate().Instantiate(sessiontest.RandomAddress(t), now)

	// when
	err := cfg.Authorize(session.Call{To: sessiontest.TokenAddress, Value: big.NewInt(1)}, now)

	// then
	require.ErrorIs(t, err, session.ErrCallNotAllowed)

	// when
	err = cfg.Authorize(session.Call{
		To:   sessiontest.TokenAddress,
		Data: []byte{0x09, 0x5e, 0xa7, 0xb3},
	}, now)

	// then
	require.ErrorIs(t, err, session.ErrCallNotAllowed)
}

func testAuthorizingCallsSatisfyingConstraintsSucceeds(t *testing.T) {
	// given
	now := time.Now()
	cfg := sessiontest.NewTemplate().Instantiate(sessiontest.RandomAddress(t), now)

	// when
	err := cfg.Authorize(session.Call{
		To:   sessiontest.TokenAddress,
		Data: transferCallData(sessiontest.RecipientAddress, big.NewInt(10)),
	}, now)

	// then
	require.NoError(t, err)
}

func testAuthorizingCallsViolatingConstraintsFails(t *testing.T) {
	// given
	now := time.Now()
	cfg := sessiontest.NewTemplate().Instantiate(sessiontest.RandomAddress(t), now)

	// when
	err := cfg.Authorize(session.Call{
		To:   sessiontest.TokenAddress,
		Data: transferCallData(sessiontest.RandomAddress(t), big.NewInt(10)),
	}, now)

	// then
	require.ErrorIs(t, err, session.ErrConstraintViolated)

	// when
	err = cfg.Authorize(session.Call{
		To:   sessiontest.TokenAddress,
		Data: sessiontest.TransferSelector[:],
	}, now)

	// then
	require.ErrorIs(t, err, session.ErrConstraintViolated)
}

func testAuthorizingCallsAfterExpiryFails(t *testing.T) {
	// given
	now := time.Now()
	cfg := sessiontest.NewTemplate().Instantiate(sessiontest.RandomAddress(t), now)

	// when
	err := cfg.Authorize(session.Call{
		To:    sessiontest.RecipientAddress,
		Value: big.NewInt(1),
	}, now.Add(25*time.Hour))

	// then
	require.ErrorIs(t, err, session.ErrSessionExpired)
}

func testConstraintsCompareParametersAsUnsignedWords(t *testing.T) {
	data := transferCallData(sessiontest.RecipientAddress, big.NewInt(10))
	ten := common.BigToHash(big.NewInt(10))

	tcs := []struct {
		condition session.ConstraintCondition
		ref       common.Hash
		allowed   bool
	}{
		{condition: session.ConditionUnconstrained, ref: common.Hash{}, allowed: true},
		{condition: session.ConditionEqual, ref: ten, allowed: true},
		{condition: session.ConditionNotEqual, ref: ten, allowed: false},
		{condition: session.ConditionGreater, ref: common.BigToHash(big.NewInt(9)), allowed: true},
		{condition: session.ConditionGreater, ref: ten, allowed: false},
		{condition: session.ConditionLess, ref: common.BigToHash(big.NewInt(11)), allowed: true},
		{condition: session.ConditionGreaterOrEqual, ref: ten, allowed: true},
		{condition: session.ConditionLessOrEqual, ref: common.BigToHash(big.NewInt(9)), allowed: false},
	}

	for _, tc := range tcs {
		t.Run(tc.condition.String(), func(tt *testing.T) {
			constraint := session.Constraint{
				Condition: tc.condition,
				Index:     1,
				RefValue:  tc.ref,
				Limit:     session.Unlimited(),
			}
			assert.Equal(tt, tc.allowed, constraint.Allows(data))
		})
	}
}

func transferCallData(to common.Address, amount *big.Int) []byte {
	data := append([]byte{}, sessiontest.TransferSelector[:]...)
	data = append(data, common.LeftPadBytes(to.Bytes(), 32)...)
	return append(data, common.LeftPadBytes(amount.Bytes(), 32)...)
}

func mustHash(t *testing.T, cfg session.Config) common.Hash {
	t.Helper()

	hash, err := cfg.Hash()
	require.NoError(t, err)
	return hash
}
