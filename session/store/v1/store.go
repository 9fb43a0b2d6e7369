package v1

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	vgcrypto "github.com/abstract-foundation/agw-session-keys/libs/crypto"
	vgjson "github.com/abstract-foundation/agw-session-keys/libs/json"
	"github.com/abstract-foundation/agw-session-keys/metrics"
	"github.com/abstract-foundation/agw-session-keys/session"
	"github.com/abstract-foundation/agw-session-keys/storage"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
)

const (
	// Version of the format of the stored entries.
	Version = 1

	sessionPrefix = "session_"
)

// Reasons for discarding a stored session.
const (
	ReasonMalformedEntry     = "malformed-entry"
	ReasonDecryptionFailure  = "decryption-failure"
	ReasonMalformedSession   = "malformed-session"
	ReasonAccountMismatch    = "account-mismatch"
	ReasonPolicyMismatch     = "policy-mismatch"
	ReasonExpiryBeyondPolicy = "expiry-beyond-policy"
	ReasonUnsupportedVersion = "unsupported-version"
)

//go:generate go run github.com/golang/mock/mockgen -destination mocks/mocks.go -package mocks github.com/abstract-foundation/agw-session-keys/session/store/v1 KeyManager,TemplateProvider

type KeyManager interface {
	GetOrCreateKey(ctx context.Context, address common.Address) ([]byte, error)
	DeleteKey(ctx context.Context, address common.Address) error
}

// TemplateProvider returns the policy the stored sessions must match.
type TemplateProvider interface {
	Template() session.Template
}

// entry is the persisted form of a credential.
type entry struct {
	Version uint32 `json:"version"`
	vgcrypto.Envelope
}

// StorageKey returns the storage entry holding the session of the address.
func StorageKey(address common.Address) string {
	return sessionPrefix + strings.ToLower(address.Hex())
}

// AddressFromStorageKey returns the address of a session entry, if the
// storage key is one.
func AddressFromStorageKey(key string) (common.Address, bool) {
	raw, ok := strings.CutPrefix(key, sessionPrefix)
	if !ok || !common.IsHexAddress(raw) {
		return common.Address{}, false
	}
	return common.HexToAddress(raw), true
}

// Store persists one encrypted credential per account.
type Store struct {
	log      *zap.Logger
	store    storage.Storage
	keys     KeyManager
	policies TemplateProvider

	now func() time.Time
}

func NewStore(log *zap.Logger, store storage.Storage, keys KeyManager, policies TemplateProvider) *Store {
	return &Store{
		log:      log,
		store:    store,
		keys:     keys,
		policies: policies,
		now:      time.Now,
	}
}

// Save encrypts the credential and writes it, replacing any credential
// previously saved for the account.
func (s *Store) Save(ctx context.Context, address common.Address, cred session.Credential) error {
	plaintext, err := vgjson.Encode(cred)
	if err != nil {
		return fmt.Errorf("could not serialise the credential: %w", err)
	}

	key, err := s.keys.GetOrCreateKey(ctx, address)
	if err != nil {
		return err
	}

	envelope, err := vgcrypto.Seal(plaintext, key)
	if err != nil {
		return fmt.Errorf("could not encrypt the credential: %w", err)
	}

	buf, err := json.Marshal(entry{
		Version:  Version,
		Envelope: envelope,
	})
	if err != nil {
		return fmt.Errorf("could not serialise the encrypted credential: %w", err)
	}

	if err := s.store.Set(ctx, StorageKey(address), string(buf)); err != nil {
		return fmt.Errorf("could not save the credential: %w", err)
	}

	s.log.Debug("session saved", zap.String("account", address.Hex()))
	return nil
}

// Load returns the credential of the account, or nil if there is none. An
// entry that cannot be decrypted, whose policy no longer matches the
// configured template, or that expires later than the configured expiry
// duration allows, is reported as missing and left in place. Only
// storage errors are returned.
func (s *Store) Load(ctx context.Context, address common.Address) (*session.Credential, error) {
	cred, _, err := s.load(ctx, address)
	return cred, err
}

// LoadOrClear is Load, except that an entry reported as missing because it
// is unusable is cleared with its encryption key before returning.
func (s *Store) LoadOrClear(ctx context.Context, address common.Address) (*session.Credential, error) {
	cred, discarded, err := s.load(ctx, address)
	if err != nil || !discarded {
		return cred, err
	}

	if err := s.Clear(ctx, address); err != nil {
		return nil, err
	}
	return nil, nil
}

func (s *Store) load(ctx context.Context, address common.Address) (_ *session.Credential, discarded bool, _ error) {
	raw, exists, err := s.store.Get(ctx, StorageKey(address))
	if err != nil {
		return nil, false, fmt.Errorf("could not retrieve the credential: %w", err)
	}
	if !exists {
		return nil, false, nil
	}

	log := s.log.With(zap.String("account", address.Hex()))

	e := entry{}
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		return discard(log, ReasonMalformedEntry, err)
	}
	if e.Version != Version {
		return discard(log, ReasonUnsupportedVersion, fmt.Errorf("version %d is not supported", e.Version))
	}

	key, err := s.keys.GetOrCreateKey(ctx, address)
	if err != nil {
		return nil, false, err
	}

	plaintext, err := vgcrypto.Open(e.Envelope, key)
	if err != nil {
		if errors.Is(err, vgcrypto.ErrDecryptionFailed) {
			return discard(log, ReasonDecryptionFailure, err)
		}
		return nil, false, err
	}

	tree, err := vgjson.Unmarshal(plaintext)
	if err != nil {
		return discard(log, ReasonMalformedSession, err)
	}

	cred, err := session.ParseCredential(tree)
	if err != nil {
		return discard(log, ReasonMalformedSession, err)
	}

	if cred.Account != address {
		return discard(log, ReasonAccountMismatch, fmt.Errorf("the credential belongs to %s", cred.Account.Hex()))
	}

	template := s.policies.Template()
	expected := template.Shape()
	actual := session.ShapeOf(cred.Config)
	same, err := session.SameShape(expected, actual)
	if err != nil {
		return nil, false, err
	}
	if !same {
		log.Debug("stored policy differs from the expected one",
			zap.String("diff", shapeDiff(expected, actual)),
		)
		return discard(log, ReasonPolicyMismatch, session.ErrPolicyMismatch)
	}
	if !template.CoversExpiry(cred.Config.ExpiresAt, s.now()) {
		return discard(log, ReasonExpiryBeyondPolicy, session.ErrExpiryBeyondPolicy)
	}

	return &cred, false, nil
}

// Clear removes the credential of the account and its encryption key.
func (s *Store) Clear(ctx context.Context, address common.Address) error {
	if err := s.store.Remove(ctx, StorageKey(address)); err != nil {
		return fmt.Errorf("could not remove the credential: %w", err)
	}

	if err := s.keys.DeleteKey(ctx, address); err != nil {
		return err
	}

	s.log.Debug("session cleared", zap.String("account", address.Hex()))
	return nil
}

func discard(log *zap.Logger, reason string, err error) (*session.Credential, bool, error) {
	log.Warn("stored session discarded",
		zap.String("reason", reason),
		zap.Error(err),
	)
	metrics.SessionInvalidated(reason)
	return nil, true, nil
}

func shapeDiff(expected, actual session.Shape) string {
	expectedBuf, err := expected.Canonical()
	if err != nil {
		return err.Error()
	}
	actualBuf, err := actual.Canonical()
	if err != nil {
		return err.Error()
	}

	var expectedTree, actualTree interface{}
	if err := json.Unmarshal(expectedBuf, &expectedTree); err != nil {
		return err.Error()
	}
	if err := json.Unmarshal(actualBuf, &actualTree); err != nil {
		return err.Error()
	}
	return cmp.Diff(expectedTree, actualTree)
}
