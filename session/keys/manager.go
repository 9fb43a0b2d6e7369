package keys

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"

	vgcrypto "github.com/abstract-foundation/agw-session-keys/libs/crypto"
	"github.com/abstract-foundation/agw-session-keys/metrics"
	"github.com/abstract-foundation/agw-session-keys/storage"

	"github.com/ethereum/go-ethereum/common"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

const (
	keyPrefix = "encryption_key_"

	DefaultCacheSize = 64
)

// StorageKey returns the storage entry holding the encryption key of the
// address.
func StorageKey(address common.Address) string {
	return keyPrefix + strings.ToLower(address.Hex())
}

// AddressFromStorageKey returns the address of an encryption key entry, if
// the storage key is one.
func AddressFromStorageKey(key string) (common.Address, bool) {
	raw, ok := strings.CutPrefix(key, keyPrefix)
	if !ok || !common.IsHexAddress(raw) {
		return common.Address{}, false
	}
	return common.HexToAddress(raw), true
}

type Option func(m *Manager)

// WithPassphrase protects the keys at rest with a passphrase.
func WithPassphrase(passphrase string) Option {
	return func(m *Manager) {
		m.passphrase = passphrase
	}
}

// Manager provides one symmetric key per address. Keys are generated on
// first use, persisted and never rotated.
type Manager struct {
	log   *zap.Logger
	store storage.Storage

	passphrase string

	// mu serialises the creation of keys so two callers cannot persist two
	// different keys for the same address.
	mu    sync.Mutex
	cache *lru.Cache[common.Address, []byte]
}

func NewManager(log *zap.Logger, store storage.Storage, cacheSize int, opts ...Option) (*Manager, error) {
	if cacheSize <= 0 {
		return nil, ErrCacheSizeTooSmall
	}

	cache, err := lru.New[common.Address, []byte](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("could not initialise the key cache: %w", err)
	}

	m := &Manager{
		log:   log,
		store: store,
		cache: cache,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m, nil
}

// GetOrCreateKey returns the key of the address, generating and persisting
// it if it does not exist yet.
func (m *Manager) GetOrCreateKey(ctx context.Context, address common.Address) ([]byte, error) {
	if key, ok := m.cache.Get(address); ok {
		return key, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	storageKey := StorageKey(address)

	raw, exists, err := m.store.Get(ctx, storageKey)
	if err != nil {
		return nil, fmt.Errorf("could not retrieve the encryption key: %w", err)
	}

	if exists {
		key, err := m.decode(raw)
		if err != nil {
			return nil, err
		}
		m.cacheKey(address, key)
		return key, nil
	}

	key, err := vgcrypto.GenerateKey()
	if err != nil {
		return nil, err
	}

	encoded, err := m.encode(key)
	if err != nil {
		return nil, err
	}

	if err := m.store.Set(ctx, storageKey, encoded); err != nil {
		return nil, fmt.Errorf("could not save the encryption key: %w", err)
	}

	m.log.Debug("new encryption key generated", zap.String("account", address.Hex()))

	m.cacheKey(address, key)
	return key, nil
}

// DeleteKey removes the key of the address. Anything encrypted with it
// becomes unreadable.
func (m *Manager) DeleteKey(ctx context.Context, address common.Address) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.uncacheKey(address)

	if err := m.store.Remove(ctx, StorageKey(address)); err != nil {
		return fmt.Errorf("could not remove the encryption key: %w", err)
	}
	return nil
}

// Forget drops the cached key of the address, so the next access reads it
// from the storage.
func (m *Manager) Forget(address common.Address) {
	m.uncacheKey(address)
}

func (m *Manager) cacheKey(address common.Address, key []byte) {
	m.cache.Add(address, key)
	metrics.EncryptionKeysCached(m.cache.Len())
}

func (m *Manager) uncacheKey(address common.Address) {
	m.cache.Remove(address)
	metrics.EncryptionKeysCached(m.cache.Len())
}

func (m *Manager) encode(key []byte) (string, error) {
	if m.passphrase == "" {
		return base64.StdEncoding.EncodeToString(key), nil
	}

	protected, err := vgcrypto.Encrypt(key, m.passphrase)
	if err != nil {
		return "", fmt.Errorf("could not protect the encryption key: %w", err)
	}
	return base64.StdEncoding.EncodeToString(protected), nil
}

func (m *Manager) decode(raw string) ([]byte, error) {
	buf, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrKeyIsUnreadable, err)
	}

	if m.passphrase != "" {
		buf, err = vgcrypto.Decrypt(buf, m.passphrase)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrKeyIsUnreadable, err)
		}
	}

	if len(buf) != vgcrypto.KeySize {
		return nil, fmt.Errorf("%w: %w", ErrKeyIsUnreadable, vgcrypto.ErrInvalidKeySize)
	}
	return buf, nil
}
