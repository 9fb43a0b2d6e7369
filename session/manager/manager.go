package manager

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/abstract-foundation/agw-session-keys/chain"
	"github.com/abstract-foundation/agw-session-keys/metrics"
	"github.com/abstract-foundation/agw-session-keys/session"
	"github.com/abstract-foundation/agw-session-keys/session/keys"
	"github.com/abstract-foundation/agw-session-keys/storage"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"
)

// Store persists the credentials.
type Store interface {
	Save(ctx context.Context, address common.Address, cred session.Credential) error
	LoadOrClear(ctx context.Context, address common.Address) (*session.Credential, error)
	Clear(ctx context.Context, address common.Address) error
}

type Validator interface {
	CheckValidity(ctx context.Context, address common.Address, sessionHash common.Hash) bool
}

// KeyCache holds the encryption keys in memory.
type KeyCache interface {
	Forget(address common.Address)
}

// Manager is the entry point to the sessions of the accounts. Operations
// on the same account are serialised.
type Manager struct {
	log *zap.Logger

	store     Store
	validator Validator
	client    chain.WalletClient
	policy    *session.Policy
	keys      KeyCache

	now func() time.Time

	mu    sync.Mutex
	locks map[common.Address]*addressLock

	watching bool
}

func NewManager(
	log *zap.Logger,
	store Store,
	validator Validator,
	client chain.WalletClient,
	policy *session.Policy,
	keys KeyCache,
) *Manager {
	return &Manager{
		log:       log,
		store:     store,
		validator: validator,
		client:    client,
		policy:    policy,
		keys:      keys,
		now:       time.Now,
		locks:     map[common.Address]*addressLock{},
	}
}

// GetValidSession returns the stored credential of the account if the
// chain confirms it is still usable, or nil. A stored credential that is
// not usable is cleared before returning.
func (m *Manager) GetValidSession(ctx context.Context, address common.Address) (*session.Credential, error) {
	defer m.lock(address)()
	return m.getValidSession(ctx, address)
}

// CreateSession registers a new session for the account, with a freshly
// generated signer, and saves it, replacing the previous one. Nothing is
// saved if the registration fails.
func (m *Manager) CreateSession(ctx context.Context, address common.Address, template session.Template) (_ session.Credential, err error) {
	if address == (common.Address{}) {
		return session.Credential{}, ErrAccountIsRequired
	}
	if err := template.Validate(); err != nil {
		return session.Credential{}, fmt.Errorf("invalid session template: %w", err)
	}

	defer m.lock(address)()
	defer func() {
		metrics.SessionCreated(err == nil)
	}()

	log := m.log.With(zap.String("account", address.Hex()))

	signerKey, encodedSignerKey, err := session.GenerateSignerKey()
	if err != nil {
		return session.Credential{}, err
	}

	requested := template.Instantiate(crypto.PubkeyToAddress(signerKey.PublicKey), m.now())
	requestedHash, err := requested.Hash()
	if err != nil {
		return session.Credential{}, err
	}

	log.Debug("registering a new session", zap.String("session-hash", requestedHash.Hex()))

	registered, err := m.client.CreateSession(ctx, address, requested)
	if err != nil {
		log.Error("could not register the session", zap.Error(err))
		return session.Credential{}, err
	}

	registeredHash, err := registered.Hash()
	if err != nil {
		return session.Credential{}, fmt.Errorf("invalid registered session: %w", err)
	}
	if registeredHash != requestedHash {
		log.Error("the registered session differs from the requested one",
			zap.String("requested-session-hash", requestedHash.Hex()),
			zap.String("registered-session-hash", registeredHash.Hex()),
		)
		return session.Credential{}, ErrRegisteredSessionDiffers
	}

	cred := session.Credential{
		Account:   address,
		SignerKey: encodedSignerKey,
		Config:    registered,
	}

	if err := m.store.Save(ctx, address, cred); err != nil {
		return session.Credential{}, err
	}

	log.Info("session created", zap.String("session-hash", registeredHash.Hex()))
	return cred, nil
}

// RevokeSession forgets the session of the account. The session is left
// untouched on-chain.
func (m *Manager) RevokeSession(ctx context.Context, address common.Address) error {
	defer m.lock(address)()

	if err := m.store.Clear(ctx, address); err != nil {
		return err
	}

	m.log.Info("session revoked", zap.String("account", address.Hex()))
	return nil
}

// CloseOnChain closes the stored session of the account on-chain, then
// forgets it.
func (m *Manager) CloseOnChain(ctx context.Context, address common.Address) (common.Hash, error) {
	defer m.lock(address)()

	cred, err := m.store.LoadOrClear(ctx, address)
	if err != nil {
		return common.Hash{}, err
	}
	if cred == nil {
		return common.Hash{}, ErrNoValidSession
	}

	sessionHash, err := cred.Hash()
	if err != nil {
		return common.Hash{}, err
	}

	txHash, err := m.client.RevokeSession(ctx, address, sessionHash)
	if err != nil {
		return common.Hash{}, err
	}

	if err := m.store.Clear(ctx, address); err != nil {
		return common.Hash{}, err
	}

	m.log.Info("session closed on-chain",
		zap.String("account", address.Hex()),
		zap.String("session-hash", sessionHash.Hex()),
		zap.String("tx-hash", txHash.Hex()),
	)
	return txHash, nil
}

// SendTransaction executes the call with the valid session of the account.
// The call is checked against the session policy before being sent.
func (m *Manager) SendTransaction(ctx context.Context, address common.Address, call session.Call) (common.Hash, error) {
	defer m.lock(address)()

	cred, err := m.getValidSession(ctx, address)
	if err != nil {
		return common.Hash{}, err
	}
	if cred == nil {
		return common.Hash{}, ErrNoValidSession
	}

	if err := cred.Config.Authorize(call, m.now()); err != nil {
		return common.Hash{}, err
	}

	return m.client.SendTransaction(ctx, *cred, call)
}

// UpdatePolicy replaces the template the stored sessions must match.
func (m *Manager) UpdatePolicy(template session.Template) error {
	if err := m.policy.Update(template); err != nil {
		return err
	}
	m.log.Info("session policy updated")
	return nil
}

// Watch drops the cached encryption keys changed by another process, until
// the context is cancelled.
func (m *Manager) Watch(ctx context.Context, w storage.Watcher) error {
	m.mu.Lock()
	if m.watching {
		m.mu.Unlock()
		return ErrWatchingIsAlreadyStarted
	}
	m.watching = true
	m.mu.Unlock()

	return w.Watch(ctx, func(key string) {
		if address, ok := keys.AddressFromStorageKey(key); ok {
			m.log.Debug("encryption key changed externally", zap.String("account", address.Hex()))
			m.keys.Forget(address)
		}
	})
}

func (m *Manager) getValidSession(ctx context.Context, address common.Address) (*session.Credential, error) {
	cred, err := m.store.LoadOrClear(ctx, address)
	if err != nil {
		return nil, err
	}
	if cred == nil {
		return nil, nil
	}

	sessionHash, err := cred.Hash()
	if err == nil && m.validator.CheckValidity(ctx, address, sessionHash) {
		return cred, nil
	}

	if err := m.store.Clear(ctx, address); err != nil {
		return nil, err
	}

	m.log.Info("invalid session cleared", zap.String("account", address.Hex()))
	return nil, nil
}

// addressLock is released from the manager once nobody holds or waits
// for it.
type addressLock struct {
	mu   sync.Mutex
	refs int
}

func (m *Manager) lock(address common.Address) func() {
	m.mu.Lock()
	l, ok := m.locks[address]
	if !ok {
		l = &addressLock{}
		m.locks[address] = l
	}
	l.refs++
	m.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		m.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(m.locks, address)
		}
		m.mu.Unlock()
	}
}
