package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/abstract-foundation/agw-session-keys/chain"
	vgclose "github.com/abstract-foundation/agw-session-keys/libs/close"
	"github.com/abstract-foundation/agw-session-keys/metrics"
	"github.com/abstract-foundation/agw-session-keys/paths"
	"github.com/abstract-foundation/agw-session-keys/session"
	"github.com/abstract-foundation/agw-session-keys/session/keys"
	"github.com/abstract-foundation/agw-session-keys/session/manager"
	v1 "github.com/abstract-foundation/agw-session-keys/session/store/v1"
	"github.com/abstract-foundation/agw-session-keys/session/validator"
	"github.com/abstract-foundation/agw-session-keys/storage"

	"go.uber.org/zap"
)

var ErrPassphraseIsRequired = errors.New("a passphrase is required to protect the encryption keys")

// Service assembles the session manager from the configuration.
type Service struct {
	log *zap.Logger

	Manager *manager.Manager
	Client  *chain.Client
	Store   *v1.Store
	Storage storage.Storage
	Policy  *session.Policy

	cfg    *Config
	closer *vgclose.Closer
}

func NewService(ctx context.Context, log *zap.Logger, cfg *Config, agwPaths paths.Paths, passphrase string) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	template, err := cfg.Policy.Template()
	if err != nil {
		return nil, fmt.Errorf("invalid policy: %w", err)
	}
	policy, err := session.NewPolicy(template)
	if err != nil {
		return nil, err
	}

	var keyOpts []keys.Option
	if cfg.Storage.ProtectKeys {
		if passphrase == "" {
			return nil, ErrPassphraseIsRequired
		}
		keyOpts = append(keyOpts, keys.WithPassphrase(passphrase))
	}

	closer := vgclose.NewCloser(log)

	store, err := initialiseStorage(log.Named("storage"), cfg.Storage, agwPaths)
	if err != nil {
		return nil, err
	}
	closer.Add("storage", store.Close)

	keyManager, err := keys.NewManager(log.Named("keys"), store, cfg.Storage.KeyCacheSize, keyOpts...)
	if err != nil {
		closer.CloseAll()
		return nil, err
	}

	client, err := chain.Dial(ctx, log.Named("chain"), cfg.Network.API.RPC.Hosts[0], cfg.Network.Validator(), cfg.Network.API.RPC.Retries, cfg.Chain)
	if err != nil {
		closer.CloseAll()
		return nil, err
	}
	closer.AddFunc("chain-client", client.Close)

	sessionStore := v1.NewStore(log.Named("store"), store, keyManager, policy)
	m := manager.NewManager(log.Named("manager"), sessionStore, validator.NewValidator(log.Named("validator"), client), client, policy, keyManager)

	if w, ok := store.(storage.Watcher); ok {
		if err := m.Watch(ctx, w); err != nil {
			// Without watching, the keys changed by another process are
			// only picked up on restart.
			log.Warn("could not watch the storage", zap.Error(err))
		}
	}

	return &Service{
		log:     log,
		Manager: m,
		Client:  client,
		Store:   sessionStore,
		Storage: store,
		Policy:  policy,
		cfg:     cfg,
		closer:  closer,
	}, nil
}

// OnConfigUpdate applies the policy of the updated configuration. The
// other settings require a restart.
func (s *Service) OnConfigUpdate(cfg *Config) {
	template, err := cfg.Policy.Template()
	if err != nil {
		s.log.Error("the updated policy is invalid, it is ignored", zap.Error(err))
		return
	}
	if err := s.Manager.UpdatePolicy(template); err != nil {
		s.log.Error("could not update the policy", zap.Error(err))
	}
}

func (s *Service) Close() {
	s.closer.CloseAll()
}

// WatchConfig applies the policy changes made to the configuration file
// until the context is cancelled.
func (s *Service) WatchConfig(ctx context.Context, path string) error {
	watcher, err := NewConfigWatcher(ctx, s.log, path)
	if err != nil {
		return err
	}
	watcher.OnConfigUpdate(s.OnConfigUpdate)
	return nil
}

// ServeMetrics serves the metrics until the context is cancelled. It
// returns immediately if the metrics are disabled.
func (s *Service) ServeMetrics(ctx context.Context) error {
	return metrics.Serve(ctx, s.log.Named("metrics"), s.cfg.Metrics)
}

func initialiseStorage(log *zap.Logger, cfg StorageConfig, agwPaths paths.Paths) (storage.Storage, error) {
	switch cfg.Backend {
	case MemoryBackend:
		return storage.NewMemoryStorage(), nil
	case LevelDBBackend:
		dir, err := agwPaths.CreateDataDirFor(paths.SessionsLevelDBDataHome)
		if err != nil {
			return nil, fmt.Errorf("couldn't get data path for %s: %w", paths.SessionsLevelDBDataHome, err)
		}
		return storage.InitialiseLevelDBStorage(dir)
	case FileBackend:
		dir, err := agwPaths.CreateDataDirFor(paths.SessionsDataHome)
		if err != nil {
			return nil, fmt.Errorf("couldn't get data path for %s: %w", paths.SessionsDataHome, err)
		}
		return storage.InitialiseFileStorage(log, dir)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedStorageBackend, cfg.Backend)
	}
}
