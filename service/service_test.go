package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/abstract-foundation/agw-session-keys/paths"
	"github.com/abstract-foundation/agw-session-keys/service"
	"github.com/abstract-foundation/agw-session-keys/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestService(t *testing.T) {
	t.Run("Starting with each storage backend succeeds", testStartingWithEachStorageBackendSucceeds)
	t.Run("Protecting the keys requires a passphrase", testProtectingKeysRequiresPassphrase)
	t.Run("Starting with an invalid config fails", testStartingWithInvalidConfigFails)
	t.Run("Watching the config applies the policy updates", testWatchingConfigAppliesPolicyUpdates)
}

func testStartingWithEachStorageBackendSucceeds(t *testing.T) {
	tcs := []struct {
		backend         string
		expectedStorage storage.Storage
	}{
		{backend: service.MemoryBackend, expectedStorage: &storage.MemoryStorage{}},
		{backend: service.FileBackend, expectedStorage: &storage.FileStorage{}},
		{backend: service.LevelDBBackend, expectedStorage: &storage.LevelDBStorage{}},
	}

	for _, tc := range tcs {
		t.Run(tc.backend, func(tt *testing.T) {
			// given
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			cfg := service.DefaultConfig()
			cfg.Storage.Backend = tc.backend
			cfg.Network.API.RPC.Hosts = []string{"http://127.0.0.1:8545"}

			// when
			svc, err := service.NewService(ctx, zap.NewNop(), cfg, paths.New(tt.TempDir()), "")

			// then
			require.NoError(tt, err)
			defer svc.Close()
			assert.NotNil(tt, svc.Manager)
			assert.IsType(tt, tc.expectedStorage, svc.Storage)
		})
	}
}

func testProtectingKeysRequiresPassphrase(t *testing.T) {
	// given
	ctx := context.Background()
	cfg := service.DefaultConfig()
	cfg.Storage.Backend = service.MemoryBackend
	cfg.Storage.ProtectKeys = true

	// when
	svc, err := service.NewService(ctx, zap.NewNop(), cfg, paths.New(t.TempDir()), "")

	// then
	require.ErrorIs(t, err, service.ErrPassphraseIsRequired)
	assert.Nil(t, svc)

	// when
	svc, err = service.NewService(ctx, zap.NewNop(), cfg, paths.New(t.TempDir()), "passphrase")

	// then
	require.NoError(t, err)
	svc.Close()
}

func testStartingWithInvalidConfigFails(t *testing.T) {
	// given
	ctx := context.Background()
	cfg := service.DefaultConfig()
	cfg.Storage.Backend = "cloud"

	// when
	svc, err := service.NewService(ctx, zap.NewNop(), cfg, paths.New(t.TempDir()), "")

	// then
	require.ErrorIs(t, err, service.ErrUnsupportedStorageBackend)
	assert.Nil(t, svc)
}

func testWatchingConfigAppliesPolicyUpdates(t *testing.T) {
	// given
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	agwPaths := paths.New(t.TempDir())
	store, err := service.InitialiseConfigStore(agwPaths)
	require.NoError(t, err)
	cfg := service.DefaultConfig()
	cfg.Storage.Backend = service.MemoryBackend
	require.NoError(t, store.SaveConfig(cfg))

	svc, err := service.NewService(ctx, zap.NewNop(), cfg, agwPaths, "")
	require.NoError(t, err)
	defer svc.Close()
	require.NoError(t, svc.WatchConfig(ctx, store.ConfigPath()))

	// when
	updated := service.DefaultConfig()
	updated.Storage.Backend = service.MemoryBackend
	updated.Policy.ExpiresIn.Duration = time.Hour
	require.NoError(t, store.SaveConfig(updated))

	// then
	assert.Eventually(t, func() bool {
		return svc.Policy.Template().ExpiresIn == time.Hour
	}, 5*time.Second, 10*time.Millisecond)
}
