package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/abstract-foundation/agw-session-keys/paths"
	"github.com/abstract-foundation/agw-session-keys/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestConfigWatcher(t *testing.T) {
	t.Run("Updating the file notifies the listeners", testUpdatingFileNotifiesListeners)
	t.Run("Invalid updates are ignored", testInvalidUpdatesAreIgnored)
}

func testUpdatingFileNotifiesListeners(t *testing.T) {
	// given
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store, err := service.InitialiseConfigStore(paths.New(t.TempDir()))
	require.NoError(t, err)
	require.NoError(t, store.SaveConfig(service.DefaultConfig()))

	watcher, err := service.NewConfigWatcher(ctx, zap.NewNop(), store.ConfigPath())
	require.NoError(t, err)
	updates := make(chan *service.Config, 10)
	watcher.OnConfigUpdate(func(cfg *service.Config) {
		updates <- cfg
	})

	// when
	updated := service.DefaultConfig()
	updated.Policy.ExpiresIn.Duration = time.Hour
	require.NoError(t, store.SaveConfig(updated))

	// then
	select {
	case cfg := <-updates:
		assert.Equal(t, time.Hour, cfg.Policy.ExpiresIn.Get())
	case <-time.After(5 * time.Second):
		t.Fatal("the listener was not notified")
	}
	assert.Equal(t, time.Hour, watcher.Get().Policy.ExpiresIn.Get())
}

func testInvalidUpdatesAreIgnored(t *testing.T) {
	// given
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store, err := service.InitialiseConfigStore(paths.New(t.TempDir()))
	require.NoError(t, err)
	require.NoError(t, store.SaveConfig(service.DefaultConfig()))

	watcher, err := service.NewConfigWatcher(ctx, zap.NewNop(), store.ConfigPath())
	require.NoError(t, err)
	updates := make(chan *service.Config, 10)
	watcher.OnConfigUpdate(func(cfg *service.Config) {
		updates <- cfg
	})

	// when
	invalid := service.DefaultConfig()
	invalid.Storage.Backend = "cloud"
	require.NoError(t, store.SaveConfig(invalid))

	// then
	select {
	case <-updates:
		t.Fatal("the listener should not be notified of an invalid configuration")
	case <-time.After(500 * time.Millisecond):
	}
	assert.Equal(t, service.FileBackend, watcher.Get().Storage.Backend)
}
