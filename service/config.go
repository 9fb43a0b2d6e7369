package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/abstract-foundation/agw-session-keys/chain"
	vgencoding "github.com/abstract-foundation/agw-session-keys/libs/encoding"
	"github.com/abstract-foundation/agw-session-keys/metrics"
	"github.com/abstract-foundation/agw-session-keys/network"
	"github.com/abstract-foundation/agw-session-keys/session/keys"

	"github.com/imdario/mergo"
	"go.uber.org/zap"
)

const (
	FileBackend    = "file"
	LevelDBBackend = "leveldb"
	MemoryBackend  = "memory"
)

var (
	ErrInvalidLogLevelValue          = errors.New("the service log level is invalid")
	ErrUnsupportedStorageBackend     = errors.New("the storage backend is not supported")
	ErrInvalidReceiptTimeout         = errors.New("the receipt timeout must be greater than 0")
	ErrInvalidReceiptPollInterval    = errors.New("the receipt poll interval must be greater than 0")
	ErrSessionTransactionMethodUnset = errors.New("the session transaction method is unset")
	ErrMetricsAddressUnset           = errors.New("the metrics address is unset")
	ErrKeyCacheSizeMustBePositive    = errors.New("the key cache size must be greater than 0")
	ErrLogFileMaxSizeMustBePositive  = errors.New("the log file maximum size must be greater than 0")
)

type Config struct {
	LogLevel vgencoding.LogLevel `toml:"log_level"`
	LogFile  LogFileConfig       `toml:"log_file"`
	Storage  StorageConfig       `toml:"storage"`
	Network  network.Network     `toml:"network"`
	Chain    chain.Config        `toml:"chain"`
	Metrics  metrics.Config      `toml:"metrics"`
	Policy   PolicyConfig        `toml:"policy"`
}

type StorageConfig struct {
	Backend string `toml:"backend"`
	// ProtectKeys encrypts the encryption keys at rest with a passphrase
	// asked at start-up.
	ProtectKeys  bool `toml:"protect_keys"`
	KeyCacheSize int  `toml:"key_cache_size"`
}

// LogFileConfig enables a rotated log file, in addition to the standard
// error.
type LogFileConfig struct {
	Enabled    bool `toml:"enabled"`
	MaxSizeMB  int  `toml:"max_size_mb"`
	MaxAgeDays int  `toml:"max_age_days"`
	MaxBackups int  `toml:"max_backups"`
}

func DefaultConfig() *Config {
	testnet, _ := network.GetNetwork("testnet")

	return &Config{
		LogLevel: vgencoding.LogLevel{
			Level: zap.InfoLevel,
		},
		LogFile: LogFileConfig{
			Enabled:    false,
			MaxSizeMB:  10,
			MaxAgeDays: 30,
			MaxBackups: 3,
		},
		Storage: StorageConfig{
			Backend:      FileBackend,
			ProtectKeys:  false,
			KeyCacheSize: keys.DefaultCacheSize,
		},
		Network: testnet,
		Chain:   chain.NewDefaultConfig(),
		Metrics: metrics.NewDefaultConfig(),
		Policy:  DefaultPolicyConfig(),
	}
}

// WithDefaults fills the fields left empty in the configuration file with
// the default values.
func (c *Config) WithDefaults() error {
	if err := mergo.Merge(c, DefaultConfig()); err != nil {
		return fmt.Errorf("could not apply the default configuration: %w", err)
	}
	return nil
}

// Validate checks the values set in the configuration file returning an
// error if anything is awry.
func (c *Config) Validate() error {
	logLevel := &vgencoding.LogLevel{}
	if err := logLevel.UnmarshalText([]byte(c.LogLevel.String())); err != nil {
		return ErrInvalidLogLevelValue
	}

	if c.LogFile.Enabled && c.LogFile.MaxSizeMB <= 0 {
		return ErrLogFileMaxSizeMustBePositive
	}

	switch c.Storage.Backend {
	case FileBackend, LevelDBBackend, MemoryBackend:
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedStorageBackend, c.Storage.Backend)
	}

	if c.Storage.KeyCacheSize <= 0 {
		return ErrKeyCacheSizeMustBePositive
	}

	if err := c.Network.Validate(); err != nil {
		return fmt.Errorf("invalid network configuration: %w", err)
	}

	if c.Chain.SessionTransactionMethod == "" {
		return ErrSessionTransactionMethodUnset
	}
	if c.Chain.ReceiptTimeout.Get() <= time.Duration(0) {
		return ErrInvalidReceiptTimeout
	}
	if c.Chain.ReceiptPollInterval.Get() <= time.Duration(0) {
		return ErrInvalidReceiptPollInterval
	}

	if c.Metrics.Enabled && c.Metrics.Address == "" {
		return ErrMetricsAddressUnset
	}

	if _, err := c.Policy.Template(); err != nil {
		return fmt.Errorf("invalid policy: %w", err)
	}

	return nil
}
