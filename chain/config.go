package chain

import (
	"time"

	"github.com/abstract-foundation/agw-session-keys/libs/encoding"
)

const (
	DefaultSessionTransactionMethod = "agw_sendSessionTransaction"

	defaultReceiptTimeout      = 2 * time.Minute
	defaultReceiptPollInterval = time.Second
)

type Config struct {
	// SessionTransactionMethod is the JSON-RPC method of the wallet bridge
	// executing a call with a session signature.
	SessionTransactionMethod string            `toml:"session_transaction_method"`
	ReceiptTimeout           encoding.Duration `toml:"receipt_timeout"`
	ReceiptPollInterval      encoding.Duration `toml:"receipt_poll_interval"`
}

func NewDefaultConfig() Config {
	return Config{
		SessionTransactionMethod: DefaultSessionTransactionMethod,
		ReceiptTimeout:           encoding.Duration{Duration: defaultReceiptTimeout},
		ReceiptPollInterval:      encoding.Duration{Duration: defaultReceiptPollInterval},
	}
}

// WithDefaults returns the configuration with its unset fields set to their
// default value.
func (c Config) WithDefaults() Config {
	defaults := NewDefaultConfig()
	if c.SessionTransactionMethod == "" {
		c.SessionTransactionMethod = defaults.SessionTransactionMethod
	}
	if c.ReceiptTimeout.Get() <= 0 {
		c.ReceiptTimeout = defaults.ReceiptTimeout
	}
	if c.ReceiptPollInterval.Get() <= 0 {
		c.ReceiptPollInterval = defaults.ReceiptPollInterval
	}
	return c
}
