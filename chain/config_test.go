package chain_test

import (
	"testing"
	"time"

	"github.com/abstract-foundation/agw-session-keys/chain"
	"github.com/abstract-foundation/agw-session-keys/libs/encoding"

	"github.com/stretchr/testify/assert"
)

func TestConfig(t *testing.T) {
	t.Run("Unset fields get their default value", testUnsetFieldsGetDefaultValue)
	t.Run("Set fields are kept", testSetFieldsAreKept)
}

func testUnsetFieldsGetDefaultValue(t *testing.T) {
	// given
	config := chain.Config{
		ReceiptPollInterval: encoding.Duration{Duration: -time.Second},
	}

	// when
	config = config.WithDefaults()

	// then
	assert.Equal(t, chain.NewDefaultConfig(), config)
}

func testSetFieldsAreKept(t *testing.T) {
	// given
	config := chain.Config{
		SessionTransactionMethod: "custom_send",
		ReceiptTimeout:           encoding.Duration{Duration: time.Second},
		ReceiptPollInterval:      encoding.Duration{Duration: time.Millisecond},
	}

	// when
	completed := config.WithDefaults()

	// then
	assert.Equal(t, config, completed)
}
