package metrics

import "github.com/abstract-foundation/agw-session-keys/libs/encoding"

const namespace = "agwsession"

// Config of the metrics endpoint. The endpoint is only served by the long
// running commands.
type Config struct {
	Enabled     bool              `toml:"enabled"`
	Address     string            `toml:"address"`
	Path        string            `toml:"path"`
	ReadTimeout encoding.Duration `toml:"read_timeout"`
}

func NewDefaultConfig() Config {
	return Config{
		Enabled:     false,
		Address:     "127.0.0.1:2112",
		Path:        "/metrics",
		ReadTimeout: encoding.Duration{Duration: defaultReadTimeout},
	}
}
