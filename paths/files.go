package paths

import (
	"bytes"
	"fmt"

	vgfs "github.com/abstract-foundation/agw-session-keys/libs/fs"

	"github.com/BurntSushi/toml"
)

// ReadStructuredFile decodes the TOML file at the path into the data.
func ReadStructuredFile(path string, data interface{}) error {
	buf, err := vgfs.ReadFile(path)
	if err != nil {
		return fmt.Errorf("couldn't read file at %s: %w", path, err)
	}

	if _, err := toml.Decode(string(buf), data); err != nil {
		return fmt.Errorf("couldn't decode the content of file at %s: %w", path, err)
	}

	return nil
}

// WriteStructuredFile encodes the data as TOML and writes it at the path.
func WriteStructuredFile(path string, data interface{}) error {
	buf := new(bytes.Buffer)
	if err := toml.NewEncoder(buf).Encode(data); err != nil {
		return fmt.Errorf("couldn't encode data as TOML: %w", err)
	}

	if err := vgfs.WriteFile(path, buf.Bytes()); err != nil {
		return fmt.Errorf("couldn't write file at %s: %w", path, err)
	}

	return nil
}
