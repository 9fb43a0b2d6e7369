package paths

import (
	"fmt"
	"path/filepath"

	vgfs "github.com/abstract-foundation/agw-session-keys/libs/fs"

	"github.com/adrg/xdg"
)

// DefaultPaths places the files under the XDG base directories of the
// current user.
type DefaultPaths struct{}

// CreateConfigPathFor builds the path for the file and creates its parent
// directories.
func (p *DefaultPaths) CreateConfigPathFor(relFilePath ConfigPath) (string, error) {
	path, err := xdg.ConfigFile(relFilePath.String())
	if err != nil {
		return "", fmt.Errorf("couldn't create the config path for %s: %w", relFilePath, err)
	}
	return path, nil
}

// CreateConfigDirFor builds the path for the directory and creates it.
func (p *DefaultPaths) CreateConfigDirFor(relDirPath ConfigPath) (string, error) {
	path := p.ConfigPathFor(relDirPath)
	if err := vgfs.EnsureDir(path); err != nil {
		return "", fmt.Errorf("couldn't create directories for %s: %w", path, err)
	}
	return path, nil
}

func (p *DefaultPaths) CreateDataPathFor(relFilePath DataPath) (string, error) {
	path, err := xdg.DataFile(relFilePath.String())
	if err != nil {
		return "", fmt.Errorf("couldn't create the data path for %s: %w", relFilePath, err)
	}
	return path, nil
}

func (p *DefaultPaths) CreateDataDirFor(relDirPath DataPath) (string, error) {
	path := p.DataPathFor(relDirPath)
	if err := vgfs.EnsureDir(path); err != nil {
		return "", fmt.Errorf("couldn't create directories for %s: %w", path, err)
	}
	return path, nil
}

// ConfigPathFor builds the path for the configuration file without
// creating anything.
func (p *DefaultPaths) ConfigPathFor(relFilePath ConfigPath) string {
	return filepath.Join(xdg.ConfigHome, relFilePath.String())
}

func (p *DefaultPaths) DataPathFor(relFilePath DataPath) string {
	return filepath.Join(xdg.DataHome, relFilePath.String())
}
