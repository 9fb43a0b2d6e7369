package paths

import (
	"fmt"
	"path/filepath"

	vgfs "github.com/abstract-foundation/agw-session-keys/libs/fs"
)

// CustomPaths places every file under a single home folder, which is
// convenient for tests and for running several isolated setups side by
// side.
type CustomPaths struct {
	CustomHome string
}

func (p *CustomPaths) CreateConfigPathFor(relFilePath ConfigPath) (string, error) {
	return createFileIn(p.ConfigPathFor(relFilePath))
}

func (p *CustomPaths) CreateConfigDirFor(relDirPath ConfigPath) (string, error) {
	return createDir(p.ConfigPathFor(relDirPath))
}

func (p *CustomPaths) CreateDataPathFor(relFilePath DataPath) (string, error) {
	return createFileIn(p.DataPathFor(relFilePath))
}

func (p *CustomPaths) CreateDataDirFor(relDirPath DataPath) (string, error) {
	return createDir(p.DataPathFor(relDirPath))
}

func (p *CustomPaths) ConfigPathFor(relFilePath ConfigPath) string {
	return filepath.Join(p.CustomHome, "config", relFilePath.String())
}

func (p *CustomPaths) DataPathFor(relFilePath DataPath) string {
	return filepath.Join(p.CustomHome, "data", relFilePath.String())
}

func createFileIn(path string) (string, error) {
	dir := filepath.Dir(path)
	if err := vgfs.EnsureDir(dir); err != nil {
		return "", fmt.Errorf("couldn't create parent directories for %s: %w", path, err)
	}
	return path, nil
}

func createDir(path string) (string, error) {
	if err := vgfs.EnsureDir(path); err != nil {
		return "", fmt.Errorf("couldn't create directories for %s: %w", path, err)
	}
	return path, nil
}
