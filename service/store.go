package service

import (
	"fmt"

	vgfs "github.com/abstract-foundation/agw-session-keys/libs/fs"
	"github.com/abstract-foundation/agw-session-keys/paths"
)

type ConfigStore struct {
	configFilePath string
}

func InitialiseConfigStore(agwPaths paths.Paths) (*ConfigStore, error) {
	configFilePath, err := agwPaths.CreateConfigPathFor(paths.ServiceDefaultConfigFile)
	if err != nil {
		return nil, fmt.Errorf("couldn't get config path for %s: %w", paths.ServiceDefaultConfigFile, err)
	}

	return &ConfigStore{
		configFilePath: configFilePath,
	}, nil
}

func (s *ConfigStore) ConfigExists() (bool, error) {
	exists, err := vgfs.FileExists(s.configFilePath)
	if err != nil {
		return false, fmt.Errorf("could not verify the service configuration file existence: %w", err)
	}

	return exists, nil
}

// GetConfig returns the configuration from the file, completed with the
// default values. Without file, the default configuration is returned.
func (s *ConfigStore) GetConfig() (*Config, error) {
	return LoadConfig(s.configFilePath)
}

func (s *ConfigStore) SaveConfig(config *Config) error {
	if err := paths.WriteStructuredFile(s.configFilePath, config); err != nil {
		return fmt.Errorf("could not write the service configuration file: %w", err)
	}
	return nil
}

func (s *ConfigStore) ConfigPath() string {
	return s.configFilePath
}

func LoadConfig(path string) (*Config, error) {
	if exists, err := vgfs.FileExists(path); err != nil {
		return nil, fmt.Errorf("could not verify the service configuration file existence: %w", err)
	} else if !exists {
		return DefaultConfig(), nil
	}

	config := &Config{}
	if err := paths.ReadStructuredFile(path, config); err != nil {
		return nil, fmt.Errorf("could not read the service configuration file: %w", err)
	}

	if err := config.WithDefaults(); err != nil {
		return nil, err
	}
	return config, nil
}
