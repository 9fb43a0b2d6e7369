package paths

import (
	"path/filepath"
)

// The home folder used under the XDG base directories, or under a custom
// home.
const appHome = "agwsession"

type ConfigPath string

func (p ConfigPath) String() string {
	return string(p)
}

type DataPath string

func (p DataPath) String() string {
	return string(p)
}

var (
	// ConfigHome is the folder containing the configuration files.
	ConfigHome = ConfigPath(appHome)

	// ServiceDefaultConfigFile is the configuration file of the session
	// service.
	ServiceDefaultConfigFile = JoinConfigPath(ConfigHome, "config.toml")
)

var (
	// DataHome is the folder containing the data files.
	DataHome = DataPath(appHome)

	// SessionsDataHome is the folder used by the file storage backend.
	SessionsDataHome = JoinDataPath(DataHome, "sessions")

	// SessionsLevelDBDataHome is the folder used by the LevelDB storage
	// backend.
	SessionsLevelDBDataHome = JoinDataPath(DataHome, "sessions.db")

	// LogFile is the rotated log file, when enabled.
	LogFile = JoinDataPath(DataHome, "logs", "agwsession.log")
)

// JoinConfigPath joins any number of path elements with a root ConfigPath
// into a single path, separating them with an OS specific separator.
func JoinConfigPath(p ConfigPath, elem ...string) ConfigPath {
	return ConfigPath(filepath.Join(append([]string{p.String()}, elem...)...))
}

// JoinDataPath joins any number of path elements with a root DataPath
// into a single path, separating them with an OS specific separator.
func JoinDataPath(p DataPath, elem ...string) DataPath {
	return DataPath(filepath.Join(append([]string{p.String()}, elem...)...))
}
