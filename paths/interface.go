package paths

import "os"

// HomeEnvVar overrides the default home when no custom home is given.
const HomeEnvVar = "AGWSESSION_HOME"

// Paths resolves the location of the configuration and data files, and
// creates their parent directories on demand.
type Paths interface {
	CreateConfigPathFor(ConfigPath) (string, error)
	CreateConfigDirFor(ConfigPath) (string, error)
	CreateDataPathFor(DataPath) (string, error)
	CreateDataDirFor(DataPath) (string, error)
	ConfigPathFor(ConfigPath) string
	DataPathFor(DataPath) string
}

// New returns paths rooted at customHome. Without customHome, they are
// rooted at $AGWSESSION_HOME if set, or follow the XDG base directories.
func New(customHome string) Paths {
	if customHome == "" {
		customHome = os.Getenv(HomeEnvVar)
	}
	if customHome == "" {
		return &DefaultPaths{}
	}

	return &CustomPaths{
		CustomHome: customHome,
	}
}
