package logging_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/abstract-foundation/agw-session-keys/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestBuildingLogger(t *testing.T) {
	t.Run("Building a production logger writes JSON", testBuildingProductionLoggerWritesJSON)
	t.Run("Building a development logger writes text", testBuildingDevelopmentLoggerWritesText)
	t.Run("Messages below the level are dropped", testMessagesBelowTheLevelAreDropped)
	t.Run("Building with unknown environment fails", testBuildingWithUnknownEnvironmentFails)
	t.Run("Building with rotation writes JSON to the file", testBuildingWithRotationWritesJSONToFile)
	t.Run("Building with rotation and unknown environment fails", testBuildingWithRotationAndUnknownEnvironmentFails)
}

func testBuildingProductionLoggerWritesJSON(t *testing.T) {
	// given
	output := filepath.Join(t.TempDir(), "out.log")
	log, err := logging.Build(logging.ProdEnv, zapcore.InfoLevel, output)
	require.NoError(t, err)

	// when
	log.Named("store").Info("session saved", zap.String("account", "0xabc"))
	_ = log.Sync()

	// then
	content, err := os.ReadFile(output)
	require.NoError(t, err)
	entry := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(content, &entry))
	assert.Equal(t, "session saved", entry["message"])
	assert.Equal(t, "store", entry["logger"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "0xabc", entry["account"])
}

func testBuildingDevelopmentLoggerWritesText(t *testing.T) {
	// given
	output := filepath.Join(t.TempDir(), "out.log")
	log, err := logging.Build(logging.DevEnv, zapcore.DebugLevel, output)
	require.NoError(t, err)

	// when
	log.Debug("checking validity")
	_ = log.Sync()

	// then
	content, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(content), "DEBUG"))
	assert.True(t, strings.Contains(string(content), "checking validity"))
}

func testMessagesBelowTheLevelAreDropped(t *testing.T) {
	// given
	output := filepath.Join(t.TempDir(), "out.log")
	log, err := logging.Build(logging.ProdEnv, zapcore.WarnLevel, output)
	require.NoError(t, err)

	// when
	log.Info("not written")
	_ = log.Sync()

	// then
	content, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Empty(t, content)
}

func testBuildingWithUnknownEnvironmentFails(t *testing.T) {
	log, err := logging.Build("staging", zapcore.InfoLevel, "stdout")

	assert.ErrorIs(t, err, logging.ErrUnsupportedEnvironment)
	assert.Nil(t, log)
}

func testBuildingWithRotationWritesJSONToFile(t *testing.T) {
	// given
	filename := filepath.Join(t.TempDir(), "logs", "agwsession.log")
	log, err := logging.BuildWithRotation(logging.DevEnv, zapcore.InfoLevel, logging.Rotation{
		Filename:   filename,
		MaxSize:    1,
		MaxAge:     1,
		MaxBackups: 1,
	})
	require.NoError(t, err)

	// when
	log.Named("validator").Warn("could not retrieve the chain ID", zap.String("account", "0xabc"))
	log.Debug("not written")
	_ = log.Sync()

	// then
	content, err := os.ReadFile(filename)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 1)
	entry := map[string]interface{}{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "could not retrieve the chain ID", entry["message"])
	assert.Equal(t, "validator", entry["logger"])
	assert.Equal(t, "warn", entry["level"])
}

func testBuildingWithRotationAndUnknownEnvironmentFails(t *testing.T) {
	log, err := logging.BuildWithRotation("staging", zapcore.InfoLevel, logging.Rotation{
		Filename: filepath.Join(t.TempDir(), "agwsession.log"),
	})

	assert.ErrorIs(t, err, logging.ErrUnsupportedEnvironment)
	assert.Nil(t, log)
}
