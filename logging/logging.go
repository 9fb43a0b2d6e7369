package logging

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	DevEnv  = "dev"
	ProdEnv = "prod"
)

var ErrUnsupportedEnvironment = errors.New("unsupported logging environment")

// Rotation configures the log file kept alongside the standard error.
type Rotation struct {
	Filename string
	// MaxSize is the size, in megabytes, a file reaches before rotation.
	MaxSize int
	// MaxAge is the number of days the rotated files are kept.
	MaxAge     int
	MaxBackups int
}

// Build returns a logger configured for the given environment. The dev
// environment writes human-readable lines, the prod environment writes
// JSON. The output is a zap sink, such as "stdout", "stderr" or a file path.
func Build(env string, level zapcore.Level, output string) (*zap.Logger, error) {
	config, err := configFor(env, level)
	if err != nil {
		return nil, err
	}

	config.OutputPaths = []string{output}
	config.ErrorOutputPaths = []string{"stderr"}

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("could not build the logger: %w", err)
	}
	return logger, nil
}

// BuildWithRotation returns a logger writing to the standard error and,
// as JSON, to a rotated file.
func BuildWithRotation(env string, level zapcore.Level, rotation Rotation) (*zap.Logger, error) {
	config, err := configFor(env, level)
	if err != nil {
		return nil, err
	}

	var stderrEncoder zapcore.Encoder
	if config.Encoding == "console" {
		stderrEncoder = zapcore.NewConsoleEncoder(config.EncoderConfig)
	} else {
		stderrEncoder = zapcore.NewJSONEncoder(config.EncoderConfig)
	}

	prodConfig, _ := configFor(ProdEnv, level)
	fileWriter := zapcore.AddSync(&lumberjack.Logger{
		Filename:   rotation.Filename,
		MaxSize:    rotation.MaxSize,
		MaxAge:     rotation.MaxAge,
		MaxBackups: rotation.MaxBackups,
		Compress:   true,
	})

	core := zapcore.NewTee(
		zapcore.NewCore(stderrEncoder, zapcore.Lock(os.Stderr), config.Level),
		zapcore.NewCore(zapcore.NewJSONEncoder(prodConfig.EncoderConfig), fileWriter, config.Level),
	)

	return zap.New(core, zap.AddCaller()), nil
}

func configFor(env string, level zapcore.Level) (zap.Config, error) {
	var config zap.Config

	switch env {
	case DevEnv:
		config = zap.Config{
			Level:       zap.NewAtomicLevelAt(level),
			Development: true,
			Encoding:    "console",
			EncoderConfig: zapcore.EncoderConfig{
				CallerKey:      "C",
				EncodeCaller:   zapcore.ShortCallerEncoder,
				EncodeDuration: zapcore.StringDurationEncoder,
				EncodeLevel:    zapcore.CapitalLevelEncoder,
				EncodeName:     zapcore.FullNameEncoder,
				EncodeTime:     zapcore.ISO8601TimeEncoder,
				LevelKey:       "L",
				LineEnding:     "\n",
				MessageKey:     "M",
				NameKey:        "N",
				TimeKey:        "T",
			},
		}
	case ProdEnv:
		config = zap.Config{
			Level:       zap.NewAtomicLevelAt(level),
			Development: false,
			Encoding:    "json",
			EncoderConfig: zapcore.EncoderConfig{
				CallerKey:      "caller",
				EncodeCaller:   zapcore.ShortCallerEncoder,
				EncodeDuration: zapcore.SecondsDurationEncoder,
				EncodeLevel:    zapcore.LowercaseLevelEncoder,
				EncodeName:     zapcore.FullNameEncoder,
				EncodeTime:     zapcore.ISO8601TimeEncoder,
				LevelKey:       "level",
				LineEnding:     "\n",
				MessageKey:     "message",
				NameKey:        "logger",
				StacktraceKey:  "stacktrace",
				TimeKey:        "@timestamp",
			},
		}
	default:
		return zap.Config{}, fmt.Errorf("%w: %q", ErrUnsupportedEnvironment, env)
	}

	return config, nil
}
