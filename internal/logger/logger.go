// Package logger configures the global zerolog logger for the command line
// tools.
package logger

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/cognicore/ngramq/pkg/ngramq/config"
)

// FileName is the log file written inside Env.LogDir.
const FileName = "ngramq.log"

// Configure installs the global logger described by env. Console output
// goes to stderr so command output on stdout stays clean. The returned
// closer flushes the log file, if any.
func Configure(env *config.Env) (io.Closer, error) {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	level, err := zerolog.ParseLevel(env.LogLevel)
	if err != nil {
		return nil, err
	}
	if env.DevMode && level > zerolog.DebugLevel {
		level = zerolog.DebugLevel
	}

	var console io.Writer = os.Stderr
	if env.DevMode {
		console = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	}

	writers := []io.Writer{console}
	var closer io.Closer = nopCloser{}
	if env.LogDir != "" {
		if err := os.MkdirAll(env.LogDir, os.ModePerm); err != nil {
			return nil, err
		}
		file := &lumberjack.Logger{
			Filename:   filepath.Join(env.LogDir, FileName),
			MaxSize:    20,
			MaxBackups: 5,
			MaxAge:     28,
			Compress:   true,
		}
		writers = append(writers, file)
		closer = file
	}

	log.Logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).
		With().
		Timestamp().
		Logger().
		Level(level)
	return closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
