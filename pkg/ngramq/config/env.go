package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// EnvPrefix is prepended to every environment variable, e.g. NGRAMQ_LOG_LEVEL.
const EnvPrefix = "ngramq"

// Env is the runtime configuration read from the environment.
type Env struct {
	// LogLevel is a zerolog level name.
	LogLevel string `split_words:"true" default:"info"`

	// LogDir enables a rotating log file in the directory. Empty logs to
	// the console only.
	LogDir string `split_words:"true"`

	// DevMode switches the console writer to human readable output.
	DevMode bool `split_words:"true"`

	// StoreDriver selects the analysis history backend: "file" or "sqlite".
	StoreDriver string `split_words:"true" default:"file"`

	// StorePath is the directory (file driver) or database file (sqlite driver).
	StorePath string `split_words:"true" default:"saved_analyses"`

	// CacheTTL bounds how long computed results are reused. Zero keeps them
	// for the life of the process.
	CacheTTL time.Duration `split_words:"true" default:"1h"`

	// Workers bounds how many n-gram sizes are analysed concurrently.
	Workers int `default:"4"`
}

// ParseEnv loads dotenvPath when it exists and then reads NGRAMQ_* variables.
func ParseEnv(dotenvPath string) (*Env, error) {
	if dotenvPath != "" {
		if _, err := os.Stat(dotenvPath); err == nil {
			if err := godotenv.Load(dotenvPath); err != nil {
				log.Warn().Err(err).Str("path", dotenvPath).Msg("failed to load .env file")
			}
		}
	}

	var env Env
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		_ = envconfig.Usage(EnvPrefix, &env)
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	if env.StoreDriver != "file" && env.StoreDriver != "sqlite" {
		return nil, fmt.Errorf("failed to parse configuration: unknown store driver %q", env.StoreDriver)
	}
	if env.Workers < 1 {
		env.Workers = 1
	}
	return &env, nil
}
