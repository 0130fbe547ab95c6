package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/rs/zerolog/log"
)

// AppConfig holds all application configuration loaded from environment variables.
// These are populated at startup by the LoadConfig function.
var (
	// LogLevel controls the global zerolog level (debug, info, warn, error).
	LogLevel string

	// PoolFile is the default pool state snapshot consumed by the CLI when
	// no --pool flag is given.
	PoolFile string

	// PrettyOutput toggles indented JSON on the CLI result output.
	PrettyOutput bool
)

// LoadConfig loads configuration from environment variables and sets the
// global config vars. Every variable has a sensible default, so an empty
// environment is valid.
func LoadConfig() error {
	log.Info().Msg("Loading application configuration from environment variables...")

	var err error

	LogLevel = getEnvWithDefault("VSE_LOG_LEVEL", "info")
	PoolFile = getEnvWithDefault("VSE_POOL_FILE", "pool.json")

	PrettyOutput, err = getEnvAsBoolWithDefault("VSE_PRETTY_OUTPUT", true)
	if err != nil {
		return err
	}

	log.Debug().
		Str("LogLevel", LogLevel).
		Str("PoolFile", PoolFile).
		Bool("PrettyOutput", PrettyOutput).
		Msg("Configuration loaded successfully.")

	return nil
}

// getEnvWithDefault retrieves a string environment variable, falling back to
// a default when unset.
func getEnvWithDefault(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvAsBoolWithDefault retrieves an environment variable as a bool,
// falling back to a default when unset. Returns error if set but invalid.
func getEnvAsBoolWithDefault(key string, fallback bool) (bool, error) {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return fallback, nil
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return false, errors.New("environment variable " + key + " must be a valid bool, got: " + valueStr)
	}
	return value, nil
}
