// Package config loads droponoff's tunables from an optional dotenv file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables that override the defaults.
const (
	EnvPollInterval   = "DROPONOFF_POLL_INTERVAL"
	EnvProcessTimeout = "DROPONOFF_PROCESS_TIMEOUT"
	EnvVerifyAttempts = "DROPONOFF_VERIFY_ATTEMPTS"
	EnvVerifyDelay    = "DROPONOFF_VERIFY_DELAY"
)

// Config holds orchestration timing.
type Config struct {
	PollInterval   time.Duration // How often process waits re-enumerate
	ProcessTimeout time.Duration // Bound on each process wait
	VerifyAttempts int           // Snapshots taken by the convergence check
	VerifyDelay    time.Duration // Sleep between verification attempts
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		PollInterval:   100 * time.Millisecond,
		ProcessTimeout: 10 * time.Second,
		VerifyAttempts: 5,
		VerifyDelay:    500 * time.Millisecond,
	}
}

// DefaultEnvFile returns ~/.config/droponoff/env.
func DefaultEnvFile(home string) string {
	return filepath.Join(home, ".config", "droponoff", "env")
}

// Load reads envFile (if it exists) into the environment, then applies overrides.
// Variables already set in the environment win over the file.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}
	return FromEnv()
}

// FromEnv applies environment overrides to Default.
func FromEnv() (Config, error) {
	cfg := Default()

	var err error
	if cfg.PollInterval, err = durationEnv(EnvPollInterval, cfg.PollInterval); err != nil {
		return Config{}, err
	}
	if cfg.ProcessTimeout, err = durationEnv(EnvProcessTimeout, cfg.ProcessTimeout); err != nil {
		return Config{}, err
	}
	if cfg.VerifyDelay, err = durationEnv(EnvVerifyDelay, cfg.VerifyDelay); err != nil {
		return Config{}, err
	}
	if v := os.Getenv(EnvVerifyAttempts); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return Config{}, fmt.Errorf("invalid %s %q: must be a positive integer", EnvVerifyAttempts, v)
		}
		cfg.VerifyAttempts = n
	}

	return cfg, nil
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be positive", key, v)
	}
	return d, nil
}
