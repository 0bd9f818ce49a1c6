package util

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// LoadEnvWithLocalBinFallback ensures the specified environment variable is present.
// It always attempts to load a single fallback file located at $HOME/.local/bin/.env
// to populate any variables that are currently missing from the environment (without
// overwriting already-set variables). Then it reads and returns the requested variable.
//
// Returns the value of the environment variable when found, or a non-nil error if the
// variable remains unset after the fallback attempt.
func LoadEnvWithLocalBinFallback(tokenEnvName string) (string, error) {
	home, homeErr := os.UserHomeDir()
	var envPath string
	if homeErr == nil && home != "" {
		envPath = filepath.Join(home, ".local", "bin", ".env")
		if info, statErr := os.Stat(envPath); statErr == nil && !info.IsDir() {
			// godotenv.Load will NOT override variables that are already set.
			_ = godotenv.Load(envPath)
		}
	}

	if v := os.Getenv(tokenEnvName); v != "" {
		return v, nil
	}

	if envPath == "" {
		return "", fmt.Errorf("environment variable %q not set and home directory unresolved", tokenEnvName)
	}
	return "", fmt.Errorf("environment variable %q not set; attempted to load fallback file %s", tokenEnvName, envPath)
}

// EnvString returns the trimmed value of key, or def when unset or blank.
func EnvString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// EnvBool reports whether key holds a truthy value (1, true, yes, on).
func EnvBool(key string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}

// EnvInt64 parses key as an integer, returning def when unset or invalid.
func EnvInt64(key string, def int64) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}
	return n
}

// EnvSeconds parses key as a number of seconds (fractions allowed), returning
// def when unset or invalid.
func EnvSeconds(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		return def
	}
	return time.Duration(f * float64(time.Second))
}

// EnvList splits a comma-separated value into trimmed, non-empty items.
// It returns nil when key is unset.
func EnvList(key string) []string {
	v := os.Getenv(key)
	if strings.TrimSpace(v) == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
