package util

import (
	"path/filepath"
	"strings"
)

// DefaultAppName names the config, cache and log directories.
const DefaultAppName = "cafefarm"

// AppVersion is stamped at build time with -ldflags.
var AppVersion = "dev"

var appName = DefaultAppName

// SetAppName changes the directory name used by the path helpers.
func SetAppName(name string) {
	if n := strings.TrimSpace(name); n != "" {
		appName = n
	}
}

// AppName returns the effective application name.
func AppName() string {
	return appName
}

// GetConfigFilePath returns the optional YAML config path:
//   - Linux/Unix:  ~/.config/<AppName>/config.yaml
//   - macOS:       ~/Library/Preferences/<AppName>/config.yaml
//   - Windows:     %APPDATA%/<AppName>/config.yaml
func GetConfigFilePath() string {
	return filepath.Join(baseOr(platformConfigDir(appName), "config"), "config.yaml")
}

// GetLedgerDBPath returns the reward ledger database path.
// Layout: <CachesBase>/ledger/rewards.db
func GetLedgerDBPath() string {
	return filepath.Join(baseOr(platformCacheDir(appName), "cache"), "ledger", "rewards.db")
}

// GetLogFilePath returns the rotated log file path.
// Layout: <LogBase>/pokecafe.log
func GetLogFilePath() string {
	return filepath.Join(baseOr(platformLogDir(appName), "logs"), "pokecafe.log")
}

func baseOr(dir, fallback string) string {
	if d := strings.TrimSpace(dir); d != "" {
		return d
	}
	return filepath.Join(".", fallback, appName)
}
