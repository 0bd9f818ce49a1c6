// Package config loads the farm settings from the environment and an optional
// YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/small-frappuccino/cafefarm/pkg/cafe/rewards"
	"github.com/small-frappuccino/cafefarm/pkg/discord/dispatch"
	"github.com/small-frappuccino/cafefarm/pkg/errutil"
	"github.com/small-frappuccino/cafefarm/pkg/util"
	"gopkg.in/yaml.v3"
)

// Environment variables. Values set here win over the YAML file.
const (
	EnvToken          = "CAFE_TOKEN"
	EnvConfigFile     = "CAFE_CONFIG_FILE"
	EnvChannelID      = "CAFE_CHANNEL_ID"
	EnvBotID          = "CAFE_BOT_ID"
	EnvDelay          = "CAFE_DELAY"
	EnvEvents         = "CAFE_EVENTS"
	EnvDebug          = "CAFE_DEBUG"
	EnvDebugMessageID = "CAFE_DEBUG_MESSAGE_ID"
	EnvDBPath         = "CAFE_DB_PATH"
	EnvLogFile        = "CAFE_LOG_FILE"
	EnvLogLevel       = "CAFE_LOG_LEVEL"
	EnvControlAddr    = "CAFE_CONTROL_ADDR"
)

var (
	ErrMissingChannel = errors.New("channel id is not set")
	ErrMissingToken   = errors.New("discord token is not set")
)

// Config holds every tunable of the farm.
type Config struct {
	Token string `yaml:"-"`

	ChannelID string   `yaml:"channel_id"`
	BotID     string   `yaml:"bot_id"`
	Events    []string `yaml:"events"`

	// DelaySeconds separates an order submission from the next order request.
	DelaySeconds float64 `yaml:"delay_seconds"`
	// DonationBatch caps the amount donated per command.
	DonationBatch int `yaml:"donation_batch"`
	// DonationCooldownSeconds follows every donate command.
	DonationCooldownSeconds float64 `yaml:"donation_cooldown_seconds"`

	Debug          bool   `yaml:"debug"`
	DebugMessageID string `yaml:"debug_message_id"`

	DBPath   string `yaml:"db_path"`
	LogFile  string `yaml:"log_file"`
	LogLevel string `yaml:"log_level"`

	// ControlAddr enables the local status API when set, e.g. 127.0.0.1:8077.
	ControlAddr string `yaml:"control_addr"`
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		BotID:                   dispatch.DefaultBotID,
		Events:                  append([]string(nil), rewards.DefaultEvents...),
		DelaySeconds:            2,
		DonationBatch:           dispatch.MaxDonation,
		DonationCooldownSeconds: 6,
		DebugMessageID:          "12354",
		DBPath:                  util.GetLedgerDBPath(),
		LogFile:                 util.GetLogFilePath(),
		LogLevel:                "info",
	}
}

// Load builds the configuration: defaults, then the YAML file (CAFE_CONFIG_FILE,
// or the platform config path when it exists), then environment variables.
// The result is validated.
func Load() (Config, error) {
	cfg := Default()

	path, explicit := os.LookupEnv(EnvConfigFile)
	if !explicit || strings.TrimSpace(path) == "" {
		path = util.GetConfigFilePath()
		explicit = false
	}
	if _, err := os.Stat(path); err == nil || explicit {
		if err := LoadFile(path, &cfg); err != nil {
			return cfg, err
		}
	}

	token, tokenErr := util.LoadEnvWithLocalBinFallback(EnvToken)
	cfg.Token = token
	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		if errors.Is(err, ErrMissingToken) && tokenErr != nil {
			return cfg, fmt.Errorf("%w: %v", err, tokenErr)
		}
		return cfg, err
	}
	return cfg, nil
}

// LoadFile overlays the YAML file at path onto cfg.
func LoadFile(path string, cfg *Config) error {
	return errutil.HandleConfigError("load", path, func() error {
		raw, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return fmt.Errorf("parse yaml: %w", err)
		}
		return nil
	})
}

// ApplyEnv overlays environment variables onto c.
func (c *Config) ApplyEnv() {
	c.ChannelID = util.EnvString(EnvChannelID, c.ChannelID)
	c.BotID = util.EnvString(EnvBotID, c.BotID)
	if events := util.EnvList(EnvEvents); events != nil {
		c.Events = events
	}
	c.DelaySeconds = util.EnvSeconds(EnvDelay, c.Delay()).Seconds()
	if _, ok := os.LookupEnv(EnvDebug); ok {
		c.Debug = util.EnvBool(EnvDebug)
	}
	c.DebugMessageID = util.EnvString(EnvDebugMessageID, c.DebugMessageID)
	c.DBPath = util.EnvString(EnvDBPath, c.DBPath)
	c.LogFile = util.EnvString(EnvLogFile, c.LogFile)
	c.LogLevel = util.EnvString(EnvLogLevel, c.LogLevel)
	c.ControlAddr = util.EnvString(EnvControlAddr, c.ControlAddr)
}

// Validate reports settings the farm cannot run without.
func (c Config) Validate() error {
	if strings.TrimSpace(c.ChannelID) == "" {
		return ErrMissingChannel
	}
	if strings.TrimSpace(c.Token) == "" {
		return ErrMissingToken
	}
	if strings.TrimSpace(c.BotID) == "" {
		return fmt.Errorf("bot id is empty")
	}
	if c.DonationBatch <= 0 || c.DonationBatch > dispatch.MaxDonation {
		return fmt.Errorf("donation batch must be between 1 and %d, got %d", dispatch.MaxDonation, c.DonationBatch)
	}
	if c.DelaySeconds < 0 || c.DonationCooldownSeconds < 0 {
		return fmt.Errorf("delays must not be negative")
	}
	return nil
}

// Warnings lists settings that are allowed but risky.
func (c Config) Warnings() []string {
	var out []string
	if c.Delay() <= time.Second {
		out = append(out, "Delay is set to less than or equal to 1, This can cause rate-limit issues...")
	}
	if len(c.Events) == 0 {
		out = append(out, "No event creatures configured; event counter will stay at zero")
	}
	return out
}

// Delay is the pause between an order submission and the next order request.
func (c Config) Delay() time.Duration {
	return seconds(c.DelaySeconds)
}

// DonationCooldown is the pause after each donate command.
func (c Config) DonationCooldown() time.Duration {
	return seconds(c.DonationCooldownSeconds)
}

func seconds(f float64) time.Duration {
	return time.Duration(f * float64(time.Second))
}
