// Package config loads cid configuration.
//
// Project settings come from .cid/config.yaml with CID_* environment
// overrides; everything has a working default so a project with no config
// file behaves per spec. Daemon tuning lives separately in ~/.cid/daemon.toml.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"cid/internal/paths"
)

// Config holds client and policy settings for one project.
type Config struct {
	// QueryTimeout bounds every IPC call.
	QueryTimeout time.Duration `mapstructure:"queryTimeoutMs"`
	// StartTimeout bounds the daemon startup poll after a spawn.
	StartTimeout time.Duration `mapstructure:"startTimeoutMs"`
	// LockWait bounds the poll while another caller holds the startup lock.
	LockWait time.Duration `mapstructure:"lockWaitMs"`
	// PollInterval is the sleep between liveness polls.
	PollInterval time.Duration `mapstructure:"pollIntervalMs"`
	// LockStaleness is the age past which a startup lock is reclaimable.
	LockStaleness time.Duration `mapstructure:"lockStalenessMs"`
	// HintTTL is the age past which a session hint is ignored.
	HintTTL time.Duration `mapstructure:"hintTtlMs"`
	// MinInterceptBytes is the file size below which reads pass through.
	MinInterceptBytes int64 `mapstructure:"minInterceptBytes"`
	// SmallLimitLines: a read with limit below this expresses precise
	// intent and is never intercepted.
	SmallLimitLines int `mapstructure:"smallLimitLines"`
	// AllowPatterns extends the built-in read allow-list.
	AllowPatterns []string `mapstructure:"allowPatterns"`
	// LogLevel for the client and hook log.
	LogLevel string `mapstructure:"logLevel"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		QueryTimeout:      3 * time.Second,
		StartTimeout:      10 * time.Second,
		LockWait:          5 * time.Second,
		PollInterval:      100 * time.Millisecond,
		LockStaleness:     30 * time.Second,
		HintTTL:           30 * time.Second,
		MinInterceptBytes: 3000,
		SmallLimitLines:   100,
		LogLevel:          "info",
	}
}

// Load reads project configuration, falling back to defaults for any
// missing or unreadable value. Load never fails: a broken config file
// must not take the read path down with it.
func Load(projectDir string) Config {
	cfg := Default()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if dir, err := paths.StateDir(projectDir); err == nil {
		v.AddConfigPath(dir)
	}
	v.SetEnvPrefix("CID")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("queryTimeoutMs", cfg.QueryTimeout.Milliseconds())
	v.SetDefault("startTimeoutMs", cfg.StartTimeout.Milliseconds())
	v.SetDefault("lockWaitMs", cfg.LockWait.Milliseconds())
	v.SetDefault("pollIntervalMs", cfg.PollInterval.Milliseconds())
	v.SetDefault("lockStalenessMs", cfg.LockStaleness.Milliseconds())
	v.SetDefault("hintTtlMs", cfg.HintTTL.Milliseconds())
	v.SetDefault("minInterceptBytes", cfg.MinInterceptBytes)
	v.SetDefault("smallLimitLines", cfg.SmallLimitLines)
	v.SetDefault("logLevel", cfg.LogLevel)

	if err := v.ReadInConfig(); err != nil {
		// Missing file is the common case; anything else still degrades
		// to defaults.
		return fromViper(v, cfg)
	}
	return fromViper(v, cfg)
}

func fromViper(v *viper.Viper, cfg Config) Config {
	cfg.QueryTimeout = time.Duration(v.GetInt64("queryTimeoutMs")) * time.Millisecond
	cfg.StartTimeout = time.Duration(v.GetInt64("startTimeoutMs")) * time.Millisecond
	cfg.LockWait = time.Duration(v.GetInt64("lockWaitMs")) * time.Millisecond
	cfg.PollInterval = time.Duration(v.GetInt64("pollIntervalMs")) * time.Millisecond
	cfg.LockStaleness = time.Duration(v.GetInt64("lockStalenessMs")) * time.Millisecond
	cfg.HintTTL = time.Duration(v.GetInt64("hintTtlMs")) * time.Millisecond
	cfg.MinInterceptBytes = v.GetInt64("minInterceptBytes")
	cfg.SmallLimitLines = v.GetInt("smallLimitLines")
	cfg.AllowPatterns = v.GetStringSlice("allowPatterns")
	cfg.LogLevel = v.GetString("logLevel")
	return cfg
}

// HomeConfigDir returns the user-level cid directory (~/.cid).
func HomeConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cid"), nil
}
