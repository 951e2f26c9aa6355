package config

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// TuningFile is the daemon tuning file under ~/.cid.
const TuningFile = "daemon.toml"

// Tuning holds daemon-side knobs shared by every project's daemon.
type Tuning struct {
	// IdleShutdownMinutes stops the daemon after this long with no
	// queries. Zero disables idle shutdown.
	IdleShutdownMinutes int `toml:"idle_shutdown_minutes"`
	// WarmCache enables the zstd snapshot written on cache_warm.
	WarmCache bool `toml:"warm_cache"`
	// ActivityRetentionDays prunes tracking rows older than this.
	ActivityRetentionDays int `toml:"activity_retention_days"`
}

// DefaultTuning returns the built-in daemon tuning.
func DefaultTuning() Tuning {
	return Tuning{
		IdleShutdownMinutes:   120,
		WarmCache:             true,
		ActivityRetentionDays: 14,
	}
}

// LoadTuning reads ~/.cid/daemon.toml, returning defaults if the file is
// missing or malformed.
func LoadTuning() Tuning {
	tuning := DefaultTuning()

	dir, err := HomeConfigDir()
	if err != nil {
		return tuning
	}
	data, err := os.ReadFile(filepath.Join(dir, TuningFile))
	if err != nil {
		return tuning
	}
	if err := toml.Unmarshal(data, &tuning); err != nil {
		return DefaultTuning()
	}
	return tuning
}
