package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/sketchkeeper/internal/flagx"
	"github.com/dmitrijs2005/sketchkeeper/internal/timex"
)

// JsonConfig is the JSON form of Config. Durations use timex.Duration, so
// both "1h" strings and integer nanoseconds are accepted. Zero values leave
// the current setting untouched.
type JsonConfig struct {
	EndpointAddr            string         `json:"endpoint_addr"`
	DatabaseDSN             string         `json:"database_dsn"`
	SecretKey               string         `json:"secret_key"`
	SessionValidityDuration timex.Duration `json:"session_validity_duration"`
	RedisAddr               string         `json:"redis_addr"`
	SnapshotCacheTTL        timex.Duration `json:"snapshot_cache_ttl"`
	MaxListedDrawings       int            `json:"max_listed_drawings"`
	LogLevel                string         `json:"log_level"`
}

// parseJson loads the file named by -c or -config into config. Without the
// flag nothing is loaded. It panics when the file cannot be read or parsed.
func parseJson(config *Config, args []string) {
	path := flagx.JsonConfigPath(args)
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddr, c.EndpointAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.RedisAddr, c.RedisAddr)
	setString(&config.LogLevel, c.LogLevel)
	if c.SessionValidityDuration.Duration > 0 {
		config.SessionValidityDuration = c.SessionValidityDuration.Duration
	}
	if c.SnapshotCacheTTL.Duration > 0 {
		config.SnapshotCacheTTL = c.SnapshotCacheTTL.Duration
	}
	if c.MaxListedDrawings > 0 {
		config.MaxListedDrawings = c.MaxListedDrawings
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
