package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/sketchkeeper/internal/flagx"
	"github.com/dmitrijs2005/sketchkeeper/internal/timex"
)

// JsonConfig is the on-disk form of Config. Zero values leave the current
// setting untouched.
type JsonConfig struct {
	ServerURL      string         `json:"server_url"`
	DatabasePath   string         `json:"database_path"`
	DrawingPath    string         `json:"drawing_path"`
	StartPath      string         `json:"start_path"`
	RequestTimeout timex.Duration `json:"request_timeout"`
	LogLevel       string         `json:"log_level"`
}

func parseJson(cfg *Config, args []string) {
	path := flagx.JsonConfigPath(args)
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	overlay(&cfg.ServerURL, jc.ServerURL)
	overlay(&cfg.DatabasePath, jc.DatabasePath)
	overlay(&cfg.DrawingPath, jc.DrawingPath)
	overlay(&cfg.StartPath, jc.StartPath)
	overlay(&cfg.LogLevel, jc.LogLevel)
	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
}

func overlay(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
