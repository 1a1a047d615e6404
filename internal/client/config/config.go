package config

import (
	"os"
	"time"
)

// Config holds runtime settings for the client.
type Config struct {
	ServerURL      string
	DatabasePath   string
	DrawingPath    string
	StartPath      string
	RequestTimeout time.Duration
	LogLevel       string
}

// LoadDefaults populates c with defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8000"
	c.DatabasePath = "sketchkeeper.db"
	c.DrawingPath = ""
	c.StartPath = "/"
	c.RequestTimeout = 10 * time.Second
	c.LogLevel = "warn"
}

// LoadConfig builds a Config from defaults, the optional JSON file and the
// process flags. It panics on malformed input.
func LoadConfig() *Config {
	return load(os.Args[1:])
}

func load(args []string) *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg, args)
	parseFlags(cfg, args)
	return cfg
}
