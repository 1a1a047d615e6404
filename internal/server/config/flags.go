package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/sketchkeeper/internal/flagx"
)

// parseFlags populates server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8000")
//	-d string   PostgreSQL DSN
//	-s string   session token HMAC secret key
//	-t int      session validity, minutes
//	-r string   Redis address
//	-e int      snapshot cache TTL, seconds
//	-l int      maximum number of listed drawings
//	-v string   log level
//
// Arguments are first filtered with flagx.FilterArgs, so flags meant for
// other components (like -c) do not break parsing.
func parseFlags(config *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-a", "-d", "-s", "-t", "-r", "-e", "-l", "-v"})

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	sessionValidity := fs.Int("t", int(config.SessionValidityDuration.Minutes()), "session validity (in minutes)")
	fs.StringVar(&config.RedisAddr, "r", config.RedisAddr, "redis address")
	cacheTTL := fs.Int("e", int(config.SnapshotCacheTTL.Seconds()), "snapshot cache TTL (in seconds)")
	fs.IntVar(&config.MaxListedDrawings, "l", config.MaxListedDrawings, "max listed drawings")
	fs.StringVar(&config.LogLevel, "v", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.SessionValidityDuration = time.Duration(*sessionValidity) * time.Minute
	config.SnapshotCacheTTL = time.Duration(*cacheTTL) * time.Second
}
