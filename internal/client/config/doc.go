// Package config loads runtime configuration for the sketchkeeper client.
//
// Sources, later ones win:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Command-line flags.
//
// Flags
//
//	-a string   base URL of the drawing server
//	-d string   path of the local SQLite database
//	-f string   drawing file to watch (empty keeps the drawing in memory)
//	-p string   start location handed to the entry router
//	-t int      request timeout (seconds)
//	-l string   log level
//
// JSON durations accept "10s" style strings or integer nanoseconds:
//
//	{
//	  "server_url": "http://127.0.0.1:8000",
//	  "database_path": "sketchkeeper.db",
//	  "request_timeout": "10s"
//	}
package config
