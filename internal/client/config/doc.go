// Package config loads runtime configuration for the shardfetch client.
//
// Sources & precedence
//
//  1. Built-in defaults (see Defaults).
//  2. Optional JSON file selected with -c or -config.
//  3. SHARDFETCH_* environment variables.
//  4. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-b string   bridge endpoint URL
//	-s string   farmer transport scheme (http or https)
//	-p string   gateway protocol (http or grpc)
//	-u string   bridge user for basic auth
//	-t duration bridge request timeout
//	-chunk int  sink chunk size in bytes
//	-sink string  sink kind (memory, disk, sqlite, postgres, badger, s3)
//	-sink-dir string  directory for the disk and badger sinks
//	-sink-dsn string  DSN for the sqlite and postgres sinks
//	-log-level string  debug, info, warn or error
//
// # JSON schema
//
// Durations use timex.Duration, so "30s" and integer nanoseconds both work:
//
//	{
//	  "bridge_url": "https://api.storj.io",
//	  "transport_scheme": "http",
//	  "request_timeout": "30s",
//	  "sink": {"kind": "disk", "dir": "/var/lib/shardfetch"}
//	}
//
// The bridge password is never read from flags; use the environment, the
// JSON file or the interactive prompt.
package config
