package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/shardfetch/internal/flagx"
)

// FlagNames are the flags owned by the config layer. Other components
// parsing the same args should skip them.
var FlagNames = []string{
	"-b", "-s", "-p", "-u", "-t", "-chunk",
	"-sink", "-sink-dir", "-sink-dsn", "-log-level",
}

// parseFlags overlays cfg with the config flags present in args.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, FlagNames)

	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.BridgeURL, "b", cfg.BridgeURL, "bridge endpoint URL")
	fs.StringVar(&cfg.TransportScheme, "s", cfg.TransportScheme, "farmer transport scheme")
	fs.StringVar(&cfg.GatewayProtocol, "p", cfg.GatewayProtocol, "gateway protocol (http or grpc)")
	fs.StringVar(&cfg.BridgeUser, "u", cfg.BridgeUser, "bridge user")
	fs.DurationVar(&cfg.RequestTimeout, "t", cfg.RequestTimeout, "bridge request timeout")
	fs.IntVar(&cfg.ChunkSize, "chunk", cfg.ChunkSize, "sink chunk size in bytes")
	fs.StringVar(&cfg.SinkKind, "sink", cfg.SinkKind, "sink kind")
	fs.StringVar(&cfg.SinkDir, "sink-dir", cfg.SinkDir, "sink directory")
	fs.StringVar(&cfg.SinkDSN, "sink-dsn", cfg.SinkDSN, "sink DSN")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")

	return fs.Parse(args)
}
