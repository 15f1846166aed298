package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/dmitrijs2005/shardfetch/internal/bridge"
	"github.com/dmitrijs2005/shardfetch/internal/sink"
)

var ErrConfig = errors.New("invalid configuration")

// Config holds runtime settings for the download client.
//
// BridgeURL is the directory service endpoint; TransportScheme is the
// scheme used to reach farmers.
type Config struct {
	BridgeURL       string
	TransportScheme string
	GatewayProtocol string
	BridgeUser      string
	BridgePassword  string
	RequestTimeout  time.Duration
	ChunkSize       int

	SinkKind    string
	SinkDir     string
	SinkDSN     string
	S3Bucket    string
	S3Prefix    string
	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string

	LogLevel string
}

const (
	DefaultBridgeURL       = "https://api.storj.io"
	DefaultTransportScheme = "http"
	DefaultRequestTimeout  = 30 * time.Second
	DefaultChunkSize       = 64 * 1024
)

// Defaults returns a fresh Config filled with the built-in defaults.
func Defaults() Config {
	return Config{
		BridgeURL:       DefaultBridgeURL,
		TransportScheme: DefaultTransportScheme,
		GatewayProtocol: bridge.ProtocolHTTP,
		RequestTimeout:  DefaultRequestTimeout,
		ChunkSize:       DefaultChunkSize,
		SinkKind:        sink.KindMemory,
		LogLevel:        "info",
	}
}

// WithDefaults returns c with every zero field replaced by its default.
func (c Config) WithDefaults() Config {
	d := Defaults()
	if c.BridgeURL == "" {
		c.BridgeURL = d.BridgeURL
	}
	if c.TransportScheme == "" {
		c.TransportScheme = d.TransportScheme
	}
	if c.GatewayProtocol == "" {
		c.GatewayProtocol = d.GatewayProtocol
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = d.RequestTimeout
	}
	if c.ChunkSize == 0 {
		c.ChunkSize = d.ChunkSize
	}
	if c.SinkKind == "" {
		c.SinkKind = d.SinkKind
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	return c
}

// Validate reports an ErrConfig for settings the client cannot run with.
func (c Config) Validate() error {
	if c.BridgeURL == "" {
		return fmt.Errorf("%w: bridge URL is empty", ErrConfig)
	}
	u, err := url.Parse(c.BridgeURL)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("%w: bridge URL %q is not an absolute URL", ErrConfig, c.BridgeURL)
	}
	switch c.TransportScheme {
	case "http", "https":
	case "":
		return fmt.Errorf("%w: transport scheme is empty", ErrConfig)
	default:
		return fmt.Errorf("%w: transport scheme %q is not http or https", ErrConfig, c.TransportScheme)
	}
	switch c.GatewayProtocol {
	case bridge.ProtocolHTTP, bridge.ProtocolGRPC:
	default:
		return fmt.Errorf("%w: gateway protocol %q is not http or grpc", ErrConfig, c.GatewayProtocol)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("%w: negative request timeout", ErrConfig)
	}
	if c.ChunkSize < 0 {
		return fmt.Errorf("%w: negative chunk size", ErrConfig)
	}
	return nil
}

// Sink returns the sink settings in the form sink.Open expects.
func (c Config) Sink() sink.Config {
	return sink.Config{
		Kind: c.SinkKind,
		Dir:  c.SinkDir,
		DSN:  c.SinkDSN,
		S3: sink.S3Config{
			Bucket:    c.S3Bucket,
			Prefix:    c.S3Prefix,
			Region:    c.S3Region,
			Endpoint:  c.S3Endpoint,
			AccessKey: c.S3AccessKey,
			SecretKey: c.S3SecretKey,
		},
	}
}

// LoadConfig builds a Config from defaults, then the JSON file named by
// -c/-config in args, then the environment, then the flags in args.
func LoadConfig(args []string) (*Config, error) {
	cfg := Defaults()
	if err := parseJSON(&cfg, args); err != nil {
		return nil, fmt.Errorf("json config: %w", err)
	}
	if err := parseEnv(&cfg); err != nil {
		return nil, fmt.Errorf("env config: %w", err)
	}
	if err := parseFlags(&cfg, args); err != nil {
		return nil, fmt.Errorf("flags: %w", err)
	}
	return &cfg, nil
}
