package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/shardfetch/internal/flagx"
	"github.com/dmitrijs2005/shardfetch/internal/timex"
)

// JsonConfig is the on-disk form of Config. Absent fields keep the values
// loaded before it.
type JsonConfig struct {
	BridgeURL       string         `json:"bridge_url"`
	TransportScheme string         `json:"transport_scheme"`
	GatewayProtocol string         `json:"gateway_protocol"`
	BridgeUser      string         `json:"bridge_user"`
	BridgePassword  string         `json:"bridge_password"`
	RequestTimeout  timex.Duration `json:"request_timeout"`
	ChunkSize       int            `json:"chunk_size"`
	LogLevel        string         `json:"log_level"`
	Sink            struct {
		Kind string `json:"kind"`
		Dir  string `json:"dir"`
		DSN  string `json:"dsn"`
		S3   struct {
			Bucket    string `json:"bucket"`
			Prefix    string `json:"prefix"`
			Region    string `json:"region"`
			Endpoint  string `json:"endpoint"`
			AccessKey string `json:"access_key"`
			SecretKey string `json:"secret_key"`
		} `json:"s3"`
	} `json:"sink"`
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// parseJSON overlays cfg with the file named by -c/-config in args.
// Without such a flag it does nothing.
func parseJSON(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return err
	}

	setString(&cfg.BridgeURL, jc.BridgeURL)
	setString(&cfg.TransportScheme, jc.TransportScheme)
	setString(&cfg.GatewayProtocol, jc.GatewayProtocol)
	setString(&cfg.BridgeUser, jc.BridgeUser)
	setString(&cfg.BridgePassword, jc.BridgePassword)
	setString(&cfg.LogLevel, jc.LogLevel)
	if jc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.ChunkSize != 0 {
		cfg.ChunkSize = jc.ChunkSize
	}

	setString(&cfg.SinkKind, jc.Sink.Kind)
	setString(&cfg.SinkDir, jc.Sink.Dir)
	setString(&cfg.SinkDSN, jc.Sink.DSN)
	setString(&cfg.S3Bucket, jc.Sink.S3.Bucket)
	setString(&cfg.S3Prefix, jc.Sink.S3.Prefix)
	setString(&cfg.S3Region, jc.Sink.S3.Region)
	setString(&cfg.S3Endpoint, jc.Sink.S3.Endpoint)
	setString(&cfg.S3AccessKey, jc.Sink.S3.AccessKey)
	setString(&cfg.S3SecretKey, jc.Sink.S3.SecretKey)
	return nil
}
