package config

import (
	"fmt"
	"time"

	env "github.com/Netflix/go-env"
)

// envConfig lists the SHARDFETCH_* variables. Pointer fields stay nil when
// the variable is unset so earlier sources survive.
type envConfig struct {
	BridgeURL       *string `env:"SHARDFETCH_BRIDGE_URL"`
	TransportScheme *string `env:"SHARDFETCH_TRANSPORT_SCHEME"`
	GatewayProtocol *string `env:"SHARDFETCH_GATEWAY_PROTOCOL"`
	BridgeUser      *string `env:"SHARDFETCH_BRIDGE_USER"`
	BridgePassword  *string `env:"SHARDFETCH_BRIDGE_PASSWORD"`
	RequestTimeout  *string `env:"SHARDFETCH_REQUEST_TIMEOUT"`
	ChunkSize       *int    `env:"SHARDFETCH_CHUNK_SIZE"`
	LogLevel        *string `env:"SHARDFETCH_LOG_LEVEL"`

	SinkKind    *string `env:"SHARDFETCH_SINK"`
	SinkDir     *string `env:"SHARDFETCH_SINK_DIR"`
	SinkDSN     *string `env:"SHARDFETCH_SINK_DSN"`
	S3Bucket    *string `env:"SHARDFETCH_S3_BUCKET"`
	S3Prefix    *string `env:"SHARDFETCH_S3_PREFIX"`
	S3Region    *string `env:"SHARDFETCH_S3_REGION"`
	S3Endpoint  *string `env:"SHARDFETCH_S3_ENDPOINT"`
	S3AccessKey *string `env:"SHARDFETCH_S3_ACCESS_KEY"`
	S3SecretKey *string `env:"SHARDFETCH_S3_SECRET_KEY"`
}

func apply(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func parseEnv(cfg *Config) error {
	var ec envConfig
	if _, err := env.UnmarshalFromEnviron(&ec); err != nil {
		return err
	}

	apply(&cfg.BridgeURL, ec.BridgeURL)
	apply(&cfg.TransportScheme, ec.TransportScheme)
	apply(&cfg.GatewayProtocol, ec.GatewayProtocol)
	apply(&cfg.BridgeUser, ec.BridgeUser)
	apply(&cfg.BridgePassword, ec.BridgePassword)
	apply(&cfg.LogLevel, ec.LogLevel)
	if ec.RequestTimeout != nil {
		d, err := time.ParseDuration(*ec.RequestTimeout)
		if err != nil {
			return fmt.Errorf("SHARDFETCH_REQUEST_TIMEOUT: %w", err)
		}
		cfg.RequestTimeout = d
	}
	if ec.ChunkSize != nil {
		cfg.ChunkSize = *ec.ChunkSize
	}

	apply(&cfg.SinkKind, ec.SinkKind)
	apply(&cfg.SinkDir, ec.SinkDir)
	apply(&cfg.SinkDSN, ec.SinkDSN)
	apply(&cfg.S3Bucket, ec.S3Bucket)
	apply(&cfg.S3Prefix, ec.S3Prefix)
	apply(&cfg.S3Region, ec.S3Region)
	apply(&cfg.S3Endpoint, ec.S3Endpoint)
	apply(&cfg.S3AccessKey, ec.S3AccessKey)
	apply(&cfg.S3SecretKey, ec.S3SecretKey)
	return nil
}
