package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func TestParseJSON_NoFlag(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, parseJSON(&cfg, []string{"-b", "https://x.example"}))
	assert.Equal(t, Defaults(), cfg)
}

func TestParseJSON_Overlay(t *testing.T) {
	path := writeTempJSON(t, "", "", map[string]any{
		"transport_scheme": "https",
		"gateway_protocol": "grpc",
		"bridge_user":      "alice",
		"request_timeout":  int64(2 * time.Second),
		"chunk_size":       512,
		"sink": map[string]any{
			"kind": "s3",
			"s3": map[string]any{
				"bucket": "shards",
				"region": "eu-west-1",
			},
		},
	})

	cfg := Defaults()
	require.NoError(t, parseJSON(&cfg, []string{"-config", path}))

	assert.Equal(t, DefaultBridgeURL, cfg.BridgeURL)
	assert.Equal(t, "https", cfg.TransportScheme)
	assert.Equal(t, "grpc", cfg.GatewayProtocol)
	assert.Equal(t, "alice", cfg.BridgeUser)
	assert.Equal(t, 2*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 512, cfg.ChunkSize)
	assert.Equal(t, "s3", cfg.SinkKind)
	assert.Equal(t, "shards", cfg.S3Bucket)
	assert.Equal(t, "eu-west-1", cfg.S3Region)
}

func TestParseJSON_Errors(t *testing.T) {
	cfg := Defaults()
	assert.Error(t, parseJSON(&cfg, []string{"-c", filepath.Join(t.TempDir(), "missing.json")}))

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o600))
	assert.Error(t, parseJSON(&cfg, []string{"-c", bad}))
}
