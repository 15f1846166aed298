package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/dmitrijs2005/shardfetch/internal/client/downloads"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "0 bytes", formatBytes(0))
	assert.Equal(t, "1024 bytes", formatBytes(1024))
	assert.Equal(t, "3 KB", formatBytes(3*1024))
	assert.Equal(t, "5 MB", formatBytes(5*1024*1024))
	assert.Equal(t, "2 GB", formatBytes(2*1024*1024*1024))
}

func TestFormatSnapshot(t *testing.T) {
	s := downloads.Snapshot{
		ID:            "id1",
		FileName:      "a.txt",
		Status:        downloads.StatusDownloading,
		BytesReceived: 10,
		TotalBytes:    20,
	}
	assert.Contains(t, formatSnapshot(s), "10 bytes / 20 bytes")

	s.Status = downloads.StatusPending
	assert.Contains(t, formatSnapshot(s), "/ ?")

	s.Err = errors.New("boom")
	assert.Contains(t, formatSnapshot(s), "error: boom")
}

func TestRenderFiles(t *testing.T) {
	var buf bytes.Buffer
	renderFiles(&buf, []downloads.Snapshot{
		{ID: "id-1", FileName: "a.txt", Status: downloads.StatusComplete, BytesReceived: 20, TotalBytes: 20, MimeType: "text/plain"},
		{ID: "id-2", FileName: "b.bin", Status: downloads.StatusErrored, Err: errors.New("boom")},
	})

	rows := map[string]string{}
	for _, line := range strings.Split(buf.String(), "\n") {
		for _, id := range []string{"id-1", "id-2"} {
			if strings.Contains(line, id) {
				rows[id] = line
			}
		}
	}
	assert.Contains(t, buf.String(), "STATUS")
	require.Len(t, rows, 2)
	assert.Contains(t, rows["id-1"], "text/plain")
	assert.Contains(t, rows["id-1"], "20 bytes")
	assert.Contains(t, rows["id-2"], "errored")
	assert.Contains(t, rows["id-2"], "boom")
}

func TestFormatProgress(t *testing.T) {
	assert.Equal(t, "50.0%  3 KB/s", formatProgress(0.5, 3*1024))
}

func TestParseRef(t *testing.T) {
	req, err := parseRef("owner/bucket", "f")
	require.NoError(t, err)
	assert.Equal(t, "owner", req.OwnerID)
	assert.Equal(t, "bucket", req.ContainerName)
	assert.Empty(t, req.ContainerID)
	assert.Equal(t, "f", req.FileName)

	req, err = parseRef("abc123", "f")
	require.NoError(t, err)
	assert.Equal(t, "abc123", req.ContainerID)

	for _, bad := range []string{"", "/bucket", "owner/"} {
		_, err := parseRef(bad, "f")
		assert.Error(t, err, bad)
	}
}
