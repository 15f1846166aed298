package cli

import (
	"bytes"
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dmitrijs2005/shardfetch/internal/bridge"
	"github.com/dmitrijs2005/shardfetch/internal/client/config"
	"github.com/dmitrijs2005/shardfetch/internal/client/downloads"
	"github.com/dmitrijs2005/shardfetch/internal/logging"
	"github.com/dmitrijs2005/shardfetch/internal/shard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubGateway serves one inline shard per file, containing the file name.
type stubGateway struct {
	missing string
}

func (g *stubGateway) IssueToken(_ context.Context, containerID, fileName string) (bridge.Token, error) {
	if fileName == g.missing {
		return bridge.Token{}, bridge.ErrNotFound
	}
	return bridge.Token{Value: "t", ContainerID: containerID}, nil
}

func (g *stubGateway) GetPointers(_ context.Context, _, fileName string, _ bridge.Token) (bridge.PointerList, error) {
	data := []byte("content of " + fileName)
	return bridge.PointerList{{
		Index: 0,
		Hash:  shard.Hash(data),
		Size:  int64(len(data)),
		Data:  "data:;base64," + base64.StdEncoding.EncodeToString(data),
	}}, nil
}

func (g *stubGateway) Close() error { return nil }

func newTestApp(t *testing.T, out *bytes.Buffer) *App {
	t.Helper()
	cfg := config.Defaults()
	app, err := NewApp(&cfg, out, logging.Nop(), downloads.WithGateway(&stubGateway{missing: "gone.txt"}))
	require.NoError(t, err)
	t.Cleanup(app.Close)
	return app
}

func TestApp_GetToStdout(t *testing.T) {
	var out bytes.Buffer
	app := newTestApp(t, &out)

	require.NoError(t, app.Get(context.Background(), "owner/bucket", "a.txt", ""))
	assert.Equal(t, "content of a.txt", out.String())
}

func TestApp_GetToFile(t *testing.T) {
	var out bytes.Buffer
	app := newTestApp(t, &out)
	path := filepath.Join(t.TempDir(), "a.txt")

	require.NoError(t, app.Get(context.Background(), "cid", "a.txt", path))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "content of a.txt", string(b))
	assert.Contains(t, out.String(), "saved")
}

func TestApp_GetFailure(t *testing.T) {
	var out bytes.Buffer
	app := newTestApp(t, &out)

	err := app.Get(context.Background(), "cid", "gone.txt", "")
	assert.ErrorIs(t, err, downloads.ErrToken)
	assert.ErrorIs(t, err, bridge.ErrNotFound)
	assert.Contains(t, out.String(), "failed")
}

func TestApp_ListRemoveSave(t *testing.T) {
	var out bytes.Buffer
	app := newTestApp(t, &out)
	ctx := context.Background()

	require.NoError(t, app.List(ctx))
	assert.Contains(t, out.String(), "no files")

	f, err := app.Add(ctx, "cid", "b.txt")
	require.NoError(t, err)
	require.NoError(t, app.Wait(ctx, f.ID))

	out.Reset()
	require.NoError(t, app.List(ctx))
	assert.Contains(t, out.String(), f.ID)
	assert.Contains(t, out.String(), "complete")

	out.Reset()
	require.NoError(t, app.Progress(ctx))
	assert.Contains(t, out.String(), "100.0%")

	out.Reset()
	require.NoError(t, app.Save(ctx, f.ID, "-"))
	assert.Equal(t, "content of b.txt", out.String())

	require.NoError(t, app.Remove(ctx, f.ID))
	assert.Error(t, app.Save(ctx, f.ID, "-"))
	assert.Error(t, app.Wait(ctx, f.ID))
	assert.Equal(t, "idle", app.status())
}

func TestApp_AddValidation(t *testing.T) {
	var out bytes.Buffer
	app := newTestApp(t, &out)

	_, err := app.Add(context.Background(), "", "x")
	assert.Error(t, err)
	_, err = app.Add(context.Background(), "cid", "")
	assert.ErrorIs(t, err, downloads.ErrValidation)
}

func TestMain_OneShot(t *testing.T) {
	var out, errOut bytes.Buffer
	code := Main(context.Background(), []string{"-log-level", "error", "get", "owner/bucket", "c.txt"},
		strings.NewReader(""), &out, &errOut, downloads.WithGateway(&stubGateway{}))

	assert.Equal(t, exitOK, code, errOut.String())
	assert.Equal(t, "content of c.txt", out.String())
}

func TestMain_Usage(t *testing.T) {
	var out, errOut bytes.Buffer
	code := Main(context.Background(), []string{"fetch", "x"}, strings.NewReader(""), &out, &errOut,
		downloads.WithGateway(&stubGateway{}))
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, errOut.String(), "usage")
}

func TestMain_BadConfig(t *testing.T) {
	var out, errOut bytes.Buffer
	code := Main(context.Background(), []string{"-s", "gopher"}, strings.NewReader(""), &out, &errOut,
		downloads.WithGateway(&stubGateway{}))
	assert.Equal(t, exitRuntime, code)
	assert.Contains(t, errOut.String(), "transport scheme")
}

func TestMain_REPL(t *testing.T) {
	silence(t)
	var out, errOut bytes.Buffer
	in := strings.NewReader("add cid d.txt\nexit\n")

	code := Main(context.Background(), nil, in, &out, &errOut, downloads.WithGateway(&stubGateway{}))
	assert.Equal(t, exitOK, code)
	assert.Contains(t, out.String(), "added")
}
