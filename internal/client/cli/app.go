package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/shardfetch/internal/client/config"
	"github.com/dmitrijs2005/shardfetch/internal/client/downloads"
	"github.com/dmitrijs2005/shardfetch/internal/filex"
	"github.com/dmitrijs2005/shardfetch/internal/logging"
)

// App binds a downloads.Client to terminal output.
type App struct {
	config *config.Config
	client *downloads.Client
	out    io.Writer
	log    logging.Logger
}

// NewApp prompts for the bridge password when a user is configured without
// one, then builds the download client.
func NewApp(cfg *config.Config, out io.Writer, log logging.Logger, opts ...downloads.Option) (*App, error) {
	if cfg.BridgeUser != "" && cfg.BridgePassword == "" {
		pw, err := GetPassword(out, cfg.BridgeUser)
		if err != nil {
			return nil, fmt.Errorf("read password: %w", err)
		}
		cfg.BridgePassword = string(pw)
		wipe(pw)
	}

	opts = append([]downloads.Option{downloads.WithLogger(log)}, opts...)
	c, err := downloads.New(*cfg, opts...)
	if err != nil {
		return nil, err
	}

	a := &App{config: cfg, client: c, out: out, log: log}
	c.On(downloads.EventError, func(ev downloads.Event) {
		fmt.Fprintf(a.out, "download %s failed: %v\n", ev.File.ID, ev.Err)
	})
	return a, nil
}

// Close tears the client down and waits for it.
func (a *App) Close() {
	done := make(chan struct{})
	a.client.Destroy(func() { close(done) })
	<-done
}

func (a *App) status() string {
	files := a.client.Files()
	if len(files) == 0 {
		return "idle"
	}
	return fmt.Sprintf("%d files %s", len(files), formatProgress(a.client.Progress(), a.client.DownloadSpeed()))
}

// Add starts a download of file in ref.
func (a *App) Add(_ context.Context, ref, file string) (*downloads.File, error) {
	req, err := parseRef(ref, file)
	if err != nil {
		return nil, err
	}
	return a.client.Add(req)
}

func (a *App) List(context.Context) error {
	files := a.client.Files()
	if len(files) == 0 {
		fmt.Fprintln(a.out, "no files")
		return nil
	}
	renderFiles(a.out, files)
	return nil
}

func (a *App) Remove(_ context.Context, id string) error {
	a.client.Remove(id)
	fmt.Fprintf(a.out, "removed %s\n", id)
	return nil
}

func (a *App) Progress(context.Context) error {
	fmt.Fprintln(a.out, formatProgress(a.client.Progress(), a.client.DownloadSpeed()))
	return nil
}

// Wait blocks until the file finishes.
func (a *App) Wait(ctx context.Context, id string) error {
	f, ok := a.client.Get(id)
	if !ok {
		return fmt.Errorf("unknown file %s", id)
	}
	if err := f.Wait(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, formatSnapshot(f.Snapshot()))
	return nil
}

var errNotComplete = errors.New("download not complete")

// Save writes a completed file to path, or to the output when path is "-".
func (a *App) Save(ctx context.Context, id, path string) error {
	f, ok := a.client.Get(id)
	if !ok {
		return fmt.Errorf("unknown file %s", id)
	}
	if f.Status() != downloads.StatusComplete {
		return fmt.Errorf("%w: %s is %s", errNotComplete, id, f.Status())
	}

	rc, err := f.Open(ctx)
	if err != nil {
		return err
	}
	defer rc.Close()

	if path == "-" {
		_, err = io.Copy(a.out, rc)
		return err
	}
	n, err := filex.SaveStream(path, rc)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "saved %s to %s\n", formatBytes(n), path)
	return nil
}

// Get runs the one-shot mode: download file from ref and save it.
func (a *App) Get(ctx context.Context, ref, file, out string) error {
	f, err := a.Add(ctx, ref, file)
	if err != nil {
		return err
	}
	if err := f.Wait(ctx); err != nil {
		return err
	}
	if out == "" {
		out = "-"
	}
	return a.Save(ctx, f.ID, out)
}
