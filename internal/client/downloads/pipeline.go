package downloads

import (
	"context"
	"io"

	"github.com/dmitrijs2005/shardfetch/internal/bridge"
	"github.com/gabriel-vasile/mimetype"
)

// sniffLen is how many leading bytes mime detection reads.
const sniffLen = 3072

// run drives one file through the pipeline. Every gateway call and the
// transfer are followed by a cancellation check so a removed file never
// acts on a late result.
func (c *Client) run(ctx context.Context, f *File) {
	log := c.log.With("file", f.ID)

	token, err := c.gateway.IssueToken(ctx, f.ContainerID, f.Request.FileName)
	if ctx.Err() != nil {
		return
	}
	if err == nil && token.Expired(c.now()) {
		err = bridge.ErrTokenExpired
	}
	if err != nil {
		c.fail(ctx, f, StageToken, err)
		return
	}
	f.advance(StatusTokenRequested)
	log.Debug(ctx, "token issued")

	pointers, err := c.gateway.GetPointers(ctx, f.ContainerID, f.Request.FileName, token)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		c.fail(ctx, f, StagePointers, err)
		return
	}
	if !f.resolved(pointers.TotalSize(), len(pointers)) {
		return
	}
	log.Debug(ctx, "pointers resolved", "shards", len(pointers), "bytes", pointers.TotalSize())
	c.emit(ctx, f, Event{Name: EventFile})

	f.advance(StatusDownloading)
	_, err = c.resolver.Resolve(ctx, pointers, f.store, f.ID, func(n int) {
		f.addBytes(n)
		c.speed.add(n)
		c.emit(ctx, f, Event{Name: EventProgress, Bytes: n})
	})
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		c.fail(ctx, f, StageTransfer, err)
		return
	}

	if f.Request.MimeType == "" {
		f.setMimeType(c.detectMimeType(ctx, f))
	}
	if f.advance(StatusComplete) {
		log.Info(ctx, "download complete", "bytes", pointers.TotalSize())
		c.emit(ctx, f, Event{Name: EventComplete})
	}
}

func (c *Client) detectMimeType(ctx context.Context, f *File) string {
	rc, err := f.store.Open(ctx, f.ID)
	if err != nil {
		// Empty files have no chunks.
		return mimetype.Detect(nil).String()
	}
	defer rc.Close()
	head, _ := io.ReadAll(io.LimitReader(rc, sniffLen))
	return mimetype.Detect(head).String()
}

// fail moves f to Errored and reports a *StageError.
func (c *Client) fail(ctx context.Context, f *File, stage Stage, cause error) {
	err := &StageError{Stage: stage, FileID: f.ID, Err: cause}
	if !f.fail(err) {
		return
	}
	c.log.Debug(ctx, "pipeline failed", "file", f.ID, "stage", stage, "error", cause)

	if c.emit(ctx, f, Event{Name: EventError, Err: err}) == 0 && !f.isRemoved() {
		c.unhandled(err)
	}
}

// emit delivers ev for f unless f was removed. It returns the number of
// handlers called.
func (c *Client) emit(ctx context.Context, f *File, ev Event) int {
	live := func() bool { return ctx.Err() == nil && !f.isRemoved() }
	if !live() {
		return 0
	}
	ev.File = f.Snapshot()
	return c.events.emit(ev, live)
}
