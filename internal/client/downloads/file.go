package downloads

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/dmitrijs2005/shardfetch/internal/sink"
)

// Status is the pipeline position of a tracked file.
type Status int

const (
	StatusPending Status = iota
	StatusTokenRequested
	StatusPointersResolved
	StatusDownloading
	StatusComplete
	StatusErrored
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusTokenRequested:
		return "token-requested"
	case StatusPointersResolved:
		return "pointers-resolved"
	case StatusDownloading:
		return "downloading"
	case StatusComplete:
		return "complete"
	case StatusErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	return s == StatusComplete || s == StatusErrored
}

// Snapshot is a point-in-time copy of a tracked file.
type Snapshot struct {
	ID            string
	FileName      string
	ContainerID   string
	FileID        string
	MimeType      string
	Status        Status
	BytesReceived int64
	TotalBytes    int64
	Shards        int
	Err           error
}

// File is the handle returned by Client.Add.
type File struct {
	ID          string
	ContainerID string
	FileID      string
	Request     FileRequest

	store  sink.Store
	cancel context.CancelFunc
	done   chan struct{}

	mu            sync.Mutex
	status        Status
	bytesReceived int64
	totalBytes    int64
	shards        int
	mimeType      string
	err           error
	removed       bool
}

func newFile(id string, req FileRequest, containerID, fileID string, store sink.Store) *File {
	return &File{
		ID:          id,
		ContainerID: containerID,
		FileID:      fileID,
		Request:     req,
		store:       store,
		done:        make(chan struct{}),
		status:      StatusPending,
		mimeType:    req.MimeType,
	}
}

// Done is closed when the pipeline has exited: the file completed, errored
// or was removed.
func (f *File) Done() <-chan struct{} { return f.done }

// Wait blocks until Done or ctx ends and returns Err.
func (f *File) Wait(ctx context.Context) error {
	select {
	case <-f.done:
		return f.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *File) Status() Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

// Err is the failure of an errored file, ErrRemoved for a removed one and
// nil otherwise.
func (f *File) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

func (f *File) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return Snapshot{
		ID:            f.ID,
		FileName:      f.Request.FileName,
		ContainerID:   f.ContainerID,
		FileID:        f.FileID,
		MimeType:      f.mimeType,
		Status:        f.status,
		BytesReceived: f.bytesReceived,
		TotalBytes:    f.totalBytes,
		Shards:        f.shards,
		Err:           f.err,
	}
}

// Open streams the bytes stored so far for this file. A completed file
// without shards has no chunks in the sink and reads as empty.
func (f *File) Open(ctx context.Context) (io.ReadCloser, error) {
	f.mu.Lock()
	empty := f.status == StatusComplete && f.shards == 0
	f.mu.Unlock()
	if empty {
		return io.NopCloser(strings.NewReader("")), nil
	}
	return f.store.Open(ctx, f.ID)
}

// advance moves the file forward. It refuses to leave a terminal state or
// to go backwards, and is a no-op for removed files.
func (f *File) advance(to Status) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.removed || f.status.Terminal() || to <= f.status {
		return false
	}
	f.status = to
	return true
}

func (f *File) resolved(total int64, shards int) bool {
	f.mu.Lock()
	f.totalBytes = total
	f.shards = shards
	f.mu.Unlock()
	return f.advance(StatusPointersResolved)
}

func (f *File) addBytes(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bytesReceived += int64(n)
}

func (f *File) setMimeType(m string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mimeType = m
}

func (f *File) fail(err error) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.removed || f.status.Terminal() {
		return false
	}
	f.status = StatusErrored
	f.err = err
	return true
}

func (f *File) markRemoved() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = true
	if !f.status.Terminal() {
		f.err = ErrRemoved
	}
}

func (f *File) isRemoved() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.removed
}

// progress returns the received and total byte counts.
func (f *File) progress() (int64, int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bytesReceived, f.totalBytes
}
