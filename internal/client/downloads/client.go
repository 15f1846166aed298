package downloads

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/shardfetch/internal/bridge"
	"github.com/dmitrijs2005/shardfetch/internal/client/config"
	"github.com/dmitrijs2005/shardfetch/internal/logging"
	"github.com/dmitrijs2005/shardfetch/internal/shard"
	"github.com/dmitrijs2005/shardfetch/internal/sink"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Client tracks file downloads and drives their pipelines.
type Client struct {
	cfg       config.Config
	gateway   bridge.Gateway
	resolver  *shard.Resolver
	store     sink.Store
	ownsStore bool
	derive    Deriver
	log       logging.Logger
	now       func() time.Time
	unhandled func(error)
	events    *emitter
	speed     *speedMeter

	mu        sync.Mutex
	files     map[string]*File
	order     []string
	destroyed bool
	pending   sync.WaitGroup
	settled   chan struct{}
}

// New merges cfg over the defaults, validates it and builds the client's
// gateway and default store.
func New(cfg config.Config, opts ...Option) (*Client, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := options{
		deriver: DefaultDeriver,
		log:     logging.Nop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}

	c := &Client{
		cfg:       cfg,
		derive:    o.deriver,
		log:       o.log,
		now:       o.now,
		unhandled: o.unhandled,
		events:    newEmitter(),
		speed:     newSpeedMeter(o.now, speedWindow),
		files:     make(map[string]*File),
		settled:   make(chan struct{}),
	}
	if c.unhandled == nil {
		c.unhandled = func(err error) {
			c.log.Error(context.Background(), "unhandled download error", "error", err)
		}
	}

	c.gateway = o.gateway
	if c.gateway == nil {
		g, err := bridge.New(bridge.Options{
			Endpoint: cfg.BridgeURL,
			Protocol: cfg.GatewayProtocol,
			User:     cfg.BridgeUser,
			Password: cfg.BridgePassword,
			Timeout:  cfg.RequestTimeout,
			Logger:   c.log,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfig, err)
		}
		c.gateway = g
	}

	c.store = o.store
	if c.store == nil {
		s, err := sink.Open(context.Background(), cfg.Sink())
		if err != nil {
			_ = c.gateway.Close()
			return nil, fmt.Errorf("%w: open sink: %v", ErrConfig, err)
		}
		c.store = s
		c.ownsStore = true
	}

	fetcher := o.fetcher
	if fetcher == nil {
		fetcher = shard.NewHTTPFetcher(cfg.TransportScheme, nil)
	}
	c.resolver = shard.NewResolver(fetcher, cfg.ChunkSize, c.log)

	return c, nil
}

// Config returns the effective configuration.
func (c *Client) Config() config.Config { return c.cfg }

// Add validates req, registers the file and starts its pipeline. It does
// not wait for any network call. Identical requests are tracked as
// separate files. A deriver failure is reported as an "error" event.
func (c *Client) Add(req *FileRequest) (*File, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	containerID := req.ContainerID
	var resolveErr error
	if containerID == "" {
		id, err := c.derive(req.OwnerID, req.ContainerName)
		switch {
		case err != nil:
			resolveErr = err
		case id == "":
			return nil, fmt.Errorf("%w: %w: empty container id", ErrValidation, ErrResolution)
		default:
			containerID = id
		}
	}

	store := c.store
	if req.Sink != nil {
		store = req.Sink
	}
	fileID := ""
	if resolveErr == nil {
		fileID = bridge.DeriveFileID(containerID, req.FileName)
	}
	f := newFile(uuid.NewString(), *req, containerID, fileID, store)
	ctx, cancel := context.WithCancel(context.Background())
	f.cancel = cancel

	c.mu.Lock()
	if c.destroyed {
		c.mu.Unlock()
		cancel()
		return nil, ErrDestroyed
	}
	c.files[f.ID] = f
	c.order = append(c.order, f.ID)
	c.pending.Add(1)
	c.mu.Unlock()

	c.log.Debug(ctx, "file added", "file", f.ID, "container", containerID, "name", req.FileName)
	go func() {
		defer c.pending.Done()
		defer close(f.done)
		defer cancel()
		if resolveErr != nil {
			c.fail(ctx, f, StageResolution, resolveErr)
			return
		}
		c.run(ctx, f)
	}()
	return f, nil
}

// Get returns the tracked file with id.
func (c *Client) Get(id string) (*File, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	f, ok := c.files[id]
	return f, ok
}

// Remove cancels and forgets the file with id. Unknown ids are ignored.
// Partial sink data is deleted in the background once the pipeline exits.
func (c *Client) Remove(id string) {
	c.mu.Lock()
	f, ok := c.files[id]
	if !ok {
		c.mu.Unlock()
		return
	}
	delete(c.files, id)
	c.order = lo.Without(c.order, id)
	f.markRemoved()
	f.cancel()
	c.pending.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.pending.Done()
		<-f.done
		if err := f.store.Delete(context.Background(), f.ID); err != nil {
			c.log.Warn(context.Background(), "sink cleanup failed", "file", f.ID, "error", err)
		}
	}()
}

// Destroy removes every file, waits for all pipelines and cleanups, closes
// the gateway and then calls cb on its own goroutine. Later calls only
// wait for that teardown before calling cb.
func (c *Client) Destroy(cb func()) {
	c.mu.Lock()
	first := !c.destroyed
	c.destroyed = true
	ids := append([]string(nil), c.order...)
	c.mu.Unlock()

	if first {
		for _, id := range ids {
			c.Remove(id)
		}
		go func() {
			c.pending.Wait()
			if err := c.gateway.Close(); err != nil {
				c.log.Warn(context.Background(), "gateway close failed", "error", err)
			}
			if c.ownsStore {
				if err := c.store.Close(); err != nil {
					c.log.Warn(context.Background(), "sink close failed", "error", err)
				}
			}
			close(c.settled)
		}()
	}

	go func() {
		<-c.settled
		if cb != nil {
			cb()
		}
	}()
}

// On subscribes h to the named event and returns its unsubscribe func.
func (c *Client) On(event string, h Handler) func() {
	return c.events.on(event, h)
}

// Off drops every handler of the named event.
func (c *Client) Off(event string) {
	c.events.off(event)
}

func (c *Client) tracked() []*File {
	c.mu.Lock()
	defer c.mu.Unlock()
	return lo.Map(c.order, func(id string, _ int) *File { return c.files[id] })
}

// Files returns snapshots of the tracked files in the order they were added.
func (c *Client) Files() []Snapshot {
	return lo.Map(c.tracked(), func(f *File, _ int) Snapshot { return f.Snapshot() })
}

// Progress is the fraction of bytes received over the files whose total
// is known, in [0, 1]. It is 0 when no total is known yet.
func (c *Client) Progress() float64 {
	var received, total int64
	for _, f := range c.tracked() {
		got, want := f.progress()
		if want <= 0 {
			continue
		}
		received += min(got, want)
		total += want
	}
	if total == 0 {
		return 0
	}
	return float64(received) / float64(total)
}

// DownloadSpeed is the client-wide rate in bytes per second over the last
// few seconds.
func (c *Client) DownloadSpeed() float64 {
	return c.speed.rate()
}
