package downloads

import (
	"time"

	"github.com/dmitrijs2005/shardfetch/internal/bridge"
	"github.com/dmitrijs2005/shardfetch/internal/logging"
	"github.com/dmitrijs2005/shardfetch/internal/shard"
	"github.com/dmitrijs2005/shardfetch/internal/sink"
)

// Deriver maps an owner and container name to a container id.
type Deriver func(ownerID, containerName string) (string, error)

// DefaultDeriver applies bridge.DeriveContainerID.
func DefaultDeriver(ownerID, containerName string) (string, error) {
	return bridge.DeriveContainerID(ownerID, containerName), nil
}

type Option func(*options)

type options struct {
	gateway   bridge.Gateway
	deriver   Deriver
	fetcher   shard.Fetcher
	store     sink.Store
	log       logging.Logger
	now       func() time.Time
	unhandled func(error)
}

// WithGateway replaces the gateway built from the config. The client still
// owns it and closes it on Destroy.
func WithGateway(g bridge.Gateway) Option {
	return func(o *options) { o.gateway = g }
}

func WithDeriver(d Deriver) Option {
	return func(o *options) { o.deriver = d }
}

// WithFetcher replaces the farmer HTTP fetcher.
func WithFetcher(f shard.Fetcher) Option {
	return func(o *options) { o.fetcher = f }
}

// WithStore sets the default sink. A store passed here is not closed by
// Destroy.
func WithStore(s sink.Store) Option {
	return func(o *options) { o.store = s }
}

func WithLogger(l logging.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithClock sets the time source used for token expiry and speed.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithUnhandledError sets the handler for pipeline errors nobody listens
// to. The default logs them at error level.
func WithUnhandledError(fn func(error)) Option {
	return func(o *options) { o.unhandled = fn }
}
