//go:generate go run go.uber.org/mock/mockgen -source=gateway.go -destination=mocks/mock_gateway.go -package=mocks
package bridge

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/dmitrijs2005/shardfetch/internal/logging"
)

// Gateway is the client's view of the directory service.
type Gateway interface {
	// IssueToken requests a PULL token for fileName in containerID.
	IssueToken(ctx context.Context, containerID, fileName string) (Token, error)
	// GetPointers returns the complete, index-ordered pointer list.
	GetPointers(ctx context.Context, containerID, fileName string, token Token) (PointerList, error)
	Close() error
}

const (
	ProtocolHTTP = "http"
	ProtocolGRPC = "grpc"
)

const defaultPageSize = 6

// Options configures a gateway.
type Options struct {
	Endpoint string
	Protocol string
	User     string
	Password string
	Timeout  time.Duration
	// PageSize is the number of pointers requested per page (HTTP only).
	PageSize int
	Logger   logging.Logger
}

func (o *Options) applyDefaults() {
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
	if o.PageSize <= 0 {
		o.PageSize = defaultPageSize
	}
	if o.Logger == nil {
		o.Logger = logging.Nop()
	}
}

// New builds the gateway selected by opts.Protocol.
func New(opts Options) (Gateway, error) {
	opts.applyDefaults()

	u, err := url.Parse(opts.Endpoint)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("invalid bridge endpoint %q", opts.Endpoint)
	}

	switch opts.Protocol {
	case "", ProtocolHTTP:
		return NewHTTPGateway(opts, nil), nil
	case ProtocolGRPC:
		g, err := NewGRPCGateway(u.Host, u.Scheme == "https", opts)
		if err != nil {
			return nil, err
		}
		return g, nil
	default:
		return nil, fmt.Errorf("unsupported gateway protocol %q", opts.Protocol)
	}
}
