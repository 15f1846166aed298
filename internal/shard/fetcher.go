// Package shard downloads the shards named by bridge pointers and
// reassembles them, in pointer order, into a sink.
package shard

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/shardfetch/internal/bridge"
)

var (
	ErrMalformedPointer = errors.New("malformed pointer")
	ErrFarmerStatus     = errors.New("farmer refused shard")
	ErrIntegrity        = errors.New("shard hash mismatch")
	ErrShortShard       = errors.New("shard size mismatch")
)

// Fetcher opens the byte stream of one shard.
type Fetcher interface {
	Fetch(ctx context.Context, p bridge.Pointer) (io.ReadCloser, error)
}

// HTTPFetcher downloads shards from farmers over HTTP and decodes inline
// data: pointers locally.
type HTTPFetcher struct {
	scheme string
	client *http.Client
}

// NewHTTPFetcher returns a fetcher using scheme ("http" or "https") for
// farmer URLs. A nil client uses http.DefaultClient.
func NewHTTPFetcher(scheme string, client *http.Client) *HTTPFetcher {
	if scheme == "" {
		scheme = "http"
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPFetcher{scheme: scheme, client: client}
}

// ShardURL is the farmer location of p.
func (f *HTTPFetcher) ShardURL(p bridge.Pointer) string {
	u := url.URL{
		Scheme:   f.scheme,
		Host:     p.Farmer.Address + ":" + strconv.Itoa(p.Farmer.Port),
		Path:     "/shards/" + p.Hash,
		RawQuery: url.Values{"token": {p.Token}}.Encode(),
	}
	return u.String()
}

func (f *HTTPFetcher) Fetch(ctx context.Context, p bridge.Pointer) (io.ReadCloser, error) {
	if p.Data != "" {
		return decodeDataURL(p.Data)
	}
	if p.Farmer.Address == "" || p.Hash == "" {
		return nil, fmt.Errorf("%w: pointer %d has no farmer or hash", ErrMalformedPointer, p.Index)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.ShardURL(p), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching shard %d: %w", p.Index, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: shard %d from %s: %s", ErrFarmerStatus, p.Index, p.Farmer.NodeID, resp.Status)
	}
	return resp.Body, nil
}

func decodeDataURL(target string) (io.ReadCloser, error) {
	v, ok := strings.CutPrefix(target, "data:")
	if !ok {
		return nil, fmt.Errorf("%w: inline data is not a data URL", ErrMalformedPointer)
	}
	meta, payload, ok := strings.Cut(v, ",")
	if !ok {
		return nil, fmt.Errorf("%w: malformed data URL", ErrMalformedPointer)
	}

	if strings.HasSuffix(meta, ";base64") {
		out, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: decoding base64 data: %v", ErrMalformedPointer, err)
		}
		return io.NopCloser(bytes.NewReader(out)), nil
	}
	raw, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: unescaping data: %v", ErrMalformedPointer, err)
	}
	return io.NopCloser(strings.NewReader(raw)), nil
}
