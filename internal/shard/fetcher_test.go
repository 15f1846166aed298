package shard

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"github.com/dmitrijs2005/shardfetch/internal/bridge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func farmerPointer(t *testing.T, srvURL string, hash string) bridge.Pointer {
	t.Helper()
	u, err := url.Parse(srvURL)
	require.NoError(t, err)
	host, port, err := net.SplitHostPort(u.Host)
	require.NoError(t, err)
	p, err := strconv.Atoi(port)
	require.NoError(t, err)
	return bridge.Pointer{
		Hash:   hash,
		Token:  "tok/en",
		Farmer: bridge.Farmer{Address: host, Port: p, NodeID: "node-1"},
	}
}

func TestHTTPFetcher_ShardURL(t *testing.T) {
	f := NewHTTPFetcher("https", nil)
	got := f.ShardURL(bridge.Pointer{
		Hash:   "abc",
		Token:  "t 1",
		Farmer: bridge.Farmer{Address: "farmer.example", Port: 4000},
	})
	assert.Equal(t, "https://farmer.example:4000/shards/abc?token=t+1", got)

	assert.Equal(t, "http", NewHTTPFetcher("", nil).scheme)
}

func TestHTTPFetcher_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/shards/abc", r.URL.Path)
		assert.Equal(t, "tok/en", r.URL.Query().Get("token"))
		_, _ = w.Write([]byte("shard-bytes"))
	}))
	defer srv.Close()

	f := NewHTTPFetcher("http", srv.Client())
	rc, err := f.Fetch(context.Background(), farmerPointer(t, srv.URL, "abc"))
	require.NoError(t, err)
	defer rc.Close()

	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "shard-bytes", string(b))
}

func TestHTTPFetcher_FetchStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewHTTPFetcher("http", srv.Client())
	_, err := f.Fetch(context.Background(), farmerPointer(t, srv.URL, "abc"))
	assert.ErrorIs(t, err, ErrFarmerStatus)
}

func TestHTTPFetcher_MissingFarmer(t *testing.T) {
	_, err := NewHTTPFetcher("http", nil).Fetch(context.Background(), bridge.Pointer{Hash: "abc"})
	assert.ErrorIs(t, err, ErrMalformedPointer)
}

func TestDecodeDataURL(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "base64", in: "data:;base64,aGVsbG8=", want: "hello"},
		{name: "typed base64", in: "data:application/octet-stream;base64,aGk=", want: "hi"},
		{name: "raw", in: "data:,a%20b", want: "a b"},
		{name: "no comma", in: "data:abc", wantErr: true},
		{name: "bad base64", in: "data:;base64,***", wantErr: true},
		{name: "not data", in: "http://x", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rc, err := decodeDataURL(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformedPointer)
				return
			}
			require.NoError(t, err)
			b, err := io.ReadAll(rc)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(b))
		})
	}
}

func TestHTTPFetcher_InlineDataSkipsNetwork(t *testing.T) {
	f := NewHTTPFetcher("http", &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
		t.Fatal("network used for inline pointer")
		return nil, nil
	})})
	rc, err := f.Fetch(context.Background(), bridge.Pointer{Data: "data:;base64,aGVsbG8="})
	require.NoError(t, err)
	b, _ := io.ReadAll(rc)
	assert.Equal(t, "hello", string(b))
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }
