package shard

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/shardfetch/internal/bridge"
	"github.com/dmitrijs2005/shardfetch/internal/logging"
	"github.com/dmitrijs2005/shardfetch/internal/sink"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // shard hashes are RIPEMD-160 over SHA-256
)

// DefaultChunkSize is the size of the pieces written to the sink.
const DefaultChunkSize = 64 * 1024

// Hash returns the network's content hash of a shard:
// hex(ripemd160(sha256(data))).
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	h := ripemd160.New()
	h.Write(sum[:])
	return hex.EncodeToString(h.Sum(nil))
}

// Resolver reconstructs a file from its pointer list.
type Resolver struct {
	fetcher   Fetcher
	chunkSize int
	log       logging.Logger
}

func NewResolver(f Fetcher, chunkSize int, log logging.Logger) *Resolver {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Resolver{fetcher: f, chunkSize: chunkSize, log: log}
}

// Resolve streams every shard of pointers, strictly in list order, into
// store under key as sequential chunks. onChunk, when set, is called with
// the length of each chunk after it is stored. It returns the number of
// bytes written.
func (r *Resolver) Resolve(ctx context.Context, pointers bridge.PointerList, store sink.Store, key string, onChunk func(n int)) (int64, error) {
	var (
		written int64
		index   int
	)
	buf := make([]byte, r.chunkSize)

	for _, p := range pointers {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		n, next, err := r.resolveShard(ctx, p, store, key, index, buf, onChunk)
		written += n
		index = next
		if err != nil {
			return written, fmt.Errorf("shard %d: %w", p.Index, err)
		}
		r.log.Debug(ctx, "shard stored", "key", key, "shard", p.Index, "bytes", n)
	}
	return written, nil
}

func (r *Resolver) resolveShard(ctx context.Context, p bridge.Pointer, store sink.Store, key string, index int, buf []byte, onChunk func(int)) (int64, int, error) {
	rc, err := r.fetcher.Fetch(ctx, p)
	if err != nil {
		return 0, index, err
	}
	defer rc.Close()
	stop := context.AfterFunc(ctx, func() { rc.Close() })
	defer stop()

	digest := sha256.New()
	var n int64
	for {
		m, rerr := io.ReadFull(rc, buf)
		if m > 0 {
			digest.Write(buf[:m])
			if err := store.Write(ctx, key, index, buf[:m]); err != nil {
				return n, index, fmt.Errorf("sink write: %w", err)
			}
			index++
			n += int64(m)
			if onChunk != nil {
				onChunk(m)
			}
		}
		if rerr == nil {
			continue
		}
		if errors.Is(rerr, io.EOF) || errors.Is(rerr, io.ErrUnexpectedEOF) {
			break
		}
		if cerr := ctx.Err(); cerr != nil {
			return n, index, cerr
		}
		return n, index, fmt.Errorf("reading shard: %w", rerr)
	}

	if err := ctx.Err(); err != nil {
		return n, index, err
	}
	if n != p.Size {
		return n, index, fmt.Errorf("%w: got %d bytes, want %d", ErrShortShard, n, p.Size)
	}
	if p.Hash != "" {
		h := ripemd160.New()
		h.Write(digest.Sum(nil))
		if got := hex.EncodeToString(h.Sum(nil)); !strings.EqualFold(got, p.Hash) {
			return n, index, fmt.Errorf("%w: got %s, want %s", ErrIntegrity, got, p.Hash)
		}
	}
	return n, index, nil
}
