// Package sink holds the chunk stores that reconstructed file bytes are
// written into.
//
// Every store satisfies Store: chunks are written under a key with a
// sequential index and read back as one stream in index order. The
// download client defaults to Memory; Disk, SQL (sqlite or postgres),
// Badger and S3 are selected through Config and Open.
//
// A missing key is reported as ErrNotFound. Delete is idempotent.
package sink
