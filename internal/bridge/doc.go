// Package bridge talks to the directory service ("bridge") that fronts the
// storage network.
//
// # Overview
//
// The bridge authorizes access to a file and maps (container, file) pairs to
// ordered shard pointers. The package provides:
//  1. The Gateway contract used by the download client: IssueToken,
//     GetPointers and Close.
//  2. HTTPGateway, speaking the bridge REST protocol
//     (POST /buckets/{id}/tokens, GET /buckets/{id}/files/{fileId}) with
//     paginated pointer retrieval.
//  3. GRPCGateway, invoking the same two operations over gRPC with
//     structpb-encoded messages and a credentials-injecting interceptor.
//  4. The deterministic identifier functions DeriveContainerID and
//     DeriveFileID.
//
// # Error Handling
//
// Transport failures are mapped to sentinel errors matched with errors.Is:
// ErrUnauthorized, ErrNotFound, ErrUnavailable. Anything else is returned
// wrapped with the bridge's own message.
//
// Gateways are safe for concurrent use; they hold no per-request state.
package bridge
