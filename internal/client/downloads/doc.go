// Package downloads is the client-side orchestrator that turns a file
// reference into reconstructed bytes.
//
// # Pipeline
//
// Every file added to a Client runs its own pipeline goroutine:
//
//	Pending -> TokenRequested -> PointersResolved -> Downloading -> Complete
//
// A failure at any stage moves the file to Errored and stops it; other files
// are unaffected and nothing is retried. The "file" event fires once the
// pointer list is known, "progress" after every stored chunk, "complete" at
// the end and "error" on failure.
//
// # Errors
//
// Construction and input problems are returned synchronously (ErrConfig,
// ErrValidation). Stage failures are asynchronous: they are delivered to
// "error" listeners as a *StageError, or to the unhandled-error handler when
// nobody listens.
//
// # Cancellation
//
// Remove and Destroy cancel the file's context. A cancelled pipeline drops
// whatever result it was waiting for and fires no further events; its
// partial sink data is deleted once the pipeline has exited.
package downloads
