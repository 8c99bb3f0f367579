// Package driver owns the persistent PhantomJS process and the file-based
// command protocol spoken with it.
//
// The driver keeps a single long-lived engine process alive for the whole
// session. Commands and results travel through a pair of single-slot mailbox
// files: the controller writes one JSON command to the command file, a
// bootstrap script running inside the engine polls that file, executes the
// action against the live page, and writes one JSON response to the response
// file. Writers always fully overwrite the file, and readers clear it after a
// successful read, so at most one unread message exists per direction.
//
// # Session Lifecycle
//
//  1. Start: allocate the channel files, generate the bootstrap script,
//     spawn the engine, and wait for the READY sentinel on stdout
//  2. Use: Navigate, Evaluate, Click, Fill, Screenshot round trips
//  3. Close: graceful close command, escalating to SIGTERM and then SIGKILL,
//     followed by removal of every temporary file
//
// Close is idempotent; once it has run, every operation fails fast with
// ErrClosed. A finalizer performs the same cleanup as a last-resort safety
// net and logs a warning, but explicit Close is the contract.
//
// # Request Correlation
//
// Every command carries a monotonically increasing request id which the
// bootstrap script echoes back in its response. The dispatcher discards any
// response whose id does not match the outstanding request, so a stale
// response left behind by a timed-out command can never be attributed to a
// later one.
//
// # Concurrency
//
// The protocol supports exactly one in-flight command per session. The
// dispatcher enforces this with a mutex rather than documenting it away;
// concurrent callers serialize on the same session.
package driver
