// Package session owns agent socket transport helpers.
//
// Ownership boundary:
// - framed message read/write over a stream connection
// - request/response client for the agent operations
// - dial retry/backoff primitives
//
// Every message crosses the stream inside its own length frame, so a
// decoder never sees more than one message's bytes.
package session
