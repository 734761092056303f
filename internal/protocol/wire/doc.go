// Package wire owns the primitive value encodings of the agent protocol.
//
// Ownership boundary:
// - big-endian uint32 and single bytes
// - length-prefixed blobs and UTF-8 strings
// - the Reader cursor every record decoder consumes from
package wire
