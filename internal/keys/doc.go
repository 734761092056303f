// Package keys is the key-material boundary of the agent protocol.
//
// Private key records and public key blobs are opaque to the message
// codec; this package knows their per-key-type layout.
package keys
