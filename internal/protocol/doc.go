// Package protocol owns the SSH agent message catalog and codec.
//
// Ownership boundary:
// - wire tags and the closed set of message variants
// - record and count-prefixed sequence payload codecs
// - the extension payload, whose length is implied by the message end
// - decode error taxonomy
//
// Framing is not handled here. Decode expects exactly one message's
// bytes, as delivered by the frame package.
package protocol
