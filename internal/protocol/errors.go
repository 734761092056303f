package protocol

import (
	"errors"
	"fmt"

	"github.com/danmuck/agentwire/internal/keys"
	"github.com/danmuck/agentwire/internal/protocol/wire"
)

var (
	ErrTruncated           = wire.ErrTruncated
	ErrInvalidEncoding     = wire.ErrInvalidEncoding
	ErrUnknownMessageType  = errors.New("protocol: unknown message type")
	ErrReservedMessageType = errors.New("protocol: unsupported reserved message type")
	ErrTrailingBytes       = errors.New("protocol: trailing bytes after message")
)

const fieldTag = "tag"

// DecodeError describes where decoding a message failed. Field is empty
// when the failure is not attributable to one payload field.
type DecodeError struct {
	Tag    MessageType
	Offset int
	Field  string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Field == fieldTag {
		return fmt.Sprintf("protocol: decode tag at offset %d: %v", e.Offset, e.Err)
	}
	if e.Field == "" {
		return fmt.Sprintf("protocol: decode %s at offset %d: %v", e.Tag, e.Offset, e.Err)
	}
	return fmt.Sprintf("protocol: decode %s field %s at offset %d: %v", e.Tag, e.Field, e.Offset, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Reason maps a decode error to a stable, low-cardinality label.
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTruncated):
		return "truncated"
	case errors.Is(err, ErrInvalidEncoding):
		return "invalid_encoding"
	case errors.Is(err, ErrUnknownMessageType):
		return "unknown_message_type"
	case errors.Is(err, ErrReservedMessageType):
		return "reserved_message_type"
	case errors.Is(err, ErrTrailingBytes):
		return "trailing_bytes"
	case errors.Is(err, keys.ErrUnknownKeyType):
		return "unknown_key_type"
	default:
		return "other"
	}
}

// fieldError annotates err with the field being read. The offset comes
// from the primitive error when there is one, otherwise from the cursor.
func fieldError(tag MessageType, field string, offset int, err error) error {
	var werr *wire.Error
	if errors.As(err, &werr) {
		offset = werr.Offset
		err = werr.Err
	}
	return &DecodeError{Tag: tag, Offset: offset, Field: field, Err: err}
}
