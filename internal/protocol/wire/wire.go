package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"unicode/utf8"
)

// LengthSize is the width of every length and count prefix.
const LengthSize = 4

var (
	ErrTruncated       = errors.New("wire: truncated data")
	ErrInvalidEncoding = errors.New("wire: invalid utf-8 string")
)

// Error reports a primitive decode failure at a byte offset of the input.
type Error struct {
	Offset int
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v at offset %d", e.Err, e.Offset)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// AppendUint32 appends n as 4 big-endian bytes.
func AppendUint32(dst []byte, n uint32) []byte {
	return binary.BigEndian.AppendUint32(dst, n)
}

// AppendByte appends a single byte.
func AppendByte(dst []byte, b byte) []byte {
	return append(dst, b)
}

// AppendBlob appends the length of b followed by b.
func AppendBlob(dst []byte, b []byte) []byte {
	dst = AppendUint32(dst, uint32(len(b)))
	return append(dst, b...)
}

// AppendString appends s with the same framing as AppendBlob.
func AppendString(dst []byte, s string) []byte {
	dst = AppendUint32(dst, uint32(len(s)))
	return append(dst, s...)
}

// Reader is a cursor over an immutable input buffer. Reads never modify
// the buffer; values returned by Blob and Rest are copies.
type Reader struct {
	buf []byte
	off int
}

func NewReader(b []byte) *Reader {
	return &Reader{buf: b}
}

// Offset is the position of the next unread byte.
func (r *Reader) Offset() int {
	return r.off
}

// Len is the number of unread bytes.
func (r *Reader) Len() int {
	return len(r.buf) - r.off
}

func (r *Reader) fail(err error) error {
	return &Error{Offset: r.off, Err: err}
}

func (r *Reader) Byte() (byte, error) {
	if r.Len() < 1 {
		return 0, r.fail(ErrTruncated)
	}
	b := r.buf[r.off]
	r.off++
	return b, nil
}

func (r *Reader) Uint32() (uint32, error) {
	if r.Len() < 4 {
		return 0, r.fail(ErrTruncated)
	}
	n := binary.BigEndian.Uint32(r.buf[r.off : r.off+4])
	r.off += 4
	return n, nil
}

// Blob reads a length-prefixed byte sequence. The declared length is
// checked against the remaining input before anything is allocated, and
// the cursor does not move on failure. A zero-length blob reads as nil.
func (r *Reader) Blob() ([]byte, error) {
	b, err := r.span()
	if err != nil {
		return nil, err
	}
	return clone(b), nil
}

// String reads a length-prefixed UTF-8 string.
func (r *Reader) String() (string, error) {
	start := r.off
	b, err := r.span()
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		r.off = start
		return "", &Error{Offset: start + LengthSize, Err: ErrInvalidEncoding}
	}
	return string(b), nil
}

// Rest consumes and returns every remaining byte, or nil when none are
// left.
func (r *Reader) Rest() []byte {
	out := clone(r.buf[r.off:])
	r.off = len(r.buf)
	return out
}

// clone copies b so decoded values never alias the input buffer.
func clone(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

func (r *Reader) span() ([]byte, error) {
	start := r.off
	n, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	if uint64(n) > uint64(r.Len()) {
		r.off = start
		return nil, r.fail(ErrTruncated)
	}
	b := r.buf[r.off : r.off+int(n)]
	r.off += int(n)
	return b, nil
}
