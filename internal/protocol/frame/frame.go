package frame

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// HeaderLen is the size of the big-endian length prefix on every frame.
const HeaderLen = 4

var (
	ErrShortHeader   = errors.New("frame: short length header")
	ErrShortPayload  = errors.New("frame: short payload")
	ErrFrameTooLarge = errors.New("frame: message too large")
)

// Limits constrains frame decode/encode memory use.
type Limits struct {
	MaxMessageBytes uint32
}

// DefaultLimits matches the 256 KiB message cap OpenSSH agents enforce.
func DefaultLimits() Limits {
	return Limits{
		MaxMessageBytes: 256 * 1024,
	}
}

func (l Limits) check(n uint64) error {
	if l.MaxMessageBytes > 0 && n > uint64(l.MaxMessageBytes) {
		return fmt.Errorf("%w: %d bytes, limit %d", ErrFrameTooLarge, n, l.MaxMessageBytes)
	}
	return nil
}

// ReadFrame reads one length-prefixed message body from r. The declared
// length is checked against limits before the body is allocated.
func ReadFrame(r io.Reader, limits Limits) ([]byte, error) {
	var head [HeaderLen]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrShortHeader
		}
		return nil, err
	}
	n := binary.BigEndian.Uint32(head[:])
	if err := limits.check(uint64(n)); err != nil {
		return nil, err
	}
	payload := make([]byte, n)
	if n > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, ErrShortPayload
			}
			return nil, err
		}
	}
	return payload, nil
}

// WriteFrame writes payload preceded by its length in a single write.
func WriteFrame(w io.Writer, payload []byte, limits Limits) error {
	if err := limits.check(uint64(len(payload))); err != nil {
		return err
	}
	buf := make([]byte, 0, HeaderLen+len(payload))
	buf = Append(buf, payload)
	_, err := w.Write(buf)
	return err
}

// Append appends one framed message to dst.
func Append(dst, payload []byte) []byte {
	dst = binary.BigEndian.AppendUint32(dst, uint32(len(payload)))
	return append(dst, payload...)
}

// Next splits the first frame off a captured byte stream. The returned
// payload aliases buf.
func Next(buf []byte, limits Limits) (payload, rest []byte, err error) {
	if len(buf) < HeaderLen {
		return nil, buf, ErrShortHeader
	}
	n := binary.BigEndian.Uint32(buf[:HeaderLen])
	if err := limits.check(uint64(n)); err != nil {
		return nil, buf, err
	}
	if uint64(len(buf)-HeaderLen) < uint64(n) {
		return nil, buf, ErrShortPayload
	}
	end := HeaderLen + int(n)
	return buf[HeaderLen:end], buf[end:], nil
}
