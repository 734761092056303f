package extension

import (
	"fmt"

	"github.com/danmuck/agentwire/internal/protocol"
	"github.com/danmuck/agentwire/internal/protocol/wire"
)

const SessionBindType = "session-bind@openssh.com"

// SessionBind binds an agent connection to an SSH session: the server
// host key, the session identifier, the host's signature over it, and
// whether the connection is being forwarded.
type SessionBind struct {
	HostKey    []byte
	SessionID  []byte
	Signature  []byte
	Forwarding bool
}

func (SessionBind) ExtensionType() string { return SessionBindType }

func (s SessionBind) AppendContents(dst []byte) []byte {
	dst = wire.AppendBlob(dst, s.HostKey)
	dst = wire.AppendBlob(dst, s.SessionID)
	dst = wire.AppendBlob(dst, s.Signature)
	var forwarding byte
	if s.Forwarding {
		forwarding = 1
	}
	return wire.AppendByte(dst, forwarding)
}

func decodeSessionBind(contents []byte) (Payload, error) {
	r := wire.NewReader(contents)
	var s SessionBind
	var err error
	if s.HostKey, err = r.Blob(); err != nil {
		return nil, contentsError("host_key", r.Offset(), err)
	}
	if s.SessionID, err = r.Blob(); err != nil {
		return nil, contentsError("session_id", r.Offset(), err)
	}
	if s.Signature, err = r.Blob(); err != nil {
		return nil, contentsError("signature", r.Offset(), err)
	}
	off := r.Offset()
	b, err := r.Byte()
	if err != nil {
		return nil, contentsError("forwarding", off, err)
	}
	switch b {
	case 0:
	case 1:
		s.Forwarding = true
	default:
		return nil, contentsError("forwarding", off, fmt.Errorf("%w: boolean byte %d", protocol.ErrInvalidEncoding, b))
	}
	if r.Len() != 0 {
		return nil, contentsError("", r.Offset(), protocol.ErrTrailingBytes)
	}
	return s, nil
}
