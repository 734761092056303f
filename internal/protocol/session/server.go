package session

import (
	"errors"
	"io"

	"github.com/danmuck/agentwire/internal/protocol"
	"github.com/rs/zerolog/log"
)

// Handler answers one agent request. Replies must be value variants
// (protocol.Success{}, not &protocol.Success{}); ServeConn answers any
// other reply, including nil, with Failure.
type Handler interface {
	Handle(req protocol.Message) protocol.Message
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(req protocol.Message) protocol.Message

func (f HandlerFunc) Handle(req protocol.Message) protocol.Message {
	return f(req)
}

// ServeConn answers requests on conn until the peer closes it. Frames
// that fail to decode are answered with Failure and serving continues.
func ServeConn(conn *Conn, h Handler) error {
	for {
		req, err := conn.ReadMessage()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			var decodeErr *protocol.DecodeError
			if !errors.As(err, &decodeErr) {
				return err
			}
			log.Debug().Err(err).Msg("session.ServeConn answering failure")
			if err := conn.WriteMessage(protocol.Failure{}); err != nil {
				return err
			}
			continue
		}
		resp := h.Handle(req)
		if resp == nil || !protocol.Encodable(resp) {
			log.Warn().Str("request", req.Type().String()).Msgf("session.ServeConn handler returned unencodable %T", resp)
			resp = protocol.Failure{}
		}
		if err := conn.WriteMessage(resp); err != nil {
			return err
		}
	}
}
