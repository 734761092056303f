package session

import (
	"context"
	"io"
	"time"

	"github.com/danmuck/agentwire/internal/observability"
	"github.com/danmuck/agentwire/internal/protocol"
	"github.com/danmuck/agentwire/internal/protocol/frame"
	"github.com/rs/zerolog/log"
)

type deadliner interface {
	SetDeadline(t time.Time) error
}

// Conn reads and writes framed agent messages on a stream. It is not
// safe for concurrent use.
type Conn struct {
	rw  io.ReadWriter
	cfg Config
}

func NewConn(rw io.ReadWriter, cfg Config) *Conn {
	return &Conn{rw: rw, cfg: cfg}
}

// ReadMessage reads one frame and decodes it. A decode failure still
// consumes the whole frame, so the next call starts on a frame boundary.
func (c *Conn) ReadMessage() (protocol.Message, error) {
	payload, err := frame.ReadFrame(c.rw, c.cfg.Limits)
	if err != nil {
		return nil, err
	}
	observability.RecordFrame(observability.DirectionRead, len(payload))
	m, err := protocol.Decode(payload)
	if err != nil {
		observability.RecordDecodeError(protocol.Reason(err))
		log.Debug().Err(err).Int("frame_bytes", len(payload)).Msg("session.ReadMessage rejected frame")
		return nil, err
	}
	observability.RecordMessage(observability.DirectionRead, m.Type().String())
	return m, nil
}

func (c *Conn) WriteMessage(m protocol.Message) error {
	payload := protocol.Encode(m)
	if err := frame.WriteFrame(c.rw, payload, c.cfg.Limits); err != nil {
		return err
	}
	observability.RecordFrame(observability.DirectionWrite, len(payload))
	observability.RecordMessage(observability.DirectionWrite, m.Type().String())
	return nil
}

func (c *Conn) Close() error {
	if closer, ok := c.rw.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// bind applies the request timeout and ctx cancellation to the
// underlying connection when it supports deadlines. The returned func
// must be called once the exchange finishes.
func (c *Conn) bind(ctx context.Context) func() {
	d, ok := c.rw.(deadliner)
	if !ok {
		return func() {}
	}
	var deadline time.Time
	if c.cfg.RequestTimeout > 0 {
		deadline = time.Now().Add(c.cfg.RequestTimeout)
	}
	if ctxDeadline, ok := ctx.Deadline(); ok && (deadline.IsZero() || ctxDeadline.Before(deadline)) {
		deadline = ctxDeadline
	}
	_ = d.SetDeadline(deadline)
	stop := context.AfterFunc(ctx, func() {
		_ = d.SetDeadline(time.Unix(1, 0))
	})
	return func() {
		stop()
		_ = d.SetDeadline(time.Time{})
	}
}
