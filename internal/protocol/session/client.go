package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/danmuck/agentwire/internal/protocol"
	"github.com/rs/zerolog/log"
)

var (
	ErrAgentFailure     = errors.New("session: agent reported failure")
	ErrExtensionFailure = errors.New("session: agent reported extension failure")
)

// UnexpectedResponseError reports a reply whose variant does not answer
// the request that was sent.
type UnexpectedResponseError struct {
	Request  protocol.MessageType
	Response protocol.MessageType
}

func (e *UnexpectedResponseError) Error() string {
	return fmt.Sprintf("session: unexpected %s in reply to %s", e.Response, e.Request)
}

// Client issues agent requests over one Conn. Calls are serialized.
type Client struct {
	mu   sync.Mutex
	conn *Conn
}

func NewClient(conn *Conn) *Client {
	return &Client{conn: conn}
}

func (c *Client) Close() error {
	return c.conn.Close()
}

// Call writes req and reads exactly one reply. Agent failure replies are
// mapped to ErrAgentFailure and ErrExtensionFailure.
func (c *Client) Call(ctx context.Context, req protocol.Message) (protocol.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	release := c.conn.bind(ctx)
	defer release()

	if err := c.conn.WriteMessage(req); err != nil {
		return nil, c.contextErr(ctx, fmt.Errorf("session: write %s: %w", req.Type(), err))
	}
	resp, err := c.conn.ReadMessage()
	if err != nil {
		return nil, c.contextErr(ctx, fmt.Errorf("session: read reply to %s: %w", req.Type(), err))
	}
	log.Debug().Str("request", req.Type().String()).Str("response", resp.Type().String()).Msg("session.Call")
	switch resp.(type) {
	case protocol.Failure:
		return nil, ErrAgentFailure
	case protocol.ExtensionFailure:
		return nil, ErrExtensionFailure
	}
	return resp, nil
}

// contextErr attaches the ctx error when cancellation or the ctx
// deadline is what interrupted the exchange.
func (c *Client) contextErr(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return errors.Join(ctxErr, err)
	}
	if deadline, ok := ctx.Deadline(); ok && !time.Now().Before(deadline) && errors.Is(err, os.ErrDeadlineExceeded) {
		return errors.Join(context.DeadlineExceeded, err)
	}
	return err
}

func (c *Client) expectSuccess(ctx context.Context, req protocol.Message) error {
	resp, err := c.Call(ctx, req)
	if err != nil {
		return err
	}
	if _, ok := resp.(protocol.Success); !ok {
		return &UnexpectedResponseError{Request: req.Type(), Response: resp.Type()}
	}
	return nil
}

// List returns the identities the agent holds.
func (c *Client) List(ctx context.Context) ([]protocol.Identity, error) {
	req := protocol.RequestIdentities{}
	resp, err := c.Call(ctx, req)
	if err != nil {
		return nil, err
	}
	answer, ok := resp.(protocol.IdentitiesAnswer)
	if !ok {
		return nil, &UnexpectedResponseError{Request: req.Type(), Response: resp.Type()}
	}
	return answer.Identities, nil
}

// Sign asks the agent to sign data with the key identified by keyBlob.
func (c *Client) Sign(ctx context.Context, keyBlob, data []byte, flags protocol.SignFlags) ([]byte, error) {
	req := protocol.SignRequest{KeyBlob: keyBlob, Data: data, Flags: flags}
	resp, err := c.Call(ctx, req)
	if err != nil {
		return nil, err
	}
	sig, ok := resp.(protocol.SignResponse)
	if !ok {
		return nil, &UnexpectedResponseError{Request: req.Type(), Response: resp.Type()}
	}
	return sig.Signature, nil
}

// Add loads a private key. With constraints the constrained variant is
// sent instead.
func (c *Client) Add(ctx context.Context, id protocol.AddIdentity, constraints ...protocol.KeyConstraint) error {
	if len(constraints) > 0 {
		return c.expectSuccess(ctx, protocol.AddIdentityConstrained{Identity: id, Constraints: constraints})
	}
	return c.expectSuccess(ctx, id)
}

func (c *Client) AddSmartcardKey(ctx context.Context, key protocol.SmartcardKey, constraints ...protocol.KeyConstraint) error {
	if len(constraints) > 0 {
		return c.expectSuccess(ctx, protocol.AddSmartcardKeyConstrained{Key: key, Constraints: constraints})
	}
	return c.expectSuccess(ctx, protocol.AddSmartcardKey{Key: key})
}

func (c *Client) RemoveSmartcardKey(ctx context.Context, key protocol.SmartcardKey) error {
	return c.expectSuccess(ctx, protocol.RemoveSmartcardKey{Key: key})
}

func (c *Client) Remove(ctx context.Context, keyBlob []byte) error {
	return c.expectSuccess(ctx, protocol.RemoveIdentity{KeyBlob: keyBlob})
}

func (c *Client) RemoveAll(ctx context.Context) error {
	return c.expectSuccess(ctx, protocol.RemoveAllIdentities{})
}

func (c *Client) Lock(ctx context.Context, passphrase string) error {
	return c.expectSuccess(ctx, protocol.Lock{Passphrase: passphrase})
}

func (c *Client) Unlock(ctx context.Context, passphrase string) error {
	return c.expectSuccess(ctx, protocol.Unlock{Passphrase: passphrase})
}

// Extension sends ext and returns the agent's reply, which is Success or
// an extension-specific message.
func (c *Client) Extension(ctx context.Context, ext protocol.Extension) (protocol.Message, error) {
	return c.Call(ctx, ext)
}
