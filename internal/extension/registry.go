package extension

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/danmuck/agentwire/internal/protocol"
	"github.com/danmuck/agentwire/internal/protocol/wire"
)

var ErrUnknownExtension = errors.New("extension: unknown extension type")

// Payload is the structured contents of one extension type.
type Payload interface {
	ExtensionType() string
	AppendContents(dst []byte) []byte
}

// Decoder parses the contents of one extension type.
type Decoder func(contents []byte) (Payload, error)

// Registry maps extension type names to decoders. It is safe for
// concurrent use.
type Registry struct {
	mu       sync.RWMutex
	decoders map[string]Decoder
}

func NewRegistry() *Registry {
	return &Registry{decoders: make(map[string]Decoder)}
}

// DefaultRegistry returns a registry preloaded with the extensions this
// package implements.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	if err := r.Register(SessionBindType, decodeSessionBind); err != nil {
		panic(err)
	}
	return r
}

func (r *Registry) Register(name string, d Decoder) error {
	if name == "" || d == nil {
		return fmt.Errorf("extension: invalid registration for %q", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.decoders[name]; exists {
		return fmt.Errorf("extension: %q already registered", name)
	}
	r.decoders[name] = d
	return nil
}

// Decode parses ext.Contents with the decoder registered for ext.ExtensionType.
func (r *Registry) Decode(ext protocol.Extension) (Payload, error) {
	r.mu.RLock()
	d, ok := r.decoders[ext.ExtensionType]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownExtension, ext.ExtensionType)
	}
	return d(ext.Contents)
}

// Names returns the registered extension types in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.decoders))
	for name := range r.decoders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build wraps p in an Extension message.
func Build(p Payload) protocol.Extension {
	return protocol.Extension{
		ExtensionType: p.ExtensionType(),
		Contents:      p.AppendContents(nil),
	}
}

// contentsError reports a failure inside extension contents. Offsets
// are relative to the start of the contents.
func contentsError(field string, offset int, err error) error {
	var werr *wire.Error
	if errors.As(err, &werr) {
		offset = werr.Offset
		err = werr.Err
	}
	return &protocol.DecodeError{Tag: protocol.TagExtension, Offset: offset, Field: field, Err: err}
}
