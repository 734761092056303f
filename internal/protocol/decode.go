package protocol

import (
	"fmt"

	"github.com/danmuck/agentwire/internal/protocol/wire"
	"github.com/rs/zerolog/log"
)

// Decode reads exactly one message from b. Bytes left over after a
// complete non-extension message fail with ErrTrailingBytes; b must hold
// one whole framed message.
//
// Zero-length byte fields and empty sequences decode as nil, so a message
// built with nil for those fields round-trips to an identical value.
func Decode(b []byte) (Message, error) {
	m, n, err := DecodePrefix(b)
	if err != nil {
		return nil, err
	}
	if n != len(b) {
		err := &DecodeError{Tag: m.Type(), Offset: n, Err: ErrTrailingBytes}
		log.Debug().Err(err).Int("trailing", len(b)-n).Msg("protocol.Decode trailing bytes")
		return nil, err
	}
	return m, nil
}

// DecodeLength decodes the message occupying the first n bytes of b, for
// callers that learned the message length out of band.
func DecodeLength(b []byte, n int) (Message, error) {
	if n < 0 || n > len(b) {
		return nil, fmt.Errorf("protocol: message length %d exceeds %d buffered bytes: %w", n, len(b), ErrTruncated)
	}
	return Decode(b[:n])
}

// DecodePrefix decodes one message from the start of b and returns it
// with the number of bytes consumed. Remaining bytes are left for the
// caller, which may treat them as the next message or a framing error.
// An Extension always consumes all of b.
func DecodePrefix(b []byte) (Message, int, error) {
	r := wire.NewReader(b)
	raw, err := r.Byte()
	if err != nil {
		return nil, 0, &DecodeError{Offset: 0, Field: fieldTag, Err: ErrTruncated}
	}
	tag := MessageType(raw)
	switch {
	case tag.Reserved():
		return nil, 0, &DecodeError{Tag: tag, Offset: 0, Err: ErrReservedMessageType}
	case !tag.Defined():
		return nil, 0, &DecodeError{Tag: tag, Offset: 0, Err: ErrUnknownMessageType}
	}

	d := &decoder{tag: tag, r: r}
	m, err := d.payload()
	if err != nil {
		log.Debug().Err(err).Str("message_type", tag.String()).Msg("protocol.Decode failed")
		return nil, 0, err
	}
	return m, r.Offset(), nil
}

func (d *decoder) payload() (Message, error) {
	switch d.tag {
	case TagFailure:
		return Failure{}, nil
	case TagSuccess:
		return Success{}, nil
	case TagRequestIdentities:
		return RequestIdentities{}, nil
	case TagRemoveAllIdentities:
		return RemoveAllIdentities{}, nil
	case TagExtensionFailure:
		return ExtensionFailure{}, nil
	case TagIdentitiesAnswer:
		ids, err := readSequence(d, "identities", minIdentitySize, readIdentity)
		if err != nil {
			return nil, err
		}
		return IdentitiesAnswer{Identities: ids}, nil
	case TagSignRequest:
		return readSignRequest(d)
	case TagSignResponse:
		sig, err := d.blobField("signature")
		if err != nil {
			return nil, err
		}
		return SignResponse{Signature: sig}, nil
	case TagAddIdentity:
		return readAddIdentity(d, "")
	case TagRemoveIdentity:
		blob, err := d.blobField("key_blob")
		if err != nil {
			return nil, err
		}
		return RemoveIdentity{KeyBlob: blob}, nil
	case TagAddSmartcardKey:
		key, err := readSmartcardKey(d, "key")
		if err != nil {
			return nil, err
		}
		return AddSmartcardKey{Key: key}, nil
	case TagRemoveSmartcardKey:
		key, err := readSmartcardKey(d, "key")
		if err != nil {
			return nil, err
		}
		return RemoveSmartcardKey{Key: key}, nil
	case TagLock:
		pass, err := d.stringField("passphrase")
		if err != nil {
			return nil, err
		}
		return Lock{Passphrase: pass}, nil
	case TagUnlock:
		pass, err := d.stringField("passphrase")
		if err != nil {
			return nil, err
		}
		return Unlock{Passphrase: pass}, nil
	case TagAddIdentityConstrained:
		id, err := readAddIdentity(d, "identity")
		if err != nil {
			return nil, err
		}
		constraints, err := readSequence(d, "constraints", minConstraintSize, readConstraint)
		if err != nil {
			return nil, err
		}
		return AddIdentityConstrained{Identity: id, Constraints: constraints}, nil
	case TagAddSmartcardKeyConstrained:
		key, err := readSmartcardKey(d, "key")
		if err != nil {
			return nil, err
		}
		constraints, err := readSequence(d, "constraints", minConstraintSize, readConstraint)
		if err != nil {
			return nil, err
		}
		return AddSmartcardKeyConstrained{Key: key, Constraints: constraints}, nil
	case TagExtension:
		return readExtension(d)
	default:
		return nil, fmt.Errorf("protocol: no decoder for %s", d.tag)
	}
}
