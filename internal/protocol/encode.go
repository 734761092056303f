package protocol

import (
	"fmt"

	"github.com/danmuck/agentwire/internal/protocol/wire"
)

// Encode returns the wire form of m: its tag byte followed by the
// payload. The result carries no transport framing.
func Encode(m Message) []byte {
	return AppendMessage(nil, m)
}

// Encodable reports whether m is one of the value variants AppendMessage
// accepts. Pointer forms such as *Success are not.
func Encodable(m Message) bool {
	switch m.(type) {
	case Failure, Success, RequestIdentities, IdentitiesAnswer, SignRequest,
		SignResponse, AddIdentity, RemoveIdentity, RemoveAllIdentities,
		AddSmartcardKey, RemoveSmartcardKey, Lock, Unlock,
		AddIdentityConstrained, AddSmartcardKeyConstrained, Extension,
		ExtensionFailure:
		return true
	default:
		return false
	}
}

// AppendMessage appends the wire form of m to dst. It panics when m is
// not Encodable.
func AppendMessage(dst []byte, m Message) []byte {
	dst = append(dst, byte(m.Type()))
	switch m := m.(type) {
	case Failure, Success, RequestIdentities, RemoveAllIdentities, ExtensionFailure:
		return dst
	case IdentitiesAnswer:
		return appendSequence(dst, m.Identities, appendIdentity)
	case SignRequest:
		return appendSignRequest(dst, m)
	case SignResponse:
		return wire.AppendBlob(dst, m.Signature)
	case AddIdentity:
		return appendAddIdentity(dst, m)
	case RemoveIdentity:
		return wire.AppendBlob(dst, m.KeyBlob)
	case AddSmartcardKey:
		return appendSmartcardKey(dst, m.Key)
	case RemoveSmartcardKey:
		return appendSmartcardKey(dst, m.Key)
	case Lock:
		return wire.AppendString(dst, m.Passphrase)
	case Unlock:
		return wire.AppendString(dst, m.Passphrase)
	case AddIdentityConstrained:
		dst = appendAddIdentity(dst, m.Identity)
		return appendSequence(dst, m.Constraints, appendConstraint)
	case AddSmartcardKeyConstrained:
		dst = appendSmartcardKey(dst, m.Key)
		return appendSequence(dst, m.Constraints, appendConstraint)
	case Extension:
		return appendExtension(dst, m)
	default:
		// Pointer forms satisfy Message through the value method set.
		panic(fmt.Sprintf("protocol: cannot encode %T", m))
	}
}
