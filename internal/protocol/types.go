package protocol

import "github.com/danmuck/agentwire/internal/keys"

// Message is one agent protocol message. The set of implementations is
// closed; Encode and Decode switch over every one of them.
type Message interface {
	Type() MessageType
	isMessage()
}

// SignFlags is the bitmask carried by SignRequest.
type SignFlags uint32

// Identity is one key held by the agent.
type Identity struct {
	KeyBlob []byte
	Comment string
}

// KeyConstraint restricts how an added key may be used.
type KeyConstraint struct {
	Type byte
	Data []byte
}

// SmartcardKey names a key on a smartcard reader.
type SmartcardKey struct {
	ID  string
	PIN string
}

type Failure struct{}

type Success struct{}

type RequestIdentities struct{}

type IdentitiesAnswer struct {
	Identities []Identity
}

type SignRequest struct {
	KeyBlob []byte
	Data    []byte
	Flags   SignFlags
}

type SignResponse struct {
	Signature []byte
}

type AddIdentity struct {
	PrivateKey keys.PrivateKey
	Comment    string
}

// RemoveIdentity identifies the key to remove by its public blob.
type RemoveIdentity struct {
	KeyBlob []byte
}

type RemoveAllIdentities struct{}

type AddSmartcardKey struct {
	Key SmartcardKey
}

type RemoveSmartcardKey struct {
	Key SmartcardKey
}

type Lock struct {
	Passphrase string
}

type Unlock struct {
	Passphrase string
}

type AddIdentityConstrained struct {
	Identity    AddIdentity
	Constraints []KeyConstraint
}

type AddSmartcardKeyConstrained struct {
	Key         SmartcardKey
	Constraints []KeyConstraint
}

// Extension carries a vendor extension. Contents has no length prefix on
// the wire: it is every byte after ExtensionType up to the end of the
// message, so decoding it is only correct when the input holds exactly one
// message.
type Extension struct {
	ExtensionType string
	Contents      []byte
}

type ExtensionFailure struct{}

func (Failure) Type() MessageType                    { return TagFailure }
func (Success) Type() MessageType                    { return TagSuccess }
func (RequestIdentities) Type() MessageType          { return TagRequestIdentities }
func (IdentitiesAnswer) Type() MessageType           { return TagIdentitiesAnswer }
func (SignRequest) Type() MessageType                { return TagSignRequest }
func (SignResponse) Type() MessageType               { return TagSignResponse }
func (AddIdentity) Type() MessageType                { return TagAddIdentity }
func (RemoveIdentity) Type() MessageType             { return TagRemoveIdentity }
func (RemoveAllIdentities) Type() MessageType        { return TagRemoveAllIdentities }
func (AddSmartcardKey) Type() MessageType            { return TagAddSmartcardKey }
func (RemoveSmartcardKey) Type() MessageType         { return TagRemoveSmartcardKey }
func (Lock) Type() MessageType                       { return TagLock }
func (Unlock) Type() MessageType                     { return TagUnlock }
func (AddIdentityConstrained) Type() MessageType     { return TagAddIdentityConstrained }
func (AddSmartcardKeyConstrained) Type() MessageType { return TagAddSmartcardKeyConstrained }
func (Extension) Type() MessageType                  { return TagExtension }
func (ExtensionFailure) Type() MessageType           { return TagExtensionFailure }

func (Failure) isMessage()                    {}
func (Success) isMessage()                    {}
func (RequestIdentities) isMessage()          {}
func (IdentitiesAnswer) isMessage()           {}
func (SignRequest) isMessage()                {}
func (SignResponse) isMessage()               {}
func (AddIdentity) isMessage()                {}
func (RemoveIdentity) isMessage()             {}
func (RemoveAllIdentities) isMessage()        {}
func (AddSmartcardKey) isMessage()            {}
func (RemoveSmartcardKey) isMessage()         {}
func (Lock) isMessage()                       {}
func (Unlock) isMessage()                     {}
func (AddIdentityConstrained) isMessage()     {}
func (AddSmartcardKeyConstrained) isMessage() {}
func (Extension) isMessage()                  {}
func (ExtensionFailure) isMessage()           {}
