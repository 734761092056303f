package protocol

import "fmt"

// MessageType is the one-byte tag that starts every agent message.
type MessageType uint8

// Wire tags. Values are part of the protocol contract and never derived
// from declaration order; reserved slots are never reused.
const (
	TagReserved0                  MessageType = 0
	TagReserved1                  MessageType = 1
	TagReserved2                  MessageType = 2
	TagReserved3                  MessageType = 3
	TagReserved4                  MessageType = 4
	TagFailure                    MessageType = 5
	TagSuccess                    MessageType = 6
	TagReserved7                  MessageType = 7
	TagReserved8                  MessageType = 8
	TagReserved9                  MessageType = 9
	TagReserved10                 MessageType = 10
	TagRequestIdentities          MessageType = 11
	TagIdentitiesAnswer           MessageType = 12
	TagSignRequest                MessageType = 13
	TagSignResponse               MessageType = 14
	TagReserved15                 MessageType = 15
	TagReserved16                 MessageType = 16
	TagAddIdentity                MessageType = 17
	TagRemoveIdentity             MessageType = 18
	TagRemoveAllIdentities        MessageType = 19
	TagAddSmartcardKey            MessageType = 20
	TagRemoveSmartcardKey         MessageType = 21
	TagLock                       MessageType = 22
	TagUnlock                     MessageType = 23
	TagReserved24                 MessageType = 24
	TagAddIdentityConstrained     MessageType = 25
	TagAddSmartcardKeyConstrained MessageType = 26
	TagExtension                  MessageType = 27
	TagExtensionFailure           MessageType = 28

	// TagMax is the highest tag in the catalog.
	TagMax = TagExtensionFailure
)

var messageNames = [...]string{
	TagFailure:                    "failure",
	TagSuccess:                    "success",
	TagRequestIdentities:          "request_identities",
	TagIdentitiesAnswer:           "identities_answer",
	TagSignRequest:                "sign_request",
	TagSignResponse:               "sign_response",
	TagAddIdentity:                "add_identity",
	TagRemoveIdentity:             "remove_identity",
	TagRemoveAllIdentities:        "remove_all_identities",
	TagAddSmartcardKey:            "add_smartcard_key",
	TagRemoveSmartcardKey:         "remove_smartcard_key",
	TagLock:                       "lock",
	TagUnlock:                     "unlock",
	TagAddIdentityConstrained:     "add_identity_constrained",
	TagAddSmartcardKeyConstrained: "add_smartcard_key_constrained",
	TagExtension:                  "extension",
	TagExtensionFailure:           "extension_failure",
}

// Defined reports whether t names an operation in the catalog.
func (t MessageType) Defined() bool {
	return t <= TagMax && messageNames[t] != ""
}

// Reserved reports whether t is a placeholder slot inside the catalog.
func (t MessageType) Reserved() bool {
	return t <= TagMax && messageNames[t] == ""
}

func (t MessageType) String() string {
	switch {
	case t.Defined():
		return messageNames[t]
	case t.Reserved():
		return fmt.Sprintf("reserved_%d", uint8(t))
	default:
		return fmt.Sprintf("unknown_%d", uint8(t))
	}
}

// Signature flags carried by SignRequest.
const (
	SignFlagRSASHA256 SignFlags = 1 << 1
	SignFlagRSASHA512 SignFlags = 1 << 2
)

// Key constraint type tags.
const (
	ConstraintLifetime  byte = 1
	ConstraintConfirm   byte = 2
	ConstraintExtension byte = 255
)
