package main

import (
	"io"

	"github.com/danmuck/agentwire/internal/extension"
	"github.com/danmuck/agentwire/internal/keys"
	"github.com/danmuck/agentwire/internal/protocol"
	"gopkg.in/yaml.v3"
)

const redacted = "[redacted]"

type identityView struct {
	Type        string   `yaml:"type,omitempty"`
	Fingerprint string   `yaml:"fingerprint,omitempty"`
	Comment     string   `yaml:"comment"`
	KeyBlob     hexBytes `yaml:"key_blob,omitempty"`
}

type constraintView struct {
	Type uint8    `yaml:"type"`
	Data hexBytes `yaml:"data,omitempty"`
}

type sessionBindView struct {
	HostKey    identityView `yaml:"host_key"`
	SessionID  hexBytes     `yaml:"session_id"`
	Signature  hexBytes     `yaml:"signature"`
	Forwarding bool         `yaml:"forwarding"`
}

type extensionView struct {
	Type        string           `yaml:"type"`
	Contents    hexBytes         `yaml:"contents,omitempty"`
	SessionBind *sessionBindView `yaml:"session_bind,omitempty"`
	Error       string           `yaml:"error,omitempty"`
}

type messageView struct {
	Type        string           `yaml:"type"`
	Tag         uint8            `yaml:"tag"`
	Identities  []identityView   `yaml:"identities,omitempty"`
	Key         *identityView    `yaml:"key,omitempty"`
	Data        hexBytes         `yaml:"data,omitempty"`
	Flags       uint32           `yaml:"flags,omitempty"`
	Signature   hexBytes         `yaml:"signature,omitempty"`
	Comment     string           `yaml:"comment,omitempty"`
	SmartcardID string           `yaml:"smartcard_id,omitempty"`
	Secret      string           `yaml:"secret,omitempty"`
	Constraints []constraintView `yaml:"constraints,omitempty"`
	Extension   *extensionView   `yaml:"extension,omitempty"`
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// describeKey prefers the parsed key type and fingerprint and falls back
// to the raw blob for keys x/crypto/ssh cannot parse.
func describeKey(blob []byte, comment string) identityView {
	desc, err := keys.Describe(blob)
	if err != nil {
		return identityView{Comment: comment, KeyBlob: blob}
	}
	return identityView{Type: desc.Type, Fingerprint: desc.Fingerprint, Comment: comment}
}

func identityViews(ids []protocol.Identity) []identityView {
	views := make([]identityView, 0, len(ids))
	for _, id := range ids {
		views = append(views, describeKey(id.KeyBlob, id.Comment))
	}
	return views
}

func constraintViews(in []protocol.KeyConstraint) []constraintView {
	views := make([]constraintView, 0, len(in))
	for _, c := range in {
		views = append(views, constraintView{Type: c.Type, Data: c.Data})
	}
	return views
}

// privateKeyView never carries private material, only the public half
// when it can be derived.
func privateKeyView(k keys.PrivateKey) *identityView {
	if blob, err := k.PublicBlob(); err == nil {
		v := describeKey(blob, "")
		return &v
	}
	return &identityView{Type: k.Type}
}

func describeExtension(ext protocol.Extension, reg *extension.Registry) *extensionView {
	v := &extensionView{Type: ext.ExtensionType, Contents: ext.Contents}
	p, err := reg.Decode(ext)
	if err != nil {
		v.Error = err.Error()
		return v
	}
	switch p := p.(type) {
	case extension.SessionBind:
		v.Contents = nil
		v.SessionBind = &sessionBindView{
			HostKey:    describeKey(p.HostKey, ""),
			SessionID:  p.SessionID,
			Signature:  p.Signature,
			Forwarding: p.Forwarding,
		}
	}
	return v
}

func describeMessage(m protocol.Message, reg *extension.Registry) messageView {
	v := messageView{Type: m.Type().String(), Tag: uint8(m.Type())}
	switch m := m.(type) {
	case protocol.Failure, protocol.Success, protocol.RequestIdentities,
		protocol.RemoveAllIdentities, protocol.ExtensionFailure:
	case protocol.IdentitiesAnswer:
		v.Identities = identityViews(m.Identities)
	case protocol.SignRequest:
		key := describeKey(m.KeyBlob, "")
		v.Key = &key
		v.Data = m.Data
		v.Flags = uint32(m.Flags)
	case protocol.SignResponse:
		v.Signature = m.Signature
	case protocol.AddIdentity:
		v.Key = privateKeyView(m.PrivateKey)
		v.Comment = m.Comment
	case protocol.RemoveIdentity:
		key := describeKey(m.KeyBlob, "")
		v.Key = &key
	case protocol.AddSmartcardKey:
		v.SmartcardID = m.Key.ID
		v.Secret = redacted
	case protocol.RemoveSmartcardKey:
		v.SmartcardID = m.Key.ID
		v.Secret = redacted
	case protocol.Lock, protocol.Unlock:
		v.Secret = redacted
	case protocol.AddIdentityConstrained:
		v.Key = privateKeyView(m.Identity.PrivateKey)
		v.Comment = m.Identity.Comment
		v.Constraints = constraintViews(m.Constraints)
	case protocol.AddSmartcardKeyConstrained:
		v.SmartcardID = m.Key.ID
		v.Secret = redacted
		v.Constraints = constraintViews(m.Constraints)
	case protocol.Extension:
		v.Extension = describeExtension(m, reg)
	}
	return v
}
