package keys

import (
	"crypto/ed25519"
	"errors"
	"fmt"

	"github.com/danmuck/agentwire/internal/protocol/wire"
	"golang.org/x/crypto/ssh"
)

var ErrUnknownKeyType = errors.New("keys: unknown private key type")

// PrivateKey is the key-type-specific record carried by an add-identity
// message: the key type name followed by its fields in the order the key
// type defines. Most fields are length-prefixed strings or mpints;
// security key types also carry a one-byte flags field, held here as a
// one-byte slice.
type PrivateKey struct {
	Type   string
	Fields [][]byte
}

type fieldKind uint8

const (
	blobField fieldKind = iota
	flagsField
)

func blobs(n int) []fieldKind {
	return make([]fieldKind, n)
}

// skFields is the security key tail: application, flags, key handle,
// reserved.
var skFields = []fieldKind{blobField, flagsField, blobField, blobField}

func withSK(head int) []fieldKind {
	return append(blobs(head), skFields...)
}

// layouts lists the fields following the key type name, per
// draft-miller-ssh-agent section 4.2 and OpenSSH's PROTOCOL.u2f.
var layouts = map[string][]fieldKind{
	ssh.KeyAlgoED25519:    blobs(2), // ENC(A), k || ENC(A)
	ssh.KeyAlgoRSA:        blobs(6), // n, e, d, iqmp, p, q
	"ssh-dss":             blobs(5), // p, q, g, y, x
	ssh.KeyAlgoECDSA256:   blobs(3), // curve, Q, d
	ssh.KeyAlgoECDSA384:   blobs(3),
	ssh.KeyAlgoECDSA521:   blobs(3),
	ssh.KeyAlgoSKED25519:  withSK(1), // ENC(A), sk tail
	ssh.KeyAlgoSKECDSA256: withSK(2), // curve, Q, sk tail

	ssh.CertAlgoED25519v01:         blobs(3), // certificate, ENC(A), k || ENC(A)
	ssh.CertAlgoRSAv01:             blobs(5), // certificate, d, iqmp, p, q
	"ssh-dss-cert-v01@openssh.com": blobs(2), // certificate, x
	ssh.CertAlgoECDSA256v01:        blobs(2), // certificate, d
	ssh.CertAlgoECDSA384v01:        blobs(2),
	ssh.CertAlgoECDSA521v01:        blobs(2),
	ssh.CertAlgoSKED25519v01:       withSK(2), // certificate, ENC(A), sk tail
	ssh.CertAlgoSKECDSA256v01:      withSK(1), // certificate, sk tail
}

// FieldCount returns the number of fields a private key of keyType
// carries on the wire.
func FieldCount(keyType string) (int, bool) {
	layout, ok := layouts[keyType]
	return len(layout), ok
}

// AppendPrivateKey writes k. Fields of unknown key types are written as
// length-prefixed blobs.
func AppendPrivateKey(dst []byte, k PrivateKey) []byte {
	dst = wire.AppendString(dst, k.Type)
	layout := layouts[k.Type]
	for i, f := range k.Fields {
		if i < len(layout) && layout[i] == flagsField {
			var flags byte
			if len(f) > 0 {
				flags = f[0]
			}
			dst = wire.AppendByte(dst, flags)
			continue
		}
		dst = wire.AppendBlob(dst, f)
	}
	return dst
}

// ReadPrivateKey consumes one private key record from r.
func ReadPrivateKey(r *wire.Reader) (PrivateKey, error) {
	start := r.Offset()
	keyType, err := r.String()
	if err != nil {
		return PrivateKey{}, err
	}
	layout, ok := layouts[keyType]
	if !ok {
		return PrivateKey{}, fmt.Errorf("%w %q at offset %d", ErrUnknownKeyType, keyType, start)
	}
	fields := make([][]byte, 0, len(layout))
	for _, kind := range layout {
		var f []byte
		if kind == flagsField {
			var flags byte
			flags, err = r.Byte()
			f = []byte{flags}
		} else {
			f, err = r.Blob()
		}
		if err != nil {
			return PrivateKey{}, err
		}
		fields = append(fields, f)
	}
	return PrivateKey{Type: keyType, Fields: fields}, nil
}

// FromEd25519 builds the wire record for an Ed25519 private key.
func FromEd25519(priv ed25519.PrivateKey) PrivateKey {
	pub := priv.Public().(ed25519.PublicKey)
	return PrivateKey{
		Type: ssh.KeyAlgoED25519,
		Fields: [][]byte{
			append([]byte(nil), pub...),
			append([]byte(nil), priv...),
		},
	}
}

// PublicBlob returns the public key blob matching an Ed25519 private key
// record, the form sign and remove requests identify keys by.
func (k PrivateKey) PublicBlob() ([]byte, error) {
	if k.Type != ssh.KeyAlgoED25519 || len(k.Fields) != 2 {
		return nil, fmt.Errorf("keys: public blob unsupported for %q", k.Type)
	}
	pub, err := ssh.NewPublicKey(ed25519.PublicKey(k.Fields[0]))
	if err != nil {
		return nil, err
	}
	return pub.Marshal(), nil
}
