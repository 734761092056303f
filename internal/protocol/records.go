package protocol

import (
	"fmt"

	"github.com/danmuck/agentwire/internal/keys"
	"github.com/danmuck/agentwire/internal/protocol/wire"
)

// Smallest encodings of the sequence element types, used to bound
// preallocation against the remaining input.
const (
	minIdentitySize   = 2 * wire.LengthSize
	minConstraintSize = 1 + wire.LengthSize
)

// decoder reads the fields of one message payload and attributes each
// failure to the message tag and field name.
type decoder struct {
	tag MessageType
	r   *wire.Reader
}

func (d *decoder) byteField(field string) (byte, error) {
	off := d.r.Offset()
	v, err := d.r.Byte()
	if err != nil {
		return 0, fieldError(d.tag, field, off, err)
	}
	return v, nil
}

func (d *decoder) uint32Field(field string) (uint32, error) {
	off := d.r.Offset()
	v, err := d.r.Uint32()
	if err != nil {
		return 0, fieldError(d.tag, field, off, err)
	}
	return v, nil
}

func (d *decoder) blobField(field string) ([]byte, error) {
	off := d.r.Offset()
	v, err := d.r.Blob()
	if err != nil {
		return nil, fieldError(d.tag, field, off, err)
	}
	return v, nil
}

func (d *decoder) stringField(field string) (string, error) {
	off := d.r.Offset()
	v, err := d.r.String()
	if err != nil {
		return "", fieldError(d.tag, field, off, err)
	}
	return v, nil
}

func (d *decoder) privateKeyField(field string) (keys.PrivateKey, error) {
	off := d.r.Offset()
	v, err := keys.ReadPrivateKey(d.r)
	if err != nil {
		return keys.PrivateKey{}, fieldError(d.tag, field, off, err)
	}
	return v, nil
}

func appendSequence[T any](dst []byte, items []T, appendItem func([]byte, T) []byte) []byte {
	dst = wire.AppendUint32(dst, uint32(len(items)))
	for _, item := range items {
		dst = appendItem(dst, item)
	}
	return dst
}

// readSequence reads a count followed by exactly that many elements.
// The count is attacker controlled, so capacity is capped by how many
// minSize elements could still fit in the input.
func readSequence[T any](d *decoder, field string, minSize int, readItem func(*decoder, string) (T, error)) ([]T, error) {
	count, err := d.uint32Field(field + ".count")
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}
	capacity := d.r.Len() / minSize
	if uint64(count) < uint64(capacity) {
		capacity = int(count)
	}
	items := make([]T, 0, capacity)
	for i := uint32(0); i < count; i++ {
		item, err := readItem(d, fmt.Sprintf("%s[%d]", field, i))
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// qualify joins a record field name onto its parent path.
func qualify(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}

func appendIdentity(dst []byte, id Identity) []byte {
	dst = wire.AppendBlob(dst, id.KeyBlob)
	return wire.AppendString(dst, id.Comment)
}

func readIdentity(d *decoder, field string) (Identity, error) {
	blob, err := d.blobField(field + ".key_blob")
	if err != nil {
		return Identity{}, err
	}
	comment, err := d.stringField(field + ".comment")
	if err != nil {
		return Identity{}, err
	}
	return Identity{KeyBlob: blob, Comment: comment}, nil
}

func appendConstraint(dst []byte, c KeyConstraint) []byte {
	dst = wire.AppendByte(dst, c.Type)
	return wire.AppendBlob(dst, c.Data)
}

func readConstraint(d *decoder, field string) (KeyConstraint, error) {
	typ, err := d.byteField(field + ".type")
	if err != nil {
		return KeyConstraint{}, err
	}
	data, err := d.blobField(field + ".data")
	if err != nil {
		return KeyConstraint{}, err
	}
	return KeyConstraint{Type: typ, Data: data}, nil
}

func appendSmartcardKey(dst []byte, k SmartcardKey) []byte {
	dst = wire.AppendString(dst, k.ID)
	return wire.AppendString(dst, k.PIN)
}

func readSmartcardKey(d *decoder, field string) (SmartcardKey, error) {
	id, err := d.stringField(field + ".id")
	if err != nil {
		return SmartcardKey{}, err
	}
	pin, err := d.stringField(field + ".pin")
	if err != nil {
		return SmartcardKey{}, err
	}
	return SmartcardKey{ID: id, PIN: pin}, nil
}

func appendAddIdentity(dst []byte, m AddIdentity) []byte {
	dst = keys.AppendPrivateKey(dst, m.PrivateKey)
	return wire.AppendString(dst, m.Comment)
}

// readAddIdentity reads the identity fields of AddIdentity and
// AddIdentityConstrained. An empty field names the top-level fields.
func readAddIdentity(d *decoder, field string) (AddIdentity, error) {
	key, err := d.privateKeyField(qualify(field, "private_key"))
	if err != nil {
		return AddIdentity{}, err
	}
	comment, err := d.stringField(qualify(field, "comment"))
	if err != nil {
		return AddIdentity{}, err
	}
	return AddIdentity{PrivateKey: key, Comment: comment}, nil
}

func appendSignRequest(dst []byte, m SignRequest) []byte {
	dst = wire.AppendBlob(dst, m.KeyBlob)
	dst = wire.AppendBlob(dst, m.Data)
	return wire.AppendUint32(dst, uint32(m.Flags))
}

func readSignRequest(d *decoder) (SignRequest, error) {
	blob, err := d.blobField("key_blob")
	if err != nil {
		return SignRequest{}, err
	}
	data, err := d.blobField("data")
	if err != nil {
		return SignRequest{}, err
	}
	flags, err := d.uint32Field("flags")
	if err != nil {
		return SignRequest{}, err
	}
	return SignRequest{KeyBlob: blob, Data: data, Flags: SignFlags(flags)}, nil
}
