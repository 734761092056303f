package protocol

import "github.com/danmuck/agentwire/internal/protocol/wire"

// The extension payload is the one field whose length is not on the wire.
// Contents is written raw after the type name and read back as whatever
// bytes follow it, so these helpers stay out of the record codec.

func appendExtension(dst []byte, m Extension) []byte {
	dst = wire.AppendString(dst, m.ExtensionType)
	return append(dst, m.Contents...)
}

func readExtension(d *decoder) (Extension, error) {
	name, err := d.stringField("extension_type")
	if err != nil {
		return Extension{}, err
	}
	return Extension{ExtensionType: name, Contents: d.r.Rest()}, nil
}
