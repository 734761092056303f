package keys

import (
	"fmt"

	"golang.org/x/crypto/ssh"
)

// Description is the human-facing summary of a public key blob.
type Description struct {
	Type        string `yaml:"type"`
	Fingerprint string `yaml:"fingerprint"`
}

// Describe parses an SSH public key blob and returns its type and
// SHA256 fingerprint.
func Describe(blob []byte) (Description, error) {
	pub, err := ssh.ParsePublicKey(blob)
	if err != nil {
		return Description{}, fmt.Errorf("keys: parse public key: %w", err)
	}
	return Description{
		Type:        pub.Type(),
		Fingerprint: ssh.FingerprintSHA256(pub),
	}, nil
}
