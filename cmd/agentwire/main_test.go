package main

import (
	"bytes"
	"crypto/ed25519"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danmuck/agentwire/internal/extension"
	"github.com/danmuck/agentwire/internal/keys"
	"github.com/danmuck/agentwire/internal/protocol"
	"github.com/danmuck/agentwire/internal/protocol/frame"
	"github.com/danmuck/agentwire/internal/testutil/testlog"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/ssh"
)

func testPublicBlob(t *testing.T) []byte {
	t.Helper()
	priv := ed25519.NewKeyFromSeed(bytes.Repeat([]byte{5}, ed25519.SeedSize))
	pub, err := ssh.NewPublicKey(priv.Public())
	if err != nil {
		t.Fatalf("public key: %v", err)
	}
	return pub.Marshal()
}

func TestDecodeHexIdentitiesAnswer(t *testing.T) {
	testlog.Start(t)
	msg := protocol.Encode(protocol.IdentitiesAnswer{Identities: []protocol.Identity{
		{KeyBlob: testPublicBlob(t), Comment: "laptop"},
		{KeyBlob: []byte{0xde, 0xad}, Comment: "opaque"},
	}})
	var out bytes.Buffer
	in := strings.NewReader(hex.EncodeToString(msg[:10]) + "\n" + hex.EncodeToString(msg[10:]))
	if err := run([]string{"decode", "--hex"}, in, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	got := out.String()
	for _, want := range []string{"type: identities_answer", "tag: 12", "type: ssh-ed25519", "fingerprint: SHA256:", "comment: laptop", "key_blob: dead"} {
		if !strings.Contains(got, want) {
			t.Fatalf("missing %q in output:\n%s", want, got)
		}
	}
}

func TestDecodeFramedStreamFromFile(t *testing.T) {
	testlog.Start(t)
	var stream []byte
	stream = frame.Append(stream, protocol.Encode(protocol.Extension{ExtensionType: "query", Contents: []byte{1}}))
	stream = frame.Append(stream, protocol.Encode(protocol.Lock{Passphrase: "hunter2"}))
	path := filepath.Join(t.TempDir(), "capture.bin")
	if err := os.WriteFile(path, stream, 0o600); err != nil {
		t.Fatalf("write capture: %v", err)
	}

	var out bytes.Buffer
	if err := run([]string{"decode", "--framed", path}, strings.NewReader(""), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "type: query") || !strings.Contains(got, "type: lock") {
		t.Fatalf("unexpected output:\n%s", got)
	}
	if strings.Contains(got, "hunter2") {
		t.Fatalf("passphrase leaked into output:\n%s", got)
	}
}

func TestDecodeMessagesStopsAtBadFrame(t *testing.T) {
	testlog.Start(t)
	var stream []byte
	stream = frame.Append(stream, protocol.Encode(protocol.Success{}))
	stream = frame.Append(stream, []byte{byte(protocol.TagReserved24)})
	views, err := decodeMessages(stream, true, frame.DefaultLimits(), extension.DefaultRegistry())
	if err == nil || !strings.Contains(err.Error(), "frame 1") {
		t.Fatalf("expected frame 1 error, got %v", err)
	}
	if len(views) != 1 || views[0].Type != "success" {
		t.Fatalf("unexpected views before error: %+v", views)
	}
}

func TestDescribeMessageSessionBind(t *testing.T) {
	testlog.Start(t)
	bind := extension.SessionBind{
		HostKey:   testPublicBlob(t),
		SessionID: []byte{1, 2},
		Signature: []byte{3},
	}
	v := describeMessage(extension.Build(bind), extension.DefaultRegistry())
	if v.Extension == nil || v.Extension.SessionBind == nil {
		t.Fatalf("session bind not decoded: %+v", v)
	}
	if v.Extension.SessionBind.HostKey.Type != ssh.KeyAlgoED25519 {
		t.Fatalf("unexpected host key: %+v", v.Extension.SessionBind.HostKey)
	}
	if v.Extension.Contents != nil {
		t.Fatalf("raw contents kept for decoded payload")
	}
}

func TestDescribeAddIdentityHidesPrivateKey(t *testing.T) {
	testlog.Start(t)
	priv := ed25519.NewKeyFromSeed(bytes.Repeat([]byte{5}, ed25519.SeedSize))
	m := protocol.AddIdentityConstrained{
		Identity:    protocol.AddIdentity{PrivateKey: keys.FromEd25519(priv), Comment: "ci"},
		Constraints: []protocol.KeyConstraint{{Type: protocol.ConstraintConfirm}},
	}
	var out bytes.Buffer
	if err := writeYAML(&out, describeMessage(m, extension.DefaultRegistry())); err != nil {
		t.Fatalf("yaml: %v", err)
	}
	got := out.String()
	if strings.Contains(got, hex.EncodeToString(priv.Seed())) {
		t.Fatalf("private seed leaked:\n%s", got)
	}
	if !strings.Contains(got, "type: ssh-ed25519") || !strings.Contains(got, "comment: ci") {
		t.Fatalf("unexpected output:\n%s", got)
	}
}

func TestConfigCommandWritesTemplate(t *testing.T) {
	testlog.Start(t)
	path := filepath.Join(t.TempDir(), "agentwire.toml")
	var out bytes.Buffer
	if err := run([]string{"config", "--output", path}, nil, &out); err != nil {
		t.Fatalf("config: %v", err)
	}
	if err := run([]string{"config", "--output", path}, nil, &out); err == nil {
		t.Fatalf("expected refusal without --force")
	}
	if err := run([]string{"config", "--output", path, "--force"}, nil, &out); err != nil {
		t.Fatalf("config --force: %v", err)
	}

	out.Reset()
	if err := run([]string{"config", "--print", "--config", path}, nil, &out); err != nil {
		t.Fatalf("config --print: %v", err)
	}
	if !strings.Contains(out.String(), "max_message_bytes = 262144") {
		t.Fatalf("unexpected resolved config:\n%s", out.String())
	}
}

func TestRunUnknownCommand(t *testing.T) {
	testlog.Start(t)
	if err := run([]string{"frobnicate"}, nil, &bytes.Buffer{}); err == nil {
		t.Fatalf("expected unknown command error")
	}
}

func TestLoadConfigAppliesFileLogLevel(t *testing.T) {
	testlog.Start(t)
	prev := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(prev) })

	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	if _, err := loadConfig(""); err != nil {
		t.Fatalf("load defaults: %v", err)
	}
	if zerolog.GlobalLevel() != zerolog.WarnLevel {
		t.Fatalf("defaults overrode env level: %v", zerolog.GlobalLevel())
	}

	path := filepath.Join(t.TempDir(), "agentwire.toml")
	if err := os.WriteFile(path, []byte("log_level = \"debug\"\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	var out bytes.Buffer
	if err := run([]string{"decode", "--hex", "--config", path}, strings.NewReader("06"), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if zerolog.GlobalLevel() != zerolog.DebugLevel {
		t.Fatalf("config log_level not applied: %v", zerolog.GlobalLevel())
	}
	if !strings.Contains(out.String(), "type: success") {
		t.Fatalf("unexpected output:\n%s", out.String())
	}
}
