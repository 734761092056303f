package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/danmuck/agentwire/internal/protocol/session"
	"github.com/danmuck/agentwire/internal/testutil/testlog"
	"github.com/google/go-cmp/cmp"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "agentwire.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadOverlaysDefinedKeys(t *testing.T) {
	testlog.Start(t)
	t.Setenv(EnvAuthSock, "/tmp/env.sock")
	path := writeConfig(t, `
socket = "/tmp/file.sock"
max_message_bytes = 1024
request_timeout = "3s"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := Default()
	want.Socket = "/tmp/file.sock"
	want.Session.Limits.MaxMessageBytes = 1024
	want.Session.RequestTimeout = 3 * time.Second
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadEmptyPathUsesEnvSocket(t *testing.T) {
	testlog.Start(t)
	t.Setenv(EnvAuthSock, " /tmp/env.sock ")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Socket != "/tmp/env.sock" {
		t.Fatalf("unexpected socket: %q", cfg.Socket)
	}
	if cfg.Session.Limits != session.DefaultConfig().Limits {
		t.Fatalf("unexpected limits: %+v", cfg.Session.Limits)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	testlog.Start(t)
	cases := map[string]string{
		"unknown key":   `sockett = "x"`,
		"bad duration":  `dial_timeout = "soon"`,
		"zero limit":    `max_message_bytes = 0`,
		"bad log level": `log_level = "loud"`,
		"no attempts":   `dial_attempts = 0`,
	}
	for name, body := range cases {
		if _, err := Load(writeConfig(t, body)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestTemplateLoadsAndRoundTrips(t *testing.T) {
	testlog.Start(t)
	t.Setenv(EnvAuthSock, "")
	path := filepath.Join(t.TempDir(), "agentwire.toml")
	if err := WriteTemplate(path, false); err != nil {
		t.Fatalf("write template: %v", err)
	}
	if err := WriteTemplate(path, false); err == nil {
		t.Fatalf("expected refusal to overwrite")
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load template: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Fatalf("template drifted from defaults (-want +got):\n%s", diff)
	}

	var buf bytes.Buffer
	if err := Encode(&buf, cfg); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !strings.Contains(buf.String(), `request_timeout = "10s"`) {
		t.Fatalf("unexpected encoding:\n%s", buf.String())
	}
	again, err := Load(writeConfig(t, buf.String()))
	if err != nil {
		t.Fatalf("reload encoded: %v", err)
	}
	if diff := cmp.Diff(cfg, again); diff != "" {
		t.Fatalf("encode round trip (-want +got):\n%s", diff)
	}
}
