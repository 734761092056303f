package config

import (
	"fmt"
	"os"
)

func Template() string {
	return agentTemplate
}

func WriteTemplate(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(agentTemplate), 0o600)
}

const agentTemplate = `# agentwire configuration

# Agent socket. Defaults to $SSH_AUTH_SOCK when omitted.
# socket = "/run/user/1000/ssh-agent.sock"

log_level = "info"

# Largest frame accepted or written, in bytes.
max_message_bytes = 262144

dial_timeout = "2s"
dial_attempts = 3
request_timeout = "10s"
`
