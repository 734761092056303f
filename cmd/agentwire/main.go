// agentwire inspects SSH agent protocol traffic and talks to a running
// agent over its unix socket.
//
//	agentwire list   [--socket path] [--config file] [--metrics]
//	agentwire decode [--hex] [--framed] [--config file] [file]
//	agentwire config [--output path] [--force] [--print]
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/danmuck/agentwire/internal/config"
	"github.com/danmuck/agentwire/internal/logging"
	"github.com/danmuck/agentwire/internal/observability"
	"github.com/spf13/pflag"
)

const usage = `usage: agentwire <command> [flags]

commands:
  list     list identities held by the agent
  decode   decode a captured agent message or framed stream
  config   write or print the agentwire config
`

func main() {
	observability.InitLogger("agentwire")
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stdout, usage)
		return nil
	}
	switch args[0] {
	case "list":
		return runList(args[1:], stdout)
	case "decode":
		return runDecode(args[1:], stdin, stdout)
	case "config":
		return runConfig(args[1:], stdout)
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return nil
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

// loadConfig resolves the config at path. A config file's log level
// replaces the env-derived one; without a file the env level stands.
func loadConfig(path string) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	if path != "" {
		logging.SetLevel(cfg.LogLevel)
	}
	return cfg, nil
}
