package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/danmuck/agentwire/internal/config"
	"github.com/danmuck/agentwire/internal/observability"
	"github.com/danmuck/agentwire/internal/protocol/session"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
)

func runList(args []string, stdout io.Writer) error {
	var socket, configPath string
	var metrics bool
	flagSet := pflag.NewFlagSet("agentwire list", pflag.ContinueOnError)
	flagSet.StringVar(&socket, "socket", "", "agent socket path (default: config socket or $SSH_AUTH_SOCK)")
	flagSet.StringVar(&configPath, "config", "", "config file path")
	flagSet.BoolVar(&metrics, "metrics", false, "dump protocol metrics to stderr after the request")
	if err := flagSet.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if socket != "" {
		cfg.Socket = socket
	}
	if cfg.Socket == "" {
		return fmt.Errorf("no agent socket: set --socket, socket in config, or %s", config.EnvAuthSock)
	}

	ctx := context.Background()
	conn, err := session.Dial(ctx, cfg.Socket, cfg.Session)
	if err != nil {
		return err
	}
	client := session.NewClient(conn)
	defer client.Close()

	ids, err := client.List(ctx)
	if err != nil {
		return err
	}
	log.Debug().Int("identities", len(ids)).Msg("agentwire list")
	if err := writeYAML(stdout, identityViews(ids)); err != nil {
		return err
	}
	if metrics {
		return observability.WriteMetrics(os.Stderr)
	}
	return nil
}
