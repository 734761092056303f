package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/danmuck/agentwire/internal/extension"
	"github.com/danmuck/agentwire/internal/protocol"
	"github.com/danmuck/agentwire/internal/protocol/frame"
	"github.com/spf13/pflag"
)

func runDecode(args []string, stdin io.Reader, stdout io.Writer) error {
	var hexInput, framed bool
	var configPath string
	flagSet := pflag.NewFlagSet("agentwire decode", pflag.ContinueOnError)
	flagSet.BoolVar(&hexInput, "hex", false, "input is hex text (whitespace ignored)")
	flagSet.BoolVar(&framed, "framed", false, "input is a stream of length-framed messages")
	flagSet.StringVar(&configPath, "config", "", "config file path (log level, frame limit)")
	if err := flagSet.Parse(args); err != nil {
		return err
	}
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	var raw []byte
	switch flagSet.NArg() {
	case 0:
		raw, err = io.ReadAll(stdin)
	case 1:
		raw, err = os.ReadFile(flagSet.Arg(0))
	default:
		return fmt.Errorf("decode takes at most one file argument")
	}
	if err != nil {
		return err
	}
	if hexInput {
		raw, err = hex.DecodeString(strings.Join(strings.Fields(string(raw)), ""))
		if err != nil {
			return fmt.Errorf("decode hex input: %w", err)
		}
	}

	views, err := decodeMessages(raw, framed, cfg.Session.Limits, extension.DefaultRegistry())
	if err != nil {
		return err
	}
	if len(views) == 1 && !framed {
		return writeYAML(stdout, views[0])
	}
	return writeYAML(stdout, views)
}

// decodeMessages decodes raw as one message, or as a sequence of framed
// messages. A framed stream stops at the first bad frame.
func decodeMessages(raw []byte, framed bool, limits frame.Limits, reg *extension.Registry) ([]messageView, error) {
	if !framed {
		m, err := protocol.Decode(raw)
		if err != nil {
			return nil, err
		}
		return []messageView{describeMessage(m, reg)}, nil
	}

	var views []messageView
	rest := raw
	for index := 0; len(rest) > 0; index++ {
		payload, next, err := frame.Next(rest, limits)
		if err != nil {
			return views, fmt.Errorf("frame %d: %w", index, err)
		}
		m, err := protocol.Decode(payload)
		if err != nil {
			return views, fmt.Errorf("frame %d: %w", index, err)
		}
		views = append(views, describeMessage(m, reg))
		rest = next
	}
	if len(views) == 0 {
		return nil, fmt.Errorf("empty input: %w", frame.ErrShortHeader)
	}
	return views, nil
}

// hexBytes renders binary fields compactly in YAML output.
type hexBytes []byte

func (h hexBytes) MarshalYAML() (any, error) {
	return hex.EncodeToString(h), nil
}
