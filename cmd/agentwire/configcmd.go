package main

import (
	"fmt"
	"io"

	"github.com/danmuck/agentwire/internal/config"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
)

func runConfig(args []string, stdout io.Writer) error {
	var output, input string
	var force, printResolved bool
	flagSet := pflag.NewFlagSet("agentwire config", pflag.ContinueOnError)
	flagSet.StringVarP(&output, "output", "o", "agentwire.toml", "output path for the config template")
	flagSet.BoolVar(&force, "force", false, "overwrite an existing config file")
	flagSet.BoolVar(&printResolved, "print", false, "print the resolved config instead of writing a template")
	flagSet.StringVar(&input, "config", "", "config file to resolve with --print")
	if err := flagSet.Parse(args); err != nil {
		return err
	}

	if printResolved {
		cfg, err := loadConfig(input)
		if err != nil {
			return err
		}
		return config.Encode(stdout, cfg)
	}
	if err := config.WriteTemplate(output, force); err != nil {
		return err
	}
	log.Info().Str("path", output).Msg("wrote config template")
	fmt.Fprintf(stdout, "wrote %s\n", output)
	return nil
}
