package main

import (
	"coopos/kernel/conf"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// loadConfig returns the boot configuration selected by the command flags.
func loadConfig(cmd *cobra.Command) (conf.Config, error) {
	var (
		cfg conf.Config
		src = conf.TypeFile
	)

	path, _ := cmd.Flags().GetString("config")
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return conf.Config{}, fmt.Errorf("read config: %w", err)
		}

		parsed, kerr := conf.Parse(data, conf.FormatFromPath(path))
		if kerr != nil {
			return conf.Config{}, fmt.Errorf("parse %s: %w", path, kerr)
		}

		cfg, src = parsed, conf.TypeUserDefined
	}

	cfg = cfg.Resolve(src)
	if quiet, _ := cmd.Flags().GetBool("quiet"); quiet {
		cfg.QuietBoot = true
	}

	return cfg, nil
}
