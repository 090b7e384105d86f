package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mzify/internal/logs"
)

// setupLogger merges --log-level/--log-file over the [log] config section.
func setupLogger(cmd *cobra.Command, cfg *fileConfig) (*zap.Logger, error) {
	root := cmd.Root().PersistentFlags()
	logCfg := cfg.Log

	level, err := root.GetString("log-level")
	if err != nil {
		return nil, err
	}
	if level != "" {
		logCfg.Level = level
	}
	file, err := root.GetString("log-file")
	if err != nil {
		return nil, err
	}
	if file != "" {
		logCfg.File = file
	}
	logCfg.Console = cmd.ErrOrStderr()
	return logs.New("mzify", logCfg), nil
}
