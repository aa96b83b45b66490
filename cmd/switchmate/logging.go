package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/srg/switchmate/pkg/config"
)

// configureLogger creates the logger for a command invocation by way of
// the config factory. The --log-level flag takes precedence over the
// config file's level.
func configureLogger(cmd *cobra.Command, cfg *config.Config) (*logrus.Logger, error) {
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.LogLevel = level
	}
	return cfg.NewLogger()
}
