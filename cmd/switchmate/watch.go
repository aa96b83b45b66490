package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/srg/switchmate/pkg/config"
	"github.com/srg/switchmate/pkg/switchmate"
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch [device-address]",
	Short: "Poll the switch state on a schedule",
	Long: fmt.Sprintf(`Polls the Switchmate on a fixed schedule and prints one state line per
refresh, until interrupted. A switch that stops answering is reported as
UNAVAILABLE and polling continues.

Examples:
  # Poll every 10 seconds (the default)
  switchmate watch %s

  # Poll every 2 seconds
  switchmate watch %s --interval 2s

%s`, exampleDeviceAddress, exampleDeviceAddress, deviceAddressNote),
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	registerDeviceFlags(watchCmd)
	watchCmd.Flags().Duration("interval", switchmate.DefaultPollInterval, "Poll interval")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd, args)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("interval") {
		interval, _ := cmd.Flags().GetDuration("interval")
		if interval <= 0 {
			return fmt.Errorf("poll interval must be positive, got %s", interval)
		}
		cfg.PollInterval = config.Duration(interval)
	}

	ctx := cmd.Context()
	sess := newSession(cfg, logger)
	// Teardown runs after ctx is cancelled; give it a fresh context.
	defer func() { _ = sess.Disconnect(context.Background()) }()

	poller := switchmate.NewPoller(sess, cfg.PollInterval.Std(), logger)
	poller.OnRefresh = func(on, available bool) {
		printState(cfg, on, available)
	}

	if err := poller.Run(ctx); !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
