package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// onCmd represents the on command
var onCmd = &cobra.Command{
	Use:   "on [device-address]",
	Short: "Turn the switch on",
	Long: fmt.Sprintf(`Turns the Switchmate on.

Examples:
  # Turn on by address
  switchmate on %s

  # Switch wired backwards
  switchmate on %s --flip

  # Use a config file instead of flags
  switchmate on --config switchmate.yaml

%s`, exampleDeviceAddress, exampleDeviceAddress, deviceAddressNote),
	Args: cobra.MaximumNArgs(1),
	RunE: runOn,
}

func init() {
	registerDeviceFlags(onCmd)
}

func runOn(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd, args)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	sess := newSession(cfg, logger)
	defer func() { _ = sess.Disconnect(ctx) }()

	if err := sess.TurnOn(ctx); err != nil {
		return fmt.Errorf("turn on %s: %w", cfg.Name, err)
	}

	fmt.Printf("%s (%s) is now %s\n", cfg.Name, sess.UniqueID(), stateLabel(true))
	return nil
}
