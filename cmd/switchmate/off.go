package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// offCmd represents the off command
var offCmd = &cobra.Command{
	Use:   "off [device-address]",
	Short: "Turn the switch off",
	Long: fmt.Sprintf(`Turns the Switchmate off.

Examples:
  # Turn off by address
  switchmate off %s

  # Switch wired backwards
  switchmate off %s --flip

%s`, exampleDeviceAddress, exampleDeviceAddress, deviceAddressNote),
	Args: cobra.MaximumNArgs(1),
	RunE: runOff,
}

func init() {
	registerDeviceFlags(offCmd)
}

func runOff(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd, args)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	sess := newSession(cfg, logger)
	defer func() { _ = sess.Disconnect(ctx) }()

	if err := sess.TurnOff(ctx); err != nil {
		return fmt.Errorf("turn off %s: %w", cfg.Name, err)
	}

	fmt.Printf("%s (%s) is now %s\n", cfg.Name, sess.UniqueID(), stateLabel(false))
	return nil
}
