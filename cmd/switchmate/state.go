package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// stateCmd represents the state command
var stateCmd = &cobra.Command{
	Use:   "state [device-address]",
	Short: "Read the current on/off state",
	Long: fmt.Sprintf(`Reads the current state of the Switchmate and prints one state line.

Examples:
  switchmate state %s

  # Inverted wiring
  switchmate state %s --flip

%s`, exampleDeviceAddress, exampleDeviceAddress, deviceAddressNote),
	Args: cobra.MaximumNArgs(1),
	RunE: runState,
}

func init() {
	registerDeviceFlags(stateCmd)
}

func runState(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd, args)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	sess := newSession(cfg, logger)
	defer func() { _ = sess.Disconnect(ctx) }()

	if err := sess.Update(ctx); err != nil {
		return fmt.Errorf("read state of %s: %w", cfg.Name, err)
	}

	printState(cfg, sess.IsOn(), sess.IsAvailable())
	return nil
}
