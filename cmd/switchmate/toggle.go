package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// toggleCmd represents the toggle command
var toggleCmd = &cobra.Command{
	Use:   "toggle [device-address]",
	Short: "Toggle the switch based on its current state",
	Long: fmt.Sprintf(`Reads the current state of the Switchmate and switches it to the opposite.

Examples:
  switchmate toggle %s

%s`, exampleDeviceAddress, deviceAddressNote),
	Args: cobra.MaximumNArgs(1),
	RunE: runToggle,
}

func init() {
	registerDeviceFlags(toggleCmd)
}

func runToggle(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd, args)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	sess := newSession(cfg, logger)
	defer func() { _ = sess.Disconnect(ctx) }()

	if err := sess.Toggle(ctx); err != nil {
		return fmt.Errorf("toggle %s: %w", cfg.Name, err)
	}
	// The cached state still holds the pre-toggle reading.
	wasOn := sess.IsOn()

	fmt.Printf("%s (%s) was %s, now %s\n", cfg.Name, sess.UniqueID(), stateLabel(wasOn), stateLabel(!wasOn))
	return nil
}
