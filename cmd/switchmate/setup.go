package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/srg/switchmate/internal/goble"
	"github.com/srg/switchmate/pkg/config"
	"github.com/srg/switchmate/pkg/gate"
	"github.com/srg/switchmate/pkg/switchmate"
)

const exampleDeviceAddress = "AA:BB:CC:DD:EE:FF"

const deviceAddressNote = `Note: on macOS the device address is the CoreBluetooth UUID reported for
the peripheral, not its raw MAC address.`

// connectionGate serializes every BLE transport operation in the process.
// All sessions share this one handle; the radio stack supports a single
// in-flight GATT operation at a time.
var connectionGate = gate.New()

// registerDeviceFlags adds the flags shared by every device command.
func registerDeviceFlags(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "Path to a YAML config file")
	cmd.Flags().String("name", "", "Display name of the switch")
	cmd.Flags().Bool("flip", false, "Invert the on/off mapping for switches wired backwards")
	cmd.Flags().Duration("timeout", config.DefaultConnectTimeout, "Connect timeout")
}

// resolveConfig merges the config file, command-line flags and the
// positional device address into one validated Config. Flags win over the
// file; the positional address wins over both.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.New()
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if len(args) > 0 {
		cfg.Address = args[0]
	}
	if cmd.Flags().Changed("name") {
		cfg.Name, _ = cmd.Flags().GetString("name")
	}
	if cmd.Flags().Changed("flip") {
		cfg.FlipOnOff, _ = cmd.Flags().GetBool("flip")
	}
	if cmd.Flags().Changed("timeout") {
		timeout, _ := cmd.Flags().GetDuration("timeout")
		cfg.ConnectTimeout = config.Duration(timeout)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newSession wires the go-ble transport, the process-wide gate and a
// device session for one command invocation.
func newSession(cfg *config.Config, logger *logrus.Logger) *switchmate.Session {
	tr := goble.NewTransport(logger, cfg.ConnectTimeout.Std())
	return switchmate.NewSession(cfg.Address, cfg.FlipOnOff, tr, connectionGate, logger)
}

// setup resolves the config and logger for a device command and silences
// usage output for the runtime errors that follow.
func setup(cmd *cobra.Command, args []string) (*config.Config, *logrus.Logger, error) {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return nil, nil, err
	}
	logger, err := configureLogger(cmd, cfg)
	if err != nil {
		return nil, nil, err
	}

	// All arguments validated - don't show usage on runtime errors
	cmd.SilenceUsage = true
	return cfg, logger, nil
}

// stateLabel renders the logical switch state, coloured on terminals.
func stateLabel(on bool) string {
	if on {
		return color.GreenString("ON")
	}
	return color.RedString("OFF")
}

// printState writes one state line, as produced by state and watch.
func printState(cfg *config.Config, on, available bool) {
	label := stateLabel(on)
	if !available {
		label = color.YellowString("UNAVAILABLE")
	}
	fmt.Fprintf(os.Stdout, "%s\t%s\t%s\n", time.Now().Format(time.RFC3339), cfg.Name, label)
}
