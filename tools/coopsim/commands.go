package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Boot the kernel and type into it (Ctrl-C or Ctrl-D to power off)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		console := newConsole()
		return interactive(cmd.Context(), newMachine(cfg, console), console, nil)
	},
}

var recordCmd = &cobra.Command{
	Use:   "record <trace-file>",
	Short: "Like run, but also save the typed scancodes to a trace file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		console := newConsole()
		trace := newTrace()
		if err := interactive(cmd.Context(), newMachine(cfg, console), console, trace); err != nil {
			return err
		}
		return writeTrace(args[0], trace)
	},
}

var replayCmd = &cobra.Command{
	Use:   "replay <trace-file>",
	Short: "Boot the kernel and feed it a recorded keyboard session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		trace, err := readTrace(args[0])
		if err != nil {
			return err
		}

		speed, _ := cmd.Flags().GetFloat64("speed")
		console := newConsole()
		return replay(cmd.Context(), newMachine(cfg, console), console, trace, speed)
	},
}

func init() {
	replayCmd.Flags().Float64("speed", 1, "replay speed factor; 0 replays without delays")
}

// newConsole returns the writer that mirrors the kernel's serial console on
// stdout. Carriage returns are only kept when stdout is a terminal.
func newConsole() *consoleWriter {
	return newConsoleWriter(os.Stdout, !term.IsTerminal(int(os.Stdout.Fd())))
}
