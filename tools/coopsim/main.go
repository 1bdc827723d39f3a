// Command coopsim boots the kernel's cooperative runtime on a simulated
// processor. Keyboard input is turned into IRQ1 requests and the kernel's
// serial console is mirrored on stdout.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "coopsim",
	Short:         "Run the cooperative kernel core on a simulated CPU",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		mode, _ := cmd.Flags().GetString("color")
		switch mode {
		case "on":
			color.NoColor = false
		case "off":
			color.NoColor = true
		case "auto":
		default:
			return fmt.Errorf("invalid --color value %q (want auto|on|off)", mode)
		}
		return nil
	},
}

func main() {
	rootCmd.Version = version()

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("config", "", "boot configuration file (.toml, .yaml); defaults to the embedded one")
	rootCmd.PersistentFlags().Bool("quiet", false, "mute [OK] boot reports")
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
		stop()
		os.Exit(1)
	}
}
