package main

import (
	"coopos/kernel/conf"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	versionMajorColor = color.New(color.FgYellow, color.Bold)
	versionMinorColor = color.New(color.FgGreen, color.Bold)
	versionPatchColor = color.New(color.FgBlue, color.Bold)
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of the simulated kernel",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		cfg := conf.Embedded()
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", cfg.ProjectName, version())
	},
}

// version returns the embedded project version with each component
// colorized.
func version() string {
	parts := strings.SplitN(conf.Embedded().ProjectVersion, ".", 3)
	colors := []*color.Color{versionMajorColor, versionMinorColor, versionPatchColor}
	for i := range parts {
		parts[i] = colors[i].Sprint(parts[i])
	}
	return strings.Join(parts, ".")
}
