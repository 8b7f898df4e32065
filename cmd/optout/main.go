// Command optout renders shell commands and argument vectors from a YAML
// schema and an input map.
package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var schemaPath string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "optout",
	Short: "Render validated command-line arguments",
	Long: `Renders a map of named values into a validated, ordered argument
vector or shell-quoted string, driven by a YAML option schema.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&schemaPath, "schema", "schema.yaml", "path to the schema file")
}
