package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the input map against the schema without rendering",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, input, err := load()
		if err != nil {
			return err
		}
		if _, err := reg.Argv(input); err != nil {
			return err
		}

		color.New(color.FgGreen).Fprintln(os.Stdout, "OK")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringVar(&inputPath, "input", "", "path to the YAML input map")
	checkCmd.MarkFlagRequired("input")
}
