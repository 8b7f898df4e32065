package main

import (
	"fmt"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"github.com/sshaw/optout"
	"github.com/sshaw/optout/schemafile"
	"github.com/sshaw/optout/shellquote"
)

var (
	inputPath string
	asArgv    bool
	quoting   string
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the input map as a shell string or argument vector",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, input, err := load()
		if err != nil {
			return err
		}

		if quoting != "" {
			style, ok := shellquote.ParseStyle(quoting)
			if !ok {
				return fmt.Errorf("unknown quoting style %q", quoting)
			}
			reg.SetQuoting(style)
		}

		if asArgv {
			argv, err := reg.Argv(input)
			if err != nil {
				return err
			}
			for _, token := range argv {
				fmt.Println(token)
			}
			return nil
		}

		line, err := reg.Shell(input)
		if err != nil {
			return err
		}
		fmt.Println(line)
		return nil
	},
}

// load builds the registry from the schema file and reads the input map.
func load() (*optout.Registry, map[string]any, error) {
	reg, err := schemafile.Load(afero.NewOsFs(), schemaPath)
	if err != nil {
		return nil, nil, err
	}

	contents, err := os.ReadFile(inputPath)
	if err != nil {
		return nil, nil, err
	}
	input := make(map[string]any)
	if err := yaml.Unmarshal(contents, &input); err != nil {
		return nil, nil, fmt.Errorf("parsing %s: %v", inputPath, err)
	}
	return reg, input, nil
}

func init() {
	rootCmd.AddCommand(renderCmd)
	renderCmd.Flags().StringVar(&inputPath, "input", "", "path to the YAML input map")
	renderCmd.Flags().BoolVar(&asArgv, "argv", false, "print one unquoted argument per line instead of a shell string")
	renderCmd.Flags().StringVar(&quoting, "quoting", "", "override the schema's quoting style (posix or batch)")
	renderCmd.MarkFlagRequired("input")
}
