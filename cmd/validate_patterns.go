package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/currentlycurrently/acidtest/pattern"
)

var validatePatternsCmd = &cobra.Command{
	Use:   "validate-patterns [path]",
	Short: "Validate a JSON pattern bundle file or directory against the schema",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		reports, err := pattern.ValidatePath(args[0])
		if err != nil {
			return err
		}

		failed := false
		for _, r := range reports {
			if len(r.Errors) == 0 {
				fmt.Printf("%s: ok\n", r.Path)
				continue
			}
			failed = true
			fmt.Printf("%s: %d error(s)\n", r.Path, len(r.Errors))
			for _, e := range r.Errors {
				fmt.Printf("  %s\n", e.Error())
			}
		}

		if failed {
			os.Exit(1)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validatePatternsCmd)
}
