package internal

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goplus/stext/recipe"
)

var depsJSON bool

var depsCmd = &cobra.Command{
	Use:   "deps",
	Short: "List the pinned requirements of the recipe",
	Args:  cobra.NoArgs,
	RunE:  runDeps,
}

func init() {
	depsCmd.Flags().BoolVar(&depsJSON, "json", false, "Print requirements as JSON")
	rootCmd.AddCommand(depsCmd)
}

func runDeps(cmd *cobra.Command, args []string) error {
	reqs := recipe.Default().Requirements()
	out := cmd.OutOrStdout()
	if depsJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "\t")
		return enc.Encode(reqs)
	}
	for _, v := range reqs {
		fmt.Fprintln(out, v)
	}
	return nil
}
