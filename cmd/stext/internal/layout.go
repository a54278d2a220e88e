package internal

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goplus/stext/recipe"
)

var (
	layoutSettings []string
	layoutMatrix   []string
	layoutAll      bool
)

var layoutCmd = &cobra.Command{
	Use:   "layout",
	Short: "Print the generators folder for a configuration",
	Long: `Layout prints the folder the generators write into for the given settings.
With --all it prints one line per combination of the -m matrix values.`,
	Args: cobra.NoArgs,
	RunE: runLayout,
}

func init() {
	addSettingFlags(layoutCmd, &layoutSettings)
	layoutCmd.Flags().StringArrayVarP(&layoutMatrix, "matrix", "m", nil, "Matrix axis as key=v1,v2 (with --all)")
	layoutCmd.Flags().BoolVar(&layoutAll, "all", false, "Print the layout of every matrix combination")
	rootCmd.AddCommand(layoutCmd)
}

func runLayout(cmd *cobra.Command, args []string) error {
	r := recipe.Default()
	s, err := parseSettings(r, layoutSettings)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if !layoutAll {
		fmt.Fprintln(out, r.Layout(s).Generators)
		return nil
	}

	m, err := recipe.ParseMatrix(layoutMatrix)
	if err != nil {
		return err
	}
	for _, c := range m.Combinations() {
		cs := s.Merge(c)
		fmt.Fprintf(out, "%s\t%s\n", cs, r.Layout(cs).Generators)
	}
	return nil
}
