package internal

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/goplus/stext/recipe"
)

// addSettingFlags registers the repeated -s key=value flag on cmd.
func addSettingFlags(cmd *cobra.Command, args *[]string) {
	cmd.Flags().StringArrayVarP(args, "setting", "s", nil, "Override a setting as key=value (os, compiler, build_type, arch)")
}

// parseSettings applies key=value overrides on top of the host settings.
// Only settings the recipe declares are accepted.
func parseSettings(r *recipe.Recipe, args []string) (recipe.Settings, error) {
	names := r.SettingNames()
	overrides := make(recipe.Settings, len(args))
	for _, arg := range args {
		key, value, err := recipe.ParseSetting(arg)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(names, key) {
			return nil, fmt.Errorf("unknown setting %q, want one of %v", key, names)
		}
		overrides[key] = value
	}
	s := recipe.HostSettings().Merge(overrides)
	if err := s.Validate(names...); err != nil {
		return nil, err
	}
	return s, nil
}
