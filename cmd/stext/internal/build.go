package internal

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goplus/stext/pkgs/buildsys/cmake"
)

var (
	buildSettings  []string
	buildDepRoots  []string
	buildGenerator string
	buildPrefix    string
)

var buildCmd = &cobra.Command{
	Use:   "build [dir]",
	Short: "Install, then configure and build the project with CMake",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runBuild,
}

func init() {
	addInstallFlags(buildCmd, &buildSettings, &buildDepRoots, &buildGenerator)
	buildCmd.Flags().StringVar(&buildPrefix, "prefix", "", "Install the build into this prefix")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	res, err := install(projectDir(args), buildSettings, buildDepRoots, buildGenerator)
	if err != nil {
		return err
	}
	c := cmake.FromLayout(res.root, res.settings, res.folders)
	c.Stdout = cmd.OutOrStdout()
	c.Stderr = cmd.ErrOrStderr()
	if buildGenerator != "" {
		c.Generator(buildGenerator)
	}
	for _, root := range res.roots {
		c.Use(root)
	}
	if buildPrefix != "" {
		c.InstallDir(buildPrefix)
	}
	if err := c.Configure(); err != nil {
		return fmt.Errorf("failed to configure: %w", err)
	}
	if err := c.Build(); err != nil {
		return fmt.Errorf("failed to build: %w", err)
	}
	if buildPrefix != "" {
		if err := c.Install(); err != nil {
			return fmt.Errorf("failed to install: %w", err)
		}
	}
	return nil
}
