package internal

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang/glog"
	"github.com/spf13/cobra"

	"github.com/goplus/stext/internal/env"
	"github.com/goplus/stext/mod/versions"
	"github.com/goplus/stext/pkgs/buildsys"
	"github.com/goplus/stext/pkgs/buildsys/cmake"
	"github.com/goplus/stext/recipe"
)

var (
	installSettings  []string
	installDepRoots  []string
	installGenerator string
)

var installCmd = &cobra.Command{
	Use:   "install [dir]",
	Short: "Generate build files for the recipe",
	Long: `Install evaluates the recipe for the given settings, runs its generators into
the generators folder of the project in dir (default ".") and records the
requirements in the lock file.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInstall,
}

func init() {
	addInstallFlags(installCmd, &installSettings, &installDepRoots, &installGenerator)
	rootCmd.AddCommand(installCmd)
}

func addInstallFlags(cmd *cobra.Command, settings, depRoots *[]string, generator *string) {
	addSettingFlags(cmd, settings)
	cmd.Flags().StringArrayVar(depRoots, "dep-root", nil, "Install prefix of a requirement as name=dir")
	cmd.Flags().StringVarP(generator, "generator", "G", "", "CMake generator recorded in the presets")
}

// installResult is what a finished install leaves for a build.
type installResult struct {
	root     string
	settings recipe.Settings
	folders  recipe.Folders
	roots    map[string]string
}

func runInstall(cmd *cobra.Command, args []string) error {
	res, err := install(projectDir(args), installSettings, installDepRoots, installGenerator)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), filepath.Join(res.root, res.folders.Generators))
	return nil
}

func projectDir(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}

func install(root string, settingArgs, depRootArgs []string, generator string) (*installResult, error) {
	r := recipe.Default()
	s, err := parseSettings(r, settingArgs)
	if err != nil {
		return nil, err
	}
	roots, err := dependencyRoots(r, depRootArgs)
	if err != nil {
		return nil, err
	}
	folders := r.Layout(s)
	req := &buildsys.GenerateRequest{
		Settings: s,
		Folders:  folders,
		Requires: r.Requirements(),
		Roots:    roots,
	}
	files, err := cmake.Generate(root, r.GeneratorNames(), req, cmake.Options{CMakeGenerator: generator})
	if err != nil {
		return nil, fmt.Errorf("failed to generate: %w", err)
	}
	for _, f := range files {
		glog.V(1).Infof("wrote %s", f)
	}

	lockFile := filepath.Join(root, versions.FileName)
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	lock, err := versions.Load(lockFile, filepath.Base(abs))
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", lockFile, err)
	}
	lock.Set(s.String(), req.Requires)
	if err := lock.WriteFile(lockFile); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", lockFile, err)
	}
	glog.Infof("installed %s for %s", folders.Generators, s)
	return &installResult{root: root, settings: s, folders: folders, roots: roots}, nil
}

// dependencyRoots resolves the install prefix of every requirement from
// name=dir arguments, falling back to <deps dir>/<name>/<version> when it
// exists.
func dependencyRoots(r *recipe.Recipe, args []string) (map[string]string, error) {
	roots := make(map[string]string)
	for _, arg := range args {
		name, dir, err := recipe.ParseSetting(arg)
		if err != nil || dir == "" {
			return nil, fmt.Errorf("invalid --dep-root %q, want name=dir", arg)
		}
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, err
		}
		roots[name] = abs
	}
	depsDir, err := env.DepsDir()
	if err != nil {
		glog.Warningf("no dependency cache: %v", err)
		return roots, nil
	}
	for _, v := range r.Requirements() {
		if _, ok := roots[v.Path]; ok {
			continue
		}
		dir := filepath.Join(depsDir, v.Path, v.Version)
		if fi, err := os.Stat(dir); err == nil && fi.IsDir() {
			roots[v.Path] = dir
		}
	}
	return roots, nil
}
