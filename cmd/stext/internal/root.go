package internal

import (
	"flag"

	"github.com/golang/glog"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "stext",
	Short: "stext builds and runs the audio stretch extension",
	Long: `stext evaluates the extension recipe, generates CMake toolchain and
dependency files for it, and stretches audio files from the command line
or over HTTP.`,
	SilenceUsage: true,
}

func init() {
	// glog registers its flags on the standard flag set.
	flag.Set("logtostderr", "true")
	rootCmd.PersistentFlags().AddGoFlagSet(flag.CommandLine)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	defer glog.Flush()
	if err := rootCmd.Execute(); err != nil {
		glog.Exit(err)
	}
}
