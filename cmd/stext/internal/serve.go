package internal

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/goplus/stext/internal/env"
	"github.com/goplus/stext/internal/server"
	"github.com/goplus/stext/recipe"
)

var (
	serveAddr    string
	serveEnvFile string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the stretch API over HTTP",
	Long: `Serve starts the HTTP API. Configuration comes from the environment
(STEXT_ADDR, STEXT_MAX_BODY), optionally loaded from a .env file.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address, overrides "+env.AddrEnv)
	serveCmd.Flags().StringVar(&serveEnvFile, "env-file", "", "Load environment from this file instead of ./.env")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	var files []string
	if serveEnvFile != "" {
		files = append(files, serveEnvFile)
	}
	if err := env.Load(files...); err != nil {
		return err
	}
	cfg, err := env.FromEnv()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Addr = serveAddr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return server.New(recipe.Default(), cfg).ListenAndServe(ctx, cfg.Addr)
}
