package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"KeplerLens/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "keplerlens",
	Short: "Fetch, clean, and plot Kepler light curves",
	Long: `keplerlens plots Kepler light curves.

It generates synthetic curves or downloads long-cadence products from the
Kepler archive, cleans them (NaN removal, median normalisation, sigma
clipping), and writes a scatter plot PNG per run. Runs can be repeated on a
cron schedule and are recorded in a SQLite history.`,
	SilenceUsage: true,
}

var configPath string

// Execute runs the command tree. SIGINT and SIGTERM cancel the command's
// context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.Path(), "Path to the YAML config file")
}
