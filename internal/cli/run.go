package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// runCmd starts the daemon: crawl cycles on the configured interval until
// interrupted.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the crawl daemon",
	Long: `Run starts the scheduler and blocks. Every interval it crawls the
enabled sources sequentially, persisting what it finds. SIGINT or SIGTERM
triggers a graceful shutdown: the source being crawled finishes, the rest
of the cycle is skipped, and the browser is torn down.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := GetApp()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		sched := a.Scheduler()
		if err := sched.Run(ctx); err != nil {
			log.Error().Err(err).Msg("daemon failed to start")
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
