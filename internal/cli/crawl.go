package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/newswatch/scout/internal/sources"
	"github.com/newswatch/scout/internal/ui"
)

// crawlCmd runs a single crawl pass outside the scheduler, for one source
// or the whole enabled roster.
var crawlCmd = &cobra.Command{
	Use:   "crawl [source|all]",
	Short: "Crawl once and exit",
	Long: `Crawl performs one pass over the named source (or "all" for the
enabled roster) without starting the daemon. Records are persisted the same
way the daemon persists them.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := GetApp()

		var roster []*sources.Adapter
		if args[0] == "all" {
			roster = a.Registry.Enabled()
		} else {
			adapter, ok := a.Registry.Get(args[0])
			if !ok {
				return fmt.Errorf("unknown source %q", args[0])
			}
			roster = []*sources.Adapter{adapter}
		}
		if len(roster) == 0 {
			return fmt.Errorf("no enabled sources to crawl")
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		bar := progressbar.NewOptions(len(roster),
			progressbar.OptionSetDescription("crawling"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)

		total, failures := 0, 0
		for _, adapter := range roster {
			if ctx.Err() != nil {
				break
			}
			res, err := a.Pipeline.CrawlSource(ctx, nil, adapter)
			_ = bar.Add(1)
			if err != nil {
				failures++
				fmt.Fprintf(os.Stderr, "%s %s: %v\n", ui.Error("FAIL"), adapter.Name, err)
				continue
			}
			total += len(res.Records)
			tag := ui.Success("ok")
			if res.UsedFallback {
				tag = ui.Warn("fallback")
			}
			fmt.Fprintf(os.Stderr, "%s %s: %d records\n", tag, adapter.Name, len(res.Records))
		}
		_ = bar.Finish()

		fmt.Printf("%s %d records from %d sources (%d failed)\n",
			ui.Bold("done:"), total, len(roster), failures)
		if failures == len(roster) {
			return fmt.Errorf("every source failed")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(crawlCmd)
}
