package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/newswatch/scout/internal/ui"
)

// sourcesCmd prints the source roster with enablement and feed coverage.
var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List configured sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := GetApp()

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", ui.Bold("NAME"), ui.Bold("STATE"), ui.Bold("FEEDS"), ui.Bold("LISTING"))
		for _, adapter := range a.Registry.All() {
			state := ui.Success("enabled")
			if !adapter.Enabled {
				state = ui.Dim("disabled")
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", adapter.Name, state, len(adapter.FeedURLs), adapter.ListingURL)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}
