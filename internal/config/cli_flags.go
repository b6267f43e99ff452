package config

import "github.com/spf13/cobra"

// RegisterFlags registers common CLI flags on the provided root command
func RegisterFlags(cmd *cobra.Command) {
	if cmd == nil {
		return
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().Bool("json-log", false, "Emit logs as JSON")
	cmd.PersistentFlags().Bool("headless", true, "Run the browser headless")
	cmd.PersistentFlags().String("interval", DefaultCheckInterval.String(), "Interval between crawl cycles")
	cmd.PersistentFlags().String("sources", "", "Comma-separated source names to enable (default: per-source flags)")
	cmd.PersistentFlags().String("roster", "", "Path to a YAML roster overlay file")
	cmd.PersistentFlags().String("output", DefaultOutputDir, "Directory for JSON output files")
	cmd.PersistentFlags().String("db", DefaultDBPath, "Path to the SQLite record store")
	cmd.PersistentFlags().String("proxy", "", "HTTP/SOCKS5 proxy for the browser")
	cmd.PersistentFlags().String("user-agent", "", "Custom user agent string")
}
