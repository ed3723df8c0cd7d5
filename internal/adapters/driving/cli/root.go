package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/dpres-cli/internal/logger"
)

// version is set by SetVersion before Execute.
var version = "dev"

// Global flags.
var (
	flagDB        string
	flagConfigDir string
	flagQuiet     bool
	flagVerbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "dpres",
	Short: "Preservation metadata and fixity checking",
	Long: `dpres records a fingerprint, a format identification and a trail of
PREMIS preservation events for every ingested file, and re-verifies the
fingerprints periodically. It can be run by hand or from cron.

Preservation metadata is kept in a SQLite database. Run 'dpres init' to
create it.`,
	SilenceUsage:      true,
	PersistentPreRunE: setupConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "SQLite database file (overrides database.path)")
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "configuration directory (default ~/.dpres)")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "turn off logging to stderr")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "log every step to stderr")
}

// SetVersion sets the version printed by 'dpres version' and recorded on
// the dpres agent.
func SetVersion(v string) {
	version = v
}

// Execute runs the command line. SIGINT and SIGTERM cancel the run; the
// file in flight is rolled back.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer teardown()

	return rootCmd.ExecuteContext(ctx)
}

// teardown closes the store and flushes the logger.
func teardown() {
	if closeStore != nil {
		if err := closeStore(); err != nil {
			logger.Warn("closing database: %v", err)
		}
		closeStore = nil
	}
	logger.Sync()
	_ = logger.SetFile("")
}
