package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/dpres-cli/internal/core/domain"
	"github.com/custodia-labs/dpres-cli/internal/core/ports/driving"
)

var fixityCmd = &cobra.Command{
	Use:   "fixity",
	Short: "Perform a fixity check",
	Long: `Re-computes the digest of every ingested file whose last ingestion or
fixity check is older than the interval, stalest first, and records a
fixity check event with the outcome OK, Failed or Missing.

When a Broadcast WAVE file fails, its embedded audio MD5 is verified as
well, so that edited metadata can be told apart from damaged audio.

Exits non-zero when any file failed or is missing.`,
	RunE: runFixity,
}

var fixityAge int

func init() {
	fixityCmd.Flags().IntVar(&fixityAge, "age", -1,
		"skip files checked more recently than this many days (default fixity.interval_days)")
	rootCmd.AddCommand(fixityCmd)
}

func runFixity(cmd *cobra.Command, _ []string) error {
	if err := setupStore(false); err != nil {
		return err
	}

	days := settings.FixityIntervalDays
	if fixityAge >= 0 {
		days = fixityAge
	}

	report, err := fixityService.Run(cmd.Context(), driving.FixityRequest{
		Interval: time.Duration(days) * 24 * time.Hour,
		Progress: func(res domain.FixityResult) {
			cmd.Printf("%s %s\n", outcomeBadge(res.Outcome), res.ContentLocation)
		},
	})

	if report != nil {
		cmd.Printf("\n%d checked: %d OK, %d failed, %d missing\n",
			len(report.Results),
			report.Count(domain.OutcomeOK),
			report.Count(domain.OutcomeFailed),
			report.Count(domain.OutcomeMissing))
	}
	if err != nil {
		return fmt.Errorf("fixity run stopped: %w", err)
	}

	if bad := report.Count(domain.OutcomeFailed) + report.Count(domain.OutcomeMissing); bad > 0 {
		return fmt.Errorf("%d files failed fixity", bad)
	}
	return nil
}
