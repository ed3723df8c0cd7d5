package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/dpres-cli/internal/core/domain"
	"github.com/custodia-labs/dpres-cli/internal/core/ports/driving"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [paths...]",
	Short: "Ingest files for preservation",
	Long: `Walks the given files and directories and registers every regular
file: its SHA-256 digest, its PRONOM format and the preservation events
that produced them. Symbolic links are skipped. Files already registered
are reported as duplicates and left untouched.

Each file is committed on its own, so an interrupted run keeps every file
finished before the interruption.`,
	RunE: runIngest,
}

var (
	ingestNote      string
	ingestDryRun    bool
	ingestStdin     bool
	ingestKeepGoing bool
)

func init() {
	ingestCmd.Flags().StringVar(&ingestNote, "note", "", "optional description of the ingest")
	ingestCmd.Flags().BoolVar(&ingestDryRun, "dry-run", false, "list files without ingesting them")
	ingestCmd.Flags().BoolVar(&ingestStdin, "stdin", false, "read paths from standard input, one per line")
	ingestCmd.Flags().BoolVar(&ingestKeepGoing, "keep-going", false,
		"record unreadable files and tool failures and carry on")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	roots := args
	if ingestStdin {
		fromStdin, err := readPaths(cmd)
		if err != nil {
			return err
		}
		roots = append(roots, fromStdin...)
	}
	if len(roots) == 0 {
		return errors.New("no paths given")
	}

	var service driving.IngestService
	if ingestDryRun {
		service = dryRunService()
	} else {
		if err := setupStore(false); err != nil {
			return err
		}
		service = ingestService
	}

	report, err := service.Run(cmd.Context(), driving.IngestRequest{
		Roots:     roots,
		Note:      ingestNote,
		DryRun:    ingestDryRun,
		KeepGoing: ingestKeepGoing,
		Progress: func(res domain.FileResult) {
			printFileResult(cmd, res)
		},
	})

	if report != nil && !ingestDryRun {
		cmd.Printf("\n%d ingested, %d duplicates, %d failed\n",
			report.Count(domain.FileIngested),
			report.Count(domain.FileDuplicate),
			report.Count(domain.FileFailed))
	}
	if err != nil {
		return fmt.Errorf("ingest stopped: %w", err)
	}
	return nil
}

func printFileResult(cmd *cobra.Command, res domain.FileResult) {
	switch res.Status {
	case domain.FileListed:
		cmd.Println(res.Path)
	case domain.FileFailed:
		cmd.Printf("%s %s: %v\n", statusBadge(res.Status), res.Path, res.Err)
	default:
		cmd.Printf("%s %s\n", statusBadge(res.Status), res.Path)
	}
}

// readPaths reads one path per line from the command's input.
func readPaths(cmd *cobra.Command) ([]string, error) {
	var paths []string
	scanner := bufio.NewScanner(cmd.InOrStdin())
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			paths = append(paths, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading paths from stdin: %w", err)
	}
	return paths, nil
}
