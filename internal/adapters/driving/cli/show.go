package cli

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/dpres-cli/internal/core/domain"
)

const timeFormat = "2006-01-02 15:04:05Z"

var showCmd = &cobra.Command{
	Use:   "show <object-id|path>",
	Short: "Show the preservation record of an object",
	Long: `Prints an object with its events, significant properties and related
objects. The object is looked up by numeric ID, or by the path it was
ingested from.`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	if err := setupStore(false); err != nil {
		return err
	}

	var (
		record *domain.ObjectRecord
		err    error
	)
	if id, convErr := strconv.ParseInt(args[0], 10, 64); convErr == nil {
		record, err = objectService.Get(cmd.Context(), id)
	} else {
		record, err = objectService.GetByLocation(cmd.Context(), resolvePath(args[0]))
	}
	if err != nil {
		return err
	}

	printRecord(cmd, record)
	return nil
}

// resolvePath turns path into the absolute, link-free form ingest records.
func resolvePath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return abs
}

func printRecord(cmd *cobra.Command, r *domain.ObjectRecord) {
	o := r.Object

	cmd.Println(headingStyle.Render(fmt.Sprintf("Object %d", o.ObjectID)))
	cmd.Printf("  Identifier: %s %s\n", o.IdentifierType, o.Identifier)
	cmd.Printf("  Category:   %s\n", o.Category)
	if o.ContentLocation != "" {
		cmd.Printf("  Location:   %s (%s)\n", o.ContentLocation, o.ContentLocationType)
	}
	if o.OriginalName != "" {
		cmd.Printf("  Name:       %s\n", o.OriginalName)
	}
	if o.SizeBytes != nil {
		cmd.Printf("  Size:       %d bytes\n", *o.SizeBytes)
	}
	cmd.Printf("  Digest:     %s %s\n", o.DigestAlgorithm, o.Digest)
	if o.FormatCode != "" {
		cmd.Printf("  Format:     %s (%s %s)\n", o.FormatName, o.FormatRegistryName, o.FormatCode)
	} else {
		cmd.Printf("  Format:     %s\n", o.FormatName)
	}
	if o.Relationship != nil {
		cmd.Printf("  Relation:   %s/%s object %d\n",
			o.Relationship.Type, o.Relationship.SubType, o.Relationship.RelatedObjectID)
	}

	if len(r.Events) > 0 {
		cmd.Println()
		cmd.Println(headingStyle.Render("Events"))
		for _, ev := range r.Events {
			line := fmt.Sprintf("  %s  %-28s", ev.Timestamp.Format(timeFormat), ev.Type)
			if ev.Outcome != "" {
				line += " " + ev.Outcome
			}
			if ev.Detail != "" {
				line += " " + mutedStyle.Render(ev.Detail)
			}
			cmd.Println(line)
		}
	}

	if len(r.Properties) > 0 {
		cmd.Println()
		cmd.Println(headingStyle.Render("Significant properties"))
		for _, p := range r.Properties {
			cmd.Printf("  %s: %s\n", p.Type, p.Value)
		}
	}

	if len(r.Related) > 0 {
		cmd.Println()
		cmd.Println(headingStyle.Render("Related objects"))
		for _, rel := range r.Related {
			cmd.Printf("  %d  %s  %s %s\n", rel.ObjectID, rel.Category, rel.DigestAlgorithm, rel.Digest)
		}
	}
}
