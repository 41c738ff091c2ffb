package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/artisnova/aria/internal/core/domain"
)

var (
	lookupArtistHint string
	lookupJSON       bool
)

var lookupCmd = &cobra.Command{
	Use:   "lookup [artist|album|track] [name]",
	Short: "Aggregate metadata for an artist, album, or track",
	Long: `Looks the entity up across all configured catalogs, merges the
answers by source reliability, and prints the unified record. Results are
cached; repeat lookups are served from the cache until the entry expires.`,
	Args: cobra.ExactArgs(2),
	RunE: runLookup,
}

func init() {
	lookupCmd.Flags().StringVar(&lookupArtistHint, "artist", "", "artist hint for album and track lookups")
	lookupCmd.Flags().BoolVar(&lookupJSON, "json", false, "output the record as JSON")
	rootCmd.AddCommand(lookupCmd)
}

func runLookup(cmd *cobra.Command, args []string) error {
	entityType := domain.EntityType(strings.ToLower(args[0]))
	if !entityType.Valid() {
		return fmt.Errorf("unknown entity type %q (want artist, album, or track)", args[0])
	}

	record, err := app.metadata.GetEntityInfo(context.Background(), domain.Query{
		Type:       entityType,
		Term:       args[1],
		ArtistHint: lookupArtistHint,
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			cmd.Printf("No catalog knows %s %q.\n", entityType, args[1])
			return nil
		}
		return fmt.Errorf("lookup failed: %w", err)
	}

	if lookupJSON {
		data, err := json.MarshalIndent(record, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal record: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	printRecord(cmd, record)
	return nil
}

func printRecord(cmd *cobra.Command, record *domain.CanonicalRecord) {
	cmd.Printf("%s (%s)\n", record.Name, record.Type)
	if record.Artist != "" {
		cmd.Printf("  Artist:   %s\n", record.Artist)
	}
	if record.Date != "" {
		cmd.Printf("  Date:     %s\n", record.Date)
	}
	if record.Country != "" {
		cmd.Printf("  Country:  %s\n", record.Country)
	}
	if len(record.Genres) > 0 {
		cmd.Printf("  Genres:   %s\n", strings.Join(record.Genres, ", "))
	}
	if len(record.Tags) > 0 {
		cmd.Printf("  Tags:     %s\n", strings.Join(record.Tags, ", "))
	}
	if record.Biography != "" {
		cmd.Printf("  Bio:      %s\n", truncate(record.Biography, 200))
	}
	if len(record.Tracks) > 0 {
		cmd.Println("  Tracks:")
		for _, track := range record.Tracks {
			if track.DurationSec > 0 {
				cmd.Printf("    %2d. %s (%d:%02d)\n", track.Position, track.Title,
					track.DurationSec/60, track.DurationSec%60)
			} else {
				cmd.Printf("    %2d. %s\n", track.Position, track.Title)
			}
		}
	}
	if len(record.Credits) > 0 {
		cmd.Println("  Credits:")
		for _, credit := range record.Credits {
			cmd.Printf("    %s: %s\n", credit.Role, credit.Name)
		}
	}

	sources := make([]string, 0, len(record.Sources))
	for _, contribution := range record.Sources {
		sources = append(sources, contribution.SourceName)
	}
	cmd.Printf("  Quality:  %.2f (sources: %s)\n", record.QualityScore, strings.Join(sources, ", "))
	if len(record.CorrectedFields) > 0 {
		cmd.Printf("  Edited:   %s\n", strings.Join(record.CorrectedFields, ", "))
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return strings.TrimSpace(s[:max]) + "..."
}
