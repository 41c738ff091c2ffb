package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/artisnova/aria/internal/core/domain"
)

var correctCmd = &cobra.Command{
	Use:   "correct [entity-id] [field] [value]",
	Short: "Override a metadata field for an entity",
	Long: `Records a user correction. The entity ID is the cache key form,
e.g. "artist:nirvana" or "album:nevermind:nirvana". The corrected value
takes precedence over aggregated data on every subsequent lookup.

Correctable fields: ` + strings.Join(domain.CorrectableFields, ", ") + `.`,
	Args: cobra.ExactArgs(3),
	RunE: runCorrect,
}

var correctionsCmd = &cobra.Command{
	Use:   "corrections [entity-id]",
	Short: "Show the correction log for an entity",
	Args:  cobra.ExactArgs(1),
	RunE:  runListCorrections,
}

func init() {
	rootCmd.AddCommand(correctCmd)
	rootCmd.AddCommand(correctionsCmd)
}

func runCorrect(cmd *cobra.Command, args []string) error {
	entityID, fieldName, value := args[0], args[1], args[2]

	entityType, err := entityTypeFromID(entityID)
	if err != nil {
		return err
	}

	if err := app.corrections.SubmitCorrection(context.Background(),
		entityType, entityID, fieldName, value); err != nil {
		return fmt.Errorf("recording correction: %w", err)
	}

	cmd.Printf("Recorded: %s.%s = %q\n", entityID, fieldName, value)
	return nil
}

func runListCorrections(cmd *cobra.Command, args []string) error {
	corrections, err := app.corrections.ListCorrections(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("listing corrections: %w", err)
	}

	if len(corrections) == 0 {
		cmd.Println("No corrections recorded.")
		return nil
	}

	for _, correction := range corrections {
		cmd.Printf("%s  %s: %q -> %q\n",
			correction.CreatedAt.Format("2006-01-02 15:04"),
			correction.FieldName,
			correction.OriginalValue,
			correction.CorrectedValue)
	}
	return nil
}

// entityTypeFromID derives the entity type from the ID's namespace
// prefix ("artist:nirvana" -> artist).
func entityTypeFromID(entityID string) (domain.EntityType, error) {
	prefix, _, found := strings.Cut(entityID, ":")
	if !found {
		return "", fmt.Errorf("entity ID %q is not namespaced (want e.g. \"artist:nirvana\")", entityID)
	}
	entityType := domain.EntityType(prefix)
	if !entityType.Valid() {
		return "", fmt.Errorf("entity ID %q has unknown type prefix %q", entityID, prefix)
	}
	return entityType, nil
}
