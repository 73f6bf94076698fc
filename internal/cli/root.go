package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fennwick/keepsake/internal/config"
	"github.com/fennwick/keepsake/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "keepsake",
	Short: "Long-term memory for conversational agents",
	Long:  "Keepsake extracts facts and notable events from dialogue, segments conversation history, decays stale memories, and serves ranked recall for prompt injection.",
}

var configPath string

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to TOML config file")
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(segmentCmd)
	rootCmd.AddCommand(decayCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(showCmd)
}

// openStore loads config and opens the database, resolving the default path
// when none is configured.
func openStore() (*store.DB, config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, cfg, err
	}

	dbPath := cfg.Database.Path
	if dbPath == "" {
		dbPath, err = store.DefaultDBPath()
		if err != nil {
			return nil, cfg, fmt.Errorf("resolve db path: %w", err)
		}
	}

	db, err := store.Open(dbPath)
	if err != nil {
		return nil, cfg, fmt.Errorf("open database: %w", err)
	}
	return db, cfg, nil
}
