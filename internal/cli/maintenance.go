package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fennwick/keepsake/internal/engine"
)

var decaySession string

var segmentCmd = &cobra.Command{
	Use:   "segment <session-id>",
	Short: "Segment un-segmented messages for a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, _, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		count, err := engine.New(db).SegmentSession(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("created %d segments\n", count)
		return nil
	},
}

var decayCmd = &cobra.Command{
	Use:   "decay",
	Short: "Age out stale memories",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, _, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		res := engine.New(db).RunDecay(decaySession)
		fmt.Printf("decayed %d semantic, %d episodic memories\n", res.Semantic, res.Episodic)
		return nil
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate [session-id]",
	Short: "Backfill memory from existing message history",
	Long:  "Runs fact extraction and segmentation over stored history. With no session id, every known session is processed. Already-extracted history is skipped.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, _, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		eng := engine.New(db)
		var res engine.MigrationResult
		if len(args) == 1 {
			res, err = eng.MigrateSession(args[0])
		} else {
			res, err = eng.MigrateAll()
		}
		if err != nil {
			return err
		}
		fmt.Printf("stored %d facts, created %d segments\n", res.SemanticCount, res.SegmentCount)
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Print the formatted memory block for a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, _, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		bundle := engine.New(db).RetrieveMemory(args[0])
		text := engine.FormatMemory(bundle)
		if text == "" {
			fmt.Println("(no memories)")
			return nil
		}
		fmt.Println(text)
		return nil
	},
}

func init() {
	decayCmd.Flags().StringVar(&decaySession, "session", "", "limit decay to one session")
}
