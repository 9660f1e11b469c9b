// PulseMind CLI - inspect scores and journal from the terminal.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mobigaurav/pulsemind/internal/core"
	"github.com/mobigaurav/pulsemind/internal/storage"
)

var (
	dataDir string

	version = "0.1.0"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "pm",
		Short: "PulseMind - stress scores and journaling from your terminal",
		Long: `PulseMind tracks biometric readings from your devices, computes a
daily stress score and keeps a mood journal.

All data stays in a local SQLite database.`,
	}

	home, _ := os.UserHomeDir()
	defaultDataDir := filepath.Join(home, ".pulsemind")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", defaultDataDir, "data directory")

	rootCmd.AddCommand(statusCmd())
	rootCmd.AddCommand(scoreCmd())
	rootCmd.AddCommand(trendsCmd())
	rootCmd.AddCommand(journalCmd())
	rootCmd.AddCommand(resetCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openDB opens the daemon's database, creating the schema on first use
func openDB() (*storage.DB, error) {
	dbPath := filepath.Join(dataDir, "pulsemind.db")

	db, err := storage.Open(storage.Config{Path: dbPath})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	return db, nil
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show PulseMind status",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			scoreStore := storage.NewScoreStore(db)
			journalStore := storage.NewJournalStore(db)

			scoreDays, _ := scoreStore.Count()
			entries, _ := journalStore.Count()

			fmt.Println("📊 PulseMind Status")
			fmt.Println()
			fmt.Printf("   Data: %s\n", dataDir)
			fmt.Printf("   Scored days: %d\n", scoreDays)
			fmt.Printf("   Journal entries: %d\n", entries)

			record, err := scoreStore.GetForDay(time.Now())
			if err == nil {
				fmt.Printf("   Today's score: %d (recorded %s)\n",
					record.Score, record.CreatedAt.Local().Format("15:04"))
			} else {
				fmt.Println("   Today's score: not recorded yet")
			}

			return nil
		},
	}
}

func scoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "score",
		Short: "Show today's stress score",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			record, err := storage.NewScoreStore(db).GetForDay(time.Now())
			if errors.Is(err, core.ErrRecordNotFound) {
				fmt.Println("No score recorded today.")
				fmt.Println("The daemon records one automatically once enough readings arrive.")
				return nil
			}
			if err != nil {
				return err
			}

			fmt.Printf("Today's stress score: %d/100\n", record.Score)
			return nil
		},
	}
}

func trendsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trends",
		Short: "Show daily stress scores over time",
		RunE: func(cmd *cobra.Command, args []string) error {
			days, _ := cmd.Flags().GetInt("days")

			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			store := storage.NewScoreStore(db)

			var records []*core.DailyScore
			if days > 0 {
				records, err = store.GetSince(days)
			} else {
				records, err = store.GetAll()
			}
			if err != nil {
				return err
			}

			if len(records) == 0 {
				fmt.Println("No scores recorded yet.")
				return nil
			}

			fmt.Printf("📈 Stress Trend (%d days)\n\n", len(records))
			for _, r := range records {
				bar := strings.Repeat("█", r.Score/4)
				fmt.Printf("   %s  %3d  %s\n", r.Day.Format("2006-01-02"), r.Score, bar)
			}
			return nil
		},
	}
	cmd.Flags().Int("days", 0, "Limit to the last N days")
	return cmd
}

func journalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Journal operations",
	}

	addCmd := &cobra.Command{
		Use:   "add [text]",
		Short: "Add a journal entry",
		Args:  cobra.MinimumNArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			mood, _ := cmd.Flags().GetString("mood")

			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			entry := core.NewJournalEntry(text, mood)
			if err := storage.NewJournalStore(db).Create(entry); err != nil {
				if errors.Is(err, core.ErrEmptyEntry) {
					return fmt.Errorf("an entry needs text or a --mood")
				}
				return err
			}

			fmt.Println("✅ Entry saved.")
			return nil
		},
	}
	addCmd.Flags().String("mood", "", "Mood tag, e.g. 😊")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List recent journal entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")

			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			entries, err := storage.NewJournalStore(db).GetRecent(limit)
			if err != nil {
				return err
			}

			if len(entries) == 0 {
				fmt.Println("No journal entries yet.")
				return nil
			}

			fmt.Printf("📝 Recent Entries (%d)\n\n", len(entries))
			for _, e := range entries {
				when := e.CreatedAt.Local().Format("2006-01-02 15:04")
				if e.Text == "" {
					fmt.Printf("   %s  %s\n", when, e.Mood)
					continue
				}
				fmt.Printf("   %s  %s %s\n", when, e.Mood, truncate(e.Text, 70))
			}
			return nil
		},
	}
	listCmd.Flags().Int("limit", 10, "Max entries")

	moodsCmd := &cobra.Command{
		Use:   "moods",
		Short: "Show mood frequencies",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			counts, err := storage.NewJournalStore(db).MoodCounts()
			if err != nil {
				return err
			}

			if len(counts) == 0 {
				fmt.Println("No moods recorded yet.")
				return nil
			}

			fmt.Println("🎭 Mood Frequencies")
			fmt.Println()
			for _, mc := range counts {
				fmt.Printf("   %s  %d\n", mc.Mood, mc.Count)
			}
			return nil
		},
	}

	cmd.AddCommand(addCmd, listCmd, moodsCmd)
	return cmd
}

func resetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all scores and journal entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			confirmed, _ := cmd.Flags().GetBool("yes")
			if !confirmed {
				return fmt.Errorf("this deletes all recorded data; re-run with --yes to confirm")
			}

			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			if err := storage.NewScoreStore(db).DeleteAll(); err != nil {
				return err
			}
			if err := storage.NewJournalStore(db).DeleteAll(); err != nil {
				return err
			}

			fmt.Println("🗑️  All scores and journal entries deleted.")
			return nil
		},
	}
	cmd.Flags().Bool("yes", false, "Confirm deletion")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show PulseMind version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("PulseMind %s\n", version)
		},
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
