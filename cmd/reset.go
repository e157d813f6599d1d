package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skillprep/assess/internal/store"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete a candidate's saved sessions and reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		candidateID, _ := cmd.Flags().GetString("candidate")

		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return fmt.Errorf("resolve database path: %w", err)
		}
		s, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer s.Close()

		if err := s.SnapshotRepo().Clear(context.Background(), candidateID); err != nil {
			return fmt.Errorf("clear snapshots: %w", err)
		}
		fmt.Println("Cleared saved data for candidate", candidateID)
		return nil
	},
}

func init() {
	resetCmd.Flags().String("candidate", "", "Candidate id to reset")
	resetCmd.MarkFlagRequired("candidate")
}
