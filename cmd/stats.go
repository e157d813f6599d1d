package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skillprep/assess/internal/assessment"
	"github.com/skillprep/assess/internal/score"
	"github.com/skillprep/assess/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show a candidate's saved progress and latest report",
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

		ctx := context.Background()
		repo := s.SnapshotRepo()

		session, err := repo.Latest(ctx, candidateID, store.KindSession)
		if err != nil {
			return fmt.Errorf("read session snapshot: %w", err)
		}
		if session == nil {
			fmt.Println("No saved session for candidate", candidateID)
		} else {
			var st assessment.State
			if err := json.Unmarshal([]byte(session.Data), &st); err != nil {
				fmt.Println("Saved session is unreadable; a fresh one will start on next run.")
			} else {
				printSession(&st, session)
			}
		}

		report, err := repo.Latest(ctx, candidateID, store.KindReport)
		if err != nil {
			return fmt.Errorf("read report snapshot: %w", err)
		}
		if report != nil {
			var rep score.Report
			if err := json.Unmarshal([]byte(report.Data), &rep); err == nil {
				printReport(&rep)
			}
		}
		return nil
	},
}

func printSession(st *assessment.State, snap *store.Snapshot) {
	fmt.Println("Session:   ", st.SessionID)
	fmt.Println("Phase:     ", st.Phase)
	fmt.Printf("Position:   section %d, question %d\n", st.CurrentSection+1, st.CurrentQuestion+1)
	fmt.Printf("Answered:   %d\n", len(st.Answers))
	fmt.Printf("Time left:  %ds\n", st.TimeRemainingSeconds)
	fmt.Println("Saved at:  ", snap.TakenAt.Format("2006-01-02 15:04:05"))
}

func printReport(rep *score.Report) {
	fmt.Println()
	fmt.Println("Latest report")
	for id, s := range rep.SectionScores {
		fmt.Printf("  %-14s %3d\n", id, s)
	}
	fmt.Printf("  %-14s %3d\n", "aggregate", rep.Aggregate)
	fmt.Printf("  %-14s %3d\n", "readiness", rep.Readiness)
	if len(rep.Strengths) > 0 {
		fmt.Println("  strengths:  ", rep.Strengths)
	}
	if len(rep.Weaknesses) > 0 {
		fmt.Println("  weaknesses: ", rep.Weaknesses)
	}
}

func init() {
	statsCmd.Flags().String("candidate", "", "Candidate id to inspect")
	statsCmd.MarkFlagRequired("candidate")
}
