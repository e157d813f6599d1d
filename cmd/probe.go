package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skillprep/assess/internal/acquire"
	"github.com/skillprep/assess/internal/candidate"
	"github.com/skillprep/assess/internal/engine"
	"github.com/skillprep/assess/internal/logger"
	"github.com/skillprep/assess/internal/question"
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Run one question acquisition and show the result",
	Long:  "Exercises the full acquisition pipeline (cache, remote fetch, validation, fallback) for one section and prints where the questions came from.",
	RunE: func(cmd *cobra.Command, args []string) error {
		sectionType, _ := cmd.Flags().GetString("section")
		category, _ := cmd.Flags().GetString("category")

		st := question.SectionType(sectionType)
		if !st.Valid() {
			return fmt.Errorf("unknown section type %q (want aptitude, programming, or employability)", sectionType)
		}
		if category != "" && !question.InVocabulary(st, category) {
			return fmt.Errorf("category %q is not in the %s vocabulary", category, st)
		}

		cfg, err := resolveConfig(cmd)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		e, err := engine.New(ctx, cfg, logger.New(cfg.Log.Level), nil)
		if err != nil {
			return err
		}
		defer e.Close()

		res := e.Pipeline().Acquire(ctx, acquire.Request{
			SectionID:   string(st),
			SectionType: st,
			Category:    category,
			Profile:     candidate.Anonymous("probe"),
		})

		fmt.Printf("Provenance: %s\n", res.Provenance)
		fmt.Printf("Questions:  %d\n\n", len(res.Questions))
		for i, q := range res.Questions {
			fmt.Printf("%2d. [%s/%s] %s\n", i+1, q.Category, q.Difficulty, q.Prompt)
		}
		return nil
	},
}

func init() {
	probeCmd.Flags().String("section", "aptitude", "Section type to acquire for")
	probeCmd.Flags().String("category", "", "Restrict acquisition to one category")
}
