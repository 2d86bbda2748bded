package cmd

import (
	"fmt"

	"github.com/rahulm/quizforge/internal/quiz"
	"github.com/rahulm/quizforge/internal/quizgen"
	"github.com/rahulm/quizforge/internal/syllabus"
	"github.com/spf13/cobra"
)

var classifyCmd = &cobra.Command{
	Use:   "classify <preset-id>",
	Short: "Classify stored questions against a syllabus preset",
	Long: "Runs the scoring heuristic over every stored question and reports " +
		"where each one lands. With --llm, questions the heuristic cannot " +
		"place are sent to the model and the results stored as overrides.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		useLLM, _ := cmd.Flags().GetBool("llm")

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		presets, err := st.SyllabusPresets(ctx)
		if err != nil {
			return err
		}
		var preset *syllabus.Preset
		for i := range presets {
			if presets[i].ID == args[0] {
				preset = &presets[i]
			}
		}
		if preset == nil {
			return fmt.Errorf("syllabus %s not found", args[0])
		}

		banks, err := st.History(ctx)
		if err != nil {
			return err
		}
		metas, err := st.MetaMap(ctx)
		if err != nil {
			return err
		}

		ix := syllabus.BuildIndex(preset)
		perBook := make(map[string]int)
		var unmatched []quiz.Question

		for _, bank := range banks {
			for _, q := range bank.Questions {
				q := q
				var meta *quiz.QuestionMeta
				if m, ok := metas[q.ID]; ok {
					meta = &m
				}
				if a := syllabus.Classify(&q, ix, meta, bank.Title); a != nil {
					perBook[a.BookID]++
				} else {
					unmatched = append(unmatched, q)
				}
			}
		}

		for _, book := range preset.Books {
			fmt.Printf("%-30s  %d questions\n", book.Title, perBook[book.ID])
		}
		fmt.Printf("%-30s  %d questions\n", "(unclassified)", len(unmatched))

		if !useLLM || len(unmatched) == 0 {
			return nil
		}

		provider, err := buildProvider(ctx, st)
		if err != nil {
			return fmt.Errorf("LLM endpoint not configured: %w", err)
		}
		cfg, err := generatorConfig(ctx, st)
		if err != nil {
			return err
		}
		gen := quizgen.New(provider, cfg)

		mappings, err := gen.ClassifyQuestions(ctx, preset, unmatched)
		if err != nil {
			return err
		}

		applied, err := syllabus.ApplyMappings(ctx, st, ix, mappings)
		if err != nil {
			return err
		}
		fmt.Printf("stored %d LLM placements as overrides\n", applied)
		return nil
	},
}

func init() {
	classifyCmd.Flags().Bool("llm", false, "Send unclassified questions to the LLM")
}
