package cmd

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rahulm/quizforge/internal/ingest"
	"github.com/rahulm/quizforge/internal/quiz"
	"github.com/rahulm/quizforge/internal/quizgen"
	"github.com/rahulm/quizforge/internal/store"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate <source-file>",
	Short: "Generate a question bank from a source file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		count, _ := cmd.Flags().GetInt("count")
		title, _ := cmd.Flags().GetString("title")

		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return fmt.Errorf("resolve DB path: %w", err)
		}
		st, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer st.Close()

		provider, err := buildProvider(ctx, st)
		if err != nil {
			return fmt.Errorf("LLM endpoint not configured: %w", err)
		}
		cfg, err := generatorConfig(ctx, st)
		if err != nil {
			return err
		}
		gen := quizgen.New(provider, cfg)

		path := args[0]
		text, err := ingest.ExtractFile(path)
		if err != nil {
			return err
		}

		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		if title == "" {
			title = name
		}

		questions, runErr := gen.Run(ctx, quizgen.GenerateInput{
			SourceText: text,
			SourceName: name,
			Total:      count,
		}, func(p quizgen.BatchProgress) {
			fmt.Printf("batch %d/%d done, %d questions so far\n", p.Batch, p.Batches, p.Generated)
		})

		if len(questions) == 0 {
			return fmt.Errorf("generation produced no questions: %w", runErr)
		}

		bank := quiz.Bank{
			ID:        "bank-" + uuid.NewString(),
			Title:     title,
			Questions: questions,
			CreatedAt: time.Now(),
		}
		if err := st.AddBank(ctx, bank); err != nil {
			return fmt.Errorf("save bank: %w", err)
		}

		if runErr != nil {
			fmt.Printf("stopped early (%v); saved %q with %d questions\n", runErr, title, len(questions))
			return nil
		}
		fmt.Printf("saved %q with %d questions\n", title, len(questions))
		return nil
	},
}

func init() {
	generateCmd.Flags().Int("count", 20, "Number of questions to generate")
	generateCmd.Flags().String("title", "", "Bank title (defaults to the file name)")
}
