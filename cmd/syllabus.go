package cmd

import (
	"fmt"

	"github.com/rahulm/quizforge/internal/ingest"
	"github.com/rahulm/quizforge/internal/quizgen"
	"github.com/spf13/cobra"
)

var syllabusCmd = &cobra.Command{
	Use:   "syllabus",
	Short: "Manage syllabus presets",
}

var syllabusParseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Parse an outline file into a syllabus preset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, err := openStore(cmd)
		if err != nil {
			return err
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

		text, err := ingest.ExtractFile(args[0])
		if err != nil {
			return err
		}
		preset, err := gen.ParseSyllabus(ctx, text)
		if err != nil {
			return err
		}
		if err := st.AddSyllabusPreset(ctx, *preset); err != nil {
			return fmt.Errorf("save preset: %w", err)
		}
		fmt.Printf("saved syllabus %q (%s) with %d books\n", preset.Name, preset.ID, len(preset.Books))
		return nil
	},
}

var syllabusListCmd = &cobra.Command{
	Use:   "list",
	Short: "List syllabus presets",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		presets, err := st.SyllabusPresets(cmd.Context())
		if err != nil {
			return err
		}
		if len(presets) == 0 {
			fmt.Println("No syllabus presets.")
			return nil
		}
		for _, p := range presets {
			fmt.Printf("%-30s  %d books  %s\n", p.ID, len(p.Books), p.Name)
		}
		return nil
	},
}

var syllabusDeleteCmd = &cobra.Command{
	Use:   "delete <preset-id>",
	Short: "Delete a syllabus preset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()
		return st.DeleteSyllabusPreset(cmd.Context(), args[0])
	},
}

func init() {
	syllabusCmd.AddCommand(syllabusParseCmd)
	syllabusCmd.AddCommand(syllabusListCmd)
	syllabusCmd.AddCommand(syllabusDeleteCmd)
}
