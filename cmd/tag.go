package cmd

import (
	"fmt"
	"sort"

	"github.com/rahulm/quizforge/internal/quiz"
	"github.com/spf13/cobra"
)

var tagCmd = &cobra.Command{
	Use:   "tag",
	Short: "Manage question tags",
}

var tagSetCmd = &cobra.Command{
	Use:   "set <question-id> <tag>...",
	Short: "Replace a question's tags",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		id, tags := args[0], args[1:]

		metas, err := st.MetaMap(ctx)
		if err != nil {
			return err
		}
		meta := metas[id]
		meta.ID = id
		meta.Tags = tags
		if err := st.SetMeta(ctx, meta); err != nil {
			return err
		}

		// Remember every tag ever used so the presets stay offerable.
		presets, err := st.TagPresets(ctx)
		if err != nil {
			return err
		}
		known := make(map[string]bool, len(presets))
		for _, t := range presets {
			known[t] = true
		}
		changed := false
		for _, t := range tags {
			if !known[t] {
				presets = append(presets, t)
				changed = true
			}
		}
		if changed {
			if err := st.SaveTagPresets(ctx, presets); err != nil {
				return err
			}
		}

		fmt.Printf("tagged %s: %v\n", id, tags)
		return nil
	},
}

var tagListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known tags with question counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		metas, err := st.MetaMap(ctx)
		if err != nil {
			return err
		}
		counts := make(map[string]int)
		for _, m := range metas {
			for _, t := range m.Tags {
				counts[t]++
			}
		}
		presets, err := st.TagPresets(ctx)
		if err != nil {
			return err
		}
		for _, t := range presets {
			if _, ok := counts[t]; !ok {
				counts[t] = 0
			}
		}
		if len(counts) == 0 {
			fmt.Println("No tags.")
			return nil
		}

		tags := make([]string, 0, len(counts))
		for t := range counts {
			tags = append(tags, t)
		}
		sort.Strings(tags)
		for _, t := range tags {
			fmt.Printf("%-24s  %d questions\n", t, counts[t])
		}
		return nil
	},
}

var tagQuestionsCmd = &cobra.Command{
	Use:   "questions <tag>",
	Short: "List the questions carrying a tag",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		metas, err := st.MetaMap(ctx)
		if err != nil {
			return err
		}
		tagged := make(map[string]bool)
		for id, m := range metas {
			for _, t := range m.Tags {
				if t == args[0] {
					tagged[id] = true
				}
			}
		}

		banks, err := st.History(ctx)
		if err != nil {
			return err
		}
		found := 0
		for _, b := range banks {
			for _, q := range b.Questions {
				if tagged[q.ID] {
					printTaggedQuestion(q, b.Title)
					found++
				}
			}
		}
		if found == 0 {
			fmt.Println("No stored questions carry that tag.")
		}
		return nil
	},
}

func printTaggedQuestion(q quiz.Question, bankTitle string) {
	stem := q.Stem
	if len(stem) > 60 {
		stem = stem[:60] + "..."
	}
	fmt.Printf("%-20s  %-20s  %s\n", q.ID, bankTitle, stem)
}

func init() {
	tagCmd.AddCommand(tagSetCmd)
	tagCmd.AddCommand(tagListCmd)
	tagCmd.AddCommand(tagQuestionsCmd)
}
