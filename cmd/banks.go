package cmd

import (
	"fmt"
	"os"

	"github.com/rahulm/quizforge/internal/quiz"
	"github.com/rahulm/quizforge/internal/store"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored question banks",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		banks, err := st.History(cmd.Context())
		if err != nil {
			return err
		}
		if len(banks) == 0 {
			fmt.Println("No question banks.")
			return nil
		}

		fmt.Printf("%-42s  %-10s  %-6s  %s\n", "ID", "Created", "Count", "Title")
		for _, b := range banks {
			fmt.Printf("%-42s  %-10s  %-6d  %s\n",
				b.ID, b.CreatedAt.Local().Format("2006-01-02"), len(b.Questions), b.Title)
		}
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>...",
	Short: "Import question banks from JSON files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		for _, path := range args {
			content, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			bank, err := quiz.ImportBank(path, content)
			if err != nil {
				return err
			}
			if err := st.AddBank(cmd.Context(), *bank); err != nil {
				return fmt.Errorf("save bank: %w", err)
			}
			fmt.Printf("imported %q with %d questions\n", bank.Title, len(bank.Questions))
		}
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export <bank-id>",
	Short: "Export a question bank to a JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		bank, err := st.BankByID(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if bank == nil {
			return fmt.Errorf("bank %s not found", args[0])
		}

		data, err := quiz.ExportBank(bank)
		if err != nil {
			return err
		}
		if out == "" {
			out = quiz.ExportFilename(bank)
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return err
		}
		fmt.Printf("wrote %d questions to %s\n", len(bank.Questions), out)
		return nil
	},
}

func init() {
	exportCmd.Flags().String("out", "", "Output file (defaults to a title-derived name)")
}

// openStore resolves the DB path and opens the store for one-shot
// commands.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}
