package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/nnimab/Smart-vocabulary-book/internal/excel"
)

var importCfg = excel.DefaultImportConfig()

var importCmd = &cobra.Command{
	Use:   "import <book-id> <file>",
	Short: "Import words into a book from an xlsx, csv or text file",
	Long: `Import words into a book. The format follows the file extension:
.xlsx reads the configured columns, .csv reads "word,definition" records and
anything else is read as one "word: definition" entry per line.
Nothing is imported when a single row is invalid.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		bookID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid book id %q", args[0])
		}

		rows, err := excel.ParseFile(args[1], importCfg)
		if err != nil {
			return err
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		result, err := a.svc.Books.ImportWords(cmd.Context(), bookID, rows)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d words into %q (%d words total)\n",
			result.Imported, result.Book.Name, result.Book.TotalWords)
		return nil
	},
}

func init() {
	f := importCmd.Flags()
	f.StringVar(&importCfg.SheetName, "sheet", "", "sheet name (default first sheet)")
	f.StringVar(&importCfg.WordColumn, "word-column", importCfg.WordColumn, "column holding the word")
	f.StringVar(&importCfg.DefinitionColumn, "definition-column", importCfg.DefinitionColumn, "column holding the definition")
	f.StringVar(&importCfg.PronunciationColumn, "pronunciation-column", importCfg.PronunciationColumn, "column holding the pronunciation")
	f.StringVar(&importCfg.ExamplesColumn, "examples-column", importCfg.ExamplesColumn, "column holding ';' separated examples")
	f.IntVar(&importCfg.StartRow, "start-row", importCfg.StartRow, "first spreadsheet row to read")
	rootCmd.AddCommand(importCmd)
}
