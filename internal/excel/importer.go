// Package excel turns spreadsheet, CSV and plain-text word lists into rows
// ready to be stored in a vocabulary book. Parsing never touches the database.
package excel

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/nnimab/Smart-vocabulary-book/pkg/models"
)

// Format is the layout of an import source.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
	FormatText Format = "text"
)

// FormatFromPath picks the format from a file extension; unknown extensions are read as text.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX
	case ".csv":
		return FormatCSV
	default:
		return FormatText
	}
}

// ImportConfig defines the spreadsheet layout
type ImportConfig struct {
	SheetName           string // empty means the first sheet
	WordColumn          string
	DefinitionColumn    string
	PronunciationColumn string
	ExamplesColumn      string // examples separated by ';'
	StartRow            int    // 1-based
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		WordColumn:          "A",
		DefinitionColumn:    "B",
		PronunciationColumn: "C",
		ExamplesColumn:      "D",
		StartRow:            1,
	}
}

// Row is one parsed word.
type Row struct {
	Line          int
	Word          string
	Definition    string
	Pronunciation string
	Examples      []string
}

// ValidationError lists every rejected row of an import.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid import: %s", strings.Join(e.Problems, "; "))
}

func (e *ValidationError) Unwrap() error { return models.ErrValidation }

// ErrEmptyImport is returned when a source holds no words at all.
var ErrEmptyImport = fmt.Errorf("import contains no words: %w", models.ErrValidation)

// ParseFile reads words from a file on disk
func ParseFile(path string, cfg ImportConfig) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open import file: %w", err)
	}
	defer f.Close()

	return Parse(f, FormatFromPath(path), cfg)
}

// Parse reads words in the given format. Any invalid row fails the whole parse.
func Parse(r io.Reader, format Format, cfg ImportConfig) ([]Row, error) {
	var (
		rows []Row
		err  error
	)
	switch format {
	case FormatXLSX:
		rows, err = parseXLSX(r, cfg)
	case FormatCSV:
		rows, err = parseCSV(r)
	case FormatText:
		rows, err = parseText(r)
	default:
		return nil, fmt.Errorf("unsupported import format %q: %w", format, models.ErrValidation)
	}
	if err != nil {
		return nil, err
	}
	return validate(rows)
}

// ParseText parses one word per line in "word: definition", "word<TAB>definition"
// or "word definition" form.
func ParseText(text string) ([]Row, error) {
	return Parse(strings.NewReader(text), FormatText, DefaultImportConfig())
}

func parseXLSX(r io.Reader, cfg ImportConfig) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %v: %w", err, models.ErrValidation)
	}
	defer f.Close()

	sheet := cfg.SheetName
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, ErrEmptyImport
		}
		sheet = sheets[0]
	}

	cells, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}

	start := cfg.StartRow
	if start < 1 {
		start = 1
	}

	var rows []Row
	for i, cols := range cells {
		line := i + 1
		if line < start || blank(cols) || (line == start && isHeader(cell(cols, cfg.WordColumn))) {
			continue
		}
		rows = append(rows, Row{
			Line:          line,
			Word:          cell(cols, cfg.WordColumn),
			Definition:    cell(cols, cfg.DefinitionColumn),
			Pronunciation: cell(cols, cfg.PronunciationColumn),
			Examples:      splitExamples(cell(cols, cfg.ExamplesColumn)),
		})
	}
	return rows, nil
}

// parseCSV reads "word,definition" records; extra fields belong to the definition.
func parseCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	var rows []Row
	first := true
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %v: %w", err, models.ErrValidation)
		}
		line, _ := reader.FieldPos(0)

		if blank(record) {
			continue
		}
		if first {
			first = false
			if isHeader(record[0]) {
				continue
			}
		}

		row := Row{Line: line, Word: strings.TrimSpace(record[0])}
		if len(record) > 1 {
			row.Definition = strings.TrimSpace(strings.Join(record[1:], ","))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseText(r io.Reader) ([]Row, error) {
	var rows []Row
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		var word, definition string
		switch {
		case strings.Contains(text, ":"):
			word, definition, _ = strings.Cut(text, ":")
		case strings.Contains(text, "\t"):
			word, definition, _ = strings.Cut(text, "\t")
		default:
			word, definition, _ = strings.Cut(text, " ")
		}
		rows = append(rows, Row{
			Line:       line,
			Word:       strings.TrimSpace(word),
			Definition: strings.TrimSpace(definition),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read text import: %w", err)
	}
	return rows, nil
}

func validate(rows []Row) ([]Row, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyImport
	}

	var problems []string
	for _, row := range rows {
		switch {
		case row.Word == "":
			problems = append(problems, fmt.Sprintf("row %d: word cannot be empty", row.Line))
		case row.Definition == "":
			problems = append(problems, fmt.Sprintf("row %d: definition cannot be empty for %q", row.Line, row.Word))
		}
	}
	if len(problems) > 0 {
		return nil, &ValidationError{Problems: problems}
	}
	return rows, nil
}

func cell(cols []string, column string) string {
	if column == "" {
		return ""
	}
	n, err := excelize.ColumnNameToNumber(column)
	if err != nil || n > len(cols) {
		return ""
	}
	return strings.TrimSpace(cols[n-1])
}

func blank(cols []string) bool {
	for _, c := range cols {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func isHeader(first string) bool {
	return strings.EqualFold(strings.TrimSpace(first), "word")
}

func splitExamples(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ";") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
