package cli

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ideamans/go-sheetview"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFormat is returned for upload inputs other than csv, tsv and xlsx
var ErrUnsupportedFormat = errors.New("unsupported file format")

var uploadCmd = &cobra.Command{
	Use:   "upload <file.csv|file.tsv|file.xlsx>",
	Short: "Create a spreadsheet from a local table",
	Long: `Create a new spreadsheet titled after the file, sized to its data, and
write every cell in a single batch. For xlsx files the first sheet is used.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		table, err := readTable(path)
		if err != nil {
			return err
		}
		rows, cols := tableSize(table)
		if rows == 0 || cols == 0 {
			return fmt.Errorf("%s has no data", path)
		}

		title, _ := cmd.Flags().GetString("title")
		if title == "" {
			title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		}

		c, err := openCollection(cmd)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		ss, err := c.CreateSpreadsheet(ctx, title, rows, cols)
		if err != nil {
			return err
		}
		ws, err := ss.WorksheetAt(ctx, 0)
		if err != nil {
			return err
		}

		err = ws.With(ctx, func(v *sheetview.View) error {
			return v.SetRowSlice(0, rows, padTable(table, cols))
		})
		if err != nil {
			return err
		}

		log.Info().Str("spreadsheet_id", ss.ID()).Int("rows", rows).Int("cols", cols).Msg("Uploaded table")
		fmt.Fprintln(cmd.OutOrStdout(), ss.URL())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(uploadCmd)
	uploadCmd.Flags().String("title", "", "Spreadsheet title (default: file name without extension)")
}

// readTable loads a csv, tsv or xlsx file as rows of strings
func readTable(path string) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return readDelimited(path, ',')
	case ".tsv":
		return readDelimited(path, '\t')
	case ".xlsx":
		return readWorkbook(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

func readDelimited(path string, comma rune) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = comma
	r.FieldsPerRecord = -1
	if comma == '\t' {
		r.LazyQuotes = true
	}
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return records, nil
}

func readWorkbook(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%s has no sheets", path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return rows, nil
}

func tableSize(table [][]string) (int, int) {
	cols := 0
	for _, row := range table {
		cols = max(cols, len(row))
	}
	return len(table), cols
}

// padTable widens ragged rows with blanks so every row has cols cells
func padTable(table [][]string, cols int) [][]any {
	out := make([][]any, len(table))
	for i, row := range table {
		padded := make([]any, cols)
		for j := range padded {
			if j < len(row) {
				padded[j] = row[j]
			} else {
				padded[j] = ""
			}
		}
		out[i] = padded
	}
	return out
}
