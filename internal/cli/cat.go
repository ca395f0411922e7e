package cli

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/ideamans/go-sheetview"
	"github.com/spf13/cobra"
)

var catCmd = &cobra.Command{
	Use:   "cat <spreadsheet-id> [sheet]",
	Short: "Print worksheet cells as TSV",
	Long: `Print the cells of a worksheet (the first one by default) as tab separated
values. Trailing blank rows and cells are omitted. --rows and --cols take
"start:end" bounds with 0-based, end-exclusive indices; either side may be
empty and negative values count from the end.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var opts []sheetview.ViewOption
		for _, flag := range []string{"rows", "cols"} {
			span, _ := cmd.Flags().GetString(flag)
			opt, err := parseSpan(span, flag == "rows")
			if err != nil {
				return fmt.Errorf("invalid --%s: %w", flag, err)
			}
			if opt != nil {
				opts = append(opts, opt)
			}
		}

		c, err := openCollection(cmd)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		ss, err := c.Spreadsheet(ctx, args[0])
		if err != nil {
			return err
		}
		var ws *sheetview.Worksheet
		if len(args) == 2 {
			ws, err = ss.Worksheet(ctx, args[1])
		} else {
			ws, err = ss.WorksheetAt(ctx, 0)
		}
		if err != nil {
			return err
		}

		view, err := ws.View(opts...)
		if err != nil {
			return err
		}
		values, err := view.Values(ctx)
		if err != nil {
			return err
		}

		w := csv.NewWriter(cmd.OutOrStdout())
		w.Comma = '\t'
		if err := w.WriteAll(trimTable(values)); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(catCmd)
	catCmd.Flags().String("rows", "", `Row bounds "start:end"`)
	catCmd.Flags().String("cols", "", `Column bounds "start:end"`)
}

// parseSpan turns "start:end" into a view option. An empty string yields nil.
func parseSpan(span string, rows bool) (sheetview.ViewOption, error) {
	if span == "" {
		return nil, nil
	}
	startStr, endStr, ok := strings.Cut(span, ":")
	if !ok {
		return nil, fmt.Errorf("%q is not start:end", span)
	}

	start := 0
	if startStr != "" {
		n, err := strconv.Atoi(startStr)
		if err != nil {
			return nil, fmt.Errorf("invalid start %q", startStr)
		}
		start = n
	}
	if endStr == "" {
		if rows {
			return sheetview.RowsFrom(start), nil
		}
		return sheetview.ColsFrom(start), nil
	}
	end, err := strconv.Atoi(endStr)
	if err != nil {
		return nil, fmt.Errorf("invalid end %q", endStr)
	}
	if rows {
		return sheetview.RowRange(start, end), nil
	}
	return sheetview.ColRange(start, end), nil
}

// trimTable drops trailing blank cells of each row and trailing blank rows
func trimTable(values [][]string) [][]string {
	out := make([][]string, len(values))
	last := -1
	for i, row := range values {
		n := len(row)
		for n > 0 && row[n-1] == "" {
			n--
		}
		out[i] = row[:n]
		if n > 0 {
			last = i
		}
	}
	return out[:last+1]
}
