package main

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/ideamans/go-sheetview"
	"github.com/ideamans/go-sheetview/adapters/excel"
)

func main() {
	// Every .xlsx file in the directory is one spreadsheet (no authentication required)
	adapter, err := excel.New(&excel.Config{Dir: "./workbooks"})
	if err != nil {
		log.Fatalf("Failed to create Excel adapter: %v", err)
	}
	collection := sheetview.New(adapter, nil)
	ctx := context.Background()

	ss, err := collection.CreateSpreadsheet(ctx, "users", 4, 3)
	if err != nil {
		log.Fatalf("Failed to create spreadsheet: %v", err)
	}
	ws, err := ss.WorksheetAt(ctx, 0)
	if err != nil {
		log.Fatalf("Failed to open worksheet: %v", err)
	}

	err = ws.With(ctx, func(v *sheetview.View) error {
		return v.SetRowSlice(0, 4, [][]any{
			{"name", "email", "age"},
			{"John Doe", "john@example.com", 30},
			{"Jane Roe", "jane@example.com", 28},
			{"Kim Lee", "kim@example.com", 41},
		})
	})
	if err != nil {
		log.Fatalf("Failed to write users: %v", err)
	}
	if err := ws.SetFrozenRowCount(ctx, 1); err != nil {
		log.Fatalf("Failed to freeze header: %v", err)
	}

	// Sort the data rows by name, descending, through a row slice of the sheet
	body := ws.Slice(1, 4)
	err = sheetview.Sort[[]string](ctx, body, func(a, b []string) int {
		return strings.Compare(a[0], b[0])
	}, true)
	if err != nil {
		log.Fatalf("Failed to sort: %v", err)
	}
	if err := body.Commit(ctx); err != nil {
		log.Fatalf("Failed to commit: %v", err)
	}

	values, err := ws.Values(ctx)
	if err != nil {
		log.Fatalf("Failed to read back: %v", err)
	}
	fmt.Printf("Spreadsheet %s:\n", ss.ID())
	for _, row := range values {
		fmt.Println(" ", strings.Join(row, "\t"))
	}
}
