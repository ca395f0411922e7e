package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/ideamans/go-sheetview"
	"github.com/ideamans/go-sheetview/adapters/googlesheets"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	ctx := context.Background()

	// Service account key or authorized_user credentials (see `sheetview authenticate`)
	collection, err := googlesheets.LoginWithFile(ctx, "./credentials.json", googlesheets.DefaultConfig(), nil)
	if err != nil {
		return fmt.Errorf("failed to log in: %w", err)
	}

	// Looking up a known id fetches just that document
	ss, err := collection.Spreadsheet(ctx, os.Getenv("SPREADSHEET_ID"))
	if err != nil {
		return fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	title, err := ss.Title(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("%s (%s)\n", title, ss.URL())

	ws, err := ss.WorksheetAt(ctx, 0)
	if err != nil {
		return err
	}

	// The first read fetches the whole 10x3 rectangle in one call
	header, err := ws.View(sheetview.RowRange(0, 10), sheetview.ColRange(0, 3))
	if err != nil {
		return err
	}
	rows, err := header.Values(ctx)
	if err != nil {
		return err
	}
	for i, row := range rows {
		fmt.Printf("  row %d: %q\n", i+1, row)
	}

	// Writes are queued and sent in one batch when the scope ends
	return ws.With(ctx, func(v *sheetview.View) error {
		row, err := v.Row(-1)
		if err != nil {
			return err
		}
		return row.SetSlice(0, 3, []any{"total", 42, 3.5})
	})
}
