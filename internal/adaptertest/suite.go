// Package adaptertest holds the behavior every sheetview.Adapter must share,
// runnable against any backend.
package adaptertest

import (
	"context"
	"slices"
	"testing"
	"time"

	"github.com/ideamans/go-sheetview"
)

// Run exercises adapter against a document it creates itself. Stores that
// already hold documents are fine; nothing else is touched.
func Run(t *testing.T, adapter sheetview.Adapter) {
	t.Helper()
	ctx := context.Background()

	id, err := adapter.CreateDocument(ctx, "adaptertest")
	if err != nil {
		t.Fatalf("CreateDocument() error = %v", err)
	}
	if id == "" {
		t.Fatal("CreateDocument() returned an empty id")
	}

	t.Run("ListDocuments", func(t *testing.T) {
		ids, err := adapter.ListDocuments(ctx)
		if err != nil {
			t.Fatalf("ListDocuments() error = %v", err)
		}
		if !slices.Contains(ids, id) {
			t.Errorf("ListDocuments() = %v, missing %s", ids, id)
		}
	})

	var first sheetview.SheetProperties
	t.Run("GetDocument", func(t *testing.T) {
		doc, err := adapter.GetDocument(ctx, id)
		if err != nil {
			t.Fatalf("GetDocument() error = %v", err)
		}
		if doc.Title != "adaptertest" {
			t.Errorf("Title = %q, want adaptertest", doc.Title)
		}
		if len(doc.Sheets) != 1 {
			t.Fatalf("new document has %d sheets, want 1", len(doc.Sheets))
		}
		first = doc.Sheets[0]
		if first.RowCount != sheetview.DefaultRows || first.ColumnCount != sheetview.DefaultCols {
			t.Errorf("first sheet = %dx%d, want %dx%d", first.RowCount, first.ColumnCount, sheetview.DefaultRows, sheetview.DefaultCols)
		}
	})
	if first.Title == "" {
		t.Fatal("no first sheet to continue with")
	}

	t.Run("Values", func(t *testing.T) {
		err := adapter.BatchWriteValues(ctx, id, []sheetview.ValueRange{
			{Range: sheetview.FormatRangeA1(first.Title, 0, 1, 0, 2), Values: [][]string{{"a", "1.5"}}},
			{Range: sheetview.FormatRangeA1(first.Title, 2, 3, 2, 3), Values: [][]string{{"c3"}}},
		}, sheetview.InputUserEntered)
		if err != nil {
			t.Fatalf("BatchWriteValues() error = %v", err)
		}

		rows, err := adapter.GetValues(ctx, id, sheetview.FormatRangeA1(first.Title, 0, 4, 0, 4), sheetview.ReadOptions{
			ValueRenderOption:    sheetview.RenderFormattedValue,
			DateTimeRenderOption: sheetview.RenderFormattedString,
		})
		if err != nil {
			t.Fatalf("GetValues() error = %v", err)
		}

		want := map[[2]int]string{{0, 0}: "a", {0, 1}: "1.5", {1, 0}: "", {2, 2}: "c3", {3, 3}: ""}
		for pos, value := range want {
			if got := cell(rows, pos[0], pos[1]); got != value {
				t.Errorf("cell %v = %q, want %q", pos, got, value)
			}
		}
		if len(rows) > 4 {
			t.Errorf("GetValues() returned %d rows for a 4 row range", len(rows))
		}
	})

	t.Run("BatchUpdateDocument", func(t *testing.T) {
		doc, err := adapter.BatchUpdateDocument(ctx, id, []sheetview.Mutation{{
			Type:  sheetview.MutAddSheet,
			Sheet: sheetview.SheetProperties{Title: "Extra", RowCount: 10, ColumnCount: 5},
		}})
		if err != nil {
			t.Fatalf("add sheet error = %v", err)
		}
		extra, ok := find(doc, "Extra")
		if !ok || len(doc.Sheets) != 2 {
			t.Fatalf("add sheet result = %+v", doc.Sheets)
		}
		if extra.RowCount != 10 || extra.ColumnCount != 5 || extra.Index != 1 {
			t.Errorf("added sheet = %+v", extra)
		}

		updates := []struct {
			name  string
			props sheetview.SheetProperties
			field string
			check func(sheetview.SheetProperties) bool
		}{
			{"rename", sheetview.SheetProperties{SheetID: extra.SheetID, Title: "Renamed"}, sheetview.FieldsTitle,
				func(p sheetview.SheetProperties) bool { return p.Title == "Renamed" }},
			{"resize", sheetview.SheetProperties{SheetID: extra.SheetID, RowCount: 20, ColumnCount: 4}, sheetview.FieldsGridSize,
				func(p sheetview.SheetProperties) bool { return p.RowCount == 20 && p.ColumnCount == 4 }},
			{"freeze", sheetview.SheetProperties{SheetID: extra.SheetID, FrozenRowCount: 1, FrozenColumnCount: 2}, sheetview.FieldsFrozenSize,
				func(p sheetview.SheetProperties) bool { return p.FrozenRowCount == 1 && p.FrozenColumnCount == 2 }},
			{"unfreeze", sheetview.SheetProperties{SheetID: extra.SheetID}, sheetview.FieldsFrozenSize,
				func(p sheetview.SheetProperties) bool { return p.FrozenRowCount == 0 && p.FrozenColumnCount == 0 }},
		}
		for _, u := range updates {
			doc, err := adapter.BatchUpdateDocument(ctx, id, []sheetview.Mutation{{
				Type:   sheetview.MutUpdateSheetProperties,
				Sheet:  u.props,
				Fields: u.field,
			}})
			if err != nil {
				t.Fatalf("%s error = %v", u.name, err)
			}
			got, ok := doc.Sheet(extra.SheetID)
			if !ok || !u.check(got) {
				t.Errorf("%s result = %+v", u.name, got)
			}
		}

		doc, err = adapter.BatchUpdateDocument(ctx, id, []sheetview.Mutation{{
			Type:  sheetview.MutDeleteSheet,
			Sheet: sheetview.SheetProperties{SheetID: extra.SheetID},
		}})
		if err != nil {
			t.Fatalf("delete sheet error = %v", err)
		}
		if _, ok := doc.Sheet(extra.SheetID); ok || len(doc.Sheets) != 1 {
			t.Errorf("delete sheet result = %+v", doc.Sheets)
		}

		doc, err = adapter.BatchUpdateDocument(ctx, id, []sheetview.Mutation{{
			Type:   sheetview.MutUpdateSpreadsheetProperties,
			Title:  "adaptertest renamed",
			Fields: sheetview.FieldsTitle,
		}})
		if err != nil {
			t.Fatalf("retitle error = %v", err)
		}
		if doc.Title != "adaptertest renamed" {
			t.Errorf("Title = %q after retitle", doc.Title)
		}
	})

	t.Run("LastModified", func(t *testing.T) {
		modified, err := adapter.LastModified(ctx, id)
		if err != nil {
			t.Fatalf("LastModified() error = %v", err)
		}
		if modified.IsZero() || modified.After(time.Now().Add(time.Hour)) {
			t.Errorf("LastModified() = %v", modified)
		}
	})

	t.Run("MissingDocument", func(t *testing.T) {
		if _, err := adapter.GetDocument(ctx, "adaptertest-missing-document"); err == nil {
			t.Error("GetDocument() of a missing document expected error")
		}
	})
}

// cell reads a value from a GetValues result that may omit trailing blanks
func cell(rows [][]string, r, c int) string {
	if r >= len(rows) || c >= len(rows[r]) {
		return ""
	}
	return rows[r][c]
}

func find(doc *sheetview.Document, title string) (sheetview.SheetProperties, bool) {
	for _, s := range doc.Sheets {
		if s.Title == title {
			return s, true
		}
	}
	return sheetview.SheetProperties{}, false
}
