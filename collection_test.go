package sheetview_test

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/ideamans/go-sheetview"
	"github.com/rs/zerolog"
)

func newTestCollection() (*fakeAdapter, *sheetview.Collection) {
	fake := newFakeAdapter()
	fake.addDoc("doc-1", "Budget", 5, 4, "Sheet1")
	fake.addDoc("doc-2", "Roster", 3, 3, "Members", "Archive")
	return fake, sheetview.New(fake, nil)
}

func TestCollection_DirectLookup(t *testing.T) {
	ctx := context.Background()
	fake, c := newTestCollection()

	ss, err := c.Spreadsheet(ctx, "doc-2")
	if err != nil {
		t.Fatalf("Spreadsheet() error = %v", err)
	}
	if title, _ := ss.Title(ctx); title != "Roster" {
		t.Errorf("Title() = %q, want Roster", title)
	}
	if fake.calls["ListDocuments"] != 0 || fake.calls["GetDocument"] != 1 {
		t.Errorf("calls = %v, want one GetDocument and no listing", fake.calls)
	}

	again, _ := c.Spreadsheet(ctx, "doc-2")
	if again != ss || fake.calls["GetDocument"] != 1 {
		t.Error("second lookup was not served from the cache")
	}
}

func TestCollection_UnknownID(t *testing.T) {
	ctx := context.Background()
	fake, c := newTestCollection()

	_, err := c.Spreadsheet(ctx, "nope")
	if !errors.Is(err, sheetview.ErrKeyNotFound) {
		t.Errorf("Spreadsheet(nope) error = %v, want ErrKeyNotFound", err)
	}
	if fake.calls["ListDocuments"] != 1 {
		t.Errorf("ListDocuments called %d times, want 1", fake.calls["ListDocuments"])
	}
}

func TestCollection_Listing(t *testing.T) {
	ctx := context.Background()
	fake, c := newTestCollection()

	ids, err := c.IDs(ctx)
	if err != nil {
		t.Fatalf("IDs() error = %v", err)
	}
	if want := []string{"doc-1", "doc-2"}; !reflect.DeepEqual(ids, want) {
		t.Errorf("IDs() = %v, want %v", ids, want)
	}
	if n, _ := c.Len(ctx); n != 2 {
		t.Errorf("Len() = %d, want 2", n)
	}

	last, err := c.SpreadsheetAt(ctx, -1)
	if err != nil {
		t.Fatalf("SpreadsheetAt(-1) error = %v", err)
	}
	if last.ID() != "doc-2" {
		t.Errorf("SpreadsheetAt(-1).ID() = %q", last.ID())
	}

	// listed spreadsheets load metadata lazily
	if fake.calls["GetDocument"] != 0 {
		t.Errorf("listing fetched %d documents", fake.calls["GetDocument"])
	}
	titles, err := last.Titles(ctx)
	if err != nil {
		t.Fatalf("Titles() error = %v", err)
	}
	if want := []string{"Members", "Archive"}; !reflect.DeepEqual(titles, want) {
		t.Errorf("Titles() = %v, want %v", titles, want)
	}
	if fake.calls["GetDocument"] != 1 {
		t.Errorf("GetDocument called %d times, want 1", fake.calls["GetDocument"])
	}

	all, _ := c.Spreadsheets(ctx)
	if len(all) != 2 || fake.calls["ListDocuments"] != 1 {
		t.Errorf("Spreadsheets() = %d entries after %d listings", len(all), fake.calls["ListDocuments"])
	}

	fake.addDoc("doc-3", "Later", 1, 1, "Sheet1")
	c.Refresh()
	if n, _ := c.Len(ctx); n != 3 {
		t.Errorf("Len() after Refresh = %d, want 3", n)
	}
}

func TestCollection_ListingFailure(t *testing.T) {
	ctx := context.Background()
	fake, c := newTestCollection()
	fake.failList = errFake

	_, err := c.IDs(ctx)
	if !errors.Is(err, sheetview.ErrRemoteOperationFailed) || !errors.Is(err, errFake) {
		t.Errorf("IDs() error = %v, want wrapped remote failure", err)
	}
}

func TestCollection_CreateSpreadsheet(t *testing.T) {
	ctx := context.Background()

	t.Run("default size", func(t *testing.T) {
		fake, c := newTestCollection()
		ss, err := c.CreateSpreadsheet(ctx, "Fresh", sheetview.DefaultRows, sheetview.DefaultCols)
		if err != nil {
			t.Fatalf("CreateSpreadsheet() error = %v", err)
		}
		if title, _ := ss.Title(ctx); title != "Fresh" {
			t.Errorf("Title() = %q, want Fresh", title)
		}
		if fake.calls["BatchUpdateDocument"] != 0 {
			t.Error("default size triggered a resize")
		}
	})

	t.Run("resized", func(t *testing.T) {
		fake, c := newTestCollection()
		ss, err := c.CreateSpreadsheet(ctx, "Small", 5, 3)
		if err != nil {
			t.Fatalf("CreateSpreadsheet() error = %v", err)
		}
		ws, err := ss.WorksheetAt(ctx, 0)
		if err != nil {
			t.Fatalf("WorksheetAt(0) error = %v", err)
		}
		if ws.Rows() != 5 || ws.Cols() != 3 {
			t.Errorf("first sheet = %dx%d, want 5x3", ws.Rows(), ws.Cols())
		}
		if m := fake.mutations[0]; m.Fields != sheetview.FieldsGridSize {
			t.Errorf("mutation fields = %q", m.Fields)
		}

		ids, _ := c.IDs(ctx)
		if len(ids) != 3 || ids[2] != ss.ID() {
			t.Errorf("IDs() = %v, want the new document last", ids)
		}
	})

	t.Run("invalid size", func(t *testing.T) {
		fake, c := newTestCollection()
		if _, err := c.CreateSpreadsheet(ctx, "Bad", 0, 3); !errors.Is(err, sheetview.ErrInvalidDimension) {
			t.Errorf("CreateSpreadsheet() error = %v, want ErrInvalidDimension", err)
		}
		if fake.calls["CreateDocument"] != 0 {
			t.Error("invalid size reached the adapter")
		}
	})
}

func TestCollection_Logging(t *testing.T) {
	ctx := context.Background()
	fake := newFakeAdapter()
	fake.addDoc("doc-1", "Budget", 5, 4, "Sheet1")

	var buf bytes.Buffer
	c := sheetview.New(fake, &sheetview.Config{
		Logger: zerolog.New(&buf).Level(zerolog.DebugLevel),
	})

	if _, err := c.Spreadsheet(ctx, "missing"); err == nil {
		t.Fatal("Spreadsheet(missing) expected error")
	}
	out := buf.String()
	for _, want := range []string{"Fetching document metadata", "Direct lookup failed", `"document_id":"missing"`, "Listing documents"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}
