package sheetview

import (
	"context"
	"fmt"
	"time"
)

// Spreadsheet is a remote spreadsheet document: an ordered, title-keyed
// collection of worksheets plus document metadata.
type Spreadsheet struct {
	client *client
	id     string
	doc    *Document

	updated    time.Time
	hasUpdated bool

	sheets *LazyMap[string, *Worksheet]
}

// newSpreadsheet creates a Spreadsheet. doc may be nil, in which case the
// metadata is fetched on first use.
func newSpreadsheet(c *client, id string, doc *Document) *Spreadsheet {
	ss := &Spreadsheet{
		client: c,
		id:     id,
		doc:    doc,
	}
	ss.sheets = NewLazyMap[string, *Worksheet](ss.enumerateWorksheets, nil)
	return ss
}

// ID returns the document id
func (ss *Spreadsheet) ID() string { return ss.id }

// URL returns the address of the document in a browser
func (ss *Spreadsheet) URL() string {
	return fmt.Sprintf(spreadsheetURLTemplate, ss.id)
}

// Title returns the document title
func (ss *Spreadsheet) Title(ctx context.Context) (string, error) {
	if err := ss.ensureDocument(ctx); err != nil {
		return "", err
	}
	return ss.doc.Title, nil
}

// SetTitle renames the document
func (ss *Spreadsheet) SetTitle(ctx context.Context, title string) error {
	doc, err := ss.mutate(ctx, Mutation{
		Type:   MutUpdateSpreadsheetProperties,
		Title:  title,
		Fields: FieldsTitle,
	})
	if err != nil {
		return err
	}
	ss.absorb(doc)
	return nil
}

// Updated returns the last modification time. It comes from a separate
// remote call and is cached until the next Refresh or mutation.
func (ss *Spreadsheet) Updated(ctx context.Context) (time.Time, error) {
	if !ss.hasUpdated {
		t, err := ss.client.lastModified(ctx, ss.id)
		if err != nil {
			return time.Time{}, err
		}
		ss.updated, ss.hasUpdated = t, true
	}
	return ss.updated, nil
}

// Refresh reloads the document metadata and forgets every worksheet handle
func (ss *Spreadsheet) Refresh(ctx context.Context) error {
	doc, err := ss.client.getDocument(ctx, ss.id)
	if err != nil {
		return err
	}
	ss.absorb(doc)
	return nil
}

// Worksheet returns the worksheet with the given title
func (ss *Spreadsheet) Worksheet(ctx context.Context, title string) (*Worksheet, error) {
	return ss.sheets.Get(ctx, title)
}

// WorksheetAt returns the i-th worksheet. Negative indices count from the end.
func (ss *Spreadsheet) WorksheetAt(ctx context.Context, i int) (*Worksheet, error) {
	return ss.sheets.At(ctx, i)
}

// Worksheets returns all worksheets in order
func (ss *Spreadsheet) Worksheets(ctx context.Context) ([]*Worksheet, error) {
	return ss.sheets.Values(ctx)
}

// Titles returns the titles of all worksheets in order
func (ss *Spreadsheet) Titles(ctx context.Context) ([]string, error) {
	return ss.sheets.Keys(ctx)
}

// Len returns the number of worksheets
func (ss *Spreadsheet) Len(ctx context.Context) (int, error) {
	return ss.sheets.Len(ctx)
}

// AddWorksheet creates a new worksheet and returns it
func (ss *Spreadsheet) AddWorksheet(ctx context.Context, title string, rows, cols int) (*Worksheet, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimension, rows, cols)
	}
	doc, err := ss.mutate(ctx, Mutation{
		Type: MutAddSheet,
		Sheet: SheetProperties{
			Title:       title,
			RowCount:    rows,
			ColumnCount: cols,
		},
	})
	if err != nil {
		return nil, err
	}
	ss.absorb(doc)
	return ss.Worksheet(ctx, title)
}

// DeleteWorksheet deletes the worksheet with the given title
func (ss *Spreadsheet) DeleteWorksheet(ctx context.Context, title string) error {
	ws, err := ss.Worksheet(ctx, title)
	if err != nil {
		return err
	}
	doc, err := ss.mutate(ctx, Mutation{
		Type:  MutDeleteSheet,
		Sheet: SheetProperties{SheetID: ws.ID()},
	})
	if err != nil {
		return err
	}
	ss.absorb(doc)
	return nil
}

func (ss *Spreadsheet) String() string {
	return fmt.Sprintf("Spreadsheet(id=%q)", ss.id)
}

// mutate applies a single mutation and keeps the returned snapshot. The
// worksheet collection is left as is; callers decide whether to invalidate it.
func (ss *Spreadsheet) mutate(ctx context.Context, m Mutation) (*Document, error) {
	doc, err := ss.client.mutate(ctx, ss.id, m)
	if err != nil {
		return nil, err
	}
	ss.doc = doc
	ss.hasUpdated = false
	return doc, nil
}

func (ss *Spreadsheet) absorb(doc *Document) {
	ss.doc = doc
	ss.hasUpdated = false
	ss.sheets.Refresh()
}

func (ss *Spreadsheet) ensureDocument(ctx context.Context) error {
	if ss.doc != nil {
		return nil
	}
	doc, err := ss.client.getDocument(ctx, ss.id)
	if err != nil {
		return err
	}
	ss.doc = doc
	return nil
}

func (ss *Spreadsheet) enumerateWorksheets(ctx context.Context) ([]Entry[string, *Worksheet], error) {
	if err := ss.ensureDocument(ctx); err != nil {
		return nil, err
	}
	entries := make([]Entry[string, *Worksheet], len(ss.doc.Sheets))
	for i, props := range ss.doc.Sheets {
		entries[i] = Entry[string, *Worksheet]{Key: props.Title, Value: newWorksheet(ss, props)}
	}
	return entries, nil
}
