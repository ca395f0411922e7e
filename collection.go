package sheetview

import (
	"context"
	"fmt"
)

// Collection is the set of spreadsheet documents reachable through an
// Adapter, keyed by document id. Listing all documents is deferred until it
// is needed; looking up a single id fetches just that document.
type Collection struct {
	client *client
	docs   *LazyMap[string, *Spreadsheet]
}

func newCollection(c *client) *Collection {
	col := &Collection{client: c}
	col.docs = NewLazyMap[string, *Spreadsheet](col.enumerateSpreadsheets, col.constructSpreadsheet)
	col.docs.onMiss = func(id string, err error) {
		c.log.Debug().Err(err).Str("document_id", id).Msg("Direct lookup failed, listing all documents")
	}
	return col
}

// Spreadsheet returns the document with the given id
func (c *Collection) Spreadsheet(ctx context.Context, id string) (*Spreadsheet, error) {
	return c.docs.Get(ctx, id)
}

// SpreadsheetAt returns the i-th document of the listing
func (c *Collection) SpreadsheetAt(ctx context.Context, i int) (*Spreadsheet, error) {
	return c.docs.At(ctx, i)
}

// Spreadsheets returns all documents in listing order
func (c *Collection) Spreadsheets(ctx context.Context) ([]*Spreadsheet, error) {
	return c.docs.Values(ctx)
}

// IDs returns the ids of all documents in listing order
func (c *Collection) IDs(ctx context.Context) ([]string, error) {
	return c.docs.Keys(ctx)
}

// Len returns the number of documents
func (c *Collection) Len(ctx context.Context) (int, error) {
	return c.docs.Len(ctx)
}

// Refresh forgets every cached document
func (c *Collection) Refresh() {
	c.docs.Refresh()
}

// CreateSpreadsheet creates a new document whose first worksheet has the
// given size and returns it.
func (c *Collection) CreateSpreadsheet(ctx context.Context, title string, rows, cols int) (*Spreadsheet, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimension, rows, cols)
	}
	id, err := c.client.createDocument(ctx, title)
	if err != nil {
		return nil, err
	}
	c.docs.Refresh()
	ss, err := c.docs.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if rows != DefaultRows || cols != DefaultCols {
		ws, err := ss.WorksheetAt(ctx, 0)
		if err != nil {
			return nil, err
		}
		if err := ws.SetSize(ctx, rows, cols); err != nil {
			return nil, err
		}
	}
	return ss, nil
}

func (c *Collection) enumerateSpreadsheets(ctx context.Context) ([]Entry[string, *Spreadsheet], error) {
	ids, err := c.client.listDocuments(ctx)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry[string, *Spreadsheet], len(ids))
	for i, id := range ids {
		entries[i] = Entry[string, *Spreadsheet]{Key: id, Value: newSpreadsheet(c.client, id, nil)}
	}
	return entries, nil
}

func (c *Collection) constructSpreadsheet(ctx context.Context, id string) (*Spreadsheet, error) {
	doc, err := c.client.getDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	return newSpreadsheet(c.client, id, doc), nil
}
