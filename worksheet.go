package sheetview

import (
	"context"
	"fmt"
)

// Worksheet is a single named grid of a spreadsheet. It holds the last known
// metadata snapshot of the sheet and a View spanning its full extent; cell
// access on a Worksheet goes through that view.
type Worksheet struct {
	spreadsheet *Spreadsheet
	props       SheetProperties
	full        *View
}

func newWorksheet(ss *Spreadsheet, props SheetProperties) *Worksheet {
	ws := &Worksheet{spreadsheet: ss}
	ws.reset(props)
	return ws
}

// reset replaces the metadata snapshot. The full-extent view is resized in
// place, dropping cached cells and pending writes; rows taken from it earlier
// keep queueing into it.
func (ws *Worksheet) reset(props SheetProperties) {
	ws.props = props
	if ws.full == nil {
		ws.full = newView(ws, 0, props.RowCount, 0, props.ColumnCount)
		return
	}
	ws.full.resize(0, props.RowCount, 0, props.ColumnCount)
}

// ID returns the remote sheet id
func (ws *Worksheet) ID() int64 { return ws.props.SheetID }

// Title returns the sheet title
func (ws *Worksheet) Title() string { return ws.props.Title }

// Index returns the position of the sheet within its spreadsheet
func (ws *Worksheet) Index() int { return ws.props.Index }

// Rows returns the number of rows of the sheet
func (ws *Worksheet) Rows() int { return ws.props.RowCount }

// Cols returns the number of columns of the sheet
func (ws *Worksheet) Cols() int { return ws.props.ColumnCount }

// FrozenRows returns the number of frozen rows
func (ws *Worksheet) FrozenRows() int { return ws.props.FrozenRowCount }

// FrozenCols returns the number of frozen columns
func (ws *Worksheet) FrozenCols() int { return ws.props.FrozenColumnCount }

// Spreadsheet returns the spreadsheet owning the sheet
func (ws *Worksheet) Spreadsheet() *Spreadsheet { return ws.spreadsheet }

// SetTitle renames the sheet
func (ws *Worksheet) SetTitle(ctx context.Context, title string) error {
	props := ws.props
	props.Title = title
	if err := ws.update(ctx, props, FieldsTitle); err != nil {
		return err
	}
	// the spreadsheet indexes its sheets by title
	ws.spreadsheet.sheets.Refresh()
	return nil
}

// SetSize resizes the grid. Both dimensions must be positive.
func (ws *Worksheet) SetSize(ctx context.Context, rows, cols int) error {
	if rows <= 0 || cols <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimension, rows, cols)
	}
	props := ws.props
	props.RowCount = rows
	props.ColumnCount = cols
	return ws.update(ctx, props, FieldsGridSize)
}

// SetRowCount changes the number of rows, keeping the number of columns
func (ws *Worksheet) SetRowCount(ctx context.Context, rows int) error {
	return ws.SetSize(ctx, rows, ws.Cols())
}

// SetColCount changes the number of columns, keeping the number of rows
func (ws *Worksheet) SetColCount(ctx context.Context, cols int) error {
	return ws.SetSize(ctx, ws.Rows(), cols)
}

// SetFrozenSize changes the frozen rows and columns. Zero unfreezes.
func (ws *Worksheet) SetFrozenSize(ctx context.Context, rows, cols int) error {
	if rows < 0 || cols < 0 {
		return fmt.Errorf("%w: frozen %dx%d", ErrInvalidDimension, rows, cols)
	}
	props := ws.props
	props.FrozenRowCount = rows
	props.FrozenColumnCount = cols
	return ws.update(ctx, props, FieldsFrozenSize)
}

// SetFrozenRowCount changes the number of frozen rows
func (ws *Worksheet) SetFrozenRowCount(ctx context.Context, rows int) error {
	return ws.SetFrozenSize(ctx, rows, ws.FrozenCols())
}

// SetFrozenColCount changes the number of frozen columns
func (ws *Worksheet) SetFrozenColCount(ctx context.Context, cols int) error {
	return ws.SetFrozenSize(ctx, ws.FrozenRows(), cols)
}

// Refresh reloads the sheet metadata and drops cached cells and pending writes
func (ws *Worksheet) Refresh(ctx context.Context) error {
	ss := ws.spreadsheet
	doc, err := ss.client.getDocument(ctx, ss.id)
	if err != nil {
		return err
	}
	ss.doc = doc
	title := ws.props.Title
	if err := ws.absorb(doc); err != nil {
		ss.sheets.Refresh()
		return err
	}
	if ws.props.Title != title {
		ss.sheets.Refresh()
	}
	return nil
}

func (ws *Worksheet) update(ctx context.Context, props SheetProperties, fields string) error {
	doc, err := ws.spreadsheet.mutate(ctx, Mutation{
		Type:   MutUpdateSheetProperties,
		Sheet:  props,
		Fields: fields,
	})
	if err != nil {
		return err
	}
	return ws.absorb(doc)
}

func (ws *Worksheet) absorb(doc *Document) error {
	props, ok := doc.Sheet(ws.props.SheetID)
	if !ok {
		return fmt.Errorf("%w: sheet id %d", ErrSheetRemoved, ws.props.SheetID)
	}
	ws.reset(props)
	return nil
}

type viewBounds struct {
	startRow, endRow, startCol, endCol *int
}

// ViewOption restricts the rectangle of a view created by Worksheet.View
type ViewOption func(*viewBounds)

// RowRange limits a view to rows [start,end)
func RowRange(start, end int) ViewOption {
	return func(b *viewBounds) { b.startRow, b.endRow = &start, &end }
}

// ColRange limits a view to columns [start,end)
func ColRange(start, end int) ViewOption {
	return func(b *viewBounds) { b.startCol, b.endCol = &start, &end }
}

// RowsFrom limits a view to rows [start,Rows())
func RowsFrom(start int) ViewOption {
	return func(b *viewBounds) { b.startRow = &start }
}

// ColsFrom limits a view to columns [start,Cols())
func ColsFrom(start int) ViewOption {
	return func(b *viewBounds) { b.startCol = &start }
}

// View creates an independent view over part of the sheet. Unset bounds
// default to the full extent and negative bounds count from the end. A bound
// outside [-extent, extent] fails with ErrIndexOutOfRange; a start past its
// end yields an empty view.
func (ws *Worksheet) View(opts ...ViewOption) (*View, error) {
	var b viewBounds
	for _, opt := range opts {
		opt(&b)
	}
	startRow, endRow, err := resolveBounds(b.startRow, b.endRow, ws.Rows(), "row")
	if err != nil {
		return nil, err
	}
	startCol, endCol, err := resolveBounds(b.startCol, b.endCol, ws.Cols(), "column")
	if err != nil {
		return nil, err
	}
	return newView(ws, startRow, endRow, startCol, endCol), nil
}

func resolveBounds(start, end *int, n int, what string) (int, int, error) {
	resolve := func(p *int, def int) (int, error) {
		if p == nil {
			return def, nil
		}
		i := *p
		if i < 0 {
			i += n
		}
		if i < 0 || i > n {
			return 0, fmt.Errorf("%w: %s bound %d outside 0..%d", ErrIndexOutOfRange, what, *p, n)
		}
		return i, nil
	}
	s, err := resolve(start, 0)
	if err != nil {
		return 0, 0, err
	}
	e, err := resolve(end, n)
	if err != nil {
		return 0, 0, err
	}
	if s > e {
		s = e
	}
	return s, e, nil
}

// The methods below address the full-extent view of the sheet.

// Len returns the number of rows
func (ws *Worksheet) Len() int { return ws.full.Len() }

// Empty reports whether the sheet has no rows or no columns
func (ws *Worksheet) Empty() bool { return ws.full.Empty() }

// Row returns the i-th row of the sheet
func (ws *Worksheet) Row(i int) (*Row, error) { return ws.full.Row(i) }

// At returns the values of the i-th row
func (ws *Worksheet) At(ctx context.Context, i int) ([]string, error) { return ws.full.At(ctx, i) }

// SetAt queues writes replacing the i-th row
func (ws *Worksheet) SetAt(i int, values []string) error { return ws.full.SetAt(i, values) }

// SetRow queues writes replacing the i-th row
func (ws *Worksheet) SetRow(i int, values []any) error { return ws.full.SetRow(i, values) }

// SetRowSlice queues writes replacing rows [start,stop)
func (ws *Worksheet) SetRowSlice(start, stop int, rows [][]any) error {
	return ws.full.SetRowSlice(start, stop, rows)
}

// Slice returns an independent view over rows [start,stop)
func (ws *Worksheet) Slice(start, stop int) *View { return ws.full.Slice(start, stop) }

// Values returns every cell of the sheet
func (ws *Worksheet) Values(ctx context.Context) ([][]string, error) { return ws.full.Values(ctx) }

// Pending returns the number of queued writes
func (ws *Worksheet) Pending() int { return ws.full.Pending() }

// Commit sends the queued writes
func (ws *Worksheet) Commit(ctx context.Context) error { return ws.full.Commit(ctx) }

// Discard drops cached cells and pending writes without reloading metadata
func (ws *Worksheet) Discard() { ws.full.Refresh() }

// With runs fn against the full-extent view and commits afterwards
func (ws *Worksheet) With(ctx context.Context, fn func(*View) error) error {
	return ws.full.With(ctx, fn)
}

func (ws *Worksheet) String() string {
	return fmt.Sprintf("Worksheet(id=%d, title=%q, %dx%d)", ws.ID(), ws.Title(), ws.Rows(), ws.Cols())
}
