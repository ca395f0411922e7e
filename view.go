package sheetview

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

type cellKey struct {
	row, col int
}

type queuedWrite struct {
	row, col int
	value    string
}

// View is a rectangular window [startRow,endRow) x [startCol,endCol) over the
// cells of a worksheet. The whole rectangle is fetched on the first read of a
// cell that is not cached yet. Writes are queued and only reach the remote
// spreadsheet on Commit.
//
// A View owns its cache and queue; two views over the same cells do not see
// each other's pending writes.
type View struct {
	FixedList

	sheet    *Worksheet
	startRow int
	endRow   int
	startCol int
	endCol   int

	values  map[cellKey]string
	fetched bool
	queue   []queuedWrite
}

func newView(sheet *Worksheet, startRow, endRow, startCol, endCol int) *View {
	return &View{
		sheet:    sheet,
		startRow: startRow,
		endRow:   endRow,
		startCol: startCol,
		endCol:   endCol,
		values:   make(map[cellKey]string),
	}
}

// Rows returns the number of rows in the view
func (v *View) Rows() int { return v.endRow - v.startRow }

// Cols returns the number of columns in the view
func (v *View) Cols() int { return v.endCol - v.startCol }

// Len returns the number of rows in the view
func (v *View) Len() int { return v.Rows() }

// StartRow returns the first worksheet row of the view
func (v *View) StartRow() int { return v.startRow }

// EndRow returns the worksheet row just past the view
func (v *View) EndRow() int { return v.endRow }

// StartCol returns the first worksheet column of the view
func (v *View) StartCol() int { return v.startCol }

// EndCol returns the worksheet column just past the view
func (v *View) EndCol() int { return v.endCol }

// Empty reports whether the view has no rows or no columns
func (v *View) Empty() bool { return v.Rows() == 0 || v.Cols() == 0 }

// Pending returns the number of queued, uncommitted writes
func (v *View) Pending() int { return len(v.queue) }

// Row returns the i-th row of the view. Negative indices count from the end.
func (v *View) Row(i int) (*Row, error) {
	n := v.Rows()
	if i < 0 {
		i += n
	}
	if i < 0 || i >= n {
		return nil, fmt.Errorf("%w: row %d of %d", ErrIndexOutOfRange, i, n)
	}
	return &Row{view: v, row: v.startRow + i, startCol: v.startCol, endCol: v.endCol}, nil
}

// At returns the values of the i-th row
func (v *View) At(ctx context.Context, i int) ([]string, error) {
	r, err := v.Row(i)
	if err != nil {
		return nil, err
	}
	return r.Values(ctx)
}

// SetAt queues writes replacing the whole i-th row
func (v *View) SetAt(i int, values []string) error {
	anys := make([]any, len(values))
	for j, s := range values {
		anys[j] = s
	}
	return v.SetRow(i, anys)
}

// SetRow queues writes replacing the whole i-th row. len(values) must equal Cols().
func (v *View) SetRow(i int, values []any) error {
	r, err := v.Row(i)
	if err != nil {
		return err
	}
	return r.SetSlice(0, r.Len(), values)
}

// SetRowSlice queues writes replacing rows [start,stop). The number of rows
// given must equal the length of the normalized slice.
func (v *View) SetRowSlice(start, stop int, rows [][]any) error {
	start, stop = sliceBounds(start, stop, v.Rows())
	if len(rows) != stop-start {
		return fmt.Errorf("%w: tried to assign %d rows to %d row slice", ErrLengthMismatch, len(rows), stop-start)
	}
	// reject before queueing anything so a bad row leaves no partial writes
	cells := make([][]string, len(rows))
	for i, values := range rows {
		if len(values) != v.Cols() {
			return fmt.Errorf("%w: tried to assign %d values to %d element row", ErrLengthMismatch, len(values), v.Cols())
		}
		cells[i] = make([]string, len(values))
		for j, value := range values {
			s, err := CellString(value)
			if err != nil {
				return err
			}
			cells[i][j] = s
		}
	}
	for i, row := range cells {
		for j, s := range row {
			v.queueWrite(v.startRow+start+i, v.startCol+j, s)
		}
	}
	return nil
}

// Slice returns a new view over rows [start,stop) of this view. Bounds follow
// slice semantics: negative values count from the end, and out-of-range
// values are clamped.
func (v *View) Slice(start, stop int) *View {
	start, stop = sliceBounds(start, stop, v.Rows())
	return newView(v.sheet, v.startRow+start, v.startRow+stop, v.startCol, v.endCol)
}

// SliceStep is Slice with an explicit step; only a step of 1 is supported.
func (v *View) SliceStep(start, stop, step int) (*View, error) {
	if step != 1 {
		return nil, ErrStepNotSupported
	}
	return v.Slice(start, stop), nil
}

// Values returns every cell of the view, row by row
func (v *View) Values(ctx context.Context) ([][]string, error) {
	return Collect[[]string](ctx, v)
}

// resize moves the view to new bounds and drops its cache and queue
func (v *View) resize(startRow, endRow, startCol, endCol int) {
	v.startRow, v.endRow = startRow, endRow
	v.startCol, v.endCol = startCol, endCol
	v.Refresh()
}

// Refresh drops cached cells and discards pending writes
func (v *View) Refresh() {
	v.values = make(map[cellKey]string)
	v.fetched = false
	v.queue = nil
}

// Commit sends the queued writes in one batched request, one entry per
// queued write in queue order. Every entry for a cell carries the last value
// queued for it. On failure the queue is kept intact so Commit can be retried.
func (v *View) Commit(ctx context.Context) error {
	if len(v.queue) == 0 {
		return nil
	}

	title := v.sheet.Title()
	latest := make(map[cellKey]string, len(v.queue))
	for _, w := range v.queue {
		latest[cellKey{w.row, w.col}] = w.value
	}

	data := make([]ValueRange, len(v.queue))
	for i, w := range v.queue {
		data[i] = ValueRange{
			Range:  FormatRangeA1(title, w.row, w.row+1, w.col, w.col+1),
			Values: [][]string{{latest[cellKey{w.row, w.col}]}},
		}
	}

	ss := v.sheet.spreadsheet
	if err := ss.client.writeValues(ctx, ss.id, data); err != nil {
		return err
	}
	v.queue = nil
	return nil
}

// With runs fn and commits the queued writes afterwards, including when fn
// fails or panics.
func (v *View) With(ctx context.Context, fn func(*View) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			_ = v.Commit(ctx)
			panic(r)
		}
		if cerr := v.Commit(ctx); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}()
	return fn(v)
}

func (v *View) String() string {
	var b strings.Builder
	b.WriteString("View[")
	for i := 0; i < v.Rows(); i++ {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(v.cachedRow(v.startRow+i, v.startCol, v.endCol))
	}
	b.WriteString("]")
	return b.String()
}

func (v *View) cachedRow(row, startCol, endCol int) string {
	cells := make([]string, 0, endCol-startCol)
	for col := startCol; col < endCol; col++ {
		cells = append(cells, fmt.Sprintf("%q", v.values[cellKey{row, col}]))
	}
	return "[" + strings.Join(cells, " ") + "]"
}

func (v *View) cell(ctx context.Context, row, col int) (string, error) {
	if value, ok := v.values[cellKey{row, col}]; ok {
		return value, nil
	}
	if err := v.ensureFetched(ctx); err != nil {
		return "", err
	}
	return v.values[cellKey{row, col}], nil
}

func (v *View) queueWrite(row, col int, value string) {
	v.values[cellKey{row, col}] = value
	v.queue = append(v.queue, queuedWrite{row: row, col: col, value: value})
}

// ensureFetched loads the whole rectangle once. Pending writes stay visible
// on top of the fetched values.
func (v *View) ensureFetched(ctx context.Context) error {
	if v.fetched {
		return nil
	}
	if v.Empty() {
		v.fetched = true
		return nil
	}

	ss := v.sheet.spreadsheet
	rng := FormatRangeA1(v.sheet.Title(), v.startRow, v.endRow, v.startCol, v.endCol)
	rows, err := ss.client.getValues(ctx, ss.id, rng)
	if err != nil {
		return err
	}

	values := make(map[cellKey]string)
	for i, cells := range rows {
		row := v.startRow + i
		if row >= v.endRow {
			break
		}
		for j, value := range cells {
			col := v.startCol + j
			if col >= v.endCol {
				break
			}
			values[cellKey{row, col}] = value
		}
	}
	for _, w := range v.queue {
		values[cellKey{w.row, w.col}] = w.value
	}
	v.values = values
	v.fetched = true
	return nil
}

// Row is a single row of a View, restricted to a column range
type Row struct {
	FixedList

	view     *View
	row      int
	startCol int
	endCol   int
}

// Len returns the number of columns in the row
func (r *Row) Len() int { return r.endCol - r.startCol }

// Empty reports whether the row has no columns
func (r *Row) Empty() bool { return r.Len() == 0 }

// Index returns the worksheet row number of the row
func (r *Row) Index() int { return r.row }

func (r *Row) column(i int) (int, error) {
	var col int
	if i < 0 {
		col = r.endCol + i
	} else {
		col = r.startCol + i
	}
	if col < r.startCol || col >= r.endCol {
		return 0, fmt.Errorf("%w: column %d", ErrIndexOutOfRange, col)
	}
	return col, nil
}

// At returns the value of the i-th cell. Negative indices count from the end.
// Blank cells read as "".
func (r *Row) At(ctx context.Context, i int) (string, error) {
	col, err := r.column(i)
	if err != nil {
		return "", err
	}
	return r.view.cell(ctx, r.row, col)
}

// Get is an alias of At
func (r *Row) Get(ctx context.Context, i int) (string, error) {
	return r.At(ctx, i)
}

// Set queues a write of value to the i-th cell. See CellString for how
// value is converted.
func (r *Row) Set(i int, value any) error {
	col, err := r.column(i)
	if err != nil {
		return err
	}
	s, err := CellString(value)
	if err != nil {
		return err
	}
	r.view.queueWrite(r.row, col, s)
	return nil
}

// SetAt queues a write of a string value to the i-th cell
func (r *Row) SetAt(i int, value string) error {
	return r.Set(i, value)
}

// SetSlice queues writes for cells [start,stop). len(values) must equal the
// length of the normalized slice.
func (r *Row) SetSlice(start, stop int, values []any) error {
	start, stop = sliceBounds(start, stop, r.Len())
	if len(values) != stop-start {
		return fmt.Errorf("%w: tried to assign %d values to %d element slice", ErrLengthMismatch, len(values), stop-start)
	}
	strs := make([]string, len(values))
	for i, value := range values {
		s, err := CellString(value)
		if err != nil {
			return err
		}
		strs[i] = s
	}
	for i, s := range strs {
		r.view.queueWrite(r.row, r.startCol+start+i, s)
	}
	return nil
}

// Slice returns the cells [start,stop) of the row as a new Row sharing the
// same view.
func (r *Row) Slice(start, stop int) *Row {
	start, stop = sliceBounds(start, stop, r.Len())
	return &Row{view: r.view, row: r.row, startCol: r.startCol + start, endCol: r.startCol + stop}
}

// SliceStep is Slice with an explicit step; only a step of 1 is supported.
func (r *Row) SliceStep(start, stop, step int) (*Row, error) {
	if step != 1 {
		return nil, ErrStepNotSupported
	}
	return r.Slice(start, stop), nil
}

// Values returns every cell of the row
func (r *Row) Values(ctx context.Context) ([]string, error) {
	if r.Empty() {
		return []string{}, nil
	}
	if err := r.view.ensureFetched(ctx); err != nil {
		return nil, err
	}
	out := make([]string, r.Len())
	for i := range out {
		out[i] = r.view.values[cellKey{r.row, r.startCol + i}]
	}
	return out, nil
}

func (r *Row) String() string {
	return r.view.cachedRow(r.row, r.startCol, r.endCol)
}

// sliceBounds normalizes [start,stop) against a length n the way slice
// expressions with negative indices do.
func sliceBounds(start, stop, n int) (int, int) {
	clamp := func(i int) int {
		if i < 0 {
			i += n
			if i < 0 {
				i = 0
			}
		} else if i > n {
			i = n
		}
		return i
	}
	start, stop = clamp(start), clamp(stop)
	if stop < start {
		stop = start
	}
	return start, stop
}
