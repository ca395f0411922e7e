package excel

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ideamans/go-sheetview"
	"github.com/xuri/excelize/v2"
)

const fileExt = ".xlsx"

// Adapter implements the sheetview.Adapter interface over a directory of
// Excel workbooks. Each workbook is one spreadsheet, identified by its file
// name without the extension.
type Adapter struct {
	config *Config
	mu     sync.RWMutex
}

var _ sheetview.Adapter = (*Adapter)(nil)

// New creates a new Excel adapter with the given configuration. The
// directory is created if it does not exist.
func New(config *Config) (*Adapter, error) {
	if config == nil {
		return nil, fmt.Errorf("config is required")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(config.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	// Create a copy of config to avoid external modifications
	configCopy := *config

	return &Adapter{
		config: &configCopy,
	}, nil
}

func (a *Adapter) path(id string) string {
	return filepath.Join(a.config.Dir, id+fileExt)
}

func (a *Adapter) open(id string) (*excelize.File, error) {
	f, err := excelize.OpenFile(a.path(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, id)
		}
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	return f, nil
}

// ListDocuments returns the ids of all workbooks in the directory
func (a *Adapter) ListDocuments(ctx context.Context) ([]string, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(a.config.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		// skip lock files Excel leaves next to open workbooks
		if e.IsDir() || strings.HasPrefix(name, "~$") || filepath.Ext(name) != fileExt {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, fileExt))
	}
	return ids, nil
}

// GetDocument reads the workbook title and the properties of every sheet
func (a *Adapter) GetDocument(ctx context.Context, id string) (*sheetview.Document, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := a.open(id)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return readDocument(f, id)
}

// BatchUpdateDocument applies the mutations in order and saves the workbook
// once. Nothing is saved if any mutation fails.
func (a *Adapter) BatchUpdateDocument(ctx context.Context, id string, mutations []sheetview.Mutation) (*sheetview.Document, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := a.open(id)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	for _, m := range mutations {
		if err := applyMutation(f, m); err != nil {
			return nil, err
		}
	}

	if err := f.Save(); err != nil {
		return nil, fmt.Errorf("failed to save Excel file: %w", err)
	}
	return readDocument(f, id)
}

// GetValues reads a rectangle of cells. Trailing blank cells and rows are
// omitted, so rows may be shorter than the requested range.
func (a *Adapter) GetValues(ctx context.Context, id, rangeA1 string, opts sheetview.ReadOptions) ([][]string, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	title, startRow, endRow, startCol, endCol, err := sheetview.ParseRangeA1(rangeA1)
	if err != nil {
		return nil, err
	}

	f, err := a.open(id)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if err := requireSheet(f, title); err != nil {
		return nil, err
	}

	var readOpts []excelize.Options
	if opts.ValueRenderOption == sheetview.RenderUnformattedValue {
		readOpts = append(readOpts, excelize.Options{RawCellValue: true})
	}
	rows, err := f.GetRows(title, readOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}

	values := make([][]string, 0, endRow-startRow)
	for r := startRow; r < endRow && r < len(rows); r++ {
		row := rows[r]
		cells := make([]string, 0, endCol-startCol)
		for c := startCol; c < endCol && c < len(row); c++ {
			cells = append(cells, row[c])
		}
		values = append(values, trimBlank(cells))
	}
	for len(values) > 0 && len(values[len(values)-1]) == 0 {
		values = values[:len(values)-1]
	}
	return values, nil
}

// BatchWriteValues writes every range and saves the workbook once. With
// USER_ENTERED input, formulas, numbers and booleans are stored typed;
// otherwise every value is stored as a string.
func (a *Adapter) BatchWriteValues(ctx context.Context, id string, data []sheetview.ValueRange, valueInputOption string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := a.open(id)
	if err != nil {
		return err
	}
	defer f.Close()

	// writing cells grows the used range; the grid size must stay as it was
	sizes := make(map[string][2]int)
	for _, d := range data {
		title, startRow, _, startCol, _, err := sheetview.ParseRangeA1(d.Range)
		if err != nil {
			return err
		}
		if _, ok := sizes[title]; !ok {
			if err := requireSheet(f, title); err != nil {
				return err
			}
			rows, cols := sheetSize(f, title)
			sizes[title] = [2]int{rows, cols}
		}
		for i, row := range d.Values {
			for j, value := range row {
				cell, err := excelize.CoordinatesToCellName(startCol+j+1, startRow+i+1)
				if err != nil {
					return err
				}
				if err := writeCell(f, title, cell, value, valueInputOption); err != nil {
					return fmt.Errorf("failed to write cell %s: %w", cell, err)
				}
			}
		}
	}
	for title, size := range sizes {
		if err := setSize(f, title, size[0], size[1]); err != nil {
			return err
		}
	}

	if err := f.Save(); err != nil {
		return fmt.Errorf("failed to save Excel file: %w", err)
	}
	return nil
}

// CreateDocument creates a new workbook with one default-sized sheet
func (a *Adapter) CreateDocument(ctx context.Context, title string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}

	id := uuid.NewString()
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetDocProps(&excelize.DocProperties{Title: title}); err != nil {
		return "", fmt.Errorf("failed to set document properties: %w", err)
	}
	if err := setSize(f, f.GetSheetName(0), sheetview.DefaultRows, sheetview.DefaultCols); err != nil {
		return "", err
	}
	if err := f.SaveAs(a.path(id)); err != nil {
		return "", fmt.Errorf("failed to save Excel file: %w", err)
	}
	return id, nil
}

// LastModified returns the modification time of the workbook file
func (a *Adapter) LastModified(ctx context.Context, id string) (time.Time, error) {
	if err := ctx.Err(); err != nil {
		return time.Time{}, err
	}
	info, err := os.Stat(a.path(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return time.Time{}, fmt.Errorf("%w: %s", ErrDocumentNotFound, id)
		}
		return time.Time{}, fmt.Errorf("failed to stat Excel file: %w", err)
	}
	return info.ModTime(), nil
}

func readDocument(f *excelize.File, id string) (*sheetview.Document, error) {
	props, err := f.GetDocProps()
	if err != nil {
		return nil, fmt.Errorf("failed to get document properties: %w", err)
	}

	doc := &sheetview.Document{ID: id, Title: props.Title}
	if doc.Title == "" {
		doc.Title = id
	}

	ids := make(map[string]int)
	for sheetID, name := range f.GetSheetMap() {
		ids[name] = sheetID
	}

	for i, name := range f.GetSheetList() {
		rows, cols := sheetSize(f, name)
		frozenRows, frozenCols, err := frozenSize(f, name)
		if err != nil {
			return nil, err
		}
		doc.Sheets = append(doc.Sheets, sheetview.SheetProperties{
			SheetID:           int64(ids[name]),
			Title:             name,
			Index:             i,
			RowCount:          rows,
			ColumnCount:       cols,
			FrozenRowCount:    frozenRows,
			FrozenColumnCount: frozenCols,
		})
	}
	return doc, nil
}

func applyMutation(f *excelize.File, m sheetview.Mutation) error {
	switch m.Type {
	case sheetview.MutAddSheet:
		if idx, _ := f.GetSheetIndex(m.Sheet.Title); idx >= 0 {
			return fmt.Errorf("%w: %s", ErrSheetExists, m.Sheet.Title)
		}
		if _, err := f.NewSheet(m.Sheet.Title); err != nil {
			return fmt.Errorf("failed to create sheet: %w", err)
		}
		return setSize(f, m.Sheet.Title, m.Sheet.RowCount, m.Sheet.ColumnCount)

	case sheetview.MutDeleteSheet:
		name, err := sheetName(f, m.Sheet.SheetID)
		if err != nil {
			return err
		}
		if f.SheetCount <= 1 {
			return ErrLastSheet
		}
		if err := f.DeleteSheet(name); err != nil {
			return fmt.Errorf("failed to delete sheet: %w", err)
		}
		return nil

	case sheetview.MutUpdateSheetProperties:
		name, err := sheetName(f, m.Sheet.SheetID)
		if err != nil {
			return err
		}
		switch m.Fields {
		case sheetview.FieldsTitle:
			if err := f.SetSheetName(name, m.Sheet.Title); err != nil {
				return fmt.Errorf("failed to rename sheet: %w", err)
			}
			return nil
		case sheetview.FieldsGridSize:
			return setSize(f, name, m.Sheet.RowCount, m.Sheet.ColumnCount)
		case sheetview.FieldsFrozenSize:
			return setFrozenSize(f, name, m.Sheet.FrozenRowCount, m.Sheet.FrozenColumnCount)
		}
		return fmt.Errorf("%w: sheet fields %q", ErrUnsupportedMutation, m.Fields)

	case sheetview.MutUpdateSpreadsheetProperties:
		if m.Fields != sheetview.FieldsTitle {
			return fmt.Errorf("%w: spreadsheet fields %q", ErrUnsupportedMutation, m.Fields)
		}
		props, err := f.GetDocProps()
		if err != nil {
			return fmt.Errorf("failed to get document properties: %w", err)
		}
		props.Title = m.Title
		if err := f.SetDocProps(props); err != nil {
			return fmt.Errorf("failed to set document properties: %w", err)
		}
		return nil
	}
	return fmt.Errorf("%w: type %d", ErrUnsupportedMutation, m.Type)
}

func requireSheet(f *excelize.File, title string) error {
	idx, err := f.GetSheetIndex(title)
	if err != nil {
		return fmt.Errorf("failed to get sheet index: %w", err)
	}
	if idx == -1 {
		return fmt.Errorf("%w: %s", ErrSheetNotFound, title)
	}
	return nil
}

func sheetName(f *excelize.File, id int64) (string, error) {
	name, ok := f.GetSheetMap()[int(id)]
	if !ok {
		return "", fmt.Errorf("%w: id %d", ErrSheetNotFound, id)
	}
	return name, nil
}

// sheetSize reads the grid size from the sheet dimension, e.g. A1:Z1000 is
// 1000 rows by 26 columns. Sheets without a dimension get the default size.
func sheetSize(f *excelize.File, name string) (int, int) {
	ref, err := f.GetSheetDimension(name)
	if err != nil || ref == "" {
		return sheetview.DefaultRows, sheetview.DefaultCols
	}
	corner := ref
	if _, last, ok := strings.Cut(ref, ":"); ok {
		corner = last
	}
	col, row, err := excelize.CellNameToCoordinates(corner)
	if err != nil {
		return sheetview.DefaultRows, sheetview.DefaultCols
	}
	return row, col
}

func setSize(f *excelize.File, name string, rows, cols int) error {
	corner, err := excelize.CoordinatesToCellName(cols, rows)
	if err != nil {
		return fmt.Errorf("invalid grid size %dx%d: %w", rows, cols, err)
	}
	if err := f.SetSheetDimension(name, "A1:"+corner); err != nil {
		return fmt.Errorf("failed to set sheet dimension: %w", err)
	}
	return nil
}

func frozenSize(f *excelize.File, name string) (int, int, error) {
	panes, err := f.GetPanes(name)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get panes: %w", err)
	}
	if !panes.Freeze {
		return 0, 0, nil
	}
	return panes.YSplit, panes.XSplit, nil
}

func setFrozenSize(f *excelize.File, name string, rows, cols int) error {
	if rows == 0 && cols == 0 {
		if err := f.SetPanes(name, &excelize.Panes{}); err != nil {
			return fmt.Errorf("failed to unfreeze panes: %w", err)
		}
		return nil
	}

	topLeft, err := excelize.CoordinatesToCellName(cols+1, rows+1)
	if err != nil {
		return err
	}
	pane := "bottomRight"
	switch {
	case cols == 0:
		pane = "bottomLeft"
	case rows == 0:
		pane = "topRight"
	}
	if err := f.SetPanes(name, &excelize.Panes{
		Freeze:      true,
		XSplit:      cols,
		YSplit:      rows,
		TopLeftCell: topLeft,
		ActivePane:  pane,
		Selection: []excelize.Selection{
			{SQRef: topLeft, ActiveCell: topLeft, Pane: pane},
		},
	}); err != nil {
		return fmt.Errorf("failed to freeze panes: %w", err)
	}
	return nil
}

func writeCell(f *excelize.File, sheet, cell, value, valueInputOption string) error {
	if valueInputOption != sheetview.InputUserEntered {
		return f.SetCellStr(sheet, cell, value)
	}
	switch {
	case strings.HasPrefix(value, "=") && len(value) > 1:
		return f.SetCellFormula(sheet, cell, value[1:])
	case strings.EqualFold(value, "TRUE"), strings.EqualFold(value, "FALSE"):
		return f.SetCellBool(sheet, cell, strings.EqualFold(value, "TRUE"))
	}
	if n, err := strconv.ParseFloat(value, 64); err == nil && !math.IsInf(n, 0) && !math.IsNaN(n) {
		return f.SetCellFloat(sheet, cell, n, -1, 64)
	}
	return f.SetCellStr(sheet, cell, value)
}

func trimBlank(cells []string) []string {
	for len(cells) > 0 && cells[len(cells)-1] == "" {
		cells = cells[:len(cells)-1]
	}
	return cells
}
