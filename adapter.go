package sheetview

import (
	"context"
	"time"
)

// MutationType represents the kind of a document mutation
type MutationType int

const (
	MutAddSheet MutationType = iota
	MutDeleteSheet
	MutUpdateSheetProperties
	MutUpdateSpreadsheetProperties
)

// Field masks used with MutUpdateSheetProperties and MutUpdateSpreadsheetProperties.
const (
	FieldsTitle      = "title"
	FieldsGridSize   = "gridProperties(rowCount,columnCount)"
	FieldsFrozenSize = "gridProperties(frozenRowCount,frozenColumnCount)"
)

// Mutation represents a single structural or property-changing operation on a document
type Mutation struct {
	Type MutationType

	// Sheet carries the sheet payload. For MutDeleteSheet only SheetID is used.
	Sheet SheetProperties

	// Title is the new document title for MutUpdateSpreadsheetProperties.
	Title string

	// Fields is the field mask for property updates.
	Fields string
}

// SheetProperties is the metadata snapshot of a single worksheet
type SheetProperties struct {
	SheetID           int64
	Title             string
	Index             int
	RowCount          int
	ColumnCount       int
	FrozenRowCount    int
	FrozenColumnCount int
}

// Document is the metadata snapshot of a spreadsheet document
type Document struct {
	ID     string
	Title  string
	Sheets []SheetProperties
}

// ValueRange is a block of cell values addressed in A1 notation
type ValueRange struct {
	Range  string
	Values [][]string
}

// Value render options understood by adapters.
const (
	RenderFormattedValue   = "FORMATTED_VALUE"
	RenderUnformattedValue = "UNFORMATTED_VALUE"
	RenderFormattedString  = "FORMATTED_STRING"
	InputUserEntered       = "USER_ENTERED"
	InputRaw               = "RAW"
	SpreadsheetMimeType    = "application/vnd.google-apps.spreadsheet"
	DefaultRows            = 1000
	DefaultCols            = 26
	spreadsheetURLTemplate = "https://docs.google.com/spreadsheets/d/%s/edit"
)

// ReadOptions controls how cell values are rendered by GetValues
type ReadOptions struct {
	ValueRenderOption    string
	DateTimeRenderOption string
}

// Adapter interface defines methods for interacting with a remote spreadsheet service
type Adapter interface {
	// ListDocuments returns the ids of all non-trashed spreadsheet documents
	ListDocuments(ctx context.Context) ([]string, error)

	// GetDocument retrieves the metadata snapshot of a document, without grid data
	GetDocument(ctx context.Context, id string) (*Document, error)

	// BatchUpdateDocument applies mutations atomically and returns the updated document
	BatchUpdateDocument(ctx context.Context, id string, mutations []Mutation) (*Document, error)

	// GetValues reads a rectangular block of cells. Trailing blank cells may be omitted.
	GetValues(ctx context.Context, id, rangeA1 string, opts ReadOptions) ([][]string, error)

	// BatchWriteValues writes several ranges in a single request
	BatchWriteValues(ctx context.Context, id string, data []ValueRange, valueInputOption string) error

	// CreateDocument creates a new spreadsheet document and returns its id
	CreateDocument(ctx context.Context, title string) (string, error)

	// LastModified returns the last modification time of a document
	LastModified(ctx context.Context, id string) (time.Time, error)
}

// Sheet returns the sheet with the given id from the snapshot
func (d *Document) Sheet(sheetID int64) (SheetProperties, bool) {
	for _, s := range d.Sheets {
		if s.SheetID == sheetID {
			return s, true
		}
	}
	return SheetProperties{}, false
}
