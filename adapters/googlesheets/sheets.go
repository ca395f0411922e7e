package googlesheets

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/ideamans/go-sheetview"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const listQuery = "mimeType='" + sheetview.SpreadsheetMimeType + "' and trashed = false"

// Adapter implements the sheetview.Adapter interface for Google Sheets.
// Cell and sheet operations use the Sheets API, document listing, creation
// and modification times use the Drive API.
type Adapter struct {
	sheets *sheets.Service
	drive  *drive.Service
	config Config
}

var _ sheetview.Adapter = (*Adapter)(nil)

// New creates a new Google Sheets adapter with provided options
func New(ctx context.Context, config *Config, opts ...option.ClientOption) (*Adapter, error) {
	if config == nil {
		config = DefaultConfig()
	}
	cfg := config.withDefaults()

	sheetsOpts := opts
	if cfg.UseRemoteSchemaDiscovery {
		rootURL, err := discoverRootURL(ctx, cfg.DiscoveryClient, cfg.DiscoveryURL)
		if err != nil {
			return nil, err
		}
		sheetsOpts = append(append([]option.ClientOption{}, opts...), option.WithEndpoint(rootURL))
	}

	sheetsService, err := sheets.NewService(ctx, sheetsOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	driveService, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}

	return &Adapter{
		sheets: sheetsService,
		drive:  driveService,
		config: cfg,
	}, nil
}

// ListDocuments returns the ids of all non-trashed spreadsheets, following every page
func (a *Adapter) ListDocuments(ctx context.Context) ([]string, error) {
	var ids []string
	err := a.retry(ctx, func() error {
		ids = ids[:0]
		return a.drive.Files.List().
			Q(listQuery).
			Fields("nextPageToken, files(id)").
			PageSize(1000).
			Pages(ctx, func(page *drive.FileList) error {
				for _, f := range page.Files {
					ids = append(ids, f.Id)
				}
				return nil
			})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list spreadsheets: %w", err)
	}
	return ids, nil
}

// GetDocument retrieves the metadata of a spreadsheet without grid data
func (a *Adapter) GetDocument(ctx context.Context, id string) (*sheetview.Document, error) {
	var resp *sheets.Spreadsheet
	err := a.retry(ctx, func() error {
		var err error
		resp, err = a.sheets.Spreadsheets.Get(id).IncludeGridData(false).Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get spreadsheet: %w", err)
	}
	return toDocument(resp), nil
}

// BatchUpdateDocument applies the mutations in one request and returns the
// updated spreadsheet. It is not retried since adding a sheet is not idempotent.
func (a *Adapter) BatchUpdateDocument(ctx context.Context, id string, mutations []sheetview.Mutation) (*sheetview.Document, error) {
	requests := make([]*sheets.Request, 0, len(mutations))
	for _, m := range mutations {
		req, err := toRequest(m)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}

	resp, err := a.sheets.Spreadsheets.BatchUpdate(id, &sheets.BatchUpdateSpreadsheetRequest{
		Requests:                     requests,
		IncludeSpreadsheetInResponse: true,
		ResponseIncludeGridData:      false,
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to batch update spreadsheet: %w", err)
	}
	if resp.UpdatedSpreadsheet == nil {
		return nil, fmt.Errorf("batch update response has no spreadsheet")
	}
	return toDocument(resp.UpdatedSpreadsheet), nil
}

// GetValues reads a range of cells as strings
func (a *Adapter) GetValues(ctx context.Context, id, rangeA1 string, opts sheetview.ReadOptions) ([][]string, error) {
	var resp *sheets.ValueRange
	err := a.retry(ctx, func() error {
		call := a.sheets.Spreadsheets.Values.Get(id, rangeA1).MajorDimension("ROWS")
		if opts.ValueRenderOption != "" {
			call = call.ValueRenderOption(opts.ValueRenderOption)
		}
		if opts.DateTimeRenderOption != "" {
			call = call.DateTimeRenderOption(opts.DateTimeRenderOption)
		}
		var err error
		resp, err = call.Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get sheet data: %w", err)
	}

	values := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		values[i] = make([]string, len(row))
		for j, v := range row {
			values[i][j] = cellText(v)
		}
	}
	return values, nil
}

// BatchWriteValues writes several ranges in one request
func (a *Adapter) BatchWriteValues(ctx context.Context, id string, data []sheetview.ValueRange, valueInputOption string) error {
	ranges := make([]*sheets.ValueRange, len(data))
	for i, d := range data {
		rows := make([][]interface{}, len(d.Values))
		for r, row := range d.Values {
			rows[r] = make([]interface{}, len(row))
			for c, v := range row {
				rows[r][c] = v
			}
		}
		ranges[i] = &sheets.ValueRange{
			Range:          d.Range,
			MajorDimension: "ROWS",
			Values:         rows,
		}
	}

	err := a.retry(ctx, func() error {
		_, err := a.sheets.Spreadsheets.Values.BatchUpdate(id, &sheets.BatchUpdateValuesRequest{
			Data:                    ranges,
			ValueInputOption:        valueInputOption,
			IncludeValuesInResponse: false,
		}).Context(ctx).Do()
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to update values: %w", err)
	}
	return nil
}

// CreateDocument creates a new spreadsheet file and returns its id
func (a *Adapter) CreateDocument(ctx context.Context, title string) (string, error) {
	f, err := a.drive.Files.Create(&drive.File{
		Name:     title,
		MimeType: sheetview.SpreadsheetMimeType,
	}).Fields("id").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to create spreadsheet: %w", err)
	}
	return f.Id, nil
}

// LastModified returns the modification time recorded by Drive
func (a *Adapter) LastModified(ctx context.Context, id string) (time.Time, error) {
	var f *drive.File
	err := a.retry(ctx, func() error {
		var err error
		f, err = a.drive.Files.Get(id).Fields("modifiedTime").Context(ctx).Do()
		return err
	})
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get file metadata: %w", err)
	}
	t, err := time.Parse(time.RFC3339, f.ModifiedTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse modified time %q: %w", f.ModifiedTime, err)
	}
	return t, nil
}

func toRequest(m sheetview.Mutation) (*sheets.Request, error) {
	switch m.Type {
	case sheetview.MutAddSheet:
		return &sheets.Request{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{
					Title: m.Sheet.Title,
					GridProperties: &sheets.GridProperties{
						RowCount:    int64(m.Sheet.RowCount),
						ColumnCount: int64(m.Sheet.ColumnCount),
					},
				},
			},
		}, nil
	case sheetview.MutDeleteSheet:
		return &sheets.Request{
			DeleteSheet: &sheets.DeleteSheetRequest{
				SheetId:         m.Sheet.SheetID,
				ForceSendFields: []string{"SheetId"},
			},
		}, nil
	case sheetview.MutUpdateSheetProperties:
		return &sheets.Request{
			UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
				Properties: toSheetProperties(m.Sheet),
				Fields:     m.Fields,
			},
		}, nil
	case sheetview.MutUpdateSpreadsheetProperties:
		return &sheets.Request{
			UpdateSpreadsheetProperties: &sheets.UpdateSpreadsheetPropertiesRequest{
				Properties: &sheets.SpreadsheetProperties{Title: m.Title},
				Fields:     m.Fields,
			},
		}, nil
	default:
		return nil, fmt.Errorf("unsupported mutation type: %d", m.Type)
	}
}

// toSheetProperties force-sends ids and frozen counts: sheet id 0 and
// unfreezing to 0 are both meaningful values.
func toSheetProperties(p sheetview.SheetProperties) *sheets.SheetProperties {
	return &sheets.SheetProperties{
		SheetId: p.SheetID,
		Title:   p.Title,
		GridProperties: &sheets.GridProperties{
			RowCount:          int64(p.RowCount),
			ColumnCount:       int64(p.ColumnCount),
			FrozenRowCount:    int64(p.FrozenRowCount),
			FrozenColumnCount: int64(p.FrozenColumnCount),
			ForceSendFields:   []string{"FrozenRowCount", "FrozenColumnCount"},
		},
		ForceSendFields: []string{"SheetId"},
	}
}

func toDocument(s *sheets.Spreadsheet) *sheetview.Document {
	doc := &sheetview.Document{
		ID:     s.SpreadsheetId,
		Sheets: make([]sheetview.SheetProperties, 0, len(s.Sheets)),
	}
	if s.Properties != nil {
		doc.Title = s.Properties.Title
	}
	for _, sh := range s.Sheets {
		if sh.Properties == nil {
			continue
		}
		props := sheetview.SheetProperties{
			SheetID: sh.Properties.SheetId,
			Title:   sh.Properties.Title,
			Index:   int(sh.Properties.Index),
		}
		if gp := sh.Properties.GridProperties; gp != nil {
			props.RowCount = int(gp.RowCount)
			props.ColumnCount = int(gp.ColumnCount)
			props.FrozenRowCount = int(gp.FrozenRowCount)
			props.FrozenColumnCount = int(gp.FrozenColumnCount)
		}
		doc.Sheets = append(doc.Sheets, props)
	}
	return doc
}

// cellText converts a value decoded from the API to its string form
func cellText(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		if val {
			return "TRUE"
		}
		return "FALSE"
	default:
		return fmt.Sprintf("%v", val)
	}
}
