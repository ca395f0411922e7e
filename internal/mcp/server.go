package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/ideamans/go-sheetview"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// MaxOutputBytes caps the size of a single tool result
const MaxOutputBytes = 1 << 20

// Server exposes a sheetview.Collection as MCP tools
type Server struct {
	mcpServer  *server.MCPServer
	collection *sheetview.Collection
}

// New creates a new MCP server with all tools registered
func New(collection *sheetview.Collection, version string) *Server {
	s := server.NewMCPServer(
		"sheetview",
		version,
		server.WithToolCapabilities(true),
	)

	srv := &Server{mcpServer: s, collection: collection}
	srv.registerTools()

	return srv
}

// Run starts the MCP server on stdio
func (s *Server) Run() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_spreadsheets",
		mcp.WithDescription("List the id and title of every spreadsheet in the store"),
	), s.handleListSpreadsheets)

	s.mcpServer.AddTool(mcp.NewTool("list_worksheets",
		mcp.WithDescription("List the worksheets of a spreadsheet with their sizes"),
		mcp.WithString("spreadsheet_id", mcp.Required(), mcp.Description("Spreadsheet id")),
	), s.handleListWorksheets)

	s.mcpServer.AddTool(mcp.NewTool("read_range",
		mcp.WithDescription("Read a rectangle of cells. Without a range the whole worksheet is read."),
		mcp.WithString("spreadsheet_id", mcp.Required(), mcp.Description("Spreadsheet id")),
		mcp.WithString("sheet", mcp.Description("Worksheet title (default: first worksheet)")),
		mcp.WithString("range", mcp.Description("Cell range in A1 notation (e.g., B2:D10)")),
	), s.handleReadRange)

	s.mcpServer.AddTool(mcp.NewTool("write_cells",
		mcp.WithDescription("Write a 2D array of values starting at start_cell and commit them in one batch"),
		mcp.WithString("spreadsheet_id", mcp.Required(), mcp.Description("Spreadsheet id")),
		mcp.WithString("sheet", mcp.Description("Worksheet title (default: first worksheet)")),
		mcp.WithString("start_cell", mcp.Required(), mcp.Description("Top-left cell (e.g., A1)")),
		// data is passed as a JSON array of arrays via BindArguments
	), s.handleWriteCells)
}

type spreadsheetInfo struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

type worksheetInfo struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	Index      int    `json:"index"`
	Rows       int    `json:"rows"`
	Cols       int    `json:"cols"`
	FrozenRows int    `json:"frozen_rows"`
	FrozenCols int    `json:"frozen_cols"`
}

type rangeResult struct {
	Sheet  string     `json:"sheet"`
	Range  string     `json:"range"`
	Values [][]string `json:"values"`
}

type writeResult struct {
	Sheet        string `json:"sheet"`
	Range        string `json:"range"`
	CellsWritten int    `json:"cells_written"`
}

func (s *Server) handleListSpreadsheets(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	docs, err := s.collection.Spreadsheets(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	infos := make([]spreadsheetInfo, 0, len(docs))
	for _, ss := range docs {
		title, err := ss.Title(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		infos = append(infos, spreadsheetInfo{ID: ss.ID(), Title: title, URL: ss.URL()})
	}
	return jsonResult(infos)
}

func (s *Server) handleListWorksheets(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ss, err := s.collection.Spreadsheet(ctx, request.GetString("spreadsheet_id", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sheets, err := ss.Worksheets(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	infos := make([]worksheetInfo, len(sheets))
	for i, ws := range sheets {
		infos[i] = worksheetInfo{
			ID:         ws.ID(),
			Title:      ws.Title(),
			Index:      ws.Index(),
			Rows:       ws.Rows(),
			Cols:       ws.Cols(),
			FrozenRows: ws.FrozenRows(),
			FrozenCols: ws.FrozenCols(),
		}
	}
	return jsonResult(infos)
}

func (s *Server) handleReadRange(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ws, err := s.worksheet(ctx, request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var opts []sheetview.ViewOption
	if rng := request.GetString("range", ""); rng != "" {
		_, startRow, endRow, startCol, endCol, err := sheetview.ParseRangeA1(rng)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		opts = append(opts, sheetview.RowRange(startRow, endRow), sheetview.ColRange(startCol, endCol))
	}

	view, err := ws.View(opts...)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	values, err := view.Values(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return jsonResult(rangeResult{
		Sheet:  ws.Title(),
		Range:  viewRange(view),
		Values: values,
	})
}

func (s *Server) handleWriteCells(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args struct {
		Data [][]any `json:"data"`
	}
	if err := request.BindArguments(&args); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to parse data: %v", err)), nil
	}
	if len(args.Data) == 0 {
		return mcp.NewToolResultError("no data provided"), nil
	}

	_, startRow, _, startCol, _, err := sheetview.ParseRangeA1(request.GetString("start_cell", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	width := 0
	for _, row := range args.Data {
		width = max(width, len(row))
	}
	if width == 0 {
		return mcp.NewToolResultError("every row is empty"), nil
	}

	ws, err := s.worksheet(ctx, request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	view, err := ws.View(
		sheetview.RowRange(startRow, startRow+len(args.Data)),
		sheetview.ColRange(startCol, startCol+width),
	)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// ragged rows only touch the cells they name
	cells := 0
	err = view.With(ctx, func(v *sheetview.View) error {
		for i, values := range args.Data {
			row, err := v.Row(i)
			if err != nil {
				return err
			}
			if err := row.SetSlice(0, len(values), wholeNumbers(values)); err != nil {
				return err
			}
			cells += len(values)
		}
		return nil
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return jsonResult(writeResult{
		Sheet:        ws.Title(),
		Range:        viewRange(view),
		CellsWritten: cells,
	})
}

// wholeNumbers turns JSON numbers without a fraction into integers so they
// are not written in scientific notation.
func wholeNumbers(values []any) []any {
	out := make([]any, len(values))
	for i, v := range values {
		if f, ok := v.(float64); ok && f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			out[i] = int64(f)
			continue
		}
		out[i] = v
	}
	return out
}

// worksheet resolves the spreadsheet_id and optional sheet arguments
func (s *Server) worksheet(ctx context.Context, request mcp.CallToolRequest) (*sheetview.Worksheet, error) {
	ss, err := s.collection.Spreadsheet(ctx, request.GetString("spreadsheet_id", ""))
	if err != nil {
		return nil, err
	}
	if title := request.GetString("sheet", ""); title != "" {
		return ss.Worksheet(ctx, title)
	}
	return ss.WorksheetAt(ctx, 0)
}

func viewRange(v *sheetview.View) string {
	if v.Empty() {
		return ""
	}
	return fmt.Sprintf("%s%d:%s%d",
		sheetview.FormatColumnAddress(v.StartCol()), v.StartRow()+1,
		sheetview.FormatColumnAddress(v.EndCol()-1), v.EndRow())
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("JSON encoding error: %v", err)), nil
	}

	if len(data) > MaxOutputBytes {
		return mcp.NewToolResultError(fmt.Sprintf("Output too large (%d bytes, max %d bytes). Try reducing the range.", len(data), MaxOutputBytes)), nil
	}

	return mcp.NewToolResultText(string(data)), nil
}
