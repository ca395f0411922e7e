package googlesheets

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/ideamans/go-sheetview"
	"google.golang.org/api/option"
)

func newTestAdapter(t *testing.T, handler http.HandlerFunc) *Adapter {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	adapter, err := New(context.Background(), &Config{
		MaxRetries:    2,
		RetryInterval: time.Millisecond,
		MaxBackoff:    5 * time.Millisecond,
	}, option.WithEndpoint(server.URL), option.WithoutAuthentication())
	if err != nil {
		t.Fatalf("Failed to create adapter: %v", err)
	}
	return adapter
}

func writeJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(body))
}

const spreadsheetJSON = `{
	"spreadsheetId": "doc-1",
	"properties": {"title": "Budget"},
	"sheets": [
		{"properties": {"sheetId": 0, "title": "Sheet1", "index": 0, "gridProperties": {"rowCount": 1000, "columnCount": 26}}},
		{"properties": {"sheetId": 42, "title": "Summary", "index": 1, "gridProperties": {"rowCount": 10, "columnCount": 5, "frozenRowCount": 1}}}
	]
}`

func TestAdapter_ListDocuments(t *testing.T) {
	var queries []string
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/files" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		queries = append(queries, r.URL.Query().Get("q"))
		if r.URL.Query().Get("pageToken") == "" {
			writeJSON(w, `{"nextPageToken": "p2", "files": [{"id": "a"}, {"id": "b"}]}`)
			return
		}
		writeJSON(w, `{"files": [{"id": "c"}]}`)
	})

	ids, err := adapter.ListDocuments(context.Background())
	if err != nil {
		t.Fatalf("ListDocuments() error = %v", err)
	}
	if want := []string{"a", "b", "c"}; !reflect.DeepEqual(ids, want) {
		t.Errorf("ListDocuments() = %v, want %v", ids, want)
	}
	if len(queries) != 2 {
		t.Fatalf("ListDocuments() made %d requests, want 2", len(queries))
	}
	if !strings.Contains(queries[0], "application/vnd.google-apps.spreadsheet") || !strings.Contains(queries[0], "trashed = false") {
		t.Errorf("ListDocuments() query = %q", queries[0])
	}
}

func TestAdapter_GetDocument(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v4/spreadsheets/doc-1" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.URL.Query().Get("includeGridData") != "false" {
			t.Errorf("includeGridData = %q, want false", r.URL.Query().Get("includeGridData"))
		}
		writeJSON(w, spreadsheetJSON)
	})

	doc, err := adapter.GetDocument(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("GetDocument() error = %v", err)
	}

	want := &sheetview.Document{
		ID:    "doc-1",
		Title: "Budget",
		Sheets: []sheetview.SheetProperties{
			{SheetID: 0, Title: "Sheet1", Index: 0, RowCount: 1000, ColumnCount: 26},
			{SheetID: 42, Title: "Summary", Index: 1, RowCount: 10, ColumnCount: 5, FrozenRowCount: 1},
		},
	}
	if !reflect.DeepEqual(doc, want) {
		t.Errorf("GetDocument() = %+v, want %+v", doc, want)
	}
}

func TestAdapter_BatchUpdateDocument(t *testing.T) {
	tests := []struct {
		name      string
		mutation  sheetview.Mutation
		wantParts []string
	}{
		{
			name: "resize sheet with id zero",
			mutation: sheetview.Mutation{
				Type:   sheetview.MutUpdateSheetProperties,
				Sheet:  sheetview.SheetProperties{SheetID: 0, Title: "Sheet1", RowCount: 5, ColumnCount: 3},
				Fields: sheetview.FieldsGridSize,
			},
			wantParts: []string{`"updateSheetProperties"`, `"sheetId":0`, `"rowCount":5`, `"fields":"gridProperties(rowCount,columnCount)"`},
		},
		{
			name: "unfreeze",
			mutation: sheetview.Mutation{
				Type:   sheetview.MutUpdateSheetProperties,
				Sheet:  sheetview.SheetProperties{SheetID: 42, RowCount: 10, ColumnCount: 5},
				Fields: sheetview.FieldsFrozenSize,
			},
			wantParts: []string{`"frozenRowCount":0`, `"frozenColumnCount":0`},
		},
		{
			name: "add sheet",
			mutation: sheetview.Mutation{
				Type:  sheetview.MutAddSheet,
				Sheet: sheetview.SheetProperties{Title: "New", RowCount: 7, ColumnCount: 2},
			},
			wantParts: []string{`"addSheet"`, `"title":"New"`, `"columnCount":2`},
		},
		{
			name: "delete first sheet",
			mutation: sheetview.Mutation{
				Type:  sheetview.MutDeleteSheet,
				Sheet: sheetview.SheetProperties{SheetID: 0},
			},
			wantParts: []string{`"deleteSheet":{"sheetId":0}`},
		},
		{
			name: "rename spreadsheet",
			mutation: sheetview.Mutation{
				Type:   sheetview.MutUpdateSpreadsheetProperties,
				Title:  "Renamed",
				Fields: sheetview.FieldsTitle,
			},
			wantParts: []string{`"updateSpreadsheetProperties"`, `"title":"Renamed"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body string
			adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/v4/spreadsheets/doc-1:batchUpdate" {
					w.WriteHeader(http.StatusNotFound)
					return
				}
				b, _ := io.ReadAll(r.Body)
				body = string(b)
				writeJSON(w, `{"spreadsheetId": "doc-1", "updatedSpreadsheet": `+spreadsheetJSON+`}`)
			})

			doc, err := adapter.BatchUpdateDocument(context.Background(), "doc-1", []sheetview.Mutation{tt.mutation})
			if err != nil {
				t.Fatalf("BatchUpdateDocument() error = %v", err)
			}
			if len(doc.Sheets) != 2 {
				t.Errorf("BatchUpdateDocument() returned %d sheets, want 2", len(doc.Sheets))
			}
			if !strings.Contains(body, `"includeSpreadsheetInResponse":true`) {
				t.Errorf("request body %s does not ask for the updated spreadsheet", body)
			}
			for _, part := range tt.wantParts {
				if !strings.Contains(body, part) {
					t.Errorf("request body %s does not contain %s", body, part)
				}
			}
		})
	}
}

func TestAdapter_GetValues(t *testing.T) {
	var query map[string][]string
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/v4/spreadsheets/doc-1/values/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		query = r.URL.Query()
		writeJSON(w, `{
			"range": "Sheet1!A1:C2",
			"majorDimension": "ROWS",
			"values": [
				["name", 30, true],
				["Jane"]
			]
		}`)
	})

	values, err := adapter.GetValues(context.Background(), "doc-1", "'Sheet1'!A1:C2", sheetview.ReadOptions{
		ValueRenderOption:    sheetview.RenderFormattedValue,
		DateTimeRenderOption: sheetview.RenderFormattedString,
	})
	if err != nil {
		t.Fatalf("GetValues() error = %v", err)
	}

	want := [][]string{{"name", "30", "TRUE"}, {"Jane"}}
	if !reflect.DeepEqual(values, want) {
		t.Errorf("GetValues() = %v, want %v", values, want)
	}
	if got := query["valueRenderOption"]; len(got) != 1 || got[0] != "FORMATTED_VALUE" {
		t.Errorf("valueRenderOption = %v", got)
	}
	if got := query["dateTimeRenderOption"]; len(got) != 1 || got[0] != "FORMATTED_STRING" {
		t.Errorf("dateTimeRenderOption = %v", got)
	}
}

func TestAdapter_BatchWriteValues(t *testing.T) {
	var req struct {
		ValueInputOption string `json:"valueInputOption"`
		Data             []struct {
			Range  string     `json:"range"`
			Values [][]string `json:"values"`
		} `json:"data"`
	}
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v4/spreadsheets/doc-1/values:batchUpdate" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewDecoder(r.Body).Decode(&req)
		writeJSON(w, `{"spreadsheetId": "doc-1", "totalUpdatedCells": 2}`)
	})

	err := adapter.BatchWriteValues(context.Background(), "doc-1", []sheetview.ValueRange{
		{Range: "'Sheet1'!A1:A1", Values: [][]string{{"x"}}},
		{Range: "'Sheet1'!B2:B2", Values: [][]string{{"=1+1"}}},
	}, sheetview.InputUserEntered)
	if err != nil {
		t.Fatalf("BatchWriteValues() error = %v", err)
	}

	if req.ValueInputOption != "USER_ENTERED" {
		t.Errorf("valueInputOption = %q, want USER_ENTERED", req.ValueInputOption)
	}
	if len(req.Data) != 2 || req.Data[1].Range != "'Sheet1'!B2:B2" || req.Data[1].Values[0][0] != "=1+1" {
		t.Errorf("data = %+v", req.Data)
	}
}

func TestAdapter_CreateDocument(t *testing.T) {
	var file map[string]string
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/files" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewDecoder(r.Body).Decode(&file)
		writeJSON(w, `{"id": "new-doc"}`)
	})

	id, err := adapter.CreateDocument(context.Background(), "Report")
	if err != nil {
		t.Fatalf("CreateDocument() error = %v", err)
	}
	if id != "new-doc" {
		t.Errorf("CreateDocument() = %v, want new-doc", id)
	}
	if file["name"] != "Report" || file["mimeType"] != sheetview.SpreadsheetMimeType {
		t.Errorf("created file = %v", file)
	}
}

func TestAdapter_LastModified(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/files/doc-1" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		writeJSON(w, `{"modifiedTime": "2024-03-01T12:30:00.000Z"}`)
	})

	got, err := adapter.LastModified(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("LastModified() error = %v", err)
	}
	want := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("LastModified() = %v, want %v", got, want)
	}
}

func TestNew_RemoteSchemaDiscovery(t *testing.T) {
	var api *httptest.Server
	api = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/discovery":
			writeJSON(w, `{"name": "sheets", "version": "v4", "rootUrl": "`+api.URL+`/", "servicePath": ""}`)
		case "/v4/spreadsheets/doc-1":
			writeJSON(w, spreadsheetJSON)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer api.Close()

	adapter, err := New(context.Background(), &Config{
		UseRemoteSchemaDiscovery: true,
		DiscoveryURL:             api.URL + "/discovery",
	}, option.WithoutAuthentication())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	doc, err := adapter.GetDocument(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("GetDocument() error = %v", err)
	}
	if doc.Title != "Budget" {
		t.Errorf("GetDocument() Title = %v, want Budget", doc.Title)
	}
}

func TestNew_RemoteSchemaDiscoveryVersionMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"name": "sheets", "version": "v3", "rootUrl": "https://example.com/"}`)
	}))
	defer server.Close()

	_, err := New(context.Background(), &Config{
		UseRemoteSchemaDiscovery: true,
		DiscoveryURL:             server.URL,
	}, option.WithoutAuthentication())
	if err == nil || !strings.Contains(err.Error(), "version") {
		t.Errorf("New() error = %v, want version error", err)
	}
}
