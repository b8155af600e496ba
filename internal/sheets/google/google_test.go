package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"finledger/internal/core"

	"github.com/shopspring/decimal"
	"google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

func TestNewFromEnv_MissingSpreadsheetID(t *testing.T) {
	t.Setenv("GOOGLE_SPREADSHEET_ID", "")

	_, err := NewFromEnv(context.Background())
	if err == nil || err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNewFromEnv_MissingCredentials(t *testing.T) {
	t.Setenv("GOOGLE_SPREADSHEET_ID", "sheet-id")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_JSON", "")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_FILE", "")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")

	_, err := NewFromEnv(context.Background())
	if err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func testRecord() core.Record {
	return core.Record{
		ID:          3,
		Date:        core.MustParseDate("2024-04-01"),
		Kind:        core.Income,
		Category:    "Salary",
		Amount:      decimal.RequireFromString("2500"),
		Currency:    "USD",
		Description: "[Recurring] pay",
	}
}

func TestAppendRecord(t *testing.T) {
	var (
		gotPath  string
		gotQuery string
		gotBody  gsheet.ValueRange
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"updates":{"updatedRange":"Ledger!A5:G5","updatedRows":1}}`))
	}))
	defer srv.Close()

	svc, err := gsheet.NewService(context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithoutAuthentication(),
		option.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	c := New(svc, "sheet-id", "")

	ref, err := c.AppendRecord(context.Background(), "alice", testRecord())
	if err != nil {
		t.Fatalf("AppendRecord: %v", err)
	}
	if ref != "Ledger!A5:G5" {
		t.Errorf("ref = %q", ref)
	}
	if !strings.Contains(gotPath, "/v4/spreadsheets/sheet-id/values/") || !strings.HasSuffix(gotPath, ":append") {
		t.Errorf("path = %q", gotPath)
	}
	if !strings.Contains(gotQuery, "valueInputOption=USER_ENTERED") {
		t.Errorf("query = %q", gotQuery)
	}
	if len(gotBody.Values) != 1 || len(gotBody.Values[0]) != 7 {
		t.Fatalf("body values = %v", gotBody.Values)
	}
	if gotBody.Values[0][0] != "alice" || gotBody.Values[0][4] != "2500.00" {
		t.Errorf("row = %v", gotBody.Values[0])
	}
}

func TestAppendRecordErrors(t *testing.T) {
	c := &Client{spreadsheetID: "sheet-id", sheetName: "Ledger"}

	if _, err := c.AppendRecord(context.Background(), "alice", core.Record{}); err == nil || !strings.Contains(err.Error(), "validation failed") {
		t.Errorf("invalid record error = %v", err)
	}
	if _, err := c.AppendRecord(context.Background(), "alice", testRecord()); err == nil || !strings.Contains(err.Error(), "not initialized") {
		t.Errorf("nil service error = %v", err)
	}
}
