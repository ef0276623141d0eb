package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mahmoud-slama/creditapp/internal/common"
	"github.com/mahmoud-slama/creditapp/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

var generated = time.Date(2024, 5, 20, 9, 30, 0, 0, time.UTC)

func sampleReport() Report {
	return Report{
		Title:       "Invoices",
		GeneratedAt: generated,
		Rows: []PurchaseRow{
			{Date: generated, Invoice: "INV-2024-0001", Client: "Amal Haddad", Product: "Olive oil", Quantity: 2, Amount: decimal.RequireFromString("25.00")},
			{Date: generated.AddDate(0, 0, -1), Invoice: "INV-2024-0002", Client: "Sami Ben Ali", Product: "Tea", Quantity: 1, Amount: decimal.RequireFromString("10.50")},
		},
	}
}

func TestConfigValidate(t *testing.T) {
	oauth := func(c *Config) { c.ClientID, c.ClientSecret, c.RefreshToken = "id", "secret", "refresh" }
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
		msg     string
	}{
		{name: "oauth", mutate: oauth},
		{name: "service account", mutate: func(c *Config) { c.ServiceAccountPath = "/tmp/sa.json" }},
		{name: "nothing configured", mutate: func(*Config) {}, wantErr: common.ErrMissingConfig, msg: "no Google Sheets authentication"},
		{name: "partial oauth", mutate: func(c *Config) { c.ClientID = "id" }, wantErr: common.ErrMissingConfig},
		{name: "both methods", mutate: func(c *Config) { oauth(c); c.ServiceAccountPath = "/tmp/sa.json" }, wantErr: common.ErrInvalidConfig, msg: "multiple authentication"},
		{name: "zero batch", mutate: func(c *Config) { oauth(c); c.BatchSize = 0 }, wantErr: common.ErrInvalidConfig, msg: "batch size"},
		{name: "negative retries", mutate: func(c *Config) { oauth(c); c.RetryAttempts = -1 }, wantErr: common.ErrInvalidConfig, msg: "retry attempts"},
		{name: "negative delay", mutate: func(c *Config) { oauth(c); c.RetryDelay = -time.Second }, wantErr: common.ErrInvalidConfig, msg: "retry delay"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestPrepareValues(t *testing.T) {
	values := prepareValues(sampleReport())

	require.Len(t, values, headerRows+1+2)
	assert.Equal(t, []any{"Invoices"}, values[0])
	assert.Equal(t, []any{"Generated", "2024-05-20 09:30"}, values[1])
	assert.Equal(t, []any{"Total", 35.5}, values[2])
	assert.Equal(t, columns, values[headerRows])
	assert.Equal(t, []any{"2024-05-20", "INV-2024-0001", "Amal Haddad", "Olive oil", 2, 25.0}, values[headerRows+1])
}

func TestRowsFromInvoices(t *testing.T) {
	purchases := []model.Purchase{
		{ID: 1, UserID: 1, PurchaseName: "Olive oil", Amount: 12.345, Quantity: 1, PurchaseDate: model.Timestamp{Time: generated}},
		{ID: 2, UserID: 7, Name: "Tea", Amount: 10, Quantity: 1, PurchaseDate: model.Timestamp{Time: generated}},
	}
	rows := RowsFromInvoices(model.Invoices(purchases), func(id int) string {
		if id == 1 {
			return "Amal Haddad"
		}
		return "Unknown User"
	})

	require.Len(t, rows, 2)
	assert.Equal(t, "INV-2024-0001", rows[0].Invoice)
	assert.Equal(t, "12.35", rows[0].Amount.StringFixed(2))
	assert.Equal(t, "Amal Haddad", rows[0].Client)
	assert.Equal(t, "Tea", rows[1].Product)
	assert.Equal(t, "Unknown User", rows[1].Client)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleReport()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Date,Invoice,Client,Product,Quantity,Amount", lines[0])
	assert.Equal(t, "2024-05-19,INV-2024-0002,Sami Ben Ali,Tea,1,10.50", lines[2])
}

// fakeSheets answers the subset of the Sheets v4 API the writer calls.
type fakeSheets struct {
	calls   []string
	written [][]any
	fail    map[string]int
	mu      sync.Mutex
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	call := r.Method + " " + r.URL.Path
	f.calls = append(f.calls, call)
	for prefix, n := range f.fail {
		if n > 0 && strings.HasPrefix(call, prefix) {
			f.fail[prefix] = n - 1
			http.Error(w, `{"error":{"code":503,"message":"backend busy"}}`, http.StatusServiceUnavailable)
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/v4/spreadsheets":
		_ = json.NewEncoder(w).Encode(map[string]string{"spreadsheetId": "created-id", "spreadsheetUrl": "https://example.test/created-id"})
	case r.Method == http.MethodPut:
		var body struct {
			Values [][]any `json:"values"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.written = append(f.written, body.Values...)
		_, _ = w.Write([]byte(`{}`))
	case r.Method == http.MethodGet:
		_ = json.NewEncoder(w).Encode(map[string]string{"spreadsheetId": strings.TrimPrefix(r.URL.Path, "/v4/spreadsheets/")})
	default:
		_, _ = w.Write([]byte(`{}`))
	}
}

func (f *fakeSheets) count(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

func newTestWriter(t *testing.T, fake *fakeSheets, mutate func(*Config)) *Writer {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	service, err := sheets.NewService(context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.RetryDelay = time.Millisecond
	if mutate != nil {
		mutate(&cfg)
	}
	return newWriterWithService(service, cfg, nil)
}

func TestWriteReportCreatesSpreadsheet(t *testing.T) {
	fake := &fakeSheets{}
	w := newTestWriter(t, fake, nil)

	id, err := w.WriteReport(context.Background(), sampleReport())
	require.NoError(t, err)

	assert.Equal(t, "created-id", id)
	assert.Equal(t, 1, fake.count("POST /v4/spreadsheets/created-id/values/A:Z:clear"))
	assert.Equal(t, 1, fake.count("POST /v4/spreadsheets/created-id:batchUpdate"))
	require.Len(t, fake.written, headerRows+1+2)
	assert.Equal(t, "INV-2024-0002", fake.written[len(fake.written)-1][1])
}

func TestWriteReportBatches(t *testing.T) {
	fake := &fakeSheets{}
	w := newTestWriter(t, fake, func(c *Config) {
		c.SpreadsheetID = "existing"
		c.BatchSize = 3
		c.EnableFormatting = false
	})

	id, err := w.WriteReport(context.Background(), sampleReport())
	require.NoError(t, err)

	assert.Equal(t, "existing", id)
	assert.Equal(t, 1, fake.count("GET /v4/spreadsheets/existing"))
	assert.Equal(t, 0, fake.count("POST /v4/spreadsheets/existing:batchUpdate"))
	assert.Equal(t, 1, fake.count("PUT /v4/spreadsheets/existing/values/A1"))
	assert.Equal(t, 1, fake.count("PUT /v4/spreadsheets/existing/values/A4"))
	assert.Equal(t, 1, fake.count("PUT /v4/spreadsheets/existing/values/A7"))
}

func TestWriteReportRetriesServerErrors(t *testing.T) {
	fake := &fakeSheets{fail: map[string]int{"PUT ": 1}}
	w := newTestWriter(t, fake, func(c *Config) { c.SpreadsheetID = "existing" })

	_, err := w.WriteReport(context.Background(), sampleReport())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, fake.count("PUT "), 2)
}

func TestWriteReportFormattingFailureIsNotFatal(t *testing.T) {
	fake := &fakeSheets{fail: map[string]int{"POST /v4/spreadsheets/existing:batchUpdate": 10}}
	w := newTestWriter(t, fake, func(c *Config) {
		c.SpreadsheetID = "existing"
		c.RetryAttempts = 1
	})

	_, err := w.WriteReport(context.Background(), sampleReport())
	assert.NoError(t, err)
}

func TestMockWriter(t *testing.T) {
	m := NewMockWriter()
	id, err := m.WriteReport(context.Background(), sampleReport())
	require.NoError(t, err)
	assert.Equal(t, "mock-spreadsheet", id)
	assert.Len(t, m.Calls(), 1)

	var _ ReportWriter = m
	var _ ReportWriter = (*Writer)(nil)
}
