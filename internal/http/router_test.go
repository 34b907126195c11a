package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tally/internal/app"
	"github.com/MrJamesThe3rd/tally/internal/category"
	"github.com/MrJamesThe3rd/tally/internal/config"
	tallyhttp "github.com/MrJamesThe3rd/tally/internal/http"
	"github.com/MrJamesThe3rd/tally/internal/http/account"
	categoryhttp "github.com/MrJamesThe3rd/tally/internal/http/category"
	"github.com/MrJamesThe3rd/tally/internal/http/export"
	"github.com/MrJamesThe3rd/tally/internal/http/importcsv"
	"github.com/MrJamesThe3rd/tally/internal/http/statistics"
	"github.com/MrJamesThe3rd/tally/internal/http/transaction"
	"github.com/MrJamesThe3rd/tally/internal/log"
)

type server struct {
	app *app.App
	srv *httptest.Server
}

func newServer(t *testing.T) *server {
	t.Helper()

	cfg := &config.Config{}
	cfg.App.CurrencyCode = "USD"
	cfg.App.Timezone = "UTC"
	cfg.DB.Driver = config.DriverMemory

	a, err := app.New(context.Background(), cfg, log.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })

	router := tallyhttp.New(tallyhttp.Handlers{
		Accounts:     account.NewHandler(a.Accounts, a.Ledger),
		Categories:   categoryhttp.NewHandler(a.Categories),
		Transactions: transaction.NewHandler(a.Transactions, a.Ledger),
		Statistics:   statistics.NewHandler(a.Statistics),
		Export:       export.NewHandler(a.Export),
		Import:       importcsv.NewHandler(a.Import),
	}, []string{"*"})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &server{app: a, srv: srv}
}

func (s *server) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()

	var r io.Reader

	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)

		r = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, s.srv.URL+path, r)
	require.NoError(t, err)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()

	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))

	return v
}

type accountJSON struct {
	ID      string `json:"id"`
	Balance string `json:"balance"`
}

type transactionJSON struct {
	ID     string `json:"id"`
	Amount string `json:"amount"`
	Type   string `json:"type"`
}

func (s *server) defaultAccount(t *testing.T) accountJSON {
	t.Helper()

	resp := s.do(t, http.MethodGet, "/api/v1/accounts", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	accounts := decode[[]accountJSON](t, resp)
	require.Len(t, accounts, 1)

	return accounts[0]
}

func TestRouter_LedgerFlow(t *testing.T) {
	s := newServer(t)
	acct := s.defaultAccount(t)
	assert.Equal(t, "0", acct.Balance)

	resp := s.do(t, http.MethodPost, "/api/v1/transactions", map[string]any{
		"amount":     "1000",
		"type":       "income",
		"account_id": acct.ID,
		"date":       "2024-03-05T10:00:00Z",
		"note":       "Salary",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = s.do(t, http.MethodPost, "/api/v1/transactions", map[string]any{
		"amount":     "250",
		"type":       "expense",
		"account_id": acct.ID,
		"date":       "2024-03-06T10:00:00Z",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	expense := decode[transactionJSON](t, resp)
	assert.Equal(t, "250", expense.Amount)

	resp = s.do(t, http.MethodGet, "/api/v1/accounts/"+acct.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "750", decode[accountJSON](t, resp).Balance)

	resp = s.do(t, http.MethodDelete, "/api/v1/transactions/"+expense.ID, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = s.do(t, http.MethodDelete, "/api/v1/transactions/"+expense.ID, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = s.do(t, http.MethodGet, "/api/v1/statistics?start=2024-03-01&end=2024-03-31", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	stats := decode[struct {
		TotalIncome   string  `json:"total_income"`
		TotalExpenses string  `json:"total_expenses"`
		NetChange     string  `json:"net_change"`
		SavingsRate   *string `json:"savings_rate"`
	}](t, resp)

	assert.Equal(t, "1000", stats.TotalIncome)
	assert.Equal(t, "0", stats.TotalExpenses)
	assert.Equal(t, "1000", stats.NetChange)
	require.NotNil(t, stats.SavingsRate)
	assert.Equal(t, "100", *stats.SavingsRate)

	resp = s.do(t, http.MethodGet, "/api/v1/export.csv", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "Date,Amount,Type,Note\n2024-03-05 10:00:00,1000.00,Income,Salary\n", string(body))
}

func TestRouter_Errors(t *testing.T) {
	s := newServer(t)
	acct := s.defaultAccount(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"ZeroAmount", http.MethodPost, "/api/v1/transactions", map[string]any{"amount": "0", "type": "income", "account_id": acct.ID}, http.StatusBadRequest},
		{"BadType", http.MethodPost, "/api/v1/transactions", map[string]any{"amount": "5", "type": "gift", "account_id": acct.ID}, http.StatusBadRequest},
		{"UnknownAccount", http.MethodPost, "/api/v1/transactions", map[string]any{"amount": "5", "type": "income", "account_id": "6f1c7a9e-0000-4000-8000-000000000000"}, http.StatusNotFound},
		{"UnknownField", http.MethodPost, "/api/v1/transactions", map[string]any{"amount": "5", "colour": "red"}, http.StatusBadRequest},
		{"BadID", http.MethodGet, "/api/v1/transactions/not-a-uuid", nil, http.StatusBadRequest},
		{"BadPeriod", http.MethodGet, "/api/v1/statistics?period=decade", nil, http.StatusBadRequest},
		{"BadDate", http.MethodGet, "/api/v1/transactions?start_date=yesterday", nil, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := s.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestRouter_SystemCategoryIsProtected(t *testing.T) {
	s := newServer(t)

	categories, err := s.app.Categories.List(context.Background(), category.ListFilter{})
	require.NoError(t, err)
	require.NotEmpty(t, categories)

	resp := s.do(t, http.MethodDelete, "/api/v1/categories/"+categories[0].ID.String(), nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = s.do(t, http.MethodPost, "/api/v1/categories", map[string]any{
		"name":             "Pets",
		"applicable_types": []string{"expense"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	created := decode[struct {
		ID string `json:"id"`
	}](t, resp)

	resp = s.do(t, http.MethodDelete, "/api/v1/categories/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestRouter_AdjustBalance(t *testing.T) {
	s := newServer(t)
	acct := s.defaultAccount(t)

	resp := s.do(t, http.MethodPost, "/api/v1/accounts/"+acct.ID+"/adjust", map[string]any{"delta": "-12.5"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "-12.5", decode[accountJSON](t, resp).Balance)
}

func TestRouter_Import(t *testing.T) {
	s := newServer(t)
	acct := s.defaultAccount(t)

	var body bytes.Buffer

	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("account_id", acct.ID))

	fw, err := mw.CreateFormFile("file", "export.csv")
	require.NoError(t, err)

	_, err = io.WriteString(fw, "Date,Amount,Type,Note\n2024-03-05 10:00:00,100.00,Income,Refund\n2024-03-06 10:00:00,40.00,Expense,Taxi\n")
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, s.srv.URL+"/api/v1/import", &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusCreated, resp.StatusCode)

	res := decode[struct {
		Format   string `json:"format"`
		Imported int    `json:"imported"`
	}](t, resp)
	assert.Equal(t, "tally", res.Format)
	assert.Equal(t, 2, res.Imported)

	assert.Equal(t, "60", s.defaultAccount(t).Balance)
}
