// internal/infrastructure/handler/integration_test.go
package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/damon-houk/transaction-ledger/internal/application/service"
	"github.com/damon-houk/transaction-ledger/internal/infrastructure/cache"
	"github.com/damon-houk/transaction-ledger/internal/infrastructure/db"
	"github.com/damon-houk/transaction-ledger/internal/infrastructure/handler"
	"github.com/damon-houk/transaction-ledger/internal/infrastructure/logger"
	"github.com/damon-houk/transaction-ledger/internal/infrastructure/middleware"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestServer wires the full stack on an in-memory database
func setupTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	badgerDB, err := db.OpenInMemory()
	require.NoError(t, err, "Failed to open database")

	quiet := logger.NewJSONLogger(io.Discard, logger.ErrorLevel)
	store := service.NewRecordStore(db.NewBadgerTransactionRepository(badgerDB), cache.NewTransactionCache(), quiet)
	txService := service.NewTransactionService(store, service.NewValidator(store, quiet), quiet)
	txHandler := handler.NewTransactionHandler(txService, quiet, 10)

	router := mux.NewRouter()
	router.Use(middleware.RequestIDMiddleware)
	txHandler.RegisterRoutes(router)

	server := httptest.NewServer(router)
	t.Cleanup(func() {
		server.Close()
		badgerDB.Close()
	})

	return server
}

func doJSON(t *testing.T, method, url, body string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(method, url, bytes.NewBufferString(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestTransactionLifecycle(t *testing.T) {
	server := setupTestServer(t)

	// Step 1: create
	resp := doJSON(t, http.MethodPost, server.URL+"/api/transactions",
		`{"type": "DEPOSIT", "amount": "123.45", "description": "Test transaction"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(middleware.RequestIDHeader))

	var created handler.TransactionResponse
	decodeBody(t, resp, &created)
	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, "PENDING", string(created.Status))
	assert.NotEmpty(t, created.Timestamp)

	txURL := fmt.Sprintf("%s/api/transactions/%d", server.URL, created.ID)

	// Step 2: retrieve
	resp = doJSON(t, http.MethodGet, txURL, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got handler.TransactionResponse
	decodeBody(t, resp, &got)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Test transaction", got.Description)
	assert.True(t, decimal.RequireFromString("123.45").Equal(got.Amount))

	// Step 3: replace
	resp = doJSON(t, http.MethodPut, txURL,
		`{"type": "DEPOSIT", "amount": "200", "description": "Updated"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var updated handler.TransactionResponse
	decodeBody(t, resp, &updated)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, created.Timestamp, updated.Timestamp)
	assert.Equal(t, "Updated", updated.Description)

	// Step 4: balance reflects the replacement
	resp = doJSON(t, http.MethodGet, server.URL+"/api/balance", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var balance handler.BalanceResponse
	decodeBody(t, resp, &balance)
	assert.True(t, decimal.NewFromInt(200).Equal(balance.Balance), "got %s", balance.Balance)

	// Step 5: delete
	resp = doJSON(t, http.MethodDelete, txURL, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, txURL, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doJSON(t, http.MethodDelete, txURL, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestWithdrawalFlow(t *testing.T) {
	server := setupTestServer(t)

	resp := doJSON(t, http.MethodPost, server.URL+"/api/transactions", `{"type": "DEPOSIT", "amount": 100}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, server.URL+"/api/transactions", `{"type": "WITHDRAW", "amount": 200}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var errorResp handler.ErrorResponse
	decodeBody(t, resp, &errorResp)
	assert.Equal(t, service.ReasonInsufficientBalance, errorResp.Description)
	assert.NotEmpty(t, errorResp.RequestID)

	resp = doJSON(t, http.MethodPost, server.URL+"/api/transactions", `{"type": "WITHDRAWAL", "amount": 30}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var withdrawal handler.TransactionResponse
	decodeBody(t, resp, &withdrawal)
	assert.Equal(t, "WITHDRAWAL", string(withdrawal.Type))

	resp = doJSON(t, http.MethodGet, server.URL+"/api/balance", "")
	var balance handler.BalanceResponse
	decodeBody(t, resp, &balance)
	assert.True(t, decimal.NewFromInt(70).Equal(balance.Balance), "got %s", balance.Balance)
}

func TestListTransactionsEndpoint(t *testing.T) {
	server := setupTestServer(t)

	for i := 0; i < 25; i++ {
		resp := doJSON(t, http.MethodPost, server.URL+"/api/transactions", `{"type": "DEPOSIT", "amount": "1"}`)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	t.Run("Default page", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, server.URL+"/api/transactions", "")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var page handler.PageResponse
		decodeBody(t, resp, &page)
		assert.Len(t, page.Content, 10)
		assert.Equal(t, 1, page.Page)
		assert.Equal(t, 3, page.TotalPages)
		assert.Equal(t, 25, page.TotalElements)
		assert.Equal(t, int64(1), page.Content[0].ID)
	})

	t.Run("Last page", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, server.URL+"/api/transactions?page=3&size=10", "")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var page handler.PageResponse
		decodeBody(t, resp, &page)
		assert.Len(t, page.Content, 5)
		assert.Equal(t, int64(21), page.Content[0].ID)
	})

	t.Run("Past the end", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, server.URL+"/api/transactions?page=9&size=10", "")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var page handler.PageResponse
		decodeBody(t, resp, &page)
		assert.Empty(t, page.Content)
		assert.Equal(t, 25, page.TotalElements)
	})

	t.Run("Invalid parameters", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, server.URL+"/api/transactions?size=0", "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		resp = doJSON(t, http.MethodGet, server.URL+"/api/transactions?page=abc", "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestErrorHandling(t *testing.T) {
	server := setupTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"Malformed JSON", http.MethodPost, "/api/transactions", `{"type": `, http.StatusBadRequest},
		{"Unknown type", http.MethodPost, "/api/transactions", `{"type": "BRIBE", "amount": 1}`, http.StatusBadRequest},
		{"Missing amount", http.MethodPost, "/api/transactions", `{"type": "DEPOSIT"}`, http.StatusBadRequest},
		{"Zero amount", http.MethodPost, "/api/transactions", `{"type": "DEPOSIT", "amount": 0}`, http.StatusBadRequest},
		{"Negative amount", http.MethodPost, "/api/transactions", `{"type": "DEPOSIT", "amount": -5}`, http.StatusBadRequest},
		{"Transfer without target", http.MethodPost, "/api/transactions", `{"type": "TRANSFER", "amount": 5}`, http.StatusBadRequest},
		{"Refund without original", http.MethodPost, "/api/transactions", `{"type": "REFUND", "amount": 5}`, http.StatusBadRequest},
		{"Fee without system initiator", http.MethodPost, "/api/transactions", `{"type": "FEE_INCOME", "amount": 5}`, http.StatusBadRequest},
		{"Non-numeric id", http.MethodGet, "/api/transactions/abc", "", http.StatusBadRequest},
		{"Unknown id", http.MethodGet, "/api/transactions/999", "", http.StatusNotFound},
		{"Update unknown id", http.MethodPut, "/api/transactions/999", `{"type": "DEPOSIT", "amount": 1}`, http.StatusNotFound},
		{"Update invalid body", http.MethodPut, "/api/transactions/1", `{"type": "DEPOSIT", "amount": -1}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doJSON(t, tt.method, server.URL+tt.path, tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)

			var errorResp handler.ErrorResponse
			decodeBody(t, resp, &errorResp)
			assert.Equal(t, tt.status, errorResp.Status)
			assert.NotEmpty(t, errorResp.Error)
		})
	}

	t.Run("Duplicate caller-supplied id", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, server.URL+"/api/transactions", `{"type": "DEPOSIT", "amount": 1}`)
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var created handler.TransactionResponse
		decodeBody(t, resp, &created)

		resp = doJSON(t, http.MethodPost, server.URL+"/api/transactions",
			fmt.Sprintf(`{"id": %d, "type": "DEPOSIT", "amount": 1}`, created.ID))
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})
}
