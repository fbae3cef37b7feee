package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/damon-houk/transaction-ledger/internal/application/service"
	"github.com/damon-houk/transaction-ledger/internal/domain/entity"
	"github.com/damon-houk/transaction-ledger/internal/infrastructure/logger"
	"github.com/damon-houk/transaction-ledger/internal/infrastructure/middleware"
	"github.com/gorilla/mux"
)

// DefaultPageSize is used when neither the request nor the handler config sets one
const DefaultPageSize = 10

// TransactionHandler handles HTTP requests for transactions
type TransactionHandler struct {
	service         *service.TransactionService
	logger          logger.Logger
	defaultPageSize int
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(service *service.TransactionService, log logger.Logger, defaultPageSize int) *TransactionHandler {
	if log == nil {
		log = logger.GetDefaultLogger()
	}
	if defaultPageSize < 1 {
		defaultPageSize = DefaultPageSize
	}

	return &TransactionHandler{
		service:         service,
		logger:          log,
		defaultPageSize: defaultPageSize,
	}
}

// CreateTransaction handles the creation of a new transaction
func (h *TransactionHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	tx, ok := h.decodeTransaction(w, r)
	if !ok {
		return
	}

	created, err := h.service.CreateTransaction(r.Context(), tx)
	if err != nil {
		h.handleServiceError(w, err, requestID, "creating the transaction")
		return
	}

	writeJSON(w, http.StatusCreated, toTransactionResponse(created))
}

// GetTransaction handles retrieving a transaction by ID
func (h *TransactionHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	tx, err := h.service.GetTransaction(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err, requestID, "retrieving the transaction")
		return
	}

	writeJSON(w, http.StatusOK, toTransactionResponse(tx))
}

// ListTransactions handles paged listing; page is 1-based
func (h *TransactionHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	page, err := queryInt(r, "page", 1)
	if err != nil {
		sendErrorResponse(w, h.logger, "Invalid page parameter",
			"page must be an integer", http.StatusBadRequest, requestID)
		return
	}
	size, err := queryInt(r, "size", h.defaultPageSize)
	if err != nil {
		sendErrorResponse(w, h.logger, "Invalid size parameter",
			"size must be an integer", http.StatusBadRequest, requestID)
		return
	}

	result, err := h.service.ListTransactions(r.Context(), page, size)
	if err != nil {
		h.handleServiceError(w, err, requestID, "listing transactions")
		return
	}

	content := make([]TransactionResponse, 0, len(result.Items))
	for _, tx := range result.Items {
		content = append(content, toTransactionResponse(tx))
	}

	writeJSON(w, http.StatusOK, PageResponse{
		Content:       content,
		Page:          result.PageNumber,
		Size:          size,
		TotalPages:    result.TotalPages,
		TotalElements: result.TotalCount,
	})
}

// UpdateTransaction handles full replacement of a stored transaction
func (h *TransactionHandler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	tx, ok := h.decodeTransaction(w, r)
	if !ok {
		return
	}

	updated, err := h.service.UpdateTransaction(r.Context(), id, tx)
	if err != nil {
		h.handleServiceError(w, err, requestID, "updating the transaction")
		return
	}

	writeJSON(w, http.StatusOK, toTransactionResponse(updated))
}

// DeleteTransaction handles removal of a stored transaction
func (h *TransactionHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteTransaction(r.Context(), id); err != nil {
		h.handleServiceError(w, err, requestID, "deleting the transaction")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetBalance handles the aggregate balance query
func (h *TransactionHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	balance, err := h.service.GetBalance(r.Context())
	if err != nil {
		h.handleServiceError(w, err, requestID, "computing the balance")
		return
	}

	writeJSON(w, http.StatusOK, BalanceResponse{Balance: balance})
}

// RegisterRoutes registers the transaction handler routes
func (h *TransactionHandler) RegisterRoutes(router *mux.Router) {
	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/transactions", h.CreateTransaction).Methods("POST")
	api.HandleFunc("/transactions", h.ListTransactions).Methods("GET")
	api.HandleFunc("/transactions/{id}", h.GetTransaction).Methods("GET")
	api.HandleFunc("/transactions/{id}", h.UpdateTransaction).Methods("PUT")
	api.HandleFunc("/transactions/{id}", h.DeleteTransaction).Methods("DELETE")
	api.HandleFunc("/balance", h.GetBalance).Methods("GET")

	h.logger.Info("Transaction routes registered", map[string]interface{}{
		"routes": []string{
			"POST /api/transactions",
			"GET /api/transactions",
			"GET /api/transactions/{id}",
			"PUT /api/transactions/{id}",
			"DELETE /api/transactions/{id}",
			"GET /api/balance",
		},
	})
}

func (h *TransactionHandler) decodeTransaction(w http.ResponseWriter, r *http.Request) (*entity.Transaction, bool) {
	requestID := middleware.GetRequestID(r.Context())

	var req TransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid request body", map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
		sendErrorResponse(w, h.logger, "Invalid request body",
			"The request body could not be parsed as a transaction", http.StatusBadRequest, requestID)
		return nil, false
	}

	tx, err := req.toEntity()
	if err != nil {
		h.handleServiceError(w, err, requestID, "reading the transaction")
		return nil, false
	}
	return tx, true
}

func (h *TransactionHandler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		sendErrorResponse(w, h.logger, "Invalid transaction ID",
			"Transaction ID must be an integer", http.StatusBadRequest, middleware.GetRequestID(r.Context()))
		return 0, false
	}
	return id, true
}

// handleServiceError maps domain errors to HTTP status codes
func (h *TransactionHandler) handleServiceError(w http.ResponseWriter, err error, requestID, action string) {
	var invalid *entity.InvalidTransactionError

	switch {
	case errors.As(err, &invalid):
		sendErrorResponse(w, h.logger, "Invalid transaction", invalid.Reason, http.StatusBadRequest, requestID)
	case errors.Is(err, entity.ErrDuplicateIdentifier):
		sendErrorResponse(w, h.logger, "Duplicate transaction ID",
			"A transaction with this ID already exists", http.StatusConflict, requestID)
	case errors.Is(err, entity.ErrTransactionNotFound):
		sendErrorResponse(w, h.logger, "Transaction not found",
			"The requested transaction could not be found", http.StatusNotFound, requestID)
	default:
		h.logger.Error("Unexpected error", map[string]interface{}{
			"request_id": requestID,
			"action":     action,
			"error":      err.Error(),
		})
		sendErrorResponse(w, h.logger, "Internal server error",
			"An unexpected error occurred while "+action, http.StatusInternalServerError, requestID)
	}
}

func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// sendErrorResponse sends a standardized error response
func sendErrorResponse(w http.ResponseWriter, log logger.Logger, message, description string, statusCode int, requestID string) {
	resp := ErrorResponse{
		Error:       message,
		Status:      statusCode,
		Description: description,
		RequestID:   requestID,
	}

	log.Debug("Sending error response", map[string]interface{}{
		"request_id":  requestID,
		"status_code": statusCode,
		"message":     message,
	})

	writeJSON(w, statusCode, resp)
}
