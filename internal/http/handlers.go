package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"kasa/internal/analytics"
	"kasa/internal/core"
	"kasa/internal/services"
	"kasa/internal/storage"
)

const dateLayout = "2006-01-02"

type transactionRequest struct {
	Type           string          `json:"type"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	CategoryID     string          `json:"categoryId"`
	DepartmentName string          `json:"departmentName"`
	Date           string          `json:"date"`
	Description    string          `json:"description"`
	IssuedTo       string          `json:"issuedTo,omitempty"`
	DecisionNumber string          `json:"decisionNumber,omitempty"`
	CashierName    string          `json:"cashierName,omitempty"`
	AmountInWords  string          `json:"amountInWords,omitempty"`
}

type transactionResponse struct {
	ID             string          `json:"id"`
	Type           string          `json:"type"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	CategoryID     string          `json:"categoryId"`
	DepartmentName string          `json:"departmentName,omitempty"`
	Date           string          `json:"date"`
	Description    string          `json:"description,omitempty"`
}

type bucketResponse struct {
	Currency string          `json:"currency"`
	Income   decimal.Decimal `json:"income"`
	Expense  decimal.Decimal `json:"expense"`
}

type overviewResponse struct {
	Range        string                `json:"range"`
	Department   string                `json:"department"`
	Transactions []transactionResponse `json:"transactions,omitempty"`
	Buckets      []bucketResponse      `json:"buckets"`
}

type editDepartmentRequest struct {
	Department      string `json:"department"`
	ApplyToCategory bool   `json:"applyToCategory"`
}

type categoryRequest struct {
	Name           string `json:"name"`
	DepartmentName string `json:"departmentName"`
}

type categoryResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	DepartmentName string `json:"departmentName,omitempty"`
}

func toTransactionResponse(tx core.Transaction) transactionResponse {
	return transactionResponse{
		ID:             tx.ID,
		Type:           string(tx.Type),
		Amount:         tx.Amount,
		Currency:       tx.Currency,
		CategoryID:     tx.CategoryID,
		DepartmentName: tx.DepartmentName,
		Date:           tx.Date.Format(dateLayout),
		Description:    tx.Description,
	}
}

func toOverviewResponse(o services.Overview) overviewResponse {
	resp := overviewResponse{
		Range:        string(o.Range),
		Department:   o.Department,
		Transactions: make([]transactionResponse, 0, len(o.Transactions)),
		Buckets:      make([]bucketResponse, 0, len(o.Buckets)),
	}
	for _, tx := range o.Transactions {
		resp.Transactions = append(resp.Transactions, toTransactionResponse(tx))
	}
	for _, b := range o.Buckets {
		resp.Buckets = append(resp.Buckets, bucketResponse{Currency: b.Currency, Income: b.Income, Expense: b.Expense})
	}
	return resp
}

// filterParams reads the range token and department filter from the query
// string. Missing values fall back to the unfiltered defaults.
func filterParams(r *http.Request) (analytics.RangeToken, string) {
	token := analytics.RangeToken(r.URL.Query().Get("range"))
	if token == "" {
		token = analytics.RangeAll
	}
	department := sanitizeInput(r.URL.Query().Get("department"))
	if department == "" {
		department = analytics.DepartmentAll
	}
	return token, department
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	token, department := filterParams(r)

	overview, err := s.stats.Overview(r.Context(), token, department, time.Now())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to compute overview", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load transactions")
		return
	}

	writeJSON(w, http.StatusOK, toOverviewResponse(overview))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	token, department := filterParams(r)
	key := string(token) + "|" + department

	if cached, ok := s.statsCache.Get(key); ok {
		resp := toOverviewResponse(cached)
		resp.Transactions = nil
		writeJSON(w, http.StatusOK, resp)
		return
	}

	overview, err := s.stats.Overview(r.Context(), token, department, time.Now())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to compute stats", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to compute stats")
		return
	}
	s.statsCache.Set(key, overview)

	resp := toOverviewResponse(overview)
	resp.Transactions = nil
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	tx := core.Transaction{
		Type:           core.TransactionType(req.Type),
		Amount:         req.Amount,
		Currency:       sanitizeInput(req.Currency),
		CategoryID:     sanitizeInput(req.CategoryID),
		DepartmentName: sanitizeInput(req.DepartmentName),
		Date:           core.DateOf(date),
		Description:    sanitizeInput(req.Description),
		IssuedTo:       sanitizeInput(req.IssuedTo),
		DecisionNumber: sanitizeInput(req.DecisionNumber),
		CashierName:    sanitizeInput(req.CashierName),
		AmountInWords:  sanitizeInput(req.AmountInWords),
	}

	created, err := s.tracker.CreateTransaction(r.Context(), tx)
	if err != nil {
		if isValidationError(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.ErrorContext(r.Context(), "Failed to create transaction", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create transaction")
		return
	}

	s.statsCache.Purge()
	writeJSON(w, http.StatusCreated, toTransactionResponse(created))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := s.tracker.DeleteTransaction(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "transaction not found")
			return
		}
		slog.ErrorContext(r.Context(), "Failed to delete transaction", "transaction_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete transaction")
		return
	}

	s.statsCache.Purge()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleEditDepartment(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req editDepartmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := s.tracker.EditDepartment(r.Context(), id, sanitizeInput(req.Department), req.ApplyToCategory)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "transaction not found")
			return
		}
		slog.ErrorContext(r.Context(), "Failed to edit department", "transaction_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to edit department")
		return
	}

	s.statsCache.Purge()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDepartments(w http.ResponseWriter, r *http.Request) {
	departments, err := s.stats.Departments(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list departments", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list departments")
		return
	}

	writeJSON(w, http.StatusOK, map[string][]string{"departments": departments})
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.categories.ListCategories(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list categories", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list categories")
		return
	}

	resp := make([]categoryResponse, 0, len(cats))
	for _, c := range cats {
		resp = append(resp, categoryResponse{ID: c.ID, Name: c.Name, DepartmentName: c.DepartmentName})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cat := core.Category{
		Name:           sanitizeInput(req.Name),
		DepartmentName: sanitizeInput(req.DepartmentName),
	}
	if err := cat.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := s.categories.CreateCategory(r.Context(), cat)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to create category", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create category")
		return
	}

	s.statsCache.Purge()
	writeJSON(w, http.StatusCreated, categoryResponse{ID: created.ID, Name: created.Name, DepartmentName: created.DepartmentName})
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := s.categories.DeleteCategory(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "category not found")
			return
		}
		slog.ErrorContext(r.Context(), "Failed to delete category", "category_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete category")
		return
	}

	s.statsCache.Purge()
	w.WriteHeader(http.StatusNoContent)
}

type summaryResponse struct {
	Currency string          `json:"currency"`
	Year     int             `json:"year"`
	Month    int             `json:"month"`
	Income   decimal.Decimal `json:"income"`
	Expense  decimal.Decimal `json:"expense"`
}

// handleMonthSummaries serves the worker-maintained totals for one month.
func (s *Server) handleMonthSummaries(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil || year < 1 {
		writeError(w, http.StatusBadRequest, "invalid year")
		return
	}
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil || month < 1 || month > 12 {
		writeError(w, http.StatusBadRequest, "invalid month, expected 1-12")
		return
	}

	summaries, err := s.summaries.ListMonthSummaries(r.Context(), year, month)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list month summaries", "year", year, "month", month, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list summaries")
		return
	}

	resp := make([]summaryResponse, 0, len(summaries))
	for _, ms := range summaries {
		resp = append(resp, summaryResponse{
			Currency: ms.Currency,
			Year:     ms.Year,
			Month:    ms.Month,
			Income:   ms.Income,
			Expense:  ms.Expense,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func isValidationError(err error) bool {
	return errors.Is(err, core.ErrInvalidDate) ||
		errors.Is(err, core.ErrInvalidType) ||
		errors.Is(err, core.ErrInvalidAmount) ||
		errors.Is(err, core.ErrEmptyCurrency) ||
		errors.Is(err, core.ErrDescriptionLimit)
}
