package http

import (
	"errors"
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/services"
)

type transactionList struct {
	Transactions []core.Transaction `json:"transactions"`
	Count        int                `json:"count"`
	Query        string             `json:"query,omitempty"`
}

type summaryResponse struct {
	core.Totals
	Currency  string          `json:"currency"`
	Formatted formattedTotals `json:"formatted"`
	Version   uint64          `json:"version"`
}

type monthlyResponse struct {
	Months int                `json:"months"`
	Series []core.MonthBucket `json:"series"`
}

type categoriesResponse struct {
	Categories       []services.CategoryShare `json:"categories"`
	TopCategoryShare int                      `json:"topCategoryShare"`
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	query := sanitizeInput(r.URL.Query().Get("q"))
	txs := s.transactions.List(query)
	if txs == nil {
		txs = []core.Transaction{}
	}
	NewJSONResponse().Body(transactionList{Transactions: txs, Count: len(txs), Query: query}).Write(w, r)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.FromContext(ctx)

	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		logger.WarnContext(ctx, "Rejected transaction body", log.FieldError, err)
		if errors.Is(err, ErrBodyTooLarge) {
			ErrorResponse(http.StatusRequestEntityTooLarge, err.Error()).Write(w, r)
			return
		}
		if errors.Is(err, ErrUnsupportedBody) {
			ErrorResponse(http.StatusUnsupportedMediaType, err.Error()).Write(w, r)
			return
		}
		BadRequestError(err.Error()).Write(w, r)
		return
	}

	tx, err := s.transactions.Create(ctx, parser.DraftInput())
	if err != nil {
		var verr *core.ValidationError
		if errors.As(err, &verr) {
			logger.InfoContext(ctx, "Transaction validation failed", "field", verr.Field, log.FieldError, verr.Err)
		} else {
			log.NewStructuredLogger(logger).LogError(ctx, "Failed to add transaction", err, log.OpAdd, nil)
		}
		ValidationErrorResponse(err).Write(w, r)
		return
	}

	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/transactions/"+tx.ID).
		Body(tx).
		Write(w, r)
}

// handleDeleteTransaction answers 204 whether or not the id existed.
func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := sanitizeInput(r.PathValue("id"))
	if id == "" {
		BadRequestError("missing transaction id").Write(w, r)
		return
	}
	if missing := s.transactions.Delete(r.Context(), id); len(missing) > 0 {
		log.FromContext(r.Context()).DebugContext(r.Context(), "Delete of unknown transaction", log.FieldTxID, id)
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w, r)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	snap := s.dashboard.Snapshot(r.Context(), s.monthWindow, s.reference())
	NewJSONResponse().Body(summaryResponse{
		Totals:    snap.Totals,
		Currency:  s.displayCurrency(),
		Formatted: formatTotals(snap.Totals, s.displayCurrency()),
		Version:   snap.Version,
	}).Write(w, r)
}

func (s *Server) handleMonthly(w http.ResponseWriter, r *http.Request) {
	months, err := ParseMonths(r.URL.Query(), s.monthWindow)
	if err != nil {
		BadRequestError(err.Error()).Write(w, r)
		return
	}
	snap := s.dashboard.Snapshot(r.Context(), months, s.reference())
	NewJSONResponse().Body(monthlyResponse{Months: snap.Months, Series: snap.Monthly}).Write(w, r)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	snap := s.dashboard.Snapshot(r.Context(), s.monthWindow, s.reference())
	cats := snap.Categories
	if cats == nil {
		cats = []services.CategoryShare{}
	}
	NewJSONResponse().Body(categoriesResponse{Categories: cats, TopCategoryShare: snap.TopCategoryShare}).Write(w, r)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	months, err := ParseMonths(r.URL.Query(), s.monthWindow)
	if err != nil {
		BadRequestError(err.Error()).Write(w, r)
		return
	}
	NewJSONResponse().Body(s.dashboard.Snapshot(r.Context(), months, s.reference())).Write(w, r)
}

func (s *Server) displayCurrency() string {
	if s.currency == "" {
		return core.DefaultCurrency
	}
	return s.currency
}
