package transaction

import (
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tally/internal/apperr"
	"github.com/MrJamesThe3rd/tally/internal/http/render"
	"github.com/MrJamesThe3rd/tally/internal/ledger"
	"github.com/MrJamesThe3rd/tally/internal/transaction"
)

type Handler struct {
	svc    *transaction.Service
	ledger *ledger.Service
}

func NewHandler(svc *transaction.Service, ledgerSvc *ledger.Service) *Handler {
	return &Handler{svc: svc, ledger: ledgerSvc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Delete("/{id}", h.delete)
}

type createTransactionRequest struct {
	Amount     decimal.Decimal  `json:"amount"`
	Type       transaction.Type `json:"type"`
	CategoryID uuid.UUID        `json:"category_id"`
	AccountID  uuid.UUID        `json:"account_id"`
	Date       time.Time        `json:"date"`
	Note       string           `json:"note"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := render.Decode(r, &req); err != nil {
		render.Error(w, r, err)
		return
	}

	tx, err := h.ledger.AddTransaction(r.Context(), ledger.AddParams{
		Amount:     req.Amount,
		Type:       req.Type,
		CategoryID: req.CategoryID,
		AccountID:  req.AccountID,
		Date:       req.Date,
		Note:       req.Note,
	})
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusCreated, toResponse(tx))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter, err := ParseFilter(r.URL.Query())
	if err != nil {
		render.Error(w, r, err)
		return
	}

	txs, err := h.svc.List(r.Context(), filter)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, toResponseList(txs))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := render.IDParam(r)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	tx, err := h.svc.Get(r.Context(), id)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, toResponse(tx))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := render.IDParam(r)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	if err := h.ledger.DeleteTransaction(r.Context(), id); err != nil {
		render.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ParseFilter reads start_date, end_date (YYYY-MM-DD, both inclusive),
// account_id and category_id from q.
func ParseFilter(q url.Values) (transaction.ListFilter, error) {
	var filter transaction.ListFilter

	if s := q.Get("start_date"); s != "" {
		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			return filter, apperr.NewValidationError("start_date", "must be YYYY-MM-DD")
		}

		filter.StartDate = new(t)
	}

	if s := q.Get("end_date"); s != "" {
		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			return filter, apperr.NewValidationError("end_date", "must be YYYY-MM-DD")
		}

		filter.EndDate = new(t.Add(24*time.Hour - time.Nanosecond))
	}

	if s := q.Get("account_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			return filter, apperr.NewValidationError("account_id", "must be a UUID")
		}

		filter.AccountID = &id
	}

	if s := q.Get("category_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			return filter, apperr.NewValidationError("category_id", "must be a UUID")
		}

		filter.CategoryID = &id
	}

	return filter, nil
}
