package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tally/internal/account"
	"github.com/MrJamesThe3rd/tally/internal/http/render"
	"github.com/MrJamesThe3rd/tally/internal/ledger"
)

type Handler struct {
	svc    *account.Service
	ledger *ledger.Service
}

func NewHandler(svc *account.Service, ledgerSvc *ledger.Service) *Handler {
	return &Handler{svc: svc, ledger: ledgerSvc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/total", h.total)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Post("/{id}/adjust", h.adjust)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.svc.List(r.Context())
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, toResponseList(accounts))
}

type createAccountRequest struct {
	Name           string       `json:"name"`
	Type           account.Type `json:"type"`
	CurrencyCode   string       `json:"currency_code"`
	ColorHex       string       `json:"color_hex"`
	SortOrder      int          `json:"sort_order"`
	IsDefault      bool         `json:"is_default"`
	IncludeInTotal *bool        `json:"include_in_total"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := render.Decode(r, &req); err != nil {
		render.Error(w, r, err)
		return
	}

	includeInTotal := true
	if req.IncludeInTotal != nil {
		includeInTotal = *req.IncludeInTotal
	}

	a, err := h.svc.Create(r.Context(), account.CreateParams{
		Name:           req.Name,
		Type:           req.Type,
		CurrencyCode:   req.CurrencyCode,
		ColorHex:       req.ColorHex,
		SortOrder:      req.SortOrder,
		IsDefault:      req.IsDefault,
		IncludeInTotal: includeInTotal,
	})
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusCreated, toResponse(a))
}

func (h *Handler) total(w http.ResponseWriter, r *http.Request) {
	total, err := h.svc.TotalBalance(r.Context())
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, totalResponse{Total: total})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := render.IDParam(r)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	a, err := h.svc.Get(r.Context(), id)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, toResponse(a))
}

type updateAccountRequest struct {
	Name           *string       `json:"name,omitempty"`
	Type           *account.Type `json:"type,omitempty"`
	ColorHex       *string       `json:"color_hex,omitempty"`
	SortOrder      *int          `json:"sort_order,omitempty"`
	IsDefault      *bool         `json:"is_default,omitempty"`
	IncludeInTotal *bool         `json:"include_in_total,omitempty"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := render.IDParam(r)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	var req updateAccountRequest
	if err := render.Decode(r, &req); err != nil {
		render.Error(w, r, err)
		return
	}

	a, err := h.svc.Update(r.Context(), id, account.UpdateParams{
		Name:           req.Name,
		Type:           req.Type,
		ColorHex:       req.ColorHex,
		SortOrder:      req.SortOrder,
		IsDefault:      req.IsDefault,
		IncludeInTotal: req.IncludeInTotal,
	})
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, toResponse(a))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := render.IDParam(r)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		render.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type adjustRequest struct {
	Delta decimal.Decimal `json:"delta"`
}

func (h *Handler) adjust(w http.ResponseWriter, r *http.Request) {
	id, err := render.IDParam(r)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	var req adjustRequest
	if err := render.Decode(r, &req); err != nil {
		render.Error(w, r, err)
		return
	}

	a, err := h.ledger.AdjustBalance(r.Context(), id, req.Delta)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, toResponse(a))
}
