package category

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tally/internal/apperr"
	"github.com/MrJamesThe3rd/tally/internal/category"
	"github.com/MrJamesThe3rd/tally/internal/http/render"
	"github.com/MrJamesThe3rd/tally/internal/transaction"
)

type Handler struct {
	svc *category.Service
}

func NewHandler(svc *category.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

type categoryResponse struct {
	ID              uuid.UUID          `json:"id"`
	Name            string             `json:"name"`
	Icon            string             `json:"icon"`
	ColorHex        string             `json:"color_hex"`
	ApplicableTypes []transaction.Type `json:"applicable_types"`
	SortOrder       int                `json:"sort_order"`
	IsSystem        bool               `json:"is_system"`
	CreatedAt       time.Time          `json:"created_at"`
}

func toResponse(c *category.Category) categoryResponse {
	return categoryResponse{
		ID:              c.ID,
		Name:            c.Name,
		Icon:            c.Icon,
		ColorHex:        c.ColorHex,
		ApplicableTypes: c.ApplicableTypes,
		SortOrder:       c.SortOrder,
		IsSystem:        c.IsSystem,
		CreatedAt:       c.CreatedAt,
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	var filter category.ListFilter

	if s := r.URL.Query().Get("type"); s != "" {
		t := transaction.Type(s)
		if !t.Valid() {
			render.Error(w, r, apperr.ErrInvalidType)
			return
		}

		filter.Type = &t
	}

	categories, err := h.svc.List(r.Context(), filter)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	resp := make([]categoryResponse, len(categories))
	for i, c := range categories {
		resp[i] = toResponse(c)
	}

	render.JSON(w, http.StatusOK, resp)
}

type createCategoryRequest struct {
	Name            string             `json:"name"`
	Icon            string             `json:"icon"`
	ColorHex        string             `json:"color_hex"`
	ApplicableTypes []transaction.Type `json:"applicable_types"`
	SortOrder       int                `json:"sort_order"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := render.Decode(r, &req); err != nil {
		render.Error(w, r, err)
		return
	}

	c, err := h.svc.Create(r.Context(), category.CreateParams{
		Name:            req.Name,
		Icon:            req.Icon,
		ColorHex:        req.ColorHex,
		ApplicableTypes: req.ApplicableTypes,
		SortOrder:       req.SortOrder,
	})
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusCreated, toResponse(c))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := render.IDParam(r)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	c, err := h.svc.Get(r.Context(), id)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, toResponse(c))
}

type updateCategoryRequest struct {
	Name            *string            `json:"name,omitempty"`
	Icon            *string            `json:"icon,omitempty"`
	ColorHex        *string            `json:"color_hex,omitempty"`
	ApplicableTypes []transaction.Type `json:"applicable_types,omitempty"`
	SortOrder       *int               `json:"sort_order,omitempty"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := render.IDParam(r)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	var req updateCategoryRequest
	if err := render.Decode(r, &req); err != nil {
		render.Error(w, r, err)
		return
	}

	c, err := h.svc.Update(r.Context(), id, category.UpdateParams{
		Name:            req.Name,
		Icon:            req.Icon,
		ColorHex:        req.ColorHex,
		ApplicableTypes: req.ApplicableTypes,
		SortOrder:       req.SortOrder,
	})
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, toResponse(c))
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
