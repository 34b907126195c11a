package importcsv

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tally/internal/apperr"
	"github.com/MrJamesThe3rd/tally/internal/http/render"
	"github.com/MrJamesThe3rd/tally/internal/importer"
)

const maxUploadSize = 10 << 20

type Handler struct {
	importer *importer.Service
}

func NewHandler(importSvc *importer.Service) *Handler {
	return &Handler{importer: importSvc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.upload)
}

type importResponse struct {
	Format   string `json:"format"`
	Imported int    `json:"imported"`
}

// upload takes a multipart form with a "file" part plus account_id and the
// optional income_category_id and expense_category_id fields.
func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		render.BadRequest(w, "invalid multipart form: "+err.Error())
		return
	}

	target, err := parseTarget(r)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		render.BadRequest(w, "missing file")
		return
	}
	defer file.Close()

	res, err := h.importer.Import(r.Context(), file, target)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusCreated, importResponse{Format: res.Format, Imported: res.Imported})
}

func parseTarget(r *http.Request) (importer.Target, error) {
	var target importer.Target

	fields := []struct {
		name     string
		dst      *uuid.UUID
		required bool
	}{
		{"account_id", &target.AccountID, true},
		{"income_category_id", &target.IncomeCategoryID, false},
		{"expense_category_id", &target.ExpenseCategoryID, false},
	}

	for _, f := range fields {
		s := r.FormValue(f.name)
		if s == "" {
			if f.required {
				return target, apperr.NewValidationError(f.name, "is required")
			}

			continue
		}

		id, err := uuid.Parse(s)
		if err != nil {
			return target, apperr.NewValidationError(f.name, "must be a UUID")
		}

		*f.dst = id
	}

	return target, nil
}
