package export

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/tally/internal/export"
	"github.com/MrJamesThe3rd/tally/internal/http/render"
	txhttp "github.com/MrJamesThe3rd/tally/internal/http/transaction"
)

type Handler struct {
	svc *export.Service
	now func() time.Time
}

func NewHandler(svc *export.Service) *Handler {
	return &Handler{svc: svc, now: time.Now}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.download)
}

// download accepts the same filter query as the transaction list.
func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	filter, err := txhttp.ParseFilter(r.URL.Query())
	if err != nil {
		render.Error(w, r, err)
		return
	}

	var buf bytes.Buffer

	n, err := h.svc.Export(r.Context(), &buf, filter)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=\"tally_%s.csv\"", h.now().Format("20060102")))
	w.Header().Set("X-Row-Count", strconv.Itoa(n))

	_, _ = buf.WriteTo(w)
}
