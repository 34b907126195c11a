package statistics

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tally/internal/apperr"
	"github.com/MrJamesThe3rd/tally/internal/http/render"
	"github.com/MrJamesThe3rd/tally/internal/statistics"
	"github.com/MrJamesThe3rd/tally/internal/transaction"
)

type Handler struct {
	svc *statistics.Service
}

func NewHandler(svc *statistics.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.get)
}

type categoryResponse struct {
	CategoryID       uuid.UUID        `json:"category_id"`
	Name             string           `json:"name"`
	Icon             string           `json:"icon"`
	ColorHex         string           `json:"color_hex"`
	Amount           decimal.Decimal  `json:"amount"`
	TransactionCount int              `json:"transaction_count"`
	Type             transaction.Type `json:"type"`
	Percentage       decimal.Decimal  `json:"percentage"`
}

type dailyAveragesResponse struct {
	AverageIncome    decimal.Decimal `json:"average_income"`
	AverageExpense   decimal.Decimal `json:"average_expense"`
	AverageNetChange decimal.Decimal `json:"average_net_change"`
	DaysInPeriod     int             `json:"days_in_period"`
}

type statisticsResponse struct {
	Start             time.Time             `json:"start"`
	End               time.Time             `json:"end"`
	TotalIncome       decimal.Decimal       `json:"total_income"`
	TotalExpenses     decimal.Decimal       `json:"total_expenses"`
	NetChange         decimal.Decimal       `json:"net_change"`
	SavingsRate       *decimal.Decimal      `json:"savings_rate"`
	TransactionCount  int                   `json:"transaction_count"`
	CategoryBreakdown []categoryResponse    `json:"category_breakdown"`
	DailyAverages     dailyAveragesResponse `json:"daily_averages"`
}

func toResponse(s *statistics.Statistics) statisticsResponse {
	resp := statisticsResponse{
		Start:             s.Period.Start,
		End:               s.Period.End,
		TotalIncome:       s.TotalIncome,
		TotalExpenses:     s.TotalExpenses,
		NetChange:         s.NetChange(),
		TransactionCount:  s.TransactionCount,
		CategoryBreakdown: make([]categoryResponse, len(s.CategoryBreakdown)),
		DailyAverages: dailyAveragesResponse{
			AverageIncome:    s.DailyAverages.AverageIncome.Round(2),
			AverageExpense:   s.DailyAverages.AverageExpense.Round(2),
			AverageNetChange: s.DailyAverages.AverageNetChange.Round(2),
			DaysInPeriod:     s.DailyAverages.DaysInPeriod,
		},
	}

	if rate, ok := s.SavingsRate(); ok {
		resp.SavingsRate = new(rate.Round(2))
	}

	for i, c := range s.CategoryBreakdown {
		resp.CategoryBreakdown[i] = categoryResponse{
			CategoryID:       c.CategoryID,
			Name:             c.Name,
			Icon:             c.Icon,
			ColorHex:         c.ColorHex,
			Amount:           c.Amount,
			TransactionCount: c.TransactionCount,
			Type:             c.Type,
			Percentage:       c.Percentage.Round(2),
		}
	}

	return resp
}

// get serves either ?period=<keyword> or an explicit ?start=&end= window
// given as YYYY-MM-DD, end inclusive. With neither it reports the current month.
func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var (
		stats *statistics.Statistics
		err   error
	)

	switch {
	case q.Get("start") != "" || q.Get("end") != "":
		var period statistics.Period

		period, err = parsePeriod(q.Get("start"), q.Get("end"))
		if err == nil {
			stats, err = h.svc.GetStatistics(r.Context(), period)
		}
	default:
		keyword := statistics.Month

		if s := q.Get("period"); s != "" {
			keyword, err = statistics.ParseKeyword(s)
		}

		if err == nil {
			stats, err = h.svc.GetStatisticsFor(r.Context(), keyword)
		}
	}

	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, toResponse(stats))
}

func parsePeriod(start, end string) (statistics.Period, error) {
	s, err := time.Parse(time.DateOnly, start)
	if err != nil {
		return statistics.Period{}, apperr.NewValidationError("start", "must be YYYY-MM-DD")
	}

	e, err := time.Parse(time.DateOnly, end)
	if err != nil {
		return statistics.Period{}, apperr.NewValidationError("end", "must be YYYY-MM-DD")
	}

	return statistics.Period{Start: s, End: e.Add(24*time.Hour - time.Nanosecond)}, nil
}
