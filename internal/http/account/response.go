package account

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tally/internal/account"
)

type accountResponse struct {
	ID             uuid.UUID       `json:"id"`
	Name           string          `json:"name"`
	Type           account.Type    `json:"type"`
	Balance        decimal.Decimal `json:"balance"`
	CurrencyCode   string          `json:"currency_code"`
	ColorHex       string          `json:"color_hex"`
	SortOrder      int             `json:"sort_order"`
	IsDefault      bool            `json:"is_default"`
	IncludeInTotal bool            `json:"include_in_total"`
	CreatedAt      time.Time       `json:"created_at"`
}

type totalResponse struct {
	Total decimal.Decimal `json:"total"`
}

func toResponse(a *account.Account) accountResponse {
	return accountResponse{
		ID:             a.ID,
		Name:           a.Name,
		Type:           a.Type,
		Balance:        a.Balance,
		CurrencyCode:   a.CurrencyCode,
		ColorHex:       a.ColorHex,
		SortOrder:      a.SortOrder,
		IsDefault:      a.IsDefault,
		IncludeInTotal: a.IncludeInTotal,
		CreatedAt:      a.CreatedAt,
	}
}

func toResponseList(accounts []*account.Account) []accountResponse {
	resp := make([]accountResponse, len(accounts))
	for i, a := range accounts {
		resp[i] = toResponse(a)
	}

	return resp
}
