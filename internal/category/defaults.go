package category

import "github.com/MrJamesThe3rd/tally/internal/transaction"

type seed struct {
	name  string
	icon  string
	color string
	typ   transaction.Type
}

// defaults is the fixed set seeded into an empty store, in display order.
var defaults = []seed{
	{"Food & Dining", "fork.knife", "#FF9500", transaction.TypeExpense},
	{"Transportation", "car.fill", "#007AFF", transaction.TypeExpense},
	{"Shopping", "bag.fill", "#FF2D55", transaction.TypeExpense},
	{"Entertainment", "tv.fill", "#AF52DE", transaction.TypeExpense},
	{"Bills & Utilities", "bolt.fill", "#FFCC00", transaction.TypeExpense},
	{"Health", "heart.fill", "#FF3B30", transaction.TypeExpense},
	{"Education", "book.fill", "#5856D6", transaction.TypeExpense},
	{"Other", "ellipsis.circle.fill", "#8E8E93", transaction.TypeExpense},
	{"Salary", "briefcase.fill", "#34C759", transaction.TypeIncome},
	{"Freelance", "laptopcomputer", "#30B0C7", transaction.TypeIncome},
	{"Investments", "chart.line.uptrend.xyaxis", "#00C7BE", transaction.TypeIncome},
	{"Gifts", "gift.fill", "#FF9F0A", transaction.TypeIncome},
	{"Other Income", "plus.circle.fill", "#8E8E93", transaction.TypeIncome},
}
