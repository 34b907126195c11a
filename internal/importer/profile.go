package importer

// amountMode determines how amounts are extracted from a row.
type amountMode int

const (
	// amountSigned means one signed column, negative for money going out.
	amountSigned amountMode = iota
	// amountSplit means separate debit and credit columns.
	amountSplit
	// amountTyped means an unsigned amount plus an Income/Expense column.
	amountTyped
)

// decimalStyle is the separator convention of the amount cells.
type decimalStyle int

const (
	// decimalPoint reads "1234.56".
	decimalPoint decimalStyle = iota
	// decimalComma reads "1.234,56".
	decimalComma
)

// Profile describes the column layout of one supported export format.
type Profile struct {
	Name         string
	Delimiter    rune
	DateCol      string
	DateLayouts  []string
	NoteCol      string
	NoteRequired bool
	AmountMode   amountMode
	Decimal      decimalStyle
	AmountCol    string // amountSigned, amountTyped
	TypeCol      string // amountTyped
	DebitCol     string // amountSplit
	CreditCol    string // amountSplit
}

// requiredCols returns the column names that must be present for this profile to match.
func (p Profile) requiredCols() []string {
	cols := []string{p.DateCol, p.NoteCol}

	switch p.AmountMode {
	case amountSigned:
		cols = append(cols, p.AmountCol)
	case amountSplit:
		cols = append(cols, p.DebitCol, p.CreditCol)
	case amountTyped:
		cols = append(cols, p.AmountCol, p.TypeCol)
	}

	return cols
}

const (
	tallyDateLayout = "2006-01-02 15:04:05"
	bankDateLayout  = "02-01-2006"
)

// profiles is tried in order; more specific layouts come first.
var profiles = []Profile{
	{
		Name:        "tally",
		Delimiter:   ',',
		DateCol:     "Date",
		DateLayouts: []string{tallyDateLayout, "2006-01-02"},
		NoteCol:     "Note",
		AmountMode:  amountTyped,
		Decimal:     decimalPoint,
		AmountCol:   "Amount",
		TypeCol:     "Type",
	},
	{
		Name:         "card",
		Delimiter:    ';',
		DateCol:      "Data",
		DateLayouts:  []string{bankDateLayout},
		NoteCol:      "Descrição",
		NoteRequired: true,
		AmountMode:   amountSplit,
		Decimal:      decimalComma,
		DebitCol:     "Débito",
		CreditCol:    "Crédito",
	},
	{
		Name:         "statement",
		Delimiter:    ';',
		DateCol:      "Data mov.",
		DateLayouts:  []string{bankDateLayout},
		NoteCol:      "Descrição",
		NoteRequired: true,
		AmountMode:   amountSigned,
		Decimal:      decimalComma,
		AmountCol:    "Movimento",
	},
	{
		Name:         "account",
		Delimiter:    ';',
		DateCol:      "Data mov.",
		DateLayouts:  []string{bankDateLayout},
		NoteCol:      "Descrição",
		NoteRequired: true,
		AmountMode:   amountSigned,
		Decimal:      decimalComma,
		AmountCol:    "Montante",
	},
}

// ProfileNames lists the supported formats in detection order.
func ProfileNames() []string {
	names := make([]string, len(profiles))
	for i, p := range profiles {
		names[i] = p.Name
	}

	return names
}
