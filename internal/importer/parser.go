package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tally/internal/encoding"
	"github.com/MrJamesThe3rd/tally/internal/transaction"
)

var ErrUnknownFormat = errors.New("no matching import format")

// Parser auto-detects which supported format a file uses by matching column
// headers against known profiles, then reads its rows.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

// Parse returns the rows of r and the name of the matched profile.
func (p *Parser) Parse(r io.Reader) ([]Row, string, error) {
	utf8r, err := encoding.NewUTF8Reader(r)
	if err != nil {
		return nil, "", fmt.Errorf("detect encoding: %w", err)
	}

	data, err := io.ReadAll(utf8r)
	if err != nil {
		return nil, "", fmt.Errorf("read input: %w", err)
	}

	for _, delim := range delimiters() {
		rows, err := readRecords(data, delim)
		if err != nil {
			continue
		}

		profile, cols, headerIdx := detectProfile(rows, delim)
		if profile == nil {
			continue
		}

		parsed, err := parseRows(profile, cols, rows[headerIdx+1:], headerIdx+1)
		if err != nil {
			return nil, profile.Name, err
		}

		return parsed, profile.Name, nil
	}

	return nil, "", fmt.Errorf("%w: expected columns for one of %s", ErrUnknownFormat, strings.Join(ProfileNames(), ", "))
}

// delimiters lists each profile delimiter once, in profile order.
func delimiters() []rune {
	var out []rune

	seen := make(map[rune]bool)

	for _, p := range profiles {
		if !seen[p.Delimiter] {
			seen[p.Delimiter] = true
			out = append(out, p.Delimiter)
		}
	}

	return out
}

func readRecords(data []byte, delim rune) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delim
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	return reader.ReadAll()
}

// colIndex maps column names to their index in the row.
type colIndex map[string]int

// detectProfile scans rows for a header that matches a profile using delim.
// Returns the matched profile, column index map, and header row index.
func detectProfile(rows [][]string, delim rune) (*Profile, colIndex, int) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			if name := strings.TrimSpace(cell); name != "" {
				cols[name] = i
			}
		}

		for i := range profiles {
			if profiles[i].Delimiter == delim && matchesProfile(&profiles[i], cols) {
				return &profiles[i], cols, rowIdx
			}
		}
	}

	return nil, nil, 0
}

func matchesProfile(p *Profile, cols colIndex) bool {
	for _, name := range p.requiredCols() {
		if _, ok := cols[name]; !ok {
			return false
		}
	}

	return true
}

// parseRows extracts entries from data rows using the matched profile.
// Rows without a parseable date or a non-zero amount are skipped as footers.
func parseRows(p *Profile, cols colIndex, rows [][]string, headerRowNum int) ([]Row, error) {
	var out []Row

	for i, row := range rows {
		rowNum := headerRowNum + i + 1

		date, ok := parseDate(p, cellValue(row, cols[p.DateCol]))
		if !ok {
			continue
		}

		note := cellValue(row, cols[p.NoteCol])
		if note == "" && p.NoteRequired {
			return nil, fmt.Errorf("row %d: missing description", rowNum)
		}

		amount, typ, ok, err := extractAmount(p, cols, row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rowNum, err)
		}

		if !ok {
			continue
		}

		out = append(out, Row{Amount: amount, Type: typ, Date: date, Note: note})
	}

	return out, nil
}

func parseDate(p *Profile, s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range p.DateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

func extractAmount(p *Profile, cols colIndex, row []string) (decimal.Decimal, transaction.Type, bool, error) {
	switch p.AmountMode {
	case amountSigned:
		amount, typ, ok := signedAmount(cellValue(row, cols[p.AmountCol]), p.Decimal)
		return amount, typ, ok, nil
	case amountSplit:
		amount, typ, ok := splitAmount(cellValue(row, cols[p.DebitCol]), cellValue(row, cols[p.CreditCol]), p.Decimal)
		return amount, typ, ok, nil
	case amountTyped:
		return typedAmount(cellValue(row, cols[p.AmountCol]), cellValue(row, cols[p.TypeCol]), p.Decimal)
	}

	return decimal.Zero, "", false, nil
}

func signedAmount(s string, style decimalStyle) (decimal.Decimal, transaction.Type, bool) {
	if s == "" {
		return decimal.Zero, "", false
	}

	d, err := parseAmount(s, style)
	if err != nil || d.IsZero() {
		return decimal.Zero, "", false
	}

	if d.IsNegative() {
		return d.Abs(), transaction.TypeExpense, true
	}

	return d, transaction.TypeIncome, true
}

func splitAmount(debit, credit string, style decimalStyle) (decimal.Decimal, transaction.Type, bool) {
	if debit != "" {
		if d, err := parseAmount(debit, style); err == nil && !d.IsZero() {
			return d.Abs(), transaction.TypeExpense, true
		}
	}

	if credit != "" {
		if d, err := parseAmount(credit, style); err == nil && !d.IsZero() {
			return d.Abs(), transaction.TypeIncome, true
		}
	}

	return decimal.Zero, "", false
}

// typedAmount reads the tally export columns. Unlike bank formats a bad cell
// here is an error, since the file was produced by this program.
func typedAmount(amount, kind string, style decimalStyle) (decimal.Decimal, transaction.Type, bool, error) {
	if amount == "" {
		return decimal.Zero, "", false, nil
	}

	d, err := parseAmount(amount, style)
	if err != nil {
		return decimal.Zero, "", false, fmt.Errorf("invalid amount %q", amount)
	}

	var typ transaction.Type

	switch strings.ToLower(kind) {
	case "income":
		typ = transaction.TypeIncome
	case "expense":
		typ = transaction.TypeExpense
	default:
		return decimal.Zero, "", false, fmt.Errorf("invalid type %q", kind)
	}

	if d.IsZero() {
		return decimal.Zero, "", false, nil
	}

	return d.Abs(), typ, true, nil
}

// cellValue safely gets a trimmed cell value from a row.
func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}
