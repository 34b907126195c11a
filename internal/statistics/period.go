package statistics

import (
	"fmt"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/tally/internal/apperr"
)

// Period is an inclusive time window.
type Period struct {
	Start time.Time
	End   time.Time
}

func (p Period) validate() error {
	if p.Start.IsZero() || p.End.IsZero() {
		return apperr.NewValidationError("period", "start and end are required")
	}

	if p.End.Before(p.Start) {
		return apperr.NewValidationError("period", "end is before start")
	}

	return nil
}

// Days counts whole calendar days from Start to End, at least 1. End is read
// in Start's location so a window never straddles two calendars.
func (p Period) Days() int {
	y1, m1, d1 := p.Start.Date()
	y2, m2, d2 := p.End.In(p.Start.Location()).Date()

	start := time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)
	end := time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC)

	return max(1, int(end.Sub(start).Hours()/24))
}

// Keyword names a window that ends now.
type Keyword string

const (
	Week    Keyword = "week"
	Month   Keyword = "month"
	Quarter Keyword = "quarter"
	Year    Keyword = "year"
	AllTime Keyword = "all-time"
)

// allTimeLookback bounds AllTime; it is not a true unbounded range.
const allTimeLookback = 10

func ParseKeyword(s string) (Keyword, error) {
	switch k := Keyword(strings.ToLower(strings.TrimSpace(s))); k {
	case Week, Month, Quarter, Year, AllTime:
		return k, nil
	case "alltime", "all":
		return AllTime, nil
	}

	return "", apperr.NewValidationError("period", fmt.Sprintf("unknown period %q", s))
}

// Resolve anchors k at now. Weeks start on Monday. An unknown keyword
// resolves to the zero Period, which fails validation.
func (k Keyword) Resolve(now time.Time) Period {
	y, m, d := now.Date()
	loc := now.Location()

	var start time.Time

	switch k {
	case Week:
		offset := (int(now.Weekday()) + 6) % 7
		start = time.Date(y, m, d-offset, 0, 0, 0, 0, loc)
	case Month:
		start = time.Date(y, m, 1, 0, 0, 0, 0, loc)
	case Quarter:
		first := time.Month((int(m)-1)/3*3 + 1)
		start = time.Date(y, first, 1, 0, 0, 0, 0, loc)
	case Year:
		start = time.Date(y, time.January, 1, 0, 0, 0, 0, loc)
	case AllTime:
		start = now.AddDate(-allTimeLookback, 0, 0)
	default:
		return Period{}
	}

	return Period{Start: start, End: now}
}
