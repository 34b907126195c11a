package view

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MrJamesThe3rd/tally/internal/statistics"
)

// Timeframe represents a predefined or custom date range selection.
type Timeframe int

const (
	TimeframeThisWeek Timeframe = iota
	TimeframeThisMonth
	TimeframeLastMonth
	TimeframeThisQuarter
	TimeframeThisYear
	TimeframeAll
	TimeframeCustom
)

func (t Timeframe) String() string {
	switch t {
	case TimeframeThisWeek:
		return "This Week"
	case TimeframeThisMonth:
		return "This Month"
	case TimeframeLastMonth:
		return "Last Month"
	case TimeframeThisQuarter:
		return "This Quarter"
	case TimeframeThisYear:
		return "This Year"
	case TimeframeAll:
		return "All Time"
	case TimeframeCustom:
		return "Custom Range"
	}

	return "Unknown"
}

// Period resolves a predefined timeframe against now. Custom has no period of
// its own and resolves like All.
func (t Timeframe) Period(now time.Time) statistics.Period {
	switch t {
	case TimeframeThisWeek:
		return statistics.Week.Resolve(now)
	case TimeframeThisMonth:
		return statistics.Month.Resolve(now)
	case TimeframeLastMonth:
		first := statistics.Month.Resolve(now).Start
		return statistics.Period{Start: first.AddDate(0, -1, 0), End: first.Add(-time.Nanosecond)}
	case TimeframeThisQuarter:
		return statistics.Quarter.Resolve(now)
	case TimeframeThisYear:
		return statistics.Year.Resolve(now)
	}

	return statistics.AllTime.Resolve(now)
}

// customPeriod turns two YYYY-MM-DD values into an inclusive period in loc.
func customPeriod(start, end string, loc *time.Location) (statistics.Period, error) {
	s, err := time.ParseInLocation(time.DateOnly, start, loc)
	if err != nil {
		return statistics.Period{}, errors.New("invalid start date (YYYY-MM-DD)")
	}

	e, err := time.ParseInLocation(time.DateOnly, end, loc)
	if err != nil {
		return statistics.Period{}, errors.New("invalid end date (YYYY-MM-DD)")
	}

	if e.Before(s) {
		return statistics.Period{}, errors.New("end date is before start date")
	}

	return statistics.Period{Start: s, End: e.AddDate(0, 0, 1).Add(-time.Nanosecond)}, nil
}

// TimeframeSelectedMsg is emitted when the user has selected a valid date range.
type TimeframeSelectedMsg struct {
	Timeframe Timeframe
	Period    statistics.Period
}

type timeframeState int

const (
	timeframeStateSelect timeframeState = iota
	timeframeStateCustom
)

// TimeframePicker is a reusable component for selecting a date range.
type TimeframePicker struct {
	state    timeframeState
	selected Timeframe
	initial  Timeframe
	loc      *time.Location
	now      func() time.Time

	startInput textinput.Model
	endInput   textinput.Model
	focusIndex int

	err error
}

func NewTimeframePicker(initial Timeframe, loc *time.Location) TimeframePicker {
	if loc == nil {
		loc = time.Local
	}

	si := textinput.New()
	si.Placeholder = "YYYY-MM-DD"
	si.CharLimit = 10
	si.Width = 12
	si.Prompt = "Start Date: "

	ei := textinput.New()
	ei.Placeholder = "YYYY-MM-DD"
	ei.CharLimit = 10
	ei.Width = 12
	ei.Prompt = "End Date:   "

	return TimeframePicker{
		state:      timeframeStateSelect,
		selected:   initial,
		initial:    initial,
		loc:        loc,
		now:        time.Now,
		startInput: si,
		endInput:   ei,
	}
}

func (m TimeframePicker) Init() tea.Cmd {
	return nil
}

func (m TimeframePicker) Update(msg tea.Msg) (TimeframePicker, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch m.state {
		case timeframeStateSelect:
			return m.updateSelect(keyMsg)
		case timeframeStateCustom:
			if next, cmd, handled := m.updateCustom(keyMsg); handled {
				return next, cmd
			}
		}
	}

	if m.state == timeframeStateCustom {
		return m.updateInputs(msg)
	}

	return m, nil
}

func (m TimeframePicker) updateSelect(msg tea.KeyMsg) (TimeframePicker, tea.Cmd) {
	switch msg.Type {
	case tea.KeyUp:
		if m.selected > TimeframeThisWeek {
			m.selected--
		}
	case tea.KeyDown:
		if m.selected < TimeframeCustom {
			m.selected++
		}
	case tea.KeyEnter:
		if m.selected == TimeframeCustom {
			m.state = timeframeStateCustom
			m.focusIndex = 0
			m.startInput.Focus()

			return m, textinput.Blink
		}

		selected := TimeframeSelectedMsg{Timeframe: m.selected, Period: m.selected.Period(m.now().In(m.loc))}

		return m, func() tea.Msg { return selected }
	}

	return m, nil
}

func (m TimeframePicker) updateCustom(msg tea.KeyMsg) (TimeframePicker, tea.Cmd, bool) {
	switch msg.String() {
	case "tab", "shift+tab":
		m.focusIndex = (m.focusIndex + 1) % 2
		m.startInput.Blur()
		m.endInput.Blur()

		if m.focusIndex == 0 {
			m.startInput.Focus()
		} else {
			m.endInput.Focus()
		}

		return m, textinput.Blink, true

	case "enter":
		period, err := customPeriod(m.startInput.Value(), m.endInput.Value(), m.loc)
		if err != nil {
			m.err = err
			return m, nil, true
		}

		m.err = nil
		selected := TimeframeSelectedMsg{Timeframe: TimeframeCustom, Period: period}

		return m, func() tea.Msg { return selected }, true

	case "esc":
		m.state = timeframeStateSelect
		m.err = nil

		return m, nil, true
	}

	return m, nil, false
}

func (m TimeframePicker) updateInputs(msg tea.Msg) (TimeframePicker, tea.Cmd) {
	var cmds []tea.Cmd
	var c tea.Cmd

	m.startInput, c = m.startInput.Update(msg)
	cmds = append(cmds, c)
	m.endInput, c = m.endInput.Update(msg)
	cmds = append(cmds, c)

	return m, tea.Batch(cmds...)
}

func (m TimeframePicker) View() string {
	errStr := ""
	if m.err != nil {
		errStr = errorStyle.Render(fmt.Sprintf("\n\nError: %v", m.err))
	}

	if m.state == timeframeStateCustom {
		return fmt.Sprintf(
			"Enter Custom Range:\n\n%s\n%s\n\n(Enter to confirm, Tab to switch, Esc to back)%s",
			m.startInput.View(),
			m.endInput.View(),
			errStr,
		)
	}

	s := "Select Timeframe:\n\n"
	for i := TimeframeThisWeek; i <= TimeframeCustom; i++ {
		cursor := " "
		if m.selected == i {
			cursor = ">"
		}

		s += fmt.Sprintf("%s %s\n", cursor, i.String())
	}

	s += "\n(Enter to select, Esc to back)"

	return s + errStr
}

// IsSelecting reports whether the picker is on the list rather than the custom inputs.
func (m TimeframePicker) IsSelecting() bool {
	return m.state == timeframeStateSelect
}

func (m *TimeframePicker) Reset() {
	m.state = timeframeStateSelect
	m.selected = m.initial
	m.err = nil
	m.startInput.SetValue("")
	m.endInput.SetValue("")
}
