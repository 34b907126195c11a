package view

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/MrJamesThe3rd/tally/internal/debounce"
	"github.com/MrJamesThe3rd/tally/internal/notify"
)

// RefreshMsg tells the active screen that ledger data changed.
type RefreshMsg struct {
	Kind notify.Kind
}

// Subscriber is the part of the notification bus a Refresher needs.
type Subscriber interface {
	Subscribe(h notify.Handler) func()
}

// Refresher turns bursts of ledger events into a single RefreshMsg once the
// burst has been quiet for the configured delay.
type Refresher struct {
	debouncer   *debounce.Debouncer
	signals     chan RefreshMsg
	unsubscribe func()
}

func NewRefresher(bus Subscriber, delay time.Duration) *Refresher {
	r := &Refresher{
		debouncer: debounce.New(delay),
		signals:   make(chan RefreshMsg, 1),
	}

	r.unsubscribe = bus.Subscribe(r.handle)

	return r
}

func (r *Refresher) handle(evt notify.Event) {
	r.debouncer.Submit(func() {
		select {
		case r.signals <- RefreshMsg{Kind: evt.Kind}:
		default:
		}
	})
}

// Wait blocks until the next refresh is due. Re-issue it after every RefreshMsg.
func (r *Refresher) Wait() tea.Cmd {
	return func() tea.Msg {
		return <-r.signals
	}
}

func (r *Refresher) Close() {
	r.unsubscribe()
	r.debouncer.Stop()
}
