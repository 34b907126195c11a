package debounce

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebouncer_RunsOnlyLatest(t *testing.T) {
	d := New(30 * time.Millisecond)

	var (
		mu  sync.Mutex
		ran []string
	)

	record := func(name string) func() {
		return func() {
			mu.Lock()
			defer mu.Unlock()

			ran = append(ran, name)
		}
	}

	d.Submit(record("A"))
	d.Submit(record("B"))
	assert.True(t, d.Pending())

	require.Eventually(t, func() bool { return !d.Pending() }, time.Second, 5*time.Millisecond)

	time.Sleep(60 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()

	assert.Equal(t, []string{"B"}, ran)
}

func TestDebouncer_Cancel(t *testing.T) {
	d := New(20 * time.Millisecond)

	var calls atomic.Int32

	d.Submit(func() { calls.Add(1) })
	d.Cancel()
	assert.False(t, d.Pending())

	time.Sleep(60 * time.Millisecond)
	assert.Zero(t, calls.Load())

	d.Submit(func() { calls.Add(1) })
	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
}

func TestDebouncer_Stop(t *testing.T) {
	d := New(10 * time.Millisecond)

	var calls atomic.Int32

	d.Submit(func() { calls.Add(1) })
	d.Stop()
	d.Submit(func() { calls.Add(1) })

	assert.False(t, d.Pending())
	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, calls.Load())
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func TestThrottle_Execute(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}

	th := NewThrottle(time.Second)
	th.now = clock.Now

	calls := 0
	action := func() { calls++ }

	assert.True(t, th.Execute(action))

	clock.Advance(500 * time.Millisecond)
	assert.False(t, th.Execute(action))

	clock.Advance(600 * time.Millisecond)
	assert.True(t, th.Execute(action))

	assert.Equal(t, 2, calls)
}

func TestThrottle_Reset(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}

	th := NewThrottle(time.Minute)
	th.now = clock.Now

	calls := 0

	assert.True(t, th.Execute(func() { calls++ }))
	assert.False(t, th.Execute(func() { calls++ }))

	th.Reset()
	assert.True(t, th.Execute(func() { calls++ }))
	assert.Equal(t, 2, calls)
}
