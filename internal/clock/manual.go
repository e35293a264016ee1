package clock

import (
	"sync"
	"time"
)

// Manual 是测试用的虚拟时钟，只有 Advance 才会推进时间
// Manual is a virtual clock that only moves when Advance is called.
//
// Advance fires every due ticker once per elapsed period. Ticker channels are
// buffered so Advance never blocks on the receiver.
type Manual struct {
	mu      sync.Mutex
	cond    *sync.Cond
	now     time.Time
	tickers []*manualTicker
}

const manualTickerBuffer = 4096

// NewManual returns a Manual clock starting at start.
func NewManual(start time.Time) *Manual {
	m := &Manual{now: start}
	m.cond = sync.NewCond(&m.mu)
	return m
}

func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *Manual) NewTicker(d time.Duration) Ticker {
	if d <= 0 {
		panic("clock: non-positive ticker interval")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &manualTicker{
		owner:  m,
		period: d,
		next:   m.now.Add(d),
		ch:     make(chan time.Time, manualTickerBuffer),
	}
	m.tickers = append(m.tickers, t)
	m.cond.Broadcast()
	return t
}

// Advance moves the clock forward by d, delivering ticks in time order.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	target := m.now.Add(d)
	for {
		var due *manualTicker
		for _, t := range m.tickers {
			if !t.next.After(target) && (due == nil || t.next.Before(due.next)) {
				due = t
			}
		}
		if due == nil {
			break
		}
		m.now = due.next
		select {
		case due.ch <- due.next:
		default:
		}
		due.next = due.next.Add(due.period)
	}
	m.now = target
}

// Tickers reports how many tickers are live.
func (m *Manual) Tickers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tickers)
}

// BlockUntil waits until exactly n tickers are live.
func (m *Manual) BlockUntil(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for len(m.tickers) != n {
		m.cond.Wait()
	}
}

func (m *Manual) remove(t *manualTicker) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, cur := range m.tickers {
		if cur == t {
			m.tickers = append(m.tickers[:i], m.tickers[i+1:]...)
			m.cond.Broadcast()
			return
		}
	}
}

type manualTicker struct {
	owner  *Manual
	period time.Duration
	next   time.Time
	ch     chan time.Time
	once   sync.Once
}

func (t *manualTicker) C() <-chan time.Time {
	return t.ch
}

func (t *manualTicker) Stop() {
	t.once.Do(func() { t.owner.remove(t) })
}
