// Package timer tracks focused study time: the current session counter and the
// cumulative counter persisted for the logged-in owner.
package timer

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"studyroom/internal/clock"
	"studyroom/internal/i18n"
	"studyroom/internal/logger"
	"studyroom/internal/storage"
)

const (
	DefaultTickInterval  = time.Second
	DefaultFlushInterval = 10 * time.Second
)

// Options 控制 tick 与落盘周期
// Options controls the tick and flush periods. Zero values use the defaults.
type Options struct {
	TickInterval  time.Duration
	FlushInterval time.Duration
}

func (o Options) normalize() Options {
	if o.TickInterval <= 0 {
		o.TickInterval = DefaultTickInterval
	}
	if o.FlushInterval <= 0 {
		o.FlushInterval = DefaultFlushInterval
	}
	return o
}

// State is a point-in-time copy of the timer counters.
type State struct {
	Active            bool
	CurrentSeconds    int64
	CumulativeSeconds int64
}

// Timer 学习计时器。tick ticker 只在学习中存在，恢复时新建，不补发暂停期间的 tick。
// Timer owns the study clock. The tick ticker only exists while active and is recreated
// on resume, so no catch-up ticks are produced for paused time.
type Timer struct {
	kv    storage.KV
	clock clock.Clock
	opts  Options
	log   zerolog.Logger

	mu         sync.Mutex
	active     bool
	current    int64
	cumulative int64
	flushed    int64
	tick       clock.Ticker
	gen        uint64
	listeners  []func(State)
	closed     bool

	wake chan struct{}
	done chan struct{}
	wg   sync.WaitGroup
}

// New loads the cumulative counter from kv and starts the flush loop.
// A missing or corrupted value starts from 0.
func New(kv storage.KV, clk clock.Clock, opts Options) (*Timer, error) {
	if clk == nil {
		clk = clock.Real()
	}
	cumulative, err := storage.LoadInt(kv, storage.KeyCumulativeSeconds)
	if err != nil {
		return nil, fmt.Errorf("load cumulative seconds: %w", err)
	}
	t := &Timer{
		kv:         kv,
		clock:      clk,
		opts:       opts.normalize(),
		log:        logger.With("timer"),
		cumulative: cumulative,
		flushed:    cumulative,
		wake:       make(chan struct{}, 1),
		done:       make(chan struct{}),
	}
	flush := clk.NewTicker(t.opts.FlushInterval)
	t.wg.Add(1)
	go t.loop(flush)
	return t, nil
}

func (t *Timer) loop(flush clock.Ticker) {
	defer t.wg.Done()
	defer flush.Stop()
	for {
		t.mu.Lock()
		var tickC <-chan time.Time
		if t.tick != nil {
			tickC = t.tick.C()
		}
		gen := t.gen
		t.mu.Unlock()

		select {
		case <-t.done:
			return
		case <-t.wake:
		case <-tickC:
			t.applyTick(gen)
		case <-flush.C():
			_ = t.Flush()
		}
	}
}

func (t *Timer) applyTick(gen uint64) {
	t.mu.Lock()
	// 暂停前残留的 tick 属于旧的一代，丢弃 / stale ticks from before a pause are dropped
	if !t.active || gen != t.gen || t.closed {
		t.mu.Unlock()
		return
	}
	t.current++
	t.cumulative++
	st := t.snapshotLocked()
	listeners := t.listeners
	t.mu.Unlock()
	notify(listeners, st)
}

// Start moves Idle to Active. No-op when already active or closed.
func (t *Timer) Start() {
	t.mu.Lock()
	if t.active || t.closed {
		t.mu.Unlock()
		return
	}
	t.active = true
	t.gen++
	t.tick = t.clock.NewTicker(t.opts.TickInterval)
	st := t.snapshotLocked()
	listeners := t.listeners
	t.mu.Unlock()
	t.signal()
	notify(listeners, st)
}

// Pause moves Active to Idle, keeping the current session counter.
func (t *Timer) Pause() {
	t.mu.Lock()
	if !t.active {
		t.mu.Unlock()
		return
	}
	t.stopTickLocked()
	st := t.snapshotLocked()
	listeners := t.listeners
	t.mu.Unlock()
	t.signal()
	notify(listeners, st)
}

// Toggle starts when idle and pauses when active.
func (t *Timer) Toggle() {
	if t.Snapshot().Active {
		t.Pause()
		return
	}
	t.Start()
}

// EndSession 强制暂停并清零本次计时；累计值不变
// EndSession forces Idle and resets the current session counter. Cumulative time stays.
func (t *Timer) EndSession() {
	t.mu.Lock()
	if !t.active && t.current == 0 {
		t.mu.Unlock()
		return
	}
	if t.active {
		t.stopTickLocked()
	}
	t.current = 0
	st := t.snapshotLocked()
	listeners := t.listeners
	t.mu.Unlock()
	t.signal()
	notify(listeners, st)
}

func (t *Timer) stopTickLocked() {
	t.active = false
	t.gen++
	if t.tick != nil {
		t.tick.Stop()
		t.tick = nil
	}
}

// Flush writes the cumulative counter when it changed since the last successful write.
// A failed write is logged and retried on the next flush.
func (t *Timer) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.flushLocked()
}

func (t *Timer) flushLocked() error {
	if t.cumulative == t.flushed {
		return nil
	}
	value := t.cumulative
	if err := t.kv.Set(storage.KeyCumulativeSeconds, strconv.FormatInt(value, 10)); err != nil {
		t.log.Error().Err(err).Int64("cumulative_seconds", value).Msg("flush failed")
		return fmt.Errorf("flush cumulative seconds: %w", err)
	}
	t.flushed = value
	t.log.Debug().Int64("cumulative_seconds", value).Msg("flushed")
	return nil
}

// Close 停止所有 ticker 并做最后一次落盘
// Close stops every ticker and performs the final flush. Safe to call twice.
func (t *Timer) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	if t.active {
		t.stopTickLocked()
	}
	err := t.flushLocked()
	t.mu.Unlock()

	close(t.done)
	t.wg.Wait()
	return err
}

// Snapshot returns the current counters.
func (t *Timer) Snapshot() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

func (t *Timer) snapshotLocked() State {
	return State{Active: t.active, CurrentSeconds: t.current, CumulativeSeconds: t.cumulative}
}

// Active reports whether time is accruing.
func (t *Timer) Active() bool {
	return t.Snapshot().Active
}

// CurrentSeconds returns the current session counter.
func (t *Timer) CurrentSeconds() int64 {
	return t.Snapshot().CurrentSeconds
}

// OnChange registers fn to run after every state change, outside the timer lock.
func (t *Timer) OnChange(fn func(State)) {
	if fn == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.listeners = append(t.listeners[:len(t.listeners):len(t.listeners)], fn)
}

func (t *Timer) signal() {
	select {
	case t.wake <- struct{}{}:
	default:
	}
}

func notify(listeners []func(State), st State) {
	for _, fn := range listeners {
		fn(st)
	}
}

// StatusLine renders the study status injected into companion requests.
func StatusLine(tr *i18n.I18n, active bool, currentSeconds int64) string {
	if !active {
		return tr.T("timer.status.idle")
	}
	return tr.T("timer.status.active", FormatClock(currentSeconds))
}

// FormatClock formats seconds as HH:MM:SS. Hours are not wrapped at 24.
func FormatClock(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
