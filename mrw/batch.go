package mrw

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Batcher coalesces bursts of event actions into series actions. The
// first event after a flush arms a timer; events arriving before it
// fires join the same buffer without re-arming (trailing-edge
// debounce, at most one flush scheduled at a time). Each flush drains
// the buffer atomically into one SeriesAction in emission order, which
// bounds dispatch frequency under event storms without losing or
// reordering events.
type Batcher struct {
	interval time.Duration
	dispatch DispatchFunc
	logger   *logrus.Logger

	mu    sync.Mutex
	buf   []EventAction
	timer *time.Timer
}

// NewBatcher constructs a batcher flushing into dispatch every
// interval. A non-positive interval falls back to the default; a nil
// logger discards logs.
func NewBatcher(interval time.Duration, dispatch DispatchFunc, logger *logrus.Logger) *Batcher {
	if interval <= 0 {
		interval = DefaultConfig().BatchInterval
	}
	if logger == nil {
		logger = discardLogger()
	}
	return &Batcher{
		interval: interval,
		dispatch: dispatch,
		logger:   logger,
	}
}

// Add buffers one event action and schedules a flush if none is
// pending.
func (b *Batcher) Add(a EventAction) {
	b.mu.Lock()
	b.buf = append(b.buf, a)
	if b.timer == nil {
		b.timer = time.AfterFunc(b.interval, b.flush)
	}
	b.mu.Unlock()
}

// Flush dispatches any buffered events immediately and cancels the
// pending timer. Intended for shutdown; the timer path calls the same
// drain, so events are dispatched exactly once either way.
func (b *Batcher) Flush() {
	b.mu.Lock()
	if b.timer != nil {
		b.timer.Stop()
	}
	b.mu.Unlock()
	b.flush()
}

func (b *Batcher) flush() {
	b.mu.Lock()
	actions := b.buf
	b.buf = nil
	b.timer = nil
	b.mu.Unlock()

	if len(actions) == 0 {
		return
	}
	b.logger.WithFields(logrus.Fields{
		"events": len(actions),
	}).Debug("flushing event series")
	b.dispatch(SeriesAction{Actions: actions})
}
