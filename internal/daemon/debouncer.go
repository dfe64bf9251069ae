package daemon

import (
	"log/slog"
	"sync"
	"time"

	"git.home.luguber.info/inful/docnav/internal/logfields"
)

// Debouncer coalesces bursts of rebuild triggers into one call. A trigger
// fires after a quiet window without further triggers, but never later than
// maxDelay after the first trigger of the burst. A config trigger in a burst
// wins over watch triggers so the reload is not lost.
type Debouncer struct {
	quiet    time.Duration
	maxDelay time.Duration
	fire     func(trigger string)

	mu      sync.Mutex
	timer   *time.Timer
	pending bool
	first   time.Time
	trigger string
	count   int
}

// NewDebouncer returns a debouncer calling fire. maxDelay defaults to ten
// quiet windows.
func NewDebouncer(quiet, maxDelay time.Duration, fire func(trigger string)) *Debouncer {
	if quiet <= 0 {
		quiet = 500 * time.Millisecond
	}
	if maxDelay < quiet {
		maxDelay = 10 * quiet
	}
	return &Debouncer{quiet: quiet, maxDelay: maxDelay, fire: fire}
}

// Trigger records one change.
func (d *Debouncer) Trigger(trigger string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := time.Now()
	if !d.pending {
		d.pending = true
		d.first = now
		d.trigger = trigger
		d.count = 0
	} else if trigger == TriggerConfig {
		d.trigger = trigger
	}
	d.count++

	wait := d.quiet
	if remaining := d.maxDelay - now.Sub(d.first); remaining < wait {
		wait = max(remaining, 0)
	}
	if d.timer == nil {
		d.timer = time.AfterFunc(wait, d.flush)
		return
	}
	d.timer.Reset(wait)
}

func (d *Debouncer) flush() {
	d.mu.Lock()
	if !d.pending {
		d.mu.Unlock()
		return
	}
	trigger, count := d.trigger, d.count
	d.pending = false
	d.mu.Unlock()

	slog.Debug("Debounced changes", logfields.Trigger(trigger), slog.Int("changes", count))
	d.fire(trigger)
}

// Stop drops any pending trigger.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.pending = false
}
