package catalog

import (
	"sync"
	"time"
)

// debouncer commits a search term only after input has been quiet for the
// configured delay. Trailing edge only: every keystroke restarts the timer,
// and exactly one commit fires per burst, carrying the final text.
type debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	timer   *time.Timer
	pending bool
	text    string
	fire    func(string)
}

func newDebouncer(delay time.Duration, fire func(string)) *debouncer {
	if delay <= 0 {
		delay = DefaultSearchWait
	}
	return &debouncer{delay: delay, fire: fire}
}

// input registers a keystroke, restarting the quiet-period timer.
func (d *debouncer) input(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.text = text
	d.pending = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.commit)
}

// commit is the timer callback. The pending check under the mutex keeps a
// timer that fires while flush or stop runs from committing twice.
func (d *debouncer) commit() {
	d.mu.Lock()
	if !d.pending {
		d.mu.Unlock()
		return
	}
	d.pending = false
	text := d.text
	d.mu.Unlock()
	d.fire(text)
}

// flush fires any pending commit synchronously, so the committed term is
// visible to the caller on return.
func (d *debouncer) flush() {
	d.mu.Lock()
	if !d.pending {
		d.mu.Unlock()
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.pending = false
	text := d.text
	d.mu.Unlock()
	d.fire(text)
}

// stop discards any pending commit.
func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = false
}
