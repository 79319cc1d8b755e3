package snowfall

import (
	"sync"
	"time"
)

// Button is the state of an on-screen control: a label and an enabled flag.
// Exports run off the frame loop, so Button is safe for concurrent use.
type Button struct {
	mu       sync.Mutex
	label    string
	disabled bool
}

// NewButton creates an enabled button.
func NewButton(label string) *Button {
	return &Button{label: label}
}

// Label returns the current label.
func (b *Button) Label() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.label
}

// Disabled reports whether the button is disabled.
func (b *Button) Disabled() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.disabled
}

// Disable disables the button and shows label while work runs. The returned
// func restores the previous label and state; callers defer it so the
// button comes back on every path.
func (b *Button) Disable(label string) (restore func()) {
	b.mu.Lock()
	prevLabel, prevDisabled := b.label, b.disabled
	b.label = label
	b.disabled = true
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			b.label = prevLabel
			b.disabled = prevDisabled
			b.mu.Unlock()
		})
	}
}

// alertTTL is how long an alert stays on the HUD.
const alertTTL = 5 * time.Second

// alertBox holds the most recent user-visible message.
type alertBox struct {
	mu   sync.Mutex
	msg  string
	at   time.Time
	seen int
}

func (a *alertBox) set(msg string, now time.Time) {
	a.mu.Lock()
	a.msg = msg
	a.at = now
	a.seen++
	a.mu.Unlock()
}

// current returns the message if it is still fresh.
func (a *alertBox) current(now time.Time) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.msg == "" || now.Sub(a.at) > alertTTL {
		return ""
	}
	return a.msg
}

func (a *alertBox) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.seen
}
