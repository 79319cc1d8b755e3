package snowfall

import (
	"sync"
	"testing"
	"time"
)

func TestButtonDisableRestore(t *testing.T) {
	b := NewButton("Download video")
	restore := b.Disable("Rendering...")
	if !b.Disabled() || b.Label() != "Rendering..." {
		t.Fatalf("disabled=%v label=%q", b.Disabled(), b.Label())
	}
	restore()
	restore()
	if b.Disabled() || b.Label() != "Download video" {
		t.Errorf("after restore disabled=%v label=%q", b.Disabled(), b.Label())
	}
}

func TestButtonConcurrentDisable(t *testing.T) {
	b := NewButton("Download PNG")
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			restore := b.Disable("Capturing...")
			_ = b.Label()
			restore()
		}()
	}
	wg.Wait()
	if b.Label() == "" {
		t.Error("label lost")
	}
}

func TestAlertBoxExpiry(t *testing.T) {
	var a alertBox
	now := time.Now()
	if a.current(now) != "" {
		t.Error("empty box should have no message")
	}
	a.set("Card element not found.", now)
	if got := a.current(now.Add(time.Second)); got != "Card element not found." {
		t.Errorf("current = %q", got)
	}
	if got := a.current(now.Add(alertTTL + time.Millisecond)); got != "" {
		t.Errorf("expired current = %q", got)
	}
	if a.count() != 1 {
		t.Errorf("count = %d", a.count())
	}
}
