package snowfall

import (
	"math"
	"testing"
)

func TestCardZoomClamps(t *testing.T) {
	z := NewCardZoom(DefaultZoomConfig())
	if got := z.Set(10); got != 1.3 {
		t.Errorf("Set(10) = %v, want 1.3", got)
	}
	if got := z.Set(-5); got != 0.8 {
		t.Errorf("Set(-5) = %v, want 0.8", got)
	}
	if got := z.Set(math.NaN()); got != 0.8 {
		t.Errorf("Set(NaN) = %v, want unchanged 0.8", got)
	}
}

func TestCardZoomSteps(t *testing.T) {
	z := NewCardZoom(ZoomConfig{Min: 0.8, Max: 1.3, Step: 0.05})
	for range 20 {
		z.ZoomIn()
	}
	if z.Scale() != 1.3 {
		t.Errorf("after many ZoomIn = %v, want 1.3", z.Scale())
	}
	for range 3 {
		z.ZoomOut()
	}
	if z.Scale() != 1.15 {
		t.Errorf("after 3 ZoomOut = %v, want 1.15", z.Scale())
	}
	for range 20 {
		z.ZoomOut()
	}
	if z.Scale() != 0.8 {
		t.Errorf("after many ZoomOut = %v, want 0.8", z.Scale())
	}
}

func TestCardZoomIdempotent(t *testing.T) {
	z := NewCardZoom(DefaultZoomConfig())
	z.Set(1.2)
	z.Update(1)
	tween := z.tween
	if got := z.Set(1.2); got != 1.2 {
		t.Fatalf("Set(1.2) = %v", got)
	}
	if z.tween != tween {
		t.Error("repeating Set should not restart the easing")
	}
	assertNear(t, "shown", z.Shown(), 1.2)
}

func TestCardZoomEases(t *testing.T) {
	z := NewCardZoom(ZoomConfig{Min: 0.8, Max: 1.3, Step: 0.05, Ease: 0.2})
	z.Set(1.3)
	if z.Shown() != 1 {
		t.Fatalf("shown before update = %v, want 1", z.Shown())
	}
	z.Update(0.1)
	if z.Shown() <= 1 || z.Shown() >= 1.3 {
		t.Errorf("shown mid-ease = %v, want strictly between 1 and 1.3", z.Shown())
	}
	z.Update(0.2)
	if z.Shown() != 1.3 {
		t.Errorf("shown after ease = %v, want 1.3", z.Shown())
	}
}

func TestCardZoomInvalidConfig(t *testing.T) {
	z := NewCardZoom(ZoomConfig{Min: 2, Max: 1})
	if z.Scale() != 1 {
		t.Errorf("scale = %v, want 1", z.Scale())
	}
	if got := z.Set(5); got != 1.3 {
		t.Errorf("Set(5) = %v, want default max 1.3", got)
	}
}
