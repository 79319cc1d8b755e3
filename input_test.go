package snowfall

import "testing"

func TestActionString(t *testing.T) {
	tests := []struct {
		a    Action
		want string
	}{
		{ActionNone, "none"},
		{ActionZoomIn, "zoom-in"},
		{ActionExportStill, "export-png"},
		{ActionExportVideo, "export-video"},
		{ActionQuit, "quit"},
		{Action(200), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.a.String(); got != tt.want {
			t.Errorf("Action(%d).String() = %q, want %q", tt.a, got, tt.want)
		}
	}
}

func TestKeyBindingsUnique(t *testing.T) {
	seen := make(map[int]Action)
	for _, b := range keyBindings {
		if prev, ok := seen[int(b.key)]; ok {
			t.Errorf("key %v bound to both %v and %v", b.key, prev, b.action)
		}
		seen[int(b.key)] = b.action
	}
}

func TestApplyZoomWithoutCard(t *testing.T) {
	d := newTestDriver(t, Config{}, nil)
	if err := d.apply(ActionZoomIn); err != nil {
		t.Fatal(err)
	}
	if err := d.apply(ActionZoomOut); err != nil {
		t.Fatal(err)
	}
}

func TestToggleHUD(t *testing.T) {
	d := newTestDriver(t, Config{ShowHUD: true}, nil)
	before := d.hud.visible
	d.apply(ActionToggleHUD)
	if d.hud.visible == before {
		t.Error("HUD visibility did not toggle")
	}
}
