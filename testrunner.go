package snowfall

import (
	"encoding/json"
	"fmt"
)

// testStep represents a single action in a test script.
type testStep struct {
	Action string  `json:"action"`
	Label  string  `json:"label,omitempty"`
	Value  float64 `json:"value,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
	Frames int     `json:"frames,omitempty"`
}

// testScript is the top-level JSON structure for a test script.
type testScript struct {
	Steps []testStep `json:"steps"`
}

// scriptActions maps step names that go through the input queue.
var scriptActions = map[string]Action{
	"zoom-in":      ActionZoomIn,
	"zoom-out":     ActionZoomOut,
	"speed-up":     ActionSpeedUp,
	"speed-down":   ActionSpeedDown,
	"export-png":   ActionExportStill,
	"export-video": ActionExportVideo,
}

// TestRunner sequences injected actions, resizes and screenshots across
// frames for automated visual testing. Attach to a Driver via SetTestRunner.
type TestRunner struct {
	steps     []testStep
	cursor    int
	waitCount int
	done      bool
}

// LoadTestScript parses a JSON test script and returns a TestRunner ready
// to be attached to a Driver via SetTestRunner.
func LoadTestScript(jsonData []byte) (*TestRunner, error) {
	var script testScript
	if err := json.Unmarshal(jsonData, &script); err != nil {
		return nil, fmt.Errorf("parse test script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, fmt.Errorf("parse test script: no steps")
	}
	for i, st := range script.Steps {
		switch st.Action {
		case "screenshot", "speed", "resize", "wait":
		default:
			if _, ok := scriptActions[st.Action]; !ok {
				return nil, fmt.Errorf("parse test script: step %d: unknown action %q", i, st.Action)
			}
		}
	}
	return &TestRunner{steps: script.Steps}, nil
}

// SetTestRunner attaches a TestRunner to the driver. The runner's step
// method is called from Driver.Update before input is processed.
func (d *Driver) SetTestRunner(runner *TestRunner) {
	d.runner = runner
}

// Done reports whether all steps in the test script have been executed.
func (r *TestRunner) Done() bool {
	return r.done
}

// step advances the test runner by one frame. Called from Driver.Update.
func (r *TestRunner) step(d *Driver) {
	if r.done {
		return
	}
	// Wait for pending injections to drain before advancing.
	if len(d.injectQueue) > 0 {
		return
	}
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++

	switch st.Action {
	case "screenshot":
		d.Screenshot(st.Label)
	case "speed":
		d.SetSpeed(st.Value)
	case "resize":
		d.Resize(st.Width, st.Height)
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this frame counts as one
		}
	default:
		d.Inject(scriptActions[st.Action])
	}

	if r.cursor >= len(r.steps) && r.waitCount == 0 && len(d.injectQueue) == 0 {
		r.done = true
	}
}
