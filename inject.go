package snowfall

// Inject queues an action as if its key had been pressed. One queued action
// is consumed per tick, ahead of real keyboard input.
func (d *Driver) Inject(a Action) {
	d.injectQueue = append(d.injectQueue, a)
}

// popInjected removes and returns the oldest queued action.
func (d *Driver) popInjected() (Action, bool) {
	if len(d.injectQueue) == 0 {
		return ActionNone, false
	}
	a := d.injectQueue[0]
	copy(d.injectQueue, d.injectQueue[1:])
	d.injectQueue = d.injectQueue[:len(d.injectQueue)-1]
	return a, true
}
