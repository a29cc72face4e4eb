package window

// dragTracker turns absolute cursor positions into deltas while a button is held.
type dragTracker struct {
	pressed bool
	x, y    float64
}

// press starts a drag at the cursor position.
func (d *dragTracker) press(x, y float64) {
	d.pressed = true
	d.x, d.y = x, y
}

func (d *dragTracker) release() {
	d.pressed = false
}

// move returns the delta from the previous position and reports false when no button is held
// or the cursor did not move.
func (d *dragTracker) move(x, y float64) (dx, dy float64, ok bool) {
	if !d.pressed {
		return 0, 0, false
	}
	dx, dy = x-d.x, y-d.y
	d.x, d.y = x, y
	return dx, dy, dx != 0 || dy != 0
}
