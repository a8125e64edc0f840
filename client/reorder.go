package client

import "math"

// DefaultActivationDistance is the pointer displacement, in the same
// units as the pointer coordinates, below which a press stays a click.
const DefaultActivationDistance = 8.0

// ReorderFunc receives exactly one (activeID, overID) pair per
// completed gesture. Hook it to Store.Reorder.
type ReorderFunc func(activeID, overID string)

// DragController turns pointer and keyboard gestures over a rendered
// ordered list into reorder pairs. A drag only activates once the
// pointer travels past the activation distance, so plain clicks never
// reorder. Everything before PointerUp is presentation state.
type DragController struct {
	onReorder ReorderFunc
	threshold float64

	pressedID string
	startX    float64
	startY    float64
	activated bool
	overID    string
}

func NewDragController(onReorder ReorderFunc) *DragController {
	return &DragController{
		onReorder: onReorder,
		threshold: DefaultActivationDistance,
	}
}

// SetActivationDistance overrides the click-versus-drag threshold.
func (d *DragController) SetActivationDistance(distance float64) {
	d.threshold = distance
}

// ActiveID returns the id being dragged, or "" when no drag is active.
// Views use it for elevation and opacity on the moving row.
func (d *DragController) ActiveID() string {
	if !d.activated {
		return ""
	}
	return d.pressedID
}

// PointerDown records a press on a row. The drag is not active yet.
func (d *DragController) PointerDown(id string, x, y float64) {
	d.pressedID = id
	d.startX = x
	d.startY = y
	d.activated = false
	d.overID = ""
}

// PointerMove activates the drag once displacement from the press
// point crosses the threshold.
func (d *DragController) PointerMove(x, y float64) {
	if d.pressedID == "" || d.activated {
		return
	}
	dx := x - d.startX
	dy := y - d.startY
	if math.Hypot(dx, dy) >= d.threshold {
		d.activated = true
	}
}

// PointerOver records which row the pointer is currently above.
func (d *DragController) PointerOver(id string) {
	if d.activated {
		d.overID = id
	}
}

// PointerUp completes the gesture. An activated drag that ended over a
// different row emits a single reorder pair; anything else is a click
// or a cancelled drag and emits nothing.
func (d *DragController) PointerUp() {
	if d.activated && d.overID != "" && d.overID != d.pressedID {
		d.onReorder(d.pressedID, d.overID)
	}
	d.pressedID = ""
	d.activated = false
	d.overID = ""
}

// KeyboardReorder is the non-pointer path. A confirmed key gesture
// maps straight to one reorder pair.
func (d *DragController) KeyboardReorder(activeID, overID string) {
	if activeID == "" || overID == "" || activeID == overID {
		return
	}
	d.onReorder(activeID, overID)
}
