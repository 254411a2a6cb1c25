package app

// Camera is the screen<->world transform for the map view. X and Y are
// the screen-space pan offset, Zoom the scale factor. Panning speed is
// independent of zoom: Pan applies screen deltas directly.
type Camera struct {
	X    float64
	Y    float64
	Zoom float64

	minZoom float64
	maxZoom float64
}

const (
	defaultMinZoom = 0.5
	defaultMaxZoom = 3.0
)

// NewCamera returns a camera at the origin with zoom 1.
func NewCamera() *Camera {
	return &Camera{
		Zoom:    1,
		minZoom: defaultMinZoom,
		maxZoom: defaultMaxZoom,
	}
}

// ScreenToWorld converts a screen position to world coordinates.
func (c *Camera) ScreenToWorld(sx, sy float64) (float64, float64) {
	return (sx - c.X) / c.Zoom, (sy - c.Y) / c.Zoom
}

// WorldToScreen converts a world position to screen coordinates.
func (c *Camera) WorldToScreen(wx, wy float64) (float64, float64) {
	return wx*c.Zoom + c.X, wy*c.Zoom + c.Y
}

// Pan moves the camera by a screen-space delta.
func (c *Camera) Pan(dx, dy float64) {
	c.X += dx
	c.Y += dy
}

// ZoomBy multiplies the zoom by factor and clamps it to the allowed
// range. The anchor position is accepted but currently unused: zoom
// pivots on the canvas origin, not the cursor.
// TODO: anchor the zoom on the cursor position.
func (c *Camera) ZoomBy(factor float64, anchorX, anchorY int) {
	_ = anchorX
	_ = anchorY
	c.Zoom *= factor
	if c.Zoom < c.minZoom {
		c.Zoom = c.minZoom
	}
	if c.Zoom > c.maxZoom {
		c.Zoom = c.maxZoom
	}
}
