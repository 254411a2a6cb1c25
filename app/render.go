package app

import (
	"image/color"
	"math"
	"strconv"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font"

	"oilmap/eruntime"
	"oilmap/typedef"
)

// TextRenderer draws HUD and label strings with a single fixed face.
type TextRenderer struct {
	face       font.Face
	lineHeight int
}

func NewTextRenderer(face font.Face) *TextRenderer {
	m := face.Metrics()
	return &TextRenderer{
		face:       face,
		lineHeight: (m.Ascent + m.Descent).Round(),
	}
}

func (tr *TextRenderer) Draw(screen *ebiten.Image, s string, x, y int, clr color.Color) {
	text.Draw(screen, s, tr.face, x, y, clr)
}

// DrawCentered centers the string horizontally on cx.
func (tr *TextRenderer) DrawCentered(screen *ebiten.Image, s string, cx, y int, clr color.Color) {
	tr.Draw(screen, s, cx-tr.Width(s)/2, y, clr)
}

// Width returns the string's pixel width under the face.
func (tr *TextRenderer) Width(s string) int {
	return text.BoundString(tr.face, s).Dx()
}

func (tr *TextRenderer) LineHeight() int {
	return tr.lineHeight
}

var (
	gridColor        = color.RGBA{0x2A, 0x2A, 0x2A, 0xFF}
	outlineColor     = color.RGBA{0x22, 0x22, 0x22, 0xFF}
	selectedOutline  = color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}
	pendingOutline   = color.RGBA{0x00, 0xFF, 0xFF, 0xFF}
	markerBackground = color.RGBA{0xFF, 0xD7, 0x00, 0xE6}
	countdownColor   = color.RGBA{0xFF, 0xD7, 0x00, 0xFF}
)

// DrawMap renders the grid, connections and points of the session in
// screen space. Display colors come from the territory rules and are
// re-derived every frame, never cached on the points.
func (s *MapSession) DrawMap(screen *ebiten.Image, tr *TextRenderer) {
	now := s.now()
	s.drawGrid(screen)
	s.drawConnections(screen, now)
	s.drawPoints(screen, tr, now)
}

func (s *MapSession) drawGrid(screen *ebiten.Image) {
	cam := s.Camera
	worldLeft, worldTop := cam.ScreenToWorld(0, 0)
	startX := math.Floor(worldLeft/typedef.GridSize) * typedef.GridSize
	startY := math.Floor(worldTop/typedef.GridSize) * typedef.GridSize
	endX := worldLeft + float64(s.screenW)/cam.Zoom + typedef.GridSize
	endY := worldTop + float64(s.screenH)/cam.Zoom + typedef.GridSize

	for x := startX; x < endX; x += typedef.GridSize {
		sx, sy0 := cam.WorldToScreen(x, startY)
		_, sy1 := cam.WorldToScreen(x, endY)
		vector.StrokeLine(screen, float32(sx), float32(sy0), float32(sx), float32(sy1), 1, gridColor, false)
	}
	for y := startY; y < endY; y += typedef.GridSize {
		sx0, sy := cam.WorldToScreen(startX, y)
		sx1, _ := cam.WorldToScreen(endX, y)
		vector.StrokeLine(screen, float32(sx0), float32(sy), float32(sx1), float32(sy), 1, gridColor, false)
	}
}

func (s *MapSession) drawConnections(screen *ebiten.Image, now time.Time) {
	cam := s.Camera
	points := s.Store.Points()
	for _, c := range s.Store.Connections() {
		if c.From >= len(points) || c.To >= len(points) {
			continue
		}
		from := &points[c.From]
		to := &points[c.To]
		clr := eruntime.ConnectionDisplayColor(from, to, &s.Settings, now)

		x0, y0 := cam.WorldToScreen(from.X, from.Y)
		x1, y1 := cam.WorldToScreen(to.X, to.Y)
		width := float32(3 * cam.Zoom)
		vector.StrokeLine(screen, float32(x0), float32(y0), float32(x1), float32(y1), width, clr, true)
	}
}

func (s *MapSession) drawPoints(screen *ebiten.Image, tr *TextRenderer, now time.Time) {
	cam := s.Camera
	points := s.Store.Points()
	in := &s.Interaction

	for i := range points {
		p := &points[i]
		fill := eruntime.PointDisplayColor(p, i, &s.Settings, now)
		size := p.RenderSize() * cam.Zoom
		half := float32(size / 2)
		sx, sy := cam.WorldToScreen(p.X, p.Y)
		cx, cy := float32(sx), float32(sy)

		outline := outlineColor
		outlineWidth := float32(1)
		pairPending := (in.Tool == ToolConnect || in.Tool == ToolDisconnect) && in.Pending == i
		switch {
		case in.Selected == i:
			outline = selectedOutline
			outlineWidth = 3
		case pairPending:
			outline = pendingOutline
			outlineWidth = 4
		}

		if p.Round() {
			vector.DrawFilledCircle(screen, cx, cy, half, fill, true)
			vector.StrokeCircle(screen, cx, cy, half, outlineWidth, outline, true)
		} else {
			vector.DrawFilledRect(screen, cx-half, cy-half, half*2, half*2, fill, true)
			vector.StrokeRect(screen, cx-half, cy-half, half*2, half*2, outlineWidth, outline, true)
		}

		if p.Oil > 0 {
			tr.DrawCentered(screen, strconv.Itoa(p.Oil), int(cx), int(cy)+4, color.Black)
		}

		if p.Marker != typedef.MarkerNone {
			s.drawMarkerLabel(screen, tr, p, int(cx), int(cy-half))
		}

		tr.DrawCentered(screen, p.Name, int(cx), int(cy+half)+14, color.White)

		if s.Settings.IsRunning {
			day := eruntime.CurrentDay(&s.Settings, now)
			if eruntime.IsLocked(p, day) {
				if remaining := eruntime.UnlockRemaining(p, &s.Settings, now); remaining > 0 {
					label := "unlocks " + eruntime.FormatCountdown(remaining)
					tr.DrawCentered(screen, label, int(cx), int(cy+half)+28, countdownColor)
				}
			}
		}
	}
}

func (s *MapSession) drawMarkerLabel(screen *ebiten.Image, tr *TextRenderer, p *typedef.Point, cx, topY int) {
	label := typedef.MarkerLabel(p.Marker)
	if label == "" {
		return
	}
	const padding = 8
	width := tr.Width(label) + padding*2
	height := tr.LineHeight() + padding
	x := cx - width/2
	y := topY - height - 8

	vector.DrawFilledRect(screen, float32(x), float32(y), float32(width), float32(height), markerBackground, false)
	tr.DrawCentered(screen, label, cx, y+height/2+4, color.Black)
}
