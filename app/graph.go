package app

import (
	"fmt"
	"math"

	"oilmap/typedef"
)

// GraphStore owns the point list and the positional connection list of
// one open map. Connections reference points by their position in the
// list, so every deletion re-indexes the survivors; nothing outside the
// store may hold a point index across a call to DeletePoint.
type GraphStore struct {
	points      []typedef.Point
	connections []typedef.Connection
	counters    typedef.PointCounters
}

// NewGraphStore returns an empty store with fresh name counters.
func NewGraphStore() *GraphStore {
	return &GraphStore{
		counters: typedef.NewPointCounters(),
	}
}

// Len returns the number of points.
func (g *GraphStore) Len() int {
	return len(g.points)
}

// Points returns the backing point slice. Callers must not grow or
// shrink it; edits to fields are fine.
func (g *GraphStore) Points() []typedef.Point {
	return g.points
}

// Point returns the point at index. Out-of-range is a programmer error.
func (g *GraphStore) Point(i int) *typedef.Point {
	g.check(i)
	return &g.points[i]
}

// Connections returns the backing connection slice.
func (g *GraphStore) Connections() []typedef.Connection {
	return g.connections
}

// AddPointAt appends a grid-snapped point at the given world position
// and returns its index. The name comes from the per-(kind, size)
// counter and is never reused, even after deletions.
func (g *GraphStore) AddPointAt(kind typedef.PointKind, size typedef.PointSize, oil int, wx, wy float64) int {
	p := typedef.Point{
		X:     typedef.SnapToGrid(wx),
		Y:     typedef.SnapToGrid(wy),
		Name:  g.counters.Next(kind, size),
		Kind:  kind,
		Size:  size,
		Oil:   oil,
		Color: typedef.ColorWhite,
	}
	g.points = append(g.points, p)
	return len(g.points) - 1
}

// DeletePoint removes the point at index, drops every connection that
// touches it and shifts the endpoints of all connections referencing a
// higher index down by one.
func (g *GraphStore) DeletePoint(index int) {
	g.check(index)

	kept := g.connections[:0]
	for _, c := range g.connections {
		if c.Touches(index) {
			continue
		}
		if c.From > index {
			c.From--
		}
		if c.To > index {
			c.To--
		}
		kept = append(kept, c)
	}
	g.connections = kept
	g.points = append(g.points[:index], g.points[index+1:]...)
}

// Connected reports whether an edge joins a and b in either direction.
func (g *GraphStore) Connected(a, b int) bool {
	for _, c := range g.connections {
		if c.Matches(a, b) {
			return true
		}
	}
	return false
}

// Connect adds an undirected edge between a and b. Connecting a point
// to itself or duplicating an existing edge is advisory, not fatal.
func (g *GraphStore) Connect(a, b int) error {
	g.check(a)
	g.check(b)
	if a == b {
		return typedef.ErrSamePoint
	}
	if g.Connected(a, b) {
		return typedef.ErrAlreadyConnected
	}
	g.connections = append(g.connections, typedef.Connection{From: a, To: b})
	return nil
}

// Disconnect removes the edge between a and b, matching either
// orientation.
func (g *GraphStore) Disconnect(a, b int) error {
	g.check(a)
	g.check(b)
	for i, c := range g.connections {
		if c.Matches(a, b) {
			g.connections = append(g.connections[:i], g.connections[i+1:]...)
			return nil
		}
	}
	return typedef.ErrNotConnected
}

// SetPointSize changes a point's size and reissues its name from the new
// (kind, size) counter, so names always match their size prefix. Alliance
// starts keep their START name.
func (g *GraphStore) SetPointSize(index int, size typedef.PointSize) {
	g.check(index)
	p := &g.points[index]
	if p.Size == size {
		return
	}
	p.Size = size
	if p.Kind != typedef.KindAllianceStart {
		p.Name = g.counters.Next(p.Kind, size)
	}
}

// MovePoint sets the point's position to the grid-snapped world target.
func (g *GraphStore) MovePoint(index int, wx, wy float64) {
	g.check(index)
	g.points[index].X = typedef.SnapToGrid(wx)
	g.points[index].Y = typedef.SnapToGrid(wy)
}

// PointAt returns the index of the point whose hit region contains the
// world position, or -1. Round kinds use a circular region of radius
// size/2, lairs an axis-aligned square. When regions overlap, the last
// point in the list wins.
func (g *GraphStore) PointAt(wx, wy float64) int {
	hit := -1
	for i := range g.points {
		p := &g.points[i]
		half := p.RenderSize() / 2
		if p.Round() {
			if math.Hypot(wx-p.X, wy-p.Y) < half {
				hit = i
			}
		} else {
			if wx >= p.X-half && wx <= p.X+half && wy >= p.Y-half && wy <= p.Y+half {
				hit = i
			}
		}
	}
	return hit
}

// Load replaces the store contents with persisted data and rebuilds the
// name counters from the loaded names.
func (g *GraphStore) Load(points []typedef.Point, connections []typedef.Connection) {
	g.points = points
	g.connections = connections
	g.counters.Rebuild(points)
}

// ReplacePoints swaps in a backend-returned point list (expand/resolve
// results) while keeping connections and counters.
func (g *GraphStore) ReplacePoints(points []typedef.Point) {
	g.points = points
	g.counters.Rebuild(points)
}

func (g *GraphStore) check(i int) {
	if i < 0 || i >= len(g.points) {
		panic(fmt.Sprintf("graph: point index %d out of range (len %d)", i, len(g.points)))
	}
}
