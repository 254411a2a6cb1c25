package typedef

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// GridSize is the world-space snap unit. Every point position is a
// multiple of this value.
const GridSize = 100

var (
	ErrMapNameEmpty     = errors.New("map name cannot be empty")
	ErrAlreadyConnected = errors.New("points are already connected")
	ErrNotConnected     = errors.New("points are not connected")
	ErrSamePoint        = errors.New("cannot connect a point to itself")
)

type PointKind string

const (
	KindAllianceStart PointKind = "alliance_start"
	KindTower         PointKind = "tower"
	KindLair          PointKind = "lair"
)

type PointSize string

const (
	SizeXS  PointSize = "XS"
	SizeS   PointSize = "S"
	SizeM   PointSize = "M"
	SizeL   PointSize = "L"
	SizeXL  PointSize = "XL"
	SizeXXL PointSize = "XXL"
)

// PointSizes lists all sizes in display order.
var PointSizes = []PointSize{SizeXS, SizeS, SizeM, SizeL, SizeXL, SizeXXL}

type PointColor string

const (
	ColorWhite PointColor = "white" // free
	ColorGreen PointColor = "green" // captured by us
	ColorBlue  PointColor = "blue"  // contested / border battle
	ColorRed   PointColor = "red"   // enemy
)

type MarkerType string

const (
	MarkerNone    MarkerType = ""
	MarkerAttack  MarkerType = "attack"
	MarkerNoAttak MarkerType = "noattack"
	MarkerObserve MarkerType = "observe"
	MarkerCapture MarkerType = "capture"
	MarkerCenter  MarkerType = "center"
	MarkerWhale   MarkerType = "whale"
)

// MarkerTypes lists the assignable marker labels.
var MarkerTypes = []MarkerType{
	MarkerAttack, MarkerNoAttak, MarkerObserve,
	MarkerCapture, MarkerCenter, MarkerWhale,
}

// MarkerLabel returns the human readable label for a marker.
func MarkerLabel(m MarkerType) string {
	switch m {
	case MarkerAttack:
		return "Attack"
	case MarkerNoAttak:
		return "Do not attack"
	case MarkerObserve:
		return "Observing"
	case MarkerCapture:
		return "Capture with leftovers"
	case MarkerCenter:
		return "Rush the center"
	case MarkerWhale:
		return "Whale hunt"
	default:
		return ""
	}
}

// Point is a placeable node on the map. Positions are world-space and
// always grid-snapped. Status and Owner are legacy persistence fields
// kept only so old payloads decode; MigrateColor folds them into Color.
type Point struct {
	X         float64    `json:"x"`
	Y         float64    `json:"y"`
	Name      string     `json:"name"`
	Kind      PointKind  `json:"type"`
	Size      PointSize  `json:"size"`
	Oil       int        `json:"oil"`
	UnlockDay int        `json:"unlockDay"`
	Color     PointColor `json:"color,omitempty"`
	Marker    MarkerType `json:"marker,omitempty"`

	Status string `json:"status,omitempty"`
	Owner  string `json:"owner,omitempty"`
}

// RenderSize returns the point's world-space diameter. Lairs render as
// squares, everything else as circles.
func (p *Point) RenderSize() float64 {
	switch p.Kind {
	case KindLair:
		return 50
	case KindTower:
		return 60
	default:
		return 55 // alliance start
	}
}

// Round reports whether the point renders (and hit-tests) as a circle.
func (p *Point) Round() bool {
	return p.Kind != KindLair
}

// MigrateColor resolves the legacy status/owner fields into Color for
// points saved before the color system existed. Points that already
// carry a color are left untouched.
func (p *Point) MigrateColor() {
	if p.Color == "" {
		switch {
		case p.Status == "battle":
			p.Color = ColorBlue
		case p.Status == "captured" && p.Owner == "player":
			p.Color = ColorGreen
		case p.Owner == "enemy":
			p.Color = ColorRed
		default:
			p.Color = ColorWhite
		}
	}
	p.Status = ""
	p.Owner = ""
}

// Connection is an undirected edge between two points, addressed by
// their positions in the point list.
type Connection struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// Matches reports whether the connection joins a and b in either
// orientation.
func (c Connection) Matches(a, b int) bool {
	return (c.From == a && c.To == b) || (c.From == b && c.To == a)
}

// Touches reports whether the connection references the given index.
func (c Connection) Touches(i int) bool {
	return c.From == i || c.To == i
}

// MapSettings holds the per-map session settings exchanged wholesale
// with the backend. MyAllianceStart is -1 when unset.
type MapSettings struct {
	Name            string
	MyAllianceStart int
	DurationDays    int
	StartTime       *time.Time
	IsRunning       bool
	TotalOil        int
	LastOilUpdate   *time.Time
}

// NewMapSettings returns the settings of a freshly created map.
func NewMapSettings() MapSettings {
	return MapSettings{
		MyAllianceStart: -1,
		DurationDays:    10,
	}
}

// PointCounters tracks the per-(kind, size) name counters. Counters
// only ever go up; deleting a point never frees its number.
type PointCounters struct {
	AllianceStart int
	Tower         map[PointSize]int
	Lair          map[PointSize]int
}

func NewPointCounters() PointCounters {
	return PointCounters{
		Tower: make(map[PointSize]int),
		Lair:  make(map[PointSize]int),
	}
}

// Next generates the next unique name for a point of the given kind and
// size ("START-NN" for alliance starts, "{SIZE}-NN" otherwise).
func (c *PointCounters) Next(kind PointKind, size PointSize) string {
	switch kind {
	case KindAllianceStart:
		c.AllianceStart++
		return fmt.Sprintf("START-%02d", c.AllianceStart)
	case KindLair:
		c.Lair[size]++
		return fmt.Sprintf("%s-%02d", size, c.Lair[size])
	default:
		c.Tower[size]++
		return fmt.Sprintf("%s-%02d", size, c.Tower[size])
	}
}

// Observe raises the counter for the point's (kind, size) pair to at
// least the number embedded in its name. Used when loading a map so new
// points never reuse a persisted name.
func (c *PointCounters) Observe(p *Point) {
	parts := strings.SplitN(p.Name, "-", 2)
	if len(parts) != 2 {
		return
	}
	num, err := strconv.Atoi(parts[1])
	if err != nil {
		return
	}
	switch p.Kind {
	case KindAllianceStart:
		if num > c.AllianceStart {
			c.AllianceStart = num
		}
	case KindLair:
		if num > c.Lair[p.Size] {
			c.Lair[p.Size] = num
		}
	default:
		if num > c.Tower[p.Size] {
			c.Tower[p.Size] = num
		}
	}
}

// Rebuild resets the counters and re-derives them from loaded points.
func (c *PointCounters) Rebuild(points []Point) {
	*c = NewPointCounters()
	for i := range points {
		c.Observe(&points[i])
	}
}

// SnapToGrid rounds a world coordinate to the nearest grid multiple.
func SnapToGrid(v float64) float64 {
	return math.Round(v/GridSize) * GridSize
}
