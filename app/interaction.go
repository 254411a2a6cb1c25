package app

import "oilmap/typedef"

// PrimaryMode is the top-level UI mode.
type PrimaryMode int

const (
	ModeDev PrimaryMode = iota
	ModeGame
	ModeStats
)

// Tool decides what a pointer click means inside dev/game mode. Exactly
// one tool is active at a time; switching tools clears every transient
// selection so two-step tools never leak state into each other.
type Tool int

const (
	ToolMove Tool = iota
	ToolConnect
	ToolDisconnect
	ToolPaintColor
	ToolPaintMarker
)

// Interaction is the mode/tool state machine. Selected, Pending and
// Dragging hold point indices, -1 when empty. Panning is mutually
// exclusive with point dragging: the hit test at pointer-down decides
// which one a drag is.
type Interaction struct {
	Mode PrimaryMode
	Tool Tool

	Selected int
	Pending  int
	Dragging int
	Panning  bool

	PaintColor  typedef.PointColor
	PaintMarker typedef.MarkerType

	dragOffsetX float64
	dragOffsetY float64
	lastCursorX float64
	lastCursorY float64
}

// NewInteraction starts in dev mode with the move tool.
func NewInteraction() Interaction {
	return Interaction{
		Mode:        ModeDev,
		Tool:        ToolMove,
		Selected:    -1,
		Pending:     -1,
		Dragging:    -1,
		PaintColor:  typedef.ColorGreen,
		PaintMarker: typedef.MarkerAttack,
	}
}

// SetTool activates a tool and clears all transient selections.
func (in *Interaction) SetTool(t Tool) {
	in.Tool = t
	in.ClearTransient()
}

// SetMode switches the primary mode. Any dev-only tool is exited and
// selections cleared.
func (in *Interaction) SetMode(m PrimaryMode) {
	in.Mode = m
	in.Tool = ToolMove
	in.ClearTransient()
}

// ClearTransient resets selection, pending pair state and any drag.
func (in *Interaction) ClearTransient() {
	in.Selected = -1
	in.Pending = -1
	in.Dragging = -1
	in.Panning = false
}

// EndDrag finishes any point drag or camera pan.
func (in *Interaction) EndDrag() {
	in.Dragging = -1
	in.Panning = false
}
