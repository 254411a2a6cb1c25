// Package javascript embeds a goja interpreter for batch-editing the
// open map from user scripts: a `session` global exposes read and
// mutate helpers over the active session.
package javascript

import (
	"fmt"
	"time"

	"github.com/dop251/goja"

	"oilmap/app"
	"oilmap/eruntime"
	"oilmap/typedef"
)

// Session is the script-facing facade over the active map session.
type Session struct {
	s *app.MapSession
}

// Points returns copies of all points.
func (b *Session) Points() []typedef.Point {
	points := b.s.Store.Points()
	out := make([]typedef.Point, len(points))
	copy(out, points)
	return out
}

// SetColor paints a stored color. Invalid colors are rejected.
func (b *Session) SetColor(index int, colorName string) error {
	switch c := typedef.PointColor(colorName); c {
	case typedef.ColorWhite, typedef.ColorGreen, typedef.ColorBlue, typedef.ColorRed:
		b.s.Store.Point(index).Color = c
		return nil
	default:
		return fmt.Errorf("unknown color %q", colorName)
	}
}

// SetOil sets a point's oil yield.
func (b *Session) SetOil(index, oil int) {
	if oil < 0 {
		oil = 0
	}
	b.s.Store.Point(index).Oil = oil
}

// SetUnlockDay sets a point's unlock day.
func (b *Session) SetUnlockDay(index, day int) {
	if day < 0 {
		day = 0
	}
	b.s.Store.Point(index).UnlockDay = day
}

// Connect joins two points.
func (b *Session) Connect(a, c int) error {
	return b.s.Store.Connect(a, c)
}

// Disconnect removes the edge between two points.
func (b *Session) Disconnect(a, c int) error {
	return b.s.Store.Disconnect(a, c)
}

// Stats returns the per-color counts and daily oil of unlocked points.
func (b *Session) Stats() map[string]int {
	counts, daily := eruntime.Stats(b.s.Store.Points(), &b.s.Settings, time.Now())
	return map[string]int{
		"white": counts.White,
		"green": counts.Green,
		"blue":  counts.Blue,
		"red":   counts.Red,
		"daily": daily,
	}
}

// CurrentDay returns the elapsed day of the running map.
func (b *Session) CurrentDay() int {
	return eruntime.CurrentDay(&b.s.Settings, time.Now())
}

// Save persists the map in the background.
func (b *Session) Save() {
	b.s.SaveAsync(false)
}

// Engine runs user scripts against one session.
type Engine struct {
	vm *goja.Runtime
}

// New builds an engine bound to the session.
func New(session *app.MapSession) (*Engine, error) {
	vm := goja.New()
	vm.SetFieldNameMapper(goja.UncapFieldNameMapper())
	if err := vm.Set("session", &Session{s: session}); err != nil {
		return nil, err
	}
	if err := vm.Set("log", fmt.Println); err != nil {
		return nil, err
	}
	return &Engine{vm: vm}, nil
}

// Run executes a script with a wall-clock interrupt so a runaway loop
// cannot hang the editor.
func (e *Engine) Run(src string, timeout time.Duration) (goja.Value, error) {
	timer := time.AfterFunc(timeout, func() {
		e.vm.Interrupt("script timeout")
	})
	defer timer.Stop()

	value, err := e.vm.RunString(src)
	if err != nil {
		return nil, fmt.Errorf("script failed: %w", err)
	}
	return value, nil
}
