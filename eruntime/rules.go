// Package eruntime holds the pure, time-dependent game rules: day
// arithmetic, lock state and the color tables that turn stored point
// data into display state. Everything here is recomputed on each render
// and never cached back into the points.
package eruntime

import (
	"fmt"
	"image/color"
	"time"

	"oilmap/typedef"
)

// Display colors. Neutral doubles as the dev-mode color and the "free"
// running color.
var (
	DisplayNeutral   = color.RGBA{0xDD, 0xDD, 0xDD, 0xFF} // white / free / dev
	DisplayCaptured  = color.RGBA{0x4C, 0xAF, 0x50, 0xFF} // green
	DisplayContested = color.RGBA{0x21, 0x96, 0xF3, 0xFF} // blue
	DisplayEnemy     = color.RGBA{0xF4, 0x43, 0x36, 0xFF} // red
	DisplayLocked    = color.RGBA{0x66, 0x66, 0x66, 0xFF} // gray
)

// CurrentDay returns the whole days elapsed since the map started,
// never negative. Maps without a start time are always on day 0.
func CurrentDay(s *typedef.MapSettings, now time.Time) int {
	if s.StartTime == nil {
		return 0
	}
	d := int(now.Sub(*s.StartTime).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}

// IsLocked reports whether the point is still gated by its unlock day.
func IsLocked(p *typedef.Point, day int) bool {
	return p.UnlockDay > day
}

func storedDisplay(c typedef.PointColor) color.RGBA {
	switch c {
	case typedef.ColorGreen:
		return DisplayCaptured
	case typedef.ColorBlue:
		return DisplayContested
	case typedef.ColorRed:
		return DisplayEnemy
	default:
		return DisplayNeutral
	}
}

// PointDisplayColor resolves the rendered color of the point at index.
// Alliance starts ignore their stored color entirely: ours is always
// green, any other always red once one is configured. Locked points
// override everything but alliance starts, and a map that is not
// running renders every non-start point neutral.
func PointDisplayColor(p *typedef.Point, index int, s *typedef.MapSettings, now time.Time) color.RGBA {
	if p.Kind == typedef.KindAllianceStart {
		if s.MyAllianceStart == index {
			return DisplayCaptured
		}
		if s.MyAllianceStart >= 0 {
			return DisplayEnemy
		}
	}
	if !s.IsRunning {
		return DisplayNeutral
	}
	if IsLocked(p, CurrentDay(s, now)) {
		return DisplayLocked
	}
	return storedDisplay(p.Color)
}

// ConnectionDisplayColor derives an edge color from its endpoints'
// stored colors. The rule is symmetric and blue-dominant: a locked
// endpoint grays the edge, blue+white stays neutral, blue paired with
// anything else wins, matching colors keep their color, and mixed
// ownership falls back to neutral.
func ConnectionDisplayColor(a, b *typedef.Point, s *typedef.MapSettings, now time.Time) color.RGBA {
	if !s.IsRunning {
		return DisplayNeutral
	}
	day := CurrentDay(s, now)
	if IsLocked(a, day) || IsLocked(b, day) {
		return DisplayLocked
	}
	ca, cb := a.Color, b.Color
	if (ca == typedef.ColorBlue && cb == typedef.ColorWhite) ||
		(ca == typedef.ColorWhite && cb == typedef.ColorBlue) {
		return DisplayNeutral
	}
	if ca == typedef.ColorBlue || cb == typedef.ColorBlue {
		return DisplayContested
	}
	if ca == cb {
		return storedDisplay(ca)
	}
	return DisplayNeutral
}

// ColorCounts are the per-color point totals shown in stats mode.
// Locked points are excluded from every bucket.
type ColorCounts struct {
	White int
	Green int
	Blue  int
	Red   int
}

// Stats tallies unlocked points by color and the daily oil yield of the
// captured ones.
func Stats(points []typedef.Point, s *typedef.MapSettings, now time.Time) (ColorCounts, int) {
	var counts ColorCounts
	daily := 0
	day := CurrentDay(s, now)
	for i := range points {
		p := &points[i]
		if IsLocked(p, day) {
			continue
		}
		switch p.Color {
		case typedef.ColorWhite:
			counts.White++
		case typedef.ColorGreen:
			counts.Green++
			daily += p.Oil
		case typedef.ColorBlue:
			counts.Blue++
		case typedef.ColorRed:
			counts.Red++
		}
	}
	return counts, daily
}

// UnlockRemaining returns the time until the point unlocks, zero if it
// already has or the map has no start time.
func UnlockRemaining(p *typedef.Point, s *typedef.MapSettings, now time.Time) time.Duration {
	if s.StartTime == nil {
		return 0
	}
	unlockAt := s.StartTime.Add(time.Duration(p.UnlockDay) * 24 * time.Hour)
	if r := unlockAt.Sub(now); r > 0 {
		return r
	}
	return 0
}

// DurationRemaining returns the time until the map's configured
// duration elapses, zero once it has.
func DurationRemaining(s *typedef.MapSettings, now time.Time) time.Duration {
	if s.StartTime == nil {
		return 0
	}
	end := s.StartTime.Add(time.Duration(s.DurationDays) * 24 * time.Hour)
	if r := end.Sub(now); r > 0 {
		return r
	}
	return 0
}

// FormatCountdown renders a duration as "Nd HH:MM:SS".
func FormatCountdown(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dd %02d:%02d:%02d", days, hours, minutes, seconds)
}
