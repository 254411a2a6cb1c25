package eruntime

import (
	"image/color"
	"testing"
	"time"

	"oilmap/typedef"
)

var (
	testStart = time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	testNow   = time.Date(2026, 8, 4, 9, 30, 0, 0, time.UTC) // day 3
)

func runningSettings() typedef.MapSettings {
	s := typedef.NewMapSettings()
	s.IsRunning = true
	start := testStart
	s.StartTime = &start
	return s
}

func TestCurrentDay(t *testing.T) {
	s := runningSettings()
	cases := []struct {
		now  time.Time
		want int
	}{
		{testStart, 0},
		{testStart.Add(23 * time.Hour), 0},
		{testStart.Add(24 * time.Hour), 1},
		{testStart.Add(71 * time.Hour), 2},
		{testStart.Add(-5 * time.Hour), 0}, // clock skew clamps to day 0
	}
	for _, c := range cases {
		if got := CurrentDay(&s, c.now); got != c.want {
			t.Errorf("CurrentDay at %v = %d, want %d", c.now, got, c.want)
		}
	}

	s.StartTime = nil
	if got := CurrentDay(&s, testNow); got != 0 {
		t.Errorf("CurrentDay without start time = %d, want 0", got)
	}
}

func TestPointDisplayColor(t *testing.T) {
	running := runningSettings()
	stopped := typedef.NewMapSettings()
	configured := runningSettings()
	configured.MyAllianceStart = 0

	cases := []struct {
		name     string
		point    typedef.Point
		index    int
		settings typedef.MapSettings
		want     color.RGBA
	}{
		{"stopped map is neutral", typedef.Point{Kind: typedef.KindTower, Color: typedef.ColorRed}, 0, stopped, DisplayNeutral},
		{"locked overrides stored color", typedef.Point{Kind: typedef.KindTower, Color: typedef.ColorGreen, UnlockDay: 5}, 0, running, DisplayLocked},
		{"unlocked green", typedef.Point{Kind: typedef.KindTower, Color: typedef.ColorGreen, UnlockDay: 3}, 0, running, DisplayCaptured},
		{"unlocked blue", typedef.Point{Kind: typedef.KindTower, Color: typedef.ColorBlue}, 0, running, DisplayContested},
		{"unlocked red", typedef.Point{Kind: typedef.KindTower, Color: typedef.ColorRed}, 0, running, DisplayEnemy},
		{"white is neutral", typedef.Point{Kind: typedef.KindTower, Color: typedef.ColorWhite}, 0, running, DisplayNeutral},
		{"our alliance start", typedef.Point{Kind: typedef.KindAllianceStart, Color: typedef.ColorRed}, 0, configured, DisplayCaptured},
		{"other alliance start", typedef.Point{Kind: typedef.KindAllianceStart}, 3, configured, DisplayEnemy},
		{"start before configuration", typedef.Point{Kind: typedef.KindAllianceStart}, 3, running, DisplayNeutral},
		{"our start on stopped map", typedef.Point{Kind: typedef.KindAllianceStart}, 0, func() typedef.MapSettings {
			s := typedef.NewMapSettings()
			s.MyAllianceStart = 0
			return s
		}(), DisplayCaptured},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := PointDisplayColor(&c.point, c.index, &c.settings, testNow); got != c.want {
				t.Errorf("got %v, want %v", got, c.want)
			}
		})
	}
}

func TestConnectionDisplayColor(t *testing.T) {
	running := runningSettings()
	point := func(c typedef.PointColor) typedef.Point {
		return typedef.Point{Kind: typedef.KindTower, Color: c}
	}

	cases := []struct {
		name string
		a, b typedef.Point
		want color.RGBA
	}{
		{"blue with white stays neutral", point(typedef.ColorBlue), point(typedef.ColorWhite), DisplayNeutral},
		{"white with blue stays neutral", point(typedef.ColorWhite), point(typedef.ColorBlue), DisplayNeutral},
		{"blue with green goes blue", point(typedef.ColorBlue), point(typedef.ColorGreen), DisplayContested},
		{"blue with red goes blue", point(typedef.ColorRed), point(typedef.ColorBlue), DisplayContested},
		{"both blue", point(typedef.ColorBlue), point(typedef.ColorBlue), DisplayContested},
		{"both green", point(typedef.ColorGreen), point(typedef.ColorGreen), DisplayCaptured},
		{"both red", point(typedef.ColorRed), point(typedef.ColorRed), DisplayEnemy},
		{"green with red is neutral", point(typedef.ColorGreen), point(typedef.ColorRed), DisplayNeutral},
		{"green with white is neutral", point(typedef.ColorGreen), point(typedef.ColorWhite), DisplayNeutral},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := ConnectionDisplayColor(&c.a, &c.b, &running, testNow); got != c.want {
				t.Errorf("got %v, want %v", got, c.want)
			}
		})
	}

	locked := point(typedef.ColorGreen)
	locked.UnlockDay = 9
	other := point(typedef.ColorGreen)
	if got := ConnectionDisplayColor(&locked, &other, &running, testNow); got != DisplayLocked {
		t.Errorf("locked endpoint = %v, want gray", got)
	}

	stopped := typedef.NewMapSettings()
	a, b := point(typedef.ColorRed), point(typedef.ColorRed)
	if got := ConnectionDisplayColor(&a, &b, &stopped, testNow); got != DisplayNeutral {
		t.Errorf("stopped map edge = %v, want neutral", got)
	}
}

func TestStats(t *testing.T) {
	s := runningSettings()
	points := []typedef.Point{
		{Color: typedef.ColorGreen, Oil: 40},
		{Color: typedef.ColorGreen, Oil: 25},
		{Color: typedef.ColorBlue, Oil: 100},
		{Color: typedef.ColorRed, Oil: 10},
		{Color: typedef.ColorWhite},
		{Color: typedef.ColorGreen, Oil: 999, UnlockDay: 8}, // locked, invisible to stats
	}
	counts, daily := Stats(points, &s, testNow)

	if counts != (ColorCounts{White: 1, Green: 2, Blue: 1, Red: 1}) {
		t.Errorf("counts = %+v", counts)
	}
	if daily != 65 {
		t.Errorf("daily oil = %d, want 65 (captured points only)", daily)
	}
}

func TestUnlockRemaining(t *testing.T) {
	s := runningSettings()
	p := typedef.Point{UnlockDay: 5}
	want := testStart.Add(5 * 24 * time.Hour).Sub(testNow)
	if got := UnlockRemaining(&p, &s, testNow); got != want {
		t.Errorf("got %v, want %v", got, want)
	}

	unlocked := typedef.Point{UnlockDay: 1}
	if got := UnlockRemaining(&unlocked, &s, testNow); got != 0 {
		t.Errorf("already unlocked = %v, want 0", got)
	}
}

func TestFormatCountdown(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{0, "0d 00:00:00"},
		{-time.Hour, "0d 00:00:00"},
		{61 * time.Second, "0d 00:01:01"},
		{26*time.Hour + 3*time.Minute + 7*time.Second, "1d 02:03:07"},
		{9 * 24 * time.Hour, "9d 00:00:00"},
	}
	for _, c := range cases {
		if got := FormatCountdown(c.d); got != c.want {
			t.Errorf("FormatCountdown(%v) = %q, want %q", c.d, got, c.want)
		}
	}
}
