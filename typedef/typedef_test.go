package typedef

import "testing"

func TestSnapToGrid(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{0, 0},
		{49, 0},
		{50, 100},
		{149, 100},
		{150, 200},
		{-49, 0},
		{-51, -100},
		{-150, -100},
		{1234, 1200},
	}
	for _, c := range cases {
		if got := SnapToGrid(c.in); got != c.want {
			t.Errorf("SnapToGrid(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestMigrateColor(t *testing.T) {
	cases := []struct {
		name  string
		point Point
		want  PointColor
	}{
		{"battle status", Point{Status: "battle"}, ColorBlue},
		{"captured by player", Point{Status: "captured", Owner: "player"}, ColorGreen},
		{"enemy owner", Point{Owner: "enemy"}, ColorRed},
		{"captured by enemy", Point{Status: "captured", Owner: "enemy"}, ColorRed},
		{"no legacy fields", Point{}, ColorWhite},
		{"existing color wins", Point{Color: ColorGreen, Status: "battle"}, ColorGreen},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p := c.point
			p.MigrateColor()
			if p.Color != c.want {
				t.Errorf("color = %q, want %q", p.Color, c.want)
			}
			if p.Status != "" || p.Owner != "" {
				t.Errorf("legacy fields not cleared: status=%q owner=%q", p.Status, p.Owner)
			}
		})
	}
}

func TestPointCountersNext(t *testing.T) {
	c := NewPointCounters()

	if got := c.Next(KindTower, SizeM); got != "M-01" {
		t.Fatalf("first tower = %q, want M-01", got)
	}
	if got := c.Next(KindTower, SizeM); got != "M-02" {
		t.Fatalf("second tower = %q, want M-02", got)
	}
	if got := c.Next(KindTower, SizeL); got != "L-01" {
		t.Fatalf("sizes share a counter: got %q, want L-01", got)
	}
	if got := c.Next(KindLair, SizeM); got != "M-01" {
		t.Fatalf("lair and tower share a counter: got %q, want M-01", got)
	}
	if got := c.Next(KindAllianceStart, SizeM); got != "START-01" {
		t.Fatalf("alliance start = %q, want START-01", got)
	}
}

func TestPointCountersRebuild(t *testing.T) {
	c := NewPointCounters()
	c.Rebuild([]Point{
		{Name: "M-07", Kind: KindTower, Size: SizeM},
		{Name: "M-03", Kind: KindTower, Size: SizeM},
		{Name: "START-02", Kind: KindAllianceStart},
		{Name: "XL-01", Kind: KindLair, Size: SizeXL},
		{Name: "garbage"},
	})

	if got := c.Next(KindTower, SizeM); got != "M-08" {
		t.Errorf("tower M after rebuild = %q, want M-08", got)
	}
	if got := c.Next(KindAllianceStart, SizeM); got != "START-03" {
		t.Errorf("alliance start after rebuild = %q, want START-03", got)
	}
	if got := c.Next(KindLair, SizeXL); got != "XL-02" {
		t.Errorf("lair XL after rebuild = %q, want XL-02", got)
	}
}

func TestConnectionMatches(t *testing.T) {
	c := Connection{From: 2, To: 5}
	if !c.Matches(2, 5) || !c.Matches(5, 2) {
		t.Error("Matches must be orientation independent")
	}
	if c.Matches(2, 4) {
		t.Error("Matches(2, 4) = true for edge 2-5")
	}
	if !c.Touches(2) || !c.Touches(5) || c.Touches(3) {
		t.Error("Touches must report exactly the endpoints")
	}
}

func TestRenderSize(t *testing.T) {
	cases := []struct {
		kind  PointKind
		size  float64
		round bool
	}{
		{KindLair, 50, false},
		{KindTower, 60, true},
		{KindAllianceStart, 55, true},
	}
	for _, c := range cases {
		p := Point{Kind: c.kind}
		if got := p.RenderSize(); got != c.size {
			t.Errorf("%s render size = %v, want %v", c.kind, got, c.size)
		}
		if got := p.Round(); got != c.round {
			t.Errorf("%s round = %v, want %v", c.kind, got, c.round)
		}
	}
}
