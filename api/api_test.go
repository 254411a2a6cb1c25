package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"oilmap/typedef"
)

func TestBuildPayloadNullableAllianceStart(t *testing.T) {
	s := typedef.NewMapSettings()
	s.Name = "weekly"

	payload := BuildPayload(nil, nil, &s)
	if payload.MyAllianceStart != nil {
		t.Errorf("unset alliance start = %v, want nil", *payload.MyAllianceStart)
	}

	s.MyAllianceStart = 3
	payload = BuildPayload(nil, nil, &s)
	if payload.MyAllianceStart == nil || *payload.MyAllianceStart != 3 {
		t.Errorf("alliance start = %v, want 3", payload.MyAllianceStart)
	}
}

func TestBuildPayloadCopiesGraph(t *testing.T) {
	points := []typedef.Point{{Name: "M-01", Kind: typedef.KindTower, Size: typedef.SizeM, X: 100}}
	conns := []typedef.Connection{{From: 0, To: 1}}
	s := typedef.NewMapSettings()
	s.Name = "weekly"

	payload := BuildPayload(points, conns, &s)

	// Keep editing the live slices while the payload is marshaled on
	// another goroutine, the way a background save overlaps later edits.
	done := make(chan error, 1)
	go func() {
		_, err := json.Marshal(payload)
		done <- err
	}()
	for i := 0; i < 1000; i++ {
		points[0].X += 100
		conns[0].To++
	}
	if err := <-done; err != nil {
		t.Fatalf("marshal: %v", err)
	}

	if payload.Data.Points[0].X != 100 {
		t.Errorf("payload point X = %v, want the value at build time", payload.Data.Points[0].X)
	}
	if payload.Data.Connections[0].To != 1 {
		t.Errorf("payload connection To = %d, want the value at build time", payload.Data.Connections[0].To)
	}
}

func TestRecordSettingsRoundTrip(t *testing.T) {
	s := typedef.NewMapSettings()
	s.Name = "weekly"
	s.MyAllianceStart = 2
	s.IsRunning = true
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	s.StartTime = &start
	s.TotalOil = 120

	rec := MapRecord{ID: 7, MapPayload: BuildPayload(nil, nil, &s)}
	if got := rec.Settings(); got != s {
		t.Errorf("settings round trip:\n got %+v\nwant %+v", got, s)
	}
}

func TestGetMapMigratesLegacyPoints(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/maps/7/" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Write([]byte(`{"id": 7, "name": "old", "data": {"points": [
			{"name": "M-01", "type": "tower", "size": "M", "status": "battle"},
			{"name": "M-02", "type": "tower", "size": "M", "status": "captured", "owner": "player"},
			{"name": "M-03", "type": "tower", "size": "M", "owner": "enemy"},
			{"name": "M-04", "type": "tower", "size": "M", "color": "green", "status": "battle"}
		], "connections": []}}`))
	}))
	defer srv.Close()

	rec, err := NewClient(srv.URL).GetMap(context.Background(), 7)
	if err != nil {
		t.Fatalf("GetMap: %v", err)
	}
	want := []typedef.PointColor{typedef.ColorBlue, typedef.ColorGreen, typedef.ColorRed, typedef.ColorGreen}
	for i, p := range rec.Data.Points {
		if p.Color != want[i] {
			t.Errorf("point %d color = %q, want %q", i, p.Color, want[i])
		}
		if p.Status != "" || p.Owner != "" {
			t.Errorf("point %d kept legacy fields", i)
		}
	}
}

func TestResolveBattlesStringifiesIndices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			BattleResults map[string]BattleResult `json:"battle_results"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if req.BattleResults["4"] != BattleWon || req.BattleResults["9"] != BattleLost {
			t.Errorf("battle_results = %v", req.BattleResults)
		}
		w.Write([]byte(`{"points": [{"name": "M-01", "type": "tower", "size": "M", "color": "green"}]}`))
	}))
	defer srv.Close()

	points, err := NewClient(srv.URL).ResolveBattles(context.Background(), 1, map[int]BattleResult{
		4: BattleWon,
		9: BattleLost,
	})
	if err != nil {
		t.Fatalf("ResolveBattles: %v", err)
	}
	if len(points) != 1 || points[0].Color != typedef.ColorGreen {
		t.Errorf("points = %+v", points)
	}
}

func TestClientSurfacesBackendErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL).ListMaps(context.Background()); err == nil {
		t.Fatal("non-2xx must return an error")
	}
}

func TestCreateMapReturnsID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		w.Write([]byte(`{"id": 31}`))
	}))
	defer srv.Close()

	s := typedef.NewMapSettings()
	s.Name = "weekly"
	id, err := NewClient(srv.URL).CreateMap(context.Background(), BuildPayload(nil, nil, &s))
	if err != nil {
		t.Fatalf("CreateMap: %v", err)
	}
	if id != 31 {
		t.Errorf("id = %d, want 31", id)
	}
}
