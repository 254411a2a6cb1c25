package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"oilmap/api"
	"oilmap/typedef"
)

type notifyLog struct {
	mu   sync.Mutex
	msgs []string
}

func (n *notifyLog) add(msg string, isErr bool) {
	n.mu.Lock()
	n.msgs = append(n.msgs, msg)
	n.mu.Unlock()
}

func (n *notifyLog) last() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.msgs) == 0 {
		return ""
	}
	return n.msgs[len(n.msgs)-1]
}

func battleSession(t *testing.T, backendURL string) (*MapSession, *notifyLog) {
	t.Helper()
	s := NewMapSession(api.NewClient(backendURL))
	s.SetScreenSize(1280, 720)
	s.setMapID(1)
	s.Settings.IsRunning = true
	log := &notifyLog{}
	s.SetNotify(log.add)
	t.Cleanup(s.Close)
	return s, log
}

func twoBattles() *api.ExpandResponse {
	return &api.ExpandResponse{
		Points: []typedef.Point{
			{Name: "M-01", Kind: typedef.KindTower, Size: typedef.SizeM, Oil: 20, Color: typedef.ColorBlue},
			{Name: "M-02", Kind: typedef.KindTower, Size: typedef.SizeM, Oil: 35, Color: typedef.ColorBlue},
		},
		BattlePoints: []api.BattlePoint{
			{Index: 0, Name: "M-01", Oil: 20},
			{Index: 1, Name: "M-02", Oil: 35},
		},
		Message: api.MessageResolveRequired,
	}
}

func TestExpandBlockedWhileBattlesPending(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer srv.Close()

	s, log := battleSession(t, srv.URL)
	s.applyExpand(twoBattles())

	if !s.BattlePromptOpen {
		t.Fatal("battle points must open the prompt")
	}
	if len(s.PendingBattles()) != 2 {
		t.Fatalf("pending = %d, want 2", len(s.PendingBattles()))
	}

	s.Expand()
	if got := log.last(); got != "Resolve the open battles first" {
		t.Errorf("advisory = %q", got)
	}
	if n := atomic.LoadInt32(&hits); n != 0 {
		t.Errorf("backend hit %d times; a blocked expand must never leave the client", n)
	}
}

func TestConfirmBattlesRejectsPartialResults(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer srv.Close()

	s, log := battleSession(t, srv.URL)
	s.applyExpand(twoBattles())
	s.SetBattleResult(0, api.BattleWon)

	s.ConfirmBattles()
	if got := log.last(); got != "Mark every battle point (1/2)" {
		t.Errorf("advisory = %q", got)
	}
	if n := atomic.LoadInt32(&hits); n != 0 {
		t.Errorf("backend hit %d times; a partial result set must never be sent", n)
	}
	if !s.BattlePromptOpen {
		t.Error("prompt must stay open after a rejected confirm")
	}
}

func TestCancelBattlesKeepsThemPending(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	s, _ := battleSession(t, srv.URL)
	s.applyExpand(twoBattles())
	s.SetBattleResult(0, api.BattleWon)

	s.CancelBattles()
	if s.BattlePromptOpen {
		t.Error("cancel must close the prompt")
	}
	if len(s.PendingBattles()) != 2 {
		t.Error("cancel must keep the battles pending")
	}
	if s.BattleResult(0) != "" {
		t.Error("cancel must discard chosen results")
	}

	s.ReopenBattles()
	if !s.BattlePromptOpen {
		t.Error("reopen must show pending battles again")
	}
}

func TestConfirmBattlesSubmitsCompleteSetAndReexpands(t *testing.T) {
	resolved := make(chan map[string]api.BattleResult, 1)
	var expandHits int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/maps/1/resolve/", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			BattleResults map[string]api.BattleResult `json:"battle_results"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode resolve request: %v", err)
		}
		resolved <- req.BattleResults
		w.Write([]byte(`{"points": [
			{"name": "M-01", "type": "tower", "size": "M", "oil": 20, "color": "green"},
			{"name": "M-02", "type": "tower", "size": "M", "oil": 35, "color": "red"}
		]}`))
	})
	mux.HandleFunc("/api/maps/1/expand/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&expandHits, 1)
		w.Write([]byte(`{"points": [
			{"name": "M-01", "type": "tower", "size": "M", "oil": 20, "color": "green"},
			{"name": "M-02", "type": "tower", "size": "M", "oil": 35, "color": "red"}
		], "battle_points": []}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	s, _ := battleSession(t, srv.URL)
	s.applyExpand(twoBattles())
	s.SetBattleResult(0, api.BattleWon)
	s.SetBattleResult(1, api.BattleLost)

	s.ConfirmBattles()

	select {
	case results := <-resolved:
		if results["0"] != api.BattleWon || results["1"] != api.BattleLost {
			t.Errorf("submitted results = %v", results)
		}
		if len(results) != 2 {
			t.Errorf("submitted %d results, want 2", len(results))
		}
	case <-time.After(3 * time.Second):
		t.Fatal("resolve request never reached the backend")
	}

	// The resolve response and the follow-up expansion both land through
	// the apply queue; drain until they have.
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		s.DrainApply()
		if !s.BattlePromptOpen && len(s.PendingBattles()) == 0 && atomic.LoadInt32(&expandHits) > 0 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	if s.BattlePromptOpen || len(s.PendingBattles()) != 0 {
		t.Error("battles must clear after a successful resolve")
	}
	if s.Store.Point(0).Color != typedef.ColorGreen {
		t.Errorf("point 0 color = %q, want green from the resolve response", s.Store.Point(0).Color)
	}
	if atomic.LoadInt32(&expandHits) == 0 {
		t.Error("a successful resolve must trigger another expansion")
	}
}
