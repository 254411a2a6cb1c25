package app

import (
	"context"
	"fmt"
	"time"

	"oilmap/api"
)

// PendingBattles returns the battle points awaiting a result, nil when
// none are open.
func (s *MapSession) PendingBattles() []api.BattlePoint {
	return s.pendingBattles
}

// BattleResult returns the recorded result for a battle point index,
// "" when not chosen yet.
func (s *MapSession) BattleResult(index int) api.BattleResult {
	return s.battleResults[index]
}

// SetBattleResult records a won/lost choice for one battle point.
func (s *MapSession) SetBattleResult(index int, result api.BattleResult) {
	s.battleResults[index] = result
}

// Expand asks the backend to run a territory expansion step. When the
// backend answers resolve_required, the returned battle points are
// queued for resolution and further expansion stays blocked until
// ConfirmBattles succeeds.
func (s *MapSession) Expand() {
	if s.client == nil || s.MapID() == 0 || !s.Settings.IsRunning {
		s.fail("Map is not running")
		return
	}
	if len(s.pendingBattles) > 0 {
		s.advise("Resolve the open battles first")
		return
	}
	id := s.MapID()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		resp, err := s.client.ExpandTerritories(ctx, id)
		if err != nil {
			s.fail("Territory expansion failed")
			return
		}
		s.enqueue(func() { s.applyExpand(resp) })
	}()
}

func (s *MapSession) applyExpand(resp *api.ExpandResponse) {
	s.Store.ReplacePoints(resp.Points)

	if len(resp.BattlePoints) > 0 {
		s.pendingBattles = resp.BattlePoints
		s.battleResults = make(map[int]api.BattleResult)
		s.BattlePromptOpen = true
		if resp.Message == api.MessageResolveRequired {
			s.advise("Resolve the existing battles first")
			return
		}
		s.SaveAsync(false)
		s.advise(fmt.Sprintf("Borders updated, %d new battle points", len(resp.BattlePoints)))
		return
	}

	s.pendingBattles = nil
	s.SaveAsync(false)
	s.advise("Borders updated")
}

// ConfirmBattles submits the chosen results. Every pending battle must
// carry a result; partial submissions are rejected here, never sent.
// After a successful resolve the borders are expanded again.
func (s *MapSession) ConfirmBattles() {
	total := len(s.pendingBattles)
	if total == 0 {
		s.advise("No battles to resolve")
		return
	}
	resolved := 0
	for _, bp := range s.pendingBattles {
		if _, ok := s.battleResults[bp.Index]; ok {
			resolved++
		}
	}
	if resolved < total {
		s.fail(fmt.Sprintf("Mark every battle point (%d/%d)", resolved, total))
		return
	}

	id := s.MapID()
	results := make(map[int]api.BattleResult, total)
	for index, result := range s.battleResults {
		results[index] = result
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		points, err := s.client.ResolveBattles(ctx, id, results)
		if err != nil {
			s.fail("Applying battle results failed")
			return
		}
		s.enqueue(func() {
			s.Store.ReplacePoints(points)
			s.pendingBattles = nil
			s.battleResults = make(map[int]api.BattleResult)
			s.BattlePromptOpen = false
			s.SaveAsync(false)
			s.advise("Battle results applied, updating borders")
			s.Expand()
		})
	}()
}

// CancelBattles discards any chosen results and closes the prompt. The
// battle points stay pending; expansion remains blocked until they are
// resolved.
func (s *MapSession) CancelBattles() {
	s.battleResults = make(map[int]api.BattleResult)
	s.BattlePromptOpen = false
}

// ReopenBattles shows the prompt again for still-pending battles.
func (s *MapSession) ReopenBattles() {
	if len(s.pendingBattles) > 0 {
		s.BattlePromptOpen = true
	}
}
