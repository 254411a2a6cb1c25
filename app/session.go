package app

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"oilmap/api"
	"oilmap/eruntime"
	"oilmap/typedef"
)

// MapSession owns all state of one open map: the graph, the camera, the
// interaction state machine, the settings and the 1-second clock. A
// session is built per opened map and closed (clock stopped) before the
// next one is created, so a stale ticker can never touch the wrong map.
//
// All graph mutation happens synchronously inside input callbacks.
// Backend saves are fire-and-forget: a failed save notifies the user
// but never rolls local state back.
type MapSession struct {
	Store       *GraphStore
	Camera      *Camera
	Interaction Interaction
	Settings    typedef.MapSettings

	screenW int
	screenH int

	client *api.Client
	notify func(msg string, isErr bool)
	now    func() time.Time

	mu    sync.Mutex
	mapID int

	clockMu       sync.Mutex
	countdownText string
	dayText       string
	clockStop     chan struct{}

	pendingBattles []api.BattlePoint
	battleResults  map[int]api.BattleResult

	// BattlePromptOpen is whether the resolution prompt is showing.
	BattlePromptOpen bool

	applyCh chan func()
}

// NewMapSession returns an empty session. client may be nil for
// offline use; notify may be nil to log advisories instead.
func NewMapSession(client *api.Client) *MapSession {
	return &MapSession{
		Store:         NewGraphStore(),
		Camera:        NewCamera(),
		Interaction:   NewInteraction(),
		Settings:      typedef.NewMapSettings(),
		client:        client,
		now:           time.Now,
		battleResults: make(map[int]api.BattleResult),
		applyCh:       make(chan func(), 16),
	}
}

// enqueue schedules a state mutation to run on the next DrainApply.
// Backend responses go through here so every mutation still happens on
// the event loop, even when the response arrives after later edits.
func (s *MapSession) enqueue(fn func()) {
	select {
	case s.applyCh <- fn:
	default:
		log.Println("[SESSION] apply queue full, dropping backend result")
	}
}

// DrainApply runs queued backend-result mutations. Called once per
// frame from the update loop.
func (s *MapSession) DrainApply() {
	for {
		select {
		case fn := <-s.applyCh:
			fn()
		default:
			return
		}
	}
}

// SetNotify installs the advisory/error notification sink.
func (s *MapSession) SetNotify(fn func(msg string, isErr bool)) {
	s.notify = fn
}

// SetScreenSize records the viewport extent used for spawn centering.
func (s *MapSession) SetScreenSize(w, h int) {
	s.screenW = w
	s.screenH = h
}

// MapID returns the backend id of the open map, 0 if never saved.
func (s *MapSession) MapID() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mapID
}

func (s *MapSession) setMapID(id int) {
	s.mu.Lock()
	s.mapID = id
	s.mu.Unlock()
}

func (s *MapSession) advise(msg string) {
	if s.notify != nil {
		s.notify(msg, false)
		return
	}
	log.Printf("[SESSION] %s", msg)
}

func (s *MapSession) fail(msg string) {
	if s.notify != nil {
		s.notify(msg, true)
		return
	}
	log.Printf("[SESSION] error: %s", msg)
}

// AddPoint spawns a point of the given kind at the grid-snapped
// viewport center.
func (s *MapSession) AddPoint(kind typedef.PointKind, size typedef.PointSize, oil int) int {
	cx, cy := s.Camera.ScreenToWorld(float64(s.screenW)/2, float64(s.screenH)/2)
	return s.Store.AddPointAt(kind, size, oil, cx, cy)
}

// DeleteSelected removes the selected point and every connection that
// references it. Selection and pending state are invalidated by the
// re-index, so both are cleared.
func (s *MapSession) DeleteSelected() {
	if s.Interaction.Selected < 0 {
		return
	}
	s.Store.DeletePoint(s.Interaction.Selected)
	s.Interaction.ClearTransient()
	s.SaveAsync(false)
}

// AdjustOil changes the selected point's oil yield by delta, floored at
// zero.
func (s *MapSession) AdjustOil(delta int) {
	if s.Interaction.Selected < 0 {
		return
	}
	p := s.Store.Point(s.Interaction.Selected)
	p.Oil += delta
	if p.Oil < 0 {
		p.Oil = 0
	}
	s.SaveAsync(false)
}

// AdjustUnlockDay changes the selected point's unlock day by delta,
// floored at zero.
func (s *MapSession) AdjustUnlockDay(delta int) {
	if s.Interaction.Selected < 0 {
		return
	}
	p := s.Store.Point(s.Interaction.Selected)
	p.UnlockDay += delta
	if p.UnlockDay < 0 {
		p.UnlockDay = 0
	}
	s.SaveAsync(false)
}

// CycleSize moves the selected point to the next size in display order,
// wrapping after XXL.
func (s *MapSession) CycleSize() {
	if s.Interaction.Selected < 0 {
		return
	}
	p := s.Store.Point(s.Interaction.Selected)
	for i, size := range typedef.PointSizes {
		if size == p.Size {
			next := typedef.PointSizes[(i+1)%len(typedef.PointSizes)]
			s.Store.SetPointSize(s.Interaction.Selected, next)
			s.SaveAsync(false)
			return
		}
	}
}

// PointerDown dispatches a press at screen position (mx, my) through
// the current tool. A press on empty canvas always begins a pan.
func (s *MapSession) PointerDown(mx, my float64) {
	wx, wy := s.Camera.ScreenToWorld(mx, my)
	hit := s.Store.PointAt(wx, wy)

	if hit < 0 {
		s.Interaction.Panning = true
		s.Interaction.lastCursorX = mx
		s.Interaction.lastCursorY = my
		return
	}

	switch s.Interaction.Tool {
	case ToolConnect:
		s.handlePair(hit, true)
	case ToolDisconnect:
		s.handlePair(hit, false)
	case ToolPaintColor:
		s.paintColor(hit)
	case ToolPaintMarker:
		s.paintMarker(hit)
	default:
		s.Interaction.Selected = hit
		if s.Interaction.Mode == ModeDev {
			p := s.Store.Point(hit)
			s.Interaction.Dragging = hit
			s.Interaction.dragOffsetX = wx - p.X
			s.Interaction.dragOffsetY = wy - p.Y
		}
	}
}

// handlePair runs one step of the two-step connect/disconnect tool.
// Clicking the pending point again is rejected and the pending
// selection kept; committing a pair always returns to the move tool.
func (s *MapSession) handlePair(hit int, connect bool) {
	in := &s.Interaction
	if in.Pending < 0 {
		in.Pending = hit
		s.advise("Select a second point")
		return
	}
	if in.Pending == hit {
		s.advise("Select a different point")
		return
	}

	var err error
	if connect {
		err = s.Store.Connect(in.Pending, hit)
	} else {
		err = s.Store.Disconnect(in.Pending, hit)
	}
	switch err {
	case nil:
		if connect {
			s.advise("Points connected")
		} else {
			s.advise("Connection removed")
		}
		s.SaveAsync(false)
	case typedef.ErrAlreadyConnected:
		s.advise("These points are already connected")
	case typedef.ErrNotConnected:
		s.advise("These points are not connected")
	}
	in.Pending = -1
	in.Tool = ToolMove
}

// paintColor stores the palette color on an unlocked, non-start point.
func (s *MapSession) paintColor(hit int) {
	if !s.Settings.IsRunning {
		s.advise("Map is not running")
		return
	}
	p := s.Store.Point(hit)
	if p.Kind == typedef.KindAllianceStart {
		s.advise("Alliance start colors are fixed")
		return
	}
	if eruntime.IsLocked(p, eruntime.CurrentDay(&s.Settings, s.now())) {
		s.advise("Point is still locked")
		return
	}
	p.Color = s.Interaction.PaintColor
	s.SaveAsync(false)
}

// paintMarker toggles the active marker label on the point.
func (s *MapSession) paintMarker(hit int) {
	p := s.Store.Point(hit)
	if p.Marker == s.Interaction.PaintMarker {
		p.Marker = typedef.MarkerNone
	} else {
		p.Marker = s.Interaction.PaintMarker
	}
	s.SaveAsync(false)
}

// PointerMove continues a point drag or camera pan.
func (s *MapSession) PointerMove(mx, my float64) {
	in := &s.Interaction
	switch {
	case in.Dragging >= 0 && in.Mode == ModeDev && in.Tool == ToolMove:
		wx, wy := s.Camera.ScreenToWorld(mx, my)
		s.Store.MovePoint(in.Dragging, wx-in.dragOffsetX, wy-in.dragOffsetY)
	case in.Panning:
		s.Camera.Pan(mx-in.lastCursorX, my-in.lastCursorY)
		in.lastCursorX = mx
		in.lastCursorY = my
	}
}

// PointerUp ends any drag or pan, persisting a finished point drag.
func (s *MapSession) PointerUp() {
	moved := s.Interaction.Dragging >= 0
	s.Interaction.EndDrag()
	if moved {
		s.SaveAsync(false)
	}
}

// StartMap begins the running phase. Both preconditions are advisory:
// nothing happens until a start date and our alliance start are set.
func (s *MapSession) StartMap(startDate time.Time) {
	if startDate.IsZero() {
		s.fail("Pick a start date")
		return
	}
	if s.Settings.MyAllianceStart < 0 {
		s.fail("Select your alliance start first")
		return
	}
	start := startDate.UTC().Truncate(24 * time.Hour)
	s.Settings.StartTime = &start
	s.Settings.IsRunning = true

	points := s.Store.Points()
	for i := range points {
		if points[i].Color == "" {
			points[i].Color = typedef.ColorWhite
		}
	}

	s.SaveAsync(false)
	s.StartClock()
	s.advise("Map started")
}

// StopMap ends the running phase and resets all progress: colors back
// to white, oil and start time cleared.
func (s *MapSession) StopMap() {
	s.StopClock()
	s.Settings.IsRunning = false
	s.Settings.StartTime = nil
	s.Settings.TotalOil = 0
	s.Settings.LastOilUpdate = nil

	points := s.Store.Points()
	for i := range points {
		points[i].Color = typedef.ColorWhite
	}

	s.SaveAsync(false)
	s.advise("Map stopped")
}

// Reset replaces everything with a fresh unsaved map.
func (s *MapSession) Reset() {
	s.StopClock()
	s.setMapID(0)
	s.Store = NewGraphStore()
	s.Settings = typedef.NewMapSettings()
	s.Interaction.ClearTransient()
	s.pendingBattles = nil
	s.battleResults = make(map[int]api.BattleResult)
	s.BattlePromptOpen = false
	s.advise("New map created")
}

// LoadRecord installs a fetched map record, rebuilding name counters
// from the loaded point names.
func (s *MapSession) LoadRecord(rec *api.MapRecord) {
	s.StopClock()
	s.setMapID(rec.ID)
	s.Store.Load(rec.Data.Points, rec.Data.Connections)
	s.Settings = rec.Settings()
	s.Interaction.ClearTransient()
	s.pendingBattles = nil
	s.battleResults = make(map[int]api.BattleResult)
	s.BattlePromptOpen = false
	if s.Settings.IsRunning {
		s.StartClock()
	}
	s.advise("Map loaded")
}

// SaveAsync persists the session in the background. Create on first
// save, update afterwards; the backend is last-write-wins and a failure
// never rolls back local edits.
func (s *MapSession) SaveAsync(notifyOK bool) {
	if s.client == nil {
		return
	}
	if s.Settings.Name == "" {
		return
	}
	payload := api.BuildPayload(s.Store.Points(), s.Store.Connections(), &s.Settings)
	id := s.MapID()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if id > 0 {
			if err := s.client.UpdateMap(ctx, id, payload); err != nil {
				s.fail("Saving the map failed")
				return
			}
			if notifyOK {
				s.advise("Map saved")
			}
			return
		}
		newID, err := s.client.CreateMap(ctx, payload)
		if err != nil {
			s.fail("Creating the map failed")
			return
		}
		s.setMapID(newID)
		if notifyOK {
			s.advise("Map created")
		}
	}()
}

// StartClock starts the 1-second ticker that re-derives the countdown
// and day strings. Derivation only; skipping or repeating a tick cannot
// corrupt anything.
func (s *MapSession) StartClock() {
	s.StopClock()
	if !s.Settings.IsRunning || s.Settings.StartTime == nil {
		return
	}
	stop := make(chan struct{})
	s.clockStop = stop

	s.refreshClock()
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				s.refreshClock()
			}
		}
	}()
}

// StopClock halts the ticker. Always called before loading or creating
// another map.
func (s *MapSession) StopClock() {
	if s.clockStop != nil {
		close(s.clockStop)
		s.clockStop = nil
	}
}

// Close tears the session down.
func (s *MapSession) Close() {
	s.StopClock()
}

func (s *MapSession) refreshClock() {
	now := s.now()
	remaining := eruntime.DurationRemaining(&s.Settings, now)
	day := eruntime.CurrentDay(&s.Settings, now)

	s.clockMu.Lock()
	if remaining <= 0 {
		s.countdownText = "Map finished"
	} else {
		s.countdownText = eruntime.FormatCountdown(remaining)
	}
	s.dayText = fmt.Sprintf("Day %d of %d", day+1, s.Settings.DurationDays)
	s.clockMu.Unlock()
}

// ClockText returns the countdown and day strings for the HUD.
func (s *MapSession) ClockText() (countdown, day string) {
	s.clockMu.Lock()
	defer s.clockMu.Unlock()
	return s.countdownText, s.dayText
}

// Snapshot captures the session for the local autosave file.
func (s *MapSession) Snapshot() *eruntime.Snapshot {
	return eruntime.NewSnapshot(s.MapID(), s.Store.Points(), s.Store.Connections(), s.Settings)
}

// RestoreSnapshot reopens a session from a local autosave.
func (s *MapSession) RestoreSnapshot(snap *eruntime.Snapshot) {
	s.StopClock()
	s.setMapID(snap.MapID)
	s.Store.Load(snap.Points, snap.Connections)
	s.Settings = snap.Settings
	s.Interaction.ClearTransient()
	if s.Settings.IsRunning {
		s.StartClock()
	}
}
