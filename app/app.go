// Package app is the interactive map editor: an Ebiten game hosting
// one MapSession plus the HUD, prompts and keybinds around it.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"

	"oilmap/api"
	"oilmap/eruntime"
	"oilmap/typedef"
)

const (
	hudBackgroundAlpha = 200
	wsBroadcastFrames  = 60 // broadcast map state to observers once per second
)

// Game is the ebiten.Game root. It owns the session, the toast layer
// and the modal prompts; all input dispatch starts here.
type Game struct {
	session *MapSession
	client  *api.Client
	hub     *api.Hub
	tr      *TextRenderer

	screenW int
	screenH int

	mapList     []api.MapSummary
	mapListOpen bool

	frame uint64
}

// New builds the game with a fresh empty session.
func New(client *api.Client, hub *api.Hub) *Game {
	session := NewMapSession(client)
	session.SetNotify(Notify)
	g := &Game{
		session: session,
		client:  client,
		hub:     hub,
		tr:      NewTextRenderer(basicfont.Face7x13),
	}
	return g
}

// Session exposes the active session (scripting console, autosave).
func (g *Game) Session() *MapSession {
	return g.session
}

// Update implements ebiten.Game.
func (g *Game) Update() error {
	g.frame++
	g.session.DrainApply()
	g.session.SetScreenSize(g.screenW, g.screenH)

	if Toasts() != nil {
		Toasts().Update(g.screenW, g.screenH)
	}

	g.handleKeys()

	switch {
	case g.session.BattlePromptOpen:
		g.updateBattlePrompt()
	case g.mapListOpen:
		g.updateMapList()
	default:
		g.handleMouse()
	}

	if g.hub != nil && g.frame%wsBroadcastFrames == 0 {
		g.broadcastState()
	}
	return nil
}

func (g *Game) handleMouse() {
	mx, my := ebiten.CursorPosition()

	if _, wheelY := ebiten.Wheel(); wheelY != 0 {
		factor := 1.1
		if wheelY < 0 {
			factor = 0.9
		}
		g.session.Camera.ZoomBy(factor, mx, my)
	}

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		g.session.PointerDown(float64(mx), float64(my))
	}
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		g.session.PointerMove(float64(mx), float64(my))
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		g.session.PointerUp()
	}
}

func (g *Game) handleKeys() {
	s := g.session

	// Primary modes.
	if inpututil.IsKeyJustPressed(ebiten.KeyF1) {
		s.Interaction.SetMode(ModeDev)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF2) {
		s.Interaction.SetMode(ModeGame)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF3) {
		s.Interaction.SetMode(ModeStats)
	}

	// Tools. Connect/disconnect are dev and game; painting is game only.
	if inpututil.IsKeyJustPressed(ebiten.KeyM) {
		s.Interaction.SetTool(ToolMove)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyC) && !ebiten.IsKeyPressed(ebiten.KeyControl) {
		s.Interaction.SetTool(ToolConnect)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyX) {
		s.Interaction.SetTool(ToolDisconnect)
	}
	if s.Interaction.Mode == ModeGame {
		if inpututil.IsKeyJustPressed(ebiten.KeyP) {
			s.Interaction.SetTool(ToolPaintColor)
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyK) {
			s.Interaction.SetTool(ToolPaintMarker)
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
			g.cyclePaint()
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyE) {
			s.Expand()
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyB) {
			s.ReopenBattles()
		}
	}

	// Dev-mode point placement.
	if s.Interaction.Mode == ModeDev {
		if inpututil.IsKeyJustPressed(ebiten.KeyT) {
			s.AddPoint(typedef.KindTower, typedef.SizeM, 0)
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyL) {
			s.AddPoint(typedef.KindLair, typedef.SizeM, 0)
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyA) {
			s.AddPoint(typedef.KindAllianceStart, typedef.SizeM, 0)
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyDelete) || inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
			s.DeleteSelected()
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyH) {
			g.markAllianceStart()
		}
		// Selected-point editing.
		if inpututil.IsKeyJustPressed(ebiten.KeyUp) {
			s.AdjustOil(5)
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyDown) {
			s.AdjustOil(-5)
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyPageUp) {
			s.AdjustUnlockDay(1)
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyPageDown) {
			s.AdjustUnlockDay(-1)
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyBracketRight) {
			s.CycleSize()
		}
	}

	// Lifecycle.
	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		s.Reset()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) && !s.Settings.IsRunning {
		s.StartMap(time.Now().UTC())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyO) && s.Settings.IsRunning {
		s.StopMap()
	}

	// Persistence.
	if ebiten.IsKeyPressed(ebiten.KeyControl) && inpututil.IsKeyJustPressed(ebiten.KeyS) {
		g.saveNamed()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF9) {
		g.openMapList()
	}
	if ebiten.IsKeyPressed(ebiten.KeyControl) && inpututil.IsKeyJustPressed(ebiten.KeyC) {
		g.copyMapToClipboard()
	}

	// Keyboard zoom.
	if inpututil.IsKeyJustPressed(ebiten.KeyEqual) {
		s.Camera.ZoomBy(1.25, g.screenW/2, g.screenH/2)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyMinus) {
		s.Camera.ZoomBy(0.8, g.screenW/2, g.screenH/2)
	}
}

// markAllianceStart makes the selected alliance-start point ours.
func (g *Game) markAllianceStart() {
	s := g.session
	if s.Interaction.Selected < 0 {
		Notify("Select an alliance start first", false)
		return
	}
	p := s.Store.Point(s.Interaction.Selected)
	if p.Kind != typedef.KindAllianceStart {
		Notify("That point is not an alliance start", false)
		return
	}
	s.Settings.MyAllianceStart = s.Interaction.Selected
	Notify(fmt.Sprintf("%s is now our alliance start", p.Name), false)
}

// cyclePaint advances the palette of the active paint tool.
func (g *Game) cyclePaint() {
	in := &g.session.Interaction
	switch in.Tool {
	case ToolPaintColor:
		order := []typedef.PointColor{typedef.ColorWhite, typedef.ColorGreen, typedef.ColorBlue}
		for i, c := range order {
			if c == in.PaintColor {
				in.PaintColor = order[(i+1)%len(order)]
				return
			}
		}
		in.PaintColor = order[0]
	case ToolPaintMarker:
		for i, m := range typedef.MarkerTypes {
			if m == in.PaintMarker {
				in.PaintMarker = typedef.MarkerTypes[(i+1)%len(typedef.MarkerTypes)]
				return
			}
		}
		in.PaintMarker = typedef.MarkerTypes[0]
	}
}

func (g *Game) saveNamed() {
	s := g.session
	if s.Settings.Name == "" {
		s.Settings.Name = fmt.Sprintf("Map %s", time.Now().Format("2006-01-02 15:04"))
	}
	s.SaveAsync(true)
}

func (g *Game) openMapList() {
	if g.client == nil {
		Notify("No backend configured", true)
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		maps, err := g.client.ListMaps(ctx)
		if err != nil {
			Notify("Loading the map list failed", true)
			return
		}
		g.session.enqueue(func() {
			g.mapList = maps
			g.mapListOpen = true
		})
	}()
}

func (g *Game) loadMap(id int) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		rec, err := g.client.GetMap(ctx, id)
		if err != nil {
			Notify("Loading the map failed", true)
			return
		}
		g.session.enqueue(func() {
			g.session.LoadRecord(rec)
			g.mapListOpen = false
		})
	}()
}

func (g *Game) copyMapToClipboard() {
	s := g.session
	payload := api.BuildPayload(s.Store.Points(), s.Store.Connections(), &s.Settings)
	raw, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		Notify("Copy failed", true)
		return
	}
	copyText(string(raw))
	Notify("Map JSON copied to clipboard", false)
}

func (g *Game) broadcastState() {
	s := g.session
	g.hub.Broadcast("map_state", api.BuildPayload(s.Store.Points(), s.Store.Connections(), &s.Settings))
}

// Draw implements ebiten.Game.
func (g *Game) Draw(screen *ebiten.Image) {
	g.session.DrawMap(screen, g.tr)
	g.drawHUD(screen)

	if g.session.Interaction.Mode == ModeStats {
		g.drawStats(screen)
	}
	if g.session.BattlePromptOpen {
		g.drawBattlePrompt(screen)
	}
	if g.mapListOpen {
		g.drawMapList(screen)
	}
	if Toasts() != nil {
		Toasts().Draw(screen, g.tr)
	}
}

func (g *Game) drawHUD(screen *ebiten.Image) {
	s := g.session
	vector.DrawFilledRect(screen, 0, 0, float32(g.screenW), 24,
		color.RGBA{20, 20, 26, hudBackgroundAlpha}, false)

	line := fmt.Sprintf("%s | %s", modeName(s.Interaction.Mode), toolName(s.Interaction.Tool))
	if s.Interaction.Tool == ToolPaintColor {
		line += fmt.Sprintf(" [%s]", s.Interaction.PaintColor)
	}
	if s.Interaction.Tool == ToolPaintMarker {
		line += fmt.Sprintf(" [%s]", typedef.MarkerLabel(s.Interaction.PaintMarker))
	}
	if s.Settings.Name != "" {
		line += " | " + s.Settings.Name
	}
	if sel := s.Interaction.Selected; sel >= 0 && sel < s.Store.Len() {
		p := s.Store.Point(sel)
		line += fmt.Sprintf(" | %s %s oil %d unlock d%d", p.Name, p.Size, p.Oil, p.UnlockDay)
	}
	if s.Settings.IsRunning {
		countdown, day := s.ClockText()
		line += fmt.Sprintf(" | %s | %s", day, countdown)
	}
	g.tr.Draw(screen, line, 8, 16, color.White)
}

func (g *Game) drawStats(screen *ebiten.Image) {
	s := g.session
	if !s.Settings.IsRunning {
		g.tr.Draw(screen, "Map is not running", 8, 48, color.White)
		return
	}
	counts, daily := eruntime.Stats(s.Store.Points(), &s.Settings, time.Now())
	lines := []string{
		fmt.Sprintf("Total oil: %d", s.Settings.TotalOil),
		fmt.Sprintf("Daily oil: %d", daily),
		fmt.Sprintf("Free: %d", counts.White),
		fmt.Sprintf("Captured: %d", counts.Green),
		fmt.Sprintf("In battle: %d", counts.Blue),
		fmt.Sprintf("Enemy: %d", counts.Red),
	}
	for i, line := range lines {
		g.tr.Draw(screen, line, 8, 48+i*18, color.White)
	}
}

func modeName(m PrimaryMode) string {
	switch m {
	case ModeGame:
		return "GAME"
	case ModeStats:
		return "STATS"
	default:
		return "DEV"
	}
}

func toolName(t Tool) string {
	switch t {
	case ToolConnect:
		return "connect"
	case ToolDisconnect:
		return "disconnect"
	case ToolPaintColor:
		return "paint color"
	case ToolPaintMarker:
		return "paint marker"
	default:
		return "move"
	}
}

// Layout implements ebiten.Game.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.screenW = outsideWidth
	g.screenH = outsideHeight
	return outsideWidth, outsideHeight
}
