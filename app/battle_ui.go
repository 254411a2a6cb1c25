package app

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"oilmap/api"
)

const (
	promptWidth     = 420
	promptRowHeight = 32
	promptPadding   = 16
	buttonWidth     = 70
	buttonHeight    = 22
)

var (
	promptBackground = color.RGBA{30, 30, 38, 245}
	promptBorder     = color.RGBA{70, 130, 255, 255}
	buttonIdle       = color.RGBA{55, 55, 66, 255}
	buttonWon        = color.RGBA{0x4C, 0xAF, 0x50, 255}
	buttonLost       = color.RGBA{0x66, 0x66, 0x66, 255}
)

type rect struct {
	x, y, w, h int
}

func (r rect) contains(px, py int) bool {
	return px >= r.x && px < r.x+r.w && py >= r.y && py < r.y+r.h
}

func (g *Game) promptOrigin(rows int) (int, int, int) {
	height := promptPadding*2 + rows*promptRowHeight + buttonHeight + promptPadding
	x := (g.screenW - promptWidth) / 2
	y := (g.screenH - height) / 2
	return x, y, height
}

func (g *Game) battleRowButtons(x, y, row int) (won, lost rect) {
	rowY := y + promptPadding + row*promptRowHeight
	won = rect{x + promptWidth - buttonWidth*2 - promptPadding*2, rowY, buttonWidth, buttonHeight}
	lost = rect{x + promptWidth - buttonWidth - promptPadding, rowY, buttonWidth, buttonHeight}
	return won, lost
}

func (g *Game) updateBattlePrompt() {
	if !inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
			g.session.CancelBattles()
		}
		return
	}
	mx, my := ebiten.CursorPosition()
	battles := g.session.PendingBattles()
	x, y, height := g.promptOrigin(len(battles))

	for row, bp := range battles {
		won, lost := g.battleRowButtons(x, y, row)
		if won.contains(mx, my) {
			g.session.SetBattleResult(bp.Index, api.BattleWon)
			return
		}
		if lost.contains(mx, my) {
			g.session.SetBattleResult(bp.Index, api.BattleLost)
			return
		}
	}

	confirm := rect{x + promptPadding, y + height - buttonHeight - promptPadding, buttonWidth + 30, buttonHeight}
	cancel := rect{x + promptWidth - buttonWidth - 30 - promptPadding, y + height - buttonHeight - promptPadding, buttonWidth + 30, buttonHeight}
	if confirm.contains(mx, my) {
		g.session.ConfirmBattles()
	}
	if cancel.contains(mx, my) {
		g.session.CancelBattles()
	}
}

func (g *Game) drawBattlePrompt(screen *ebiten.Image) {
	battles := g.session.PendingBattles()
	x, y, height := g.promptOrigin(len(battles))

	vector.DrawFilledRect(screen, float32(x), float32(y), promptWidth, float32(height), promptBackground, false)
	vector.StrokeRect(screen, float32(x), float32(y), promptWidth, float32(height), 2, promptBorder, false)
	g.tr.Draw(screen, "Resolve battles", x+promptPadding, y+promptPadding-2, color.White)

	for row, bp := range battles {
		won, lost := g.battleRowButtons(x, y, row)
		label := fmt.Sprintf("%s  (%d oil)", bp.Name, bp.Oil)
		g.tr.Draw(screen, label, x+promptPadding, won.y+15, color.White)

		result := g.session.BattleResult(bp.Index)
		g.drawPromptButton(screen, won, "Won", result == api.BattleWon, buttonWon)
		g.drawPromptButton(screen, lost, "Lost", result == api.BattleLost, buttonLost)
	}

	confirm := rect{x + promptPadding, y + height - buttonHeight - promptPadding, buttonWidth + 30, buttonHeight}
	cancel := rect{x + promptWidth - buttonWidth - 30 - promptPadding, y + height - buttonHeight - promptPadding, buttonWidth + 30, buttonHeight}
	g.drawPromptButton(screen, confirm, "Confirm", false, buttonIdle)
	g.drawPromptButton(screen, cancel, "Cancel", false, buttonIdle)
}

func (g *Game) drawPromptButton(screen *ebiten.Image, r rect, label string, selected bool, selectedColor color.RGBA) {
	fill := buttonIdle
	if selected {
		fill = selectedColor
	}
	vector.DrawFilledRect(screen, float32(r.x), float32(r.y), float32(r.w), float32(r.h), fill, false)
	vector.StrokeRect(screen, float32(r.x), float32(r.y), float32(r.w), float32(r.h), 1, promptBorder, false)
	g.tr.DrawCentered(screen, label, r.x+r.w/2, r.y+r.h/2+4, color.White)
}

func (g *Game) updateMapList() {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.mapListOpen = false
		return
	}
	if !inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		return
	}
	mx, my := ebiten.CursorPosition()
	x, y, _ := g.promptOrigin(len(g.mapList))
	for row, m := range g.mapList {
		r := rect{x + promptPadding, y + promptPadding + row*promptRowHeight, promptWidth - promptPadding*2, promptRowHeight - 4}
		if r.contains(mx, my) {
			g.loadMap(m.ID)
			return
		}
	}
}

func (g *Game) drawMapList(screen *ebiten.Image) {
	x, y, height := g.promptOrigin(len(g.mapList))

	vector.DrawFilledRect(screen, float32(x), float32(y), promptWidth, float32(height), promptBackground, false)
	vector.StrokeRect(screen, float32(x), float32(y), promptWidth, float32(height), 2, promptBorder, false)
	g.tr.Draw(screen, "Load map (Esc to close)", x+promptPadding, y+promptPadding-2, color.White)

	for row, m := range g.mapList {
		rowY := y + promptPadding + row*promptRowHeight
		label := fmt.Sprintf("%s  %s", m.Name, m.UpdatedAt.Format("2006-01-02 15:04"))
		g.tr.Draw(screen, label, x+promptPadding, rowY+15, color.White)
	}
	if len(g.mapList) == 0 {
		g.tr.Draw(screen, "No saved maps", x+promptPadding, y+promptPadding+20, color.White)
	}
}
