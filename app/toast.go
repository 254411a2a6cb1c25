package app

import (
	"fmt"
	"image/color"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Toast is a single transient notification.
type Toast struct {
	ID          string
	Text        string
	CreatedAt   time.Time
	AutoCloseAt time.Time
	Background  color.RGBA
	Border      color.RGBA
}

// ToastBuilder assembles a toast fluently.
type ToastBuilder struct {
	toast *Toast
}

// ToastManager owns the active toasts, newest at the bottom right.
// Notifications arrive from background save goroutines as well as the
// game loop, so all toast list access goes through the mutex.
type ToastManager struct {
	mu          sync.Mutex
	toasts      []*Toast
	nextID      int
	maxToasts   int
	screenW     int
	screenH     int
	toastWidth  int
	toastHeight int
	margin      int
}

var globalToastManager *ToastManager

// InitToastManager creates the process-wide toast manager.
func InitToastManager() {
	globalToastManager = &ToastManager{
		maxToasts:   5,
		toastWidth:  320,
		toastHeight: 44,
		margin:      12,
	}
}

// Toasts returns the global manager, nil before InitToastManager.
func Toasts() *ToastManager {
	return globalToastManager
}

// NewToast starts building a notification.
func NewToast() *ToastBuilder {
	return &ToastBuilder{toast: &Toast{
		CreatedAt:  time.Now(),
		Background: color.RGBA{40, 40, 50, 240},
		Border:     color.RGBA{70, 130, 255, 255},
	}}
}

// Text sets the toast message.
func (tb *ToastBuilder) Text(text string) *ToastBuilder {
	tb.toast.Text = text
	return tb
}

// Error switches the toast to error styling.
func (tb *ToastBuilder) Error() *ToastBuilder {
	tb.toast.Border = color.RGBA{220, 60, 60, 255}
	tb.toast.Background = color.RGBA{60, 30, 30, 240}
	return tb
}

// AutoClose dismisses the toast after the duration.
func (tb *ToastBuilder) AutoClose(d time.Duration) *ToastBuilder {
	tb.toast.AutoCloseAt = time.Now().Add(d)
	return tb
}

// Show hands the toast to the global manager.
func (tb *ToastBuilder) Show() {
	if globalToastManager == nil {
		return
	}
	globalToastManager.add(tb.toast)
}

// Notify is the session notification sink: a 3-second toast, error
// styled when isErr.
func Notify(msg string, isErr bool) {
	tb := NewToast().Text(msg).AutoClose(3 * time.Second)
	if isErr {
		tb.Error()
	}
	tb.Show()
}

func (tm *ToastManager) add(t *Toast) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	tm.nextID++
	t.ID = fmt.Sprintf("toast_%d", tm.nextID)
	if t.AutoCloseAt.IsZero() {
		t.AutoCloseAt = t.CreatedAt.Add(3 * time.Second)
	}
	tm.toasts = append(tm.toasts, t)
	if len(tm.toasts) > tm.maxToasts {
		tm.toasts = tm.toasts[len(tm.toasts)-tm.maxToasts:]
	}
}

// Update drops expired toasts.
func (tm *ToastManager) Update(screenW, screenH int) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	tm.screenW = screenW
	tm.screenH = screenH
	now := time.Now()
	kept := tm.toasts[:0]
	for _, t := range tm.toasts {
		if now.Before(t.AutoCloseAt) {
			kept = append(kept, t)
		}
	}
	tm.toasts = kept
}

// Draw renders the toast stack bottom-up in the lower right corner.
func (tm *ToastManager) Draw(screen *ebiten.Image, tr *TextRenderer) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	x := tm.screenW - tm.toastWidth - tm.margin
	y := tm.screenH - tm.margin
	for i := len(tm.toasts) - 1; i >= 0; i-- {
		t := tm.toasts[i]
		y -= tm.toastHeight + tm.margin/2

		vector.DrawFilledRect(screen, float32(x), float32(y),
			float32(tm.toastWidth), float32(tm.toastHeight), t.Background, false)
		vector.StrokeRect(screen, float32(x), float32(y),
			float32(tm.toastWidth), float32(tm.toastHeight), 2, t.Border, false)

		tr.Draw(screen, t.Text, x+10, y+tm.toastHeight/2+4, color.White)
	}
}
