//go:build gui

package gui

import (
	"fmt"
	"image/color"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
)

type phase int

const (
	phaseRecording phase = iota
	phaseProcessing
	phaseReviewing
)

const (
	barCount   = 24
	barWidth   = float32(4)
	barGap     = float32(2)
	pillWidth  = float32(300)
	pillHeight = float32(48)
)

var (
	colorBar     = color.RGBA{255, 95, 80, 255}
	colorBarWarn = color.RGBA{255, 204, 0, 255}
	colorBarDim  = color.RGBA{90, 90, 90, 255}
	colorText    = color.RGBA{220, 220, 220, 255}
)

// PillWidget draws a rolling amplitude strip with a status line under it.
type PillWidget struct {
	widget.BaseWidget

	mu       sync.Mutex
	levels   [barCount]float64
	duration float64
	status   string
	warning  bool
	ph       phase

	stopCh chan struct{}
}

func NewPillWidget() *PillWidget {
	p := &PillWidget{stopCh: make(chan struct{})}
	p.ExtendBaseWidget(p)
	go p.animate()
	return p
}

func (p *PillWidget) animate() {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			fyne.Do(p.Refresh)
		}
	}
}

func (p *PillWidget) Reset() {
	p.mu.Lock()
	p.levels = [barCount]float64{}
	p.duration = 0
	p.status = ""
	p.warning = false
	p.mu.Unlock()
}

func (p *PillWidget) SetLevel(level float64) {
	p.mu.Lock()
	copy(p.levels[:], p.levels[1:])
	p.levels[barCount-1] = level
	p.mu.Unlock()
}

func (p *PillWidget) SetDuration(d float64) {
	p.mu.Lock()
	p.duration = d
	p.mu.Unlock()
}

func (p *PillWidget) SetStatus(s string) {
	p.mu.Lock()
	p.status = s
	p.mu.Unlock()
}

func (p *PillWidget) SetWarning(on bool) {
	p.mu.Lock()
	p.warning = on
	p.mu.Unlock()
}

func (p *PillWidget) SetPhase(ph phase) {
	p.mu.Lock()
	p.ph = ph
	p.mu.Unlock()
}

func (p *PillWidget) MinSize() fyne.Size {
	return fyne.NewSize(pillWidth, pillHeight)
}

func (p *PillWidget) CreateRenderer() fyne.WidgetRenderer {
	r := &pillRenderer{pill: p}
	r.background = canvas.NewRectangle(color.RGBA{24, 24, 24, 240})
	r.background.CornerRadius = pillHeight / 2
	for i := range r.bars {
		r.bars[i] = canvas.NewRectangle(colorBarDim)
	}
	r.label = canvas.NewText("", colorText)
	r.label.TextSize = 12
	return r
}

type pillRenderer struct {
	pill       *PillWidget
	background *canvas.Rectangle
	bars       [barCount]*canvas.Rectangle
	label      *canvas.Text
}

func (r *pillRenderer) Layout(size fyne.Size) {
	r.background.Resize(size)
	r.background.Move(fyne.NewPos(0, 0))

	stripWidth := barCount*(barWidth+barGap) - barGap
	x0 := (size.Width - stripWidth) / 2
	for i, bar := range r.bars {
		bar.Move(fyne.NewPos(x0+float32(i)*(barWidth+barGap), 0))
	}

	r.label.Move(fyne.NewPos(12, size.Height-18))
}

func (r *pillRenderer) MinSize() fyne.Size {
	return r.pill.MinSize()
}

func (r *pillRenderer) Refresh() {
	r.pill.mu.Lock()
	levels := r.pill.levels
	duration := r.pill.duration
	status := r.pill.status
	warning := r.pill.warning
	ph := r.pill.ph
	r.pill.mu.Unlock()

	barColor := colorBar
	if warning {
		barColor = colorBarWarn
	}
	if ph != phaseRecording {
		barColor = colorBarDim
	}

	maxBar := pillHeight - 22
	for i, bar := range r.bars {
		h := float32(levels[i]) * maxBar
		if h < 2 {
			h = 2
		}
		bar.FillColor = barColor
		bar.Resize(fyne.NewSize(barWidth, h))
		pos := bar.Position()
		bar.Move(fyne.NewPos(pos.X, (maxBar-h)/2+4))
		bar.Refresh()
	}

	switch ph {
	case phaseRecording:
		r.label.Text = fmt.Sprintf("%.1fs", duration)
		if warning {
			r.label.Text += "  no voice detected"
		}
	default:
		r.label.Text = truncate(status, 44)
	}
	r.label.Refresh()
	r.background.Refresh()
}

func (r *pillRenderer) Objects() []fyne.CanvasObject {
	objects := make([]fyne.CanvasObject, 0, barCount+2)
	objects = append(objects, r.background)
	for _, bar := range r.bars {
		objects = append(objects, bar)
	}
	return append(objects, r.label)
}

func (r *pillRenderer) Destroy() {
	close(r.pill.stopCh)
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
