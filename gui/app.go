//go:build gui

package gui

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// App is a frameless overlay pinned above the dock. It stays hidden
// until recording starts and shows amplitude, duration and review text.
type App struct {
	fyneApp fyne.App
	window  fyne.Window
	pill    *PillWidget
	onReady func()
	posX    int
	posY    int
}

func NewApp(onReady func()) *App {
	return &App{onReady: onReady}
}

func Run(a *App) error {
	a.fyneApp = app.NewWithID("io.dictate.gui")
	a.fyneApp.Settings().SetTheme(&darkTheme{})

	if desk, ok := a.fyneApp.(desktop.App); ok {
		icon := fyne.NewStaticResource("tray.png", renderTrayIcon())
		menu := fyne.NewMenu("dictate",
			fyne.NewMenuItem("Quit", func() {
				a.fyneApp.Quit()
			}),
		)
		desk.SetSystemTrayMenu(menu)
		desk.SetSystemTrayIcon(icon)
	}

	var screenW, screenH int
	monitor := glfw.GetPrimaryMonitor()
	if monitor != nil {
		_, _, screenW, screenH = monitor.GetWorkarea()
	} else {
		screenW, screenH = 1920, 1080 // fallback
	}

	if drv, ok := a.fyneApp.Driver().(desktop.Driver); ok {
		a.window = drv.CreateSplashWindow()
	} else {
		a.window = a.fyneApp.NewWindow("dictate")
	}

	a.pill = NewPillWidget()

	a.window.SetContent(a.pill)
	a.window.SetFixedSize(true)
	a.window.SetPadded(false)

	pillSize := a.pill.MinSize()
	a.window.Resize(pillSize)

	// Bottom-center, with margin for the dock
	a.posX = (screenW - int(pillSize.Width)) / 2
	a.posY = screenH - int(pillSize.Height) - 20

	go a.onReady()

	// Event loop runs with the window hidden until RecordingStart
	a.fyneApp.Run()
	return nil
}

func (a *App) Quit() {
	if a.fyneApp != nil {
		a.fyneApp.Quit()
	}
}

func (a *App) show() {
	fyne.Do(func() {
		if a.window == nil {
			return
		}

		if glfwWin := glfw.GetCurrentContext(); glfwWin != nil {
			glfwWin.SetPos(a.posX, a.posY)
			glfwWin.SetAttrib(glfw.FocusOnShow, glfw.False)
			glfwWin.SetAttrib(glfw.Floating, glfw.True)
			glfwWin.Show()
		} else {
			a.window.Show()
		}
	})
}

func (a *App) hide() {
	fyne.Do(func() {
		if a.window != nil {
			a.window.Hide()
		}
	})
}

// Engine surface. The Set* methods on the pill take their own lock, so
// no fyne.Do is needed here.

func (a *App) RecordingStart() {
	a.pill.Reset()
	a.pill.SetPhase(phaseRecording)
	a.show()
}

func (a *App) RecordingStop() {
	a.pill.SetPhase(phaseProcessing)
}

func (a *App) RecordingTick(duration float64) {
	a.pill.SetDuration(duration)
}

func (a *App) AudioLevel(level float64) {
	a.pill.SetLevel(level)
}

func (a *App) NoVoiceWarning() {
	a.pill.SetWarning(true)
}

func (a *App) VoiceCleared() {
	a.pill.SetWarning(false)
}

func (a *App) Processing(kind string) {
	a.pill.SetStatus(kind + "…")
	a.pill.SetPhase(phaseProcessing)
}

func (a *App) Review(text, modeName string) {
	a.pill.SetStatus(fmt.Sprintf("[%s] %s", modeName, text))
	a.pill.SetPhase(phaseReviewing)
}

func (a *App) Resolved() {
	a.pill.SetWarning(false)
	a.hide()
}

func (a *App) ModeLine(text string) {
	a.pill.SetStatus(text)
}

func (a *App) StatusLine(text string) {
	a.pill.SetStatus(text)
}

func (a *App) ErrorLine(text string) {
	a.pill.SetStatus(text)
}
