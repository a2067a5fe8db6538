package main

import (
	"fmt"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// TUI message types
type RecordingStartMsg struct{}
type RecordingStopMsg struct{}
type RecordingTickMsg struct{ Duration float64 }
type AudioLevelMsg struct{ Level float64 }
type NoVoiceMsg struct{ Active bool }
type ProcessingMsg struct{ Kind string }
type ReviewMsg struct {
	Text string
	Mode string
}
type ResolvedMsg struct{}
type ModeLineMsg struct{ Text string }
type DeviceLineMsg struct{ Text string }
type StatusMsg struct{ Text string }
type ErrorMsg struct{ Text string }
type tickMsg time.Time

type tuiState int

const (
	tuiStateIdle tuiState = iota
	tuiStateRecording
	tuiStateProcessing
	tuiStateReviewing
)

const levelHistory = 40

type tuiModel struct {
	eng *engine

	state         tuiState
	frame         int
	duration      float64
	level         float64
	levels        []float64 // rolling window for the meter
	noVoice       bool
	processing    string // "transcribing" or "rewriting"
	reviewText    string
	reviewMode    string
	reviewCount   int
	modeLine      string
	deviceLine    string
	statusLine    string
	errLine       string
	width, height int
}

var (
	tuiProgram *tea.Program
	tuiMu      sync.Mutex
)

var meterGlyphs = []rune("▁▂▃▄▅▆▇█")

var (
	recStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	busyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	reviewStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	standbyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	meterRec     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	meterIdle    = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	faintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("239"))
	faintBold    = lipgloss.NewStyle().Foreground(lipgloss.Color("239")).Bold(true)
	textStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	errStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("246"))
)

func NewTUIProgram(eng *engine) *tea.Program {
	m := tuiModel{eng: eng, levels: make([]float64, levelHistory)}
	return tea.NewProgram(m, tea.WithAltScreen())
}

func tuiTick() tea.Cmd {
	return tea.Tick(60*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m tuiModel) Init() tea.Cmd {
	return tuiTick()
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			m.eng.CycleMode(1)
		case "shift+tab":
			m.eng.CycleMode(-1)
		case "enter":
			m.eng.Accept()
		case "esc":
			m.eng.Cancel()
		}

	case tickMsg:
		m.frame++
		if m.state == tuiStateRecording {
			m.levels = append(m.levels[1:], m.level)
		}
		return m, tuiTick()

	case RecordingStartMsg:
		m.state = tuiStateRecording
		m.duration = 0
		m.level = 0
		m.levels = make([]float64, levelHistory)
		m.noVoice = false
		m.errLine = ""

	case RecordingStopMsg:
		if m.state == tuiStateRecording {
			m.state = tuiStateIdle
		}
		m.level = 0
		m.noVoice = false

	case RecordingTickMsg:
		m.duration = msg.Duration

	case AudioLevelMsg:
		if m.state == tuiStateRecording {
			m.level = m.level*0.6 + msg.Level*0.4
		}

	case NoVoiceMsg:
		m.noVoice = msg.Active

	case ProcessingMsg:
		m.state = tuiStateProcessing
		m.processing = msg.Kind

	case ReviewMsg:
		m.state = tuiStateReviewing
		m.reviewText = msg.Text
		m.reviewMode = msg.Mode
		m.reviewCount++
		m.processing = ""

	case ResolvedMsg:
		m.state = tuiStateIdle
		m.processing = ""

	case ModeLineMsg:
		m.modeLine = msg.Text

	case DeviceLineMsg:
		m.deviceLine = msg.Text

	case StatusMsg:
		m.statusLine = msg.Text

	case ErrorMsg:
		m.errLine = msg.Text
		m.processing = ""
	}
	return m, nil
}

func (m tuiModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	const leftWidth = 45

	var infoLines []string

	switch m.state {
	case tuiStateRecording:
		infoLines = append(infoLines, recStyle.Render(fmt.Sprintf("● REC %.1fs", m.duration)))
		if m.noVoice {
			infoLines = append(infoLines, warnStyle.Render("  ⚠ no voice detected"))
		}
	case tuiStateProcessing:
		infoLines = append(infoLines, busyStyle.Render("◌ "+spinner(m.frame)+" "+m.processing))
	case tuiStateReviewing:
		status := reviewStyle.Render("✎ REVIEW")
		if m.processing != "" {
			status += busyStyle.Render("  " + spinner(m.frame) + " " + m.processing)
		}
		infoLines = append(infoLines, status)
	default:
		infoLines = append(infoLines, standbyStyle.Render("○ STANDBY"))
	}

	infoLines = append(infoLines, "", m.renderMeter(), "")

	if m.modeLine != "" {
		infoLines = append(infoLines, dimStyle.Render(m.modeLine))
	}
	if m.deviceLine != "" {
		infoLines = append(infoLines, dimStyle.Render(m.deviceLine))
	}
	if m.statusLine != "" {
		infoLines = append(infoLines, dimStyle.Render(m.statusLine))
	}
	if m.errLine != "" {
		infoLines = append(infoLines, errStyle.Render(m.errLine))
	}

	infoLines = append(infoLines, "")
	infoLines = append(infoLines,
		faintBold.Render("hold trigger")+faintStyle.Render(" to dictate"))
	infoLines = append(infoLines,
		faintBold.Render("tab")+faintStyle.Render(" mode  ")+
			faintBold.Render("enter")+faintStyle.Render(" keep  ")+
			faintBold.Render("esc")+faintStyle.Render(" discard"))
	infoLines = append(infoLines, faintStyle.Render("dictate "+version))

	rightWidth := m.width - leftWidth - 1
	if rightWidth < 20 {
		rightWidth = 20
	}
	wrapWidth := rightWidth - 2
	if wrapWidth < 10 {
		wrapWidth = 10
	}

	var review strings.Builder
	if m.reviewText != "" {
		title := titleStyle.Render(fmt.Sprintf("%s (#%d)", m.reviewMode, m.reviewCount))
		review.WriteString(title + "\n\n")
		for _, line := range wrapText(m.reviewText, wrapWidth) {
			review.WriteString(textStyle.Render(line) + "\n")
		}
		if m.state == tuiStateReviewing {
			review.WriteString("\n" + dimStyle.Render("tentative, enter to keep"))
		}
	} else {
		review.WriteString(dimStyle.Render("Nothing dictated yet"))
	}

	leftPanel := lipgloss.NewStyle().
		Width(leftWidth - 1).
		Height(m.height).
		PaddingLeft(1).
		Render(strings.Join(infoLines, "\n"))

	rightPanel := lipgloss.NewStyle().
		Width(rightWidth).
		Height(m.height).
		PaddingLeft(1).
		Render(review.String())

	return lipgloss.JoinHorizontal(lipgloss.Top, leftPanel, rightPanel)
}

// renderMeter draws the rolling amplitude window as one line of block
// glyphs, newest sample on the right.
func (m tuiModel) renderMeter() string {
	style := meterIdle
	if m.state == tuiStateRecording {
		style = meterRec
	}
	var b strings.Builder
	for _, v := range m.levels {
		idx := int(v * float64(len(meterGlyphs)))
		if idx >= len(meterGlyphs) {
			idx = len(meterGlyphs) - 1
		}
		if idx < 0 {
			idx = 0
		}
		b.WriteRune(meterGlyphs[idx])
	}
	return style.Render(b.String())
}

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

func spinner(frame int) string {
	return spinnerFrames[frame%len(spinnerFrames)]
}

func tuiSend(msg tea.Msg) {
	tuiMu.Lock()
	p := tuiProgram
	tuiMu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

// tuiSurface forwards engine events into the Bubble Tea program.
type tuiSurface struct{}

func (tuiSurface) RecordingStart() { tuiSend(RecordingStartMsg{}) }
func (tuiSurface) RecordingStop() { tuiSend(RecordingStopMsg{}) }
func (tuiSurface) RecordingTick(d float64) { tuiSend(RecordingTickMsg{Duration: d}) }
func (tuiSurface) AudioLevel(l float64) { tuiSend(AudioLevelMsg{Level: l}) }
func (tuiSurface) NoVoiceWarning() { tuiSend(NoVoiceMsg{Active: true}) }
func (tuiSurface) VoiceCleared() { tuiSend(NoVoiceMsg{Active: false}) }
func (tuiSurface) Processing(kind string) { tuiSend(ProcessingMsg{Kind: kind}) }
func (tuiSurface) Review(text, mode string) { tuiSend(ReviewMsg{Text: text, Mode: mode}) }
func (tuiSurface) Resolved() { tuiSend(ResolvedMsg{}) }
func (tuiSurface) ModeLine(text string) { tuiSend(ModeLineMsg{Text: text}) }
func (tuiSurface) StatusLine(text string) { tuiSend(StatusMsg{Text: text}) }
func (tuiSurface) ErrorLine(text string) { tuiSend(ErrorMsg{Text: text}) }

func wrapText(text string, width int) []string {
	if len(text) == 0 {
		return []string{""}
	}
	if width <= 0 {
		width = 1
	}

	runes := []rune(text)
	var lines []string
	for len(runes) > width {
		splitAt := width
		for i := width; i > 0; i-- {
			if runes[i] == ' ' {
				splitAt = i
				break
			}
		}
		lines = append(lines, string(runes[:splitAt]))
		runes = runes[splitAt:]
		for len(runes) > 0 && runes[0] == ' ' {
			runes = runes[1:]
		}
	}
	if len(runes) > 0 {
		lines = append(lines, string(runes))
	}
	return lines
}
