package main

// Surface abstracts the display layer so the Bubble Tea TUI and the
// Fyne overlay can receive the same engine events.
type Surface interface {
	RecordingStart()
	RecordingStop()
	RecordingTick(duration float64)
	AudioLevel(level float64)
	NoVoiceWarning()
	VoiceCleared()
	Processing(kind string)
	Review(text, modeName string)
	Resolved()
	ModeLine(text string)
	StatusLine(text string)
	ErrorLine(text string)
}

type nopSurface struct{}

func (nopSurface) RecordingStart() {}
func (nopSurface) RecordingStop() {}
func (nopSurface) RecordingTick(float64) {}
func (nopSurface) AudioLevel(float64) {}
func (nopSurface) NoVoiceWarning() {}
func (nopSurface) VoiceCleared() {}
func (nopSurface) Processing(string) {}
func (nopSurface) Review(string, string) {}
func (nopSurface) Resolved() {}
func (nopSurface) ModeLine(string) {}
func (nopSurface) StatusLine(string) {}
func (nopSurface) ErrorLine(string) {}
