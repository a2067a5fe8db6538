// Package beep plays short audio cues for recording lifecycle events.
package beep

// Cue identifies one of the built-in sounds.
type Cue int

const (
	Start Cue = iota // recording started
	Stop             // recording stopped
	Error            // something went wrong
)

var disabled bool

func Disable() { disabled = true }

const (
	sampleRate = 44100

	// Start cue: high pitch, short
	startFreq   = 1200
	startVolume = 0.5
	startDecay  = 60

	// Stop cue: medium pitch, slightly longer
	stopFreq   = 900
	stopVolume = 0.5
	stopDecay  = 40

	// Error cue: low pitch double-beep
	errorFreq   = 350
	errorVolume = 0.6
	errorDecay  = 30
)

// Play sounds the cue asynchronously. Playback failures are silent; a
// missing sound device must never affect dictation.
func Play(c Cue) {
	if disabled {
		return
	}
	play(c)
}
