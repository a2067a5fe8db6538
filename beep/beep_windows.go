//go:build windows

package beep

import "github.com/gen2brain/beeep"

func Init() {}

func play(c Cue) {
	go func() {
		switch c {
		case Start:
			beeep.Beep(startFreq, 50)
		case Stop:
			beeep.Beep(stopFreq, 80)
		case Error:
			beeep.Beep(errorFreq, 80)
			beeep.Beep(errorFreq, 80)
		}
	}()
}
