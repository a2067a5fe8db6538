// Package log writes two files under an OS-specific directory: a
// structured diagnostics log and a plain transcript log. All functions are
// safe to call before Init; they silently no-op until logging is ready.
package log

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	diagLog        zerolog.Logger
	diagFile       *os.File
	transcriptFile *os.File
	logMu          sync.Mutex
	logReady       bool
	pid            int
	dir            string
)

func ResolveDir(flagPath string) (string, error) {
	// Priority 1: -logpath flag
	if flagPath != "" {
		if !filepath.IsAbs(flagPath) {
			wd, err := os.Getwd()
			if err != nil {
				return "", err
			}
			return filepath.Join(wd, flagPath), nil
		}
		return flagPath, nil
	}

	// Priority 2: DICTATE_LOG_PATH environment variable
	envPath := os.Getenv("DICTATE_LOG_PATH")
	if envPath != "" {
		if !filepath.IsAbs(envPath) {
			wd, err := os.Getwd()
			if err != nil {
				return "", err
			}
			return filepath.Join(wd, envPath), nil
		}
		return envPath, nil
	}

	// Priority 3: Default OS-specific location
	return getDefaultDir()
}

func SetDir(d string) {
	dir = d
}

func Dir() string {
	return dir
}

func EnsureDir() error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	return nil
}

func Init() error {
	logMu.Lock()
	defer logMu.Unlock()

	if err := EnsureDir(); err != nil {
		return err
	}

	pid = os.Getpid()

	var err error

	diagPath := filepath.Join(dir, "diagnostics_log.txt")
	diagFile, err = os.OpenFile(diagPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}

	transcriptPath := filepath.Join(dir, "transcript_log.txt")
	transcriptFile, err = os.OpenFile(transcriptPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		diagFile.Close()
		return err
	}

	consoleWriter := zerolog.ConsoleWriter{
		Out:        diagFile,
		TimeFormat: "2006-01-02 15:04:05",
		NoColor:    true,
	}
	diagLog = zerolog.New(consoleWriter).With().Timestamp().Int("pid", pid).Logger()

	logReady = true
	return nil
}

func Close() {
	logMu.Lock()
	defer logMu.Unlock()
	if diagFile != nil {
		diagFile.Close()
		diagFile = nil
	}
	if transcriptFile != nil {
		transcriptFile.Close()
		transcriptFile = nil
	}
	logReady = false
}

func Info(msg string) {
	if logReady {
		diagLog.Info().Msg(msg)
	}
}

func Error(msg string) {
	if logReady {
		diagLog.Error().Msg(msg)
	}
}

func Errorf(format string, args ...any) {
	if logReady {
		diagLog.Error().Msg(fmt.Sprintf(format, args...))
	}
}

func Warn(msg string) {
	if logReady {
		diagLog.Warn().Msg(msg)
	}
}

func Warnf(format string, args ...any) {
	if logReady {
		diagLog.Warn().Msg(fmt.Sprintf(format, args...))
	}
}

// StateChange records an orchestrator transition.
func StateChange(from, to, reason string) {
	if logReady {
		diagLog.Info().
			Str("from", from).
			Str("to", to).
			Str("reason", reason).
			Msg("state_change")
	}
}

// Job records work-queue lifecycle events: "submit", "done", "failed",
// "stale_drop".
func Job(event, kind string, generation uint64) {
	if logReady {
		diagLog.Info().
			Str("kind", kind).
			Uint64("generation", generation).
			Msg("job_" + event)
	}
}

// Injection records a text injection into the focused application.
func Injection(utteranceID string, chars int, tentative bool) {
	if logReady {
		diagLog.Info().
			Str("utterance", utteranceID).
			Int("chars", chars).
			Bool("tentative", tentative).
			Msg("injection")
	}
}

// Transcription records the outcome of a transcription job.
func Transcription(utteranceID string, audioSeconds float64, chars int, totalMs float64) {
	if logReady {
		diagLog.Info().
			Str("utterance", utteranceID).
			Float64("audio_s", audioSeconds).
			Int("chars", chars).
			Float64("total_ms", totalMs).
			Msg("transcription")
	}
}

func TranscriptionText(text string) {
	if !logReady {
		return
	}
	logMu.Lock()
	defer logMu.Unlock()
	line := fmt.Sprintf("%s\t[%d]\t%s\n", time.Now().Format("2006-01-02 15:04:05"), pid, text)
	transcriptFile.WriteString(line)
}

func SessionStart(provider, format, trigger string) {
	if logReady {
		diagLog.Info().
			Str("provider", provider).
			Str("format", format).
			Str("trigger", trigger).
			Msg("session_start")
	}
}

func SessionEnd(utterances int) {
	if logReady {
		diagLog.Info().
			Int("utterances", utterances).
			Msg("session_end")
	}
}
