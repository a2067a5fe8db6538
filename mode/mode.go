// Package mode defines the text-processing modes a transcription can be
// rewritten with: a fixed set of built-in modes plus user-defined
// name/prompt pairs.
package mode

import "strings"

type Kind int

const (
	Normal Kind = iota // pass-through, no rewrite call
	Formal
	Translate
	Structure
	Summarize
	Custom
)

// Mode is a tagged value: built-in modes carry only Kind, custom modes
// carry a user-supplied name and system prompt.
type Mode struct {
	Kind   Kind
	Name   string
	Prompt string
}

func Builtin(k Kind) Mode {
	return Mode{Kind: k}
}

func NewCustom(name, prompt string) Mode {
	return Mode{Kind: Custom, Name: name, Prompt: prompt}
}

// Equal compares built-in modes by kind and custom modes by name.
func (m Mode) Equal(o Mode) bool {
	if m.Kind != o.Kind {
		return false
	}
	if m.Kind == Custom {
		return m.Name == o.Name
	}
	return true
}

// PassThrough reports whether selecting this mode must echo the original
// text without a rewrite call.
func (m Mode) PassThrough() bool { return m.Kind == Normal }

func (m Mode) DisplayName() string {
	switch m.Kind {
	case Normal:
		return "Normal"
	case Formal:
		return "Formal"
	case Translate:
		return "Translate"
	case Structure:
		return "Structure"
	case Summarize:
		return "Summarize"
	default:
		return m.Name
	}
}

const (
	formalPrompt = "You are a professional writing assistant. " +
		"Rewrite the following text to be more professional, clear, and polished. " +
		"Maintain the original meaning but improve clarity and tone. " +
		"Only output the rewritten text, nothing else."

	translatePrompt = "You are a professional translator. " +
		"Translate the following text to {target_language}. " +
		"Maintain the original meaning, tone, and style as much as possible. " +
		"Only output the translated text, nothing else."

	structurePrompt = "You are a professional editor. " +
		"Restructure the following text into clear, concise bullet points. " +
		"Organize the information logically and make it easy to scan. " +
		"Use proper hierarchy if needed. Only output the structured text, nothing else."

	summarizePrompt = "You are a professional summarizer. " +
		"Condense the following text to its key points. " +
		"Be concise but preserve all important information. " +
		"Only output the summary, nothing else."
)

// SystemPrompt returns the rewrite system prompt for the mode, with the
// target language substituted for the translation mode. Empty for Normal.
func (m Mode) SystemPrompt(targetLanguage string) string {
	switch m.Kind {
	case Formal:
		return formalPrompt
	case Translate:
		return strings.ReplaceAll(translatePrompt, "{target_language}", targetLanguage)
	case Structure:
		return structurePrompt
	case Summarize:
		return summarizePrompt
	case Custom:
		return m.Prompt
	default:
		return ""
	}
}

// All returns all modes in cycle order: built-ins first, then custom modes
// in the order they were defined.
func All(custom []Mode) []Mode {
	modes := []Mode{
		Builtin(Normal),
		Builtin(Formal),
		Builtin(Translate),
		Builtin(Structure),
		Builtin(Summarize),
	}
	return append(modes, custom...)
}

func indexOf(modes []Mode, m Mode) int {
	for i, c := range modes {
		if c.Equal(m) {
			return i
		}
	}
	return -1
}

// Next returns the mode after current in cycle order, wrapping around.
func Next(modes []Mode, current Mode) Mode {
	if len(modes) == 0 {
		return current
	}
	i := indexOf(modes, current)
	return modes[(i+1)%len(modes)]
}

// Prev returns the mode before current in cycle order, wrapping around.
func Prev(modes []Mode, current Mode) Mode {
	if len(modes) == 0 {
		return current
	}
	i := indexOf(modes, current)
	if i < 0 {
		i = 0
	}
	return modes[(i-1+len(modes))%len(modes)]
}

const DefaultTargetLanguage = "English"

// Languages offered for the translation mode.
var Languages = []string{
	"English",
	"Spanish",
	"French",
	"German",
	"Italian",
	"Portuguese",
	"Dutch",
	"Russian",
	"Chinese",
	"Japanese",
	"Korean",
	"Arabic",
}
