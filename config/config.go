// Package config persists the user's settings as a JSON snapshot. The
// engine never mutates a loaded Settings value; a settings save produces a
// fresh snapshot that callers re-inject wholesale.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"dictate/mode"
)

const (
	appDirName = "dictate"
	fileName   = "config.json"
)

type CustomMode struct {
	Name   string `json:"name"`
	Prompt string `json:"prompt"`
}

type Settings struct {
	Provider     string `json:"provider"` // "groq" or "openai"
	GroqAPIKey   string `json:"groq_api_key"`
	OpenAIAPIKey string `json:"openai_api_key"`

	TriggerKey string `json:"trigger_key"` // "caps_lock", "right_alt", or "f1"

	DefaultTargetLanguage string `json:"default_target_language"`

	CustomModes []CustomMode `json:"custom_modes"`

	RunAtStartup bool `json:"run_at_startup"`
}

func Default() Settings {
	return Settings{
		Provider:              "groq",
		TriggerKey:            "caps_lock",
		DefaultTargetLanguage: mode.DefaultTargetLanguage,
	}
}

// APIKey returns the key for the selected provider, falling back to the
// provider's environment variable when unset in the file.
func (s Settings) APIKey() string {
	switch s.Provider {
	case "groq":
		if s.GroqAPIKey != "" {
			return s.GroqAPIKey
		}
		return os.Getenv("GROQ_API_KEY")
	case "openai":
		if s.OpenAIAPIKey != "" {
			return s.OpenAIAPIKey
		}
		return os.Getenv("OPENAI_API_KEY")
	}
	return ""
}

// Modes converts the persisted custom modes, dropping malformed entries.
func (s Settings) Modes() []mode.Mode {
	var modes []mode.Mode
	for _, m := range s.CustomModes {
		if m.Name == "" || m.Prompt == "" {
			continue
		}
		modes = append(modes, mode.NewCustom(m.Name, m.Prompt))
	}
	return modes
}

func Path() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolving config dir: %w", err)
	}
	return filepath.Join(base, appDirName, fileName), nil
}

// Load reads the settings file, returning defaults if it does not exist.
func Load() (Settings, error) {
	path, err := Path()
	if err != nil {
		return Default(), err
	}
	return LoadFrom(path)
}

func LoadFrom(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return Default(), fmt.Errorf("reading config: %w", err)
	}

	s := Default()
	if err := json.Unmarshal(data, &s); err != nil {
		return Default(), fmt.Errorf("parsing config: %w", err)
	}
	if s.Provider != "groq" && s.Provider != "openai" {
		s.Provider = "groq"
	}
	if s.DefaultTargetLanguage == "" {
		s.DefaultTargetLanguage = mode.DefaultTargetLanguage
	}
	return s, nil
}

func (s Settings) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}
	return s.SaveTo(path)
}

func (s Settings) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}
