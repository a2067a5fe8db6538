package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromMissingFileReturnsDefaults(t *testing.T) {
	s, err := LoadFrom(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatal(err)
	}
	if s.Provider != "groq" {
		t.Errorf("Provider = %q, want groq", s.Provider)
	}
	if s.TriggerKey != "caps_lock" {
		t.Errorf("TriggerKey = %q, want caps_lock", s.TriggerKey)
	}
	if s.DefaultTargetLanguage != "English" {
		t.Errorf("DefaultTargetLanguage = %q, want English", s.DefaultTargetLanguage)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	s := Default()
	s.Provider = "openai"
	s.TriggerKey = "f1"
	s.DefaultTargetLanguage = "French"
	s.CustomModes = []CustomMode{{Name: "Pirate", Prompt: "talk like a pirate"}}

	if err := s.SaveTo(path); err != nil {
		t.Fatal(err)
	}

	got, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Provider != "openai" || got.TriggerKey != "f1" || got.DefaultTargetLanguage != "French" {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if len(got.CustomModes) != 1 || got.CustomModes[0].Name != "Pirate" {
		t.Errorf("custom modes lost: %+v", got.CustomModes)
	}
}

func TestLoadFromCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := LoadFrom(path)
	if err == nil {
		t.Error("expected parse error")
	}
	if s.Provider != "groq" {
		t.Error("corrupt config should fall back to defaults")
	}
}

func TestLoadFromUnknownProviderFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"provider":"bogus"}`), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if s.Provider != "groq" {
		t.Errorf("Provider = %q, want groq fallback", s.Provider)
	}
}

func TestAPIKeyEnvFallback(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "env-key")

	s := Default()
	if got := s.APIKey(); got != "env-key" {
		t.Errorf("APIKey = %q, want env-key", got)
	}

	s.GroqAPIKey = "file-key"
	if got := s.APIKey(); got != "file-key" {
		t.Errorf("APIKey = %q, want file-key (file wins over env)", got)
	}
}

func TestModesSkipsMalformed(t *testing.T) {
	s := Default()
	s.CustomModes = []CustomMode{
		{Name: "Pirate", Prompt: "arr"},
		{Name: "", Prompt: "no name"},
		{Name: "no prompt", Prompt: ""},
	}

	modes := s.Modes()
	if len(modes) != 1 || modes[0].Name != "Pirate" {
		t.Errorf("Modes() = %+v, want only Pirate", modes)
	}
}
