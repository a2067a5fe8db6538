package main

import (
	"testing"
	"unicode/utf8"
)

func TestWrapTextBreaksOnSpaces(t *testing.T) {
	lines := wrapText("hello world again", 11)
	want := []string{"hello world", "again"}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines %q, want %d", len(lines), lines, len(want))
	}
	for i, l := range lines {
		if l != want[i] {
			t.Errorf("line %d = %q, want %q", i, l, want[i])
		}
	}
}

func TestWrapTextMultibyte(t *testing.T) {
	lines := wrapText("Bonjour le monde, ceci est du texte accentué éèê", 10)
	for i, l := range lines {
		if !utf8.ValidString(l) {
			t.Fatalf("line %d is not valid UTF-8: %q", i, l)
		}
		if n := utf8.RuneCountInString(l); n > 10 {
			t.Errorf("line %d is %d runes wide: %q", i, n, l)
		}
	}
}

func TestWrapTextLongWord(t *testing.T) {
	lines := wrapText("日本語のテキストは空白なしで折り返す", 6)
	for i, l := range lines {
		if n := utf8.RuneCountInString(l); n > 6 {
			t.Errorf("line %d is %d runes wide: %q", i, n, l)
		}
		if !utf8.ValidString(l) {
			t.Fatalf("line %d is not valid UTF-8: %q", i, l)
		}
	}
	if len(lines) != 3 {
		t.Errorf("got %d lines %q, want 3", len(lines), lines)
	}
}
