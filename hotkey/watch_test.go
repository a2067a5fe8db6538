package hotkey

import (
	"testing"
	"time"
)

func recv(t *testing.T, ch <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatalf("timeout waiting for %s", what)
	}
}

func expectQuiet(t *testing.T, ch <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
		t.Fatalf("unexpected %s", what)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestWatchForwardsPressRelease(t *testing.T) {
	fake := NewFake()
	w := NewWatch(fake)
	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	fake.SimKeydown()
	recv(t, w.Keydown(), "keydown")
	fake.SimKeyup()
	recv(t, w.Keyup(), "keyup")
}

func TestWatchSwallowsRepeatDowns(t *testing.T) {
	fake := NewFake()
	w := NewWatch(fake)
	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	fake.SimKeydown()
	recv(t, w.Keydown(), "keydown")
	fake.SimKeydown()
	expectQuiet(t, w.Keydown(), "second keydown")

	fake.SimKeyup()
	recv(t, w.Keyup(), "keyup")
}

func TestWatchSwallowsUnmatchedUp(t *testing.T) {
	fake := NewFake()
	w := NewWatch(fake)
	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	fake.SimKeyup()
	expectQuiet(t, w.Keyup(), "keyup without keydown")

	fake.SimKeydown()
	recv(t, w.Keydown(), "keydown")
}

func TestWatchSetTriggerKey(t *testing.T) {
	fake := NewFake()
	w := NewWatch(fake)
	w.SetTriggerKey(KeyRightAlt)
	if fake.LastKey != KeyRightAlt {
		t.Fatalf("backend key = %v, want %v", fake.LastKey, KeyRightAlt)
	}
}

func TestWatchStopUnregisters(t *testing.T) {
	fake := NewFake()
	w := NewWatch(fake)
	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !fake.Registered {
		t.Fatal("backend not registered after Start")
	}
	w.Stop()
	if fake.Registered {
		t.Fatal("backend still registered after Stop")
	}
}

func TestParseKey(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want Key
	}{
		{"caps_lock", KeyCapsLock},
		{"right_alt", KeyRightAlt},
		{"f1", KeyF1},
	} {
		got, err := ParseKey(tc.in)
		if err != nil {
			t.Errorf("ParseKey(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Errorf("ParseKey(%q) = %v, want %v", tc.in, got, tc.want)
		}
		if got.String() != tc.in {
			t.Errorf("%v.String() = %q, want %q", got, got.String(), tc.in)
		}
	}

	if _, err := ParseKey("escape"); err == nil {
		t.Error("ParseKey accepted unknown key")
	}
}
