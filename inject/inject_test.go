package inject

import (
	"reflect"
	"testing"
	"time"
)

func newTestInjector() (*Injector, *FakeClipboard, *FakeKeystroker) {
	clip := NewFakeClipboard()
	keys := NewFakeKeystroker()
	in := New(clip, keys)
	in.SetRestoreGrace(time.Millisecond)
	return in, clip, keys
}

func TestInjectSelected(t *testing.T) {
	in, _, keys := newTestInjector()

	if !in.InjectSelected("hello") {
		t.Fatal("InjectSelected failed")
	}

	want := []string{"paste", "selectback:5"}
	if got := keys.Ops(); !reflect.DeepEqual(got, want) {
		t.Fatalf("ops = %v, want %v", got, want)
	}

	st := in.State()
	if st.Text != "hello" || st.CharCount != 5 || !st.Tentative {
		t.Fatalf("state = %+v", st)
	}
}

func TestInjectSelectedCountsRunes(t *testing.T) {
	in, _, keys := newTestInjector()

	in.InjectSelected("héllo wörld")

	want := []string{"paste", "selectback:11"}
	if got := keys.Ops(); !reflect.DeepEqual(got, want) {
		t.Fatalf("ops = %v, want %v", got, want)
	}
}

func TestReplaceSelected(t *testing.T) {
	in, _, keys := newTestInjector()

	in.InjectSelected("hello")
	if !in.ReplaceSelected("goodbye") {
		t.Fatal("ReplaceSelected failed")
	}

	want := []string{"paste", "selectback:5", "paste", "selectback:7"}
	if got := keys.Ops(); !reflect.DeepEqual(got, want) {
		t.Fatalf("ops = %v, want %v", got, want)
	}

	st := in.State()
	if st.Text != "goodbye" || !st.Tentative {
		t.Fatalf("state = %+v", st)
	}
}

func TestReplaceRequiresTentative(t *testing.T) {
	in, _, keys := newTestInjector()

	if in.ReplaceSelected("goodbye") {
		t.Fatal("ReplaceSelected succeeded with nothing tentative")
	}
	if len(keys.Ops()) != 0 {
		t.Fatalf("keystrokes sent: %v", keys.Ops())
	}

	in.Inject("final")
	if in.ReplaceSelected("goodbye") {
		t.Fatal("ReplaceSelected succeeded over final text")
	}
}

func TestAccept(t *testing.T) {
	in, _, keys := newTestInjector()

	in.InjectSelected("hello")
	if !in.Accept() {
		t.Fatal("Accept failed")
	}
	if in.Tentative() {
		t.Fatal("still tentative after Accept")
	}
	if st := in.State(); st.Text != "hello" {
		t.Fatalf("text lost on Accept: %+v", st)
	}

	ops := keys.Ops()
	if ops[len(ops)-1] != "right" {
		t.Fatalf("last op = %s, want right", ops[len(ops)-1])
	}

	if in.Accept() {
		t.Fatal("second Accept should fail")
	}
}

func TestCancel(t *testing.T) {
	in, _, keys := newTestInjector()

	in.InjectSelected("hello")
	if !in.Cancel() {
		t.Fatal("Cancel failed")
	}
	if st := in.State(); st.Text != "" || st.Tentative {
		t.Fatalf("state not cleared: %+v", st)
	}

	ops := keys.Ops()
	if ops[len(ops)-1] != "delete" {
		t.Fatalf("last op = %s, want delete", ops[len(ops)-1])
	}

	if in.Cancel() {
		t.Fatal("second Cancel should fail")
	}
}

func TestClipboardRestored(t *testing.T) {
	in, clip, _ := newTestInjector()
	clip.Write("previous contents")

	in.Inject("hello")

	deadline := time.Now().Add(time.Second)
	for clip.Content() != "previous contents" {
		if time.Now().After(deadline) {
			t.Fatalf("clipboard not restored, content = %q", clip.Content())
		}
		time.Sleep(5 * time.Millisecond)
	}

	writes := clip.Writes()
	if writes[len(writes)-2] != "hello" {
		t.Fatalf("injected text never hit clipboard: %v", writes)
	}
}

func TestInjectEmptyText(t *testing.T) {
	in, _, keys := newTestInjector()

	if in.Inject("") {
		t.Fatal("Inject accepted empty text")
	}
	if in.InjectSelected("") {
		t.Fatal("InjectSelected accepted empty text")
	}
	if len(keys.Ops()) != 0 {
		t.Fatalf("keystrokes sent for empty text: %v", keys.Ops())
	}
}

func TestKeystrokeFailureReported(t *testing.T) {
	in, _, keys := newTestInjector()
	keys.Fail = true

	if in.InjectSelected("hello") {
		t.Fatal("InjectSelected succeeded despite keystroke failure")
	}
}

func TestClipboardRestoredOnPasteFailure(t *testing.T) {
	in, clip, keys := newTestInjector()
	clip.Write("previous contents")
	keys.Fail = true

	if in.InjectSelected("secret dictation") {
		t.Fatal("InjectSelected succeeded despite paste failure")
	}
	if got := clip.Content(); got != "previous contents" {
		t.Fatalf("clipboard = %q, want previous contents restored", got)
	}
}
