package hotkey

import "sync"

// Watch filters a backend's raw event stream into strictly alternating
// keydown/keyup pairs. Duplicate downs (auto-repeat, flaky drivers) and
// ups without a matching down are swallowed.
type Watch struct {
	backend Backend
	keydown chan struct{}
	keyup   chan struct{}

	mu      sync.Mutex
	stop    chan struct{}
	done    chan struct{}
	running bool
}

func NewWatch(backend Backend) *Watch {
	return &Watch{
		backend: backend,
		keydown: make(chan struct{}, 1),
		keyup:   make(chan struct{}, 1),
	}
}

func (w *Watch) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}
	if err := w.backend.Register(); err != nil {
		return err
	}
	w.stop = make(chan struct{})
	w.done = make(chan struct{})
	w.running = true
	go w.run(w.stop, w.done)
	return nil
}

func (w *Watch) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return
	}
	close(w.stop)
	<-w.done
	w.backend.Unregister()
	w.running = false
}

// SetTriggerKey changes the trigger key. Takes effect on the next press.
func (w *Watch) SetTriggerKey(k Key) {
	w.backend.SetKey(k)
}

func (w *Watch) Keydown() <-chan struct{} { return w.keydown }
func (w *Watch) Keyup() <-chan struct{}   { return w.keyup }

func (w *Watch) run(stop, done chan struct{}) {
	defer close(done)
	pressed := false
	for {
		select {
		case <-stop:
			return
		case <-w.backend.Keydown():
			if pressed {
				continue
			}
			pressed = true
			select {
			case w.keydown <- struct{}{}:
			default:
			}
		case <-w.backend.Keyup():
			if !pressed {
				continue
			}
			pressed = false
			select {
			case w.keyup <- struct{}{}:
			default:
			}
		}
	}
}
