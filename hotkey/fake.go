package hotkey

type FakeBackend struct {
	keydown chan struct{}
	keyup   chan struct{}

	LastKey    Key
	Registered bool
}

func NewFake() *FakeBackend {
	return &FakeBackend{
		keydown: make(chan struct{}, 1),
		keyup:   make(chan struct{}, 1),
	}
}

func (f *FakeBackend) Register() error {
	f.Registered = true
	return nil
}

func (f *FakeBackend) Unregister() { f.Registered = false }
func (f *FakeBackend) SetKey(k Key) { f.LastKey = k }
func (f *FakeBackend) Keydown() <-chan struct{} { return f.keydown }
func (f *FakeBackend) Keyup() <-chan struct{}   { return f.keyup }

func (f *FakeBackend) SimKeydown() { f.keydown <- struct{}{} }
func (f *FakeBackend) SimKeyup() { f.keyup <- struct{}{} }
