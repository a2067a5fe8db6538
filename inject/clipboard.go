package inject

import cb "github.com/atotto/clipboard"

type systemClipboard struct{}

// NewClipboard returns the system clipboard.
func NewClipboard() Clipboard {
	return systemClipboard{}
}

func (systemClipboard) Read() (string, error) {
	return cb.ReadAll()
}

func (systemClipboard) Write(text string) error {
	return cb.WriteAll(text)
}
