//go:build !darwin

package tray

func Init() <-chan struct{}  { return quitCh }
func refreshModes() {}
func updateStateIcon(State) {}
func updateTooltip(string) {}
