// Package notify shows desktop notifications for failures the user would
// otherwise only find in the logs.
package notify

import "github.com/gen2brain/beeep"

func Notify(title, message string) {
	_ = beeep.Notify(title, message, "")
}

func Alert(title, message string) {
	_ = beeep.Alert(title, message, "")
}
