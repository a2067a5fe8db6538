//go:build gui

package gui

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
)

// renderTrayIcon draws the tray icon at runtime so no binary asset
// needs to ship with the source.
func renderTrayIcon() []byte {
	const size = 22
	img := image.NewRGBA(image.Rect(0, 0, size, size))

	center := float64(size) / 2
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx := float64(x) - center + 0.5
			dy := float64(y) - center + 0.5
			dist := math.Sqrt(dx*dx + dy*dy)

			switch {
			case dist < 4:
				img.Set(x, y, color.RGBA{255, 50, 50, 255})
			case dist < 7:
				t := (dist - 4) / 3
				img.Set(x, y, color.RGBA{uint8(255 - t*100), uint8(50 + t*50), 0, 255})
			case dist < 9:
				img.Set(x, y, color.RGBA{80, 20, 20, 255})
			case dist < 10:
				img.Set(x, y, color.RGBA{40, 10, 10, 255})
			}
		}
	}

	var buf bytes.Buffer
	png.Encode(&buf, img)
	return buf.Bytes()
}
