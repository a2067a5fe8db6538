//go:build darwin

package tray

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
)

var (
	iconIdle     []byte
	iconIdleHi   []byte
	iconRecHi    []byte
	iconBusyHi   []byte
	iconReviewHi []byte
)

func init() {
	transparent := color.RGBA{A: 0}
	red := color.RGBA{R: 255, G: 59, B: 48, A: 255}
	amber := color.RGBA{R: 255, G: 159, B: 10, A: 255}
	blue := color.RGBA{R: 10, G: 132, B: 255, A: 255}
	dotR := 44.0 / 6.5
	iconIdle = renderIcon(22, &transparent, 22.0/8)
	iconIdleHi = renderIcon(44, &transparent, 44.0/8)
	iconRecHi = renderIcon(44, &red, dotR)
	iconBusyHi = renderIcon(44, &amber, dotR)
	iconReviewHi = renderIcon(44, &blue, dotR)
}

func encodePNG(img image.Image) []byte {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic("encodePNG: " + err.Error())
	}
	return buf.Bytes()
}

func renderIcon(size int, dot *color.RGBA, dotR float64) []byte {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	cx, cy := float64(size)/2, float64(size)/2
	r := float64(size)/2 - 1
	for y := range size {
		for x := range size {
			d := math.Hypot(float64(x)+0.5-cx, float64(y)+0.5-cy)
			if dot != nil && d <= dotR {
				img.Set(x, y, dot)
			} else if d <= r {
				img.Set(x, y, color.Black)
			}
		}
	}
	return encodePNG(img)
}
