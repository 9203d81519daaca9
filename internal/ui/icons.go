package ui

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"

	"fyne.io/fyne/v2"

	"github.com/qms/qms/internal/toggle"
)

const iconSize = 32

var (
	lightInk = color.NRGBA{R: 0xf5, G: 0xf5, B: 0xf5, A: 0xff}
	darkInk  = color.NRGBA{R: 0x20, G: 0x20, B: 0x20, A: 0xff}
)

// iconName follows icon_{primary|secondary}_{light|dark}: "primary" while
// secondary monitors are enabled, light ink on a dark theme.
func iconName(state toggle.State, dark bool) string {
	variant := "secondary"
	if state == toggle.Enabled {
		variant = "primary"
	}
	ink := "dark"
	if dark {
		ink = "light"
	}
	return fmt.Sprintf("icon_%s_%s", variant, ink)
}

var iconCache = map[string]fyne.Resource{}

// trayIcon returns the icon for state on the current theme
func trayIcon(state toggle.State, dark bool) fyne.Resource {
	name := iconName(state, dark)
	if res, ok := iconCache[name]; ok {
		return res
	}

	ink := darkInk
	if dark {
		ink = lightInk
	}
	res := fyne.NewStaticResource(name+".png", encodePNG(drawMonitors(ink, state == toggle.Enabled)))
	iconCache[name] = res
	return res
}

// drawMonitors draws a filled front monitor and a rear monitor that is filled when
// secondaries are enabled and outlined when they are off.
func drawMonitors(ink color.NRGBA, secondaryOn bool) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, iconSize, iconSize))

	// rear (secondary) screen
	rear := image.Rect(13, 3, 30, 16)
	if secondaryOn {
		fillRect(img, rear, ink)
	} else {
		strokeRect(img, rear, ink, 2)
	}

	// front (primary) screen with a transparent gap so the two screens read as two shapes
	front := image.Rect(2, 10, 22, 24)
	clearOutline(img, front, 1)
	fillRect(img, front, ink)

	// stand and foot
	fillRect(img, image.Rect(10, 24, 14, 27), ink)
	fillRect(img, image.Rect(6, 27, 18, 29), ink)

	softenCorners(img)
	return img
}

func fillRect(img *image.NRGBA, r image.Rectangle, c color.NRGBA) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
}

func strokeRect(img *image.NRGBA, r image.Rectangle, c color.NRGBA, width int) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if x < r.Min.X+width || x >= r.Max.X-width || y < r.Min.Y+width || y >= r.Max.Y-width {
				img.SetNRGBA(x, y, c)
			}
		}
	}
}

func clearOutline(img *image.NRGBA, r image.Rectangle, width int) {
	outer := r.Inset(-width).Intersect(img.Bounds())
	for y := outer.Min.Y; y < outer.Max.Y; y++ {
		for x := outer.Min.X; x < outer.Max.X; x++ {
			if !(image.Point{X: x, Y: y}).In(r) {
				img.SetNRGBA(x, y, color.NRGBA{})
			}
		}
	}
}

// softenCorners fades pixels with few opaque neighbours, a cheap antialias
func softenCorners(img *image.NRGBA) {
	src := image.NewNRGBA(img.Bounds())
	copy(src.Pix, img.Pix)

	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := src.NRGBAAt(x, y)
			if c.A == 0 {
				continue
			}
			n := 0
			for _, d := range [][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
				if src.NRGBAAt(x+d[0], y+d[1]).A > 0 {
					n++
				}
			}
			if n <= 2 {
				c.A = uint8(math.Round(float64(c.A) * 0.6))
				img.SetNRGBA(x, y, c)
			}
		}
	}
}

func encodePNG(img image.Image) []byte {
	var buf bytes.Buffer
	// encoding an in-memory NRGBA cannot fail
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}
