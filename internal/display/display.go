// Package display produces 240x240 RGB888 frame buffers for the
// ElectronBot panel.
package display

import "github.com/mkaino/ebot/internal/ebusb"

// New returns a black frame.
func New() []byte { return make([]byte, ebusb.FrameSize) }

// Solid fills a frame with a single color.
func Solid(r, g, b byte) []byte {
	buf := make([]byte, ebusb.FrameSize)
	for i := 0; i < len(buf); i += ebusb.BytesPerPixel {
		buf[i] = r
		buf[i+1] = g
		buf[i+2] = b
	}
	return buf
}

// Stripes renders the row-indexed test pattern: every pixel of row y is
// the color (y, 2y, 3y) mod 256.
func Stripes() []byte {
	buf := make([]byte, ebusb.FrameSize)
	for y := 0; y < ebusb.Height; y++ {
		c := [3]byte{byte(y), byte(y * 2), byte(y * 3)}
		row := buf[y*ebusb.RowSize : (y+1)*ebusb.RowSize]
		for x := 0; x < ebusb.Width; x++ {
			copy(row[x*ebusb.BytesPerPixel:], c[:])
		}
	}
	return buf
}

// Gradient renders a vertical red gradient, black at the top.
func Gradient() []byte {
	buf := make([]byte, ebusb.FrameSize)
	for y := 0; y < ebusb.Height; y++ {
		r := byte(y * 256 / ebusb.Height)
		row := buf[y*ebusb.RowSize : (y+1)*ebusb.RowSize]
		for x := 0; x < ebusb.Width; x++ {
			row[x*ebusb.BytesPerPixel] = r
		}
	}
	return buf
}

// Eyes renders the idle face: two white rectangles on black.
func Eyes() []byte {
	buf := make([]byte, ebusb.FrameSize)
	white := [3]byte{255, 255, 255}
	fillRect(buf, 40, 80, 80, 40, white)
	fillRect(buf, 120, 80, 80, 40, white)
	return buf
}

func fillRect(buf []byte, x, y, w, h int, c [3]byte) {
	for dy := 0; dy < h; dy++ {
		py := y + dy
		if py >= ebusb.Height {
			break
		}
		for dx := 0; dx < w; dx++ {
			px := x + dx
			if px >= ebusb.Width {
				break
			}
			i := py*ebusb.RowSize + px*ebusb.BytesPerPixel
			copy(buf[i:], c[:])
		}
	}
}
