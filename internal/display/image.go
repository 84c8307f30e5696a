package display

import (
	"fmt"
	"image"
	"os"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"

	"github.com/mkaino/ebot/internal/ebusb"
)

// LoadImage decodes the file, scales it to the panel, and returns the
// RGB888 row-major frame.
func LoadImage(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("display: open %s: %w", path, err)
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("display: decode %s: %w", path, err)
	}
	return FromImage(src), nil
}

// FromImage scales any image to 240x240 and flattens it to RGB888.
func FromImage(src image.Image) []byte {
	dst := image.NewRGBA(image.Rect(0, 0, ebusb.Width, ebusb.Height))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	buf := make([]byte, ebusb.FrameSize)
	for y := 0; y < ebusb.Height; y++ {
		for x := 0; x < ebusb.Width; x++ {
			o := dst.PixOffset(x, y)
			i := y*ebusb.RowSize + x*ebusb.BytesPerPixel
			buf[i] = dst.Pix[o]
			buf[i+1] = dst.Pix[o+1]
			buf[i+2] = dst.Pix[o+2]
		}
	}
	return buf
}
