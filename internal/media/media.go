package media

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Frame is one decoded video frame as packed 8-bit RGB, row-major.
type Frame struct {
	Width  int
	Height int
	Pix    []byte
}

// NewFrame allocates a zeroed frame of the given dimensions.
func NewFrame(width, height int) Frame {
	return Frame{Width: width, Height: height, Pix: make([]byte, width*height*3)}
}

// Validate checks that the pixel buffer matches the declared dimensions.
func (f Frame) Validate() error {
	if f.Width <= 0 || f.Height <= 0 {
		return fmt.Errorf("frame dimensions %dx%d invalid", f.Width, f.Height)
	}
	if want := f.Width * f.Height * 3; len(f.Pix) != want {
		return fmt.Errorf("frame buffer %d bytes, want %d", len(f.Pix), want)
	}
	return nil
}

// Image converts the frame to an NRGBA image.
func (f Frame) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, f.Width, f.Height))
	for i := 0; i < f.Width*f.Height; i++ {
		img.Pix[4*i+0] = f.Pix[3*i+0]
		img.Pix[4*i+1] = f.Pix[3*i+1]
		img.Pix[4*i+2] = f.Pix[3*i+2]
		img.Pix[4*i+3] = 0xff
	}
	return img
}

// ReadImage loads a still image from disk.
func ReadImage(path string) (image.Image, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read image %s: %w", path, err)
	}
	return img, nil
}

// FromImage converts any image to a packed RGB frame, dropping alpha.
func FromImage(img image.Image) Frame {
	nrgba := imaging.Clone(img)
	bounds := nrgba.Bounds()
	frame := NewFrame(bounds.Dx(), bounds.Dy())
	for i := 0; i < frame.Width*frame.Height; i++ {
		frame.Pix[3*i+0] = nrgba.Pix[4*i+0]
		frame.Pix[3*i+1] = nrgba.Pix[4*i+1]
		frame.Pix[3*i+2] = nrgba.Pix[4*i+2]
	}
	return frame
}
