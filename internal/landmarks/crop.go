package landmarks

import (
	"image"
	"math"

	"github.com/disintegration/imaging"

	"fakebench/internal/encoding"
	"fakebench/internal/media"
	"fakebench/internal/services"
)

// cropMargin widens the tight landmark box on every side so the crop keeps
// forehead and chin context around the detected points.
const cropMargin = 0.3

// CropFace cuts a square region around the landmark cloud and scales it to
// size by size pixels, the input the reenactment generator expects.
func CropFace(img image.Image, pts encoding.Points, size int) (media.Frame, error) {
	if size <= 0 {
		return media.Frame{}, services.Wrap(services.ErrValidation, "landmarks", "crop",
			"crop size must be positive", nil)
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range pts {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}

	side := math.Max(maxX-minX, maxY-minY) * (1 + 2*cropMargin)
	if side <= 0 {
		return media.Frame{}, services.Wrap(services.ErrValidation, "landmarks", "crop",
			"degenerate landmark region", nil)
	}

	centerX := (minX + maxX) / 2
	centerY := (minY + maxY) / 2
	rect := image.Rect(
		int(math.Floor(centerX-side/2)),
		int(math.Floor(centerY-side/2)),
		int(math.Ceil(centerX+side/2)),
		int(math.Ceil(centerY+side/2)),
	)
	rect = rect.Intersect(img.Bounds())
	if rect.Empty() {
		return media.Frame{}, services.Wrap(services.ErrValidation, "landmarks", "crop",
			"landmark region outside image bounds", nil)
	}

	cropped := imaging.Crop(img, rect)
	resized := imaging.Resize(cropped, size, size, imaging.Lanczos)
	return media.FromImage(resized), nil
}
