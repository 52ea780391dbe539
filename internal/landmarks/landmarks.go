package landmarks

import (
	"context"
	"fmt"
	"image"

	"fakebench/internal/encoding"
	"fakebench/internal/media"
)

// fullShapeCount is the point count of the classic dlib facial shape
// predictor. The generator was trained on the 66 point variant that drops
// the duplicated inner lip corners, indexes 60 and 64.
const fullShapeCount = 68

// Detector locates facial landmarks in a single decoded frame. Detect
// returns an error wrapping services.ErrNoFace when the frame contains no
// usable face; callers treat that as a signal to abandon the sequence
// rather than retry.
type Detector interface {
	Detect(ctx context.Context, frame media.Frame) (encoding.Points, error)
	Close() error
}

// PointsFromShape converts a detector shape to the generator's 66 point
// layout. A 68 point shape has indexes 60 and 64 removed; a 66 point shape
// passes through unchanged.
func PointsFromShape(shape []image.Point) (encoding.Points, error) {
	var pts encoding.Points
	switch len(shape) {
	case encoding.PointCount:
		for i, p := range shape {
			pts[i] = encoding.Point{X: float64(p.X), Y: float64(p.Y)}
		}
	case fullShapeCount:
		out := 0
		for i, p := range shape {
			if i == 60 || i == 64 {
				continue
			}
			pts[out] = encoding.Point{X: float64(p.X), Y: float64(p.Y)}
			out++
		}
	default:
		return pts, fmt.Errorf("unsupported landmark shape with %d points", len(shape))
	}
	return pts, nil
}
