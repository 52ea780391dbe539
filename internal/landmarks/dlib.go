//go:build dlib

package landmarks

import (
	"bytes"
	"context"
	"image/jpeg"

	"github.com/Kagami/go-face"

	"fakebench/internal/encoding"
	"fakebench/internal/media"
	"fakebench/internal/services"
)

type dlibDetector struct {
	rec *face.Recognizer
}

// NewDetector loads the dlib face models from modelsDir. The recognizer
// holds native resources; call Close when done.
func NewDetector(modelsDir string) (Detector, error) {
	rec, err := face.NewRecognizer(modelsDir)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "landmarks", "load models", modelsDir, err)
	}
	return &dlibDetector{rec: rec}, nil
}

func (d *dlibDetector) Detect(ctx context.Context, frame media.Frame) (encoding.Points, error) {
	var pts encoding.Points
	if err := ctx.Err(); err != nil {
		return pts, err
	}
	if err := frame.Validate(); err != nil {
		return pts, services.Wrap(services.ErrValidation, "landmarks", "detect", "", err)
	}

	// go-face only accepts JPEG payloads.
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, frame.Image(), nil); err != nil {
		return pts, services.Wrap(services.ErrValidation, "landmarks", "encode frame", "", err)
	}

	found, err := d.rec.RecognizeSingle(buf.Bytes())
	if err != nil {
		return pts, services.Wrap(services.ErrExternalTool, "landmarks", "detect", "", err)
	}
	if found == nil {
		return pts, services.Wrap(services.ErrNoFace, "landmarks", "detect", "no face in frame", nil)
	}
	return PointsFromShape(found.Shapes)
}

func (d *dlibDetector) Close() error {
	d.rec.Close()
	return nil
}
