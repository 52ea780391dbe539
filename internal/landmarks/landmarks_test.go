package landmarks_test

import (
	"errors"
	"image"
	"testing"

	"fakebench/internal/encoding"
	"fakebench/internal/landmarks"
	"fakebench/internal/services"
)

func TestPointsFromShapeDropsInnerLipCorners(t *testing.T) {
	shape := make([]image.Point, 68)
	for i := range shape {
		shape[i] = image.Point{X: i, Y: i + 100}
	}

	pts, err := landmarks.PointsFromShape(shape)
	if err != nil {
		t.Fatalf("PointsFromShape returned error: %v", err)
	}

	cases := []struct {
		index int
		wantX float64
	}{
		{0, 0},
		{59, 59},
		{60, 61},
		{62, 63},
		{63, 65},
		{65, 67},
	}
	for _, tc := range cases {
		got := pts[tc.index]
		if got.X != tc.wantX || got.Y != tc.wantX+100 {
			t.Fatalf("point %d: got (%v, %v), want (%v, %v)",
				tc.index, got.X, got.Y, tc.wantX, tc.wantX+100)
		}
	}
}

func TestPointsFromShapePassesThroughSixtySix(t *testing.T) {
	shape := make([]image.Point, encoding.PointCount)
	for i := range shape {
		shape[i] = image.Point{X: i * 2, Y: i * 3}
	}

	pts, err := landmarks.PointsFromShape(shape)
	if err != nil {
		t.Fatalf("PointsFromShape returned error: %v", err)
	}
	for i, p := range pts {
		if p.X != float64(i*2) || p.Y != float64(i*3) {
			t.Fatalf("point %d: got (%v, %v)", i, p.X, p.Y)
		}
	}
}

func TestPointsFromShapeRejectsOtherCounts(t *testing.T) {
	if _, err := landmarks.PointsFromShape(make([]image.Point, 5)); err == nil {
		t.Fatal("expected error for 5 point shape")
	}
}

func delta(a, b byte) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}

func clusterPoints(centerX, centerY, spread float64) encoding.Points {
	var pts encoding.Points
	for i := range pts {
		dx := float64(i%11)/10 - 0.5
		dy := float64(i/11)/5 - 0.5
		pts[i] = encoding.Point{X: centerX + dx*spread, Y: centerY + dy*spread}
	}
	return pts
}

func TestCropFaceProducesRequestedSize(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 100, 80))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = 200
		img.Pix[i+1] = 10
		img.Pix[i+2] = 10
		img.Pix[i+3] = 255
	}

	frame, err := landmarks.CropFace(img, clusterPoints(50, 40, 30), 32)
	if err != nil {
		t.Fatalf("CropFace returned error: %v", err)
	}
	if frame.Width != 32 || frame.Height != 32 {
		t.Fatalf("unexpected crop size: %dx%d", frame.Width, frame.Height)
	}
	if err := frame.Validate(); err != nil {
		t.Fatalf("cropped frame invalid: %v", err)
	}
	// Resampling a uniform image must keep it uniform up to rounding.
	if delta(frame.Pix[0], 200) > 1 || delta(frame.Pix[1], 10) > 1 || delta(frame.Pix[2], 10) > 1 {
		t.Fatalf("unexpected pixel values: %v", frame.Pix[:3])
	}
}

func TestCropFaceRejectsDegenerateRegion(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 64, 64))
	var pts encoding.Points
	for i := range pts {
		pts[i] = encoding.Point{X: 32, Y: 32}
	}

	_, err := landmarks.CropFace(img, pts, 32)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCropFaceRejectsRegionOutsideImage(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 50, 50))

	_, err := landmarks.CropFace(img, clusterPoints(1000, 1000, 10), 32)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCropFaceRejectsNonPositiveSize(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 50, 50))

	_, err := landmarks.CropFace(img, clusterPoints(25, 25, 10), 0)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
