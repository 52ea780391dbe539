//go:build !dlib

package landmarks

import (
	"fakebench/internal/services"
)

// NewDetector reports that this binary was built without dlib support.
// Rebuild with -tags dlib and the go-face native dependencies installed to
// enable landmark detection.
func NewDetector(modelsDir string) (Detector, error) {
	return nil, services.Wrap(services.ErrConfiguration, "landmarks", "load models",
		"binary built without dlib support (rebuild with -tags dlib)", nil)
}
