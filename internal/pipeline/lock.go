package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

const lockFileName = ".fakebench.lock"

// acquireTreeLock takes an exclusive advisory lock under the GANnotation
// output tree so concurrent runs cannot race on the same partial files.
// The returned release func must be called once the run is finished.
func acquireTreeLock(dir string) (func(), error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	lock := flock.New(filepath.Join(dir, lockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquiring output lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("another fakebench run is already writing to %s", dir)
	}
	return func() {
		_ = lock.Unlock()
	}, nil
}
