package dataset

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Pair is one reenactment work item: the driver sequence's facial motion is
// transferred onto the source sequence's face.
type Pair struct {
	SourceID string
	DriverID string
}

// Name returns the canonical pair identifier, e.g. "183_254".
func (p Pair) Name() string {
	return p.SourceID + "_" + p.DriverID
}

// ParseError reports a video filename that does not follow the
// {source}_{driver}.mp4 convention.
type ParseError struct {
	Name   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse pair name %q: %s", e.Name, e.Reason)
}

// ParsePairName parses a Face2Face video filename of the form
// {source}_{driver}.mp4 into a Pair.
func ParsePairName(name string) (Pair, error) {
	base := name
	ext := filepath.Ext(base)
	if !strings.EqualFold(ext, ".mp4") {
		return Pair{}, &ParseError{Name: name, Reason: "not an .mp4 file"}
	}
	base = strings.TrimSuffix(base, ext)
	parts := strings.Split(base, "_")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Pair{}, &ParseError{Name: name, Reason: "want two sequence ids separated by an underscore"}
	}
	return Pair{SourceID: parts[0], DriverID: parts[1]}, nil
}

// Pairs lists the reenactment work items defined by the .mp4 files in dir,
// sorted by filename for deterministic processing order. Entries without an
// .mp4 extension are ignored; .mp4 names that fail to parse are returned in
// skipped so callers can surface them as diagnostics.
func Pairs(dir string) (pairs []Pair, skipped []ParseError, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("list pair videos: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		if !strings.EqualFold(filepath.Ext(name), ".mp4") {
			continue
		}
		pair, err := ParsePairName(name)
		if err != nil {
			var parseErr *ParseError
			if errors.As(err, &parseErr) {
				skipped = append(skipped, *parseErr)
				continue
			}
			return nil, nil, err
		}
		pairs = append(pairs, pair)
	}
	return pairs, skipped, nil
}

// DriverIDs returns the distinct driver IDs across pairs in first-occurrence
// order. The encoding phase computes one landmark encoding per driver.
func DriverIDs(pairs []Pair) []string {
	seen := make(map[string]struct{}, len(pairs))
	ids := make([]string, 0, len(pairs))
	for _, pair := range pairs {
		if _, ok := seen[pair.DriverID]; ok {
			continue
		}
		seen[pair.DriverID] = struct{}{}
		ids = append(ids, pair.DriverID)
	}
	return ids
}

// IsNotExist reports whether err indicates a missing enumeration directory.
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
