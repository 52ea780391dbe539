package dataset

import "path/filepath"

// Layout derives every canonical path in a FaceForensics++ dataset tree from
// its root directory and compression level. All derivations are pure string
// operations; nothing touches the filesystem.
type Layout struct {
	root        string
	compression string
}

// NewLayout builds a Layout for the given dataset root. Compression selects
// the videos subdirectory (c0, c23, or c40).
func NewLayout(root, compression string) Layout {
	return Layout{root: filepath.Clean(root), compression: compression}
}

// Root returns the dataset base directory.
func (l Layout) Root() string { return l.root }

// Compression returns the compression level the layout was built with.
func (l Layout) Compression() string { return l.compression }

// OriginalVideosDir holds the pristine source sequences, one {id}.mp4 each.
func (l Layout) OriginalVideosDir() string {
	return filepath.Join(l.root, "original_sequences", l.compression, "videos")
}

// OriginalVideoPath returns the video file for a sequence ID.
func (l Layout) OriginalVideoPath(id string) string {
	return filepath.Join(l.OriginalVideosDir(), id+".mp4")
}

// Face2FaceVideosDir holds the Face2Face manipulations whose {source}_{driver}
// filenames define the reenactment work list.
func (l Layout) Face2FaceVideosDir() string {
	return filepath.Join(l.root, "manipulated_sequences", "Face2Face", l.compression, "videos")
}

// GANnotationDir is the base output directory for generated reenactments.
func (l Layout) GANnotationDir() string {
	return filepath.Join(l.root, "manipulated_sequences", "GANnotation")
}

// EncodingsDir holds the per-sequence landmark encodings.
func (l Layout) EncodingsDir() string {
	return filepath.Join(l.GANnotationDir(), "encodings")
}

// EncodingPath returns the landmark encoding file for a sequence ID.
func (l Layout) EncodingPath(id string) string {
	return filepath.Join(l.EncodingsDir(), id+".txt")
}

// ReenactmentVideosDir holds the generated reenactment videos.
func (l Layout) ReenactmentVideosDir() string {
	return filepath.Join(l.GANnotationDir(), l.compression, "videos")
}

// ReenactmentVideoPath returns the output video for a source/driver pair.
func (l Layout) ReenactmentVideoPath(p Pair) string {
	return filepath.Join(l.ReenactmentVideosDir(), p.Name()+".mp4")
}

// SourceImagesDir holds one still image per original sequence.
func (l Layout) SourceImagesDir() string {
	return filepath.Join(l.root, "original_sequences_images", l.compression, "images")
}

// SourceImagePath returns the still image for a sequence ID.
func (l Layout) SourceImagePath(id string) string {
	return filepath.Join(l.SourceImagesDir(), id+".png")
}
