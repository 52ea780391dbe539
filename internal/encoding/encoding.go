package encoding

// PointCount is the number of landmarks per frame: dlib's 68-point set minus
// the duplicated inner-lip corners at indices 60 and 64.
const PointCount = 66

// valuesPerFrame is the flattened width of one frame row on disk.
const valuesPerFrame = PointCount * 2

// Point is a single landmark coordinate in pixel space.
type Point struct {
	X float64
	Y float64
}

// Points is one frame's full landmark set.
type Points [PointCount]Point

// Sequence holds the per-frame landmark sets for one video.
type Sequence struct {
	Frames []Points
}

// Len returns the number of frames in the sequence.
func (s Sequence) Len() int {
	return len(s.Frames)
}

// Append adds one frame's landmarks to the sequence.
func (s *Sequence) Append(p Points) {
	s.Frames = append(s.Frames, p)
}
