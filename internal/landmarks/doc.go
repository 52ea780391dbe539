// Package landmarks locates facial landmark points in video frames and
// prepares face crops for the reenactment generator. The real detector wraps
// dlib through go-face and is gated behind the dlib build tag because it
// needs cgo and the dlib runtime; default builds get a constructor that
// fails with a configuration error.
package landmarks
