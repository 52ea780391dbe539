// Package dataset models the FaceForensics++ directory tree: canonical path
// derivations for original sequences, Face2Face manipulations, landmark
// encodings, and generated reenactments, plus enumeration of the
// {source}_{driver} pair work list.
package dataset
