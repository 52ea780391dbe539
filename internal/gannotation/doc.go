// Package gannotation adapts the external GANnotation reenactment
// generator. The generator is an opaque command: the client writes the face
// crop and landmark sequence to temporary files, invokes it, and reads raw
// RGB24 frames from its stdout, one per landmark frame.
package gannotation
