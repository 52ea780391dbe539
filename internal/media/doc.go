// Package media adapts ffmpeg and ffprobe for frame-level video access:
// probing stream properties, decoding videos to packed RGB frames, and
// muxing RGB frames back into mp4 files with staged, atomic placement.
package media
