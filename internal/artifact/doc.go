// Package artifact provides atomic creation of pipeline output files.
//
// Every artifact is written to a sibling ".partial" file and renamed into
// place only once complete, so a canonical path either holds a fully written
// artifact or nothing. Resumability builds on that invariant: presence of the
// final file is the completion check. Files placed at canonical paths by
// other tools are trusted as-is; no checksum or freshness validation is
// performed.
package artifact
