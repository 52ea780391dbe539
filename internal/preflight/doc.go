// Package preflight validates the environment before a batch run starts:
// external binaries resolvable, the data root accessible, and enough free
// space for new artifacts.
package preflight
