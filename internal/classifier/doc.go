// Package classifier models forgery detection networks as opaque external
// scorers. A registry maps architecture names to model factories; transfer
// directories name models as "{orig}-to-{trans}" with a best.hdf5 weights
// file inside.
package classifier
