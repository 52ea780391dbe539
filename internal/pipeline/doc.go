// Package pipeline drives the two batch workflows: generating GANnotation
// reenactments over a FaceForensics++ tree and evaluating transferred
// classifiers against it.
//
// Both drivers are resumable. Work items whose target artifact already
// exists are skipped without recomputation, so an interrupted run picks up
// where it left off. Item level failures are reported and recorded in the
// run ledger without aborting the rest of the batch; only environment and
// file system failures stop a run.
package pipeline
