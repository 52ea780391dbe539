// Package services defines shared utilities consumed by the pipeline phases
// and external tool integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run identifiers, work item names, and phase
//     names for logging and tracing.
//   - Structured error markers plus the Wrap helper that classify failures
//     into item-scoped (skip and continue) and run-scoped (abort) categories.
//
// Use these helpers when wiring new pipeline logic so operational behaviour
// (error handling, observability) stays uniform across phases.
package services
