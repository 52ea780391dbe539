// Package runlog keeps a SQLite ledger of command invocations and their
// per-item outcomes, so interrupted and resumed batch runs can be audited
// after the fact.
package runlog
