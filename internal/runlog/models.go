package runlog

import "time"

// Outcome classifies how one work item ended.
type Outcome string

const (
	OutcomeProcessed Outcome = "processed"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeFailed    Outcome = "failed"
)

// Run is one recorded command invocation.
type Run struct {
	ID          string
	Command     string
	Root        string
	StartedAt   time.Time
	FinishedAt  *time.Time
	Interrupted bool
	Processed   int
	Skipped     int
	Failed      int
}

// ItemRecord is one work item outcome within a run.
type ItemRecord struct {
	RunID      string
	Phase      string
	Item       string
	Outcome    Outcome
	Detail     string
	RecordedAt time.Time
}
