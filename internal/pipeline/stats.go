package pipeline

// Stats counts work item outcomes for one phase. Processed items produced a
// new artifact, skipped items were never attempted (the artifact already
// existed or a prerequisite was missing), failed items were attempted and
// errored.
type Stats struct {
	Processed int
	Skipped   int
	Failed    int
}

// Total returns the number of work items the phase looked at.
func (s Stats) Total() int {
	return s.Processed + s.Skipped + s.Failed
}

func (s *Stats) add(other Stats) {
	s.Processed += other.Processed
	s.Skipped += other.Skipped
	s.Failed += other.Failed
}

// GenerateStats holds per phase outcome counts for a generation run.
type GenerateStats struct {
	Encodings    Stats
	Reenactments Stats
}

// Combined merges both phases into a single tally for the run ledger.
func (g GenerateStats) Combined() Stats {
	var total Stats
	total.add(g.Encodings)
	total.add(g.Reenactments)
	return total
}
