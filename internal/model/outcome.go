package model

type OutcomeKind string

const (
	OutcomeInserted  OutcomeKind = "inserted"
	OutcomeDuplicate OutcomeKind = "duplicate"
	OutcomeFailed    OutcomeKind = "failed"
)

// Outcome is the result of persisting one item. Reason is set for failures.
type Outcome struct {
	Kind   OutcomeKind
	Reason error
}

// Tally aggregates outcomes of one provider run.
type Tally struct {
	Fetched   int
	Inserted  int
	Duplicate int
	Failed    int
	// Skipped counts items fetched but left out because they predate the
	// backfill boundary.
	Skipped int
	// LastFailure is the Reason of the most recent failed outcome.
	LastFailure error
}

func (t *Tally) Add(o Outcome) {
	switch o.Kind {
	case OutcomeInserted:
		t.Inserted++
	case OutcomeDuplicate:
		t.Duplicate++
	case OutcomeFailed:
		t.Failed++
		t.LastFailure = o.Reason
	}
}

func (t *Tally) Merge(other Tally) {
	t.Fetched += other.Fetched
	t.Inserted += other.Inserted
	t.Duplicate += other.Duplicate
	t.Failed += other.Failed
	t.Skipped += other.Skipped
	if other.LastFailure != nil {
		t.LastFailure = other.LastFailure
	}
}
