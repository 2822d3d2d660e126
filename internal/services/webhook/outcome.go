package webhook

// OutcomeStatus classifies how a delivery was handled.
type OutcomeStatus string

const (
	// OutcomeApplied means the delivery caused a ledger mutation.
	OutcomeApplied OutcomeStatus = "applied"
	// OutcomeSkipped means the delivery was recognized but intentionally
	// caused no mutation: a duplicate, a redelivery, or a non-final status.
	OutcomeSkipped OutcomeStatus = "skipped"
	// OutcomeRejected means the delivery could not be processed.
	OutcomeRejected OutcomeStatus = "rejected"
)

// Outcome is the result of processing one webhook delivery. Every path
// through the pipeline produces one; nothing is signalled by panic or by a
// bare error alone. Note carries the text persisted on the webhook log row.
type Outcome struct {
	Status OutcomeStatus
	Note   string
	Err    error
}

func applied(note string) Outcome {
	return Outcome{Status: OutcomeApplied, Note: note}
}

func skipped(note string) Outcome {
	return Outcome{Status: OutcomeSkipped, Note: note}
}

func rejected(note string, err error) Outcome {
	return Outcome{Status: OutcomeRejected, Note: note, Err: err}
}
