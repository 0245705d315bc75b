package analyze

import "fmt"

// PrecisionError reports that cross-validation landed below the
// configured precision threshold. The result carrying it still holds
// every intermediate analysis, so callers can inspect what was
// measured before the gate closed.
type PrecisionError struct {
	Score     float64
	Threshold float64
}

func (e *PrecisionError) Error() string {
	return fmt.Sprintf("analysis precision %.4f below required threshold %.4f", e.Score, e.Threshold)
}

// PartialDataWarning flags an input gap that degrades confidence
// without aborting the run: a missing bass part, or a part whose
// analysis came back requires_review.
type PartialDataWarning struct {
	Reason string
}

func (w *PartialDataWarning) Error() string {
	return w.Reason
}
