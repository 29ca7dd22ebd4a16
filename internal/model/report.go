package model

// DeleteFailure records one failed delete attempt during a sweep.
// A zero ListingID marks a category-level fetch failure rather than a
// per-listing one.
type DeleteFailure struct {
	Message    string
	ListingID  int64
	CategoryID int64
}

// DeletionReport is the aggregated outcome of one bulk deletion pass.
// Failures appear in the order they occurred.
type DeletionReport struct {
	Failures     []DeleteFailure
	SuccessCount int
	ErrorCount   int
}

// HasFailures reports whether any delete attempt failed.
func (r *DeletionReport) HasFailures() bool {
	return r.ErrorCount > 0
}
