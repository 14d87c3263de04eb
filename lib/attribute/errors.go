package attribute

import "github.com/cockroachdb/errors"

var (
	// ErrMergeRejected is returned by a merge law that refuses its
	// inputs.
	ErrMergeRejected = errors.New("attribute: merge law rejected its inputs")

	// ErrSplitRejected is returned by a split law that refuses its
	// input.
	ErrSplitRejected = errors.New("attribute: split law rejected its input")

	// ErrIncomplete is returned by Merge when only one side has a value
	// and the registered UpdateLaws has no MergeIncomplete behavior
	// (NoIncomplete.MergeIncomplete returns ErrIncomplete itself).
	ErrIncomplete = errors.New("attribute: merge invoked with one side absent and no merge_incomplete law")
)

// IsMergeError reports whether err came from a rejected or incomplete
// merge, as opposed to some unrelated error.
func IsMergeError(err error) bool {
	return errors.Is(err, ErrMergeRejected) || errors.Is(err, ErrIncomplete)
}

// IsSplitError reports whether err came from a rejected split.
func IsSplitError(err error) bool {
	return errors.Is(err, ErrSplitRejected)
}
