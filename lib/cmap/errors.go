package cmap

import "github.com/cockroachdb/errors"

// Error kind sentinels, modeled after the kind taxonomy a combinatorial
// map core must expose to callers (DartNotFree, LinkError, ...). Callers
// identify a kind with errors.Is(err, cmap.ErrLinkError) etc.; detail is
// attached with errors.Wrapf and does not change the sentinel identity.
var (
	// ErrDartNotFree is returned by RemoveDart when the dart still holds
	// a β relation in some dimension, or is the null dart. Link functions
	// report a non-free endpoint with ErrLinkError instead.
	ErrDartNotFree = errors.New("cmap: dart is not free in the required dimension")

	// ErrLinkError covers every other precondition violation of
	// Link/Unlink/Sew/Unsew: wrong freedom, a null dart where forbidden,
	// a target that would break I1/I2, or a failed alignment check.
	ErrLinkError = errors.New("cmap: link precondition violated")
)

// IsKind reports whether err (or anything it wraps) is the given
// sentinel, i.e. belongs to that error kind.
func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
