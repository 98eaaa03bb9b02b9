package tvstore

import "errors"

// ErrIndexOutOfRange and ErrTypeMismatch are programmer errors: assertions
// a caller violated, not a recoverable runtime condition. They are
// returned rather than panicked because TV-Store is a library component
// other components (WAL flush, queries) must be able to probe safely.
var (
	ErrIndexOutOfRange = errors.New("tvstore: index out of range")
	ErrTypeMismatch    = errors.New("tvstore: type mismatch")
	ErrLengthMismatch  = errors.New("tvstore: length mismatch")
)
