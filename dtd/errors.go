package dtd

import "errors"

// Sentinel errors returned by the subset loader (external and internal
// subsets alike); callers outside this package only ever see these wrapped
// with fmt.Errorf("...: %w", ...) context by loader.run.
var (
	errInvalidToken = errors.New("invalid token")
	errUnexpectedEOF = errors.New("unexpected end of DTD")
)
