package umod

import "errors"

// Closed set of error kinds the engine can return. Callers compare with
// errors.Is; no other sentinel escapes the public API.
var (
	ErrBadMagic             = errors.New("umod: bad pack magic")
	ErrSongsWithoutPatterns = errors.New("umod: pack has songs but no patterns")
	ErrNoInstruments        = errors.New("umod: pack has no instruments")
	ErrNotInitialized       = errors.New("umod: engine not initialized")
	ErrIndexOutOfRange      = errors.New("umod: index out of range")
	ErrNoFreeChannel        = errors.New("umod: no free channel")
	ErrInvalidHandle        = errors.New("umod: invalid or stale handle")
	ErrInvalidState         = errors.New("umod: invalid state for operation")
	ErrBadOffset            = errors.New("umod: sample offset or period out of range")
)
