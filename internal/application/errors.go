package application

import "errors"

// Sentinel errors returned by application services. The HTTP adapter maps
// these to status codes; messages shown to users are decided at that boundary,
// so services never need UI feedback side effects.
var (
	// ErrValidation indicates missing or malformed caller input. Not retried;
	// the caller must correct the request.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound indicates the referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden indicates the requester is not allowed to act on the
	// entity (not the owner, not an accepted partner, or sharing disabled).
	ErrForbidden = errors.New("forbidden")
)
