package interfaces

import "errors"

// Errors returned by record store adapters. Adapters wrap the underlying
// driver error so the cause stays visible in logs.
var (
	ErrRecordAmbiguous  = errors.New("record store: more than one record matches")
	ErrStoreAuth        = errors.New("record store: authentication failed")
	ErrStoreTimeout     = errors.New("record store: timeout")
	ErrStoreUnavailable = errors.New("record store: unavailable")
	// ErrStoreRejected is a definitive refusal of a well-formed call, e.g. a
	// 400 from the API or a record missing data the adapter needs.
	ErrStoreRejected = errors.New("record store: request rejected")
)
