// Package dsstore provides a pure Go reader for the .DS_Store
// per-directory metadata container used by the macOS Finder.
package dsstore

import (
	"errors"

	"github.com/robert-malhotra/go-dsstore/internal/buddy"
)

// Common errors. The block-store sentinels are re-exported so callers can
// match them with errors.Is without reaching into internal packages.
//
// Header-level failures (ErrBadMagic, ErrHeaderMismatch, ErrNameNotFound)
// abort the whole parse. Traversal-level failures (ErrTruncated,
// ErrUnknownType, or ErrCycle inside a subtree) are confined to that
// subtree and reported as Corruption markers on a best-effort Store.
var (
	ErrBadMagic       = buddy.ErrBadMagic
	ErrHeaderMismatch = buddy.ErrHeaderMismatch
	ErrTruncated      = buddy.ErrTruncated
	ErrOutOfRange     = buddy.ErrOutOfRange
	ErrNameNotFound   = buddy.ErrNameNotFound

	ErrUnknownType = errors.New("unknown value type tag")
	ErrCycle       = errors.New("cycle in index node graph")
)
