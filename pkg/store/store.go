/*
Package store defines the persistence contract the DAG engine (pkg/peer)
relies on: a durable integrated set I, a side stash S for patches whose
parents have not arrived yet, and the derived heads view over I.

	┌──────────────── ObjectStore ────────────────┐
	│                                              │
	│   Heads()            -> H(I)                │
	│   Patches(ids)        -> rows of I ∩ ids     │
	│   IsIntegrated(id)    -> id ∈ I              │
	│   Contains(id)        -> id ∈ I ∪ S          │
	│   Commit(p)           -> I += p, E += edges  │
	│   Stash(p)            -> S += p              │
	│   Unstash()           -> drain S             │
	│                                              │
	└──────────────────────────────────────────────┘

The store never verifies signatures or enforces causal order; that is the
Peer's job (pkg/peer). Two implementations ship here: Memory, an in-process
map-backed store used by tests and the reconciliation scenarios; and
pkg/store/sqlstore, a relational backend over SQLite.
*/
package store

import (
	"context"
	"errors"

	"github.com/latticewire/peerdag/pkg/patch"
)

// ErrDuplicate is returned by Commit when a patch with the same ID is
// already present in the integrated set.
var ErrDuplicate = errors.New("store: patch already integrated")

// ErrMissingParent is returned by Commit when a parent named in patch.Deps
// is not yet in the integrated set. Callers (pkg/peer) are expected to
// check this themselves before calling Commit; a backend returning it is a
// defensive backstop, not the primary signal.
var ErrMissingParent = errors.New("store: parent not integrated")

// ObjectStore is the persistence contract consumed by Peer. Implementations
// must serialize their own operations internally; the store is always
// accessed through exactly one owning Peer.
type ObjectStore interface {
	// Heads returns H(I): patches in the integrated set with no children
	// in the integrated set. Order is unspecified.
	Heads(ctx context.Context) ([]patch.ID, error)

	// Patches returns the subset of ids present in I, with each patch's
	// deps populated from the integrated parent-of relation. Order is
	// unspecified; IDs not in I are silently dropped.
	Patches(ctx context.Context, ids []patch.ID) ([]patch.Patch, error)

	// IsIntegrated reports whether id ∈ I.
	IsIntegrated(ctx context.Context, id patch.ID) (bool, error)

	// Contains reports whether id ∈ I ∪ S.
	Contains(ctx context.Context, id patch.ID) (bool, error)

	// Commit atomically inserts p and its parent edges into I. Precondition
	// (enforced by the caller, pkg/peer): every parent of p is already in
	// I, and p.ID() is not yet in I.
	Commit(ctx context.Context, p patch.Patch) error

	// Stash inserts p into S. Idempotent on ID collision.
	Stash(ctx context.Context, p patch.Patch) error

	// Unstash atomically removes and returns every entry currently in S.
	Unstash(ctx context.Context) ([]patch.Patch, error)
}
