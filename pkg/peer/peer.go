/*
Package peer implements the single-owner handle that sits between a
signing identity and an ObjectStore: Peer authors new patches on top of
its cached heads, verifies and integrates incoming batches with the
stash fixpoint, and answers the two reconciliation probes (missing,
patches) the sync driver needs.

A Peer is not safe for concurrent use from multiple goroutines; it is a
single-threaded cooperative handle exactly like the store it wraps. All
mutation of the cached heads happens on the same goroutine that called
commit or integrate.
*/
package peer

import (
	"context"
	"fmt"

	"github.com/latticewire/peerdag/pkg/identity"
	"github.com/latticewire/peerdag/pkg/log"
	"github.com/latticewire/peerdag/pkg/metrics"
	"github.com/latticewire/peerdag/pkg/patch"
	"github.com/latticewire/peerdag/pkg/store"
)

// Peer is a single-owner handle over a signing identity and an object
// store: it authors patches, integrates incoming ones, and tracks the
// current head set without re-querying the store on every hot-path call.
type Peer struct {
	signer identity.Signer
	store  store.ObjectStore
	heads  []patch.ID
	log    zLogger
}

// zLogger is the narrow slice of pkg/log's helpers peer actually calls, kept
// as an interface so tests can swap in a no-op logger without pulling in
// the global log package state.
type zLogger interface {
	Info(msg string)
	Warn(msg string)
	Debug(msg string)
}

type defaultLogger struct{}

func (defaultLogger) Info(msg string)  { log.Info(msg) }
func (defaultLogger) Warn(msg string)  { log.Warn(msg) }
func (defaultLogger) Debug(msg string) { log.Debug(msg) }

// New constructs a Peer over signer and backing store s, loading and
// caching the current head set.
func New(ctx context.Context, signer identity.Signer, s store.ObjectStore) (*Peer, error) {
	heads, err := s.Heads(ctx)
	if err != nil {
		return nil, fmt.Errorf("peer: load initial heads: %w", err)
	}
	return &Peer{signer: signer, store: s, heads: heads, log: defaultLogger{}}, nil
}

// PeerID returns the identity this peer signs patches with.
func (p *Peer) PeerID() patch.PeerID {
	return p.signer.PeerID()
}

// Heads returns the peer's cached head set. It reflects the store's H(I)
// as of the end of the last successful Commit or Integrate call.
func (p *Peer) Heads() []patch.ID {
	out := make([]patch.ID, len(p.heads))
	copy(out, p.heads)
	return out
}

// Store returns the backing ObjectStore.
func (p *Peer) Store() store.ObjectStore {
	return p.store
}

// Commit authors a new Patch over payload with deps equal to the current
// cached heads, commits it to the store, and replaces the cached heads
// with the single new patch (it supersedes every prior head).
func (p *Peer) Commit(ctx context.Context, payload []byte) (patch.Patch, error) {
	newPatch, err := p.signer.NewPatch(patch.NewDeps(p.heads...), payload)
	if err != nil {
		return patch.Patch{}, fmt.Errorf("peer: author patch: %w", err)
	}
	if err := p.store.Commit(ctx, newPatch); err != nil {
		return patch.Patch{}, fmt.Errorf("peer: commit %s: %w", newPatch.ID(), err)
	}
	p.heads = []patch.ID{newPatch.ID()}
	metrics.PatchesCommittedTotal.Inc()
	p.log.Info(fmt.Sprintf("committed patch %s", newPatch.ID()))
	return newPatch, nil
}

// Integrate runs the DAG fixpoint over the given batch: each patch is
// verified, then either committed (if every parent is already integrated)
// or stashed (if not). Every successful commit drains and re-feeds the
// stash, since it may have unblocked patches waiting on exactly that
// parent. It returns the accumulated set of ancestor IDs still missing,
// deduplicated in order of first discovery, or an error if any patch in
// the batch fails signature verification.
func (p *Peer) Integrate(ctx context.Context, batch []patch.Patch) ([]patch.ID, error) {
	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.IntegrateDuration)

	var missing patch.Deps
	current := batch

	for {
		changed := false
		for _, pch := range current {
			if err := pch.Verify(); err != nil {
				metrics.PatchesRejectedTotal.Inc()
				p.log.Warn(fmt.Sprintf("rejecting patch %s: %v", pch.ID(), err))
				return nil, fmt.Errorf("peer: integrate %s: %w", pch.ID(), err)
			}

			known, err := p.store.Contains(ctx, pch.ID())
			if err != nil {
				return nil, fmt.Errorf("peer: contains %s: %w", pch.ID(), err)
			}
			if known {
				continue
			}

			stashed := false
			unmet := 0
			for _, d := range pch.Deps() {
				integrated, err := p.store.IsIntegrated(ctx, d)
				if err != nil {
					return nil, fmt.Errorf("peer: is integrated %s: %w", d, err)
				}
				if !integrated {
					stashed = true
					unmet++
					if !missing.Contains(d) {
						missing = append(missing, d)
					}
				}
			}

			if stashed {
				if err := p.store.Stash(ctx, pch); err != nil {
					return nil, fmt.Errorf("peer: stash %s: %w", pch.ID(), err)
				}
				metrics.PatchesStashedTotal.Inc()
				p.log.Debug(fmt.Sprintf("stashed patch %s pending %d ancestor(s)", pch.ID(), unmet))
			} else {
				if err := p.store.Commit(ctx, pch); err != nil {
					return nil, fmt.Errorf("peer: commit %s: %w", pch.ID(), err)
				}
				metrics.PatchesCommittedTotal.Inc()
				p.log.Info(fmt.Sprintf("integrated patch %s", pch.ID()))
				changed = true
			}
		}

		if !changed {
			break
		}

		heads, err := p.store.Heads(ctx)
		if err != nil {
			return nil, fmt.Errorf("peer: refresh heads: %w", err)
		}
		p.heads = heads

		drained, err := p.store.Unstash(ctx)
		if err != nil {
			return nil, fmt.Errorf("peer: unstash: %w", err)
		}
		if len(drained) > 0 {
			p.log.Debug(fmt.Sprintf("unstashed %d patch(es) for another pass", len(drained)))
		}
		current = drained
	}

	// Drop ancestors that arrived later in this same call: only IDs still
	// outside the integrated set are reported as missing.
	stillMissing := make([]patch.ID, 0, len(missing))
	for _, id := range missing {
		integrated, err := p.store.IsIntegrated(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("peer: is integrated %s: %w", id, err)
		}
		if !integrated {
			stillMissing = append(stillMissing, id)
		}
	}
	return stillMissing, nil
}

// Missing reports the subset of heads this peer does not yet contain
// (in its integrated set or its stash). It is the reconciliation probe:
// "which of your heads am I missing?" It does not walk ancestors.
func (p *Peer) Missing(ctx context.Context, heads []patch.ID) ([]patch.ID, error) {
	var out []patch.ID
	for _, id := range heads {
		has, err := p.store.Contains(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("peer: contains %s: %w", id, err)
		}
		if !has {
			out = append(out, id)
		}
	}
	return out, nil
}

// Patches delegates to the backing store.
func (p *Peer) Patches(ctx context.Context, ids []patch.ID) ([]patch.Patch, error) {
	return p.store.Patches(ctx, ids)
}
