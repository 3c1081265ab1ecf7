package reconcile

import (
	"context"
	"errors"
	"fmt"

	"github.com/latticewire/peerdag/pkg/log"
	"github.com/latticewire/peerdag/pkg/metrics"
	"github.com/latticewire/peerdag/pkg/patch"
	"github.com/rs/zerolog"
)

// ErrNoProgress is returned by Sync when two consecutive rounds produce the
// identical non-empty missing set. The core contract only requires the
// driver to loop until missing is empty; a remote that keeps returning
// fewer patches than requested would otherwise spin forever. This guard is
// a redesign this module opts into rather than a requirement.
var ErrNoProgress = errors.New("reconcile: no progress made fetching missing patches")

// Integrator is the local half of the driver: whatever can report which of
// a head set it is missing, accept a batch for integration, and hand back
// the subset still outstanding. *peer.Peer satisfies this.
type Integrator interface {
	Missing(ctx context.Context, heads []patch.ID) ([]patch.ID, error)
	Integrate(ctx context.Context, batch []patch.Patch) ([]patch.ID, error)
}

// Fetcher is the remote-facing half of the driver: something that can
// report its own head set and serve patches by ID. *sqlstore.Store
// satisfies this directly. *peer.Peer does not: its Heads takes no context
// and returns no error, so using a Peer here (for example to Bisync two
// local Peer values without a network in between) takes a small wrapper
// whose Heads(ctx) returns the Peer's Heads() and a nil error.
type Fetcher interface {
	Heads(ctx context.Context) ([]patch.ID, error)
	Patches(ctx context.Context, ids []patch.ID) ([]patch.Patch, error)
}

// Sync pulls every patch local is missing from f's head set: probe
// missing heads, fetch, integrate, repeat until nothing is missing. It
// returns ErrNoProgress if a round's missing set is identical to the
// previous round's (and non-empty), rather than looping forever against
// an adversarial or simply lagging remote.
func Sync(ctx context.Context, local Integrator, remote Fetcher) error {
	logger := log.WithComponent("reconcile")
	timer := metrics.NewTimer()
	defer func() {
		timer.ObserveDuration(metrics.ReconciliationDuration)
		metrics.ReconciliationCyclesTotal.Inc()
	}()

	remoteHeads, err := remote.Heads(ctx)
	if err != nil {
		return fmt.Errorf("reconcile: fetch remote heads: %w", err)
	}

	need, err := local.Missing(ctx, remoteHeads)
	if err != nil {
		return fmt.Errorf("reconcile: compute missing: %w", err)
	}

	var previous []patch.ID
	for len(need) > 0 {
		if sameIDs(need, previous) {
			return ErrNoProgress
		}
		previous = need

		batch, err := remote.Patches(ctx, need)
		if err != nil {
			return fmt.Errorf("reconcile: fetch patches: %w", err)
		}
		logInfof(logger, "fetched %d patch(es), %d still missing before integrate", len(batch), len(need))

		need, err = local.Integrate(ctx, batch)
		if err != nil {
			return fmt.Errorf("reconcile: integrate batch: %w", err)
		}
	}

	return nil
}

// Bisync runs Sync in both directions between two peer-shaped endpoints
// that each satisfy Integrator and Fetcher, a symmetric full sync. There
// is no ordering requirement between the two directions; Bisync simply
// runs local-from-remote first, then remote-from-local.
func Bisync(ctx context.Context, a, b interface {
	Integrator
	Fetcher
}) error {
	if err := Sync(ctx, a, b); err != nil {
		return fmt.Errorf("reconcile: bisync a<-b: %w", err)
	}
	if err := Sync(ctx, b, a); err != nil {
		return fmt.Errorf("reconcile: bisync b<-a: %w", err)
	}
	return nil
}

func sameIDs(a, b []patch.ID) bool {
	if len(a) != len(b) || len(a) == 0 {
		return false
	}
	set := make(map[patch.ID]struct{}, len(b))
	for _, id := range b {
		set[id] = struct{}{}
	}
	for _, id := range a {
		if _, ok := set[id]; !ok {
			return false
		}
	}
	return true
}

func logInfof(logger zerolog.Logger, format string, args ...interface{}) {
	logger.Info().Msg(fmt.Sprintf(format, args...))
}
