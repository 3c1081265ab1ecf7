package reconcile_test

import (
	"context"
	"testing"

	"github.com/latticewire/peerdag/pkg/identity"
	"github.com/latticewire/peerdag/pkg/patch"
	"github.com/latticewire/peerdag/pkg/peer"
	"github.com/latticewire/peerdag/pkg/reconcile"
	"github.com/latticewire/peerdag/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPeer(t *testing.T, signer identity.Signer) *peer.Peer {
	t.Helper()
	p, err := peer.New(context.Background(), signer, store.NewMemory())
	require.NoError(t, err)
	return p
}

// peerEndpoint lets a *peer.Peer serve as a Fetcher: Peer.Heads takes no
// context and returns no error, so it is adapted here.
type peerEndpoint struct {
	*peer.Peer
}

func (e peerEndpoint) Heads(_ context.Context) ([]patch.ID, error) {
	return e.Peer.Heads(), nil
}

func TestSyncPullsMissingChain(t *testing.T) {
	ctx := context.Background()
	signer, err := identity.Generate()
	require.NoError(t, err)

	source := newPeer(t, signer)
	a, err := source.Commit(ctx, []byte("A"))
	require.NoError(t, err)
	b, err := source.Commit(ctx, []byte("B"))
	require.NoError(t, err)

	dest := newPeer(t, signer)
	require.NoError(t, reconcile.Sync(ctx, dest, peerEndpoint{source}))

	assert.Equal(t, []patch.ID{b.ID()}, dest.Heads())
	got, err := dest.Patches(ctx, []patch.ID{a.ID(), b.ID()})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestBisyncConvergesBothDirections(t *testing.T) {
	ctx := context.Background()
	signer, err := identity.Generate()
	require.NoError(t, err)

	base := newPeer(t, signer)
	a, err := base.Commit(ctx, []byte("A"))
	require.NoError(t, err)

	p1 := newPeer(t, signer)
	require.NoError(t, reconcile.Sync(ctx, p1, peerEndpoint{base}))
	p2 := newPeer(t, signer)
	require.NoError(t, reconcile.Sync(ctx, p2, peerEndpoint{base}))

	g, err := p1.Commit(ctx, []byte("G"))
	require.NoError(t, err)
	h, err := p2.Commit(ctx, []byte("H"))
	require.NoError(t, err)

	require.NoError(t, reconcile.Bisync(ctx, peerEndpoint{p1}, peerEndpoint{p2}))

	allIDs := []patch.ID{a.ID(), g.ID(), h.ID()}
	p1Patches, err := p1.Patches(ctx, allIDs)
	require.NoError(t, err)
	p2Patches, err := p2.Patches(ctx, allIDs)
	require.NoError(t, err)
	assert.Len(t, p1Patches, 3)
	assert.Len(t, p2Patches, 3)
}

func TestSyncIsANoOpWhenAlreadyCurrent(t *testing.T) {
	ctx := context.Background()
	signer, err := identity.Generate()
	require.NoError(t, err)

	p1 := newPeer(t, signer)
	_, err = p1.Commit(ctx, []byte("A"))
	require.NoError(t, err)

	p2 := newPeer(t, signer)
	require.NoError(t, reconcile.Sync(ctx, p2, peerEndpoint{p1}))
	require.NoError(t, reconcile.Sync(ctx, p2, peerEndpoint{p1}), "a second sync against an unchanged remote must still succeed with nothing to do")
}
