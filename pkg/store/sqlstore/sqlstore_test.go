package sqlstore

import (
	"context"
	"crypto/ed25519"
	"testing"

	"github.com/latticewire/peerdag/pkg/patch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()
	// A private, named in-memory database per test: the bare ":memory:" DSN
	// would be fine too, but this form matches how the driver is exercised
	// with file-backed stores elsewhere in the module.
	s, err := Open(ctx, "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func signedPatch(t *testing.T, key ed25519.PrivateKey, deps patch.Deps, payload string) patch.Patch {
	t.Helper()
	p, err := patch.New(key, deps, []byte(payload))
	require.NoError(t, err)
	return p
}

func TestStoreCommitAndHeads(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	_, key, _ := ed25519.GenerateKey(nil)

	a := signedPatch(t, key, nil, "A")
	require.NoError(t, s.Commit(ctx, a))

	heads, err := s.Heads(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []patch.ID{a.ID()}, heads)

	b := signedPatch(t, key, patch.NewDeps(a.ID()), "B")
	require.NoError(t, s.Commit(ctx, b))

	heads, err = s.Heads(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []patch.ID{b.ID()}, heads)
}

func TestStorePatchesRehydratesDeps(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	_, key, _ := ed25519.GenerateKey(nil)

	a := signedPatch(t, key, nil, "A")
	b := signedPatch(t, key, nil, "B")
	c := signedPatch(t, key, patch.NewDeps(a.ID(), b.ID()), "C")
	require.NoError(t, s.Commit(ctx, a))
	require.NoError(t, s.Commit(ctx, b))
	require.NoError(t, s.Commit(ctx, c))

	got, err := s.Patches(ctx, []patch.ID{c.ID()})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Deps().Equal(c.Deps()))
	assert.NoError(t, got[0].Verify())
}

func TestStoreCommitMissingParentFails(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	_, key, _ := ed25519.GenerateKey(nil)

	var ghost patch.ID
	ghost[0] = 0x42
	orphan := signedPatch(t, key, patch.NewDeps(ghost), "orphan")

	err := s.Commit(ctx, orphan)
	assert.Error(t, err)

	integrated, err := s.IsIntegrated(ctx, orphan.ID())
	require.NoError(t, err)
	assert.False(t, integrated, "a failed commit must not leave a partial row behind")
}

func TestStoreStashRoundTripsDepsOrder(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	_, key, _ := ed25519.GenerateKey(nil)

	var p1, p2, p3 patch.ID
	p1[0], p2[0], p3[0] = 1, 2, 3
	orphan := signedPatch(t, key, patch.Deps{p3, p1, p2}, "orphan")

	require.NoError(t, s.Stash(ctx, orphan))

	contains, err := s.Contains(ctx, orphan.ID())
	require.NoError(t, err)
	assert.True(t, contains)

	drained, err := s.Unstash(ctx)
	require.NoError(t, err)
	require.Len(t, drained, 1)
	assert.Equal(t, orphan.Deps(), drained[0].Deps(), "stash preserves dep order exactly")

	drainedAgain, err := s.Unstash(ctx)
	require.NoError(t, err)
	assert.Empty(t, drainedAgain)
}
