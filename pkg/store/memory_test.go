package store

import (
	"context"
	"crypto/ed25519"
	"testing"

	"github.com/latticewire/peerdag/pkg/patch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPatch(t *testing.T, key ed25519.PrivateKey, deps patch.Deps, payload string) patch.Patch {
	t.Helper()
	p, err := patch.New(key, deps, []byte(payload))
	require.NoError(t, err)
	return p
}

func TestMemoryCommitUpdatesHeads(t *testing.T) {
	ctx := context.Background()
	_, key, _ := ed25519.GenerateKey(nil)
	s := NewMemory()

	a := newPatch(t, key, nil, "A")
	require.NoError(t, s.Commit(ctx, a))

	heads, err := s.Heads(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []patch.ID{a.ID()}, heads)

	b := newPatch(t, key, patch.NewDeps(a.ID()), "B")
	require.NoError(t, s.Commit(ctx, b))

	heads, err = s.Heads(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []patch.ID{b.ID()}, heads, "A is no longer a head once B depends on it")
}

func TestMemoryCommitDuplicateFails(t *testing.T) {
	ctx := context.Background()
	_, key, _ := ed25519.GenerateKey(nil)
	s := NewMemory()

	a := newPatch(t, key, nil, "A")
	require.NoError(t, s.Commit(ctx, a))
	assert.ErrorIs(t, s.Commit(ctx, a), ErrDuplicate)
}

func TestMemoryStashAndUnstash(t *testing.T) {
	ctx := context.Background()
	_, key, _ := ed25519.GenerateKey(nil)
	s := NewMemory()

	e := newPatch(t, key, nil, "E")
	require.NoError(t, s.Stash(ctx, e))

	contains, err := s.Contains(ctx, e.ID())
	require.NoError(t, err)
	assert.True(t, contains)

	integrated, err := s.IsIntegrated(ctx, e.ID())
	require.NoError(t, err)
	assert.False(t, integrated)

	drained, err := s.Unstash(ctx)
	require.NoError(t, err)
	assert.Len(t, drained, 1)

	drainedAgain, err := s.Unstash(ctx)
	require.NoError(t, err)
	assert.Empty(t, drainedAgain, "unstash removes everything it returns")
}

func TestMemoryPatchesDropsUnknownIDs(t *testing.T) {
	ctx := context.Background()
	_, key, _ := ed25519.GenerateKey(nil)
	s := NewMemory()

	a := newPatch(t, key, nil, "A")
	require.NoError(t, s.Commit(ctx, a))

	var unknown patch.ID
	unknown[0] = 0xFF

	got, err := s.Patches(ctx, []patch.ID{a.ID(), unknown})
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, a.ID(), got[0].ID())
}
