package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateProducesAWorkingSigner(t *testing.T) {
	ks, err := Generate()
	require.NoError(t, err)

	p, err := ks.NewPatch(nil, []byte("hello"))
	require.NoError(t, err)
	assert.NoError(t, p.Verify())
	assert.Equal(t, ks.PeerID(), p.Author())
}

func TestSealOpenRoundTrip(t *testing.T) {
	ks, err := Generate()
	require.NoError(t, err)

	sealed, err := ks.Seal("correct horse battery staple")
	require.NoError(t, err)

	reopened, err := Open("correct horse battery staple", sealed)
	require.NoError(t, err)
	assert.Equal(t, ks.PeerID(), reopened.PeerID())

	p, err := reopened.NewPatch(nil, []byte("payload"))
	require.NoError(t, err)
	assert.NoError(t, p.Verify())
}

func TestOpenRejectsWrongPassphrase(t *testing.T) {
	ks, err := Generate()
	require.NoError(t, err)

	sealed, err := ks.Seal("right passphrase")
	require.NoError(t, err)

	_, err = Open("wrong passphrase", sealed)
	assert.Error(t, err)
}
