package patch

import (
	"bytes"
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) ed25519.PrivateKey {
	t.Helper()
	_, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	return priv
}

func TestNewDerivesContentAddressedID(t *testing.T) {
	key := generateKey(t)
	p, err := New(key, nil, []byte("hello world"))
	require.NoError(t, err)

	assert.Equal(t, p.hash(), p.ID(), "ID must equal BLAKE3(author || deps || payload)")
	assert.NoError(t, p.Verify())
}

func TestRoundTripWriteRead(t *testing.T) {
	key := generateKey(t)
	a, err := New(key, nil, []byte("A"))
	require.NoError(t, err)
	b, err := New(key, NewDeps(a.ID()), []byte("B"))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, b.Write(&buf))

	decoded, err := Read(&buf)
	require.NoError(t, err)

	assert.True(t, Equal(b, decoded))
	assert.NoError(t, decoded.Verify())
	assert.Equal(t, b.Deps(), decoded.Deps(), "parent order must survive the wire unchanged")
}

func TestTamperedPayloadFailsVerification(t *testing.T) {
	key := generateKey(t)
	p, err := New(key, nil, []byte("hello world"))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, p.Write(&buf))
	raw := buf.Bytes()

	// Flip one byte inside the payload region (after deps_len, data_len,
	// sig, author, deps — here deps is empty, so payload starts right
	// after author).
	payloadOffset := len(raw) - len(p.Payload())
	raw[payloadOffset] ^= 0xFF

	decoded, err := Read(bytes.NewReader(raw))
	require.NoError(t, err, "Read only parses framing; it does not verify")

	assert.NotEqual(t, p.ID(), decoded.ID(), "tampering changes the recomputed ID")
	assert.Error(t, decoded.Verify(), "and the signature no longer matches the mutated payload")
}

func TestEqualityIgnoresDepsOrder(t *testing.T) {
	key := generateKey(t)
	a, err := New(key, nil, []byte("A"))
	require.NoError(t, err)
	b, err := New(key, nil, []byte("B"))
	require.NoError(t, err)
	c, err := New(key, nil, []byte("C"))
	require.NoError(t, err)

	p1 := FromParts(c.ID(), Deps{a.ID(), b.ID()}, c.Author(), c.Signature(), c.Payload())
	p2 := FromParts(c.ID(), Deps{b.ID(), a.ID()}, c.Author(), c.Signature(), c.Payload())

	assert.True(t, Equal(p1, p2))
}

func TestNewDedupsAndPreservesFirstSeenOrder(t *testing.T) {
	key := generateKey(t)
	a, err := New(key, nil, []byte("A"))
	require.NoError(t, err)
	b, err := New(key, nil, []byte("B"))
	require.NoError(t, err)

	p, err := New(key, Deps{a.ID(), b.ID(), a.ID()}, []byte("C"))
	require.NoError(t, err)

	assert.Equal(t, Deps{a.ID(), b.ID()}, p.Deps())
}
