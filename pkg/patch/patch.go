/*
Package patch implements the immutable, content-addressed unit of change
exchanged between peers.

A Patch binds an author's Ed25519 signature over an opaque payload to a set
of parent PatchIDs, then derives its own identity by hashing all three
together with BLAKE3. The derivation is one-directional: New always
recomputes the ID from its inputs, and Read always recomputes the ID from
the wire bytes it parses, so a Patch can never be mutated into holding a
stale ID.

	author ‖ parent₁ ‖ … ‖ parentₙ ‖ payload  --BLAKE3-->  ID

Deps are a set (equality ignores order) but the hash above is computed over
deps in the author's recorded order — reshuffling them on the wire or after
deserialization would silently change what future readers compute as the ID.
*/
package patch

import (
	"crypto/ed25519"

	"lukechampine.com/blake3"
)

// Patch is an immutable, signed unit of change. Zero value is not useful;
// construct Patches with New or Read.
type Patch struct {
	id      ID
	deps    Deps
	author  PeerID
	sig     Signature
	payload []byte
}

// New authors a Patch: it canonicalizes deps (dedup, first-seen order),
// signs payload with signingKey, and derives the ID from the result.
func New(signingKey ed25519.PrivateKey, deps Deps, payload []byte) (Patch, error) {
	pub, ok := signingKey.Public().(ed25519.PublicKey)
	if !ok || len(pub) != PeerIDSize {
		return Patch{}, ErrMalformed
	}
	var author PeerID
	copy(author[:], pub)

	canonicalDeps := NewDeps(deps...)

	data := make([]byte, len(payload))
	copy(data, payload)

	sigBytes := ed25519.Sign(signingKey, data)
	var sig Signature
	copy(sig[:], sigBytes)

	p := Patch{
		deps:    canonicalDeps,
		author:  author,
		sig:     sig,
		payload: data,
	}
	p.id = p.hash()
	return p, nil
}

// hash computes BLAKE3(author || deps in order || payload).
func (p Patch) hash() ID {
	h := blake3.New(IDSize, nil)
	h.Write(p.author[:])
	for _, d := range p.deps {
		h.Write(d[:])
	}
	h.Write(p.payload)
	var id ID
	copy(id[:], h.Sum(nil))
	return id
}

// Verify checks the Ed25519 signature against the author key and payload.
// It does not recompute or check the ID; callers that parsed a Patch from
// an untrusted source via Read MUST call Verify before trusting it.
func (p Patch) Verify() error {
	if !ed25519.Verify(ed25519.PublicKey(p.author[:]), p.payload, p.sig[:]) {
		return ErrVerification
	}
	return nil
}

// ID returns the patch's content-derived identity.
func (p Patch) ID() ID { return p.id }

// Deps returns the patch's direct ancestors, in the author's recorded order.
func (p Patch) Deps() Deps { return p.deps }

// Author returns the patch's author.
func (p Patch) Author() PeerID { return p.author }

// Signature returns the raw Ed25519 signature over the payload.
func (p Patch) Signature() Signature { return p.sig }

// Payload returns the opaque payload bytes. The core never interprets them.
func (p Patch) Payload() []byte { return p.payload }

// withDeps returns a copy of p with its deps replaced. Nothing in the module
// calls it; the store backends rebuild Patches through FromParts instead.
// It does not touch the ID: the ID was already computed and persisted at
// commit time and is trusted here, not recomputed.
func (p Patch) withDeps(deps Deps) Patch {
	p.deps = deps
	return p
}

// FromParts reconstructs a Patch from already-validated components, for use
// by object store backends loading rows they previously wrote themselves.
// It trusts id rather than recomputing it; callers reading from untrusted
// sources (the wire, a remote peer) must use Read instead.
func FromParts(id ID, deps Deps, author PeerID, sig Signature, payload []byte) Patch {
	return Patch{id: id, deps: deps, author: author, sig: sig, payload: payload}
}

// Equal reports whether a and b share an ID and an order-insensitive deps
// set. Two Patches built from identical bytes but carrying their deps in
// different in-memory order (e.g. one read from the wire, one rehydrated
// from a relational store) are still Equal.
func Equal(a, b Patch) bool {
	return a.id == b.id && a.deps.Equal(b.deps)
}
