package patch

import (
	"crypto/ed25519"
	"encoding/hex"
)

// IDSize is the length in bytes of a PatchID: a BLAKE3 digest.
const IDSize = 32

// PeerIDSize is the length in bytes of a PeerID: an Ed25519 public key.
const PeerIDSize = ed25519.PublicKeySize

// SignatureSize is the length in bytes of an Ed25519 signature.
const SignatureSize = ed25519.SignatureSize

// ID is the content-derived identity of a Patch: BLAKE3(author || deps || payload).
type ID [IDSize]byte

// ZeroID is the ID value of an unset/default Patch.
var ZeroID ID

func (id ID) String() string {
	return hex.EncodeToString(id[:])
}

// Bytes returns the raw digest bytes.
func (id ID) Bytes() []byte {
	return id[:]
}

// IDFromBytes copies b into an ID. b must be exactly IDSize bytes.
func IDFromBytes(b []byte) (ID, error) {
	var id ID
	if len(b) != IDSize {
		return id, ErrMalformed
	}
	copy(id[:], b)
	return id, nil
}

// PeerID is the author identity of a Patch: an Ed25519 public key.
type PeerID [PeerIDSize]byte

func (p PeerID) String() string {
	return hex.EncodeToString(p[:])
}

// Bytes returns the raw public key bytes.
func (p PeerID) Bytes() []byte {
	return p[:]
}

// PeerIDFromBytes copies b into a PeerID. b must be exactly PeerIDSize bytes.
func PeerIDFromBytes(b []byte) (PeerID, error) {
	var p PeerID
	if len(b) != PeerIDSize {
		return p, ErrMalformed
	}
	copy(p[:], b)
	return p, nil
}

// Signature is a raw Ed25519 signature over a Patch's payload.
type Signature [SignatureSize]byte

func (s Signature) Bytes() []byte {
	return s[:]
}

// SignatureFromBytes copies b into a Signature. b must be exactly SignatureSize bytes.
func SignatureFromBytes(b []byte) (Signature, error) {
	var s Signature
	if len(b) != SignatureSize {
		return s, ErrMalformed
	}
	copy(s[:], b)
	return s, nil
}
