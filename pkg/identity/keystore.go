/*
Package identity owns a peer's Ed25519 signing identity: generating a
keypair, persisting the private key to disk under AES-256-GCM encryption,
and reloading it on the next start. The encryption scheme is adapted from
the cluster SecretsManager a container orchestrator would use to protect
shared secrets; here it protects exactly one thing, the signing key, under
a key derived from an operator-supplied passphrase rather than a shared
cluster ID.
*/
package identity

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"github.com/latticewire/peerdag/pkg/patch"
)

// Signer is the capability a Peer needs from an identity: something that
// can author a signed Patch and report its own PeerID. The private key
// never crosses this interface boundary; NewPatch does the signing
// internally so a Peer holding a Signer can never log or serialize the
// key material it authenticates with.
type Signer interface {
	PeerID() patch.PeerID
	NewPatch(deps patch.Deps, payload []byte) (patch.Patch, error)
}

// Keystore holds a single Ed25519 keypair in memory and satisfies Signer.
type Keystore struct {
	pub  ed25519.PublicKey
	priv ed25519.PrivateKey
}

// Generate creates a fresh random Ed25519 keypair.
func Generate() (*Keystore, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("identity: generate keypair: %w", err)
	}
	return &Keystore{pub: pub, priv: priv}, nil
}

func (k *Keystore) PeerID() patch.PeerID {
	id, _ := patch.PeerIDFromBytes(k.pub)
	return id
}

// NewPatch authors and signs a new Patch over payload with the given
// parent deps, using the keystore's private key.
func (k *Keystore) NewPatch(deps patch.Deps, payload []byte) (patch.Patch, error) {
	return patch.New(k.priv, deps, payload)
}

// Seal encrypts the private key under passphrase, for writing to disk.
// The returned blob is self-contained: a random nonce followed by the
// AES-256-GCM sealed key material.
func (k *Keystore) Seal(passphrase string) ([]byte, error) {
	return encrypt(deriveKey(passphrase), k.priv)
}

// Open decrypts a blob produced by Seal and reconstructs the Keystore.
func Open(passphrase string, sealed []byte) (*Keystore, error) {
	raw, err := decrypt(deriveKey(passphrase), sealed)
	if err != nil {
		return nil, fmt.Errorf("identity: open keystore: %w", err)
	}
	if len(raw) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("identity: decrypted key has wrong length %d", len(raw))
	}
	priv := ed25519.PrivateKey(raw)
	pub, ok := priv.Public().(ed25519.PublicKey)
	if !ok {
		return nil, fmt.Errorf("identity: decrypted key has no recoverable public half")
	}
	return &Keystore{pub: pub, priv: priv}, nil
}

// deriveKey derives a 32-byte AES-256 key from passphrase, the same
// SHA-256-of-input scheme used to derive a cluster encryption key from a
// cluster ID.
func deriveKey(passphrase string) []byte {
	sum := sha256.Sum256([]byte(passphrase))
	return sum[:]
}

func encrypt(key, plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("identity: new cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("identity: new gcm: %w", err)
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("identity: generate nonce: %w", err)
	}
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decrypt(key, ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("identity: new cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("identity: new gcm: %w", err)
	}
	nonceSize := gcm.NonceSize()
	if len(ciphertext) < nonceSize {
		return nil, fmt.Errorf("identity: ciphertext too short")
	}
	nonce, body := ciphertext[:nonceSize], ciphertext[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, body, nil)
	if err != nil {
		return nil, fmt.Errorf("identity: decrypt: %w", err)
	}
	return plaintext, nil
}
