// Package identity manages a peer's Ed25519 signing key.
//
// A Keystore holds the keypair used to author patches. The private key
// never leaves the package: callers get a PeerID and a NewPatch method,
// never the raw key material itself. At rest the private key is sealed
// with AES-256-GCM under a key derived from a passphrase using the same
// SHA-256-derived-key pattern used elsewhere for cluster secrets.
package identity
