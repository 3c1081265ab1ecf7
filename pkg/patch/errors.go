package patch

import "errors"

// Error kinds the core distinguishes, per the replication protocol's error
// taxonomy: verification failures are fatal to the call that surfaced them,
// malformed-wire errors are fatal to the decode that produced them.
var (
	// ErrVerification is returned when a patch's signature does not verify
	// under its claimed author key.
	ErrVerification = errors.New("patch: signature verification failed")

	// ErrMalformed is returned when binary framing or an ID/PeerID/Signature
	// value cannot be parsed: truncated input, a length field that overruns
	// the buffer, or a fixed-size field of the wrong length.
	ErrMalformed = errors.New("patch: malformed encoding")
)
