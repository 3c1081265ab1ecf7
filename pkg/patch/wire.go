package patch

import (
	"io"
)

// Write serializes p using the wire framing:
//
//	deps_len   unsigned LEB128 varint (u32 range)
//	data_len   unsigned LEB128 varint (u32 range)
//	signature  64 bytes (R component, then S component)
//	author     32 bytes
//	deps       deps_len * 32 bytes, in the order recorded at construction
//	payload    data_len bytes
//
// The ID is never transmitted; Read recomputes it from the other fields.
func (p Patch) Write(w io.Writer) error {
	if err := writeUvarint(w, uint32(len(p.deps))); err != nil {
		return err
	}
	if err := writeUvarint(w, uint32(len(p.payload))); err != nil {
		return err
	}
	if _, err := w.Write(p.sig[:32]); err != nil { // R component
		return err
	}
	if _, err := w.Write(p.sig[32:]); err != nil { // S component
		return err
	}
	if _, err := w.Write(p.author[:]); err != nil {
		return err
	}
	for _, d := range p.deps {
		if _, err := w.Write(d[:]); err != nil {
			return err
		}
	}
	if _, err := w.Write(p.payload); err != nil {
		return err
	}
	return nil
}

// Read parses the wire framing written by Write and recomputes the ID from
// the parsed fields. It does NOT verify the signature — callers must call
// Verify before trusting the result (this is the at-rest-trust boundary the
// core enforces: a parsed Patch is only as trustworthy as its signature).
func Read(r io.Reader) (Patch, error) {
	depsLen, err := readUvarint(r)
	if err != nil {
		return Patch{}, err
	}
	dataLen, err := readUvarint(r)
	if err != nil {
		return Patch{}, err
	}

	var sig Signature
	if _, err := io.ReadFull(r, sig[:32]); err != nil {
		return Patch{}, ErrMalformed
	}
	if _, err := io.ReadFull(r, sig[32:]); err != nil {
		return Patch{}, ErrMalformed
	}

	var author PeerID
	if _, err := io.ReadFull(r, author[:]); err != nil {
		return Patch{}, ErrMalformed
	}

	deps := make(Deps, 0, depsLen)
	for i := uint32(0); i < depsLen; i++ {
		var d ID
		if _, err := io.ReadFull(r, d[:]); err != nil {
			return Patch{}, ErrMalformed
		}
		deps = append(deps, d)
	}

	payload := make([]byte, dataLen)
	if dataLen > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			return Patch{}, ErrMalformed
		}
	}

	p := Patch{deps: deps, author: author, sig: sig, payload: payload}
	p.id = p.hash()
	return p, nil
}

// writeUvarint encodes x as an unsigned LEB128 varint.
func writeUvarint(w io.Writer, x uint32) error {
	var buf [5]byte
	n := 0
	for x >= 0x80 {
		buf[n] = byte(x) | 0x80
		x >>= 7
		n++
	}
	buf[n] = byte(x)
	n++
	_, err := w.Write(buf[:n])
	return err
}

// readUvarint decodes an unsigned LEB128 varint, bounded to u32 range.
func readUvarint(r io.Reader) (uint32, error) {
	var result uint32
	var shift uint
	var b [1]byte
	for {
		if shift >= 35 {
			return 0, ErrMalformed
		}
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return 0, ErrMalformed
		}
		result |= uint32(b[0]&0x7f) << shift
		if b[0]&0x80 == 0 {
			break
		}
		shift += 7
	}
	return result, nil
}
