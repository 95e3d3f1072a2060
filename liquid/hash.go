package liquid

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/pkg/errors"
	"golang.org/x/crypto/ripemd160"
)

const (
	Hash20Size = 20
	Hash32Size = 32
)

var (
	ErrWrongSize = errors.New("Wrong size")
)

// Ripemd160 returns the RIPEMD (RIPE Message Digest) of the input.
//
// See https://en.wikipedia.org/wiki/RIPEMD
func Ripemd160(b []byte) []byte {
	hasher := ripemd160.New()
	hasher.Write(b)
	return hasher.Sum(nil)
}

// Sha256 returns the SHA256 (Secure Hash Algorithm) of the input.
//
// See https://en.wikipedia.org/wiki/SHA-2
func Sha256(b []byte) []byte {
	result := sha256.Sum256(b)
	return result[:]
}

// Hash160 returns the Ripemd160(SHA256(input)) of the input. It is the commitment used in a
// version 0 witness program for a public key.
func Hash160(b []byte) []byte {
	return Ripemd160(Sha256(b))
}

// DoubleSha256 performs a double Sha256 hash on the bytes.
func DoubleSha256(b []byte) []byte {
	return Sha256(Sha256(b))
}

// Hash20 is a 20 byte hash, as committed to by a P2WPKH witness program.
type Hash20 [Hash20Size]byte

func NewHash20(b []byte) (*Hash20, error) {
	if len(b) != Hash20Size {
		return nil, errors.Wrapf(ErrWrongSize, "got %d, want %d", len(b), Hash20Size)
	}
	result := Hash20{}
	copy(result[:], b)
	return &result, nil
}

// NewHash20FromStr creates a hash from hex text. Witness program hashes are displayed in the
// same byte order they are serialized.
func NewHash20FromStr(s string) (*Hash20, error) {
	if len(s) != 2*Hash20Size {
		return nil, errors.Wrapf(ErrWrongSize, "hex: got %d, want %d", len(s), Hash20Size*2)
	}

	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.Wrap(err, "hex")
	}

	return NewHash20(b)
}

// NewHash20FromData creates a Hash20 by hashing the data with a Ripemd160(Sha256(b))
func NewHash20FromData(b []byte) *Hash20 {
	result := Hash20{}
	copy(result[:], Hash160(b))
	return &result
}

// Bytes returns the data for the hash.
func (h Hash20) Bytes() []byte {
	return h[:]
}

// String returns the hex for the hash.
func (h Hash20) String() string {
	return fmt.Sprintf("%x", h[:])
}

// Equal returns true if the parameter has the same value.
func (h *Hash20) Equal(o *Hash20) bool {
	if h == nil {
		return o == nil
	}
	if o == nil {
		return false
	}
	return bytes.Equal(h[:], o[:])
}

// MarshalText returns the text encoding of the hash.
func (h Hash20) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalText parses a text encoded hash and sets the value of this object.
func (h *Hash20) UnmarshalText(text []byte) error {
	nh, err := NewHash20FromStr(string(text))
	if err != nil {
		return err
	}

	*h = *nh
	return nil
}
