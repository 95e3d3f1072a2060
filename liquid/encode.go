package liquid

import (
	"bytes"

	"github.com/btcsuite/btcutil/base58"
	"github.com/pkg/errors"
)

var (
	ErrBadChecksum = errors.New("Bad checksum")
)

// Base58 return the Base58 encoding of the input.
//
// See https://en.wikipedia.org/wiki/Base58
func Base58(b []byte) string {
	return base58.Encode(b)
}

// Base58Decode returns base 58 decodes the argument and returns the result.
func Base58Decode(s string) []byte {
	return base58.Decode(s)
}

// encodeBase58Check appends the first 4 bytes of the double SHA-256 of the data and encodes the
// result with Base58.
func encodeBase58Check(b []byte) string {
	checksum := DoubleSha256(b)

	data := make([]byte, 0, len(b)+4)
	data = append(data, b...)
	data = append(data, checksum[:4]...)
	return Base58(data)
}

// decodeBase58Check decodes Base58 text and verifies and removes the 4 byte checksum.
func decodeBase58Check(s string) ([]byte, error) {
	b := Base58Decode(s)

	if len(b) < 5 {
		return nil, errors.Wrap(ErrBadChecksum, "too short")
	}

	checksum := DoubleSha256(b[:len(b)-4])
	if !bytes.Equal(checksum[:4], b[len(b)-4:]) {
		return nil, ErrBadChecksum
	}

	return b[:len(b)-4], nil
}
