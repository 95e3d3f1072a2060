package liquid

import (
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/pkg/errors"
)

const (
	PublicKeyCompressedLength = 33
)

var (
	ErrNotOnCurve = errors.New("Point not on curve")
)

// PublicKey is an elliptic curve public key using the secp256k1 elliptic curve.
type PublicKey struct {
	X, Y big.Int
}

// PublicKeyFromStr converts compressed public key hex text to a key.
func PublicKeyFromStr(s string) (PublicKey, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return PublicKey{}, errors.Wrap(err, "hex")
	}

	return PublicKeyFromBytes(b)
}

// PublicKeyFromBytes decodes a compressed public key. The point is checked to be on the curve.
func PublicKeyFromBytes(b []byte) (PublicKey, error) {
	if len(b) != PublicKeyCompressedLength {
		return PublicKey{}, fmt.Errorf("Invalid public key length : got %d, want %d", len(b),
			PublicKeyCompressedLength)
	}

	pub, err := btcec.ParsePubKey(b)
	if err != nil {
		return PublicKey{}, errors.Wrap(ErrNotOnCurve, err.Error())
	}

	return PublicKey{X: *pub.X(), Y: *pub.Y()}, nil
}

// Bytes returns the compressed serialization of the key. One parity byte followed by the 32
// byte X coordinate.
func (k PublicKey) Bytes() []byte {
	result := make([]byte, PublicKeyCompressedLength)
	if k.Y.Bit(0) == 0 {
		result[0] = 0x02
	} else {
		result[0] = 0x03
	}
	k.X.FillBytes(result[1:])
	return result
}

// String returns the hex of the compressed key.
func (k PublicKey) String() string {
	return hex.EncodeToString(k.Bytes())
}

// Hash returns the hash160 of the compressed key.
func (k PublicKey) Hash() *Hash20 {
	return NewHash20FromData(k.Bytes())
}

// IsValid returns ErrNotOnCurve when the point is not on secp256k1.
func (k PublicKey) IsValid() error {
	if k.X.Sign() == 0 && k.Y.Sign() == 0 {
		return errors.Wrap(ErrNotOnCurve, "point at infinity")
	}
	if !curveS256.IsOnCurve(&k.X, &k.Y) {
		return ErrNotOnCurve
	}
	return nil
}

// IsEmpty returns true if the key is not set.
func (k PublicKey) IsEmpty() bool {
	return k.X.Sign() == 0 && k.Y.Sign() == 0
}

// Equal returns true if the keys are the same point.
func (k PublicKey) Equal(o PublicKey) bool {
	return k.X.Cmp(&o.X) == 0 && k.Y.Cmp(&o.Y) == 0
}

// BTCECKey returns the key as a btcec public key.
func (k PublicKey) BTCECKey() (*btcec.PublicKey, error) {
	return btcec.ParsePubKey(k.Bytes())
}

// MarshalJSON converts to json.
func (k PublicKey) MarshalJSON() ([]byte, error) {
	return []byte("\"" + k.String() + "\""), nil
}

// UnmarshalJSON converts from json.
func (k *PublicKey) UnmarshalJSON(data []byte) error {
	if len(data) < 2 {
		return fmt.Errorf("Too short for PublicKey data : %d", len(data))
	}

	nk, err := PublicKeyFromStr(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}

	*k = nk
	return nil
}
