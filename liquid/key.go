package liquid

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/pkg/errors"
)

const (
	KeyLength = 32

	// maxGenerateAttempts is the number of consecutive out of range candidates accepted from a
	// random source before it is considered broken. A healthy source produces an out of range
	// value with probability below 2^-127.
	maxGenerateAttempts = 16

	compressedFlag = 0x01
)

var (
	curveS256       = btcec.S256()
	curveS256Params = curveS256.Params()

	ErrEntropyUnavailable = errors.New("Entropy unavailable")
	ErrInvalidKey         = errors.New("Invalid key")
	ErrBadKeyType         = errors.New("Key type unknown")
	ErrBadKeyLength       = errors.New("Key has invalid length")
)

// Key is an elliptic curve private key using the secp256k1 elliptic curve.
type Key struct {
	value big.Int
	net   Network
}

// GenerateKey randomly generates a new key using the operating system's secure random source.
func GenerateKey(net Network) (Key, error) {
	return GenerateKeyFromReader(rand.Reader, net)
}

// GenerateKeyFromReader generates a new key with random data from r. r must be a
// cryptographically secure source. A read failure is returned as ErrEntropyUnavailable and
// no other source is tried.
func GenerateKeyFromReader(r io.Reader, net Network) (Key, error) {
	if !net.IsValid() {
		return Key{}, errors.Wrapf(ErrUnsupportedNetwork, "network 0x%08x", uint32(net))
	}

	var b [KeyLength]byte
	defer zero(b[:])

	for i := 0; i < maxGenerateAttempts; i++ {
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return Key{}, errors.Wrap(ErrEntropyUnavailable, err.Error())
		}

		if privateKeyIsValid(b[:]) != nil {
			continue // out of range, draw again
		}

		result := Key{net: net}
		result.value.SetBytes(b[:])
		return result, nil
	}

	return Key{}, errors.Wrapf(ErrEntropyUnavailable, "%d out of range values",
		maxGenerateAttempts)
}

// KeyFromStr converts WIF (Wallet Import Format) key text to a key.
func KeyFromStr(s string) (Key, error) {
	b, err := decodeBase58Check(s)
	if err != nil {
		return Key{}, errors.Wrap(err, "base58")
	}

	var net Network
	switch b[0] {
	case MainNetParams.PrivateKeyID:
		net = MainNet
	case TestNetParams.PrivateKeyID: // shared by all test networks
		net = TestNet
	default:
		return Key{}, errors.Wrapf(ErrBadKeyType, "0x%02x", b[0])
	}

	switch len(b) {
	case 2 + KeyLength:
		if b[len(b)-1] != compressedFlag {
			return Key{}, fmt.Errorf("Key not for compressed public key : %x", b[len(b)-1:])
		}
		return KeyFromNumber(b[1:1+KeyLength], net)
	case 1 + KeyLength:
		return KeyFromNumber(b[1:], net)
	}

	return Key{}, errors.Wrapf(ErrBadKeyLength, "WIF payload length %d", len(b))
}

// KeyFromNumber creates a key from a 32 byte big endian representation of the scalar.
func KeyFromNumber(b []byte, net Network) (Key, error) {
	if len(b) != KeyLength {
		return Key{}, errors.Wrapf(ErrBadKeyLength, "got %d, want %d", len(b), KeyLength)
	}
	if err := privateKeyIsValid(b); err != nil {
		return Key{}, err
	}

	result := Key{net: net}
	result.value.SetBytes(b)
	return result, nil
}

// String returns the key in WIF: the network version byte, the 32 byte scalar and the
// compressed public key flag followed by a checksum, encoded with Base58.
func (k Key) String() string {
	version, err := wifVersion(k.net)
	if err != nil {
		return ""
	}

	b := make([]byte, 0, 2+KeyLength)
	b = append(b, version)
	b = append(b, k.Number()...)
	b = append(b, compressedFlag)
	return encodeBase58Check(b)
}

// Network returns the network the key was created for.
func (k Key) Network() Network {
	return k.net
}

// Number returns 32 bytes representing the 256 bit big-endian integer of the private key.
func (k Key) Number() []byte {
	b := make([]byte, KeyLength)
	return k.value.FillBytes(b)
}

// IsEmpty returns true if the value is zero.
func (k Key) IsEmpty() bool {
	return k.value.Sign() == 0
}

// Validate returns ErrInvalidKey if the scalar is zero or not below the curve order.
func (k Key) Validate() error {
	if k.value.Sign() <= 0 || k.value.Cmp(curveS256Params.N) >= 0 {
		return ErrInvalidKey
	}
	return nil
}

// Equal returns true if the keys have the same scalar.
func (k Key) Equal(o Key) bool {
	return k.value.Cmp(&o.value) == 0
}

// PublicKey returns the public key. The key must be valid.
func (k Key) PublicKey() PublicKey {
	x, y := curveS256.ScalarBaseMult(k.Number())
	return PublicKey{X: *x, Y: *y}
}

// BTCECKey returns the key as a btcec private key, for use with btcsuite signing code.
func (k Key) BTCECKey() *btcec.PrivateKey {
	privateKey, _ := btcec.PrivKeyFromBytes(k.Number())
	return privateKey
}

// Address returns the P2WPKH address for the key on its own network.
func (k Key) Address() (Address, error) {
	address, _, err := Encode(k, k.net)
	return address, err
}

// MarshalJSON converts to json.
func (k Key) MarshalJSON() ([]byte, error) {
	return []byte("\"" + k.String() + "\""), nil
}

// UnmarshalJSON converts from json.
func (k *Key) UnmarshalJSON(data []byte) error {
	if len(data) < 2 {
		return fmt.Errorf("Too short for Key data : %d", len(data))
	}

	nk, err := KeyFromStr(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}

	*k = nk
	return nil
}

func privateKeyIsValid(b []byte) error {
	var value big.Int
	value.SetBytes(b)

	if value.Sign() == 0 {
		return errors.Wrap(ErrInvalidKey, "zero")
	}

	if value.Cmp(curveS256Params.N) >= 0 {
		return errors.Wrap(ErrInvalidKey, "not below curve order")
	}

	return nil
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
