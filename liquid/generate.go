package liquid

import (
	"crypto/rand"
	"io"

	"github.com/pkg/errors"
)

// Generated is a newly generated key with its derived public key and address.
type Generated struct {
	Key       Key       `json:"key"`
	PublicKey PublicKey `json:"public_key"`
	Address   Address   `json:"address"`
}

// Encode derives the public key of the key and encodes its P2WPKH address for the network.
// Nothing is returned unless both are valid.
func Encode(key Key, net Network) (Address, PublicKey, error) {
	if !net.IsValid() {
		return Address{}, PublicKey{}, errors.Wrapf(ErrUnsupportedNetwork, "network 0x%08x",
			uint32(net))
	}

	if err := key.Validate(); err != nil {
		return Address{}, PublicKey{}, err
	}

	publicKey := key.PublicKey()
	if err := publicKey.IsValid(); err != nil {
		return Address{}, PublicKey{}, errors.Wrap(ErrInvalidKey, err.Error())
	}

	address, err := NewAddressP2WPKH(publicKey, net)
	if err != nil {
		return Address{}, PublicKey{}, errors.Wrap(err, "address")
	}

	return address, publicKey, nil
}

// Generate creates a new key from the operating system's secure random source and derives its
// public key and address.
func Generate(net Network) (*Generated, error) {
	return GenerateFromReader(rand.Reader, net)
}

// GenerateFromReader is Generate with the random source specified.
func GenerateFromReader(r io.Reader, net Network) (*Generated, error) {
	key, err := GenerateKeyFromReader(r, net)
	if err != nil {
		return nil, errors.Wrap(err, "generate key")
	}

	address, publicKey, err := Encode(key, net)
	if err != nil {
		return nil, errors.Wrap(err, "encode")
	}

	return &Generated{
		Key:       key,
		PublicKey: publicKey,
		Address:   address,
	}, nil
}

// WIF returns the display form of the secret key.
func (g Generated) WIF() string {
	return g.Key.String()
}
