package liquid

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/pkg/errors"
)

// AddressType is the closed set of address types supported.
type AddressType uint8

const (
	AddressTypeInvalid AddressType = 0
	AddressTypeP2WPKH  AddressType = 1 // Pay to witness public key hash (version 0, 20 bytes)
	AddressTypeP2WSH   AddressType = 2 // Pay to witness script hash (version 0, 32 bytes)

	WitnessVersion0 = 0x00
)

var (
	ErrUnsupportedAddressType = errors.New("Unsupported address type")
	ErrWrongNetwork           = errors.New("Wrong network")
)

func (t AddressType) String() string {
	switch t {
	case AddressTypeP2WPKH:
		return "p2wpkh"
	case AddressTypeP2WSH:
		return "p2wsh"
	}
	return "invalid"
}

// Address is an unconfidential segwit address on a Liquid network.
type Address struct {
	net         Network
	addressType AddressType
	program     []byte
}

/**************************************** P2WPKH **************************************************/

// NewAddressP2WPKH creates the pay to witness public key hash address for a public key. It is a
// pure function of the key and network.
func NewAddressP2WPKH(publicKey PublicKey, net Network) (Address, error) {
	if !net.IsValid() {
		return Address{}, errors.Wrapf(ErrUnsupportedNetwork, "network 0x%08x", uint32(net))
	}
	if err := publicKey.IsValid(); err != nil {
		return Address{}, errors.Wrap(err, "public key")
	}

	return Address{
		net:         net,
		addressType: AddressTypeP2WPKH,
		program:     publicKey.Hash().Bytes(),
	}, nil
}

/**************************************** Witness *************************************************/

// NewAddressFromWitnessProgram creates an address from a version 0 witness program.
func NewAddressFromWitnessProgram(version byte, program []byte, net Network) (Address, error) {
	if !net.IsValid() {
		return Address{}, errors.Wrapf(ErrUnsupportedNetwork, "network 0x%08x", uint32(net))
	}
	if version != WitnessVersion0 {
		return Address{}, errors.Wrapf(ErrUnsupportedAddressType, "witness version %d", version)
	}

	result := Address{net: net}
	switch len(program) {
	case Hash20Size:
		result.addressType = AddressTypeP2WPKH
	case Hash32Size:
		result.addressType = AddressTypeP2WSH
	default:
		return Address{}, errors.Wrapf(ErrUnsupportedAddressType, "program length %d",
			len(program))
	}

	result.program = make([]byte, len(program))
	copy(result.program, program)
	return result, nil
}

/***************************************** Decode *************************************************/

// DecodeAddress decodes a bech32 address. The network is determined by the human readable part.
func DecodeAddress(address string) (Address, error) {
	var result Address
	err := result.Decode(address)
	return result, err
}

// DecodeAddressForNet decodes a bech32 address and verifies it is for the specified network.
func DecodeAddressForNet(address string, net Network) (Address, error) {
	result, err := DecodeAddress(address)
	if err != nil {
		return Address{}, err
	}

	if result.net != net {
		return Address{}, errors.Wrapf(ErrWrongNetwork, "got %s, want %s", result.net, net)
	}

	return result, nil
}

// Decode decodes a bech32 address. It returns an error if there was an issue.
func (a *Address) Decode(address string) error {
	hrp, data, version, err := bech32.DecodeGeneric(strings.TrimSpace(address))
	if err != nil {
		return errors.Wrap(ErrBadChecksum, err.Error())
	}

	net := networkFromBech32Prefix(hrp)
	if net == InvalidNet {
		return errors.Wrapf(ErrUnsupportedNetwork, "prefix %s", hrp)
	}

	if len(data) < 1 {
		return errors.Wrap(ErrUnsupportedAddressType, "missing witness version")
	}

	witnessVersion := data[0]
	if witnessVersion != WitnessVersion0 {
		return errors.Wrapf(ErrUnsupportedAddressType, "witness version %d", witnessVersion)
	}
	if version != bech32.Version0 {
		return errors.Wrap(ErrBadChecksum, "version 0 witness requires bech32 checksum")
	}

	program, err := bech32.ConvertBits(data[1:], 5, 8, false)
	if err != nil {
		return errors.Wrapf(ErrBadChecksum, "witness program padding : %s", err)
	}

	decoded, err := NewAddressFromWitnessProgram(witnessVersion, program, net)
	if err != nil {
		return err
	}

	*a = decoded
	return nil
}

/***************************************** Common *************************************************/

// String returns the bech32 encoding of the address.
func (a Address) String() string {
	if len(a.program) == 0 {
		return ""
	}

	params, err := a.net.ChainParams()
	if err != nil {
		return ""
	}

	switch a.addressType {
	case AddressTypeP2WPKH:
		address, err := btcutil.NewAddressWitnessPubKeyHash(a.program, params)
		if err != nil {
			return ""
		}
		return address.EncodeAddress()

	case AddressTypeP2WSH:
		address, err := btcutil.NewAddressWitnessScriptHash(a.program, params)
		if err != nil {
			return ""
		}
		return address.EncodeAddress()
	}

	return ""
}

// Network returns the network of the address.
func (a Address) Network() Network {
	return a.net
}

// Type returns the address type.
func (a Address) Type() AddressType {
	return a.addressType
}

// WitnessVersion returns the witness version of the address program.
func (a Address) WitnessVersion() byte {
	return WitnessVersion0
}

// WitnessProgram returns a copy of the witness program.
func (a Address) WitnessProgram() []byte {
	result := make([]byte, len(a.program))
	copy(result, a.program)
	return result
}

// Hash returns the public key hash committed to by a P2WPKH address.
func (a Address) Hash() (*Hash20, error) {
	if a.addressType != AddressTypeP2WPKH {
		return nil, errors.Wrap(ErrUnsupportedAddressType, a.addressType.String())
	}
	return NewHash20(a.program)
}

// IsEmpty returns true if the address does not have a value set.
func (a Address) IsEmpty() bool {
	return len(a.program) == 0
}

// Equal returns true if the addresses are the same.
func (a Address) Equal(o Address) bool {
	return a.net == o.net && a.addressType == o.addressType && bytes.Equal(a.program, o.program)
}

// MarshalText returns the text encoding of the address.
// Implements encoding.TextMarshaler interface.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText parses a text encoded address and sets the value of this object.
// Implements encoding.TextUnmarshaler interface.
func (a *Address) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*a = Address{}
		return nil
	}
	return a.Decode(string(text))
}

// MarshalJSON converts to json.
func (a Address) MarshalJSON() ([]byte, error) {
	return []byte("\"" + a.String() + "\""), nil
}

// UnmarshalJSON converts from json.
func (a *Address) UnmarshalJSON(data []byte) error {
	if len(data) < 2 {
		return fmt.Errorf("Too short for Address data : %d", len(data))
	}

	return a.UnmarshalText(data[1 : len(data)-1])
}
