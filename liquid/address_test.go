package liquid

import (
	"bytes"
	"encoding/json"
	"math/big"
	"strings"
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/bech32"
	pkgerrors "github.com/pkg/errors"
	"github.com/vulpemventures/go-elements/payment"
)

// The generator point is the public key for the private key 1.
const (
	generatorHex     = "0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798"
	generatorHash160 = "751e76e8199196d454941c45d1b3a323f1433bd6"
)

func TestAddressGenerator(t *testing.T) {
	tests := []struct {
		net    Network
		prefix string
	}{
		{MainNet, "ex1qw508d6qejxtdg4y5r3zarvary0c5xw7k"},
		{TestNet, "tex1qw508d6qejxtdg4y5r3zarvary0c5xw7k"},
		{RegTest, "ert1qw508d6qejxtdg4y5r3zarvary0c5xw7k"},
	}

	publicKey, err := PublicKeyFromStr(generatorHex)
	if err != nil {
		t.Fatalf("Failed to parse public key : %s", err)
	}

	if publicKey.Hash().String() != generatorHash160 {
		t.Fatalf("Wrong hash160 : got %s, want %s", publicKey.Hash(), generatorHash160)
	}

	for _, tt := range tests {
		t.Run(tt.net.String(), func(t *testing.T) {
			address, err := NewAddressP2WPKH(publicKey, tt.net)
			if err != nil {
				t.Fatalf("Failed to create address : %s", err)
			}

			s := address.String()
			t.Logf("Address : %s", s)

			if !strings.HasPrefix(s, tt.prefix) {
				t.Errorf("Wrong address : got %s, want prefix %s", s, tt.prefix)
			}

			if len(s) != len(tt.prefix)+6 {
				t.Errorf("Wrong address length : got %d, want %d", len(s), len(tt.prefix)+6)
			}
		})
	}
}

func TestAddressInterop(t *testing.T) {
	for _, net := range Networks() {
		t.Run(net.String(), func(t *testing.T) {
			key, err := GenerateKey(net)
			if err != nil {
				t.Fatalf("Failed to generate key : %s", err)
			}

			address, publicKey, err := Encode(key, net)
			if err != nil {
				t.Fatalf("Failed to encode : %s", err)
			}

			params, err := net.ChainParams()
			if err != nil {
				t.Fatal(err)
			}

			decoded, err := btcutil.DecodeAddress(address.String(), params)
			if err != nil {
				t.Fatalf("Ext failed to decode %s : %s", address, err)
			}

			wpkh, ok := decoded.(*btcutil.AddressWitnessPubKeyHash)
			if !ok {
				t.Fatalf("Ext decoded wrong address type : %T", decoded)
			}

			if !wpkh.IsForNet(params) {
				t.Errorf("Ext decoded address not for network %s", net)
			}

			if !bytes.Equal(wpkh.Hash160()[:], btcutil.Hash160(publicKey.Bytes())) {
				t.Errorf("Ext decoded wrong hash : got %x, want %s", wpkh.Hash160()[:],
					publicKey.Hash())
			}

			btcecKey, err := publicKey.BTCECKey()
			if err != nil {
				t.Fatalf("Failed to convert public key : %s", err)
			}

			elements, err := payment.FromPublicKey(btcecKey, elementsNetwork(net),
				nil).WitnessPubKeyHash()
			if err != nil {
				t.Fatalf("Elements failed to encode address : %s", err)
			}

			if elements != address.String() {
				t.Errorf("Elements address : got %s, want %s", elements, address)
			}
		})
	}
}

func TestDecodeAddress(t *testing.T) {
	publicKey, err := PublicKeyFromStr(generatorHex)
	if err != nil {
		t.Fatalf("Failed to parse public key : %s", err)
	}

	for _, net := range Networks() {
		t.Run(net.String(), func(t *testing.T) {
			address, err := NewAddressP2WPKH(publicKey, net)
			if err != nil {
				t.Fatalf("Failed to create address : %s", err)
			}

			decoded, err := DecodeAddress(address.String())
			if err != nil {
				t.Fatalf("Failed to decode address : %s", err)
			}

			if !decoded.Equal(address) {
				t.Errorf("Wrong decoded address : got %s, want %s", decoded, address)
			}

			if decoded.Network() != net {
				t.Errorf("Wrong network : got %s, want %s", decoded.Network(), net)
			}

			if decoded.Type() != AddressTypeP2WPKH {
				t.Errorf("Wrong type : got %s, want %s", decoded.Type(), AddressTypeP2WPKH)
			}

			hash, err := decoded.Hash()
			if err != nil {
				t.Fatalf("Failed to get hash : %s", err)
			}

			if !hash.Equal(publicKey.Hash()) {
				t.Errorf("Wrong hash : got %s, want %s", hash, publicKey.Hash())
			}

			upper, err := DecodeAddress(strings.ToUpper(address.String()))
			if err != nil {
				t.Fatalf("Failed to decode upper case address : %s", err)
			}

			if !upper.Equal(address) {
				t.Errorf("Wrong upper case decoded address : got %s, want %s", upper, address)
			}

			if _, err := DecodeAddressForNet(address.String(), net); err != nil {
				t.Errorf("Failed to decode for network : %s", err)
			}

			for _, other := range Networks() {
				if other == net {
					continue
				}

				_, err := DecodeAddressForNet(address.String(), other)
				if pkgerrors.Cause(err) != ErrWrongNetwork {
					t.Errorf("Wrong error for %s : got %v, want %s", other, err,
						ErrWrongNetwork)
				}
			}
		})
	}
}

func TestDecodeAddressP2WSH(t *testing.T) {
	program := Sha256([]byte("script"))

	address, err := NewAddressFromWitnessProgram(WitnessVersion0, program, MainNet)
	if err != nil {
		t.Fatalf("Failed to create address : %s", err)
	}

	if address.Type() != AddressTypeP2WSH {
		t.Fatalf("Wrong type : got %s, want %s", address.Type(), AddressTypeP2WSH)
	}

	decoded, err := DecodeAddress(address.String())
	if err != nil {
		t.Fatalf("Failed to decode address : %s", err)
	}

	if !bytes.Equal(decoded.WitnessProgram(), program) {
		t.Errorf("Wrong program : got %x, want %x", decoded.WitnessProgram(), program)
	}

	if _, err := decoded.Hash(); pkgerrors.Cause(err) != ErrUnsupportedAddressType {
		t.Errorf("Wrong hash error : got %v, want %s", err, ErrUnsupportedAddressType)
	}
}

func TestDecodeAddressErrors(t *testing.T) {
	publicKey, err := PublicKeyFromStr(generatorHex)
	if err != nil {
		t.Fatalf("Failed to parse public key : %s", err)
	}

	address, err := NewAddressP2WPKH(publicKey, MainNet)
	if err != nil {
		t.Fatalf("Failed to create address : %s", err)
	}
	valid := address.String()

	// Flip the last checksum character.
	last := valid[len(valid)-1]
	replacement := "q"
	if last == 'q' {
		replacement = "p"
	}

	// 33 five bit groups leave 5 bits of padding, which is more than a group allows.
	badPadding, err := bech32.Encode("ex", append([]byte{0}, make([]byte, 33)...))
	if err != nil {
		t.Fatalf("Failed to encode bad padding : %s", err)
	}

	tests := []struct {
		name    string
		address string
		err     error
	}{
		{
			name:    "bad padding",
			address: badPadding,
			err:     ErrBadChecksum,
		},
		{
			name:    "bad checksum",
			address: valid[:len(valid)-1] + replacement,
			err:     ErrBadChecksum,
		},
		{
			name:    "bitcoin",
			address: "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4",
			err:     ErrUnsupportedNetwork,
		},
		{
			name:    "empty",
			address: "",
			err:     ErrBadChecksum,
		},
		{
			name:    "base58",
			address: "Q7qcjTLsYGoMA7TjUp97R6E6AM5VKqBik6",
			err:     ErrBadChecksum,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeAddress(tt.address)
			if err == nil {
				t.Fatalf("No error for %s", tt.address)
			}

			if pkgerrors.Cause(err) != tt.err {
				t.Errorf("Wrong error : got %s, want %s", err, tt.err)
			}
		})
	}
}

func TestNewAddressErrors(t *testing.T) {
	publicKey, err := PublicKeyFromStr(generatorHex)
	if err != nil {
		t.Fatalf("Failed to parse public key : %s", err)
	}

	if _, err := NewAddressP2WPKH(publicKey, InvalidNet); pkgerrors.Cause(err) != ErrUnsupportedNetwork {
		t.Errorf("Wrong error : got %v, want %s", err, ErrUnsupportedNetwork)
	}

	offCurve := PublicKey{X: *big.NewInt(1), Y: *big.NewInt(1)}
	if _, err := NewAddressP2WPKH(offCurve, MainNet); pkgerrors.Cause(err) != ErrNotOnCurve {
		t.Errorf("Wrong error : got %v, want %s", err, ErrNotOnCurve)
	}

	if _, err := NewAddressFromWitnessProgram(1, make([]byte, 32), MainNet); pkgerrors.Cause(err) != ErrUnsupportedAddressType {
		t.Errorf("Wrong error : got %v, want %s", err, ErrUnsupportedAddressType)
	}

	if _, err := NewAddressFromWitnessProgram(0, make([]byte, 25), MainNet); pkgerrors.Cause(err) != ErrUnsupportedAddressType {
		t.Errorf("Wrong error : got %v, want %s", err, ErrUnsupportedAddressType)
	}
}

func TestAddressJSON(t *testing.T) {
	publicKey, err := PublicKeyFromStr(generatorHex)
	if err != nil {
		t.Fatalf("Failed to parse public key : %s", err)
	}

	address, err := NewAddressP2WPKH(publicKey, TestNet)
	if err != nil {
		t.Fatalf("Failed to create address : %s", err)
	}

	js, err := json.Marshal(struct {
		Address Address `json:"address"`
		Empty   Address `json:"empty"`
	}{Address: address})
	if err != nil {
		t.Fatalf("Failed to marshal json : %s", err)
	}
	t.Logf("JSON : %s", js)

	var read struct {
		Address Address `json:"address"`
		Empty   Address `json:"empty"`
	}
	if err := json.Unmarshal(js, &read); err != nil {
		t.Fatalf("Failed to unmarshal json : %s", err)
	}

	if !read.Address.Equal(address) {
		t.Errorf("Wrong address : got %s, want %s", read.Address, address)
	}

	if !read.Empty.IsEmpty() {
		t.Errorf("Empty address not empty : %s", read.Empty)
	}
}
