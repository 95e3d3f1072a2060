package liquid

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg"
	btcdwire "github.com/btcsuite/btcd/wire"
	"github.com/pkg/errors"
	"github.com/vulpemventures/go-elements/network"
)

// Network identifies a Liquid chain. The values are local identifiers used to register chain
// parameters and are not Elements p2p message magic.
type Network uint32

const (
	MainNet    Network = 0x4c515631 // liquidv1
	TestNet    Network = 0x4c515454 // liquidtestnet
	RegTest    Network = 0x454c5254 // elementsregtest
	InvalidNet Network = 0x00000000
)

var (
	ErrUnsupportedNetwork = errors.New("Unsupported network")

	// MainNetParams defines the address and key parameters for the Liquid main network.
	MainNetParams chaincfg.Params

	// TestNetParams defines the address and key parameters for the Liquid test network.
	TestNetParams chaincfg.Params

	// RegTestParams defines the address and key parameters for the Elements regtest network.
	RegTestParams chaincfg.Params
)

// Networks returns the supported networks.
func Networks() []Network {
	return []Network{MainNet, TestNet, RegTest}
}

func NetworkFromString(name string) Network {
	switch name {
	case "liquidv1", "liquid", "mainnet":
		return MainNet
	case "liquidtestnet", "testnet":
		return TestNet
	case "elementsregtest", "regtest":
		return RegTest
	}

	return InvalidNet
}

func NetworkName(net Network) string {
	switch net {
	case MainNet:
		return "liquidv1"
	case TestNet:
		return "liquidtestnet"
	case RegTest:
		return "elementsregtest"
	}

	return "invalid"
}

// DecodeNetMatches returns true if the decoded network id matches the specified network id.
// Test networks share a WIF version, so all of them decode as TestNet.
func DecodeNetMatches(decoded Network, desired Network) bool {
	switch decoded {
	case MainNet:
		return desired == MainNet
	case TestNet, RegTest:
		return desired == TestNet || desired == RegTest
	}

	return false
}

// IsValid returns true if the network is one of the supported networks.
func (n Network) IsValid() bool {
	return n == MainNet || n == TestNet || n == RegTest
}

func (n Network) String() string {
	return NetworkName(n)
}

// Bech32Prefix returns the human readable part used for unconfidential segwit addresses.
func (n Network) Bech32Prefix() string {
	elements := elementsNetwork(n)
	if elements == nil {
		return ""
	}
	return elements.Bech32
}

// PolicyAsset returns the hex id of the network's native asset (L-BTC).
func (n Network) PolicyAsset() string {
	elements := elementsNetwork(n)
	if elements == nil {
		return ""
	}
	return elements.AssetID
}

// ChainParams returns the registered chain parameters for the network.
func (n Network) ChainParams() (*chaincfg.Params, error) {
	switch n {
	case MainNet:
		return &MainNetParams, nil
	case TestNet:
		return &TestNetParams, nil
	case RegTest:
		return &RegTestParams, nil
	}

	return nil, errors.Wrapf(ErrUnsupportedNetwork, "network 0x%08x", uint32(n))
}

// MarshalText returns the network name.
func (n Network) MarshalText() ([]byte, error) {
	if !n.IsValid() {
		return nil, errors.Wrapf(ErrUnsupportedNetwork, "network 0x%08x", uint32(n))
	}
	return []byte(NetworkName(n)), nil
}

// UnmarshalText parses a network name.
func (n *Network) UnmarshalText(text []byte) error {
	net := NetworkFromString(string(text))
	if net == InvalidNet {
		return errors.Wrap(ErrUnsupportedNetwork, string(text))
	}

	*n = net
	return nil
}

// wifVersion returns the first byte of a WIF encoded secret key for the network.
func wifVersion(net Network) (byte, error) {
	elements := elementsNetwork(net)
	if elements == nil {
		return 0, errors.Wrapf(ErrUnsupportedNetwork, "network 0x%08x", uint32(net))
	}
	return elements.Wif, nil
}

// networkFromBech32Prefix returns the network using the human readable part.
func networkFromBech32Prefix(hrp string) Network {
	for _, net := range Networks() {
		if net.Bech32Prefix() == hrp {
			return net
		}
	}

	return InvalidNet
}

func elementsNetwork(net Network) *network.Network {
	switch net {
	case MainNet:
		return &network.Liquid
	case TestNet:
		return &network.Testnet
	case RegTest:
		return &network.Regtest
	}

	return nil
}

func newChainParams(net Network, base chaincfg.Params) chaincfg.Params {
	elements := elementsNetwork(net)

	params := base
	params.Name = NetworkName(net)
	params.Net = btcdwire.BitcoinNet(net)
	params.Bech32HRPSegwit = elements.Bech32
	params.PubKeyHashAddrID = elements.PubKeyHash
	params.ScriptHashAddrID = elements.ScriptHash
	params.PrivateKeyID = elements.Wif
	params.HDPublicKeyID = elements.HDPublicKey
	params.HDPrivateKeyID = elements.HDPrivateKey
	return params
}

func init() {
	MainNetParams = newChainParams(MainNet, chaincfg.MainNetParams)

	// the params need to be registed so btcutil can decode the bech32 prefix.
	if err := chaincfg.Register(&MainNetParams); err != nil {
		fmt.Printf("WARNING failed to register MainNetParams : %s\n", err)
	}

	TestNetParams = newChainParams(TestNet, chaincfg.TestNet3Params)
	if err := chaincfg.Register(&TestNetParams); err != nil {
		fmt.Printf("WARNING failed to register TestNetParams : %s\n", err)
	}

	RegTestParams = newChainParams(RegTest, chaincfg.RegressionNetParams)
	if err := chaincfg.Register(&RegTestParams); err != nil {
		fmt.Printf("WARNING failed to register RegTestParams : %s\n", err)
	}
}
