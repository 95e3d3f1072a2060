package assets

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

const (
	AssetIDSize = 32
)

var (
	ErrInvalidAssetID = errors.New("Invalid asset id")
	ErrAssetNotFound  = errors.New("Asset not found")
)

// Fetcher retrieves asset metadata from an external source.
type Fetcher interface {
	GetAsset(ctx context.Context, id AssetID) (*Asset, error)
}

// AssetID identifies an issued asset. It is displayed as 64 hex characters in the same byte order
// as block explorers.
type AssetID [AssetIDSize]byte

// NewAssetIDFromStr parses a 64 character hex asset id.
func NewAssetIDFromStr(s string) (AssetID, error) {
	if len(s) != AssetIDSize*2 {
		return AssetID{}, errors.Wrapf(ErrInvalidAssetID, "length %d, want %d", len(s),
			AssetIDSize*2)
	}

	b, err := hex.DecodeString(s)
	if err != nil {
		return AssetID{}, errors.Wrap(ErrInvalidAssetID, err.Error())
	}

	var result AssetID
	copy(result[:], b)
	return result, nil
}

func (id AssetID) String() string {
	return hex.EncodeToString(id[:])
}

func (id AssetID) IsZero() bool {
	return id == AssetID{}
}

func (id AssetID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *AssetID) UnmarshalText(text []byte) error {
	n, err := NewAssetIDFromStr(string(text))
	if err != nil {
		return err
	}

	*id = n
	return nil
}

// Outpoint references a transaction input or output.
type Outpoint struct {
	TxID string  `json:"txid"`
	Vin  *uint32 `json:"vin,omitempty"`
	Vout *uint32 `json:"vout,omitempty"`
}

// Status is the confirmation status of the issuance transaction.
type Status struct {
	Confirmed   bool   `json:"confirmed"`
	BlockHeight uint32 `json:"block_height,omitempty"`
	BlockHash   string `json:"block_hash,omitempty"`
	BlockTime   int64  `json:"block_time,omitempty"`
}

func (s Status) String() string {
	if !s.Confirmed {
		return "Unconfirmed"
	}
	return fmt.Sprintf("Confirmed at height %d", s.BlockHeight)
}

// Stats are the issuance totals for either the chain or the mempool. The peg fields are only set
// for the network's policy asset.
type Stats struct {
	TxCount               uint64 `json:"tx_count"`
	IssuanceCount         uint64 `json:"issuance_count,omitempty"`
	IssuedAmount          uint64 `json:"issued_amount,omitempty"`
	BurnedAmount          uint64 `json:"burned_amount,omitempty"`
	HasBlindedIssuances   bool   `json:"has_blinded_issuances,omitempty"`
	ReissuanceTokens      uint64 `json:"reissuance_tokens,omitempty"`
	BurnedReissuanceToken uint64 `json:"burned_reissuance_tokens,omitempty"`

	PegInCount   uint64 `json:"peg_in_count,omitempty"`
	PegInAmount  uint64 `json:"peg_in_amount,omitempty"`
	PegOutCount  uint64 `json:"peg_out_count,omitempty"`
	PegOutAmount uint64 `json:"peg_out_amount,omitempty"`
	BurnCount    uint64 `json:"burn_count,omitempty"`
}

// Entity is the issuer identity bound to the asset's contract.
type Entity struct {
	Domain string `json:"domain"`
}

// Asset is the metadata of an issued asset.
type Asset struct {
	AssetID         AssetID   `json:"asset_id"`
	IssuanceTxIn    *Outpoint `json:"issuance_txin,omitempty"`
	IssuancePrevout *Outpoint `json:"issuance_prevout,omitempty"`
	ReissuanceToken string    `json:"reissuance_token,omitempty"`
	ContractHash    string    `json:"contract_hash,omitempty"`
	Status          *Status   `json:"status,omitempty"`
	ChainStats      Stats     `json:"chain_stats"`
	MempoolStats    Stats     `json:"mempool_stats"`

	// Registry fields. Only set when the issuer registered the asset.
	Entity    *Entity `json:"entity,omitempty"`
	Name      string  `json:"name,omitempty"`
	Ticker    string  `json:"ticker,omitempty"`
	Precision *uint8  `json:"precision,omitempty"`
}

// IsConfidential returns true when any issuance of the asset blinded its amount.
func (a Asset) IsConfidential() bool {
	return a.ChainStats.HasBlindedIssuances || a.MempoolStats.HasBlindedIssuances
}

// IsPolicyAsset returns true for the network's native asset, which is pegged in rather than
// issued.
func (a Asset) IsPolicyAsset() bool {
	return a.ChainStats.PegInCount > 0 || a.ChainStats.PegInAmount > 0
}

// AssetType returns "Confidential" or "Explicit".
func (a Asset) AssetType() string {
	if a.IsConfidential() {
		return "Confidential"
	}
	return "Explicit"
}

// Issuer returns the issuer's domain or an empty string when not registered.
func (a Asset) Issuer() string {
	if a.Entity == nil {
		return ""
	}
	return a.Entity.Domain
}

// GetPrecision returns the number of decimal places used to display amounts. Unregistered assets
// have no precision and are displayed in base units.
func (a Asset) GetPrecision() uint8 {
	if a.Precision == nil {
		return 0
	}
	return *a.Precision
}

// IssuedAmount returns the confirmed circulating amount in base units. The second return is false
// when the amount is not known because issuances were blinded.
func (a Asset) IssuedAmount() (uint64, bool) {
	if a.IsPolicyAsset() {
		out := a.ChainStats.PegOutAmount + a.ChainStats.BurnedAmount
		if out > a.ChainStats.PegInAmount {
			return 0, true
		}
		return a.ChainStats.PegInAmount - out, true
	}

	if a.ChainStats.HasBlindedIssuances {
		return 0, false
	}

	return a.ChainStats.IssuedAmount, true
}

// FormatAmount converts base units to a decimal string with the precision.
func FormatAmount(amount uint64, precision uint8) string {
	s := fmt.Sprintf("%d", amount)
	if precision == 0 {
		return s
	}

	p := int(precision)
	if len(s) <= p {
		s = strings.Repeat("0", p-len(s)+1) + s
	}

	return s[:len(s)-p] + "." + s[len(s)-p:]
}
