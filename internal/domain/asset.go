package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

// AssetType represents the on-chain type of a held asset
type AssetType string

const (
	AssetTypeNative       AssetType = "NATIVE"
	AssetTypeERC20        AssetType = "ERC20"
	AssetTypeERC721       AssetType = "ERC721"
	AssetTypeERC1155      AssetType = "ERC1155"
	AssetTypeEthscription AssetType = "ETHSCRIPTION"
	AssetTypeOrdinal      AssetType = "ORDINAL"
	AssetTypeBTC          AssetType = "BTC"
)

// AssetClass represents the allocation regime of an asset
type AssetClass string

const (
	// AssetClassDivisible assets can be split across beneficiaries by
	// percentage or amount.
	AssetClassDivisible AssetClass = "DIVISIBLE"

	// AssetClassIndivisible assets must be assigned wholly to exactly one
	// beneficiary.
	AssetClassIndivisible AssetClass = "INDIVISIBLE"
)

// Asset represents a held asset supplied by the wallet loader.
// The engine treats assets as read-only input.
type Asset struct {
	ID       string
	Symbol   string
	Type     AssetType
	Balance  string // integer magnitude in the asset's smallest unit
	Decimals int
	Chain    string
}

// Validate ensures the asset adheres to domain rules
// Returns an error if validation fails
func (a *Asset) Validate() error {
	if a.ID == "" {
		return errors.New("asset ID cannot be empty")
	}

	if a.Decimals < 0 {
		return errors.New("asset decimals cannot be negative")
	}

	if _, err := decimal.NewFromString(a.Balance); err != nil {
		return errors.New("asset balance must be a decimal string")
	}

	return nil
}

// HumanBalance converts the raw base-unit balance to a human-readable
// quantity (balance / 10^decimals)
func (a *Asset) HumanBalance() (decimal.Decimal, error) {
	raw, err := decimal.NewFromString(a.Balance)
	if err != nil {
		return decimal.Zero, errors.New("asset balance must be a decimal string")
	}

	return raw.Shift(int32(-a.Decimals)), nil
}

// Classifier decides which allocation regime applies to an asset type.
// The zero value treats ethscriptions and ordinals as indivisible, which is
// the default for the full estate product; the lightweight product flips
// the toggles.
type Classifier struct {
	DivisibleEthscriptions bool
	DivisibleOrdinals      bool
}

// Classify maps an asset type to its allocation regime
// Total: unrecognized types default to divisible (anything not explicitly
// NFT-like can be split)
func (c Classifier) Classify(assetType AssetType) AssetClass {
	switch assetType {
	case AssetTypeERC721, AssetTypeERC1155:
		return AssetClassIndivisible
	case AssetTypeEthscription:
		if c.DivisibleEthscriptions {
			return AssetClassDivisible
		}
		return AssetClassIndivisible
	case AssetTypeOrdinal:
		if c.DivisibleOrdinals {
			return AssetClassDivisible
		}
		return AssetClassIndivisible
	default:
		return AssetClassDivisible
	}
}
