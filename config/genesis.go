package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/Klingon-tech/klingnet-token/pkg/crypto"
	"github.com/Klingon-tech/klingnet-token/pkg/types"
)

// =============================================================================
// Ledger Rules (immutable, defined in genesis)
// These MUST match across every node serving the same ledger.
// =============================================================================

// Denomination constants.
// 1 coin = 10^8 base units. All ledger values are in base units.
const (
	Decimals  = 8
	Coin      = 100_000_000 // 10^8 base units per coin
	MilliCoin = 100_000     // 10^5
)

// DefaultStoragePrice is the default price (in base units) per persisted
// byte of ledger state. At 100 bytes per account record, registering costs
// 100 * DefaultStoragePrice.
const DefaultStoragePrice uint64 = 10_000

// Genesis holds the ledger's bootstrap configuration and immutable rules.
// Changes after launch would fork the ledger; the node refuses a database
// created under a different genesis hash.
type Genesis struct {
	// Ledger identity
	LedgerID  string `json:"ledger_id"`
	TokenName string `json:"token_name"`
	Symbol    string `json:"symbol"`
	Decimals  uint8  `json:"decimals"`

	// Bootstrap
	Timestamp uint64 `json:"timestamp"`
	ExtraData string `json:"extra_data,omitempty"`

	// Initial supply, minted in full to Owner at genesis.
	Owner       types.AccountID `json:"owner"`
	TotalSupply types.Amount    `json:"total_supply"`

	// Storage economics
	StoragePricePerByte uint64 `json:"storage_price_per_byte"`
}

// coins converts whole coins to base units. Arguments are compile-time
// constants chosen to fit 128 bits.
func coins(n uint64) types.Amount {
	amt, _ := types.NewAmount(n).MulUint64(Coin)
	return amt
}

// MainnetGenesis returns the mainnet genesis configuration.
func MainnetGenesis() *Genesis {
	return &Genesis{
		LedgerID:            "klingtoken-mainnet-1",
		TokenName:           "Klingnet Social Coin",
		Symbol:              "KSC",
		Decimals:            Decimals,
		Timestamp:           1772386200, // 2026-03-01
		ExtraData:           "Klingtoken Genesis",
		Owner:               "treasury.klingnet",
		TotalSupply:         coins(1_000_000_000), // 1,000,000,000 KSC
		StoragePricePerByte: DefaultStoragePrice,
	}
}

// TestnetGenesis returns the testnet genesis configuration.
func TestnetGenesis() *Genesis {
	g := MainnetGenesis()
	g.LedgerID = "klingtoken-testnet-1"
	g.ExtraData = "Klingtoken Testnet Genesis"
	g.Owner = "faucet.testnet"
	g.TotalSupply = coins(10_000_000_000)

	// Very cheap storage for testing.
	g.StoragePricePerByte = 10
	return g
}

// GenesisFor returns the genesis config for the given network.
func GenesisFor(network NetworkType) *Genesis {
	switch network {
	case Testnet:
		return TestnetGenesis()
	default:
		return MainnetGenesis()
	}
}

// =============================================================================
// Genesis file I/O
// =============================================================================

// LoadGenesis loads genesis configuration from a file.
func LoadGenesis(path string) (*Genesis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading genesis file: %w", err)
	}

	var g Genesis
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("parsing genesis file: %w", err)
	}

	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("invalid genesis: %w", err)
	}

	return &g, nil
}

// Save writes the genesis configuration to a file.
func (g *Genesis) Save(path string) error {
	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding genesis: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing genesis file: %w", err)
	}

	return nil
}

// Validate checks that the genesis configuration is valid.
func (g *Genesis) Validate() error {
	if g.LedgerID == "" {
		return fmt.Errorf("ledger_id is required")
	}
	if g.TokenName == "" {
		return fmt.Errorf("token_name is required")
	}
	if g.Symbol == "" {
		return fmt.Errorf("symbol is required")
	}
	if err := g.Owner.Validate(); err != nil {
		return fmt.Errorf("invalid owner: %w", err)
	}
	if g.TotalSupply.IsZero() {
		return fmt.Errorf("total_supply must be positive")
	}
	if g.StoragePricePerByte == 0 {
		return fmt.Errorf("storage_price_per_byte must be positive")
	}
	return nil
}

// Hash returns a BLAKE3 hash of the genesis configuration.
// Used to identify the ledger and detect genesis mismatches.
func (g *Genesis) Hash() (types.Hash, error) {
	data, err := json.Marshal(g)
	if err != nil {
		return types.Hash{}, err
	}
	return crypto.Hash(data), nil
}
