package swap

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"rayswap/pkg"
	"rayswap/pkg/api"
	"rayswap/pkg/pool/clmm"
)

// PoolKeys is the on-chain address set needed to build a swap against one
// pool. Standard pools fill the market fields, concentrated pools fill the
// config/observation fields.
type PoolKeys struct {
	Type      pkg.PoolType
	ProgramID solana.PublicKey
	ID        solana.PublicKey

	MintA        solana.PublicKey
	MintB        solana.PublicKey
	MintAProgram solana.PublicKey
	MintBProgram solana.PublicKey
	VaultA       solana.PublicKey
	VaultB       solana.PublicKey

	// Standard pool fields.
	Authority        solana.PublicKey
	OpenOrders       solana.PublicKey
	TargetOrders     solana.PublicKey
	MarketProgramID  solana.PublicKey
	MarketID         solana.PublicKey
	MarketAuthority  solana.PublicKey
	MarketBaseVault  solana.PublicKey
	MarketQuoteVault solana.PublicKey
	MarketBids       solana.PublicKey
	MarketAsks       solana.PublicKey
	MarketEventQueue solana.PublicKey

	// Concentrated pool fields.
	AmmConfig       solana.PublicKey
	ObservationID   solana.PublicKey
	ExBitmapAccount solana.PublicKey
}

// PoolKeysFromAPI parses a catalog key set into typed keys. The pool type is
// taken from the program ID, falling back to the presence of the
// concentrated-only fields.
func PoolKeysFromAPI(raw *api.PoolKeys) (*PoolKeys, error) {
	keys := &PoolKeys{}

	fields := []struct {
		name  string
		value string
		dst   *solana.PublicKey
	}{
		{"programId", raw.ProgramID, &keys.ProgramID},
		{"id", raw.ID, &keys.ID},
		{"mintA.address", raw.MintA.Address, &keys.MintA},
		{"mintB.address", raw.MintB.Address, &keys.MintB},
		{"mintA.programId", raw.MintA.ProgramID, &keys.MintAProgram},
		{"mintB.programId", raw.MintB.ProgramID, &keys.MintBProgram},
		{"vault.A", raw.Vault.A, &keys.VaultA},
		{"vault.B", raw.Vault.B, &keys.VaultB},
		{"authority", raw.Authority, &keys.Authority},
		{"openOrders", raw.OpenOrders, &keys.OpenOrders},
		{"targetOrders", raw.TargetOrders, &keys.TargetOrders},
		{"marketProgramId", raw.MarketProgramID, &keys.MarketProgramID},
		{"marketId", raw.MarketID, &keys.MarketID},
		{"marketAuthority", raw.MarketAuthority, &keys.MarketAuthority},
		{"marketBaseVault", raw.MarketBaseVault, &keys.MarketBaseVault},
		{"marketQuoteVault", raw.MarketQuoteVault, &keys.MarketQuoteVault},
		{"marketBids", raw.MarketBids, &keys.MarketBids},
		{"marketAsks", raw.MarketAsks, &keys.MarketAsks},
		{"marketEventQueue", raw.MarketEventQueue, &keys.MarketEventQueue},
		{"observationId", raw.ObservationID, &keys.ObservationID},
		{"exBitmapAccount", raw.ExBitmapAccount, &keys.ExBitmapAccount},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		key, err := solana.PublicKeyFromBase58(f.value)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", f.name, f.value, err)
		}
		*f.dst = key
	}

	if raw.Config != nil && raw.Config.ID != "" {
		key, err := solana.PublicKeyFromBase58(raw.Config.ID)
		if err != nil {
			return nil, fmt.Errorf("invalid config.id %q: %w", raw.Config.ID, err)
		}
		keys.AmmConfig = key
	}

	switch {
	case keys.ProgramID.Equals(clmm.ClmmProgramID) || !keys.ObservationID.IsZero():
		keys.Type = pkg.PoolTypeConcentrated
	default:
		keys.Type = pkg.PoolTypeStandard
	}

	return keys, nil
}

// Validate checks key completeness for the pool's type. Missing keys are
// reported with pkg.ErrMissingPoolKeys as the cause.
func (k *PoolKeys) Validate() error {
	required := []struct {
		name string
		key  solana.PublicKey
	}{
		{"programId", k.ProgramID},
		{"id", k.ID},
		{"mintA", k.MintA},
		{"mintB", k.MintB},
		{"vaultA", k.VaultA},
		{"vaultB", k.VaultB},
	}

	switch k.Type {
	case pkg.PoolTypeStandard:
		required = append(required, []struct {
			name string
			key  solana.PublicKey
		}{
			{"authority", k.Authority},
			{"openOrders", k.OpenOrders},
			{"marketProgramId", k.MarketProgramID},
			{"marketId", k.MarketID},
			{"marketAuthority", k.MarketAuthority},
			{"marketBaseVault", k.MarketBaseVault},
			{"marketQuoteVault", k.MarketQuoteVault},
			{"marketBids", k.MarketBids},
			{"marketAsks", k.MarketAsks},
			{"marketEventQueue", k.MarketEventQueue},
		}...)
	case pkg.PoolTypeConcentrated:
		required = append(required, []struct {
			name string
			key  solana.PublicKey
		}{
			{"ammConfig", k.AmmConfig},
			{"observationId", k.ObservationID},
		}...)
	}

	for _, f := range required {
		if f.key.IsZero() {
			return fmt.Errorf("%w: %s", pkg.ErrMissingPoolKeys, f.name)
		}
	}
	return nil
}
