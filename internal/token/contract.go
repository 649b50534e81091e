// Package token implements the storage-accounted fungible-token contract:
// the balance ledger and registration manager composed behind a single
// operation surface, with every mutating call metered by the storage-cost
// accountant and rolled back atomically on failure.
package token

import (
	"fmt"

	"github.com/Klingon-tech/klingnet-token/internal/fee"
	"github.com/Klingon-tech/klingnet-token/internal/ledger"
	klog "github.com/Klingon-tech/klingnet-token/internal/log"
	"github.com/Klingon-tech/klingnet-token/internal/registry"
	"github.com/Klingon-tech/klingnet-token/internal/storage"
	"github.com/Klingon-tech/klingnet-token/pkg/event"
	"github.com/Klingon-tech/klingnet-token/pkg/types"
	"github.com/rs/zerolog"
)

// Call carries the host-supplied context of one operation: who is calling
// and how much payment they attached.
type Call struct {
	Caller  types.AccountID
	Deposit types.Amount
}

// Contract owns the ledger state exclusively. Operations must not be
// invoked concurrently; the hosting node serializes them (there is no
// internal locking, matching the one-at-a-time execution model).
type Contract struct {
	state  storage.DB
	fees   *fee.Accountant
	bounds registry.Bounds
	used   uint64 // current persisted footprint in bytes
	sink   event.Sink
	logger zerolog.Logger

	receivers  map[types.AccountID]Receiver
	intents    map[IntentID]*intent
	nextIntent IntentID
}

// probeAccount is a maximum-length account ID used only to measure the
// per-account storage footprint. It is staged into a throwaway overlay and
// never persisted.
const probeAccount types.AccountID = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"

// New creates a contract over the given state store. It scans the current
// storage footprint and derives the registration bounds from a measured
// per-account footprint. Because account keys are hashed, the footprint is
// identical for every account, so min and max coincide.
func New(state storage.DB, pricePerByte uint64, sink event.Sink) (*Contract, error) {
	used, err := storage.Usage(state, nil)
	if err != nil {
		return nil, fmt.Errorf("scan storage usage: %w", err)
	}

	footprint, err := measureAccountFootprint()
	if err != nil {
		return nil, fmt.Errorf("measure account footprint: %w", err)
	}

	fees := fee.New(pricePerByte)
	min := fees.Cost(footprint)

	return &Contract{
		state:     state,
		fees:      fees,
		bounds:    registry.Bounds{Min: min, Max: min},
		used:      used,
		sink:      sink,
		logger:    klog.Token,
		receivers: make(map[types.AccountID]Receiver),
		intents:   make(map[IntentID]*intent),
	}, nil
}

// measureAccountFootprint stages one account's full record set (ledger
// entry plus registration record) into an overlay over an empty store and
// reads back the byte delta. All entries are fixed-width, so the result
// holds for any account.
func measureAccountFootprint() (uint64, error) {
	ov := storage.NewOverlay(storage.NewMemory())
	if _, err := ledger.New(ov).CreateAccount(probeAccount); err != nil {
		return 0, err
	}
	if err := registry.New(ov).Create(probeAccount, types.Amount{}); err != nil {
		return 0, err
	}
	return uint64(ov.UsageDelta()), nil
}

// mutate runs fn against a staged overlay, settles the storage delta
// against the attached payment, and commits only on success. Events
// recorded by fn reach the sink only after the commit.
func (c *Contract) mutate(attached types.Amount, fn func(ov storage.DB, rec *event.Recorder) error) (fee.Settlement, error) {
	ov := storage.NewOverlay(c.state)
	rec := &event.Recorder{}
	if err := fn(ov, rec); err != nil {
		return fee.Settlement{}, err
	}

	before := c.used
	after := uint64(int64(before) + ov.UsageDelta())
	settlement, err := c.fees.Settle(attached, before, after)
	if err != nil {
		return fee.Settlement{}, err
	}

	if err := ov.Commit(); err != nil {
		return fee.Settlement{}, fmt.Errorf("commit state: %w", err)
	}
	c.used = after

	if c.sink != nil {
		for _, e := range rec.Drain() {
			c.sink.Record(e)
		}
	}
	return settlement, nil
}

// Genesis registers the owner and mints the initial total supply to them.
// It runs once, at bootstrap, outside the storage-payment protocol (the
// host deploying the ledger carries its footprint).
func (c *Contract) Genesis(owner types.AccountID, supply types.Amount) error {
	existing, err := ledger.New(c.state).TotalSupply()
	if err != nil {
		return err
	}
	if !existing.IsZero() {
		return ErrAlreadyInitialized
	}

	ov := storage.NewOverlay(c.state)
	led := ledger.New(ov)
	if _, err := led.CreateAccount(owner); err != nil {
		return err
	}
	if err := registry.New(ov).Create(owner, c.bounds.Min); err != nil {
		return err
	}
	if err := led.Mint(owner, supply); err != nil {
		return err
	}
	delta := ov.UsageDelta()
	if err := ov.Commit(); err != nil {
		return fmt.Errorf("commit genesis: %w", err)
	}
	c.used = uint64(int64(c.used) + delta)

	if c.sink != nil {
		c.sink.Record(event.Mint(owner, supply, "initial token supply minted"))
	}
	c.logger.Info().
		Str("owner", owner.String()).
		Str("supply", supply.String()).
		Msg("Genesis supply minted")
	return nil
}

// RegisterResult reports the outcome of a registration call.
type RegisterResult struct {
	// Registered is true if this call created the registration; false if
	// the account was already registered (the payment is refunded whole).
	Registered bool
	Refund     types.Amount
}

// Register opts account into holding a balance, backed by a storage
// deposit taken from the attached payment. An empty account registers the
// caller. Registering an already-registered account is an idempotent
// no-op that refunds the entire payment.
func (c *Contract) Register(call Call, account types.AccountID) (RegisterResult, error) {
	target := account
	if target.IsZero() {
		target = call.Caller
	}

	registered, err := registry.New(c.state).IsRegistered(target)
	if err != nil {
		return RegisterResult{}, err
	}
	if registered {
		c.logger.Debug().Str("account", target.String()).Msg("Already registered, refunding deposit")
		return RegisterResult{Registered: false, Refund: call.Deposit}, nil
	}

	if call.Deposit.Cmp(c.bounds.Min) < 0 {
		return RegisterResult{}, fmt.Errorf("%w: need %s, attached %s",
			registry.ErrInsufficientStorageDeposit, c.bounds.Min, call.Deposit)
	}

	settlement, err := c.mutate(call.Deposit, func(ov storage.DB, _ *event.Recorder) error {
		if _, err := ledger.New(ov).CreateAccount(target); err != nil {
			return err
		}
		return registry.New(ov).Create(target, c.bounds.Min)
	})
	if err != nil {
		return RegisterResult{}, err
	}

	c.logger.Info().
		Str("account", target.String()).
		Str("deposit", settlement.Charge.String()).
		Msg("Account registered")
	return RegisterResult{Registered: true, Refund: settlement.Refund}, nil
}

// UnregisterResult reports the outcome of an unregistration call.
type UnregisterResult struct {
	Closed          bool
	ReleasedBalance types.Amount
	// Refund is the released storage deposit plus any unused attached
	// payment, priced by the accountant from the freed bytes.
	Refund types.Amount
}

// Unregister removes the caller's registration. A nonzero balance fails
// with ErrNonZeroBalance unless force is true, in which case the balance
// is burned. Unregistering an account that was never registered closes
// nothing and is not an error.
func (c *Contract) Unregister(call Call, force bool) (UnregisterResult, error) {
	acct := call.Caller

	registered, err := registry.New(c.state).IsRegistered(acct)
	if err != nil {
		return UnregisterResult{}, err
	}
	if !registered {
		return UnregisterResult{Closed: false, Refund: call.Deposit}, nil
	}

	balance, err := ledger.New(c.state).BalanceOf(acct)
	if err != nil {
		return UnregisterResult{}, err
	}
	if !balance.IsZero() && !force {
		return UnregisterResult{}, fmt.Errorf("unregister %s: %w", acct, registry.ErrNonZeroBalance)
	}

	settlement, err := c.mutate(call.Deposit, func(ov storage.DB, rec *event.Recorder) error {
		led := ledger.New(ov)
		if !balance.IsZero() {
			if err := led.Burn(acct, balance); err != nil {
				return err
			}
			rec.Record(event.Burn(acct, balance, "account closed"))
		}
		if _, err := led.RemoveAccount(acct); err != nil {
			return err
		}
		_, _, err := registry.New(ov).Remove(acct)
		return err
	})
	if err != nil {
		return UnregisterResult{}, err
	}

	c.logger.Info().
		Str("account", acct.String()).
		Str("burned", balance.String()).
		Msg("Account closed")
	return UnregisterResult{Closed: true, ReleasedBalance: balance, Refund: settlement.Refund}, nil
}

// TotalSupply returns the current total supply. No side effects.
func (c *Contract) TotalSupply() (types.Amount, error) {
	return ledger.New(c.state).TotalSupply()
}

// BalanceOf returns the account's balance; zero for unregistered accounts.
func (c *Contract) BalanceOf(acct types.AccountID) (types.Amount, error) {
	return ledger.New(c.state).BalanceOf(acct)
}

// StorageBalance returns the deposit held for the account, or nil if the
// account is not registered.
func (c *Contract) StorageBalance(acct types.AccountID) (*registry.StorageBalance, error) {
	return registry.New(c.state).StorageBalance(acct)
}

// StorageBounds returns the min/max storage-balance bounds.
func (c *Contract) StorageBounds() registry.Bounds {
	return c.bounds
}

// StorageUsage returns the current persisted footprint in bytes.
func (c *Contract) StorageUsage() uint64 {
	return c.used
}

// AccountCount returns the number of registered accounts.
func (c *Contract) AccountCount() (int, error) {
	return ledger.New(c.state).AccountCount()
}

// CheckSupplyInvariant verifies that the sum of all balances equals the
// total supply.
func (c *Contract) CheckSupplyInvariant() error {
	led := ledger.New(c.state)
	supply, err := led.TotalSupply()
	if err != nil {
		return err
	}
	sum, err := led.SumBalances()
	if err != nil {
		return err
	}
	if sum.Cmp(supply) != 0 {
		return fmt.Errorf("supply invariant violated: balances sum to %s, supply is %s", sum, supply)
	}
	return nil
}
