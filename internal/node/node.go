// Package node provides a reusable token-ledger node that can be embedded
// in any binary (daemon, indexer, test harness).
package node

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/Klingon-tech/klingnet-token/config"
	klog "github.com/Klingon-tech/klingnet-token/internal/log"
	"github.com/Klingon-tech/klingnet-token/internal/registry"
	"github.com/Klingon-tech/klingnet-token/internal/rpc"
	"github.com/Klingon-tech/klingnet-token/internal/storage"
	"github.com/Klingon-tech/klingnet-token/internal/token"
	"github.com/Klingon-tech/klingnet-token/pkg/event"
	"github.com/Klingon-tech/klingnet-token/pkg/types"
	"github.com/rs/zerolog"
)

// Storage namespaces inside the node database. Contract state and the
// event log are isolated so the storage accountant meters only the former.
var (
	nsState  = []byte("c/")
	nsEvents = []byte("e/")

	keyGenesisHash = []byte("m/genesis")
)

// Node is a fully-initialized token-ledger node. It owns the database,
// the contract and the event log, and serializes all contract operations
// behind a single mutex.
type Node struct {
	cfg     *config.Config
	genesis *config.Genesis
	logger  zerolog.Logger

	mu       sync.Mutex
	db       storage.DB
	contract *token.Contract
	events   *EventLog

	rpcServer *rpc.Server
}

// New creates and initializes a new Node: logger, genesis, storage,
// contract bootstrap and RPC. It does not start serving; call Start.
func New(cfg *config.Config) (*Node, error) {
	logFile := cfg.Log.File
	if logFile == "" {
		logsDir := cfg.LogsDir()
		if err := os.MkdirAll(logsDir, 0755); err != nil {
			return nil, fmt.Errorf("creating logs dir: %w", err)
		}
		logFile = logsDir + "/ktoken.log"
	}
	if err := klog.Init(cfg.Log.Level, cfg.Log.JSON, logFile); err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}

	var genesis *config.Genesis
	if cfg.GenesisFile != "" {
		g, err := config.LoadGenesis(cfg.GenesisFile)
		if err != nil {
			return nil, fmt.Errorf("load genesis %s: %w", cfg.GenesisFile, err)
		}
		genesis = g
	} else {
		genesis = config.GenesisFor(cfg.Network)
	}

	db, err := storage.NewBadger(cfg.LedgerDataDir())
	if err != nil {
		return nil, fmt.Errorf("open database at %s: %w", cfg.LedgerDataDir(), err)
	}

	n, err := NewWithDB(cfg, genesis, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return n, nil
}

// NewWithDB assembles a node over an already-open database. The caller
// keeps ownership of db on error; on success the node closes it in Stop.
func NewWithDB(cfg *config.Config, genesis *config.Genesis, db storage.DB) (*Node, error) {
	if err := genesis.Validate(); err != nil {
		return nil, fmt.Errorf("invalid genesis: %w", err)
	}

	logger := klog.Node
	logger.Info().
		Str("ledger_id", genesis.LedgerID).
		Str("network", string(cfg.Network)).
		Str("symbol", genesis.Symbol).
		Msg("Starting Klingnet Token Node")

	events, err := NewEventLog(storage.NewPrefixDB(db, nsEvents))
	if err != nil {
		return nil, fmt.Errorf("open event log: %w", err)
	}

	n := &Node{
		cfg:     cfg,
		genesis: genesis,
		logger:  logger,
		db:      db,
		events:  events,
	}

	contract, err := token.New(storage.NewPrefixDB(db, nsState), genesis.StoragePricePerByte, n)
	if err != nil {
		return nil, fmt.Errorf("init contract: %w", err)
	}
	n.contract = contract

	if err := n.bootstrap(); err != nil {
		return nil, err
	}

	if cfg.RPC.Enabled {
		addr := fmt.Sprintf("%s:%d", cfg.RPC.Addr, cfg.RPC.Port)
		n.rpcServer = rpc.New(addr, n, cfg.RPC)
		logger.Info().Str("addr", addr).Msg("RPC server configured")
	} else {
		logger.Warn().Msg("RPC disabled by config")
	}

	return n, nil
}

// bootstrap mints the genesis supply on first run and refuses to reuse a
// data directory initialized from a different genesis.
func (n *Node) bootstrap() error {
	wantHash, err := n.genesis.Hash()
	if err != nil {
		return fmt.Errorf("hash genesis: %w", err)
	}

	stored, err := n.db.Get(keyGenesisHash)
	if err == nil {
		if !bytes.Equal(stored, wantHash.Bytes()) {
			return fmt.Errorf("database was initialized from a different genesis (have %x, want %s)",
				stored, wantHash)
		}
		supply, err := n.contract.TotalSupply()
		if err != nil {
			return err
		}
		n.logger.Info().
			Str("supply", supply.String()).
			Uint64("storage_used", n.contract.StorageUsage()).
			Msg("Ledger resumed from database")
		return nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return err
	}

	if err := n.contract.Genesis(n.genesis.Owner, n.genesis.TotalSupply); err != nil {
		return fmt.Errorf("init from genesis: %w", err)
	}
	if err := n.db.Put(keyGenesisHash, wantHash.Bytes()); err != nil {
		return fmt.Errorf("persist genesis hash: %w", err)
	}
	n.logger.Info().Msg("Ledger initialized from genesis")
	return nil
}

// Record implements event.Sink: committed events are persisted to the
// sequence-numbered log and mirrored to the structured log.
func (n *Node) Record(e event.Event) {
	if err := n.events.Append(e); err != nil {
		n.logger.Error().Err(err).Str("type", e.Type).Msg("Failed to persist event")
		return
	}
	n.logger.Debug().
		Str("type", e.Type).
		Str("amount", e.Amount.String()).
		Msg("Event recorded")
}

// Start begins serving RPC if enabled.
func (n *Node) Start() error {
	if n.rpcServer != nil {
		if err := n.rpcServer.Start(); err != nil {
			return fmt.Errorf("start rpc: %w", err)
		}
		n.logger.Info().Str("addr", n.rpcServer.Addr()).Msg("RPC server listening")
	}
	n.logger.Info().Msg("Node started successfully")
	return nil
}

// Stop performs graceful shutdown in reverse order.
func (n *Node) Stop() {
	if n.rpcServer != nil {
		n.rpcServer.Stop()
	}
	if n.db != nil {
		n.db.Close()
	}
	n.logger.Info().Msg("Goodbye!")
}

// RPCAddr returns the address the RPC server is listening on.
func (n *Node) RPCAddr() string {
	if n.rpcServer == nil {
		return ""
	}
	return n.rpcServer.Addr()
}

// RegisterReceiver installs an in-process hook invoked when account
// receives a notify-transfer.
func (n *Node) RegisterReceiver(account types.AccountID, r token.Receiver) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.contract.SetReceiver(account, r)
}

// ── Contract operations (serialized) ────────────────────────────────

// Genesis returns the genesis document the node was initialized from.
func (n *Node) Genesis() *config.Genesis {
	return n.genesis
}

// Register opts an account into the ledger.
func (n *Node) Register(call token.Call, account types.AccountID) (token.RegisterResult, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.contract.Register(call, account)
}

// Unregister removes the caller's registration.
func (n *Node) Unregister(call token.Call, force bool) (token.UnregisterResult, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.contract.Unregister(call, force)
}

// Transfer moves tokens between registered accounts.
func (n *Node) Transfer(call token.Call, receiver types.AccountID, amount types.Amount, memo string) (token.TransferResult, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.contract.Transfer(call, receiver, amount, memo)
}

// TransferAndNotify runs the two-phase notify-transfer protocol.
func (n *Node) TransferAndNotify(call token.Call, receiver types.AccountID, amount types.Amount, memo string, payload []byte) (token.NotifyResult, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.contract.TransferAndNotify(call, receiver, amount, memo, payload)
}

// BalanceOf returns the account's balance; zero for unregistered accounts.
func (n *Node) BalanceOf(account types.AccountID) (types.Amount, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.contract.BalanceOf(account)
}

// TotalSupply returns the current total supply.
func (n *Node) TotalSupply() (types.Amount, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.contract.TotalSupply()
}

// StorageBalance returns the deposit held for account, or nil if it is
// not registered.
func (n *Node) StorageBalance(account types.AccountID) (*registry.StorageBalance, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.contract.StorageBalance(account)
}

// StorageBounds returns the registration deposit bounds.
func (n *Node) StorageBounds() registry.Bounds {
	return n.contract.StorageBounds()
}

// StorageUsage returns the contract's persisted footprint in bytes.
func (n *Node) StorageUsage() uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.contract.StorageUsage()
}

// AccountCount returns the number of registered accounts.
func (n *Node) AccountCount() (int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.contract.AccountCount()
}

// Events returns up to limit persisted events starting at sequence from.
func (n *Node) Events(from uint64, limit int) ([]event.Record, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.events.Range(from, limit)
}

// EventCount returns the number of persisted events.
func (n *Node) EventCount() uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.events.Len()
}
