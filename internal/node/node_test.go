package node

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Klingon-tech/klingnet-token/config"
	klog "github.com/Klingon-tech/klingnet-token/internal/log"
	"github.com/Klingon-tech/klingnet-token/internal/storage"
	"github.com/Klingon-tech/klingnet-token/internal/token"
	"github.com/Klingon-tech/klingnet-token/pkg/event"
	"github.com/Klingon-tech/klingnet-token/pkg/types"
)

func testGenesis() *config.Genesis {
	return &config.Genesis{
		LedgerID:            "klingtoken-test-1",
		TokenName:           "Test Coin",
		Symbol:              "TST",
		Decimals:            config.Decimals,
		Timestamp:           1700000000,
		Owner:               "treasury.klingnet",
		TotalSupply:         types.NewAmount(1_000_000),
		StoragePricePerByte: 10,
	}
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	klog.Init("error", false, "")
	cfg := config.Default(config.Testnet)
	cfg.DataDir = t.TempDir()
	cfg.RPC.Enabled = false
	return cfg
}

// newTestNode assembles a node over an in-memory store.
func newTestNode(t *testing.T, db storage.DB) *Node {
	t.Helper()
	n, err := NewWithDB(testConfig(t), testGenesis(), db)
	require.NoError(t, err)
	return n
}

func TestNodeBootstrap(t *testing.T) {
	n := newTestNode(t, storage.NewMemory())

	supply, err := n.TotalSupply()
	require.NoError(t, err)
	require.Equal(t, uint64(1_000_000), supply.Uint64())

	bal, err := n.BalanceOf("treasury.klingnet")
	require.NoError(t, err)
	require.Equal(t, supply.Uint64(), bal.Uint64())

	// The genesis mint is the first persisted event.
	records, err := n.Events(0, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, event.TypeMint, records[0].Type)
}

func TestNodeResumeAndGenesisMismatch(t *testing.T) {
	db := storage.NewMemory()
	cfg := testConfig(t)

	n1, err := NewWithDB(cfg, testGenesis(), db)
	require.NoError(t, err)

	// Mutate some state.
	min := n1.StorageBounds().Min
	_, err = n1.Register(token.Call{Caller: "alice.klingnet", Deposit: min}, "")
	require.NoError(t, err)

	// Reopening with the same genesis resumes cleanly, state intact.
	n2, err := NewWithDB(cfg, testGenesis(), db)
	require.NoError(t, err)
	count, err := n2.AccountCount()
	require.NoError(t, err)
	require.Equal(t, 2, count)
	// Only the genesis mint was recorded; registration emits no event.
	require.Equal(t, uint64(1), n2.EventCount())
	require.NotZero(t, n2.StorageUsage())

	// A different genesis is refused.
	other := testGenesis()
	other.LedgerID = "klingtoken-other-1"
	_, err = NewWithDB(cfg, other, db)
	require.Error(t, err)
	require.Contains(t, err.Error(), "different genesis")
}

func TestNodeScenarioTransferLifecycle(t *testing.T) {
	n := newTestNode(t, storage.NewMemory())
	owner := types.AccountID("treasury.klingnet")
	alice := types.AccountID("alice.klingnet")
	marker := types.NewAmount(1)

	// Register alice with the minimum deposit.
	min := n.StorageBounds().Min
	res, err := n.Register(token.Call{Caller: alice, Deposit: min}, "")
	require.NoError(t, err)
	require.True(t, res.Registered)

	// Transfer with the explicit-intent marker.
	_, err = n.Transfer(token.Call{Caller: owner, Deposit: marker}, alice, types.NewAmount(500), "hello")
	require.NoError(t, err)

	bal, err := n.BalanceOf(alice)
	require.NoError(t, err)
	require.Equal(t, uint64(500), bal.Uint64())

	// The transfer landed in the persisted event log.
	records, err := n.Events(0, 10)
	require.NoError(t, err)
	require.Len(t, records, 2)
	last := records[1]
	require.Equal(t, event.TypeTransfer, last.Type)
	require.Equal(t, owner, last.Sender)
	require.Equal(t, alice, last.Receiver)
	require.Equal(t, "hello", last.Memo)
}

func TestNodeScenarioNotifyTransfer(t *testing.T) {
	n := newTestNode(t, storage.NewMemory())
	owner := types.AccountID("treasury.klingnet")
	vault := types.AccountID("vault.klingnet")
	marker := types.NewAmount(1)

	min := n.StorageBounds().Min
	_, err := n.Register(token.Call{Caller: vault, Deposit: min}, "")
	require.NoError(t, err)

	// The vault keeps 60% of whatever arrives.
	n.RegisterReceiver(vault, token.ReceiverFunc(
		func(_ types.AccountID, amount types.Amount, _ []byte) (types.Amount, error) {
			kept, _ := amount.MulUint64(60)
			// integer percentage of the received amount
			unused, _ := amount.Sub(types.NewAmount(kept.Uint64() / 100))
			return unused, nil
		}))

	res, err := n.TransferAndNotify(token.Call{Caller: owner, Deposit: marker}, vault, types.NewAmount(100), "", []byte("deposit"))
	require.NoError(t, err)
	require.Equal(t, uint64(60), res.UsedAmount.Uint64())
	require.Equal(t, uint64(40), res.Refund.Uint64())

	bal, err := n.BalanceOf(vault)
	require.NoError(t, err)
	require.Equal(t, uint64(60), bal.Uint64())
}

func TestNodeRPCLifecycle(t *testing.T) {
	cfg := testConfig(t)
	cfg.RPC.Enabled = true
	cfg.RPC.Addr = "127.0.0.1"
	cfg.RPC.Port = 0

	n, err := NewWithDB(cfg, testGenesis(), storage.NewMemory())
	require.NoError(t, err)

	require.NoError(t, n.Start())
	require.NotEmpty(t, n.RPCAddr())
	n.Stop()
}
