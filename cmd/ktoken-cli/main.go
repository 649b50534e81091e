// ktoken-cli is a command-line client for interacting with a ktokend node.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/Klingon-tech/klingnet-token/internal/rpc"
	"github.com/Klingon-tech/klingnet-token/internal/rpcclient"
	"github.com/Klingon-tech/klingnet-token/pkg/types"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	// Parse global flags that appear before the subcommand.
	rpcURL := "http://127.0.0.1:8690"

	args := os.Args[1:]
	for len(args) > 0 {
		switch {
		case args[0] == "--rpc" && len(args) > 1:
			rpcURL = args[1]
			args = args[2:]
		case strings.HasPrefix(args[0], "--rpc="):
			rpcURL = args[0][len("--rpc="):]
			args = args[1:]
		default:
			goto dispatch
		}
	}

dispatch:
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	client := rpcclient.New(rpcURL)
	cmd := args[0]
	cmdArgs := args[1:]

	switch cmd {
	case "status":
		cmdStatus(client)
	case "metadata":
		cmdMetadata(client)
	case "supply":
		cmdSupply(client)
	case "balance":
		cmdBalance(client, cmdArgs)
	case "storage":
		cmdStorage(client, cmdArgs)
	case "bounds":
		cmdBounds(client)
	case "register":
		cmdRegister(client, cmdArgs)
	case "unregister":
		cmdUnregister(client, cmdArgs)
	case "send":
		cmdSend(client, cmdArgs)
	case "notify":
		cmdNotify(client, cmdArgs)
	case "events":
		cmdEvents(client, cmdArgs)
	case "help", "--help", "-h":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: ktoken-cli [global flags] <command> [flags]

Global flags:
  --rpc <url>         RPC endpoint (default: http://127.0.0.1:8690)

Commands:
  status                          Show ledger status
  metadata                        Show token metadata
  supply                          Show total supply
  balance <account>               Show account balance
  storage <account>               Show account storage balance
  bounds                          Show registration deposit bounds

  register --caller <acct> --deposit <amt> [--account <acct>]
                                  Register an account (pays storage deposit)
  unregister --caller <acct> [--force]
                                  Close the caller's registration
  send --caller <acct> --to <acct> --amount <n> [--memo <m>]
                                  Transfer tokens (attaches the 1-unit marker)
  notify --caller <acct> --to <acct> --amount <n> [--memo <m>] [--payload <p>]
                                  Transfer with receiver notification
  events [--from <seq>] [--limit <n>]
                                  Show the event log
`)
}

// ── status ──────────────────────────────────────────────────────────────

func cmdStatus(client *rpcclient.Client) {
	info, err := client.NodeInfo()
	if err != nil {
		fatal("node_getInfo: %v", err)
	}

	fmt.Printf("Ledger:       %s\n", info.LedgerID)
	fmt.Printf("Genesis:      %s\n", info.GenesisHash)
	fmt.Printf("Supply:       %s\n", info.TotalSupply)
	fmt.Printf("Accounts:     %d\n", info.Accounts)
	fmt.Printf("Storage used: %d bytes\n", info.StorageUsed)
	fmt.Printf("Events:       %d\n", info.Events)
}

func cmdMetadata(client *rpcclient.Client) {
	md, err := client.Metadata()
	if err != nil {
		fatal("token_getMetadata: %v", err)
	}

	fmt.Printf("Name:          %s\n", md.Name)
	fmt.Printf("Symbol:        %s\n", md.Symbol)
	fmt.Printf("Decimals:      %d\n", md.Decimals)
	fmt.Printf("Ledger:        %s\n", md.LedgerID)
	fmt.Printf("Storage price: %d per byte\n", md.StoragePricePerByte)
}

func cmdSupply(client *rpcclient.Client) {
	res, err := client.TotalSupply()
	if err != nil {
		fatal("token_totalSupply: %v", err)
	}
	fmt.Println(res.TotalSupply)
}

// ── account queries ─────────────────────────────────────────────────────

func cmdBalance(client *rpcclient.Client, args []string) {
	if len(args) < 1 {
		fatal("Usage: ktoken-cli balance <account>")
	}

	res, err := client.BalanceOf(args[0])
	if err != nil {
		fatal("token_balanceOf: %v", err)
	}
	fmt.Println(res.Balance)
}

func cmdStorage(client *rpcclient.Client, args []string) {
	if len(args) < 1 {
		fatal("Usage: ktoken-cli storage <account>")
	}

	res, err := client.StorageBalance(args[0])
	if err != nil {
		fatal("token_storageBalance: %v", err)
	}
	if res == nil {
		fmt.Printf("%s is not registered\n", args[0])
		return
	}
	fmt.Printf("Total:     %s\n", res.Total)
	fmt.Printf("Available: %s\n", res.Available)
}

func cmdBounds(client *rpcclient.Client) {
	res, err := client.StorageBounds()
	if err != nil {
		fatal("token_storageBounds: %v", err)
	}
	fmt.Printf("Min: %s\n", res.Min)
	fmt.Printf("Max: %s\n", res.Max)
}

// ── mutations ───────────────────────────────────────────────────────────

func cmdRegister(client *rpcclient.Client, args []string) {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	caller := fs.String("caller", "", "calling account")
	deposit := fs.String("deposit", "0", "attached payment")
	account := fs.String("account", "", "account to register (default: caller)")
	fs.Parse(args)

	params := rpc.RegisterParams{
		CallParams: callParams(*caller, *deposit),
		Account:    types.AccountID(*account),
	}
	res, err := client.Register(params)
	if err != nil {
		fatal("token_register: %v", err)
	}

	if res.Registered {
		fmt.Printf("Registered %s (refund %s)\n", res.Account, res.Refund)
	} else {
		fmt.Printf("%s was already registered (refund %s)\n", res.Account, res.Refund)
	}
}

func cmdUnregister(client *rpcclient.Client, args []string) {
	fs := flag.NewFlagSet("unregister", flag.ExitOnError)
	caller := fs.String("caller", "", "calling account")
	force := fs.Bool("force", false, "burn any remaining balance")
	fs.Parse(args)

	params := rpc.UnregisterParams{
		CallParams: callParams(*caller, "0"),
		Force:      *force,
	}
	res, err := client.Unregister(params)
	if err != nil {
		fatal("token_unregister: %v", err)
	}

	if res.Closed {
		fmt.Printf("Closed %s (burned %s, refund %s)\n", res.Account, res.ReleasedBalance, res.Refund)
	} else {
		fmt.Printf("%s was not registered\n", res.Account)
	}
}

func cmdSend(client *rpcclient.Client, args []string) {
	fs := flag.NewFlagSet("send", flag.ExitOnError)
	caller := fs.String("caller", "", "sending account")
	to := fs.String("to", "", "receiving account")
	amount := fs.String("amount", "", "amount in base units")
	memo := fs.String("memo", "", "optional memo")
	fs.Parse(args)

	params := rpc.TransferParams{
		// Transfers must attach the 1-unit intent marker.
		CallParams: callParams(*caller, "1"),
		Receiver:   types.AccountID(*to),
		Amount:     mustAmount(*amount),
		Memo:       *memo,
	}
	res, err := client.Transfer(params)
	if err != nil {
		fatal("token_transfer: %v", err)
	}
	fmt.Printf("Sent %s from %s to %s\n", res.Amount, res.Sender, res.Receiver)
}

func cmdNotify(client *rpcclient.Client, args []string) {
	fs := flag.NewFlagSet("notify", flag.ExitOnError)
	caller := fs.String("caller", "", "sending account")
	to := fs.String("to", "", "receiving account")
	amount := fs.String("amount", "", "amount in base units")
	memo := fs.String("memo", "", "optional memo")
	payload := fs.String("payload", "", "opaque payload for the receiver hook")
	fs.Parse(args)

	params := rpc.TransferParams{
		CallParams: callParams(*caller, "1"),
		Receiver:   types.AccountID(*to),
		Amount:     mustAmount(*amount),
		Memo:       *memo,
		Payload:    *payload,
	}
	res, err := client.TransferAndNotify(params)
	if err != nil {
		fatal("token_transferAndNotify: %v", err)
	}
	fmt.Printf("Sent %s from %s to %s\n", res.Amount, res.Sender, res.Receiver)
	fmt.Printf("Used:     %s\n", res.UsedAmount)
	fmt.Printf("Refunded: %s\n", res.Refund)
}

func cmdEvents(client *rpcclient.Client, args []string) {
	fs := flag.NewFlagSet("events", flag.ExitOnError)
	from := fs.Uint64("from", 0, "first sequence number")
	limit := fs.Int("limit", 20, "maximum records")
	fs.Parse(args)

	res, err := client.Events(*from, *limit)
	if err != nil {
		fatal("token_getEvents: %v", err)
	}

	for _, rec := range res.Events {
		switch rec.Type {
		case "mint":
			fmt.Printf("%6d  mint      %s -> %s\n", rec.Seq, rec.Amount, rec.Owner)
		case "transfer":
			fmt.Printf("%6d  transfer  %s  %s -> %s\n", rec.Seq, rec.Amount, rec.Sender, rec.Receiver)
		case "burn":
			fmt.Printf("%6d  burn      %s from %s\n", rec.Seq, rec.Amount, rec.Account)
		default:
			fmt.Printf("%6d  %s\n", rec.Seq, rec.Type)
		}
		if rec.Memo != "" {
			fmt.Printf("        memo: %s\n", rec.Memo)
		}
	}
	fmt.Printf("Total events: %d\n", res.Count)
}

// ── helpers ─────────────────────────────────────────────────────────────

func callParams(caller, deposit string) rpc.CallParams {
	if caller == "" {
		fatal("--caller is required")
	}
	return rpc.CallParams{
		Caller:  types.AccountID(caller),
		Deposit: mustAmount(deposit),
	}
}

func mustAmount(s string) types.Amount {
	if s == "" {
		fatal("--amount is required")
	}
	amt, err := types.ParseAmount(s)
	if err != nil {
		fatal("invalid amount %q: %v", s, err)
	}
	return amt
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
