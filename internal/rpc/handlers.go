package rpc

import (
	"errors"

	"github.com/Klingon-tech/klingnet-token/internal/fee"
	"github.com/Klingon-tech/klingnet-token/internal/ledger"
	"github.com/Klingon-tech/klingnet-token/internal/registry"
	"github.com/Klingon-tech/klingnet-token/internal/token"
)

// execError maps a contract operation failure onto a JSON-RPC error code.
// Domain rejections (unregistered account, insufficient balance, missing
// deposit) are reported as execution errors; anything else is internal.
func execError(err error) *Error {
	switch {
	case errors.Is(err, ledger.ErrAccountNotRegistered),
		errors.Is(err, ledger.ErrInsufficientBalance),
		errors.Is(err, ledger.ErrSelfTransfer),
		errors.Is(err, ledger.ErrZeroAmount),
		errors.Is(err, ledger.ErrOverflow),
		errors.Is(err, registry.ErrNonZeroBalance),
		errors.Is(err, registry.ErrInsufficientStorageDeposit),
		errors.Is(err, fee.ErrInsufficientDeposit),
		errors.Is(err, token.ErrExplicitIntentRequired):
		return &Error{Code: CodeExecutionError, Message: err.Error()}
	default:
		return &Error{Code: CodeInternalError, Message: err.Error()}
	}
}

// requireCall validates the common caller/deposit fields.
func requireCall(p CallParams) *Error {
	if p.Caller.IsZero() {
		return &Error{Code: CodeInvalidParams, Message: "caller is required"}
	}
	if err := p.Caller.Validate(); err != nil {
		return &Error{Code: CodeInvalidParams, Message: "invalid caller: " + err.Error()}
	}
	return nil
}

// ── Token endpoints ─────────────────────────────────────────────────────

func (s *Server) handleTokenRegister(req *Request) (interface{}, *Error) {
	var params RegisterParams
	if err := parseParams(req, &params); err != nil {
		return nil, err
	}
	if err := requireCall(params.CallParams); err != nil {
		return nil, err
	}
	if !params.Account.IsZero() {
		if err := params.Account.Validate(); err != nil {
			return nil, &Error{Code: CodeInvalidParams, Message: "invalid account: " + err.Error()}
		}
	}

	target := params.Account
	if target.IsZero() {
		target = params.Caller
	}

	res, err := s.backend.Register(token.Call{Caller: params.Caller, Deposit: params.Deposit}, params.Account)
	if err != nil {
		return nil, execError(err)
	}
	return &RegisterResult{
		Account:    target.String(),
		Registered: res.Registered,
		Refund:     res.Refund.String(),
	}, nil
}

func (s *Server) handleTokenUnregister(req *Request) (interface{}, *Error) {
	var params UnregisterParams
	if err := parseParams(req, &params); err != nil {
		return nil, err
	}
	if err := requireCall(params.CallParams); err != nil {
		return nil, err
	}

	res, err := s.backend.Unregister(token.Call{Caller: params.Caller, Deposit: params.Deposit}, params.Force)
	if err != nil {
		return nil, execError(err)
	}
	return &UnregisterResult{
		Account:         params.Caller.String(),
		Closed:          res.Closed,
		ReleasedBalance: res.ReleasedBalance.String(),
		Refund:          res.Refund.String(),
	}, nil
}

func (s *Server) handleTokenTransfer(req *Request) (interface{}, *Error) {
	var params TransferParams
	if err := parseParams(req, &params); err != nil {
		return nil, err
	}
	if err := requireCall(params.CallParams); err != nil {
		return nil, err
	}
	if params.Receiver.IsZero() {
		return nil, &Error{Code: CodeInvalidParams, Message: "receiver is required"}
	}

	res, err := s.backend.Transfer(
		token.Call{Caller: params.Caller, Deposit: params.Deposit},
		params.Receiver, params.Amount, params.Memo)
	if err != nil {
		return nil, execError(err)
	}
	return &TransferResult{
		Sender:   params.Caller.String(),
		Receiver: params.Receiver.String(),
		Amount:   params.Amount.String(),
		Refund:   res.Refund.String(),
	}, nil
}

func (s *Server) handleTokenTransferAndNotify(req *Request) (interface{}, *Error) {
	var params TransferParams
	if err := parseParams(req, &params); err != nil {
		return nil, err
	}
	if err := requireCall(params.CallParams); err != nil {
		return nil, err
	}
	if params.Receiver.IsZero() {
		return nil, &Error{Code: CodeInvalidParams, Message: "receiver is required"}
	}

	res, err := s.backend.TransferAndNotify(
		token.Call{Caller: params.Caller, Deposit: params.Deposit},
		params.Receiver, params.Amount, params.Memo, []byte(params.Payload))
	if err != nil {
		return nil, execError(err)
	}
	return &NotifyTransferResult{
		Sender:     params.Caller.String(),
		Receiver:   params.Receiver.String(),
		Amount:     params.Amount.String(),
		UsedAmount: res.UsedAmount.String(),
		Refund:     res.Refund.String(),
	}, nil
}

func (s *Server) handleTokenBalanceOf(req *Request) (interface{}, *Error) {
	var params AccountParams
	if err := parseParams(req, &params); err != nil {
		return nil, err
	}
	if params.Account.IsZero() {
		return nil, &Error{Code: CodeInvalidParams, Message: "account is required"}
	}

	balance, err := s.backend.BalanceOf(params.Account)
	if err != nil {
		return nil, &Error{Code: CodeInternalError, Message: err.Error()}
	}
	return &BalanceResult{
		Account: params.Account.String(),
		Balance: balance.String(),
	}, nil
}

func (s *Server) handleTokenTotalSupply(_ *Request) (interface{}, *Error) {
	supply, err := s.backend.TotalSupply()
	if err != nil {
		return nil, &Error{Code: CodeInternalError, Message: err.Error()}
	}
	return &SupplyResult{TotalSupply: supply.String()}, nil
}

func (s *Server) handleTokenStorageBalance(req *Request) (interface{}, *Error) {
	var params AccountParams
	if err := parseParams(req, &params); err != nil {
		return nil, err
	}
	if params.Account.IsZero() {
		return nil, &Error{Code: CodeInvalidParams, Message: "account is required"}
	}

	sb, err := s.backend.StorageBalance(params.Account)
	if err != nil {
		return nil, &Error{Code: CodeInternalError, Message: err.Error()}
	}
	if sb == nil {
		// Not registered: a null result, not an error.
		return nil, nil
	}
	return &StorageBalanceResult{
		Account:   params.Account.String(),
		Total:     sb.Total.String(),
		Available: sb.Available.String(),
	}, nil
}

func (s *Server) handleTokenStorageBounds(_ *Request) (interface{}, *Error) {
	bounds := s.backend.StorageBounds()
	return &StorageBoundsResult{
		Min: bounds.Min.String(),
		Max: bounds.Max.String(),
	}, nil
}

func (s *Server) handleTokenGetMetadata(_ *Request) (interface{}, *Error) {
	g := s.backend.Genesis()
	return &MetadataResult{
		LedgerID:            g.LedgerID,
		Name:                g.TokenName,
		Symbol:              g.Symbol,
		Decimals:            g.Decimals,
		StoragePricePerByte: g.StoragePricePerByte,
	}, nil
}

func (s *Server) handleTokenGetEvents(req *Request) (interface{}, *Error) {
	var params EventsParams
	if req.Params != nil {
		if err := parseParams(req, &params); err != nil {
			return nil, err
		}
	}
	if params.Limit < 0 {
		return nil, &Error{Code: CodeInvalidParams, Message: "limit must be non-negative"}
	}

	records, err := s.backend.Events(params.From, params.Limit)
	if err != nil {
		return nil, &Error{Code: CodeInternalError, Message: err.Error()}
	}
	return &EventsResult{Events: records, Count: s.backend.EventCount()}, nil
}

// ── Node endpoints ──────────────────────────────────────────────────────

func (s *Server) handleNodeGetInfo(_ *Request) (interface{}, *Error) {
	g := s.backend.Genesis()
	hash, err := g.Hash()
	if err != nil {
		return nil, &Error{Code: CodeInternalError, Message: err.Error()}
	}
	supply, err := s.backend.TotalSupply()
	if err != nil {
		return nil, &Error{Code: CodeInternalError, Message: err.Error()}
	}
	accounts, err := s.backend.AccountCount()
	if err != nil {
		return nil, &Error{Code: CodeInternalError, Message: err.Error()}
	}
	return &NodeInfoResult{
		LedgerID:    g.LedgerID,
		GenesisHash: hash.String(),
		TotalSupply: supply.String(),
		Accounts:    accounts,
		StorageUsed: s.backend.StorageUsage(),
		Events:      s.backend.EventCount(),
	}, nil
}
