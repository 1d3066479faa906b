package models

import "context"

// TokenInfo describes the SPV token contract.
type TokenInfo struct {
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	TotalSupply string `json:"totalSupply"`
	Decimals    uint8  `json:"decimals"`
}

// MintEvent is a settled mint observed on the external ledger, used by the
// reconciliation pass.
type MintEvent struct {
	Wallet      string `json:"wallet"`
	Tokens      int64  `json:"tokens"`
	TxHash      string `json:"txHash"`
	BlockNumber uint64 `json:"blockNumber"`
}

// MintLedger is the external settlement ledger (the SPV token contract).
// Calls are slow, network-dependent and may fail independently of local
// validation; Mint blocks until the transaction reaches finality.
type MintLedger interface {
	Mint(ctx context.Context, wallet string, tokens int64) (txHash string, err error)
	BalanceOf(ctx context.Context, wallet string) (string, error)
	TokenInfo(ctx context.Context) (*TokenInfo, error)
	MintEvents(ctx context.Context, fromBlock uint64) ([]MintEvent, error)
}

// ApprovalOracle is the external KYC registry, authoritative for whether a
// wallet may receive tokens. Approve and Revoke block until their
// transactions are confirmed.
type ApprovalOracle interface {
	IsApproved(ctx context.Context, wallet string) (bool, error)
	Approve(ctx context.Context, wallet string) (txHash string, err error)
	Revoke(ctx context.Context, wallet string) (txHash string, err error)
}
