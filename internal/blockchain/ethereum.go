package blockchain

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/rahulbansal29/Landchain/internal/config"
	"github.com/rahulbansal29/Landchain/internal/models"
	"github.com/rahulbansal29/Landchain/pkg/logger"
)

const (
	// CallTimeout bounds read-only contract calls.
	CallTimeout = 10 * time.Second
)

// Client talks to the external ledger: the SPV token contract (mint
// settlement, balances) and the KYC registry (approval oracle). It
// implements models.MintLedger and models.ApprovalOracle.
type Client struct {
	logger *logger.Logger
	config *config.Config
	apiURL string
	client *ethclient.Client

	chainID *big.Int
	// txMu serializes state-changing transactions so the operator
	// account's nonce is assigned in order.
	txMu sync.Mutex
	opts *bind.TransactOpts

	tokenAddr common.Address
	token     *bind.BoundContract
	registry  *bind.BoundContract

	mu       sync.Mutex
	decimals *uint8
}

// New creates a new ledger client. Run must be called before use.
func New(apiURL string, logger *logger.Logger, config *config.Config) *Client {
	return &Client{apiURL: apiURL, logger: logger, config: config}
}

func (c *Client) Run(ctx context.Context) error {
	if err := c.ConnectToRPC(); err != nil {
		return fmt.Errorf("failed to connect to the RPC server: %w", err)
	}
	if err := c.BuildBindings(ctx); err != nil {
		return fmt.Errorf("failed to build bindings: %w", err)
	}
	return nil
}

func (c *Client) ConnectToRPC() error {
	client, err := ethclient.Dial(c.apiURL)
	if err != nil {
		return fmt.Errorf("failed to connect to the RPC server: %w", err)
	}
	c.client = client
	return nil
}

func (c *Client) BuildBindings(ctx context.Context) error {
	chainID := big.NewInt(c.config.ChainID)
	if c.config.ChainID == 0 {
		queried, err := c.client.ChainID(ctx)
		if err != nil {
			return fmt.Errorf("failed to query chain ID: %w", err)
		}
		chainID = queried
	}
	c.chainID = chainID

	key, err := crypto.HexToECDSA(strings.TrimPrefix(c.config.OperatorPrivateKey, "0x"))
	if err != nil {
		return fmt.Errorf("failed to parse operator private key: %w", err)
	}
	opts, err := bind.NewKeyedTransactorWithChainID(key, chainID)
	if err != nil {
		return fmt.Errorf("failed to build transactor: %w", err)
	}
	c.opts = opts

	tokenABI, err := abi.JSON(strings.NewReader(SPVTokenABI))
	if err != nil {
		return fmt.Errorf("failed to parse SPV token ABI: %w", err)
	}
	c.tokenAddr = common.HexToAddress(c.config.SPVTokenAddress)
	c.token = bind.NewBoundContract(c.tokenAddr, tokenABI, c.client, c.client, c.client)

	registryABI, err := abi.JSON(strings.NewReader(KYCRegistryABI))
	if err != nil {
		return fmt.Errorf("failed to parse KYC registry ABI: %w", err)
	}
	registryAddr := common.HexToAddress(c.config.KYCRegistryAddress)
	c.registry = bind.NewBoundContract(registryAddr, registryABI, c.client, c.client, c.client)

	return nil
}

func (c *Client) Close() error {
	if c.client != nil {
		c.client.Close()
	}
	return nil
}

// Mint mints tokens to the wallet and blocks until the transaction is
// confirmed. The returned hash identifies the settled transaction.
func (c *Client) Mint(ctx context.Context, wallet string, tokens int64) (string, error) {
	decimals, err := c.tokenDecimals(ctx)
	if err != nil {
		return "", err
	}
	amount := tokensToUnits(tokens, decimals)

	tx, err := c.transact(ctx, c.token, "mint", common.HexToAddress(wallet), amount)
	if err != nil {
		return "", fmt.Errorf("mint transaction for %s: %v: %w", wallet, err, models.ErrSettlement)
	}
	return tx, nil
}

func (c *Client) BalanceOf(ctx context.Context, wallet string) (string, error) {
	decimals, err := c.tokenDecimals(ctx)
	if err != nil {
		return "", err
	}
	var results []interface{}
	if err := c.call(ctx, c.token, &results, "balanceOf", common.HexToAddress(wallet)); err != nil {
		return "", fmt.Errorf("failed to get balance: %v: %w", err, models.ErrSettlement)
	}
	balance := results[0].(*big.Int)
	return formatUnits(balance, decimals), nil
}

func (c *Client) TokenInfo(ctx context.Context) (*models.TokenInfo, error) {
	decimals, err := c.tokenDecimals(ctx)
	if err != nil {
		return nil, err
	}

	var nameOut, symbolOut, supplyOut []interface{}
	if err := c.call(ctx, c.token, &nameOut, "name"); err != nil {
		return nil, fmt.Errorf("failed to get token name: %v: %w", err, models.ErrSettlement)
	}
	if err := c.call(ctx, c.token, &symbolOut, "symbol"); err != nil {
		return nil, fmt.Errorf("failed to get token symbol: %v: %w", err, models.ErrSettlement)
	}
	if err := c.call(ctx, c.token, &supplyOut, "totalSupply"); err != nil {
		return nil, fmt.Errorf("failed to get total supply: %v: %w", err, models.ErrSettlement)
	}

	return &models.TokenInfo{
		Name:        nameOut[0].(string),
		Symbol:      symbolOut[0].(string),
		TotalSupply: formatUnits(supplyOut[0].(*big.Int), decimals),
		Decimals:    decimals,
	}, nil
}

// MintEvents returns the mints settled on the token contract since
// fromBlock, i.e. Transfer events from the zero address.
func (c *Client) MintEvents(ctx context.Context, fromBlock uint64) ([]models.MintEvent, error) {
	decimals, err := c.tokenDecimals(ctx)
	if err != nil {
		return nil, err
	}

	transferTopic := crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)"))
	zeroTopic := common.Hash{}
	logs, err := c.client.FilterLogs(ctx, ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(fromBlock),
		Addresses: []common.Address{c.tokenAddr},
		Topics:    [][]common.Hash{{transferTopic}, {zeroTopic}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to filter mint events: %v: %w", err, models.ErrSettlement)
	}

	events := make([]models.MintEvent, 0, len(logs))
	for _, entry := range logs {
		if len(entry.Topics) < 3 {
			continue
		}
		value := new(big.Int).SetBytes(entry.Data)
		events = append(events, models.MintEvent{
			Wallet:      common.BytesToAddress(entry.Topics[2].Bytes()).Hex(),
			Tokens:      unitsToTokens(value, decimals),
			TxHash:      entry.TxHash.Hex(),
			BlockNumber: entry.BlockNumber,
		})
	}
	return events, nil
}

// IsApproved queries the live KYC registry.
func (c *Client) IsApproved(ctx context.Context, wallet string) (bool, error) {
	var results []interface{}
	if err := c.call(ctx, c.registry, &results, "isKYCApproved", common.HexToAddress(wallet)); err != nil {
		return false, fmt.Errorf("failed to query KYC registry: %v: %w", err, models.ErrSettlement)
	}
	return results[0].(bool), nil
}

// Approve marks the wallet approved on the registry and blocks until the
// transaction is confirmed.
func (c *Client) Approve(ctx context.Context, wallet string) (string, error) {
	tx, err := c.transact(ctx, c.registry, "approveKYC", common.HexToAddress(wallet))
	if err != nil {
		return "", fmt.Errorf("approve transaction for %s: %v: %w", wallet, err, models.ErrSettlement)
	}
	return tx, nil
}

// Revoke marks the wallet revoked on the registry and blocks until the
// transaction is confirmed.
func (c *Client) Revoke(ctx context.Context, wallet string) (string, error) {
	tx, err := c.transact(ctx, c.registry, "revokeKYC", common.HexToAddress(wallet))
	if err != nil {
		return "", fmt.Errorf("revoke transaction for %s: %v: %w", wallet, err, models.ErrSettlement)
	}
	return tx, nil
}

// transact submits a state-changing call and waits for its receipt.
func (c *Client) transact(ctx context.Context, contract *bind.BoundContract, method string, params ...interface{}) (string, error) {
	c.txMu.Lock()
	c.opts.Context = ctx
	tx, err := contract.Transact(c.opts, method, params...)
	c.txMu.Unlock()
	if err != nil {
		return "", fmt.Errorf("failed to submit %s: %w", method, err)
	}

	c.logger.Debug("Waiting for transaction confirmation ", "method ", method, " tx ", tx.Hash().Hex())
	receipt, err := bind.WaitMined(ctx, c.client, tx)
	if err != nil {
		return "", fmt.Errorf("failed to confirm %s: %w", method, err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return "", fmt.Errorf("%s transaction %s reverted", method, tx.Hash().Hex())
	}
	return tx.Hash().Hex(), nil
}

func (c *Client) call(ctx context.Context, contract *bind.BoundContract, results *[]interface{}, method string, params ...interface{}) error {
	callCtx, cancel := context.WithTimeout(ctx, CallTimeout)
	defer cancel()
	return contract.Call(&bind.CallOpts{Context: callCtx}, results, method, params...)
}

// tokenDecimals returns the token's decimals, cached after the first call.
func (c *Client) tokenDecimals(ctx context.Context) (uint8, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.decimals != nil {
		return *c.decimals, nil
	}
	var results []interface{}
	if err := c.call(ctx, c.token, &results, "decimals"); err != nil {
		return 0, fmt.Errorf("failed to get token decimals: %v: %w", err, models.ErrSettlement)
	}
	decimals := results[0].(uint8)
	c.decimals = &decimals
	return decimals, nil
}

func tokensToUnits(tokens int64, decimals uint8) *big.Int {
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	return new(big.Int).Mul(big.NewInt(tokens), scale)
}

func unitsToTokens(units *big.Int, decimals uint8) int64 {
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	return new(big.Int).Div(units, scale).Int64()
}

// formatUnits renders a raw token amount as a decimal string, trimming
// trailing fractional zeros.
func formatUnits(units *big.Int, decimals uint8) string {
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	whole, frac := new(big.Int).QuoRem(units, scale, new(big.Int))
	if frac.Sign() == 0 {
		return whole.String()
	}
	fracStr := strings.TrimRight(fmt.Sprintf("%0*s", decimals, frac.String()), "0")
	return whole.String() + "." + fracStr
}
