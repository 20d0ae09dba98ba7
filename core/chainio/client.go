package chainio

import (
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	sdklogging "github.com/Layr-Labs/eigensdk-go/logging"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/shopspring/decimal"

	"github.com/AvaProtocol/avax-workflow/core/chainio/signer"
	"github.com/AvaProtocol/avax-workflow/core/taskengine"
	"github.com/AvaProtocol/avax-workflow/pkg/logger"
)

// SimpleStorageABI is the interface of the storage contract contractCall nodes
// talk to
const SimpleStorageABI = `[
	{"inputs":[{"internalType":"uint256","name":"num","type":"uint256"}],"name":"store","outputs":[],"stateMutability":"nonpayable","type":"function"},
	{"inputs":[],"name":"retrieve","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"}
]`

// Backend is the part of an ethclient.Client the chain client uses
type Backend interface {
	bind.DeployBackend

	ChainID(ctx context.Context) (*big.Int, error)
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	BlockNumber(ctx context.Context) (uint64, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
}

type Config struct {
	RPCURL     string
	PrivateKey string
	ChainID    int64
}

// Client signs and submits transactions with a single local key. It
// implements taskengine.ChainClient.
type Client struct {
	backend Backend
	closer  func()

	key     *ecdsa.PrivateKey
	opts    *bind.TransactOpts
	account common.Address
	chainID *big.Int

	storageABI abi.ABI
	logger     sdklogging.Logger
}

// Dial connects to the RPC endpoint in cfg
func Dial(ctx context.Context, cfg Config, log sdklogging.Logger) (*Client, error) {
	rpc, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", taskengine.ChainUnavailableError, err)
	}

	c, err := New(rpc, cfg.PrivateKey, cfg.ChainID, log)
	if err != nil {
		rpc.Close()
		return nil, err
	}
	c.closer = rpc.Close
	return c, nil
}

// New builds a client on an existing backend. An empty private key gives a
// read only client with no accounts.
func New(backend Backend, privateKeyHex string, chainID int64, log sdklogging.Logger) (*Client, error) {
	parsed, err := abi.JSON(strings.NewReader(SimpleStorageABI))
	if err != nil {
		return nil, err
	}

	c := &Client{
		backend:    backend,
		chainID:    big.NewInt(chainID),
		storageABI: parsed,
		logger:     logger.EnsureLogger(log),
	}

	if strings.TrimSpace(privateKeyHex) == "" {
		return c, nil
	}

	c.key, err = signer.ParsePrivateKey(privateKeyHex)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	c.opts, err = signer.FromPrivateKeyHex(privateKeyHex, c.chainID)
	if err != nil {
		return nil, err
	}
	c.account = crypto.PubkeyToAddress(c.key.PublicKey)

	return c, nil
}

func (c *Client) Close() {
	if c.closer != nil {
		c.closer()
	}
}

func (c *Client) Accounts(ctx context.Context) ([]common.Address, error) {
	if c.key == nil {
		return []common.Address{}, nil
	}
	return []common.Address{c.account}, nil
}

func (c *Client) ChainID(ctx context.Context) (*big.Int, error) {
	return c.backend.ChainID(ctx)
}

func (c *Client) Balance(ctx context.Context, account common.Address) (*big.Int, error) {
	return c.backend.BalanceAt(ctx, account, nil)
}

func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	return c.backend.BlockNumber(ctx)
}

// ensureChain fails with ErrChainMismatch when the RPC endpoint moved to a
// different network than the one the key signs for
func (c *Client) ensureChain(ctx context.Context) error {
	id, err := c.backend.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", taskengine.ChainUnavailableError, err)
	}
	if id.Cmp(c.chainID) != 0 {
		return fmt.Errorf("%w: rpc reports %s, signer expects %s", taskengine.ErrChainMismatch, id, c.chainID)
	}
	return nil
}

func (c *Client) signAndSend(ctx context.Context, to common.Address, value *big.Int, gas uint64, data []byte) (*types.Transaction, error) {
	if c.opts == nil {
		return nil, fmt.Errorf("%s", taskengine.NoActiveAccountError)
	}
	if err := c.ensureChain(ctx); err != nil {
		return nil, err
	}

	nonce, err := c.backend.PendingNonceAt(ctx, c.account)
	if err != nil {
		return nil, fmt.Errorf("cannot read nonce: %w", err)
	}
	gasPrice, err := c.backend.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("cannot suggest gas price: %w", err)
	}
	if value == nil {
		value = big.NewInt(0)
	}

	if gas == 0 {
		gas, err = c.backend.EstimateGas(ctx, ethereum.CallMsg{
			From:  c.account,
			To:    &to,
			Value: value,
			Data:  data,
		})
		if err != nil {
			return nil, fmt.Errorf("cannot estimate gas: %w", err)
		}
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      gas,
		To:       &to,
		Value:    value,
		Data:     data,
	})

	signed, err := c.opts.Signer(c.account, tx)
	if err != nil {
		return nil, fmt.Errorf("cannot sign transaction: %w", err)
	}

	if err := c.backend.SendTransaction(ctx, signed); err != nil {
		return nil, err
	}

	c.logger.Info("transaction submitted", "hash", signed.Hash().Hex(), "to", to.Hex(), "nonce", nonce, "gas", gas)
	return signed, nil
}

func (c *Client) SendTransaction(ctx context.Context, req taskengine.TransactionRequest) (common.Hash, error) {
	if req.From != (common.Address{}) && req.From != c.account {
		return common.Hash{}, fmt.Errorf("cannot sign for %s, active account is %s", req.From.Hex(), c.account.Hex())
	}

	gas := req.Gas
	if gas == 0 {
		gas = taskengine.TransferGasLimit
	}

	tx, err := c.signAndSend(ctx, req.To, req.Value, gas, nil)
	if err != nil {
		return common.Hash{}, err
	}
	return tx.Hash(), nil
}

// CallContract runs retrieve as an eth_call and store as a signed
// transaction, waiting for its receipt
func (c *Client) CallContract(ctx context.Context, contract common.Address, fn string, args []any) (*taskengine.ContractResult, error) {
	method, ok := c.storageABI.Methods[fn]
	if !ok {
		return nil, fmt.Errorf("unsupported contract function: %s", fn)
	}

	values, err := convertArgs(method, args)
	if err != nil {
		return nil, err
	}

	data, err := c.storageABI.Pack(fn, values...)
	if err != nil {
		return nil, fmt.Errorf("cannot encode %s call: %w", fn, err)
	}

	if method.IsConstant() {
		out, err := c.backend.CallContract(ctx, ethereum.CallMsg{From: c.account, To: &contract, Data: data}, nil)
		if err != nil {
			return nil, err
		}

		decoded, err := c.storageABI.Unpack(fn, out)
		if err != nil {
			return nil, fmt.Errorf("cannot decode %s result: %w", fn, err)
		}
		return &taskengine.ContractResult{Value: formatResult(decoded)}, nil
	}

	tx, err := c.signAndSend(ctx, contract, nil, 0, data)
	if err != nil {
		return nil, err
	}

	receipt, err := bind.WaitMined(ctx, c.backend, tx)
	if err != nil {
		return nil, fmt.Errorf("waiting for %s: %w", tx.Hash().Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("transaction %s reverted", tx.Hash().Hex())
	}

	return &taskengine.ContractResult{TxHash: tx.Hash().Hex()}, nil
}

// convertArgs maps JSON decoded parameters onto the abi input types
func convertArgs(method abi.Method, args []any) ([]any, error) {
	if len(args) != len(method.Inputs) {
		return nil, fmt.Errorf("%s expects %d parameters, got %d", method.Name, len(method.Inputs), len(args))
	}

	out := make([]any, len(args))
	for i, input := range method.Inputs {
		switch input.Type.T {
		case abi.UintTy, abi.IntTy:
			n, err := toBigInt(args[i])
			if err != nil {
				return nil, fmt.Errorf("parameter %d: %w", i, err)
			}
			if input.Type.T == abi.UintTy && n.Sign() < 0 {
				return nil, fmt.Errorf("parameter %d must not be negative", i)
			}
			out[i] = n
		case abi.AddressTy:
			s, ok := args[i].(string)
			if !ok || !common.IsHexAddress(s) {
				return nil, fmt.Errorf("parameter %d must be an address", i)
			}
			out[i] = common.HexToAddress(s)
		case abi.BoolTy:
			b, ok := args[i].(bool)
			if !ok {
				return nil, fmt.Errorf("parameter %d must be a boolean", i)
			}
			out[i] = b
		case abi.StringTy:
			out[i] = fmt.Sprintf("%v", args[i])
		default:
			return nil, fmt.Errorf("parameter %d has unsupported type %s", i, input.Type.String())
		}
	}
	return out, nil
}

func toBigInt(v any) (*big.Int, error) {
	var d decimal.Decimal
	switch t := v.(type) {
	case float64:
		d = decimal.NewFromFloat(t)
	case int:
		d = decimal.NewFromInt(int64(t))
	case int64:
		d = decimal.NewFromInt(t)
	case json.Number:
		parsed, err := decimal.NewFromString(t.String())
		if err != nil {
			return nil, err
		}
		d = parsed
	case string:
		parsed, err := decimal.NewFromString(strings.TrimSpace(t))
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", t)
		}
		d = parsed
	default:
		return nil, fmt.Errorf("%v is not a number", v)
	}

	if !d.Equal(d.Truncate(0)) {
		return nil, fmt.Errorf("%s is not an integer", d.String())
	}
	return d.BigInt(), nil
}

func formatResult(values []any) any {
	formatted := make([]any, len(values))
	for i, v := range values {
		if n, ok := v.(*big.Int); ok {
			formatted[i] = n.String()
			continue
		}
		formatted[i] = v
	}

	if len(formatted) == 1 {
		return formatted[0]
	}
	return formatted
}
