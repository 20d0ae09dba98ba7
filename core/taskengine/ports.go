package taskengine

import (
	"context"
	"errors"
	"math/big"
	"strings"

	"github.com/AvaProtocol/avax-workflow/model"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/shopspring/decimal"
)

const (
	// Avalanche Fuji C-Chain
	DefaultExpectedChainID int64 = 43113

	TransferGasLimit uint64 = 21000

	DefaultExplorerURL = "https://testnet.snowtrace.io"
)

// ErrChainMismatch is returned by a chain client when the connected network
// changed under a running workflow. It aborts the rest of the run.
var ErrChainMismatch = errors.New("connected chain does not match the expected network")

// ChainClient is the subset of chain RPC the engine needs
type ChainClient interface {
	Accounts(ctx context.Context) ([]common.Address, error)
	ChainID(ctx context.Context) (*big.Int, error)
	Balance(ctx context.Context, account common.Address) (*big.Int, error)
	BlockNumber(ctx context.Context) (uint64, error)
	SendTransaction(ctx context.Context, req TransactionRequest) (common.Hash, error)
	CallContract(ctx context.Context, contract common.Address, functionName string, args []any) (*ContractResult, error)
}

type TransactionRequest struct {
	From  common.Address
	To    common.Address
	Value *big.Int
	Gas   uint64
}

// ValueHex is the value in wei as a 0x prefixed quantity
func (r TransactionRequest) ValueHex() string {
	if r.Value == nil {
		return "0x0"
	}
	return hexutil.EncodeBig(r.Value)
}

func (r TransactionRequest) GasHex() string {
	return hexutil.EncodeUint64(r.Gas)
}

// ContractResult is either the decoded return value of a read-only call or
// the hash of a confirmed state-mutating transaction
type ContractResult struct {
	TxHash string `json:"txHash,omitempty"`
	Value  any    `json:"value,omitempty"`
}

type HTTPRequest struct {
	URL     string
	Method  string
	Headers map[string]string
	Body    string
}

type HTTPResponse struct {
	Status int
	Body   []byte
}

// HTTPRelay performs outbound HTTP calls on behalf of apiCall nodes
type HTTPRelay interface {
	Call(ctx context.Context, req HTTPRequest) (*HTTPResponse, error)
}

type AICompleter interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type Delivery struct {
	ID     string `json:"id"`
	Status string `json:"status,omitempty"`
}

type Messenger interface {
	Send(ctx context.Context, phoneNumber, message string) (*Delivery, error)
}

type NFTPrice struct {
	FloorPrice float64 `json:"floorPrice"`
	LastSale   float64 `json:"lastSale"`
	Currency   string  `json:"currency"`
	Timestamp  int64   `json:"timestamp"`
}

type PriceFeed interface {
	FloorPrice(ctx context.Context, marketplace, contract, tokenID string) (*NFTPrice, error)
	TokenPrice(ctx context.Context, symbol string) (decimal.Decimal, error)
}

// OutcomeSink receives every node outcome as soon as it is produced, then
// the final run outcome
type OutcomeSink interface {
	Report(outcome model.NodeOutcome)
	ReportRun(outcome *model.RunOutcome)
}

// Ports bundles the external collaborators of the engine. A nil port makes
// the nodes depending on it fail with ExternalCallFailed.
type Ports struct {
	Chain     ChainClient
	HTTP      HTTPRelay
	AI        AICompleter
	Messenger Messenger
	Prices    PriceFeed
}

const DefaultMarketplace = "joepegs"

var Marketplaces = []string{"joepegs", "campfire", "kalao", "opensea"}

// NormalizeMarketplace maps unknown or empty marketplace names to the default
func NormalizeMarketplace(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, m := range Marketplaces {
		if m == name {
			return m
		}
	}
	return DefaultMarketplace
}
