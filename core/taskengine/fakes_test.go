package taskengine

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/AvaProtocol/avax-workflow/core/testutil"
)

type fakeChain struct {
	mu sync.Mutex

	accounts []common.Address
	chainID  *big.Int
	balance  *big.Int
	block    uint64

	accountsErr error
	sendErr     error
	callErr     error

	calls        []string
	transactions []TransactionRequest
	contractArgs [][]any
	retrieved    any
}

func newFakeChain() *fakeChain {
	return &fakeChain{
		accounts:  []common.Address{testutil.TestAccount()},
		chainID:   big.NewInt(DefaultExpectedChainID),
		balance:   big.NewInt(5_000_000_000_000_000_000),
		block:     123456,
		retrieved: "42",
	}
}

func (f *fakeChain) track(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
}

func (f *fakeChain) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.calls...)
}

func (f *fakeChain) Accounts(ctx context.Context) ([]common.Address, error) {
	f.track("Accounts")
	return f.accounts, f.accountsErr
}

func (f *fakeChain) ChainID(ctx context.Context) (*big.Int, error) {
	f.track("ChainID")
	return f.chainID, nil
}

func (f *fakeChain) Balance(ctx context.Context, account common.Address) (*big.Int, error) {
	f.track("Balance")
	return f.balance, nil
}

func (f *fakeChain) BlockNumber(ctx context.Context) (uint64, error) {
	f.track("BlockNumber")
	return f.block, nil
}

func (f *fakeChain) SendTransaction(ctx context.Context, req TransactionRequest) (common.Hash, error) {
	f.track("SendTransaction")
	if f.sendErr != nil {
		return common.Hash{}, f.sendErr
	}
	f.mu.Lock()
	f.transactions = append(f.transactions, req)
	n := len(f.transactions)
	f.mu.Unlock()
	return common.BigToHash(big.NewInt(int64(n))), nil
}

func (f *fakeChain) CallContract(ctx context.Context, contract common.Address, fn string, args []any) (*ContractResult, error) {
	f.track("CallContract")
	if f.callErr != nil {
		return nil, f.callErr
	}
	f.mu.Lock()
	f.contractArgs = append(f.contractArgs, args)
	f.mu.Unlock()

	if fn == ContractFunctionStore {
		return &ContractResult{TxHash: common.BigToHash(big.NewInt(99)).Hex()}, nil
	}
	return &ContractResult{Value: f.retrieved}, nil
}

type fakeHTTP struct {
	requests []HTTPRequest
	status   int
	body     string
	err      error
}

func (f *fakeHTTP) Call(ctx context.Context, req HTTPRequest) (*HTTPResponse, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	status := f.status
	if status == 0 {
		status = 200
	}
	return &HTTPResponse{Status: status, Body: []byte(f.body)}, nil
}

type fakeAI struct {
	prompts []string
	reply   string
	err     error
}

func (f *fakeAI) Complete(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.reply, f.err
}

type fakeMessenger struct {
	sent []string
	err  error
}

func (f *fakeMessenger) Send(ctx context.Context, phone, message string) (*Delivery, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, phone+": "+message)
	return &Delivery{ID: "wamid.1", Status: "accepted"}, nil
}

type fakePrices struct {
	floor       *NFTPrice
	token       decimal.Decimal
	marketplace string
	symbol      string
	err         error
}

func (f *fakePrices) FloorPrice(ctx context.Context, marketplace, contract, tokenID string) (*NFTPrice, error) {
	f.marketplace = marketplace
	if f.err != nil {
		return nil, f.err
	}
	return f.floor, nil
}

func (f *fakePrices) TokenPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	f.symbol = symbol
	if f.err != nil {
		return decimal.Zero, f.err
	}
	return f.token, nil
}

// recordingSleeper records requested delays without waiting
type recordingSleeper struct {
	waits []time.Duration
}

func (s *recordingSleeper) Sleep(ctx context.Context, d time.Duration) error {
	s.waits = append(s.waits, d)
	return ctx.Err()
}

var errBoom = errors.New("boom")

type testPorts struct {
	chain     *fakeChain
	http      *fakeHTTP
	ai        *fakeAI
	messenger *fakeMessenger
	prices    *fakePrices
}

func newTestPorts() *testPorts {
	return &testPorts{
		chain:     newFakeChain(),
		http:      &fakeHTTP{},
		ai:        &fakeAI{},
		messenger: &fakeMessenger{},
		prices:    &fakePrices{},
	}
}

func (p *testPorts) Ports() Ports {
	return Ports{
		Chain:     p.chain,
		HTTP:      p.http,
		AI:        p.ai,
		Messenger: p.messenger,
		Prices:    p.prices,
	}
}

// portCalls counts every call that reached a port
func (p *testPorts) portCalls() int {
	return len(p.chain.Calls()) + len(p.http.requests) + len(p.ai.prompts) + len(p.messenger.sent)
}
