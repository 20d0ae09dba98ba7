package taskengine

import (
	"context"
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/AvaProtocol/avax-workflow/model"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

const avaxDecimals = 18

var addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// ValidAddress reports whether s is a 0x prefixed address of 40 hex characters
func ValidAddress(s string) bool {
	return addressPattern.MatchString(s)
}

// AvaxToWei converts a decimal AVAX amount to wei, truncating anything below
// one wei
func AvaxToWei(amount string) (*big.Int, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	if !d.IsPositive() {
		return nil, fmt.Errorf("amount must be positive, got %s", amount)
	}

	return d.Shift(avaxDecimals).Truncate(0).BigInt(), nil
}

type SendAvaxProcessor struct {
	*CommonProcessor
}

func NewSendAvaxProcessor(p *CommonProcessor) *SendAvaxProcessor {
	return &SendAvaxProcessor{CommonProcessor: p}
}

func (p *SendAvaxProcessor) Execute(ctx context.Context, ec *ExecutionContext, nodeID string, data *model.SendAvaxData) (*StepResult, error) {
	if p.ports.Chain == nil {
		return nil, NewPortNotConfiguredError("chain")
	}

	to := data.To
	if !ValidAddress(to) {
		return nil, NewInvalidAddressError(to)
	}

	value, err := AvaxToWei(data.Amount)
	if err != nil {
		return nil, WrapStructuredError(InvalidParameters, err, "cannot convert amount")
	}

	req := TransactionRequest{
		From:  ec.Account,
		To:    common.HexToAddress(to),
		Value: value,
		Gas:   TransferGasLimit,
	}

	p.logger.Info("sending avax",
		"node_id", nodeID,
		"from", req.From.Hex(),
		"to", req.To.Hex(),
		"value", req.ValueHex(),
		"gas", req.GasHex())

	txHash, err := p.ports.Chain.SendTransaction(ctx, req)
	if err != nil {
		return nil, WrapStructuredError(ExternalCallFailed, err, "send transaction failed")
	}

	record := map[string]any{
		"txHash":      txHash.Hex(),
		"explorerUrl": p.explorerTxURL(txHash),
		"from":        req.From.Hex(),
		"to":          req.To.Hex(),
		"amount":      strings.TrimSpace(data.Amount),
		"valueWei":    value.String(),
	}

	result := &StepResult{
		Effect: txHash.Hex(),
		Output: record,
	}
	return result.Write(StoreKey("tx", nodeID), record), nil
}

func (c *CommonProcessor) explorerTxURL(hash common.Hash) string {
	base := c.explorerURL
	if base == "" {
		base = DefaultExplorerURL
	}
	return fmt.Sprintf("%s/tx/%s", strings.TrimRight(base, "/"), hash.Hex())
}
