package taskengine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/AvaProtocol/avax-workflow/model"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
)

const (
	PriceConditionAbove = "above"
	PriceConditionBelow = "below"
	PriceConditionEqual = "equal"

	DefaultPriceSymbol = "AVAX"
)

// two prices closer than this are equal
var priceEpsilon = decimal.RequireFromString("0.01")

// cronParser accepts standard 5 field expressions and descriptors like @hourly
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// PriceConditionMet evaluates above, below or equal of price against threshold.
// An empty condition means above.
func PriceConditionMet(condition string, price, threshold decimal.Decimal) bool {
	switch strings.ToLower(strings.TrimSpace(condition)) {
	case PriceConditionBelow:
		return price.LessThan(threshold)
	case PriceConditionEqual:
		return price.Sub(threshold).Abs().LessThan(priceEpsilon)
	default:
		return price.GreaterThan(threshold)
	}
}

type BlockTriggerProcessor struct {
	*CommonProcessor
}

func NewBlockTriggerProcessor(p *CommonProcessor) *BlockTriggerProcessor {
	return &BlockTriggerProcessor{CommonProcessor: p}
}

func (p *BlockTriggerProcessor) Execute(ctx context.Context, ec *ExecutionContext, nodeID string, data *model.BlockTriggerData) (*StepResult, error) {
	if p.ports.Chain == nil {
		return nil, NewPortNotConfiguredError("chain")
	}

	blockNumber, err := p.ports.Chain.BlockNumber(ctx)
	if err != nil {
		return nil, WrapStructuredError(ExternalCallFailed, err, "cannot read latest block")
	}

	record := map[string]any{
		"blockNumber": blockNumber,
		"chainId":     ec.ChainID,
	}

	result := &StepResult{
		Effect: fmt.Sprintf("block %d", blockNumber),
		Output: record,
	}
	return result.Write(StoreKey("block", nodeID), record), nil
}

type TimeTriggerProcessor struct {
	*CommonProcessor
}

func NewTimeTriggerProcessor(p *CommonProcessor) *TimeTriggerProcessor {
	return &TimeTriggerProcessor{CommonProcessor: p}
}

// NextFireTime computes when an interval would fire next after now. The
// interval is a number of seconds, a Go duration or a cron expression.
func NextFireTime(interval string, now time.Time) (time.Time, error) {
	interval = strings.TrimSpace(interval)

	if d, ok := parseDecimal(interval); ok {
		if !d.IsPositive() {
			return time.Time{}, fmt.Errorf("interval must be positive, got %s", interval)
		}
		return now.Add(time.Duration(d.Mul(decimal.NewFromInt(int64(time.Second))).IntPart())), nil
	}

	if d, err := time.ParseDuration(interval); err == nil {
		if d <= 0 {
			return time.Time{}, fmt.Errorf("interval must be positive, got %s", interval)
		}
		return now.Add(d), nil
	}

	schedule, err := cronParser.Parse(interval)
	if err != nil {
		return time.Time{}, fmt.Errorf("interval %q is neither a duration nor a cron expression: %w", interval, err)
	}
	return schedule.Next(now), nil
}

func (p *TimeTriggerProcessor) Execute(ctx context.Context, ec *ExecutionContext, nodeID string, data *model.TimeTriggerData) (*StepResult, error) {
	now := p.now()

	next, err := NextFireTime(data.Interval, now)
	if err != nil {
		return nil, WrapStructuredError(InvalidParameters, err, "cannot parse interval")
	}

	record := map[string]any{
		"interval":    strings.TrimSpace(data.Interval),
		"evaluatedAt": now.UnixMilli(),
		"nextRunAt":   next.UTC().Format(time.RFC3339),
		"nextRunAtMs": next.UnixMilli(),
	}

	result := &StepResult{
		Effect: fmt.Sprintf("next run at %s", next.UTC().Format(time.RFC3339)),
		Output: record,
	}
	return result.Write(StoreKey("time", nodeID), record), nil
}

type PriceTriggerProcessor struct {
	*CommonProcessor
}

func NewPriceTriggerProcessor(p *CommonProcessor) *PriceTriggerProcessor {
	return &PriceTriggerProcessor{CommonProcessor: p}
}

func (p *PriceTriggerProcessor) Execute(ctx context.Context, ec *ExecutionContext, nodeID string, data *model.PriceTriggerData) (*StepResult, error) {
	if p.ports.Prices == nil {
		return nil, NewPortNotConfiguredError("prices")
	}

	threshold, ok := parseDecimal(data.Threshold)
	if !ok {
		return nil, NewStructuredError(InvalidParameters, fmt.Sprintf("invalid threshold %q", data.Threshold))
	}

	symbol := strings.ToUpper(strings.TrimSpace(data.Symbol))
	if symbol == "" {
		symbol = DefaultPriceSymbol
	}

	price, err := p.ports.Prices.TokenPrice(ctx, symbol)
	if err != nil {
		return nil, WrapStructuredError(ExternalCallFailed, err, "cannot fetch %s price", symbol)
	}

	condition := strings.ToLower(strings.TrimSpace(data.PriceCondition))
	if condition == "" {
		condition = PriceConditionAbove
	}
	met := PriceConditionMet(condition, price, threshold)

	priceF, _ := price.Float64()
	thresholdF, _ := threshold.Float64()
	record := map[string]any{
		"symbol":       symbol,
		"price":        priceF,
		"threshold":    thresholdF,
		"condition":    condition,
		"conditionMet": met,
	}

	result := &StepResult{
		Effect: fmt.Sprintf("%s at %s, %s %s: %t", symbol, price.String(), condition, threshold.String(), met),
		Output: record,
	}
	return result.Write(StoreKey("price", nodeID), record), nil
}

type NFTPriceTriggerProcessor struct {
	*CommonProcessor
}

func NewNFTPriceTriggerProcessor(p *CommonProcessor) *NFTPriceTriggerProcessor {
	return &NFTPriceTriggerProcessor{CommonProcessor: p}
}

func (p *NFTPriceTriggerProcessor) Execute(ctx context.Context, ec *ExecutionContext, nodeID string, data *model.NFTPriceTriggerData) (*StepResult, error) {
	if p.ports.Prices == nil {
		return nil, NewPortNotConfiguredError("prices")
	}

	marketplace := NormalizeMarketplace(data.Marketplace)
	if data.Marketplace != "" && !strings.EqualFold(strings.TrimSpace(data.Marketplace), marketplace) {
		p.logger.Warn("unknown marketplace, using default", "node_id", nodeID, "marketplace", data.Marketplace, "default", marketplace)
	}

	contract := strings.TrimSpace(data.NFTContract)
	tokenID := strings.TrimSpace(data.TokenID)

	price, err := p.ports.Prices.FloorPrice(ctx, marketplace, contract, tokenID)
	if err != nil {
		return nil, WrapStructuredError(ExternalCallFailed, err, "cannot fetch floor price from %s", marketplace)
	}

	record := map[string]any{
		"marketplace": marketplace,
		"nftContract": contract,
		"tokenId":     tokenID,
		"floorPrice":  price.FloorPrice,
		"lastSale":    price.LastSale,
		"currency":    price.Currency,
		"timestamp":   price.Timestamp,
	}

	effect := fmt.Sprintf("floor price %v %s on %s", price.FloorPrice, price.Currency, marketplace)

	if data.PriceCondition != "" && data.PriceThreshold != "" {
		threshold, ok := parseDecimal(data.PriceThreshold)
		if !ok {
			return nil, NewStructuredError(InvalidParameters, fmt.Sprintf("invalid priceThreshold %q", data.PriceThreshold))
		}

		met := PriceConditionMet(data.PriceCondition, decimal.NewFromFloat(price.FloorPrice), threshold)
		record["priceCondition"] = data.PriceCondition
		record["priceThreshold"] = data.PriceThreshold
		record["conditionMet"] = met

		if met {
			effect += fmt.Sprintf(", condition %s %s met", data.PriceCondition, data.PriceThreshold)
		} else {
			effect += fmt.Sprintf(", condition %s %s not met", data.PriceCondition, data.PriceThreshold)
		}
	}

	result := &StepResult{Effect: effect, Output: record}
	return result.Write(StoreKey("nft", nodeID), record), nil
}
