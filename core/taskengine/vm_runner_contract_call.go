package taskengine

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/AvaProtocol/avax-workflow/model"
	"github.com/ethereum/go-ethereum/common"
)

const (
	// state mutating, waits for the receipt
	ContractFunctionStore = "store"
	// read only
	ContractFunctionRetrieve = "retrieve"
)

type ContractCallProcessor struct {
	*CommonProcessor
}

func NewContractCallProcessor(p *CommonProcessor) *ContractCallProcessor {
	return &ContractCallProcessor{CommonProcessor: p}
}

func parseCallParameters(raw string) ([]any, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []any{}, nil
	}

	// numbers stay json.Number so uint256 arguments keep every digit
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	var params []any
	if err := dec.Decode(&params); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("unexpected data after the parameter array")
	}
	if params == nil {
		params = []any{}
	}
	return params, nil
}

func (p *ContractCallProcessor) Execute(ctx context.Context, ec *ExecutionContext, nodeID string, data *model.ContractCallData) (*StepResult, error) {
	params, err := parseCallParameters(data.Parameters)
	if err != nil {
		return nil, WrapStructuredError(InvalidParameters, err, "parameters must be a JSON array")
	}

	contract := data.ContractAddress
	if !ValidAddress(contract) {
		return nil, NewInvalidAddressError(contract)
	}

	fn := strings.TrimSpace(data.FunctionName)
	switch fn {
	case ContractFunctionStore, ContractFunctionRetrieve:
	default:
		return nil, NewStructuredError(
			UnsupportedFunction,
			fmt.Sprintf("unsupported contract function: %s", fn),
			map[string]interface{}{"functionName": fn},
		)
	}

	if p.ports.Chain == nil {
		return nil, NewPortNotConfiguredError("chain")
	}

	p.logger.Info("calling contract", "node_id", nodeID, "contract", contract, "function", fn, "args", len(params))

	res, err := p.ports.Chain.CallContract(ctx, common.HexToAddress(contract), fn, params)
	if err != nil {
		return nil, WrapStructuredError(ExternalCallFailed, err, "contract call %s failed", fn)
	}

	record := map[string]any{
		"contractAddress": common.HexToAddress(contract).Hex(),
		"functionName":    fn,
		"parameters":      params,
	}

	var effect string
	if fn == ContractFunctionStore {
		record["txHash"] = res.TxHash
		record["explorerUrl"] = p.explorerTxURL(common.HexToHash(res.TxHash))
		effect = res.TxHash
	} else {
		record["result"] = res.Value
		effect = fmt.Sprintf("%s() = %v", fn, res.Value)
	}

	result := &StepResult{Effect: effect, Output: record}
	return result.Write(StoreKey("contract", nodeID), record), nil
}
