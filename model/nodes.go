package model

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

type NodeType string

// Node type tags as they appear in the `type` field of a workflow node
const (
	// Trigger node types
	NodeTypeBlockTrigger    NodeType = "blockTrigger"
	NodeTypeTimeTrigger     NodeType = "timeTrigger"
	NodeTypePriceTrigger    NodeType = "priceTrigger"
	NodeTypeNFTPriceTrigger NodeType = "nftPriceTrigger"

	// Action node types
	NodeTypeSendAvax     NodeType = "sendAvax"
	NodeTypeSwapToken    NodeType = "swapToken"
	NodeTypeContractCall NodeType = "contractCall"
	NodeTypeAPICall      NodeType = "apiCall"
	NodeTypeShowData     NodeType = "showData"
	NodeTypeWhatsApp     NodeType = "whatsApp"
	NodeTypeAI           NodeType = "ai"

	// Condition node types
	NodeTypeCompare NodeType = "compare"
	NodeTypeFilter  NodeType = "filter"
	NodeTypeDelay   NodeType = "delay"

	// Data node types
	NodeTypeSetData NodeType = "setData"
	NodeTypeGetData NodeType = "getData"
)

// AllNodeTypes returns every node type the engine knows how to decode
func AllNodeTypes() []NodeType {
	return []NodeType{
		NodeTypeBlockTrigger,
		NodeTypeTimeTrigger,
		NodeTypePriceTrigger,
		NodeTypeNFTPriceTrigger,
		NodeTypeSendAvax,
		NodeTypeSwapToken,
		NodeTypeContractCall,
		NodeTypeAPICall,
		NodeTypeShowData,
		NodeTypeWhatsApp,
		NodeTypeAI,
		NodeTypeCompare,
		NodeTypeFilter,
		NodeTypeDelay,
		NodeTypeSetData,
		NodeTypeGetData,
	}
}

// IsTrigger reports whether t belongs to the trigger family
func (t NodeType) IsTrigger() bool {
	switch t {
	case NodeTypeBlockTrigger, NodeTypeTimeTrigger, NodeTypePriceTrigger, NodeTypeNFTPriceTrigger:
		return true
	}
	return false
}

// NodeData is the typed payload of a node. The concrete type is fully
// determined by the node type tag.
type NodeData interface {
	NodeType() NodeType
}

// Common editor fields shared by every payload
type NodeLabel struct {
	Label       string `mapstructure:"label" json:"label,omitempty"`
	Description string `mapstructure:"description" json:"description,omitempty"`
}

type BlockTriggerData struct {
	NodeLabel `mapstructure:",squash"`
}

type TimeTriggerData struct {
	NodeLabel `mapstructure:",squash"`
	// Interval is a number of seconds, a Go duration such as 5m, or a cron expression
	Interval string `mapstructure:"interval" validate:"required"`
}

type PriceTriggerData struct {
	NodeLabel      `mapstructure:",squash"`
	Threshold      string `mapstructure:"threshold" validate:"required,decimal_text"`
	PriceCondition string `mapstructure:"priceCondition" validate:"omitempty,oneof=above below equal"`
	Symbol         string `mapstructure:"symbol"`
}

type NFTPriceTriggerData struct {
	NodeLabel      `mapstructure:",squash"`
	NFTContract    string `mapstructure:"nftContract" validate:"required"`
	TokenID        string `mapstructure:"tokenId"`
	Marketplace    string `mapstructure:"marketplace"`
	PriceThreshold string `mapstructure:"priceThreshold" validate:"omitempty,decimal_text"`
	PriceCondition string `mapstructure:"priceCondition" validate:"omitempty,oneof=above below equal"`
}

type SendAvaxData struct {
	NodeLabel `mapstructure:",squash"`
	To        string `mapstructure:"to" validate:"required,eth_addr"`
	Amount    string `mapstructure:"amount" validate:"required,positive_decimal"`
}

type SwapTokenData struct {
	NodeLabel    `mapstructure:",squash"`
	TokenAddress string `mapstructure:"tokenAddress"`
	To           string `mapstructure:"to"`
	Amount       string `mapstructure:"amount"`
}

type ContractCallData struct {
	NodeLabel       `mapstructure:",squash"`
	ContractAddress string `mapstructure:"contractAddress" validate:"required"`
	FunctionName    string `mapstructure:"functionName" validate:"required"`
	// Parameters is a JSON array of call arguments
	Parameters string `mapstructure:"parameters"`
}

type APICallData struct {
	NodeLabel `mapstructure:",squash"`
	URL       string `mapstructure:"url" validate:"required"`
	Method    string `mapstructure:"method"`
	// Headers are newline separated `Key: Value` pairs
	Headers     string `mapstructure:"headers"`
	Body        string `mapstructure:"body"`
	Mode        string `mapstructure:"mode"`
	CurlCommand string `mapstructure:"curlCommand"`
}

type ShowDataData struct {
	NodeLabel   `mapstructure:",squash"`
	DataKey     string `mapstructure:"dataKey"`
	DisplayText string `mapstructure:"displayText"`
}

type WhatsAppData struct {
	NodeLabel   `mapstructure:",squash"`
	PhoneNumber string `mapstructure:"phoneNumber" validate:"required"`
	Message     string `mapstructure:"message" validate:"required"`
}

type AIData struct {
	NodeLabel     `mapstructure:",squash"`
	Prompt        string   `mapstructure:"prompt" validate:"required"`
	OutputActions []string `mapstructure:"outputActions"`
}

type CompareData struct {
	NodeLabel `mapstructure:",squash"`
	Operator  string `mapstructure:"operator" validate:"required,oneof=> < == != >= <= contains"`
	Value     string `mapstructure:"value" validate:"required"`
	InputKey  string `mapstructure:"inputKey"`
}

type FilterData struct {
	NodeLabel `mapstructure:",squash"`
	Operator  string `mapstructure:"operator" validate:"required,oneof=> < == != >= <= contains"`
	Value     string `mapstructure:"value" validate:"required"`
	InputKey  string `mapstructure:"inputKey"`
}

type DelayData struct {
	NodeLabel `mapstructure:",squash"`
	// DelayTime is expressed in seconds
	DelayTime string `mapstructure:"delayTime" validate:"required,nonnegative_decimal"`
}

type SetDataData struct {
	NodeLabel  `mapstructure:",squash"`
	StorageKey string `mapstructure:"storageKey" validate:"required"`
	InputValue string `mapstructure:"inputValue" validate:"required_without=InputJSON"`
	InputJSON  string `mapstructure:"inputJson" validate:"required_without=InputValue"`
	DataType   string `mapstructure:"dataType" validate:"omitempty,oneof=value json"`
}

type GetDataData struct {
	NodeLabel  `mapstructure:",squash"`
	StorageKey string `mapstructure:"storageKey" validate:"required"`
	OutputKey  string `mapstructure:"outputKey"`
}

func (*BlockTriggerData) NodeType() NodeType    { return NodeTypeBlockTrigger }
func (*TimeTriggerData) NodeType() NodeType     { return NodeTypeTimeTrigger }
func (*PriceTriggerData) NodeType() NodeType    { return NodeTypePriceTrigger }
func (*NFTPriceTriggerData) NodeType() NodeType { return NodeTypeNFTPriceTrigger }
func (*SendAvaxData) NodeType() NodeType        { return NodeTypeSendAvax }
func (*SwapTokenData) NodeType() NodeType       { return NodeTypeSwapToken }
func (*ContractCallData) NodeType() NodeType    { return NodeTypeContractCall }
func (*APICallData) NodeType() NodeType         { return NodeTypeAPICall }
func (*ShowDataData) NodeType() NodeType        { return NodeTypeShowData }
func (*WhatsAppData) NodeType() NodeType        { return NodeTypeWhatsApp }
func (*AIData) NodeType() NodeType              { return NodeTypeAI }
func (*CompareData) NodeType() NodeType         { return NodeTypeCompare }
func (*FilterData) NodeType() NodeType          { return NodeTypeFilter }
func (*DelayData) NodeType() NodeType           { return NodeTypeDelay }
func (*SetDataData) NodeType() NodeType         { return NodeTypeSetData }
func (*GetDataData) NodeType() NodeType         { return NodeTypeGetData }

func newNodeData(t NodeType) (NodeData, error) {
	switch t {
	case NodeTypeBlockTrigger:
		return &BlockTriggerData{}, nil
	case NodeTypeTimeTrigger:
		return &TimeTriggerData{}, nil
	case NodeTypePriceTrigger:
		return &PriceTriggerData{}, nil
	case NodeTypeNFTPriceTrigger:
		return &NFTPriceTriggerData{}, nil
	case NodeTypeSendAvax:
		return &SendAvaxData{}, nil
	case NodeTypeSwapToken:
		return &SwapTokenData{}, nil
	case NodeTypeContractCall:
		return &ContractCallData{}, nil
	case NodeTypeAPICall:
		return &APICallData{}, nil
	case NodeTypeShowData:
		return &ShowDataData{}, nil
	case NodeTypeWhatsApp:
		return &WhatsAppData{}, nil
	case NodeTypeAI:
		return &AIData{}, nil
	case NodeTypeCompare:
		return &CompareData{}, nil
	case NodeTypeFilter:
		return &FilterData{}, nil
	case NodeTypeDelay:
		return &DelayData{}, nil
	case NodeTypeSetData:
		return &SetDataData{}, nil
	case NodeTypeGetData:
		return &GetDataData{}, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownNodeType, t)
}

// DecodeNodeData converts the raw payload of a node into the typed payload
// for its type. Numbers and booleans are accepted where the editor may emit
// them in place of strings.
func DecodeNodeData(t NodeType, raw map[string]any) (NodeData, error) {
	data, err := newNodeData(t)
	if err != nil {
		return nil, err
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           data,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return nil, err
	}

	if raw != nil {
		if err := decoder.Decode(raw); err != nil {
			return nil, fmt.Errorf("%s: %w", InvalidNodeDataError, err)
		}
	}

	if api, ok := data.(*APICallData); ok {
		api.applyCurl()
	}

	return data, nil
}

// Decode is a shortcut for DecodeNodeData on the node's own type and payload
func (n *Node) Decode() (NodeData, error) {
	return DecodeNodeData(n.Type, n.Data)
}
