package model

import "errors"

const (
	InvalidWorkflowError = "invalid workflow document"
	InvalidNodeDataError = "invalid node data"
)

var ErrUnknownNodeType = errors.New("unknown node type")
