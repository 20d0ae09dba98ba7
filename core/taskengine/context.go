package taskengine

import (
	"github.com/AvaProtocol/avax-workflow/model"
	sdklogging "github.com/Layr-Labs/eigensdk-go/logging"
	"github.com/ethereum/go-ethereum/common"
)

// ExecutionContext is the mutable state of a single run. It is created by the
// engine for every run and dropped once the run outcome is produced.
type ExecutionContext struct {
	RunID   string
	Account common.Address
	ChainID string

	Store *Store

	edges  []*model.Edge
	nodes  map[string]*model.Node
	logger sdklogging.Logger
}

func newExecutionContext(runID string, wf *model.Workflow, logger sdklogging.Logger) *ExecutionContext {
	nodes := make(map[string]*model.Node, len(wf.Nodes))
	for _, n := range wf.Nodes {
		if n != nil {
			nodes[n.ID] = n
		}
	}

	return &ExecutionContext{
		RunID:  runID,
		Store:  NewStore(),
		edges:  wf.Edges,
		nodes:  nodes,
		logger: logger,
	}
}

// IncomingEdges returns the edges pointing at nodeID in document order
func (c *ExecutionContext) IncomingEdges(nodeID string) []*model.Edge {
	var out []*model.Edge
	for _, e := range c.edges {
		if e != nil && e.Target == nodeID {
			out = append(out, e)
		}
	}
	return out
}

// ResolveInput follows the first incoming edge of nodeID and returns the
// first store entry whose key contains the source node id. An edge whose
// source is not part of the graph never matches.
func (c *ExecutionContext) ResolveInput(nodeID string) (string, any, bool) {
	incoming := c.IncomingEdges(nodeID)
	if len(incoming) == 0 {
		return "", nil, false
	}

	source := incoming[0].Source
	if _, ok := c.nodes[source]; !ok {
		if c.logger != nil {
			c.logger.Debug("incoming edge references unknown node", "node_id", nodeID, "source", source)
		}
		return "", nil, false
	}

	return c.Store.FindBySourceNode(source)
}
