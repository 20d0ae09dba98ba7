package model

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

const (
	// WorkflowFormatVersion is written into metadata on export, matching the editor's format
	WorkflowFormatVersion = "2.0"
)

// Node is a typed unit of work in a workflow graph. Data holds the raw payload
// exactly as it was read; DecodeNodeData turns it into the typed payload for Type.
type Node struct {
	ID   string         `json:"id"`
	Type NodeType       `json:"type"`
	Data map[string]any `json:"data"`
}

// Edge links the output of Source to the input of Target. Edges are only used
// for data lookup, never to decide execution order.
type Edge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
}

type Metadata struct {
	Created string `json:"created,omitempty"`
	Version string `json:"version,omitempty"`
}

// Workflow is the persisted workflow document: { nodes, edges, metadata? }
type Workflow struct {
	Nodes    []*Node   `json:"nodes"`
	Edges    []*Edge   `json:"edges"`
	Metadata *Metadata `json:"metadata,omitempty"`
}

// ParseWorkflow decodes a workflow document. Both nodes and edges must be
// present, like the editor import requires. Editor-only fields such as
// position or style are ignored.
func ParseWorkflow(payload []byte) (*Workflow, error) {
	var raw struct {
		Nodes    *[]*Node  `json:"nodes"`
		Edges    *[]*Edge  `json:"edges"`
		Metadata *Metadata `json:"metadata"`
	}

	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("%s: %w", InvalidWorkflowError, err)
	}

	if raw.Nodes == nil || raw.Edges == nil {
		return nil, fmt.Errorf("%s: nodes and edges are required", InvalidWorkflowError)
	}

	w := &Workflow{
		Nodes:    *raw.Nodes,
		Edges:    *raw.Edges,
		Metadata: raw.Metadata,
	}

	if err := w.checkNodeIDs(); err != nil {
		return nil, err
	}

	return w, nil
}

// LoadWorkflowFile reads and parses a workflow document from disk
func LoadWorkflowFile(path string) (*Workflow, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read workflow file %s: %w", path, err)
	}

	return ParseWorkflow(payload)
}

func (w *Workflow) checkNodeIDs() error {
	seen := make(map[string]bool, len(w.Nodes))
	for i, n := range w.Nodes {
		if n == nil {
			return fmt.Errorf("%s: node at index %d is null", InvalidWorkflowError, i)
		}
		if n.ID == "" {
			return fmt.Errorf("%s: node at index %d has no id", InvalidWorkflowError, i)
		}
		if seen[n.ID] {
			return fmt.Errorf("%s: duplicate node id %s", InvalidWorkflowError, n.ID)
		}
		seen[n.ID] = true
	}

	return nil
}

// NodeByID returns the node with the given id, or nil
func (w *Workflow) NodeByID(id string) *Node {
	for _, n := range w.Nodes {
		if n != nil && n.ID == id {
			return n
		}
	}

	return nil
}

// ToJSON serializes the workflow in the export format. Missing metadata is
// filled in with the current time and format version.
func (w *Workflow) ToJSON() ([]byte, error) {
	out := &Workflow{
		Nodes:    w.Nodes,
		Edges:    w.Edges,
		Metadata: w.Metadata,
	}
	if out.Nodes == nil {
		out.Nodes = []*Node{}
	}
	if out.Edges == nil {
		out.Edges = []*Edge{}
	}
	if out.Metadata == nil {
		out.Metadata = &Metadata{}
	}
	if out.Metadata.Created == "" {
		out.Metadata.Created = time.Now().UTC().Format(time.RFC3339)
	}
	if out.Metadata.Version == "" {
		out.Metadata.Version = WorkflowFormatVersion
	}

	return json.MarshalIndent(out, "", "  ")
}
