package model

import (
	"encoding/json"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/lo"
)

type RunStatus string
type StepStatus string

const (
	RunStatusCompleted          RunStatus = "completed"
	RunStatusPreconditionFailed RunStatus = "precondition_failed"
	RunStatusAborted            RunStatus = "aborted"
)

const (
	StepStatusSkipped   StepStatus = "skipped"
	StepStatusSucceeded StepStatus = "succeeded"
	StepStatusFailed    StepStatus = "failed"
)

// NodeOutcome is the result of processing one node during a run
type NodeOutcome struct {
	NodeID   string     `json:"nodeId"`
	NodeType NodeType   `json:"nodeType"`
	Status   StepStatus `json:"status"`

	// Effect is a human readable description of what the node did, e.g. a
	// transaction hash or an HTTP status line
	Effect string `json:"effect,omitempty"`

	ErrorKind string `json:"errorKind,omitempty"`
	Message   string `json:"message,omitempty"`
	Output    any    `json:"output,omitempty"`

	// unix milliseconds
	StartAt int64 `json:"startAt"`
	EndAt   int64 `json:"endAt"`
}

func (o NodeOutcome) Succeeded() bool { return o.Status == StepStatusSucceeded }
func (o NodeOutcome) Skipped() bool   { return o.Status == StepStatusSkipped }
func (o NodeOutcome) Failed() bool    { return o.Status == StepStatusFailed }

// RunOutcome is the ordered list of node outcomes of a single run plus the
// run level status
type RunOutcome struct {
	RunID   string    `json:"runId"`
	Status  RunStatus `json:"status"`
	Error   string    `json:"error,omitempty"`
	Account string    `json:"account,omitempty"`
	ChainID string    `json:"chainId,omitempty"`

	StartedAt int64 `json:"startedAt"`
	EndedAt   int64 `json:"endedAt"`
	// time spent outside of delay nodes
	ActiveMillis int64 `json:"activeMillis"`

	Steps []NodeOutcome `json:"steps"`
}

// Generate a sorted run id
func NewRunID() string {
	return ulid.Make().String()
}

func NewRunOutcome() *RunOutcome {
	return &RunOutcome{
		RunID:     NewRunID(),
		Status:    RunStatusCompleted,
		StartedAt: time.Now().UnixMilli(),
		Steps:     []NodeOutcome{},
	}
}

// Step returns the outcome recorded for a node id
func (r *RunOutcome) Step(nodeID string) (NodeOutcome, bool) {
	return lo.Find(r.Steps, func(s NodeOutcome) bool {
		return s.NodeID == nodeID
	})
}

func (r *RunOutcome) StepsWithStatus(status StepStatus) []NodeOutcome {
	return lo.Filter(r.Steps, func(s NodeOutcome, _ int) bool {
		return s.Status == status
	})
}

// Summary counts steps per status
func (r *RunOutcome) Summary() map[StepStatus]int {
	return lo.CountValuesBy(r.Steps, func(s NodeOutcome) StepStatus {
		return s.Status
	})
}

// Return a compact json ready to persist to storage
func (r *RunOutcome) ToJSON() ([]byte, error) {
	return json.Marshal(r)
}

func (r *RunOutcome) FromStorageData(body []byte) error {
	return json.Unmarshal(body, r)
}
