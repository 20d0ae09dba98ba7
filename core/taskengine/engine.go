package taskengine

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	sdklogging "github.com/Layr-Labs/eigensdk-go/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/AvaProtocol/avax-workflow/metrics"
	"github.com/AvaProtocol/avax-workflow/model"
	"github.com/AvaProtocol/avax-workflow/pkg/logger"
	"github.com/AvaProtocol/avax-workflow/pkg/timekeeper"
)

const tracerName = "github.com/AvaProtocol/avax-workflow/core/taskengine"

var ErrEngineBusy = errors.New(EngineBusyError)

// Engine runs workflow documents. Runs are serialized: a single engine never
// executes two workflows at the same time.
type Engine struct {
	ports Ports

	sink    OutcomeSink
	history *History
	metrics metrics.MetricsGenerator
	tracer  trace.Tracer

	expectedChainID *big.Int
	explorerURL     string
	sleep           func(ctx context.Context, d time.Duration) error
	now             func() time.Time

	lock *sync.Mutex

	logger sdklogging.Logger
}

type Option func(*Engine)

func WithLogger(l sdklogging.Logger) Option {
	return func(n *Engine) { n.logger = logger.EnsureLogger(l) }
}

func WithSink(s OutcomeSink) Option {
	return func(n *Engine) {
		if s != nil {
			n.sink = s
		}
	}
}

func WithHistory(h *History) Option {
	return func(n *Engine) { n.history = h }
}

func WithMetrics(m metrics.MetricsGenerator) Option {
	return func(n *Engine) {
		if m != nil {
			n.metrics = m
		}
	}
}

func WithExpectedChainID(id int64) Option {
	return func(n *Engine) { n.expectedChainID = big.NewInt(id) }
}

func WithExplorerURL(url string) Option {
	return func(n *Engine) {
		if url != "" {
			n.explorerURL = url
		}
	}
}

// WithSleeper replaces the wait used by delay nodes
func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(n *Engine) {
		if sleep != nil {
			n.sleep = sleep
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(n *Engine) {
		if now != nil {
			n.now = now
		}
	}
}

func New(ports Ports, opts ...Option) *Engine {
	n := &Engine{
		ports: ports,

		sink:    NoopSink{},
		metrics: metrics.NoopMetrics{},
		tracer:  otel.Tracer(tracerName),

		expectedChainID: big.NewInt(DefaultExpectedChainID),
		explorerURL:     DefaultExplorerURL,
		sleep:           sleepContext,
		now:             time.Now,

		lock:   &sync.Mutex{},
		logger: logger.NewNoOpLogger(),
	}

	for _, opt := range opts {
		opt(n)
	}

	return n
}

func (n *Engine) History() *History {
	return n.history
}

// Execute runs the workflow once, waiting for any run in flight to finish
func (n *Engine) Execute(ctx context.Context, wf *model.Workflow) *model.RunOutcome {
	n.lock.Lock()
	defer n.lock.Unlock()

	return n.execute(ctx, wf)
}

// TryExecute runs the workflow unless another run is in flight, in which case
// ErrEngineBusy is returned
func (n *Engine) TryExecute(ctx context.Context, wf *model.Workflow) (*model.RunOutcome, error) {
	if !n.lock.TryLock() {
		return nil, ErrEngineBusy
	}
	defer n.lock.Unlock()

	return n.execute(ctx, wf), nil
}

func (n *Engine) newProcessor(logger sdklogging.Logger) *CommonProcessor {
	return &CommonProcessor{
		ports:       n.ports,
		logger:      logger,
		explorerURL: n.explorerURL,
		sleep:       n.sleep,
		now:         n.now,
	}
}

func (n *Engine) execute(ctx context.Context, wf *model.Workflow) *model.RunOutcome {
	run := &model.RunOutcome{
		RunID:     model.NewRunID(),
		Status:    model.RunStatusCompleted,
		StartedAt: n.now().UnixMilli(),
		Steps:     []model.NodeOutcome{},
	}

	ctx, span := n.tracer.Start(ctx, "workflow.execute", trace.WithAttributes(
		attribute.String("run_id", run.RunID),
	))
	defer span.End()

	runLogger := n.logger.With("run_id", run.RunID)

	if wf == nil || len(wf.Nodes) == 0 {
		runLogger.Info("workflow has no nodes, nothing to execute")
		n.finish(run, 0)
		return run
	}

	span.SetAttributes(attribute.Int("nodes", len(wf.Nodes)))

	ec := newExecutionContext(run.RunID, wf, runLogger)
	if err := n.checkPreconditions(ctx, ec); err != nil {
		runLogger.Error("workflow precondition failed", "error", err)
		span.SetStatus(codes.Error, err.Error())

		run.Status = model.RunStatusPreconditionFailed
		run.Error = err.Error()
		n.finish(run, 0)
		return run
	}
	run.Account = ec.Account.Hex()
	run.ChainID = ec.ChainID

	registry := newRegistry(n.newProcessor(runLogger))
	stopwatch := timekeeper.NewElapsingWithClock(n.now)

	// list order is execution order, edges are only used for data lookup
	for i, node := range wf.Nodes {
		if err := ctx.Err(); err != nil {
			run.Status = model.RunStatusAborted
			run.Error = fmt.Sprintf("run interrupted before node %d: %v", i, err)
			break
		}

		outcome, fatal := n.executeNode(ctx, ec, registry, node, stopwatch)
		n.record(run, outcome)

		if fatal {
			run.Status = model.RunStatusAborted
			run.Error = outcome.Message
			runLogger.Error("aborting workflow run", "node_id", outcome.NodeID, "error", outcome.Message)
			break
		}
	}

	if run.Status != model.RunStatusCompleted {
		span.SetStatus(codes.Error, run.Error)
	}

	n.finish(run, stopwatch.Total())
	return run
}

func (n *Engine) checkPreconditions(ctx context.Context, ec *ExecutionContext) error {
	chain := n.ports.Chain
	if chain == nil {
		return NewStructuredError(PreconditionFailed, fmt.Sprintf("%s: chain", PortNotConfiguredError))
	}

	accounts, err := chain.Accounts(ctx)
	if err != nil {
		return WrapStructuredError(PreconditionFailed, err, NoActiveAccountError)
	}
	if len(accounts) == 0 {
		return NewStructuredError(PreconditionFailed, NoActiveAccountError)
	}

	chainID, err := chain.ChainID(ctx)
	if err != nil {
		return WrapStructuredError(PreconditionFailed, err, ChainUnavailableError)
	}
	if chainID == nil || chainID.Cmp(n.expectedChainID) != 0 {
		return NewStructuredError(
			PreconditionFailed,
			fmt.Sprintf("%s: connected to chain %v, expected %s", ChainMismatchError, chainID, n.expectedChainID),
			map[string]interface{}{"chainId": fmt.Sprint(chainID), "expected": n.expectedChainID.String()},
		)
	}

	ec.Account = accounts[0]
	ec.ChainID = chainID.String()

	if balance, err := chain.Balance(ctx, ec.Account); err != nil {
		ec.logger.Warn("cannot read account balance", "account", ec.Account.Hex(), "error", err)
	} else {
		ec.logger.Info("active account", "account", ec.Account.Hex(), "chain_id", ec.ChainID, "balance_wei", balance.String())
	}

	return nil
}

// executeNode validates and runs one node. The returned flag is true when the
// rest of the run must be abandoned.
func (n *Engine) executeNode(ctx context.Context, ec *ExecutionContext, registry map[model.NodeType]nodeRunner, node *model.Node, stopwatch *timekeeper.Elapsing) (model.NodeOutcome, bool) {
	start := n.now()

	if node == nil {
		return model.NodeOutcome{
			Status:    model.StepStatusSkipped,
			ErrorKind: string(ValidationFailed),
			Message:   "node is null",
			StartAt:   start.UnixMilli(),
			EndAt:     n.now().UnixMilli(),
		}, false
	}

	outcome := model.NodeOutcome{
		NodeID:   node.ID,
		NodeType: node.Type,
		StartAt:  start.UnixMilli(),
	}

	data, err := ValidateNode(node)
	if err != nil {
		outcome.Status = model.StepStatusSkipped
		outcome.ErrorKind = string(KindOf(err))
		outcome.Message = err.Error()
		outcome.EndAt = n.now().UnixMilli()
		return outcome, false
	}

	runner := registry[node.Type]

	ctx, span := n.tracer.Start(ctx, "node."+string(node.Type), trace.WithAttributes(
		attribute.String("node_id", node.ID),
	))
	defer span.End()

	if node.Type == model.NodeTypeDelay {
		_ = stopwatch.Pause()
	}
	result, err := runner.Execute(ctx, ec, node.ID, data)
	if node.Type == model.NodeTypeDelay {
		_ = stopwatch.Resume()
	}

	outcome.EndAt = n.now().UnixMilli()

	if err != nil {
		kind := KindOf(err)
		outcome.Status = model.StepStatusFailed
		outcome.ErrorKind = string(kind)
		outcome.Message = err.Error()

		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		fatal := kind == NetworkMismatch || ctx.Err() != nil
		return outcome, fatal
	}

	for _, kv := range result.Writes {
		ec.Store.Set(kv.Key, kv.Value)
	}

	outcome.Status = model.StepStatusSucceeded
	outcome.Effect = result.Effect
	outcome.Output = result.Output
	return outcome, false
}

func (n *Engine) record(run *model.RunOutcome, outcome model.NodeOutcome) {
	run.Steps = append(run.Steps, outcome)

	n.sink.Report(outcome)
	n.metrics.IncNodeExecution(string(outcome.NodeType), string(outcome.Status))
	if outcome.Status != model.StepStatusSkipped {
		n.metrics.ObserveNodeDuration(string(outcome.NodeType), float64(outcome.EndAt-outcome.StartAt)/1000)
	}
}

func (n *Engine) finish(run *model.RunOutcome, active time.Duration) {
	run.EndedAt = n.now().UnixMilli()
	run.ActiveMillis = active.Milliseconds()

	n.sink.ReportRun(run)
	n.metrics.IncRun(string(run.Status))
	n.metrics.AddActiveTime(active.Seconds())

	if n.history != nil {
		if err := n.history.Save(run); err != nil {
			n.logger.Error("cannot persist run outcome", "run_id", run.RunID, "error", err)
		}
	}
}

// NodeValidation is the result of checking one node without running it
type NodeValidation struct {
	NodeID    string         `json:"nodeId"`
	NodeType  model.NodeType `json:"nodeType"`
	Valid     bool           `json:"valid"`
	ErrorKind string         `json:"errorKind,omitempty"`
	Message   string         `json:"message,omitempty"`
}

// ValidateWorkflow decodes and validates every node, in list order
func ValidateWorkflow(wf *model.Workflow) []NodeValidation {
	out := make([]NodeValidation, 0, len(wf.Nodes))
	for _, node := range wf.Nodes {
		if node == nil {
			continue
		}
		v := NodeValidation{NodeID: node.ID, NodeType: node.Type, Valid: true}
		if _, err := ValidateNode(node); err != nil {
			v.Valid = false
			v.ErrorKind = string(KindOf(err))
			v.Message = err.Error()
		}
		out = append(out, v)
	}
	return out
}
