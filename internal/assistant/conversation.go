package assistant

import (
	"context"
	"sync"
	"time"

	"example.com/snapfit/internal/domain"
	"example.com/snapfit/internal/observability"
)

// SubmitResult is what the orchestrator hands back for a user message.
type SubmitResult struct {
	Message string
	Pending bool
	Action  *domain.Action
}

// OrchestratorOption configures optional Orchestrator behaviour.
type OrchestratorOption func(*Orchestrator)

// WithPendingTTL bounds how long an unconfirmed action is retained.
func WithPendingTTL(ttl time.Duration) OrchestratorOption {
	return func(o *Orchestrator) { o.ttl = ttl }
}

// WithOrchestratorClock overrides the time source, mainly for tests.
func WithOrchestratorClock(now func() time.Time) OrchestratorOption {
	return func(o *Orchestrator) { o.now = now }
}

type pendingAction struct {
	action   domain.Action
	storedAt time.Time
}

// Orchestrator owns the per-user pending-action slot and the single-shot
// confirm semantics: an action is executed at most once, and only after an
// explicit confirm. A new submission replaces any unconfirmed pending action.
type Orchestrator struct {
	oracle   *Oracle
	executor *domain.Executor
	ttl      time.Duration
	now      func() time.Time

	mu      sync.Mutex
	pending map[string]pendingAction
}

// NewOrchestrator constructs an Orchestrator.
func NewOrchestrator(oracle *Oracle, executor *domain.Executor, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		oracle:   oracle,
		executor: executor,
		ttl:      5 * time.Minute,
		now:      time.Now,
		pending:  make(map[string]pendingAction),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Submit classifies the user's text. A recognized action becomes the user's
// pending action and its confirmation prompt is returned; unknown yields help
// text and clears nothing into the pending slot.
func (o *Orchestrator) Submit(ctx context.Context, userID, text string) SubmitResult {
	action := o.oracle.Parse(ctx, text)

	if action.Kind == domain.ActionUnknown {
		return SubmitResult{Message: action.Confirmation}
	}

	o.mu.Lock()
	o.pending[userID] = pendingAction{action: action, storedAt: o.now()}
	o.mu.Unlock()

	return SubmitResult{Message: action.Confirmation, Pending: true, Action: &action}
}

// Confirm executes the user's pending action exactly once. The slot is taken
// before the executor runs and never restored, so a second confirm is a no-op
// regardless of the execution outcome.
func (o *Orchestrator) Confirm(ctx context.Context, userID string) domain.ExecutionResult {
	action, ok := o.take(userID)
	if !ok {
		return domain.ExecutionResult{
			Success:   false,
			Message:   "There's nothing waiting for confirmation.",
			ErrorKind: domain.ErrorKindValidation,
		}
	}
	result := o.executor.Execute(ctx, userID, action)
	observability.RecordExecution(string(action.Kind), result.Success)
	return result
}

// Cancel discards the user's pending action without executing it. It reports
// whether anything was pending.
func (o *Orchestrator) Cancel(userID string) bool {
	_, ok := o.take(userID)
	return ok
}

func (o *Orchestrator) take(userID string) (domain.Action, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	p, ok := o.pending[userID]
	if !ok {
		return domain.Action{}, false
	}
	delete(o.pending, userID)

	if o.now().Sub(p.storedAt) > o.ttl {
		return domain.Action{}, false
	}
	return p.action, true
}
