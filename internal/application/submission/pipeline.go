// Package submission drives a plagiarism check from file selection to result:
// synchronous validation, then the real API call racing a purely cosmetic
// stage indicator inside one cancellation scope.
package submission

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"plagdesk/internal/domain/check"
	"plagdesk/internal/domain/result"
)

// User-visible failure texts used when the server gives no message.
const (
	MsgCheckFailed   = "Check failed. Please try again."
	MsgCheckTimedOut = "Check timed out. Please try again."
)

// Pipeline errors.
var (
	ErrDetached = errors.New("submission view closed")
	ErrNotIdle  = errors.New("a check is already in progress")
	ErrNoRetry  = errors.New("nothing to retry")
)

// Checker is the slice of the gateway the pipeline calls.
type Checker interface {
	InternetCheck(ctx context.Context, file *check.File) (json.RawMessage, error)
	CheckPlagiarism(ctx context.Context, file1, file2 *check.File) (json.RawMessage, error)
}

// Options tunes a Pipeline. Callbacks run on pipeline goroutines and must not block.
type Options struct {
	// Schedule holds the offsets, from entering PROCESSING, of each later
	// indicator tick.
	Schedule   []time.Duration
	Timeout    time.Duration
	OnState    func(check.State)
	OnProgress func([]check.Stage)
}

// Outcome is what DONE hands to the result view.
type Outcome struct {
	// Payload is the response body, unmodified.
	Payload json.RawMessage
	Result  result.Raw
}

// ResultID is the id the result view is addressed by.
func (o Outcome) ResultID() result.ID {
	if o.Result == nil {
		return ""
	}
	return o.Result.Common().ResultID
}

// FailedError is returned when the API call fails. The pipeline is back in
// IDLE with the request retained.
type FailedError struct {
	Message string
	Err     error
}

func (e *FailedError) Error() string { return e.Message }

// Unwrap exposes the gateway error.
func (e *FailedError) Unwrap() error { return e.Err }

// serverMessenger is implemented by gateway errors that carry the server's text.
type serverMessenger interface {
	ServerMessage() string
}

// FailureMessage picks the user-visible text for a failed call.
func FailureMessage(err error) string {
	var sm serverMessenger
	if errors.As(err, &sm) && sm.ServerMessage() != "" {
		return sm.ServerMessage()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return MsgCheckTimedOut
	}
	return MsgCheckFailed
}

// Pipeline is one submission view's state machine.
// INVARIANT: state only moves along check.CanTransition edges.
type Pipeline struct {
	checker Checker
	opts    Options

	mu         sync.Mutex
	state      check.State
	req        check.Request
	hasReq     bool
	stages     []check.Stage
	message    string
	outcome    Outcome
	closed     bool
	cancelAnim context.CancelFunc
	cancelCall context.CancelFunc
}

// New returns an idle Pipeline.
func New(checker Checker, opts Options) *Pipeline {
	return &Pipeline{
		checker: checker,
		opts:    opts,
		state:   check.StateIdle,
		stages:  check.Progress(-1),
	}
}

// Submit validates req and, if it passes, runs the check to completion.
// PRE: pipeline is IDLE
// POST: DONE with an Outcome; or IDLE with a *check.ValidationError or
// *FailedError; or ErrDetached if Close was called meanwhile
func (p *Pipeline) Submit(ctx context.Context, req check.Request) (Outcome, error) {
	if err := p.Begin(req); err != nil {
		return Outcome{}, err
	}
	return p.Await(ctx)
}

// Retry resubmits the retained request after a failure.
func (p *Pipeline) Retry(ctx context.Context) (Outcome, error) {
	p.mu.Lock()
	req, ok := p.req, p.hasReq
	p.mu.Unlock()
	if !ok {
		return Outcome{}, ErrNoRetry
	}
	return p.Submit(ctx, req)
}

// Begin performs VALIDATING. On success the pipeline is PROCESSING and Await
// must follow. A rejected request leaves the pipeline IDLE and never reaches
// the network.
func (p *Pipeline) Begin(req check.Request) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrDetached
	}
	if p.state != check.StateIdle {
		p.mu.Unlock()
		return ErrNotIdle
	}
	p.req, p.hasReq = req, true
	p.message = ""
	p.setStateLocked(check.StateValidating)

	if err := req.Validate(); err != nil {
		var ve *check.ValidationError
		if errors.As(err, &ve) {
			p.message = ve.Message
		}
		p.setStateLocked(check.StateIdle)
		p.mu.Unlock()
		p.emitState(check.StateIdle)
		slog.Info("check_event", "event", "validation_failed", "mode", req.Mode, "reason", p.Message())
		return err
	}

	p.setStateLocked(check.StateProcessing)
	p.stages = check.Progress(0)
	stages := p.copyStagesLocked()
	p.mu.Unlock()

	p.emitState(check.StateProcessing)
	p.emitProgress(stages)
	return nil
}

// Await runs PROCESSING: the API call and the indicator as two tasks in one
// scope. The indicator is stopped and joined before the state changes, so no
// timer outlives PROCESSING.
// PRE: Begin returned nil
func (p *Pipeline) Await(ctx context.Context) (Outcome, error) {
	var (
		callCtx    context.Context
		cancelCall context.CancelFunc
	)
	if p.opts.Timeout > 0 {
		callCtx, cancelCall = context.WithTimeout(ctx, p.opts.Timeout)
	} else {
		callCtx, cancelCall = context.WithCancel(ctx)
	}
	defer cancelCall()
	animCtx, cancelAnim := context.WithCancel(context.Background())
	defer cancelAnim()

	p.mu.Lock()
	if p.state != check.StateProcessing {
		p.mu.Unlock()
		return Outcome{}, ErrNotIdle
	}
	req := p.req
	p.cancelAnim, p.cancelCall = cancelAnim, cancelCall
	p.mu.Unlock()

	start := time.Now()
	var (
		payload json.RawMessage
		callErr error
	)
	g, gctx := errgroup.WithContext(animCtx)
	g.Go(func() error {
		p.animate(gctx)
		return nil
	})
	g.Go(func() error {
		defer cancelAnim()
		payload, callErr = p.call(callCtx, req)
		return nil
	})
	_ = g.Wait()

	var raw result.Raw
	if callErr == nil {
		var err error
		if raw, err = result.Decode(payload); err != nil {
			callErr = err
		}
	}

	p.mu.Lock()
	p.cancelAnim, p.cancelCall = nil, nil
	if p.closed {
		p.mu.Unlock()
		slog.Debug("check_event", "event", "result_ignored", "mode", req.Mode)
		return Outcome{}, ErrDetached
	}
	durationMs := time.Since(start).Milliseconds()

	if callErr != nil {
		msg := FailureMessage(callErr)
		p.message = msg
		p.setStateLocked(check.StateFailed)
		p.setStateLocked(check.StateIdle)
		p.stages = check.Progress(-1)
		stages := p.copyStagesLocked()
		p.mu.Unlock()

		p.emitState(check.StateFailed)
		p.emitState(check.StateIdle)
		p.emitProgress(stages)
		slog.Warn("check_event", "event", "check_failed", "mode", req.Mode, "duration_ms", durationMs, "error", callErr)
		return Outcome{}, &FailedError{Message: msg, Err: callErr}
	}

	p.outcome = Outcome{Payload: payload, Result: raw}
	p.setStateLocked(check.StateDone)
	p.stages = check.Progress(check.FinalTick())
	stages := p.copyStagesLocked()
	out := p.outcome
	p.mu.Unlock()

	p.emitProgress(stages)
	p.emitState(check.StateDone)
	slog.Info("check_event", "event", "check_done", "mode", req.Mode, "result_id", out.ResultID(), "duration_ms", durationMs)
	return out, nil
}

// call dispatches on mode.
func (p *Pipeline) call(ctx context.Context, req check.Request) (json.RawMessage, error) {
	if req.Mode == check.ModeCompare {
		return p.checker.CheckPlagiarism(ctx, req.File1, req.File2)
	}
	return p.checker.InternetCheck(ctx, req.File1)
}

// animate advances the indicator on schedule until ctx ends or the schedule
// runs out. It never changes the pipeline state.
func (p *Pipeline) animate(ctx context.Context) {
	start := time.Now()
	for i, offset := range p.opts.Schedule {
		timer := time.NewTimer(max(0, offset-time.Since(start)))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
		p.mu.Lock()
		if p.closed || p.state != check.StateProcessing {
			p.mu.Unlock()
			return
		}
		p.stages = check.Progress(i + 1)
		stages := p.copyStagesLocked()
		p.mu.Unlock()
		p.emitProgress(stages)
	}
}

// Close detaches the view: the indicator stops, the call is abandoned, and
// any later completion is ignored.
func (p *Pipeline) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	if p.cancelAnim != nil {
		p.cancelAnim()
	}
	if p.cancelCall != nil {
		p.cancelCall()
	}
}

// State returns the current state.
func (p *Pipeline) State() check.State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Stages returns a copy of the indicator.
func (p *Pipeline) Stages() []check.Stage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.copyStagesLocked()
}

// Message returns the last validation or failure message, or "".
func (p *Pipeline) Message() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.message
}

// Request returns the retained request and whether one exists.
func (p *Pipeline) Request() (check.Request, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.req, p.hasReq
}

// Outcome returns the DONE outcome; ok is false before DONE.
func (p *Pipeline) Outcome() (Outcome, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.outcome, p.state == check.StateDone
}

// setStateLocked moves along a legal edge. An illegal edge is a programming
// error and is logged rather than applied.
func (p *Pipeline) setStateLocked(to check.State) {
	next, err := check.Transition(p.state, to)
	if err != nil {
		slog.Error("check_event", "event", "illegal_transition", "error", err)
		return
	}
	p.state = next
}

func (p *Pipeline) copyStagesLocked() []check.Stage {
	return append([]check.Stage(nil), p.stages...)
}

func (p *Pipeline) emitState(to check.State) {
	if p.opts.OnState != nil {
		p.opts.OnState(to)
	}
}

func (p *Pipeline) emitProgress(stages []check.Stage) {
	if p.opts.OnProgress != nil {
		p.opts.OnProgress(stages)
	}
}
