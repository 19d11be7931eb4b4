package submitinquiry

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"maglinc-site/internal/common/errors"
	"maglinc-site/internal/common/guard"
	"maglinc-site/internal/common/logger"
	"maglinc-site/internal/common/metrics"
	"maglinc-site/internal/common/observability"
)

type State string

const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
)

type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
	OutcomeRejected  Outcome = "rejected"
	OutcomeInFlight  Outcome = "in_flight"
)

// Result describes one submit attempt.
type Result struct {
	Outcome      Outcome
	Notification *Notification
	Output       *Output
	Err          error
}

// Submitter delivers a validated inquiry. *Service implements it.
type Submitter interface {
	Execute(ctx context.Context, input *Inquiry) (*Output, error)
}

// Form holds one page view's worth of contact form state. A Form is safe
// for concurrent use; while a submission is in flight further submits are
// no-ops that report OutcomeInFlight.
type Form struct {
	mu           sync.Mutex
	fields       Inquiry
	state        State
	notification *Notification

	submitter Submitter
	guard     guard.Guard
	guardKey  string
	logger    logger.Logger
	obs       *observability.Observability
}

type FormOption func(*Form)

// WithGuard shares the submitting flag through g under key, so other
// Forms with the same key (other requests, other replicas) see it too.
func WithGuard(g guard.Guard, key string) FormOption {
	return func(f *Form) {
		f.guard = g
		f.guardKey = key
	}
}

func WithLogger(log logger.Logger) FormOption {
	return func(f *Form) { f.logger = log }
}

func WithObservability(obs *observability.Observability) FormOption {
	return func(f *Form) { f.obs = obs }
}

// WithFields pre-fills the form.
func WithFields(in Inquiry) FormOption {
	return func(f *Form) { f.fields = in }
}

func NewForm(submitter Submitter, opts ...FormOption) *Form {
	f := &Form{
		state:     StateIdle,
		submitter: submitter,
		guardKey:  uuid.NewString(),
		logger:    logger.NewNoOpLogger(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// SetFields replaces what the user has typed so far.
func (f *Form) SetFields(in Inquiry) {
	f.mu.Lock()
	f.fields = in
	f.mu.Unlock()
}

func (f *Form) Fields() Inquiry {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fields
}

func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Notification returns the toast from the last attempt, or nil.
func (f *Form) Notification() *Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.notification == nil {
		return nil
	}
	n := *f.notification
	return &n
}

// DismissNotification clears the toast.
func (f *Form) DismissNotification() {
	f.mu.Lock()
	f.notification = nil
	f.mu.Unlock()
}

// Submit runs one submission and blocks until it finishes.
func (f *Form) Submit(ctx context.Context) Result {
	snapshot, early := f.begin()
	if early != nil {
		return *early
	}
	return f.run(ctx, snapshot)
}

// SubmitAsync claims the submitting state before returning, then delivers
// in the background. The channel yields exactly one Result and is closed.
func (f *Form) SubmitAsync(ctx context.Context) <-chan Result {
	ch := make(chan Result, 1)

	snapshot, early := f.begin()
	if early != nil {
		ch <- *early
		close(ch)
		return ch
	}

	go func() {
		defer close(ch)
		ch <- f.run(ctx, snapshot)
	}()
	return ch
}

// begin applies the in-process flag and claims the submitting state.
func (f *Form) begin() (Inquiry, *Result) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state == StateSubmitting {
		return Inquiry{}, f.inFlight()
	}

	f.state = StateSubmitting
	return f.fields, nil
}

// run takes the shared guard before the gate, so a submit while another
// holder is in flight reports OutcomeInFlight whatever the fields hold.
func (f *Form) run(ctx context.Context, snapshot Inquiry) Result {
	defer f.setState(StateIdle)

	if f.guard != nil {
		token, acquired, err := f.guard.Acquire(ctx, f.guardKey)
		switch {
		case err != nil:
			stdErr := errors.NewGuardUnavailableError(err)
			f.logger.Warn("Submission guard unavailable, proceeding without it", map[string]interface{}{
				"guardKey":  f.guardKey,
				"errorCode": string(stdErr.Code),
				"details":   stdErr.Details,
			})
		case !acquired:
			f.mu.Lock()
			defer f.mu.Unlock()
			return *f.inFlight()
		default:
			defer f.release(token)
		}
	}

	if err := ValidateInquiry(&snapshot); err != nil {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.notification = gateNotification(err)
		f.count(ctx, OutcomeRejected)
		return Result{Outcome: OutcomeRejected, Notification: gateNotification(err), Err: err}
	}

	metrics.InquirySubmissionsInFlight.Inc()
	start := time.Now()
	output, err := f.submitter.Execute(ctx, &snapshot)
	metrics.InquirySubmissionsInFlight.Dec()

	f.mu.Lock()
	defer f.mu.Unlock()

	if err != nil {
		f.notification = errorNotification()
		f.count(ctx, OutcomeFailed)
		f.logger.Debug("Contact form submission failed", map[string]interface{}{
			"errorCode":  errors.CodeOf(err),
			"durationMs": time.Since(start).Milliseconds(),
		})
		return Result{Outcome: OutcomeFailed, Notification: errorNotification(), Err: err}
	}

	f.fields = Inquiry{}
	f.notification = successNotification()
	f.count(ctx, OutcomeSucceeded)
	return Result{Outcome: OutcomeSucceeded, Notification: successNotification(), Output: output}
}

// inFlight must be called with f.mu held. Nothing is sent and the
// current toast is left alone.
func (f *Form) inFlight() *Result {
	f.count(context.Background(), OutcomeInFlight)
	return &Result{Outcome: OutcomeInFlight, Err: errors.NewSubmissionInFlightError(f.guardKey)}
}

func (f *Form) release(token string) {
	// the request context may already be cancelled
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := f.guard.Release(ctx, f.guardKey, token); err != nil {
		f.logger.Warn("Failed to release submission guard", map[string]interface{}{
			"guardKey": f.guardKey,
			"error":    err,
		})
	}
}

func (f *Form) setState(s State) {
	f.mu.Lock()
	f.state = s
	f.mu.Unlock()
}

func (f *Form) count(ctx context.Context, outcome Outcome) {
	metrics.InquirySubmissions.WithLabelValues(string(outcome)).Inc()
	f.obs.RecordSubmission(ctx, string(outcome))
}
