// internal/runner/runner.go

// Package runner drives test-suite executions against the service. It owns
// the decision of which models to run, consumes the run endpoint's event
// stream, reconstructs run state from partial events, and aggregates
// outcomes across models for comparison and persistence.
package runner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/promptcheck/promptcheck/internal/api"
	"github.com/promptcheck/promptcheck/internal/logging"
	"github.com/promptcheck/promptcheck/internal/stream"
)

// CancelledMessage is the outcome message for a user-initiated stop. It is
// distinct from any server-reported error.
const CancelledMessage = "Test run cancelled"

// readChunkSize is the buffer size for stream body reads.
const readChunkSize = 4096

// CredentialStore answers whether a provider has a configured API key.
type CredentialStore interface {
	For(provider api.Provider) (string, bool)
}

// Options selects the orchestrator's capabilities. Surfaces that never run
// more than one model or never filter by tag disable the matching option.
// NoStream requests the complete result as one JSON payload instead of the
// event stream.
type Options struct {
	SupportsMultiModel bool
	SupportsTags       bool
	NoStream           bool
}

// OutcomeState is the terminal state of one run invocation.
type OutcomeState string

// The terminal states a run can reach.
const (
	StateCompleted OutcomeState = "completed"
	StateFailed    OutcomeState = "failed"
	StateCancelled OutcomeState = "cancelled"
)

// Outcome is the resolved result of one run: a completed TestRun, a failure
// message, or a cancellation.
type Outcome struct {
	State   OutcomeState
	TestRun *api.TestRun
	Message string
}

// Completed reports whether the run finished with a TestRun.
func (o Outcome) Completed() bool {
	return o.State == StateCompleted && o.TestRun != nil
}

// ModelOutcome pairs one requested model with its outcome.
type ModelOutcome struct {
	Selection api.ModelSelection
	Outcome   Outcome
}

// MultiModelResult aggregates the outcomes of one RunAllModels invocation.
// It is immutable once returned.
type MultiModelResult struct {
	Outcomes         []ModelOutcome
	SessionPersisted bool
}

// SuccessfulRuns returns the completed TestRuns in model order.
func (r *MultiModelResult) SuccessfulRuns() []api.TestRun {
	var runs []api.TestRun
	for _, outcome := range r.Outcomes {
		if outcome.Outcome.Completed() {
			runs = append(runs, *outcome.Outcome.TestRun)
		}
	}
	return runs
}

// Progress is the caller-visible progress state, updated as connected and
// progress events arrive.
type Progress struct {
	Current      int
	Total        int
	TestCaseName string
	CurrentModel string
}

// Callbacks are the observer hooks invoked while a run is in flight. Both
// are optional and are called from the goroutine running the orchestrator.
type Callbacks struct {
	OnProgress func(Progress)
	OnResult   func(api.TestCaseResult)
}

// Orchestrator drives runs to completion. Its mutable state (running flag,
// progress, incremental results) belongs to a single caller; conflicting
// invocations while Running() is true are the caller's responsibility to
// prevent.
type Orchestrator struct {
	client    *api.Client
	creds     CredentialStore
	opts      Options
	callbacks Callbacks

	mu       sync.Mutex
	running  bool
	progress Progress
	results  []api.TestCaseResult
	cancel   context.CancelFunc
}

// New constructs an Orchestrator.
func New(client *api.Client, creds CredentialStore, opts Options) *Orchestrator {
	return &Orchestrator{client: client, creds: creds, opts: opts}
}

// SetCallbacks installs the observer hooks. Must not be called while a run
// is in flight.
func (o *Orchestrator) SetCallbacks(cb Callbacks) {
	o.callbacks = cb
}

// Running reports whether a run is in flight.
func (o *Orchestrator) Running() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.running
}

// Progress returns the latest observed progress state.
func (o *Orchestrator) Progress() Progress {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.progress
}

// Results returns the test-case results decoded so far in the current run.
func (o *Orchestrator) Results() []api.TestCaseResult {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]api.TestCaseResult, len(o.results))
	copy(out, o.results)
	return out
}

// Cancel aborts the in-flight run. The run resolves to a Cancelled outcome
// rather than a failure.
func (o *Orchestrator) Cancel() {
	o.mu.Lock()
	cancel := o.cancel
	o.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// ResolveModel picks the run target from a selection set: the primary
// selection when one is marked, otherwise the first in the list. Zero or
// many primaries are tolerated.
func ResolveModel(selections []api.ModelSelection) (api.ModelSelection, error) {
	if len(selections) == 0 {
		return api.ModelSelection{}, fmt.Errorf("no models selected")
	}
	for _, selection := range selections {
		if selection.IsPrimary {
			return selection, nil
		}
	}
	return selections[0], nil
}

// RunSingleModel runs the suite once against one model. Precondition
// failures (missing credential) resolve without a network call. The running
// flag is cleared and the progress state reset on every terminal path.
func (o *Orchestrator) RunSingleModel(ctx context.Context, suiteID string, model api.ModelSelection, req api.RunRequest) Outcome {
	if _, ok := o.creds.For(model.Provider); !ok {
		return Outcome{State: StateFailed, Message: missingCredentialMessage(model.Provider)}
	}

	runCtx := o.begin(ctx)
	defer o.finish()

	return o.runOne(runCtx, suiteID, model, req)
}

// RunAllModels runs the suite against every model in input order, one fully
// resolved before the next begins. A failure for one model does not abort
// the loop. With two or more successes the comparison session is persisted;
// a persistence failure is logged and swallowed.
func (o *Orchestrator) RunAllModels(ctx context.Context, suiteID string, models []api.ModelSelection, req api.RunRequest) (*MultiModelResult, error) {
	if !o.opts.SupportsMultiModel {
		return nil, fmt.Errorf("multi-model runs are not enabled for this orchestrator")
	}
	if len(models) == 0 {
		return nil, fmt.Errorf("no models selected")
	}
	if missing := o.missingProviders(models); len(missing) > 0 {
		return nil, fmt.Errorf("missing API credentials for providers: %s", joinProviders(missing))
	}

	runCtx := o.begin(ctx)
	defer o.finish()

	result := &MultiModelResult{}
	for i, model := range models {
		o.setProgress(Progress{Current: i + 1, Total: len(models), CurrentModel: model.Label()})

		outcome := o.runOne(runCtx, suiteID, model, req)
		result.Outcomes = append(result.Outcomes, ModelOutcome{Selection: model, Outcome: outcome})

		if outcome.State == StateCancelled {
			// Abandon the remaining models; their entries are never created.
			break
		}
	}

	if runs := result.SuccessfulRuns(); len(runs) >= 2 {
		if err := o.client.CreateComparisonSession(ctx, models, runs); err != nil {
			logging.LogEvent("comparison session not persisted: %v", err)
		} else {
			result.SessionPersisted = true
		}
	}

	return result, nil
}

// runOne executes the single-run protocol: request, streaming or JSON
// consumption, terminal outcome. The response body is released on every
// exit path.
func (o *Orchestrator) runOne(ctx context.Context, suiteID string, model api.ModelSelection, req api.RunRequest) Outcome {
	req = req.Normalized()
	if !o.opts.SupportsTags {
		req.Tags = nil
	}
	req.ModelOverride = &api.ModelOverride{Provider: model.Provider, Model: model.Model}

	resp, err := o.client.StartRun(ctx, suiteID, req, !o.opts.NoStream)
	if err != nil {
		return o.transportOutcome(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return Outcome{State: StateFailed, Message: api.ReadError(raw, resp.Status)}
	}

	if strings.HasPrefix(resp.Header.Get("Content-Type"), "text/event-stream") {
		return o.consumeStream(ctx, model, resp.Body)
	}

	// Non-streaming fallback: the whole record arrives as one JSON payload.
	var payload struct {
		TestRun api.TestRun `json:"testRun"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Outcome{State: StateFailed, Message: fmt.Sprintf("malformed run response: %v", err)}
	}
	return Outcome{State: StateCompleted, TestRun: &payload.TestRun}
}

// consumeStream reads the event stream to its terminal event, updating
// progress and incremental results as events arrive in order.
func (o *Orchestrator) consumeStream(ctx context.Context, model api.ModelSelection, body io.Reader) Outcome {
	buf := make([]byte, readChunkSize)
	pending := ""

	for {
		n, err := body.Read(buf)
		if n > 0 {
			events, rest := stream.Decode(pending + string(buf[:n]))
			pending = rest
			for _, event := range events {
				if outcome, terminal := o.applyEvent(model, event); terminal {
					return outcome
				}
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return Outcome{State: StateFailed, Message: "stream ended without a terminal event"}
			}
			return o.transportOutcome(ctx, err)
		}
	}
}

// applyEvent folds one decoded event into the run state. It returns the
// outcome and true when the event is terminal.
func (o *Orchestrator) applyEvent(model api.ModelSelection, event stream.Event) (Outcome, bool) {
	switch event.Kind {
	case stream.KindConnected:
		o.setProgress(Progress{Total: event.Connected.Total, CurrentModel: model.Label()})
	case stream.KindProgress:
		o.setProgress(Progress{
			Current:      event.Progress.Current,
			Total:        event.Progress.Total,
			TestCaseName: event.Progress.TestCaseName,
			CurrentModel: model.Label(),
		})
	case stream.KindResult:
		o.appendResult(*event.Result)
	case stream.KindComplete:
		run := event.Complete.TestRun
		return Outcome{State: StateCompleted, TestRun: &run}, true
	case stream.KindError:
		if event.Error.Fatal() {
			return Outcome{State: StateFailed, Message: event.Error.Message}, true
		}
		// Non-fatal stream errors are already reflected in result events.
	}
	return Outcome{}, false
}

// transportOutcome classifies a request or read error: cancellation becomes
// a distinct Cancelled outcome, anything else a failure.
func (o *Orchestrator) transportOutcome(ctx context.Context, err error) Outcome {
	if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
		return Outcome{State: StateCancelled, Message: CancelledMessage}
	}
	return Outcome{State: StateFailed, Message: err.Error()}
}

// begin marks the orchestrator running, resets run state, and installs a
// fresh cancellation handle superseding any previous one.
func (o *Orchestrator) begin(parent context.Context) context.Context {
	ctx, cancel := context.WithCancel(parent)
	o.mu.Lock()
	defer o.mu.Unlock()
	o.cancel = cancel
	o.running = true
	o.progress = Progress{}
	o.results = nil
	return ctx
}

// finish clears the running flag and progress state. It runs on every
// terminal path.
func (o *Orchestrator) finish() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
	o.running = false
	o.progress = Progress{}
}

func (o *Orchestrator) setProgress(p Progress) {
	o.mu.Lock()
	o.progress = p
	o.mu.Unlock()
	if o.callbacks.OnProgress != nil {
		o.callbacks.OnProgress(p)
	}
}

func (o *Orchestrator) appendResult(result api.TestCaseResult) {
	o.mu.Lock()
	o.results = append(o.results, result)
	o.mu.Unlock()
	if o.callbacks.OnResult != nil {
		o.callbacks.OnResult(result)
	}
}

// missingProviders returns the distinct providers in models without a
// configured credential, in first-seen order.
func (o *Orchestrator) missingProviders(models []api.ModelSelection) []api.Provider {
	seen := make(map[api.Provider]bool)
	var missing []api.Provider
	for _, model := range models {
		if seen[model.Provider] {
			continue
		}
		seen[model.Provider] = true
		if _, ok := o.creds.For(model.Provider); !ok {
			missing = append(missing, model.Provider)
		}
	}
	return missing
}

func missingCredentialMessage(provider api.Provider) string {
	return fmt.Sprintf("missing API credential for provider %q", provider)
}

func joinProviders(providers []api.Provider) string {
	names := make([]string, len(providers))
	for i, provider := range providers {
		names[i] = string(provider)
	}
	return strings.Join(names, ", ")
}
