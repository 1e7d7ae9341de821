package formz

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/clockz"
	"github.com/zoobzio/pipz"
)

var submitID = pipz.NewIdentity("submit", "Runs the gated submit callback")

var (
	// ErrNotValid is returned by Submit while the latest settled pipeline
	// output reports the form invalid. In-flight input never opens the gate.
	ErrNotValid = errors.New("form is not valid")

	// ErrStopped is returned for operations on a torn-down Form.
	ErrStopped = errors.New("form is stopped")
)

// mutation is one raw field write from the presentation layer.
type mutation struct {
	field string
	value string
}

// Form is the validation state store and the lifecycle manager of the
// pipeline that derives it. The presentation layer writes raw field values
// through the setters and reads the derived State through Snapshot or
// OnChange; everything in between is the dataflow graph:
//
//	field setters → debounced sources → derivations → combinators → State
//
// All graph recomputation happens on a single interaction context: the
// Form's run loop (or the caller, in sync mode). Within one settled value
// the whole downstream recompute completes before the next event is
// processed, so the published State is always internally consistent.
type Form struct {
	scorer       Scorer
	pipeline     pipz.Chainable[*SubmitRequest]
	codec        Codec
	policySource Watcher
	policy       Policy
	clock        clockz.Clock
	metrics      MetricsProvider
	onStop       func(Status)
	syncMode     bool
	ctx          context.Context

	status    atomic.Int32
	state     atomic.Pointer[State]
	creds     atomic.Pointer[credentials]
	lastError atomic.Pointer[error]

	mu          sync.Mutex
	started     bool
	loopRunning bool
	stopOnce    sync.Once

	mutations chan mutation
	applyCh   chan Policy
	policyCh  <-chan []byte
	stopCh    chan struct{}
	done      chan struct{}

	subs *subscriptionBag

	listenersMu sync.Mutex
	listeners   []*changeListener

	// Dataflow graph, owned by the run loop after Start.
	srcUsername      *source[string]
	srcPasswordSlow  *source[string]
	srcPasswordFast  *source[string]
	srcPasswordAgain *source[string]

	usernameOK *node[bool]
	emptyCheck *node[bool]
	equalCheck *node[bool]
	strength   *node[Strength]
	strongOK   *node[bool]
	check      *node[PasswordCheck]
	valid      *node[bool]
}

type changeListener struct {
	fn  func(State)
	sub *Subscription
}

// New creates a Form wired to the given strength scorer and submit callback.
//
// The scorer classifies each settled password; any result below Reasonable
// fails the strength check. The callback runs when Submit passes the
// validity gate; pipeline options (With*) wrap it with middleware.
//
// A nil scorer falls back to LengthScorer and a nil callback to a no-op,
// so a Form can be used purely for message derivation.
//
// Example:
//
//	form := formz.New(scorer,
//	    func(ctx context.Context, req *formz.SubmitRequest) error {
//	        return accounts.Create(ctx, req.Username, req.Password)
//	    },
//	    formz.WithRetry(3),
//	)
func New(
	scorer Scorer,
	onSubmit func(ctx context.Context, req *SubmitRequest) error,
	opts ...Option,
) *Form {
	if scorer == nil {
		scorer = LengthScorer
	}
	if onSubmit == nil {
		onSubmit = func(context.Context, *SubmitRequest) error { return nil }
	}
	terminal := pipz.Effect(submitID, func(ctx context.Context, req *SubmitRequest) error {
		return onSubmit(ctx, req)
	})

	f := &Form{
		scorer:    scorer,
		pipeline:  buildPipeline(terminal, opts),
		codec:     YAMLCodec{},
		policy:    DefaultPolicy(),
		clock:     clockz.RealClock,
		mutations: make(chan mutation, 64),
		applyCh:   make(chan Policy, 4),
		stopCh:    make(chan struct{}),
		done:      make(chan struct{}),
		subs:      newSubscriptionBag(),
	}
	f.status.Store(int32(StatusIdle))
	f.state.Store(&State{})
	f.creds.Store(&credentials{})

	return f
}

// -----------------------------------------------------------------------------
// Chainable Instance Configuration
// -----------------------------------------------------------------------------

// Clock sets a custom clock for debounce timers.
// Use this with clockz.FakeClock for deterministic debounce testing.
// Must be called before Start().
func (f *Form) Clock(clock clockz.Clock) *Form {
	f.clock = clock
	return f
}

// SyncMode enables synchronous processing for testing.
// In sync mode, field writes propagate immediately without debouncing or
// the run loop goroutine, making tests deterministic. Duplicate suppression
// still applies. Must be called before Start().
func (f *Form) SyncMode() *Form {
	f.syncMode = true
	return f
}

// Policy sets the initial validation policy.
// Default: DefaultPolicy(). Must be called before Start().
func (f *Form) Policy(p Policy) *Form {
	f.policy = p
	return f
}

// Codec sets the codec for deserializing policy data.
// Default: YAMLCodec (which also accepts JSON). Must be called before Start().
func (f *Form) Codec(codec Codec) *Form {
	f.codec = codec
	return f
}

// PolicySource sets a watcher whose emissions hot-reload the validation
// policy. The watcher's initial value is applied during Start; invalid
// updates are rejected and the previous policy retained.
// Must be called before Start().
func (f *Form) PolicySource(w Watcher) *Form {
	f.policySource = w
	return f
}

// Metrics sets a metrics provider for observability integration.
// Must be called before Start().
func (f *Form) Metrics(provider MetricsProvider) *Form {
	f.metrics = provider
	return f
}

// OnStop sets a callback that is invoked when the form is torn down.
// Must be called before Start().
func (f *Form) OnStop(fn func(Status)) *Form {
	f.onStop = fn
	return f
}

// -----------------------------------------------------------------------------
// Accessors
// -----------------------------------------------------------------------------

// Status returns the lifecycle status of the Form.
func (f *Form) Status() Status {
	return Status(f.status.Load())
}

// Snapshot returns the current validation state. The snapshot reflects only
// settled pipeline output; it never changes mid-read.
func (f *Form) Snapshot() State {
	return *f.state.Load()
}

// LastError returns the last policy error encountered, or nil.
func (f *Form) LastError() error {
	ptr := f.lastError.Load()
	if ptr == nil {
		return nil
	}
	return *ptr
}

// OnChange registers a listener that receives every published State
// snapshot, delivered on the interaction context. The returned subscription
// detaches it; teardown releases all listeners.
func (f *Form) OnChange(fn func(State)) *Subscription {
	l := &changeListener{fn: fn, sub: newSubscription(nil)}
	f.listenersMu.Lock()
	f.listeners = append(f.listeners, l)
	f.listenersMu.Unlock()
	f.subs.add(l.sub)
	return l.sub
}

// -----------------------------------------------------------------------------
// Lifecycle
// -----------------------------------------------------------------------------

// Start wires the pipeline and begins processing field mutations. Initial
// values (empty fields) are seeded synchronously so the State is derived
// before Start returns.
//
// If a policy source is configured, its initial value is loaded first; a
// decode or validation failure is returned but the Form still runs with the
// previously configured policy.
//
// Start can only be called once. Subsequent calls return an error.
func (f *Form) Start(ctx context.Context) error {
	f.mu.Lock()
	if f.started {
		f.mu.Unlock()
		return fmt.Errorf("form already started")
	}
	if f.Status() == StatusStopped {
		f.mu.Unlock()
		return ErrStopped
	}
	f.started = true
	f.ctx = ctx
	f.mu.Unlock()

	if err := f.policy.Validate(); err != nil {
		return err
	}

	capitan.Emit(ctx, FormStarted,
		KeyDebounce.Field(f.policy.usernameWindow()),
		KeyMinLength.Field(f.policy.UsernameMinLength),
	)

	// Load the initial policy before wiring so it shapes the debounce
	// windows from the first keystroke.
	var policyErr error
	if f.policySource != nil {
		ch, err := f.policySource.Watch(ctx)
		if err != nil {
			return fmt.Errorf("failed to start policy watcher: %w", err)
		}
		f.policyCh = ch
		select {
		case <-ctx.Done():
			return ctx.Err()
		case raw, ok := <-ch:
			if !ok {
				return fmt.Errorf("policy watcher closed before emitting initial value")
			}
			policyErr = f.decodePolicy(ctx, raw)
		}
	}

	f.wire(ctx)

	// Seed initial field values so every derivation and combinator holds a
	// latest value. The store is always derived, even before any input.
	f.srcUsername.seed("")
	f.srcPasswordSlow.seed("")
	f.srcPasswordFast.seed("")
	f.srcPasswordAgain.seed("")

	f.status.Store(int32(StatusRunning))

	if f.syncMode {
		return policyErr
	}

	f.mu.Lock()
	f.loopRunning = true
	f.mu.Unlock()
	go f.run(ctx)

	return policyErr
}

// Stop tears the Form down: cancels pending debounce timers, releases every
// subscription exactly once, and freezes the published State. Stop is
// idempotent, and any timer that was already pending becomes a no-op.
func (f *Form) Stop() {
	f.stopOnce.Do(func() {
		f.mu.Lock()
		running := f.loopRunning
		f.mu.Unlock()

		// No run loop to signal: Start never reached the spawn (not started,
		// sync mode, or a failed Start). Tear down directly.
		if !running {
			f.teardown(f.loopCtx())
			return
		}

		close(f.stopCh)
		<-f.done
	})
}

func (f *Form) loopCtx() context.Context {
	if f.ctx != nil {
		return f.ctx
	}
	return context.Background()
}

// teardown transitions to StatusStopped once; later calls are no-ops.
func (f *Form) teardown(ctx context.Context) {
	if !f.status.CompareAndSwap(int32(StatusRunning), int32(StatusStopped)) &&
		!f.status.CompareAndSwap(int32(StatusIdle), int32(StatusStopped)) {
		return
	}

	for _, s := range f.sources() {
		if s != nil {
			s.stop()
		}
	}
	f.subs.release()

	capitan.Emit(ctx, FormStopped,
		KeyStatus.Field(StatusStopped.String()),
	)
	if f.onStop != nil {
		f.onStop(StatusStopped)
	}
}

func (f *Form) sources() []*source[string] {
	return []*source[string]{f.srcUsername, f.srcPasswordSlow, f.srcPasswordFast, f.srcPasswordAgain}
}

// -----------------------------------------------------------------------------
// Inbound: field writes
// -----------------------------------------------------------------------------

// SetUsername records a raw username mutation.
func (f *Form) SetUsername(v string) {
	f.setField(FieldUsername, v)
}

// SetPassword records a raw password mutation.
func (f *Form) SetPassword(v string) {
	f.setField(FieldPassword, v)
}

// SetPasswordAgain records a raw confirmation-password mutation.
func (f *Form) SetPasswordAgain(v string) {
	f.setField(FieldPasswordAgain, v)
}

// setField enqueues a mutation for the run loop, or applies it inline in
// sync mode. Writes to a Form that is not running are defined no-ops.
func (f *Form) setField(field, value string) {
	if f.Status() != StatusRunning {
		return
	}
	m := mutation{field: field, value: value}

	if f.syncMode {
		f.applyMutation(f.loopCtx(), m)
		return
	}

	select {
	case f.mutations <- m:
	case <-f.stopCh:
	}
}

// -----------------------------------------------------------------------------
// Policy updates
// -----------------------------------------------------------------------------

// ApplyPolicy validates p and applies it to the pipeline. New debounce
// windows govern subsequent settles; rule and message changes are re-derived
// from the latest settled values immediately.
func (f *Form) ApplyPolicy(p Policy) error {
	if err := p.Validate(); err != nil {
		return err
	}

	switch f.Status() {
	case StatusStopped:
		return ErrStopped
	case StatusIdle:
		f.policy = p
		return nil
	}

	if f.syncMode {
		f.applyPolicy(f.loopCtx(), p)
		return nil
	}

	select {
	case f.applyCh <- p:
		return nil
	case <-f.stopCh:
		return ErrStopped
	}
}

// decodePolicy parses and validates raw policy bytes. On failure the
// previous policy is retained and the error recorded.
func (f *Form) decodePolicy(ctx context.Context, raw []byte) error {
	var p Policy
	if err := f.codec.Unmarshal(raw, &p); err != nil {
		err = fmt.Errorf("policy decode failed: %w", err)
		f.setError(err)
		capitan.Emit(ctx, PolicyRejected,
			KeyError.Field(err.Error()),
		)
		return err
	}
	if err := p.Validate(); err != nil {
		f.setError(err)
		capitan.Emit(ctx, PolicyRejected,
			KeyError.Field(err.Error()),
		)
		return err
	}
	f.applyPolicy(ctx, p)
	return nil
}

// applyPolicy installs p on the interaction context.
func (f *Form) applyPolicy(ctx context.Context, p Policy) {
	f.policy = p

	if f.srcUsername != nil {
		f.srcUsername.window = p.usernameWindow()
		f.srcPasswordSlow.window = p.passwordWindow()
		f.srcPasswordFast.window = p.matchWindow()
		f.srcPasswordAgain.window = p.matchWindow()
		f.rederive(ctx)
	}

	capitan.Emit(ctx, PolicyApplied,
		KeyDebounce.Field(p.usernameWindow()),
		KeyMinLength.Field(p.UsernameMinLength),
	)
	if f.metrics != nil {
		f.metrics.OnPolicyApplied()
	}
}

// rederive reapplies rule- and message-bearing policy fields to the latest
// settled values without waiting for new input.
func (f *Form) rederive(ctx context.Context) {
	if u, ok := f.srcUsername.out.value(); ok {
		f.usernameOK.emit(usernameValid(u, f.policy.UsernameMinLength))
	}

	// Messages may have changed even when no derived boolean did; rebuild
	// the snapshot from the current node values.
	f.publish(ctx, func(s *State) {
		if ok, ready := f.usernameOK.value(); ready {
			s.UsernameMessage = f.usernameMessage(ok)
		}
		if c, ready := f.check.value(); ready {
			s.PasswordMessage = f.passwordMessage(c)
		}
		if v, ready := f.valid.value(); ready {
			s.Valid = v
		}
	})
}

func (f *Form) setError(err error) {
	e := err
	f.lastError.Store(&e)
}

// -----------------------------------------------------------------------------
// Submit
// -----------------------------------------------------------------------------

// Submit runs the submit pipeline, gated strictly on the latest settled
// validation state. While the form is invalid Submit is a no-op returning
// ErrNotValid; on a stopped form it returns ErrStopped.
func (f *Form) Submit(ctx context.Context) error {
	switch f.Status() {
	case StatusStopped:
		return ErrStopped
	case StatusIdle:
		return ErrNotValid
	}

	snap := f.Snapshot()
	if !snap.Valid {
		capitan.Emit(ctx, SubmitRejected,
			KeyValid.Field("false"),
		)
		if f.metrics != nil {
			f.metrics.OnSubmit(false, 0)
		}
		return ErrNotValid
	}

	start := f.clock.Now()
	creds := f.creds.Load()
	req := &SubmitRequest{
		State:    snap,
		Username: creds.username,
		Password: creds.password,
	}

	if _, err := f.pipeline.Process(ctx, req); err != nil {
		capitan.Emit(ctx, SubmitRejected,
			KeyError.Field(err.Error()),
		)
		if f.metrics != nil {
			f.metrics.OnSubmit(false, f.clock.Since(start))
		}
		return fmt.Errorf("submit failed: %w", err)
	}

	capitan.Emit(ctx, SubmitAccepted)
	if f.metrics != nil {
		f.metrics.OnSubmit(true, f.clock.Since(start))
	}
	return nil
}

// -----------------------------------------------------------------------------
// Pipeline graph
// -----------------------------------------------------------------------------

// wire builds the dataflow graph: debounced sources feed the derivation
// nodes, which feed the two combinator stages, which feed the State sinks.
// Every edge is a Subscription owned by the bag and released on teardown.
func (f *Form) wire(ctx context.Context) {
	p := f.policy
	f.srcUsername = newSource[string](FieldUsername, f.clock, p.usernameWindow())
	f.srcPasswordSlow = newSource[string](FieldPassword, f.clock, p.passwordWindow())
	f.srcPasswordFast = newSource[string](FieldPassword, f.clock, p.matchWindow())
	f.srcPasswordAgain = newSource[string](FieldPasswordAgain, f.clock, p.matchWindow())

	// Derivations.
	f.usernameOK = mapped(f.subs, f.srcUsername.out, func(s string) bool {
		return usernameValid(s, f.policy.UsernameMinLength)
	})
	f.emptyCheck = mapped(f.subs, f.srcPasswordSlow.out, passwordEmpty)
	f.equalCheck = combined2(f.subs, f.srcPasswordFast.out, f.srcPasswordAgain.out, passwordsEqual)
	f.strength = mapped(f.subs, f.srcPasswordFast.out, f.scorer)
	f.strongOK = mapped(f.subs, f.strength, strongEnough)

	// Combinator stages.
	f.check = combined3(f.subs, f.emptyCheck, f.equalCheck, f.strongOK, resolveCheck)
	f.valid = combined2(f.subs, f.usernameOK, f.check, func(ok bool, c PasswordCheck) bool {
		return ok && c == CheckValid
	})

	// Sinks: each assignment publishes a fresh State snapshot.
	f.subs.add(f.usernameOK.subscribe(func(ok bool) {
		f.publish(ctx, func(s *State) { s.UsernameMessage = f.usernameMessage(ok) })
	}))
	f.subs.add(f.check.subscribe(func(c PasswordCheck) {
		f.publish(ctx, func(s *State) { s.PasswordMessage = f.passwordMessage(c) })
	}))
	f.subs.add(f.valid.subscribe(func(v bool) {
		f.publish(ctx, func(s *State) { s.Valid = v })
	}))

	// Track settled credentials for submit requests.
	f.subs.add(f.srcUsername.out.subscribe(func(v string) {
		c := *f.creds.Load()
		c.username = v
		f.creds.Store(&c)
	}))
	f.subs.add(f.srcPasswordFast.out.subscribe(func(v string) {
		c := *f.creds.Load()
		c.password = v
		f.creds.Store(&c)
	}))
}

func (f *Form) usernameMessage(ok bool) string {
	if ok {
		return ""
	}
	return f.policy.Messages.UsernameTooShort
}

func (f *Form) passwordMessage(c PasswordCheck) string {
	switch c {
	case CheckEmpty:
		return f.policy.Messages.PasswordEmpty
	case CheckNoMatch:
		return f.policy.Messages.PasswordMismatch
	case CheckNotStrongEnough:
		return f.policy.Messages.PasswordTooWeak
	default:
		return ""
	}
}

// publish stores a new State snapshot if the assignment changed anything,
// then notifies observers on the interaction context.
func (f *Form) publish(ctx context.Context, assign func(*State)) {
	cur := f.state.Load()
	next := *cur
	assign(&next)
	if next == *cur {
		return
	}
	f.state.Store(&next)

	capitan.Emit(ctx, StateRecomputed,
		KeyValid.Field(strconv.FormatBool(next.Valid)),
	)
	if f.metrics != nil {
		f.metrics.OnRecompute(next.Valid)
	}
	f.notifyChange(next)
}

func (f *Form) notifyChange(s State) {
	f.listenersMu.Lock()
	ls := make([]*changeListener, len(f.listeners))
	copy(ls, f.listeners)
	f.listenersMu.Unlock()

	for _, l := range ls {
		if !l.sub.Canceled() {
			l.fn(s)
		}
	}
}

// -----------------------------------------------------------------------------
// Run loop
// -----------------------------------------------------------------------------

// run is the interaction loop. It is the only goroutine that touches the
// graph after Start, so one settled value's full downstream recompute always
// completes before the next mutation or timer is handled.
func (f *Form) run(ctx context.Context) {
	defer close(f.done)
	defer f.teardown(ctx)

	for {
		select {
		case <-ctx.Done():
			return

		case <-f.stopCh:
			return

		case m := <-f.mutations:
			f.applyMutation(ctx, m)

		case p := <-f.applyCh:
			f.applyPolicy(ctx, p)

		case raw, ok := <-f.policyCh:
			if !ok {
				f.policyCh = nil
				continue
			}
			_ = f.decodePolicy(ctx, raw) //nolint:errcheck // Errors stored via setError

		case <-f.srcUsername.timerC():
			f.settle(ctx, f.srcUsername)

		case <-f.srcPasswordSlow.timerC():
			f.settle(ctx, f.srcPasswordSlow)

		case <-f.srcPasswordFast.timerC():
			f.settle(ctx, f.srcPasswordFast)

		case <-f.srcPasswordAgain.timerC():
			f.settle(ctx, f.srcPasswordAgain)
		}
	}
}

// applyMutation routes one raw field write to its debounced sources.
// In sync mode the debounce window is skipped; duplicate suppression at the
// nodes still applies.
func (f *Form) applyMutation(ctx context.Context, m mutation) {
	capitan.Emit(ctx, FieldChanged,
		KeyField.Field(m.field),
	)
	if f.metrics != nil {
		f.metrics.OnFieldChanged(m.field)
	}

	for _, s := range f.fieldSources(m.field) {
		if f.syncMode {
			f.settled(ctx, s.name, s.seed(m.value))
			continue
		}
		s.set(m.value)
	}
}

func (f *Form) fieldSources(field string) []*source[string] {
	switch field {
	case FieldUsername:
		return []*source[string]{f.srcUsername}
	case FieldPassword:
		return []*source[string]{f.srcPasswordSlow, f.srcPasswordFast}
	case FieldPasswordAgain:
		return []*source[string]{f.srcPasswordAgain}
	default:
		return nil
	}
}

// settle fires a source whose debounce window elapsed.
func (f *Form) settle(ctx context.Context, s *source[string]) {
	f.settled(ctx, s.name, s.fire())
}

func (f *Form) settled(ctx context.Context, field string, changed bool) {
	if !changed {
		return
	}
	capitan.Emit(ctx, ValueSettled,
		KeyField.Field(field),
	)
	if f.metrics != nil {
		f.metrics.OnValueSettled(field)
	}
}
