// Package formz provides a reactive validation pipeline for sign-up forms.
//
// The core type is Form, which takes live-typed input for a username and
// two password fields and derives, with debounced and deduplicated
// propagation, human-readable validation messages and an overall validity
// flag for a presentation layer to consume.
//
// # Pipeline
//
// Raw field writes flow through a small dataflow graph:
//
//	setters → debounced sources → derivations → combinators → State
//
// Each field has a typed quiet period (slow for length checks, fast for the
// match and strength checks). A value that survives its window becomes a
// settled value; consecutive duplicates are suppressed, so downstream
// recomputation only runs when something actually changed. Combinator
// stages use latest-value semantics: whenever any input settles, the stage
// recomputes with the most recent value of every other input.
//
// # Password checks
//
// The password pair resolves to exactly one PasswordCheck variant, in
// priority order: empty, then mismatch, then strength, then valid. Strength
// classification is delegated to an external Scorer; anything below
// Reasonable fails the check.
//
// # Concurrency
//
// All recomputation happens on a single interaction context: the Form's run
// loop. Within one settled value the entire downstream recompute completes
// before the next mutation or timer fires. Teardown via Stop is idempotent,
// releases every subscription exactly once, and turns pending timers into
// no-ops; writes to a stopped Form are defined no-ops, never a crash.
//
// # Policy
//
// Debounce windows, the username length rule, and the published messages
// are a Policy, hot-reloadable from a file:
//
//	form := formz.New(scorer, onSubmit).
//	    PolicySource(formz.NewFileWatcher("/etc/myapp/form-policy.yaml"))
//
// # Example
//
//	form := formz.New(
//	    scorer,
//	    func(ctx context.Context, req *formz.SubmitRequest) error {
//	        return accounts.Create(ctx, req.Username, req.Password)
//	    },
//	    formz.WithTimeout(5*time.Second),
//	)
//
//	if err := form.Start(ctx); err != nil {
//	    log.Printf("form start: %v", err)
//	}
//	defer form.Stop()
//
//	form.OnChange(func(s formz.State) {
//	    render(s.UsernameMessage, s.PasswordMessage, s.Valid)
//	})
//
//	form.SetUsername("john")
package formz
