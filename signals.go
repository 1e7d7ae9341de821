package formz

import "github.com/zoobzio/capitan"

// Form lifecycle signals.
var (
	// FormStarted is emitted when a Form's pipeline is wired and running.
	FormStarted = capitan.NewSignal(
		"formz.form.started",
		"Form pipeline started",
	)

	// FormStopped is emitted when a Form is torn down.
	FormStopped = capitan.NewSignal(
		"formz.form.stopped",
		"Form pipeline stopped",
	)
)

// Pipeline propagation signals. Field values never appear in signal fields;
// only field names and derived results are observable.
var (
	// FieldChanged is emitted on every raw field mutation.
	FieldChanged = capitan.NewSignal(
		"formz.field.changed",
		"Raw field mutation received",
	)

	// ValueSettled is emitted when a field value survives its debounce
	// window and propagates into the graph.
	ValueSettled = capitan.NewSignal(
		"formz.value.settled",
		"Debounced value settled and propagated",
	)

	// StateRecomputed is emitted when a new validation state snapshot is
	// published.
	StateRecomputed = capitan.NewSignal(
		"formz.state.recomputed",
		"Validation state snapshot published",
	)
)

// Submit and policy signals.
var (
	// SubmitAccepted is emitted when a submit passes the validity gate and
	// the submit pipeline succeeds.
	SubmitAccepted = capitan.NewSignal(
		"formz.submit.accepted",
		"Submit accepted",
	)

	// SubmitRejected is emitted when a submit is gated off or the submit
	// pipeline fails.
	SubmitRejected = capitan.NewSignal(
		"formz.submit.rejected",
		"Submit rejected",
	)

	// PolicyApplied is emitted when a policy update is applied.
	PolicyApplied = capitan.NewSignal(
		"formz.policy.applied",
		"Validation policy applied",
	)

	// PolicyRejected is emitted when a policy update fails decoding or
	// validation and the previous policy is retained.
	PolicyRejected = capitan.NewSignal(
		"formz.policy.rejected",
		"Validation policy rejected",
	)
)
