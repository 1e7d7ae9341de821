package formz

import "time"

// MetricsProvider allows integration with metrics systems like Prometheus, StatsD, etc.
// Implement this interface to receive callbacks on key pipeline events.
type MetricsProvider interface {
	// OnFieldChanged is called on every raw field mutation.
	OnFieldChanged(field string)

	// OnValueSettled is called when a field value survives its debounce
	// window and propagates. Suppressed duplicates do not count.
	OnValueSettled(field string)

	// OnRecompute is called when a new validation state snapshot is
	// published, with the resulting validity flag.
	OnRecompute(valid bool)

	// OnSubmit is called for every submit attempt. Duration covers the
	// submit pipeline; it is zero when the submit was gated off.
	OnSubmit(accepted bool, duration time.Duration)

	// OnPolicyApplied is called when a policy update is applied.
	OnPolicyApplied()
}

// NoOpMetricsProvider is a no-op implementation of MetricsProvider.
// Use this as an embedded type to implement only the methods you need.
type NoOpMetricsProvider struct{}

func (NoOpMetricsProvider) OnFieldChanged(_ string)          {}
func (NoOpMetricsProvider) OnValueSettled(_ string)          {}
func (NoOpMetricsProvider) OnRecompute(_ bool)               {}
func (NoOpMetricsProvider) OnSubmit(_ bool, _ time.Duration) {}
func (NoOpMetricsProvider) OnPolicyApplied()                 {}
