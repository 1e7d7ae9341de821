package formz

// State is the externally observable validation state of a Form. It is the
// only data the presentation layer reads: two human-readable messages and
// the overall validity flag. A State is one immutable snapshot; the Form
// publishes a fresh snapshot whenever any derived field changes.
type State struct {
	// UsernameMessage is empty when the username passes validation,
	// otherwise the configured username message.
	UsernameMessage string

	// PasswordMessage is empty when the password pair passes validation,
	// otherwise the message for the highest-priority failing check.
	PasswordMessage string

	// Valid reports whether the form as a whole may be submitted.
	// It is true iff the username is valid and the password check is
	// CheckValid, computed strictly from settled pipeline output.
	Valid bool
}

// Status represents the lifecycle state of a Form.
type Status int32

const (
	// StatusIdle indicates the Form has been created but not started.
	StatusIdle Status = iota

	// StatusRunning indicates the Form's pipeline is wired and processing
	// field mutations.
	StatusRunning

	// StatusStopped indicates the Form has been torn down. All subscriptions
	// are released; field writes, policy updates, and submits are no-ops.
	StatusStopped
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusRunning:
		return "running"
	case StatusStopped:
		return "stopped"
	default:
		return "unknown"
	}
}
