package formz

// SubmitRequest carries a gated submit through the submit pipeline.
// It is only ever built from settled pipeline output: the snapshot that
// passed the validity gate and the settled credential values that produced
// it, never in-flight input.
type SubmitRequest struct {
	// State is the validation snapshot that passed the gate.
	State State

	// Username is the settled username value.
	Username string

	// Password is the settled password value.
	Password string
}

// credentials tracks the settled username/password pair for submit requests.
type credentials struct {
	username string
	password string
}
