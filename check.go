package formz

// Strength is the classification produced by a password strength scorer.
// The scorer itself is an external collaborator (see Scorer); the pipeline
// only cares whether a result clears the Reasonable bar.
type Strength int

const (
	// VeryWeak indicates a trivially guessable password.
	VeryWeak Strength = iota

	// Weak indicates a password below the acceptable bar.
	Weak

	// Reasonable is the minimum acceptable strength.
	Reasonable

	// Strong indicates a password comfortably above the bar.
	Strong

	// VeryStrong indicates a highly resistant password.
	VeryStrong
)

// String returns the string representation of the strength level.
func (s Strength) String() string {
	switch s {
	case VeryWeak:
		return "very-weak"
	case Weak:
		return "weak"
	case Reasonable:
		return "reasonable"
	case Strong:
		return "strong"
	case VeryStrong:
		return "very-strong"
	default:
		return "unknown"
	}
}

// Scorer classifies a password's strength. Implementations must be
// deterministic and side-effect free; the pipeline may invoke them on every
// settled password value. Any result other than Reasonable, Strong, or
// VeryStrong is treated as not strong enough.
type Scorer func(password string) Strength

// LengthScorer is a naive Scorer that classifies purely by length. It exists
// so examples and tests have a deterministic collaborator; production callers
// should supply a real estimator.
func LengthScorer(password string) Strength {
	switch n := len(password); {
	case n < 6:
		return VeryWeak
	case n < 8:
		return Weak
	case n < 10:
		return Reasonable
	case n < 12:
		return Strong
	default:
		return VeryStrong
	}
}

// PasswordCheck is the mutually exclusive classification of the password
// pair. Exactly one variant holds at any time; when multiple underlying
// conditions hold simultaneously, resolution order picks the dominant one.
type PasswordCheck int

const (
	// CheckValid indicates the password pair passes all checks.
	CheckValid PasswordCheck = iota

	// CheckEmpty indicates the password is empty.
	CheckEmpty

	// CheckNoMatch indicates the two password fields differ.
	CheckNoMatch

	// CheckNotStrongEnough indicates the scorer classified the password
	// below Reasonable.
	CheckNotStrongEnough
)

// String returns the string representation of the check result.
func (c PasswordCheck) String() string {
	switch c {
	case CheckValid:
		return "valid"
	case CheckEmpty:
		return "empty"
	case CheckNoMatch:
		return "no-match"
	case CheckNotStrongEnough:
		return "not-strong-enough"
	default:
		return "unknown"
	}
}

// resolveCheck folds the three password conditions into a single
// PasswordCheck, first match wins. Emptiness dominates mismatch, which
// dominates strength: a user is never told their empty fields don't match,
// and never told the password is weak when the real issue is a mismatch.
func resolveCheck(empty, equal, strong bool) PasswordCheck {
	switch {
	case empty:
		return CheckEmpty
	case !equal:
		return CheckNoMatch
	case !strong:
		return CheckNotStrongEnough
	default:
		return CheckValid
	}
}
