package formz

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// validate is the shared validator instance. It backs both the field
// derivations below and Policy struct validation.
var validate = validator.New()

// usernameValid reports whether the raw username meets the minimum length.
// No trimming is applied: leading and trailing whitespace counts toward the
// minimum, matching the raw-value contract of the pipeline.
func usernameValid(username string, minLength int) bool {
	return validate.Var(username, fmt.Sprintf("min=%d", minLength)) == nil
}

// passwordEmpty reports whether the password is the empty string.
func passwordEmpty(password string) bool {
	return validate.Var(password, "required") != nil
}

// passwordsEqual reports structural equality of the two latest password
// values. Callers recombine it whenever either input changes.
func passwordsEqual(password, passwordAgain string) bool {
	return password == passwordAgain
}

// strongEnough reports whether a strength classification clears the bar.
// Anything outside Reasonable, Strong, and VeryStrong, including values a
// scorer invents beyond the known range, is not strong enough.
func strongEnough(s Strength) bool {
	switch s {
	case Reasonable, Strong, VeryStrong:
		return true
	default:
		return false
	}
}
