package formz

import (
	"fmt"
	"time"
)

// Default debounce windows. Text-length checks settle slowly so the user is
// not nagged mid-word; the match and strength checks settle fast so feedback
// on the second password field feels immediate.
const (
	DefaultUsernameDebounce = 800 * time.Millisecond
	DefaultPasswordDebounce = 800 * time.Millisecond
	DefaultMatchDebounce    = 200 * time.Millisecond
)

// DefaultUsernameMinLength is the minimum username length enforced when no
// policy overrides it.
const DefaultUsernameMinLength = 3

// Messages holds the human-readable validation messages a Form publishes.
// Empty strings are not allowed; a valid field is reported by the Form with
// an empty message, never by a blank policy entry.
type Messages struct {
	UsernameTooShort string `yaml:"username_too_short" json:"username_too_short" validate:"required"`
	PasswordEmpty    string `yaml:"password_empty" json:"password_empty" validate:"required"`
	PasswordMismatch string `yaml:"password_mismatch" json:"password_mismatch" validate:"required"`
	PasswordTooWeak  string `yaml:"password_too_weak" json:"password_too_weak" validate:"required"`
}

// Policy configures the validation pipeline: debounce windows, the username
// length rule, and the published messages. Policies are plain data and can
// be hot-reloaded from a file (see FileWatcher and Form.PolicySource).
//
// Durations are expressed in milliseconds so policy files stay readable.
type Policy struct {
	// UsernameDebounceMS is the quiet period for the username source.
	UsernameDebounceMS int `yaml:"username_debounce_ms" json:"username_debounce_ms" validate:"min=0"`

	// PasswordDebounceMS is the quiet period for the password-emptiness source.
	PasswordDebounceMS int `yaml:"password_debounce_ms" json:"password_debounce_ms" validate:"min=0"`

	// MatchDebounceMS is the quiet period for the fast password sources that
	// feed both the equality check and the strength scorer.
	MatchDebounceMS int `yaml:"match_debounce_ms" json:"match_debounce_ms" validate:"min=0"`

	// UsernameMinLength is the minimum username length, counted on the raw
	// value without trimming.
	UsernameMinLength int `yaml:"username_min_length" json:"username_min_length" validate:"min=1"`

	// Messages are the published validation messages.
	Messages Messages `yaml:"messages" json:"messages"`
}

// DefaultPolicy returns the built-in policy: 800ms/800ms/200ms windows,
// three-character usernames, and English messages.
func DefaultPolicy() Policy {
	return Policy{
		UsernameDebounceMS: int(DefaultUsernameDebounce / time.Millisecond),
		PasswordDebounceMS: int(DefaultPasswordDebounce / time.Millisecond),
		MatchDebounceMS:    int(DefaultMatchDebounce / time.Millisecond),
		UsernameMinLength:  DefaultUsernameMinLength,
		Messages: Messages{
			UsernameTooShort: "User name must at least have 3 characters",
			PasswordEmpty:    "Password must not be empty",
			PasswordMismatch: "Password don't match",
			PasswordTooWeak:  "Password not strong enough",
		},
	}
}

// Validate checks the policy against its struct tags.
func (p Policy) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("invalid policy: %w", err)
	}
	return nil
}

func (p Policy) usernameWindow() time.Duration {
	return time.Duration(p.UsernameDebounceMS) * time.Millisecond
}

func (p Policy) passwordWindow() time.Duration {
	return time.Duration(p.PasswordDebounceMS) * time.Millisecond
}

func (p Policy) matchWindow() time.Duration {
	return time.Duration(p.MatchDebounceMS) * time.Millisecond
}
