package formz

import "github.com/zoobzio/capitan"

// Form field names as they appear in signal fields and metrics.
const (
	FieldUsername      = "username"
	FieldPassword      = "password"
	FieldPasswordAgain = "password_again"
)

// Field keys for Form events.
var (
	// KeyField is the name of the form field an event concerns.
	KeyField = capitan.NewStringKey("field")

	// KeyCheck is the current PasswordCheck classification.
	KeyCheck = capitan.NewStringKey("check")

	// KeyValid is the overall validity flag, formatted as a bool string.
	KeyValid = capitan.NewStringKey("valid")

	// KeyError is the error message when an operation fails.
	KeyError = capitan.NewStringKey("error")

	// KeyStatus is the lifecycle status of the Form.
	KeyStatus = capitan.NewStringKey("status")

	// KeyDebounce is a configured debounce window.
	KeyDebounce = capitan.NewDurationKey("debounce")

	// KeyMinLength is the configured minimum username length.
	KeyMinLength = capitan.NewIntKey("min_length")
)
