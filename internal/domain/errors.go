package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind categorizes hunt errors so schedulers and command handlers can
// react without string matching.
type ErrorKind string

const (
	// KindConfigMissing indicates one or more required config keys are
	// missing, zero, or non-coercible.
	KindConfigMissing ErrorKind = "config_missing"
	// KindTableEmpty indicates a named table resolved to an empty record set.
	KindTableEmpty ErrorKind = "table_empty"
	// KindDateParse indicates a malformed date/time string in the config.
	KindDateParse ErrorKind = "date_parse"
	// KindWrongChannel indicates a command issued outside its allowed channels.
	KindWrongChannel ErrorKind = "wrong_channel"
	// KindNotAuthorized indicates the caller lacks a required role.
	KindNotAuthorized ErrorKind = "not_authorized"
	// KindBadReward indicates an unparsable or negative reward amount.
	KindBadReward ErrorKind = "bad_reward"
	// KindInvalidArgument indicates some other unusable command input.
	KindInvalidArgument ErrorKind = "invalid_argument"
	// KindNotFound indicates a lookup miss (bounty, message, channel).
	KindNotFound ErrorKind = "not_found"
	// KindConflict indicates a duplicate of something that must be unique.
	KindConflict ErrorKind = "conflict"
	// KindInternal indicates an unexpected failure inside a component.
	KindInternal ErrorKind = "internal"
)

// Error is a tagged error carrying a kind and a context payload. Components
// return these instead of raising so the "never crash the scheduler"
// contract is visible in the type system.
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
	Context map[string]any
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// UserMessage is the human-readable text safe to show non-operator
// audiences. Internal causes are never included.
func (e *Error) UserMessage() string {
	return e.Message
}

// WithContext adds a context field to the error (chainable).
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// ConfigMissingError reports every missing field at once, never just the
// first one found.
func ConfigMissingError(fields []string) *Error {
	return &Error{
		Kind:    KindConfigMissing,
		Message: fmt.Sprintf("missing or invalid configuration fields: %s", strings.Join(fields, ", ")),
		Context: map[string]any{"fields": fields},
	}
}

// TableEmptyError reports that a named table produced no usable records.
func TableEmptyError(tableName string) *Error {
	return &Error{
		Kind:    KindTableEmpty,
		Message: fmt.Sprintf("table %q resolved to an empty record set", tableName),
		Context: map[string]any{"table": tableName},
	}
}

// DateParseError names the expected format so operators can fix the sheet.
func DateParseError(value string) *Error {
	return &Error{
		Kind:    KindDateParse,
		Message: "invalid date/time format, expected DD/MM/YYYY HH:MM",
		Context: map[string]any{"value": value},
	}
}

// KindOf extracts the ErrorKind from err, or KindInternal when err is not a
// tagged domain error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
