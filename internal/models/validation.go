package models

import "strings"

// ValidationErrors collects field-level validation messages
type ValidationErrors []string

func (v ValidationErrors) Error() string {
	return strings.Join(v, "; ")
}

// OrNil returns nil when the list is empty, so callers can do
// `if err := m.Validate().OrNil(); err != nil { ... }` without a typed-nil trap.
func (v ValidationErrors) OrNil() error {
	if len(v) == 0 {
		return nil
	}
	return v
}
