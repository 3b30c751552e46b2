// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidIdentifier is the sentinel error wrapped by InvalidIdentifierError.
var ErrInvalidIdentifier = errors.New("invalid identifier")

type (
	// Identifier names a standalone module or a package within a registry.
	// A valid identifier must be non-empty and must not contain whitespace.
	// Uniqueness is enforced per namespace by the registry, not here.
	Identifier string

	// InvalidIdentifierError is returned when an Identifier value is empty
	// or contains whitespace.
	InvalidIdentifierError struct {
		Value Identifier
	}
)

// String returns the string representation of the Identifier.
func (i Identifier) String() string { return string(i) }

// IsValid returns whether the Identifier is valid.
// A valid identifier must be non-empty and free of whitespace.
func (i Identifier) IsValid() (bool, []error) {
	s := string(i)
	if strings.TrimSpace(s) == "" || strings.ContainsAny(s, " \t\n\r") {
		return false, []error{&InvalidIdentifierError{Value: i}}
	}
	return true, nil
}

// Validate returns nil if the Identifier is valid, or an
// InvalidIdentifierError describing the failure.
func (i Identifier) Validate() error {
	if ok, _ := i.IsValid(); !ok {
		return &InvalidIdentifierError{Value: i}
	}
	return nil
}

// Error implements the error interface for InvalidIdentifierError.
func (e *InvalidIdentifierError) Error() string {
	return fmt.Sprintf("invalid identifier %q: must be non-empty and contain no whitespace", e.Value)
}

// Unwrap returns ErrInvalidIdentifier for errors.Is() compatibility.
func (e *InvalidIdentifierError) Unwrap() error { return ErrInvalidIdentifier }
