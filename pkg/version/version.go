// SPDX-License-Identifier: MPL-2.0

// Package version implements the semantic version value carried by packages.
// A package starts out unversioned; its first publish assigns the initial
// semver and later publishes bump exactly one component.
package version

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// NotVersionedString is the serialized form of the unversioned state.
const NotVersionedString = "not_versioned"

var (
	// ErrInvalidVersion is the sentinel error wrapped by InvalidVersionError.
	ErrInvalidVersion = errors.New("invalid version")
	// ErrInvalidIncrement is returned when an Increment value is not one of
	// Major, Minor or Patch.
	ErrInvalidIncrement = errors.New("invalid version increment")
)

type (
	// Increment selects which semver component a version bump targets.
	Increment int

	// Version is a semantic version with an explicit unversioned state.
	// The zero value is the unversioned state, which is the only valid
	// initial state for a package.
	Version struct {
		versioned bool
		major     uint64
		minor     uint64
		patch     uint64
	}

	// InvalidVersionError is returned when a serialized version string does
	// not parse as "not_versioned" or "MAJOR.MINOR.PATCH".
	InvalidVersionError struct {
		Value string
	}
)

const (
	// Major bumps the major component.
	Major Increment = iota
	// Minor bumps the minor component.
	Minor
	// Patch bumps the patch component.
	Patch
)

// String returns the increment kind as a lower-case word.
func (i Increment) String() string {
	switch i {
	case Major:
		return "major"
	case Minor:
		return "minor"
	case Patch:
		return "patch"
	default:
		return fmt.Sprintf("increment(%d)", int(i))
	}
}

// ParseIncrement parses "major", "minor" or "patch" into an Increment.
func ParseIncrement(s string) (Increment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "major":
		return Major, nil
	case "minor":
		return Minor, nil
	case "patch":
		return Patch, nil
	default:
		return 0, fmt.Errorf("%q: %w", s, ErrInvalidIncrement)
	}
}

// NotVersioned returns the unversioned state. It is the zero value of
// Version, provided as a named constructor for readability.
func NotVersioned() Version { return Version{} }

// SemVer returns a concrete semantic version.
func SemVer(major, minor, patch uint64) Version {
	return Version{versioned: true, major: major, minor: minor, patch: patch}
}

// IsVersioned reports whether the version holds a concrete semver.
func (v Version) IsVersioned() bool { return v.versioned }

// Components returns the major, minor and patch components. They are all
// zero for the unversioned state.
func (v Version) Components() (major, minor, patch uint64) {
	return v.major, v.minor, v.patch
}

// Increment returns the version produced by bumping the targeted component.
// The first increment of an unversioned value yields 1.0.0, 0.1.0 or 0.0.1
// depending on the kind. Later increments add one to the targeted component
// and leave the sibling components untouched: 1.1.1 bumped Major is 2.1.1.
func (v Version) Increment(kind Increment) (Version, error) {
	if !v.versioned {
		switch kind {
		case Major:
			return SemVer(1, 0, 0), nil
		case Minor:
			return SemVer(0, 1, 0), nil
		case Patch:
			return SemVer(0, 0, 1), nil
		default:
			return Version{}, fmt.Errorf("%s: %w", kind, ErrInvalidIncrement)
		}
	}
	switch kind {
	case Major:
		return SemVer(v.major+1, v.minor, v.patch), nil
	case Minor:
		return SemVer(v.major, v.minor+1, v.patch), nil
	case Patch:
		return SemVer(v.major, v.minor, v.patch+1), nil
	default:
		return Version{}, fmt.Errorf("%s: %w", kind, ErrInvalidIncrement)
	}
}

// Compare returns -1, 0 or 1 ordering two versions. The unversioned state
// sorts before every concrete version.
func (v Version) Compare(other Version) int {
	if v.versioned != other.versioned {
		if v.versioned {
			return 1
		}
		return -1
	}
	for _, pair := range [][2]uint64{{v.major, other.major}, {v.minor, other.minor}, {v.patch, other.patch}} {
		if pair[0] != pair[1] {
			if pair[0] < pair[1] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// String returns "not_versioned" or "MAJOR.MINOR.PATCH".
func (v Version) String() string {
	if !v.versioned {
		return NotVersionedString
	}
	return fmt.Sprintf("%d.%d.%d", v.major, v.minor, v.patch)
}

// Parse parses the serialized form produced by String.
func Parse(s string) (Version, error) {
	if s == NotVersionedString {
		return NotVersioned(), nil
	}
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return Version{}, &InvalidVersionError{Value: s}
	}
	nums := make([]uint64, 3)
	for i, part := range parts {
		n, err := strconv.ParseUint(part, 10, 64)
		if err != nil {
			return Version{}, &InvalidVersionError{Value: s}
		}
		nums[i] = n
	}
	return SemVer(nums[0], nums[1], nums[2]), nil
}

// MarshalJSON encodes the version as its String form.
func (v Version) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.String())
}

// UnmarshalJSON decodes the form produced by MarshalJSON.
func (v *Version) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("decoding version: %w", err)
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Error implements the error interface for InvalidVersionError.
func (e *InvalidVersionError) Error() string {
	return fmt.Sprintf("invalid version %q: expected %q or MAJOR.MINOR.PATCH", e.Value, NotVersionedString)
}

// Unwrap returns ErrInvalidVersion for errors.Is() compatibility.
func (e *InvalidVersionError) Unwrap() error { return ErrInvalidVersion }
