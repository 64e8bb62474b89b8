// Copyright (C) 2026 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package thts

import "fmt"

// ConfigError reports a configuration problem detected synchronously at
// manager/engine construction (spec.md §7): a missing required parameter,
// a non-positive thread count, a nil environment. No partially-constructed
// object is returned alongside a ConfigError.
type ConfigError struct {
	Field string
	Msg   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("thts: configuration error: %s: %s", e.Field, e.Msg)
}

func newConfigError(field, msg string) error {
	return &ConfigError{Field: field, Msg: msg}
}

// InvariantViolation reports a runtime invariant violation raised to the
// caller of the offending operation, per spec.md §7: mutating the root
// while the engine is working, looking up an unknown action during
// recommend, a transposition-key mismatch. The engine makes no attempt at
// recovery from these.
type InvariantViolation struct {
	Op  string
	Msg string
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("thts: invariant violation in %s: %s", e.Op, e.Msg)
}

func newInvariantViolation(op, msg string) error {
	return &InvariantViolation{Op: op, Msg: msg}
}

// EnvironmentError wraps an environment-sampling edge case the engine
// detected (spec.md §7): empty valid-actions at a non-sink state, a
// transition distribution that doesn't sum to 1. These are environment
// bugs, not engine bugs; the engine detects and raises rather than
// silently tolerating them.
type EnvironmentError struct {
	Op  string
	Err error
}

func (e *EnvironmentError) Error() string {
	return fmt.Sprintf("thts: environment error in %s: %v", e.Op, e.Err)
}

func (e *EnvironmentError) Unwrap() error { return e.Err }

func newEnvironmentError(op string, err error) error {
	return &EnvironmentError{Op: op, Err: err}
}
