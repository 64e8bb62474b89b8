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

import "testing"

func TestAbortOnFirstFailureAlwaysAborts(t *testing.T) {
	p := AbortOnFirstFailure{}
	if !p.HandleTrialFailure("boom") {
		t.Errorf("HandleTrialFailure() = false, want true")
	}
	if !p.HandleTrialFailure("boom again") {
		t.Errorf("HandleTrialFailure() on a second call = false, want true")
	}
}

func TestMaxFailuresPolicyTripsAfterThreshold(t *testing.T) {
	p := NewMaxFailuresPolicy(2)
	if p.HandleTrialFailure("1") {
		t.Errorf("1st failure: abort = true, want false (max=2)")
	}
	if p.HandleTrialFailure("2") {
		t.Errorf("2nd failure: abort = true, want false (max=2)")
	}
	if !p.HandleTrialFailure("3") {
		t.Errorf("3rd failure: abort = false, want true (exceeds max=2)")
	}
}

func TestMaxFailuresPolicyNegativeMaxNeverAborts(t *testing.T) {
	p := NewMaxFailuresPolicy(-1)
	for i := 0; i < 100; i++ {
		if p.HandleTrialFailure("x") {
			t.Fatalf("HandleTrialFailure() aborted on call %d, want unbounded tolerance with max<0", i)
		}
	}
}
