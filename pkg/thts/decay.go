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

// computeDecayedTemp applies a TempDecayFn to compute a decayed
// temperature/coefficient from a node's visit count, mirroring
// original_source/src/algorithms/common/decaying_temp.cpp's
// compute_decayed_temp: scales visits by visitsScale, evaluates f, and
// floors the result at minTemp, scaled by initTemp.
func computeDecayedTemp(f TempDecayFn, initTemp, minTemp float64, numVisits int, visitsScale float64) float64 {
	if f == nil {
		return initTemp
	}
	scaled := float64(numVisits) * visitsScale
	decayed := initTemp * f(scaled)
	if decayed < minTemp {
		return minTemp
	}
	return decayed
}
