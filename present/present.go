/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package present renders human-facing output: the certification
// report and the emulator's startup banner. Grounded on
// fixclient/display.go's split between fmt.Printf (screen-facing
// tables/reports) and log.Printf (operational trace) — present owns
// only the former.
package present

import (
	"fmt"

	"github.com/danielgavin-code/FixEm/validator"
)

// CertificationReport prints one line per verdict, in the exact shape
// original_source/cert/validator.py printed them, followed by a summary
// line. It returns the number of failed verdicts, so cmd/fixem can pick
// an exit code without re-walking the slice.
func CertificationReport(verdicts []validator.Verdict) (failed int) {
	fmt.Printf("Certification Report\n")
	fmt.Printf("=====================\n")

	for _, v := range verdicts {
		fmt.Println(v.String())
		if !v.Valid && len(v.Errors) > 0 {
			failed++
		}
	}

	fmt.Printf("\n%d message(s) checked, %d failed\n", len(verdicts), failed)
	return failed
}

// StartupBanner prints the REPL-style banner the emulator shows on
// launch, naming the sessions it is about to accept connections for.
func StartupBanner(sessionNames []string) {
	fmt.Println("FixEm — FIX 4.2 session emulator")
	fmt.Println("---------------------------------")
	if len(sessionNames) == 0 {
		fmt.Println("No sessions enabled.")
		return
	}
	fmt.Println("Sessions:")
	for _, name := range sessionNames {
		fmt.Printf("  - %s\n", name)
	}
}
