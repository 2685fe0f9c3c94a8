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

// Package validator implements the certification validator (spec
// component C8): it loads a captured FIX log, parses each line, and
// checks every message against schema.Tables. Grounded on
// original_source/cert/validator.py's CertificationValidator, one
// method per pipeline stage (LoadLog → ParseMessages → ValidateMessages).
package validator

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/danielgavin-code/FixEm/schema"
	"github.com/danielgavin-code/FixEm/wire"
	"github.com/danielgavin-code/FixEm/wiretag"
)

// Verdict is the result of validating one log line.
type Verdict struct {
	Label   string // "Line N"
	MsgType string
	Valid   bool
	Errors  []string // empty when Valid
}

// String renders a verdict the way original_source/cert/validator.py
// does: "✅ Valid <MsgType>" or "❌ <MsgType> <err>; <err>".
func (v Verdict) String() string {
	if len(v.Errors) == 0 {
		return fmt.Sprintf("✅ Valid %s", v.MsgType)
	}
	return fmt.Sprintf("❌ %s %s", v.MsgType, strings.Join(v.Errors, "; "))
}

// Validator runs a certification pass over one captured log file. RunID
// is an internal correlation value (not part of any FIX field) so a
// batch of runs can be told apart in logs.
type Validator struct {
	RunID   string
	logPath string
	lines   []string
}

// New returns a Validator for the log at path. The file is not read
// until Load is called.
func New(path string) *Validator {
	return &Validator{RunID: uuid.New().String(), logPath: path}
}

// Load reads the log file, stripping blank lines (spec §4.8).
func (v *Validator) Load() error {
	f, err := os.Open(v.logPath)
	if err != nil {
		return fmt.Errorf("certification validator: %w", err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("certification validator: reading %s: %w", v.logPath, err)
	}
	v.lines = lines
	return nil
}

// Validate parses and validates every loaded line, returning one
// verdict per line in order. A line missing tag 35 (MsgType) is skipped
// with a warning verdict rather than validated structurally (spec §4.8).
func (v *Validator) Validate() []Verdict {
	verdicts := make([]Verdict, 0, len(v.lines))

	for i, line := range v.lines {
		label := fmt.Sprintf("Line %d", i+1)
		msg := wire.ParseLine(line)

		msgType, ok := msg.Get(wiretag.TagMsgType)
		if !ok {
			verdicts = append(verdicts, Verdict{
				Label:   label,
				MsgType: "⚠️  Missing tag 35 (MsgType) — message skipped",
				Valid:   true, // a warning, not an error verdict
			})
			continue
		}

		verdicts = append(verdicts, v.validateMessage(label, msgType, msg))
	}

	return verdicts
}

func (v *Validator) validateMessage(label, msgType string, msg *wire.Message) Verdict {
	table, known := schema.Lookup(msgType)
	if !known {
		return Verdict{
			Label:   label,
			MsgType: fmt.Sprintf("⚠️  Unknown MsgType: %s — Skipped structural validation", msgType),
			Valid:   true, // not an error verdict, just unverifiable
		}
	}

	var errs []string

	var missing []string
	for _, tag := range table.Required {
		if !msg.Has(tag) {
			missing = append(missing, fmt.Sprint(tag))
		}
	}
	if len(missing) > 0 {
		errs = append(errs, fmt.Sprintf("missing required tag(s): %s", strings.Join(missing, ", ")))
	}

	allowed := table.Allowed()
	var unexpected []string
	for _, tag := range msg.Order {
		if !allowed[tag] {
			unexpected = append(unexpected, fmt.Sprint(tag))
		}
	}
	if len(unexpected) > 0 {
		errs = append(errs, fmt.Sprintf("unexpected tag(s): %s", strings.Join(unexpected, ", ")))
	}

	for _, pair := range table.Conditionals {
		aPresent, bPresent := msg.Has(pair.A), msg.Has(pair.B)
		if aPresent != bPresent {
			errs = append(errs, fmt.Sprintf("%d/%d must both be present", pair.A, pair.B))
		}
	}

	return Verdict{Label: label, MsgType: table.Label, Valid: len(errs) == 0, Errors: errs}
}
