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

package validator

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTempLog(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "session.log")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("failed to write temp log: %v", err)
	}
	return path
}

func TestValidator_Validate_ValidLogonPasses(t *testing.T) {
	line := "8=FIX.4.2|9=0|35=A|49=CLIENT|56=SERVER|34=1|52=20260101-00:00:00.000|98=0|108=30|10=000|"
	path := writeTempLog(t, line+"\n")

	v := New(path)
	if err := v.Load(); err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	verdicts := v.Validate()

	if len(verdicts) != 1 {
		t.Fatalf("expected 1 verdict, got %d", len(verdicts))
	}
	if !verdicts[0].Valid {
		t.Errorf("expected valid Logon, got errors: %v", verdicts[0].Errors)
	}
}

func TestValidator_Validate_MissingRequiredTagFails(t *testing.T) {
	line := "8=FIX.4.2|9=0|35=A|49=CLIENT|56=SERVER|34=1|52=20260101-00:00:00.000|10=000|"
	path := writeTempLog(t, line+"\n")

	v := New(path)
	_ = v.Load()
	verdicts := v.Validate()

	if verdicts[0].Valid {
		t.Fatal("expected validation to fail when HeartBtInt/EncryptMethod are missing")
	}
	if !strings.Contains(verdicts[0].Errors[0], "missing required tag") {
		t.Errorf("expected a missing-required-tag error, got %v", verdicts[0].Errors)
	}
}

func TestValidator_Validate_UnknownMsgTypeIsSkippedNotFailed(t *testing.T) {
	line := "8=FIX.4.2|9=0|35=Z|10=000|"
	path := writeTempLog(t, line+"\n")

	v := New(path)
	_ = v.Load()
	verdicts := v.Validate()

	if !verdicts[0].Valid {
		t.Error("expected an unknown MsgType to be skipped, not marked invalid")
	}
}

func TestValidator_Load_StripsBlankLines(t *testing.T) {
	path := writeTempLog(t, "\n\n8=FIX.4.2|9=0|35=Z|10=000|\n\n")

	v := New(path)
	if err := v.Load(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(v.lines) != 1 {
		t.Errorf("expected blank lines to be stripped, got %d lines", len(v.lines))
	}
}
