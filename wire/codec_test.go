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

package wire

import (
	"strings"
	"testing"

	"github.com/quickfixgo/quickfix"
)

func TestBuildAndParse_RoundTrips(t *testing.T) {
	order := []quickfix.Tag{35, 49, 56, 34, 52, 11, 55}
	values := map[quickfix.Tag]string{
		35: "D",
		49: "CLIENT",
		56: "SERVER",
		34: "1",
		52: "20260101-00:00:00.000",
		11: "clord-1",
		55: "BTC-USD",
	}

	frame := Build("FIX.4.2", order, values)
	if !strings.HasPrefix(string(frame), "8=FIX.4.2\x01") {
		t.Fatalf("expected frame to start with BeginString field, got %q", frame)
	}

	msg := Parse(frame)
	if got, _ := msg.Get(35); got != "D" {
		t.Errorf("expected tag 35 = D, got %q", got)
	}
	if got, _ := msg.Get(11); got != "clord-1" {
		t.Errorf("expected tag 11 = clord-1, got %q", got)
	}
	if !msg.Has(10) {
		t.Error("expected checksum tag 10 to be present")
	}
}

func TestChecksum_MatchesManualSum(t *testing.T) {
	msg := []byte("8=FIX.4.2\x019=5\x0135=A\x01")
	var want int
	for _, b := range msg {
		want += int(b)
	}
	want %= 256

	if got := Checksum(msg); got != want {
		t.Errorf("Checksum() = %d, want %d", got, want)
	}
}

func TestParse_DropsFieldWithNoEquals(t *testing.T) {
	msg := Parse([]byte("35=D\x01garbage\x0111=clord-1\x01"))
	if msg.Has(11) == false {
		t.Fatal("expected tag 11 to survive parsing despite the malformed field")
	}
	if len(msg.Order) != 2 {
		t.Errorf("expected 2 well-formed fields, got %d", len(msg.Order))
	}
}

func TestParseLine_FallsBackToPipeDelimiter(t *testing.T) {
	msg := ParseLine("8=FIX.4.2|9=5|35=A|10=000|")
	if got, _ := msg.Get(35); got != "A" {
		t.Errorf("expected tag 35 = A, got %q", got)
	}
}

func TestBuild_SkipsReservedTags(t *testing.T) {
	order := []quickfix.Tag{8, 9, 35, 10}
	values := map[quickfix.Tag]string{8: "ignored", 9: "ignored", 35: "A", 10: "ignored"}

	frame := Build("FIX.4.2", order, values)
	parsed := Parse(frame)
	if got, _ := parsed.Get(8); got != "FIX.4.2" {
		t.Errorf("expected computed BeginString, got %q", got)
	}
}
