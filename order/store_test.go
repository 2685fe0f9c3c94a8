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

package order

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestStore_InsertIfAbsent_RejectsDuplicateKey(t *testing.T) {
	s := NewStore()
	rec := New("OR1", "clord-1", "BTC-USD", SideBuy, decimal.NewFromInt(1), decimal.NewFromInt(50000), TypeLimit, time.Now())

	if !s.InsertIfAbsent("clord-1", rec) {
		t.Fatal("expected first insert to succeed")
	}
	if s.InsertIfAbsent("clord-1", rec) {
		t.Error("expected second insert under the same key to fail")
	}
}

func TestStore_Lookup_NotFound(t *testing.T) {
	s := NewStore()
	if _, ok := s.Lookup("missing"); ok {
		t.Error("expected Lookup to report not found for an unknown ClOrdID")
	}
}

func TestStore_Rekey_MovesRecordAndTracksHistory(t *testing.T) {
	s := NewStore()
	rec := New("OR1", "clord-1", "BTC-USD", SideBuy, decimal.NewFromInt(1), decimal.NewFromInt(50000), TypeLimit, time.Now())
	s.InsertIfAbsent("clord-1", rec)

	moved, ok := s.Rekey("clord-1", "clord-2")
	if !ok {
		t.Fatal("expected Rekey to succeed")
	}
	if moved.CurrentClOrdID != "clord-2" {
		t.Errorf("expected CurrentClOrdID=clord-2, got %s", moved.CurrentClOrdID)
	}
	if moved.LastClOrdID != "clord-1" {
		t.Errorf("expected LastClOrdID=clord-1, got %s", moved.LastClOrdID)
	}
	if s.Contains("clord-1") {
		t.Error("expected old key to no longer be present")
	}
	if !s.Contains("clord-2") {
		t.Error("expected new key to be present")
	}
}

func TestStore_Mutate_AppliesFnAtomically(t *testing.T) {
	s := NewStore()
	rec := New("OR1", "clord-1", "BTC-USD", SideBuy, decimal.NewFromInt(10), decimal.NewFromInt(50000), TypeLimit, time.Now())
	s.InsertIfAbsent("clord-1", rec)

	ok := s.Mutate("clord-1", func(r *Record) {
		r.Status = StatusFilled
	})
	if !ok {
		t.Fatal("expected Mutate to find the record")
	}

	got, _ := s.Lookup("clord-1")
	if got.Status != StatusFilled {
		t.Errorf("expected Status=Filled, got %s", got.Status)
	}
}

func TestRecord_AppendHistory_PreservesOrder(t *testing.T) {
	rec := New("OR1", "clord-1", "BTC-USD", SideBuy, decimal.NewFromInt(1), decimal.NewFromInt(50000), TypeLimit, time.Now())
	rec.AppendHistory("clord-2")
	rec.AppendHistory("clord-3")

	want := []string{"clord-1", "clord-2", "clord-3"}
	if len(rec.History) != len(want) {
		t.Fatalf("expected %d history entries, got %d", len(want), len(rec.History))
	}
	for i, id := range want {
		if rec.History[i] != id {
			t.Errorf("History[%d] = %s, want %s", i, rec.History[i], id)
		}
	}
}
