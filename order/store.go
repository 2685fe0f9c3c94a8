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

import "sync"

// Store is the process-wide mapping from current ClOrdID to Record,
// shared across every session handler (spec §5). It replaces
// original_source/emulator/server.py's implicit class-scope order dict
// with an explicitly-owned, mutex-guarded store passed into each
// session handler (spec §9) — grounded on
// fixclient/orderstore.go's OrderStore (sync.RWMutex, defensive-copy
// reads).
type Store struct {
	mu     sync.Mutex // rekey must be atomic with respect to lookup/insert, so one mutex, not RWMutex
	orders map[string]*Record
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{orders: make(map[string]*Record)}
}

// InsertIfAbsent inserts rec under clOrdID if no record already holds
// that key, returning false if the key was already taken (spec: Order
// Store keys are unique at any moment).
func (s *Store) InsertIfAbsent(clOrdID string, rec *Record) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.orders[clOrdID]; exists {
		return false
	}
	s.orders[clOrdID] = rec
	return true
}

// Lookup returns the record currently keyed by clOrdID.
func (s *Store) Lookup(clOrdID string) (*Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.orders[clOrdID]
	return rec, ok
}

// Contains reports whether clOrdID is a live key, without returning the
// record — used by the validation ladder's duplicate-ClOrdID checks.
func (s *Store) Contains(clOrdID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.orders[clOrdID]
	return ok
}

// Rekey atomically removes oldClOrdID and inserts the same record under
// newClOrdID, appending newClOrdID to the record's history. Used by
// Cancel and Cancel/Replace (spec §3 invariants, §4.6).
func (s *Store) Rekey(oldClOrdID, newClOrdID string) (*Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.orders[oldClOrdID]
	if !ok {
		return nil, false
	}
	delete(s.orders, oldClOrdID)
	rec.AppendHistory(newClOrdID)
	s.orders[newClOrdID] = rec
	return rec, true
}

// Mutate runs fn against the record keyed by clOrdID while holding the
// store lock, so callers can apply multi-field updates atomically
// without a lookup/mutate race. Returns false if clOrdID isn't present.
func (s *Store) Mutate(clOrdID string, fn func(*Record)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.orders[clOrdID]
	if !ok {
		return false
	}
	fn(rec)
	return true
}

// Len returns the number of live orders, for tests and diagnostics.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}
