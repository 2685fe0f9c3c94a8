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

// Package order implements the order record and process-wide Store
// (spec component C3): a strongly-typed record with an explicit status
// enum, replacing the dict-typed, string-keyed order objects
// original_source/emulator/server.py passed around (spec §9
// re-architecture guidance).
package order

import (
	"time"

	"github.com/shopspring/decimal"
)

// Side is the FIX side enum (tag 54).
type Side string

const (
	SideBuy  Side = "1"
	SideSell Side = "2"
)

// Type is the FIX order type enum (tag 40).
type Type string

const (
	TypeMarket Type = "1"
	TypeLimit  Type = "2"
)

// Status is the order's lifecycle state.
type Status string

const (
	StatusNew             Status = "New"
	StatusPartiallyFilled  Status = "PartiallyFilled"
	StatusFilled           Status = "Filled"
	StatusCanceled         Status = "Canceled"
	StatusReplaced         Status = "Replaced"
	StatusRejected         Status = "Rejected"
)

// ClientHandle is the narrow interface the scenario engine is given to
// emit execution reports, replacing the cyclic order->server back
// reference original_source/ScenarioEngine.py used
// (orderObj["server"].HandleScenarioAction(...)) — spec §9.
type ClientHandle interface {
	// Emit sends an ExecutionReport for the given send action
	// ("partial", "fill", "cancel", "reject", "replace_ack") computed
	// against the order's current state.
	Emit(action string) error
}

// Record is one order's full lifecycle state (spec §3). Non-decimal,
// wire-facing fields are strings because that's what travels on the
// wire; quantities and prices are decimal.Decimal so repeated partial
// fills don't accumulate float error.
type Record struct {
	OrderID         string
	OriginalClOrdID string
	CurrentClOrdID  string
	LastClOrdID     string
	History         []string

	Symbol  string
	Side    Side
	OrigQty decimal.Decimal
	Price   decimal.Decimal
	OrdType Type

	CumQty    decimal.Decimal
	LeavesQty decimal.Decimal
	Status    Status

	CreatedAt time.Time
	UpdatedAt time.Time

	// Client is the owning session's narrow emit interface, set when the
	// order is accepted. Never touched by Store; scenario.Engine and the
	// session handler's cancel and cancel/replace paths call it.
	Client ClientHandle
}

// AppendHistory records a new ClOrdID as the order's current identity,
// preserving the previous one as LastClOrdID. Invariant: History[0] ==
// OriginalClOrdID and History[len-1] == CurrentClOrdID (spec §3).
func (r *Record) AppendHistory(newClOrdID string) {
	r.LastClOrdID = r.CurrentClOrdID
	r.CurrentClOrdID = newClOrdID
	r.History = append(r.History, newClOrdID)
}

// New constructs a freshly-accepted order record (status New, leaves ==
// orig, cum == 0).
func New(orderID, clOrdID, symbol string, side Side, qty, price decimal.Decimal, ordType Type, now time.Time) *Record {
	return &Record{
		OrderID:         orderID,
		OriginalClOrdID: clOrdID,
		CurrentClOrdID:  clOrdID,
		History:         []string{clOrdID},
		Symbol:          symbol,
		Side:            side,
		OrigQty:         qty,
		Price:           price,
		OrdType:         ordType,
		CumQty:          decimal.Zero,
		LeavesQty:       qty,
		Status:          StatusNew,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}
