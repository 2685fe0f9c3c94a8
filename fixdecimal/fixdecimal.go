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

// Package fixdecimal wraps github.com/shopspring/decimal for the exact
// quantity/price arithmetic the order lifecycle engine needs: OrderQty,
// Price, CumQty, and LeavesQty are FIX decimal fields, and the scenario
// engine's 25%-of-leaves partial fill (spec §4.4) would drift under
// repeated float64 multiplication. shopspring/decimal is the library the
// FIX-Go ecosystem reaches for here — see other_examples' sylr.dev/fix
// order-entry command, which prices and sizes orders the same way.
package fixdecimal

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// PartialFillQuantity is 25% of current leaves, the scenario engine's
// fixed partial-fill policy — not configurable, not rounded (spec
// §4.4).
func PartialFillQuantity(leaves decimal.Decimal) decimal.Decimal {
	return leaves.Mul(decimal.NewFromFloat(0.25))
}

// Parse parses a FIX decimal field. It wraps decimal.NewFromString with
// a field-name-bearing error so validation-ladder callers can surface
// which tag failed to parse.
func Parse(fieldName, raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%s: invalid decimal %q: %w", fieldName, raw, err)
	}
	return d, nil
}

// PositiveParse parses and requires a strictly-positive value, the
// OrderQty/Price validation FixEm's session handler applies (spec §4.6
// steps 2 and 4).
func PositiveParse(fieldName, raw string) (decimal.Decimal, error) {
	d, err := Parse(fieldName, raw)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if !d.IsPositive() {
		return decimal.Decimal{}, fmt.Errorf("%s: %q is not positive", fieldName, raw)
	}
	return d, nil
}
