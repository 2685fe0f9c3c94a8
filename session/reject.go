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

package session

import (
	"fmt"

	"github.com/quickfixgo/quickfix"
)

// SessionRejectError is a session-level reject (35=3): malformed
// required tag, invalid enum, or bad numeric (spec §7.1). It carries
// exactly the fields the reply needs, so the validation ladder and the
// code that builds the wire reply don't need a second switch to agree
// on which tag/reason to report.
type SessionRejectError struct {
	RefTag quickfix.Tag
	Reason string // tag 373 SessionRejectReason
	Text   string // tag 58
}

func (e *SessionRejectError) Error() string {
	return fmt.Sprintf("session reject: tag %d: %s", e.RefTag, e.Text)
}

// BusinessRejectError is a business-level reject, delivered as an
// ExecutionReport with 150=8, 39=8 (spec §7.2): duplicate ClOrdID,
// unknown order, already-canceled.
type BusinessRejectError struct {
	Text string
}

func (e *BusinessRejectError) Error() string {
	return fmt.Sprintf("business reject: %s", e.Text)
}
