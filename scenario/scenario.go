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

// Package scenario interprets scripted behaviors against an accepted
// order (spec component C4), grounded on
// original_source/ScenarioEngine.py's runBehavior/executeStep. Each
// behavior is a named ordered sequence of steps — send, delay, wait_for,
// or end.
package scenario

import (
	"fmt"
	"log"
	"time"

	"github.com/danielgavin-code/FixEm/order"
)

// Kind identifies which of the four step forms a Step is.
type Kind int

const (
	KindSend Kind = iota
	KindDelay
	KindWaitFor
	KindEnd
)

// Send actions the "send" step recognizes (spec §3).
const (
	ActionNew         = "new"
	ActionPartial     = "partial"
	ActionFill        = "fill"
	ActionFullFill    = "full_fill"
	ActionCancel      = "cancel"
	ActionReject      = "reject"
	ActionReplaceAck  = "replace_ack"
)

// Step is one compiled scenario step.
type Step struct {
	Kind    Kind
	Action  string // set when Kind == KindSend
	DelayMs int    // set when Kind == KindDelay
	Event   string // set when Kind == KindWaitFor
}

// Behavior is a named, ordered sequence of steps.
type Behavior struct {
	Name  string
	Steps []Step
}

// CompileStep turns one raw config step (a single-key map, the shape
// YAML hands back: {"send": "partial"}, {"delay": 50}, ...) into a
// typed Step. A map with zero or more-than-one recognized key, or an
// unrecognized key, is an error — the behavior aborts on compile rather
// than silently skip (spec §4.4 "Any unknown key: fail the behavior").
func CompileStep(raw map[string]any) (Step, error) {
	if len(raw) != 1 {
		return Step{}, fmt.Errorf("scenario: step must have exactly one key, got %v", raw)
	}
	if v, ok := raw["send"]; ok {
		action, ok := v.(string)
		if !ok {
			return Step{}, fmt.Errorf("scenario: send step action must be a string, got %T", v)
		}
		return Step{Kind: KindSend, Action: action}, nil
	}
	if v, ok := raw["delay"]; ok {
		ms, err := toMillis(v)
		if err != nil {
			return Step{}, fmt.Errorf("scenario: delay step: %w", err)
		}
		return Step{Kind: KindDelay, DelayMs: ms}, nil
	}
	if v, ok := raw["wait_for"]; ok {
		event, ok := v.(string)
		if !ok {
			return Step{}, fmt.Errorf("scenario: wait_for step event must be a string, got %T", v)
		}
		return Step{Kind: KindWaitFor, Event: event}, nil
	}
	if _, ok := raw["end"]; ok {
		return Step{Kind: KindEnd}, nil
	}
	return Step{}, fmt.Errorf("scenario: unsupported scenario step: %v", raw)
}

func toMillis(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	default:
		return 0, fmt.Errorf("delay must be a non-negative integer, got %T", v)
	}
}

// Engine executes compiled behaviors against orders. It holds no
// per-order state: Run is synchronous on the calling session
// handler's goroutine (spec §5 — delay steps block that handler, not
// the process).
type Engine struct {
	Behaviors map[string]Behavior
}

// New returns an Engine backed by the given behavior library.
func New(behaviors map[string]Behavior) *Engine {
	return &Engine{Behaviors: behaviors}
}

// Run executes behaviorName's steps against rec in order, synchronously.
// rec.Client must be set — each "send" step calls rec.Client.Emit, the
// narrow interface that replaces the order→server back-reference
// original_source/ScenarioEngine.py used (spec §9).
func (e *Engine) Run(rec *order.Record, behaviorName string) error {
	behavior, ok := e.Behaviors[behaviorName]
	if !ok {
		return fmt.Errorf("scenario: behavior %q not found", behaviorName)
	}

	log.Printf("[scenario] starting behavior %q for order %s", behaviorName, rec.CurrentClOrdID)

	for idx, step := range behavior.Steps {
		if err := e.executeStep(idx+1, step, rec); err != nil {
			return err
		}
		if step.Kind == KindEnd {
			break
		}
	}

	log.Printf("[scenario] completed behavior %q for order %s", behaviorName, rec.CurrentClOrdID)
	return nil
}

func (e *Engine) executeStep(stepNo int, step Step, rec *order.Record) error {
	switch step.Kind {
	case KindSend:
		log.Printf("[scenario] step %d: send %q", stepNo, step.Action)
		if rec.Client == nil {
			return fmt.Errorf("scenario: step %d: order %s has no client handle, cannot send %q", stepNo, rec.CurrentClOrdID, step.Action)
		}
		return rec.Client.Emit(step.Action)

	case KindDelay:
		log.Printf("[scenario] step %d: delay %dms", stepNo, step.DelayMs)
		time.Sleep(time.Duration(step.DelayMs) * time.Millisecond)
		return nil

	case KindWaitFor:
		// Stub per spec §4.4/§9: future implementation blocks on a
		// per-order condition variable signaled when a matching inbound
		// event (e.g. "cancel_received") arrives for this order's
		// current ClOrdID. Until then, log and return immediately.
		log.Printf("[scenario] step %d: wait_for %q (stub — returns immediately)", stepNo, step.Event)
		return nil

	case KindEnd:
		log.Printf("[scenario] step %d: end of scenario", stepNo)
		return nil

	default:
		return fmt.Errorf("scenario: step %d: unsupported step kind %v", stepNo, step.Kind)
	}
}
