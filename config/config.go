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

// Package config defines the shape of a loaded configuration bundle and
// a thin YAML loader that builds one. Configuration *ownership* — a CLI
// flag, a file watcher, hot reload — is out of scope (spec §1); what
// this package owns is the Bundle shape
// original_source/ConfigLoader.py's loadAll() produces: a behavior
// library and one profile per enabled session, with symbol-match rules
// already compiled.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/danielgavin-code/FixEm/rulematch"
	"github.com/danielgavin-code/FixEm/scenario"
)

// LoadError is a configuration-load failure (spec §7.5) — fatal at
// startup, never caught and retried mid-run.
type LoadError struct {
	File string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("config: %s: %v", e.File, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Connection is one session's transport identity, the top-level
// "connection:" block in a session profile YAML.
type Connection struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	SenderCompID string `yaml:"sender_comp_id"`
	TargetCompID string `yaml:"target_comp_id"`
	HeartBtInt   int    `yaml:"heart_bt_int"`
}

// RuleSpec is one raw "match"/"behavior" entry from a session profile's
// execution.rules list, before compilation into a rulematch.Rule.
type RuleSpec struct {
	Match    string `yaml:"match"`
	Behavior string `yaml:"behavior"`
}

// Execution is a session profile's "execution:" block: the default
// behavior and the ordered symbol-match rules that override it.
type Execution struct {
	DefaultBehavior string     `yaml:"default_behavior"`
	Rules           []RuleSpec `yaml:"rules"`
}

// rawProfile is the on-disk shape of one session profile file (e.g.
// equities.yaml): "session:", "connection:", and "execution:" are all
// top-level blocks, matching original_source's
// "connection *IS* top-level" / "execution *IS* top-level" comments.
type rawProfile struct {
	Session struct {
		Name     string         `yaml:"name"`
		Role     string         `yaml:"role"`
		Schedule map[string]any `yaml:"schedule"`
	} `yaml:"session"`
	Connection Connection `yaml:"connection"`
	Execution  Execution  `yaml:"execution"`
}

// SessionProfile is one fully-loaded, fully-compiled session: ready to
// hand straight to session.Config alongside a shared order.Store.
type SessionProfile struct {
	Name            string
	Role            string
	Schedule        map[string]any
	Connection      Connection
	DefaultBehavior string
	Rules           *rulematch.Matcher
}

// engineSessionEntry is one "engine.sessions[]" list item in
// engine.yaml.
type engineSessionEntry struct {
	Name    string `yaml:"name"`
	File    string `yaml:"file"`
	Enabled bool   `yaml:"enabled"`
}

type engineYAML struct {
	Engine struct {
		Sessions []engineSessionEntry `yaml:"sessions"`
	} `yaml:"engine"`
}

type behaviorsYAML struct {
	Behaviors map[string][]map[string]any `yaml:"behaviors"`
}

// Bundle is the full startup configuration: the compiled behavior
// library and one SessionProfile per enabled
// session (spec §9's configuration external-collaborator boundary).
type Bundle struct {
	Behaviors map[string]scenario.Behavior
	Sessions  map[string]SessionProfile
}

// Load reads engine.yaml and behaviors.yaml from dir, then every
// session profile engine.yaml's "sessions" list names and marks
// enabled, compiling each profile's symbol-match rules against the
// behavior library (original_source/ConfigLoader.py's loadAll, spec
// §9). A session entry with enabled: false is skipped entirely, same
// as the original.
func Load(dir string) (*Bundle, error) {
	var engine engineYAML
	if err := loadYAML(filepath.Join(dir, "engine.yaml"), &engine); err != nil {
		return nil, err
	}

	var rawBehaviors behaviorsYAML
	if err := loadYAML(filepath.Join(dir, "behaviors.yaml"), &rawBehaviors); err != nil {
		return nil, err
	}

	behaviors, err := compileBehaviors(rawBehaviors.Behaviors)
	if err != nil {
		return nil, &LoadError{File: "behaviors.yaml", Err: err}
	}

	sessions := make(map[string]SessionProfile)
	for _, entry := range engine.Engine.Sessions {
		if entry.Name == "" || entry.File == "" {
			return nil, &LoadError{File: "engine.yaml", Err: fmt.Errorf("each session entry must have 'name' and 'file'")}
		}
		if !entry.Enabled {
			continue
		}

		var profile rawProfile
		if err := loadYAML(filepath.Join(dir, entry.File), &profile); err != nil {
			return nil, err
		}

		rules, err := compileRules(profile.Execution.Rules, behaviors)
		if err != nil {
			return nil, &LoadError{File: entry.File, Err: err}
		}

		sessions[entry.Name] = SessionProfile{
			Name:            firstNonEmpty(profile.Session.Name, entry.Name),
			Role:            firstNonEmpty(profile.Session.Role, "acceptor"),
			Schedule:        profile.Session.Schedule,
			Connection:      profile.Connection,
			DefaultBehavior: profile.Execution.DefaultBehavior,
			Rules:           rulematch.New(rules, profile.Execution.DefaultBehavior),
		}
	}

	return &Bundle{Behaviors: behaviors, Sessions: sessions}, nil
}

func compileBehaviors(raw map[string][]map[string]any) (map[string]scenario.Behavior, error) {
	out := make(map[string]scenario.Behavior, len(raw))
	for name, rawSteps := range raw {
		steps := make([]scenario.Step, 0, len(rawSteps))
		for _, rawStep := range rawSteps {
			step, err := scenario.CompileStep(rawStep)
			if err != nil {
				return nil, fmt.Errorf("behavior %q: %w", name, err)
			}
			steps = append(steps, step)
		}
		out[name] = scenario.Behavior{Name: name, Steps: steps}
	}
	return out, nil
}

func compileRules(specs []RuleSpec, behaviors map[string]scenario.Behavior) ([]rulematch.Rule, error) {
	rules := make([]rulematch.Rule, 0, len(specs))
	for _, spec := range specs {
		if spec.Match == "" || spec.Behavior == "" {
			return nil, fmt.Errorf("rule must contain 'match' and 'behavior' fields")
		}
		if _, ok := behaviors[spec.Behavior]; !ok {
			return nil, fmt.Errorf("behavior %q not found in behaviors.yaml", spec.Behavior)
		}
		rules = append(rules, rulematch.Rule{Pattern: spec.Match, Behavior: spec.Behavior})
	}
	return rules, nil
}

func loadYAML(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &LoadError{File: path, Err: err}
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return &LoadError{File: path, Err: err}
	}
	return nil
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
