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

// Command fixem is FixEm's entry point: --mode emulate runs the session
// acceptor against a config directory, --mode certify runs the
// certification validator against a captured log. Exit codes mirror
// original_source/FixEm.py's Main(): 0 success, 1 bad usage, 2
// certification failure.
package main

import (
	"flag"
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/danielgavin-code/FixEm/acceptor"
	"github.com/danielgavin-code/FixEm/auditlog"
	"github.com/danielgavin-code/FixEm/config"
	"github.com/danielgavin-code/FixEm/order"
	"github.com/danielgavin-code/FixEm/present"
	"github.com/danielgavin-code/FixEm/scenario"
	"github.com/danielgavin-code/FixEm/session"
	"github.com/danielgavin-code/FixEm/validator"
)

func main() {
	mode := flag.String("mode", "", "mode to run: 'emulate' or 'certify'")
	configDir := flag.String("config", "", "path to FIX session config directory (required for emulate mode)")
	logPath := flag.String("log", "", "path to FIX log file for certification (required for certify mode)")
	auditDBPath := flag.String("audit-db", "", "optional path to a SQLite audit journal (emulate mode only)")
	flag.Parse()

	switch *mode {
	case "emulate":
		runEmulate(*configDir, *auditDBPath)
	case "certify":
		runCertify(*logPath)
	default:
		fmt.Fprintln(os.Stderr, "[ERROR] --mode must be 'emulate' or 'certify'")
		os.Exit(1)
	}
}

func runEmulate(configDir, auditDBPath string) {
	if configDir == "" {
		fmt.Fprintln(os.Stderr, "[ERROR] --config is required for emulate mode")
		os.Exit(1)
	}

	bundle, err := config.Load(configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[ERROR] loading config: %v\n", err)
		os.Exit(1)
	}

	var recorder session.Recorder
	if auditDBPath != "" {
		store, err := auditlog.Open(auditDBPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "[ERROR] opening audit journal: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()
		recorder = store
	}

	names := make([]string, 0, len(bundle.Sessions))
	for name := range bundle.Sessions {
		names = append(names, name)
	}
	present.StartupBanner(names)

	sharedStore := order.NewStore()
	scenarioEngine := scenario.New(bundle.Behaviors)

	// A single process-wide Order Store is shared across every session
	// (spec §5): all sessions emulate against the same order book. Each
	// session listens on its own address, so each gets its own Acceptor
	// goroutine; the main goroutine just waits.
	for _, profile := range bundle.Sessions {
		profile := profile
		addr := net.JoinHostPort(profile.Connection.Host, strconv.Itoa(profile.Connection.Port))
		acc := acceptor.New(addr, func(conn net.Conn) session.Config {
			return session.Config{
				SenderCompID:      profile.Connection.SenderCompID,
				TargetCompID:      profile.Connection.TargetCompID,
				HeartBtIntSeconds: profile.Connection.HeartBtInt,
				Rules:             profile.Rules,
				Scenario:          scenarioEngine,
				Store:             sharedStore,
				Recorder:          recorder,
			}
		})
		go func() {
			if err := acc.Run(); err != nil {
				fmt.Fprintf(os.Stderr, "[ERROR] session %s: %v\n", profile.Name, err)
			}
		}()
	}

	select {}
}

func runCertify(logPath string) {
	if logPath == "" {
		fmt.Fprintln(os.Stderr, "[ERROR] --log is required for certify mode")
		os.Exit(1)
	}

	fmt.Printf("[INFO] Certifying FIX Log: %s\n", logPath)

	v := validator.New(logPath)
	if err := v.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "[ERROR] Certification failed: %v\n", err)
		os.Exit(2)
	}

	verdicts := v.Validate()
	failed := present.CertificationReport(verdicts)
	if failed > 0 {
		os.Exit(2)
	}
}
