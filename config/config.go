// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config loads counter configuration from the environment, a CSV
// file, or an inline string, in the priority order documented on Load:
// KPROF_COUNTER_FILE, then KPROF_COUNTER_CONF, then the built-in default
// set.
package config

import (
	"fmt"
	"os"
)

// Domain bits, duplicated from the root package's Domain type so this
// package has no import-cycle-forming dependency on it. The root package
// converts Entry.Domain with a plain Domain(...) conversion, so these
// values must stay numerically identical to kprof.Domain's.
const (
	DomainUser       uint8 = 1 << 0
	DomainKernel     uint8 = 1 << 1
	DomainHypervisor uint8 = 1 << 2
	DomainAll        uint8 = DomainUser | DomainKernel | DomainHypervisor
)

// Entry is one configured counter: a label to report it under, a
// PERF_TYPE_* class token, a PERF_COUNT_*/HW_CACHE/numeric event token,
// and the execution-context domain it should accumulate in.
type Entry struct {
	Label  string
	Class  string
	Event  string
	Domain uint8
}

const (
	envFile   = "KPROF_COUNTER_FILE"
	envInline = "KPROF_COUNTER_CONF"
)

// Load resolves counter configuration from the environment: if
// KPROF_COUNTER_FILE is set, its CSV contents win; else if
// KPROF_COUNTER_CONF is set, its inline contents win; else the built-in
// default set is returned.
func Load() ([]Entry, error) {
	if path := os.Getenv(envFile); path != "" {
		return ParseFile(path)
	}
	if spec := os.Getenv(envInline); spec != "" {
		return ParseInline(spec)
	}
	return Default(), nil
}

func parseDomain(token string) (uint8, error) {
	if token == "" {
		return DomainAll, nil
	}
	var d uint8
	for _, c := range token {
		switch c {
		case 'u', 'U':
			d |= DomainUser
		case 'k', 'K':
			d |= DomainKernel
		case 'h', 'H':
			d |= DomainHypervisor
		default:
			return 0, fmt.Errorf("config: invalid domain token %q", token)
		}
	}
	return d, nil
}
