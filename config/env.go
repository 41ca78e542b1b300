// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"fmt"
	"strings"
)

// ParseInline parses the KPROF_COUNTER_CONF dialect: semicolon-separated
// counter entries, each "label,T:V" where T is a short class token
// (H/S/C/R) and V is any token the event table can resolve, including
// hex. An optional second colon field, "label,T:V:domain", selects the
// execution-context domain; omitted, it defaults to all domains.
// Example: "cyc,H:PERF_COUNT_HW_CPU_CYCLES;raw,R:0x00c0".
func ParseInline(spec string) ([]Entry, error) {
	var entries []Entry
	for _, field := range strings.Split(spec, ";") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		comma := strings.Index(field, ",")
		if comma < 0 {
			return nil, fmt.Errorf("config: invalid inline counter entry %q: want label,T:V", field)
		}
		label := strings.TrimSpace(field[:comma])
		rest := field[comma+1:]

		parts := strings.SplitN(rest, ":", 3)
		if len(parts) < 2 {
			return nil, fmt.Errorf("config: invalid inline counter entry %q: want label,T:V", field)
		}
		domainToken := ""
		if len(parts) == 3 {
			domainToken = parts[2]
		}
		domain, err := parseDomain(domainToken)
		if err != nil {
			return nil, fmt.Errorf("config: inline counter entry %q: %w", field, err)
		}
		entries = append(entries, Entry{
			Label:  label,
			Class:  strings.TrimSpace(parts[0]),
			Event:  strings.TrimSpace(parts[1]),
			Domain: domain,
		})
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("config: inline counter spec %q contained no entries", spec)
	}
	return entries, nil
}
