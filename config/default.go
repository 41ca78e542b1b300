// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

// defaultCacheLevels, defaultCacheOps, and defaultCacheResults enumerate the HW_CACHE
// composite events Default registers: every combination of level, op,
// and result produces one entry named LEVEL-OP-RESULT, resolved by the
// registry package the same way a hand-written config entry would be.
var (
	defaultCacheLevels  = []string{"L1D", "L1I", "LL"}
	defaultCacheOps     = []string{"READ", "WRITE"}
	defaultCacheResults = []string{"MISS", "ACCESS"}
)

// Default returns the built-in counter set used when neither
// KPROF_COUNTER_FILE nor KPROF_COUNTER_CONF is set: HW basics
// (instructions, cycles, branches, bus cycles, frontend/backend stalls),
// HW cache (L1d/L1i/LL read/write miss/access), and SW (page faults,
// alignment faults, CPU migrations). Every entry registers with its own
// leader slot, trading atomic group consistency for never failing to
// schedule any one counter.
func Default() []Entry {
	entries := []Entry{
		{Label: "cycles", Class: "H", Event: "PERF_COUNT_HW_CPU_CYCLES", Domain: DomainUser},
		{Label: "instructions", Class: "H", Event: "PERF_COUNT_HW_INSTRUCTIONS", Domain: DomainUser},
		{Label: "branches", Class: "H", Event: "PERF_COUNT_HW_BRANCH_INSTRUCTIONS", Domain: DomainUser},
		{Label: "bus-cycles", Class: "H", Event: "PERF_COUNT_HW_BUS_CYCLES", Domain: DomainUser},
		{Label: "stalled-cycles-frontend", Class: "H", Event: "PERF_COUNT_HW_STALLED_CYCLES_FRONTEND", Domain: DomainUser},
		{Label: "stalled-cycles-backend", Class: "H", Event: "PERF_COUNT_HW_STALLED_CYCLES_BACKEND", Domain: DomainUser},

		{Label: "page-faults", Class: "S", Event: "PERF_COUNT_SW_PAGE_FAULTS", Domain: DomainUser},
		{Label: "alignment-faults", Class: "S", Event: "PERF_COUNT_SW_ALIGNMENT_FAULTS", Domain: DomainUser},
		{Label: "cpu-migrations", Class: "S", Event: "PERF_COUNT_SW_CPU_MIGRATIONS", Domain: DomainUser},
	}

	for _, level := range defaultCacheLevels {
		for _, op := range defaultCacheOps {
			for _, result := range defaultCacheResults {
				label := level + "-" + op + "-" + result
				entries = append(entries, Entry{
					Label:  label,
					Class:  "C",
					Event:  label,
					Domain: DomainUser,
				})
			}
		}
	}

	return entries
}
