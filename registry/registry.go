// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package registry translates the symbolic counter names used in
// configuration (PERF_TYPE_* class names, PERF_COUNT_* event names, HW_CACHE
// composites, and raw hex/decimal literals) into the (type, config) pairs
// perf_event_open(2) consumes.
//
// Lookups are total and side-effect-free: every method returns either a
// valid kernel id or ok == false. The tables are built once, at
// construction, and never mutated afterward — backed by an immutable radix
// tree, so a *Registry handed out to multiple goroutines needs no locking
// even though nothing in this package currently promises concurrent-session
// use (see the Session type, which is documented single-threaded).
package registry

import (
	"strconv"
	"strings"

	iradix "github.com/hashicorp/go-immutable-radix"
)

// Unknown is returned as the config word for an event lookup that failed.
// It is not a valid kernel config on any currently defined HW_CACHE
// encoding or generic event, but it is still only a marker: callers must
// branch on the accompanying ok return, never compare a resolved config
// against Unknown.
const Unknown uint64 = ^uint64(0)

// Kernel PERF_TYPE_* values (golang.org/x/sys/unix constants, duplicated
// here so this package has no dependency on the syscall-facing layer).
const (
	TypeHardware uint32 = 0
	TypeSoftware uint32 = 1
	TypeHWCache  uint32 = 3
	TypeRaw      uint32 = 4
)

// Kernel PERF_COUNT_HW_* / PERF_COUNT_SW_* / PERF_COUNT_HW_CACHE_* values.
const (
	hwCPUCycles             = 0
	hwInstructions          = 1
	hwCacheReferences       = 2
	hwCacheMisses           = 3
	hwBranchInstructions    = 4
	hwBranchMisses          = 5
	hwBusCycles             = 6
	hwStalledCyclesFrontend = 7
	hwStalledCyclesBackend  = 8
	hwRefCPUCycles          = 9

	swCPUClock        = 0
	swTaskClock       = 1
	swPageFaults      = 2
	swContextSwitches = 3
	swCPUMigrations   = 4
	swPageFaultsMin   = 5
	swPageFaultsMaj   = 6
	swAlignmentFaults = 7
	swEmulationFaults = 8

	cacheL1D  = 0
	cacheL1I  = 1
	cacheLL   = 2
	cacheDTLB = 3
	cacheITLB = 4
	cacheBPU  = 5
	cacheNode = 6

	opRead     = 0
	opWrite    = 1
	opPrefetch = 2

	resultAccess = 0
	resultMiss   = 1
)

var cacheLevels = map[string]uint64{
	"L1D": cacheL1D, "L1I": cacheL1I, "LL": cacheLL,
	"DTLB": cacheDTLB, "ITLB": cacheITLB, "BPU": cacheBPU, "NODE": cacheNode,
}

var cacheOps = map[string]uint64{
	"READ": opRead, "WRITE": opWrite, "PREFETCH": opPrefetch,
}

var cacheResults = map[string]uint64{
	"ACCESS": resultAccess, "MISS": resultMiss,
}

// CacheConfig returns the kernel config word for the composite HW_CACHE
// event (level, op, result), packed as bits 0-7 | bits 8-15 | bits 16-23
// per perf_event_open(2).
func CacheConfig(level, op, result uint64) uint64 {
	return (level & 0xff) | ((op & 0xff) << 8) | ((result & 0xff) << 16)
}

// Registry is the Event Type Registry: an immutable map from symbolic
// names to kernel (type, config) pairs.
type Registry struct {
	classes *iradix.Tree // name -> uint32
	events  *iradix.Tree // name -> uint64
}

// New builds the registry's class and event tables. The result is never
// mutated again; it is safe to share across sessions.
func New() *Registry {
	classes := iradix.New()
	classes, _, _ = classes.Insert([]byte("PERF_TYPE_HARDWARE"), TypeHardware)
	classes, _, _ = classes.Insert([]byte("PERF_TYPE_SOFTWARE"), TypeSoftware)
	classes, _, _ = classes.Insert([]byte("PERF_TYPE_HW_CACHE"), TypeHWCache)
	classes, _, _ = classes.Insert([]byte("PERF_TYPE_RAW"), TypeRaw)
	// Short aliases. LookupClass resolves them for every caller; it does
	// not restrict them to the inline env-string dialect.
	classes, _, _ = classes.Insert([]byte("H"), TypeHardware)
	classes, _, _ = classes.Insert([]byte("S"), TypeSoftware)
	classes, _, _ = classes.Insert([]byte("C"), TypeHWCache)
	classes, _, _ = classes.Insert([]byte("R"), TypeRaw)

	events := iradix.New()
	insert := func(name string, config uint64) {
		events, _, _ = events.Insert([]byte(name), config)
	}

	insert("PERF_COUNT_HW_CPU_CYCLES", hwCPUCycles)
	insert("PERF_COUNT_HW_INSTRUCTIONS", hwInstructions)
	insert("PERF_COUNT_HW_CACHE_REFERENCES", hwCacheReferences)
	insert("PERF_COUNT_HW_CACHE_MISSES", hwCacheMisses)
	insert("PERF_COUNT_HW_BRANCH_INSTRUCTIONS", hwBranchInstructions)
	insert("PERF_COUNT_HW_BRANCH_MISSES", hwBranchMisses)
	insert("PERF_COUNT_HW_BUS_CYCLES", hwBusCycles)
	insert("PERF_COUNT_HW_STALLED_CYCLES_FRONTEND", hwStalledCyclesFrontend)
	insert("PERF_COUNT_HW_STALLED_CYCLES_BACKEND", hwStalledCyclesBackend)
	insert("PERF_COUNT_HW_REF_CPU_CYCLES", hwRefCPUCycles)

	insert("PERF_COUNT_SW_CPU_CLOCK", swCPUClock)
	insert("PERF_COUNT_SW_TASK_CLOCK", swTaskClock)
	insert("PERF_COUNT_SW_PAGE_FAULTS", swPageFaults)
	insert("PERF_COUNT_SW_CONTEXT_SWITCHES", swContextSwitches)
	insert("PERF_COUNT_SW_CPU_MIGRATIONS", swCPUMigrations)
	insert("PERF_COUNT_SW_PAGE_FAULTS_MIN", swPageFaultsMin)
	insert("PERF_COUNT_SW_PAGE_FAULTS_MAJ", swPageFaultsMaj)
	insert("PERF_COUNT_SW_ALIGNMENT_FAULTS", swAlignmentFaults)
	insert("PERF_COUNT_SW_EMULATION_FAULTS", swEmulationFaults)

	for levelName, level := range cacheLevels {
		for opName, op := range cacheOps {
			for resultName, result := range cacheResults {
				name := levelName + "-" + opName + "-" + resultName
				insert(name, CacheConfig(level, op, result))
			}
		}
	}

	return &Registry{classes: classes, events: events}
}

// LookupClass resolves a PERF_TYPE_* string or short alias (H/S/C/R) to its
// kernel type value.
func (r *Registry) LookupClass(name string) (uint32, bool) {
	v, ok := r.classes.Get([]byte(name))
	if !ok {
		return 0, false
	}
	return v.(uint32), true
}

// LookupEvent resolves a symbolic event name, an HW_CACHE composite name
// (LEVEL-OP-RESULT), or a numeric literal (0x-prefixed hex, else decimal)
// to its kernel config value. An unresolvable string returns
// (Unknown, false).
func (r *Registry) LookupEvent(token string) (uint64, bool) {
	if v, ok := r.events.Get([]byte(token)); ok {
		return v.(uint64), true
	}
	if n, ok := parseNumeric(token); ok {
		return n, true
	}
	return Unknown, false
}

func parseNumeric(token string) (uint64, bool) {
	if len(token) > 2 && (token[:2] == "0x" || token[:2] == "0X") {
		n, err := strconv.ParseUint(token[2:], 16, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	if token == "" {
		return 0, false
	}
	if !strings.ContainsAny(token, "0123456789") {
		return 0, false
	}
	n, err := strconv.ParseUint(token, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
