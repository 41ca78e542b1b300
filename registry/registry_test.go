// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package registry

import "testing"

func TestLookupClass(t *testing.T) {
	r := New()
	cases := []struct {
		name string
		want uint32
	}{
		{"PERF_TYPE_HARDWARE", TypeHardware},
		{"PERF_TYPE_SOFTWARE", TypeSoftware},
		{"PERF_TYPE_HW_CACHE", TypeHWCache},
		{"PERF_TYPE_RAW", TypeRaw},
		{"H", TypeHardware},
		{"S", TypeSoftware},
		{"C", TypeHWCache},
		{"R", TypeRaw},
	}
	for _, c := range cases {
		got, ok := r.LookupClass(c.name)
		if !ok {
			t.Errorf("LookupClass(%q): not found", c.name)
			continue
		}
		if got != c.want {
			t.Errorf("LookupClass(%q) = %d, want %d", c.name, got, c.want)
		}
	}
}

func TestLookupClassUnknown(t *testing.T) {
	r := New()
	if _, ok := r.LookupClass("PERF_TYPE_BOGUS"); ok {
		t.Error("LookupClass(bogus) should fail")
	}
}

func TestLookupEventSymbolic(t *testing.T) {
	r := New()
	got, ok := r.LookupEvent("PERF_COUNT_HW_CPU_CYCLES")
	if !ok || got != hwCPUCycles {
		t.Errorf("LookupEvent(cpu-cycles) = %d, %v", got, ok)
	}
	got, ok = r.LookupEvent("PERF_COUNT_SW_PAGE_FAULTS")
	if !ok || got != swPageFaults {
		t.Errorf("LookupEvent(page-faults) = %d, %v", got, ok)
	}
}

func TestLookupEventCacheComposite(t *testing.T) {
	r := New()
	got, ok := r.LookupEvent("L1D-READ-MISS")
	if !ok {
		t.Fatal("LookupEvent(L1D-READ-MISS): not found")
	}
	want := CacheConfig(cacheL1D, opRead, resultMiss)
	if got != want {
		t.Errorf("LookupEvent(L1D-READ-MISS) = %#x, want %#x", got, want)
	}
}

func TestLookupEventNumeric(t *testing.T) {
	r := New()
	if got, ok := r.LookupEvent("0x2a"); !ok || got != 0x2a {
		t.Errorf("LookupEvent(0x2a) = %#x, %v", got, ok)
	}
	if got, ok := r.LookupEvent("42"); !ok || got != 42 {
		t.Errorf("LookupEvent(42) = %d, %v", got, ok)
	}
}

func TestLookupEventUnknown(t *testing.T) {
	r := New()
	got, ok := r.LookupEvent("not-a-real-event")
	if ok {
		t.Error("LookupEvent(garbage) should fail")
	}
	if got != Unknown {
		t.Errorf("LookupEvent(garbage) = %#x, want Unknown sentinel", got)
	}
}

func TestCacheConfigPacking(t *testing.T) {
	got := CacheConfig(cacheLL, opWrite, resultAccess)
	want := uint64(cacheLL) | uint64(opWrite)<<8 | uint64(resultAccess)<<16
	if got != want {
		t.Errorf("CacheConfig() = %#x, want %#x", got, want)
	}
}
