// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kprof

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/kprof/kprof/registry"
)

// hwTestsEnabled gates the scenarios in this file that must open a real
// perf_event_open(2) fd: they need CAP_PERFMON/CAP_SYS_ADMIN or a
// permissive perf_event_paranoid setting, neither of which a generic CI
// sandbox is guaranteed to have.
func hwTestsEnabled(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping hardware-dependent test in -short mode")
	}
	if os.Getenv("KPROF_RUN_HW_TESTS") != "1" {
		t.Skip("set KPROF_RUN_HW_TESTS=1 to run tests that open real perf_event counters")
	}
}

func TestEventClassString(t *testing.T) {
	assert.Equal(t, "PERF_TYPE_HARDWARE", ClassHardware.String())
	assert.Equal(t, "PERF_TYPE_SOFTWARE", ClassSoftware.String())
	assert.Equal(t, "PERF_TYPE_HW_CACHE", ClassHWCache.String())
	assert.Equal(t, "PERF_TYPE_RAW", ClassRaw.String())
	assert.Equal(t, "PERF_TYPE_UNKNOWN", EventClass(99).String())
}

func TestReportValueFirstMatchWins(t *testing.T) {
	r := Report{Entries: []ReportEntry{
		{Label: "cycles", Value: 10},
		{Label: "cycles", Value: 20},
		{Label: WallTimeLabel, Value: 5},
	}}
	v, ok := r.Value("cycles")
	require.True(t, ok)
	assert.EqualValues(t, 10, v)

	_, ok = r.Value("missing")
	assert.False(t, ok)
}

func TestNewSessionFromConfigAllUnknownFails(t *testing.T) {
	_, err := NewSessionFromConfig("bogus,Z:NOT_REAL")
	require.Error(t, err)
	var allFailed *CounterOpenAllFailed
	assert.ErrorAs(t, err, &allFailed)
}

func TestBuildAttrDomainBits(t *testing.T) {
	attr := buildAttr(ClassHardware, 0, DomainAll)
	assert.Equal(t, uint64(0), attr.Bits&(unix.PerfBitExcludeUser|unix.PerfBitExcludeKernel|unix.PerfBitExcludeHv))

	attr = buildAttr(ClassHardware, 0, DomainUser)
	assert.NotEqual(t, uint64(0), attr.Bits&unix.PerfBitExcludeKernel)
	assert.Equal(t, uint64(0), attr.Bits&unix.PerfBitExcludeUser)
}

func TestRegisterAfterStartRejected(t *testing.T) {
	s := NewSession()
	s.started = true
	slot := -1
	err := s.Register("x", &slot, ClassHardware, 0, DomainAll)
	assert.Error(t, err)
}

func TestStopBeforeStartRejected(t *testing.T) {
	s := NewSession()
	err := s.Stop()
	assert.Error(t, err)
}

func TestReportBeforeStopRejected(t *testing.T) {
	s := NewSession()
	_, err := s.Report(false)
	assert.Error(t, err)
}

func TestLeaderFdsDeduplicates(t *testing.T) {
	s := NewSession()
	s.handles = []*handle{
		{label: "a", leaderFd: 7},
		{label: "b", leaderFd: 7},
		{label: "c", leaderFd: 9},
	}
	assert.Equal(t, []int{7, 9}, s.leaderFds())
}

// The remaining scenarios exercise the real syscall path end to end and
// require a kernel that will actually grant perf_event_open(2).

func TestRegisterStartStopReport(t *testing.T) {
	hwTestsEnabled(t)

	reg := registry.New()
	s := NewSession()
	defer s.Destroy()

	config, ok := reg.LookupEvent("PERF_COUNT_HW_CPU_CYCLES")
	require.True(t, ok)
	slot := -1
	require.NoError(t, s.Register("cycles", &slot, ClassHardware, config, DomainUser))

	require.NoError(t, s.Start())
	sum := 0
	for i := 0; i < 1_000_000; i++ {
		sum += i
	}
	require.NoError(t, s.Stop())

	report, err := s.Report(false)
	require.NoError(t, err)
	_, ok = report.Value("cycles")
	assert.True(t, ok)
	_, ok = report.Value(WallTimeLabel)
	assert.True(t, ok)
	assert.Greater(t, s.Duration(), time.Duration(0))
	assert.NotZero(t, sum)
}

func TestRegisterGroupOfMultipleCounters(t *testing.T) {
	hwTestsEnabled(t)

	reg := registry.New()
	s := NewSession()
	defer s.Destroy()

	slot := -1
	for _, name := range []string{
		"PERF_COUNT_HW_CPU_CYCLES",
		"PERF_COUNT_HW_INSTRUCTIONS",
		"PERF_COUNT_SW_PAGE_FAULTS",
	} {
		config, ok := reg.LookupEvent(name)
		require.True(t, ok)
		class := ClassHardware
		if name == "PERF_COUNT_SW_PAGE_FAULTS" {
			class = ClassSoftware
		}
		require.NoError(t, s.Register(name, &slot, class, config, DomainUser))
	}

	require.NoError(t, s.Start())
	require.NoError(t, s.Stop())

	report, err := s.Report(true)
	require.NoError(t, err)
	assert.Len(t, report.Entries, 4) // 3 counters + Wall-time
}

func TestNewSessionFromDefault(t *testing.T) {
	hwTestsEnabled(t)

	s, err := NewSessionFromDefault()
	require.NoError(t, err)
	defer s.Destroy()

	require.NoError(t, s.Start())
	require.NoError(t, s.Stop())
	_, err = s.Report(false)
	require.NoError(t, err)
}
