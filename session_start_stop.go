// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kprof

import (
	"encoding/binary"
	"fmt"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"github.com/kprof/kprof/internal/klog"
)

// clockNow returns a time.Time whose monotonic reading is intact, used
// for startTime/stopTime so Duration reflects a monotonic high-
// resolution clock even across a wall-clock step (e.g. an NTP
// correction), per the duration-monotonicity invariant.
func clockNow() time.Time { return time.Now() }

// leaderFds returns the distinct group-leader fds in the order their
// groups were first opened, one per group. Counters registered against
// one shared leader slot form a single group unless the retry-as-leader
// policy in Register splits it; NewSessionFromDefault gives every counter
// its own group.
func (s *Session) leaderFds() []int {
	var leaders []int
	seen := make(map[int]bool)
	for _, h := range s.handles {
		if !seen[h.leaderFd] {
			seen[h.leaderFd] = true
			leaders = append(leaders, h.leaderFd)
		}
	}
	return leaders
}

// Start resets every counter to zero and enables the whole group. Counters
// in different groups (see Register's retry-as-leader policy) are reset
// and enabled group-by-group; the kernel does not offer a single ioctl
// that spans fds from unrelated groups.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return fmt.Errorf("kprof: Start called twice")
	}
	for _, fd := range s.leaderFds() {
		if err := unix.IoctlSetInt(fd, unix.PERF_EVENT_IOC_RESET, unix.PERF_IOC_FLAG_GROUP); err != nil {
			errno, _ := err.(syscall.Errno)
			return &IoctlFailed{Op: "PERF_EVENT_IOC_RESET", Errno: errno}
		}
	}
	s.startTime = clockNow()
	for _, fd := range s.leaderFds() {
		if err := unix.IoctlSetInt(fd, unix.PERF_EVENT_IOC_ENABLE, unix.PERF_IOC_FLAG_GROUP); err != nil {
			errno, _ := err.(syscall.Errno)
			return &IoctlFailed{Op: "PERF_EVENT_IOC_ENABLE", Errno: errno}
		}
	}
	s.started = true
	return nil
}

// Stop disables the group and performs the group read(2) that pulls every
// counter's final value out of the kernel in one call per group.
func (s *Session) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return fmt.Errorf("kprof: Stop called before Start")
	}
	if s.stopped {
		return fmt.Errorf("kprof: Stop called twice")
	}

	for _, fd := range s.leaderFds() {
		if err := unix.IoctlSetInt(fd, unix.PERF_EVENT_IOC_DISABLE, unix.PERF_IOC_FLAG_GROUP); err != nil {
			errno, _ := err.(syscall.Errno)
			return &IoctlFailed{Op: "PERF_EVENT_IOC_DISABLE", Errno: errno}
		}
	}
	s.stopTime = clockNow()

	for _, fd := range s.leaderFds() {
		values, err := readGroup(fd)
		if err != nil {
			return &ReadFailed{LeaderFd: fd, Err: err}
		}
		for _, h := range s.handles {
			if h.leaderFd != fd {
				continue
			}
			if v, ok := values[h.kernelID]; ok {
				h.last = v
			} else {
				klog.L().Warnf("kprof: counter %q (id %d) missing from group read on leader fd %d", h.label, h.kernelID, fd)
			}
		}
	}
	s.stopped = true
	return nil
}

// readGroup performs the PERF_FORMAT_ID|PERF_FORMAT_GROUP read and decodes
// its wire layout: a leading u64 count, followed by count pairs of
// (u64 value, u64 id), all native-endian.
func readGroup(leaderFd int) (map[uint64]uint64, error) {
	const maxCounters = 64
	buf := make([]byte, 8+maxCounters*16)
	n, err := syscall.Read(leaderFd, buf)
	if err != nil {
		return nil, err
	}
	if n < 8 {
		return nil, fmt.Errorf("kprof: group read returned %d bytes, want at least 8", n)
	}
	nr := binary.NativeEndian.Uint64(buf[0:8])
	want := 8 + int(nr)*16
	if n < want {
		return nil, fmt.Errorf("kprof: group read returned %d bytes, want %d for %d counters", n, want, nr)
	}
	out := make(map[uint64]uint64, nr)
	for i := uint64(0); i < nr; i++ {
		off := 8 + i*16
		value := binary.NativeEndian.Uint64(buf[off : off+8])
		id := binary.NativeEndian.Uint64(buf[off+8 : off+16])
		out[id] = value
	}
	return out, nil
}
