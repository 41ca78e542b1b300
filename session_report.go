// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kprof

import (
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

// Counter returns the raw value most recently read for label, after Stop
// has run. If label was registered more than once, Counter returns the
// first match in registration order.
func (s *Session) Counter(label string) (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, h := range s.handles {
		if h.label == label {
			return h.last, true
		}
	}
	return 0, false
}

// Duration returns the wall-clock time between Start and Stop, measured
// with a monotonic high-resolution clock. It is zero until both have
// run.
func (s *Session) Duration() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.stopped {
		return 0
	}
	return s.stopTime.Sub(s.startTime)
}

// Report assembles the session's final counter values, in registration
// order, with a trailing Wall-time entry. If correctOverhead is true,
// Report first opens a throwaway session with an identical counter set,
// measures an empty region with it, and subtracts that measurement from
// the real one before returning — counter values wrap modulo 2^64 if the
// overhead sample happens to exceed the real one, matching the kernel's
// own counter wraparound.
func (s *Session) Report(correctOverhead bool) (Report, error) {
	s.mu.Lock()
	if !s.stopped {
		s.mu.Unlock()
		return Report{}, fmt.Errorf("kprof: Report called before Stop")
	}
	entries := make([]ReportEntry, len(s.handles))
	for i, h := range s.handles {
		entries[i] = ReportEntry{Label: h.label, Value: h.last}
	}
	duration := s.stopTime.Sub(s.startTime)
	s.mu.Unlock()

	if correctOverhead {
		overhead, err := s.measureOverhead()
		if err != nil {
			return Report{}, err
		}
		for i := range entries {
			if i < len(overhead) {
				entries[i].Value -= overhead[i]
			}
		}
	}

	entries = append(entries, ReportEntry{Label: WallTimeLabel, Value: uint64(duration.Nanoseconds())})
	return Report{Entries: entries, Duration: duration}, nil
}

// measureOverhead opens a scratch session mirroring the receiver's
// counter set, runs an empty Start/Stop pair through it, and returns the
// per-counter values observed — the cost of Start and Stop themselves,
// attributable to nothing the caller measured.
func (s *Session) measureOverhead() ([]uint64, error) {
	s.mu.Lock()
	specs := make([]struct {
		label  string
		class  EventClass
		config uint64
		domain Domain
	}, len(s.handles))
	for i, h := range s.handles {
		specs[i] = struct {
			label  string
			class  EventClass
			config uint64
			domain Domain
		}{h.label, h.class, h.config, h.domain}
	}
	s.mu.Unlock()

	scratch := NewSession()
	defer scratch.Destroy()
	leaderSlot := -1
	for _, sp := range specs {
		if err := scratch.Register(sp.label, &leaderSlot, sp.class, sp.config, sp.domain); err != nil {
			// A counter that registered for the real session but fails
			// here (e.g. transient PMU contention) just measures as
			// zero overhead rather than aborting Report.
			continue
		}
	}
	if err := scratch.Start(); err != nil {
		return nil, err
	}
	if err := scratch.Stop(); err != nil {
		return nil, err
	}

	values := make([]uint64, len(specs))
	scratch.mu.Lock()
	defer scratch.mu.Unlock()
	for i, sp := range specs {
		for _, h := range scratch.handles {
			if h.label == sp.label {
				values[i] = h.last
				break
			}
		}
	}
	return values, nil
}

// Destroy closes every fd opened by Register. Fds are deduplicated before
// closing: a session that grew a second group via the retry-as-leader
// policy still closes each fd exactly once.
func (s *Session) Destroy() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	closed := make(map[int]struct{}, len(s.handles))
	var firstErr error
	for _, h := range s.handles {
		if _, ok := closed[h.fd]; ok {
			continue
		}
		closed[h.fd] = struct{}{}
		if err := unix.Close(h.fd); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	s.handles = nil
	return firstErr
}
