// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kprof

import (
	"fmt"
	"syscall"

	"github.com/kprof/kprof/errdesc"
)

// ConfigurationError reports an unknown class or event token encountered
// while loading counter configuration. It is always recovered locally:
// the offending entry is logged and skipped.
type ConfigurationError struct {
	Label string
	Field string // "class" or "event"
	Token string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("kprof: config entry %q: unknown %s token %q", e.Label, e.Field, e.Token)
}

// CounterOpenRejected reports that perf_event_open(2) rejected a counter
// even after the retry-as-leader policy ran. It is always recovered
// locally: the counter is dropped and the session continues without it.
type CounterOpenRejected struct {
	Label string
	Errno syscall.Errno
}

func (e *CounterOpenRejected) Error() string {
	return fmt.Sprintf("kprof: counter %q rejected: %s (%s)", e.Label, e.Errno, errdesc.Perf(e.Errno))
}

func (e *CounterOpenRejected) Unwrap() error { return e.Errno }

// CounterOpenAllFailed reports that every configured counter was dropped,
// leaving the session with nothing to measure. Construction fails.
type CounterOpenAllFailed struct {
	Attempted int
}

func (e *CounterOpenAllFailed) Error() string {
	return fmt.Sprintf("kprof: all %d configured counters failed to open", e.Attempted)
}

// IoctlFailed reports a failing PERF_EVENT_IOC_* call. It is fatal for the
// Start, Stop, or register call in progress.
type IoctlFailed struct {
	Op    string
	Errno syscall.Errno
}

func (e *IoctlFailed) Error() string {
	return fmt.Sprintf("kprof: ioctl %s failed: %s (%s)", e.Op, e.Errno, errdesc.Ioctl(e.Errno))
}

func (e *IoctlFailed) Unwrap() error { return e.Errno }

// ReadFailed reports a short or error return from a group read. It is
// fatal for the Stop call in progress but does not poison the session.
type ReadFailed struct {
	LeaderFd int
	Err      error
}

func (e *ReadFailed) Error() string {
	return fmt.Sprintf("kprof: group read on leader fd %d failed: %v", e.LeaderFd, e.Err)
}

func (e *ReadFailed) Unwrap() error { return e.Err }
