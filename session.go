// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kprof

import (
	"fmt"
	"runtime"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"github.com/kprof/kprof/config"
	"github.com/kprof/kprof/internal/klog"
	"github.com/kprof/kprof/registry"
)

// Session is a group of perf_event_open(2) counters opened together and
// read together around one measured region. A Session is not safe for
// concurrent use: Register, Start, Stop, and Report must all run on the
// same goroutine, matching the thread-affinity of the fds it holds open
// (see buildAttr and openCounter).
type Session struct {
	reg *registry.Registry

	mu      sync.Mutex // guards against reentrant use from a second goroutine
	handles []*handle

	started bool
	stopped bool

	startTime, stopTime time.Time // set by Start/Stop, kept monotonic via time.Time.Sub
}

// NewSession creates an empty session. Use Register to add counters, then
// reuse the common registry-backed constructors below to seed it from
// configuration instead of calling Register by hand.
func NewSession() *Session {
	return &Session{reg: registry.New()}
}

// NewSessionFromConfig builds a session from an inline counter list, in
// the KPROF_COUNTER_CONF dialect (see package config). Each entry that
// fails to register is logged and skipped; NewSessionFromConfig only
// fails if every entry does.
func NewSessionFromConfig(spec string) (*Session, error) {
	entries, err := config.ParseInline(spec)
	if err != nil {
		return nil, err
	}
	return newSessionFromEntries(entries, false)
}

// NewSessionFromFile builds a session from a CSV counter file, in the
// KPROF_COUNTER_FILE dialect (see package config).
func NewSessionFromFile(path string) (*Session, error) {
	entries, err := config.ParseFile(path)
	if err != nil {
		return nil, err
	}
	return newSessionFromEntries(entries, false)
}

// NewSessionFromDefault builds a session from the built-in default counter
// set (package config's Default), used when neither KPROF_COUNTER_FILE nor
// KPROF_COUNTER_CONF is set. Per spec, the default set uses one leader per
// counter, so each entry registers with its own fresh leader slot instead
// of sharing one group.
func NewSessionFromDefault() (*Session, error) {
	return newSessionFromEntries(config.Default(), true)
}

// newSessionFromEntries registers every entry against the session. When
// perCounterLeader is false, all entries share a single leader slot and
// so form one group (falling back to additional groups only through the
// retry-as-leader policy). When true, every entry gets its own fresh
// slot and so becomes its own group leader — the built-in default set's
// policy, trading atomic group consistency for never failing to schedule
// any one counter.
func newSessionFromEntries(entries []config.Entry, perCounterLeader bool) (*Session, error) {
	s := NewSession()
	sharedSlot := -1
	registered := 0
	for _, e := range entries {
		class, ok := s.reg.LookupClass(e.Class)
		if !ok {
			klog.L().Warnf("%v", &ConfigurationError{Label: e.Label, Field: "class", Token: e.Class})
			continue
		}
		eventConfig, ok := s.reg.LookupEvent(e.Event)
		if !ok {
			klog.L().Warnf("%v", &ConfigurationError{Label: e.Label, Field: "event", Token: e.Event})
			continue
		}
		slot := &sharedSlot
		if perCounterLeader {
			fresh := -1
			slot = &fresh
		}
		if err := s.Register(e.Label, slot, EventClass(class), eventConfig, Domain(e.Domain)); err != nil {
			klog.L().Warnf("%v", err)
			continue
		}
		registered++
	}
	if registered == 0 {
		return nil, &CounterOpenAllFailed{Attempted: len(entries)}
	}
	return s, nil
}

// Register opens one counter and adds it to the session's group.
//
// leaderSlot is an in/out handle on "the current group's leader fd": pass
// a pointer to -1 for the first counter in a new group, then pass that
// same pointer for every subsequent counter meant to join that group.
// On success, Register updates *leaderSlot to the new counter's fd if
// and only if the counter became a leader (either because *leaderSlot
// was -1, or because the retry-as-leader policy below fired); followers
// leave the slot unchanged.
//
// If the kernel rejects the open with EINVAL or ENOSPC — commonly
// because the current group leader is already full or incompatible with
// the new event — Register retries once as a fresh group leader before
// giving up. A rejection that survives the retry is recovered locally:
// it is logged via internal/klog and Register returns the same error so
// callers that care (like the config-driven constructors) can count
// failures, but the session itself is left usable.
func (s *Session) Register(label string, leaderSlot *int, class EventClass, cfg uint64, domain Domain) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return fmt.Errorf("kprof: Register called after Start")
	}
	if leaderSlot == nil {
		return fmt.Errorf("kprof: Register called with a nil leaderSlot")
	}

	attr := buildAttr(class, cfg, domain)

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	groupFd := *leaderSlot
	becameLeader := groupFd == -1

	fd, err := openCounter(&attr, groupFd)
	if err != nil && !becameLeader {
		errno, _ := err.(syscall.Errno)
		if errno == syscall.EINVAL || errno == syscall.ENOSPC {
			klog.L().Warnf("%v", &CounterOpenRejected{Label: label, Errno: errno})
			fd, err = openCounter(&attr, -1)
			becameLeader = true
		}
	}
	if err != nil {
		errno, _ := err.(syscall.Errno)
		rejected := &CounterOpenRejected{Label: label, Errno: errno}
		klog.L().Warnf("%v", rejected)
		return rejected
	}

	id, err := counterID(fd)
	if err != nil {
		unix.Close(fd)
		errno, _ := err.(syscall.Errno)
		return &IoctlFailed{Op: "PERF_EVENT_IOC_ID", Errno: errno}
	}

	leaderFd := groupFd
	if becameLeader {
		leaderFd = fd
		*leaderSlot = fd
	}

	s.handles = append(s.handles, &handle{
		label:    label,
		class:    class,
		domain:   domain,
		config:   cfg,
		fd:       fd,
		isLeader: becameLeader,
		leaderFd: leaderFd,
		kernelID: id,
	})
	return nil
}
