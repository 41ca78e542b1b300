// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kprof

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// handle is one registered counter: an open perf_event fd plus the bits of
// bookkeeping a group read needs to route a raw kernel value back to the
// caller that registered it.
type handle struct {
	label  string
	class  EventClass
	domain Domain
	config uint64

	fd       int
	isLeader bool
	leaderFd int    // == fd when isLeader
	kernelID uint64 // from PERF_EVENT_IOC_ID, used to match group-read entries

	last uint64 // most recent value read out of the group, pre-overhead-correction
}

// buildAttr constructs the perf_event_attr for one registration. Every
// counter in a session is opened disabled, with inherit on and
// inherit_stat/pinned left clear, group membership left to the caller
// (group_fd passed to PerfEventOpen), and asks the kernel to tag each
// read with its unique id so group reads can be demultiplexed without
// relying on slot order.
func buildAttr(class EventClass, config uint64, domain Domain) unix.PerfEventAttr {
	var attr unix.PerfEventAttr
	attr.Size = uint32(unsafe.Sizeof(attr))
	attr.Type = uint32(class)
	attr.Config = config
	attr.Read_format = unix.PERF_FORMAT_ID | unix.PERF_FORMAT_GROUP
	attr.Bits = unix.PerfBitDisabled | unix.PerfBitInherit
	if domain&DomainUser == 0 {
		attr.Bits |= unix.PerfBitExcludeUser
	}
	if domain&DomainKernel == 0 {
		attr.Bits |= unix.PerfBitExcludeKernel
	}
	if domain&DomainHypervisor == 0 {
		attr.Bits |= unix.PerfBitExcludeHv
	}
	return attr
}

// openCounter calls perf_event_open(2) for the calling thread (pid 0, the
// current CPU wildcard), joining groupFd if it is >= 0 or starting a new
// group leader if groupFd is -1. Callers must hold the OS thread locked for
// the duration of the call, matching pid == 0's thread-affinity semantics.
func openCounter(attr *unix.PerfEventAttr, groupFd int) (int, error) {
	return unix.PerfEventOpen(attr, 0, -1, groupFd, unix.PERF_FLAG_FD_CLOEXEC)
}

// counterID retrieves the kernel-assigned id used to demultiplex group
// reads, via PERF_EVENT_IOC_ID.
func counterID(fd int) (uint64, error) {
	id, err := unix.IoctlGetInt(fd, unix.PERF_EVENT_IOC_ID)
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}
