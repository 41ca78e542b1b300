// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package errdesc supplies human-readable descriptions for the errno
// values perf_event_open(2) and its associated ioctls are documented to
// return, for inclusion in wrapped errors.
package errdesc

import "syscall"

// Perf describes an errno as perf_event_open(2) documents it.
func Perf(errno syscall.Errno) string {
	switch errno {
	case syscall.E2BIG:
		return "the perf_event_attr size value is too small (smaller than " +
			"PERF_ATTR_SIZE_VER0), too big (larger than the page size), or " +
			"larger than the kernel supports and the extra bytes are not zero"
	case syscall.EACCES:
		return "the requested event requires CAP_PERFMON (since Linux 5.8) or " +
			"CAP_SYS_ADMIN permissions, or a more permissive perf_event_paranoid " +
			"setting"
	case syscall.EBADF:
		return "the group_fd file descriptor is not valid"
	case syscall.EBUSY:
		return "another event already has exclusive access to the PMU (since Linux 4.1)"
	case syscall.EFAULT:
		return "the attr pointer points at an invalid memory address"
	case syscall.EINTR:
		return "trying to mix perf and ftrace handling for a uprobe"
	case syscall.EINVAL:
		return "the specified event is invalid: sample_freq too high, cpu does " +
			"not exist, read_format/sample_type out of range, flags out of range, " +
			"exclusive/pinned set on a non-leader, reserved config bits set, the " +
			"generic event is unsupported, or there is no room to add the event"
	case syscall.EMFILE:
		return "the per-process limit on open file descriptors would be exceeded"
	case syscall.ENODEV:
		return "the event involves a feature not supported by the current CPU"
	case syscall.ENOENT:
		return "the type setting is not valid, or the generic event is unsupported"
	case syscall.ENOSPC:
		return "there is not enough room for the event in the group (returned as " +
			"EINVAL since Linux 3.3, except for breakpoint events)"
	case syscall.ENOSYS:
		return "PERF_SAMPLE_STACK_USER is set in sample_type and is not supported by hardware"
	case syscall.EOPNOTSUPP:
		return "an event requiring a specific hardware feature was requested but " +
			"there is no hardware support for it"
	case syscall.EOVERFLOW:
		return "PERF_SAMPLE_CALLCHAIN is requested and sample_max_stack exceeds " +
			"/proc/sys/kernel/perf_event_max_stack"
	case syscall.EPERM:
		return "an unsupported exclude_hv, exclude_idle, exclude_user, or " +
			"exclude_kernel setting is specified, or CAP_PERFMON/CAP_SYS_ADMIN is required"
	case syscall.ESRCH:
		return "attempting to attach to a process that does not exist"
	default:
		return errno.Error()
	}
}

// Ioctl describes an errno as the PERF_EVENT_IOC_* ioctls document it.
func Ioctl(errno syscall.Errno) string {
	switch errno {
	case syscall.EBADF:
		return "fd is not a valid file descriptor"
	case syscall.EFAULT:
		return "argp references an inaccessible memory area"
	case syscall.EINVAL:
		return "op or argp is not valid"
	case syscall.ENOTTY:
		return "fd is not associated with a character special device, or the " +
			"operation does not apply to the kind of object fd references"
	default:
		return errno.Error()
	}
}
