// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package errdesc

import (
	"syscall"
	"testing"
)

func TestPerfKnownErrno(t *testing.T) {
	got := Perf(syscall.EACCES)
	if got == syscall.EACCES.Error() {
		t.Error("Perf(EACCES) should return the documented explanation, not errno.Error()")
	}
}

func TestPerfUnknownErrnoFallsBack(t *testing.T) {
	got := Perf(syscall.Errno(0))
	if got != syscall.Errno(0).Error() {
		t.Errorf("Perf(0) = %q, want fallback to errno.Error()", got)
	}
}

func TestIoctlKnownErrno(t *testing.T) {
	got := Ioctl(syscall.ENOTTY)
	if got == syscall.ENOTTY.Error() {
		t.Error("Ioctl(ENOTTY) should return the documented explanation, not errno.Error()")
	}
}

func TestIoctlUnknownErrnoFallsBack(t *testing.T) {
	got := Ioctl(syscall.Errno(0))
	if got != syscall.Errno(0).Error() {
		t.Errorf("Ioctl(0) = %q, want fallback to errno.Error()", got)
	}
}
