// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package klog is a thin wrapper around logrus so that kprof's recovered
// errors (ConfigurationError, CounterOpenRejected, and the assorted
// read/ioctl warnings logged along the way) go through one swappable
// logger instead of being wired to logrus at every call site.
package klog

import "github.com/sirupsen/logrus"

// Logger is the subset of *logrus.Logger that kprof calls into.
type Logger interface {
	WithField(key string, value interface{}) *logrus.Entry
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

var std Logger = logrus.StandardLogger()

// SetLogger replaces the package-wide logger, e.g. so a consuming binary
// can route kprof's log output through its own configured logrus instance.
func SetLogger(l Logger) { std = l }

// L returns the current package-wide logger.
func L() Logger { return std }
