// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/afero"
)

// FS is the filesystem ParseFile reads from. It defaults to the real OS
// filesystem but can be swapped for an in-memory afero.Fs in tests.
var FS afero.Fs = afero.NewOsFs()

// ParseFile loads counter configuration from a CSV file: one row per
// counter, columns label,class,event[,domain]. A leading row whose first
// column is "label" (case-insensitive) is treated as a header and
// skipped. Domain defaults to "ukh" (DomainAll) when the column is
// absent or blank.
func ParseFile(path string) ([]Entry, error) {
	f, err := FS.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: opening counter file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	var entries []Entry
	first := true
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("config: reading counter file %s: %w", path, err)
		}
		if len(record) == 0 {
			continue
		}
		if first {
			first = false
			if strings.EqualFold(strings.TrimSpace(record[0]), "label") {
				continue
			}
		}
		if len(record) < 3 {
			return nil, fmt.Errorf("config: counter file %s: row %v has fewer than 3 columns", path, record)
		}
		domainToken := ""
		if len(record) >= 4 {
			domainToken = strings.TrimSpace(record[3])
		}
		domain, err := parseDomain(domainToken)
		if err != nil {
			return nil, fmt.Errorf("config: counter file %s: %w", path, err)
		}
		entries = append(entries, Entry{
			Label:  strings.TrimSpace(record[0]),
			Class:  strings.TrimSpace(record[1]),
			Event:  strings.TrimSpace(record[2]),
			Domain: domain,
		})
	}
	return entries, nil
}
