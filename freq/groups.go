// Copyright 2020 Grail Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package freq

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/klauspost/compress/gzip"
)

// GroupCol is one (scheme, group) output column pair.
type GroupCol struct {
	Scheme string
	Group  string
}

// Grouping is the immutable sample-to-group assignment loaded from a
// grouping table.  Cols is the output column universe: scheme-major in
// header order, groups within a scheme in order of first appearance.  All
// downstream stages index into Cols; no map iteration order leaks into the
// output.
type Grouping struct {
	// Schemes are the grouping-scheme names, i.e. the header columns after
	// the sample-ID column, in file order.
	Schemes []string
	// Cols is the ordered (scheme, group) column universe.
	Cols []GroupCol
	// members maps a sample key to the indices into Cols of the groups it
	// belongs to, one per scheme the sample is grouped under.
	members map[string][]int
}

// Columns returns the Cols indices the given sample key belongs to, and
// whether the key appears in the grouping table at all.
func (g *Grouping) Columns(sampleKey string) ([]int, bool) {
	cols, ok := g.members[sampleKey]
	return cols, ok
}

// NumSamples returns the number of samples in the grouping table.
func (g *Grouping) NumSamples() int { return len(g.members) }

// ReadGroups parses a tab-separated grouping table.  The mandatory header
// row is sampleID followed by one column per grouping scheme; every
// subsequent row assigns one sample a group label under each scheme.  Cells
// are whitespace-trimmed but otherwise taken verbatim.  An empty group cell
// leaves the sample ungrouped under that scheme.  A duplicate sample ID or a
// row whose column count differs from the header's is an error.
func ReadGroups(reader io.Reader) (grouping *Grouping, err error) {
	scanner := bufio.NewScanner(reader)
	if !scanner.Scan() {
		if err = scanner.Err(); err != nil {
			return
		}
		return nil, fmt.Errorf("freq.ReadGroups: empty grouping file, header row required")
	}
	header := splitTrim(scanner.Text())
	if len(header) < 2 {
		return nil, fmt.Errorf("freq.ReadGroups: header row has %d columns, need a sample-ID column plus at least one scheme", len(header))
	}
	schemes := header[1:]

	// Group labels are gathered per scheme first, then flattened into the
	// scheme-major column universe once the file has been read.
	groupIdx := make([]map[string]int, len(schemes))
	groupOrder := make([][]string, len(schemes))
	for i := range schemes {
		groupIdx[i] = make(map[string]int)
	}
	// Per sample: for each scheme, an index into groupOrder[scheme], or -1.
	rows := make(map[string][]int)

	lineIdx := 1
	for scanner.Scan() {
		lineIdx++
		if strings.TrimSpace(scanner.Text()) == "" {
			continue
		}
		fields := splitTrim(scanner.Text())
		if len(fields) != len(header) {
			return nil, fmt.Errorf("freq.ReadGroups: line %d has %d columns, header has %d", lineIdx, len(fields), len(header))
		}
		sampleID := fields[0]
		if sampleID == "" {
			return nil, fmt.Errorf("freq.ReadGroups: line %d has an empty sample ID", lineIdx)
		}
		if _, dup := rows[sampleID]; dup {
			return nil, fmt.Errorf("freq.ReadGroups: duplicate sample ID %q on line %d", sampleID, lineIdx)
		}
		local := make([]int, len(schemes))
		for si, label := range fields[1:] {
			if label == "" {
				local[si] = -1
				continue
			}
			gi, seen := groupIdx[si][label]
			if !seen {
				gi = len(groupOrder[si])
				groupIdx[si][label] = gi
				groupOrder[si] = append(groupOrder[si], label)
			}
			local[si] = gi
		}
		rows[sampleID] = local
	}
	if err = scanner.Err(); err != nil {
		return
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("freq.ReadGroups: grouping file has a header but no samples")
	}

	grouping = &Grouping{
		Schemes: schemes,
		members: make(map[string][]int, len(rows)),
	}
	offsets := make([]int, len(schemes))
	for si, scheme := range schemes {
		offsets[si] = len(grouping.Cols)
		for _, label := range groupOrder[si] {
			grouping.Cols = append(grouping.Cols, GroupCol{Scheme: scheme, Group: label})
		}
	}
	for sampleID, local := range rows {
		cols := make([]int, 0, len(schemes))
		for si, gi := range local {
			if gi >= 0 {
				cols = append(cols, offsets[si]+gi)
			}
		}
		grouping.members[sampleID] = cols
	}
	return
}

// LoadGroups is a wrapper for ReadGroups that takes a path instead of an
// io.Reader, decompressing by extension for gzipped tables.
func LoadGroups(ctx context.Context, path string) (grouping *Grouping, err error) {
	var infile file.File
	if infile, err = file.Open(ctx, path); err != nil {
		return
	}
	defer func() {
		if cerr := infile.Close(ctx); cerr != nil && err == nil {
			err = cerr
		}
	}()
	reader := io.Reader(infile.Reader(ctx))
	switch fileio.DetermineType(path) {
	case fileio.Gzip:
		var zr *gzip.Reader
		if zr, err = gzip.NewReader(reader); err != nil {
			return
		}
		defer func() {
			if cerr := zr.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
		reader = zr
	}
	if grouping, err = ReadGroups(reader); err != nil {
		return nil, fmt.Errorf("%v (while reading %s)", err, path)
	}
	return
}

// splitTrim splits a line on tabs and trims surrounding whitespace from each
// cell, including any trailing carriage return.
func splitTrim(row string) []string {
	fields := strings.Split(row, "\t")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return fields
}
