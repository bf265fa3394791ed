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

// Package freq computes per-group alternate-allele frequencies from a VCF
// and a tab-separated sample grouping table.
//
// Problem:
// Given a VCF and an arbitrary assignment of its samples to group labels
// under one or more named grouping schemes, we want one output row per
// variant with, for every (scheme, group) pair, the number of alternate
// alleles called in that group and the frequency alt / called.
//
// Implementation strategy:
// The grouping table and the output column universe are built once, before
// any variant is read.  After the #CHROM line is seen, each VCF sample
// column is resolved to a grouping-table key and bound to the (usually
// small) list of output columns it feeds; that binding is the only
// per-sample state.  Variants then stream through one at a time: parse
// genotypes, add into two flat per-column tallies, emit a row, reset.  Peak
// memory is O(samples + columns) no matter how large the VCF is, and output
// order is input order by construction.
package freq

import (
	"context"
	"fmt"
	"strings"

	"github.com/grailbio/base/compress"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/vcffreq/encoding/vcf"
)

// Opts contains the commandline options.
type Opts struct {
	// UseFamilyID keys VCF samples into the grouping table by family ID
	// instead of individual ID.
	UseFamilyID bool
	// Format is the output format: "tsv", "tsv-bgz" or "arrow".
	Format string
	// Parallelism is the number of simultaneous bgzf compression threads
	// for -format tsv-bgz; 0 = runtime.NumCPU().  Variant processing
	// itself is strictly sequential.
	Parallelism int
}

var DefaultOpts = Opts{
	Format: "tsv",
}

// maxUnmappedExamples bounds the sample names quoted in the unmapped-sample
// log line.
const maxUnmappedExamples = 5

// Compute streams vcfPath once and writes the per-group frequency table to
// outPath.  All data errors (malformed grouping rows, short VCF lines,
// unparseable genotypes) abort with an error identifying the offending
// file, line and sample; samples present in the VCF but absent from the
// grouping table are the one soft condition, reported via the log and
// excluded from every tally.
func Compute(ctx context.Context, vcfPath, groupsPath, outPath string, opts *Opts) (err error) {
	grouping, err := LoadGroups(ctx, groupsPath)
	if err != nil {
		return err
	}

	var infile file.File
	if infile, err = file.Open(ctx, vcfPath); err != nil {
		return errors.E(err, "couldn't open VCF:", vcfPath)
	}
	defer func() {
		if e := infile.Close(ctx); e != nil && err == nil {
			err = e
		}
	}()
	// Gzipped input is detected from the stream contents, not the filename.
	reader, _ := compress.NewReader(infile.Reader(ctx))
	defer func() {
		if e := reader.Close(); e != nil && err == nil {
			err = e
		}
	}()

	scanner, err := vcf.NewScanner(reader)
	if err != nil {
		return errors.E(err, "couldn't parse VCF header:", vcfPath)
	}

	mode := IndividualID
	if opts.UseFamilyID {
		mode = FamilyID
	}
	samples := scanner.Samples()
	sampleCols := make([][]int, len(samples))
	var unmapped []string
	for i, raw := range samples {
		key, kerr := SampleKey(raw, mode)
		if kerr != nil {
			return kerr
		}
		cols, ok := grouping.Columns(key)
		if !ok {
			unmapped = append(unmapped, key)
			continue
		}
		sampleCols[i] = cols
	}
	if len(unmapped) > 0 {
		// Deliberately loud: every unmapped sample shrinks some group
		// denominators.
		examples := unmapped
		if len(examples) > maxUnmappedExamples {
			examples = examples[:maxUnmappedExamples]
		}
		log.Printf("freq.Compute: %d of %d VCF sample(s) absent from %s, excluded from all groups (%s)",
			len(unmapped), len(samples), groupsPath, strings.Join(examples, ", "))
	}

	w, err := newRowWriter(ctx, outPath, opts.Format, opts.Parallelism, grouping.Cols)
	if err != nil {
		return err
	}

	alt := make([]uint32, len(grouping.Cols))
	called := make([]uint32, len(grouping.Cols))
	var rec vcf.Record
	for scanner.Scan(&rec) {
		for i := range alt {
			alt[i] = 0
			called[i] = 0
		}
		for si, field := range rec.Genotypes {
			a, n, ok, gerr := CountAlt(field)
			if gerr != nil {
				return fmt.Errorf("freq.Compute: %s line %d, sample %s: %v", vcfPath, scanner.Line(), samples[si], gerr)
			}
			if !ok {
				continue
			}
			for _, col := range sampleCols[si] {
				alt[col] += uint32(a)
				called[col] += uint32(n)
			}
		}
		if err = w.WriteRow(&rec, alt, called); err != nil {
			return err
		}
	}
	if serr := scanner.Err(); serr != nil {
		return fmt.Errorf("freq.Compute: %s: %v", vcfPath, serr)
	}
	if err = w.Close(); err != nil {
		return err
	}
	log.Printf("freq.Compute: done, results written to %s", outPath)
	return nil
}
