// Package vcf contains a streaming parser for the text Variant Call Format.
// See https://samtools.github.io/hts-specs/VCFv4.2.pdf.  A VCF file consists
// of "##" meta lines, a single "#CHROM" column-header line naming the sample
// columns, and one tab-separated data line per variant.  This package reads
// the fixed fields and the raw per-sample genotype strings; it performs no
// genotype interpretation and no normalization of the variant itself.
package vcf

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// 0-based indexes of the fixed VCF columns.
const (
	chromIdx  = 0
	posIdx    = 1
	idIdx     = 2
	refIdx    = 3
	altIdx    = 4
	qualIdx   = 5
	filterIdx = 6
	infoIdx   = 7
	formatIdx = 8
	// SampleIdx is the index of the first sample column.
	SampleIdx = 9
)

var (
	// ErrNoHeader is returned when the input ends without a #CHROM line.
	ErrNoHeader = errors.New("no #CHROM header line")
)

// Record is one VCF data line.  Genotypes holds the raw colon-delimited
// per-sample fields, aligned positionally with Scanner.Samples().
type Record struct {
	Chrom     string
	Pos       string
	ID        string
	Ref       string
	Alt       string
	Genotypes []string
}

// Scanner provides a convenient interface for reading VCF data lines.  The
// Scan method reads the next variant into a caller-provided Record, returning
// a boolean indicating whether the read succeeded.  Scanners are not
// threadsafe.
//
// Scanner validates structure only: the #CHROM line must be present before
// any data line, and every data line must have exactly as many columns as the
// #CHROM line declares.  Field contents (including POS) are passed through
// verbatim.
type Scanner struct {
	b       *bufio.Scanner
	samples []string
	nCols   int
	line    int
	err     error
}

// maxLineBytes bounds a single VCF line.  Note that bufio.Scanner does not
// auto-resize past its buffer cap, and biobank-scale cohorts routinely
// produce data lines tens of megabytes long, so the default 64KiB cap is far
// too small here.
const maxLineBytes = 1 << 28

// NewScanner constructs a Scanner reading uncompressed VCF text from r,
// consuming meta lines through the #CHROM header before returning.  It
// returns ErrNoHeader if the input ends first.
func NewScanner(r io.Reader) (*Scanner, error) {
	b := bufio.NewScanner(r)
	b.Buffer(make([]byte, 0, 1<<16), maxLineBytes)
	s := &Scanner{b: b}
	for b.Scan() {
		s.line++
		row := chomp(b.Text())
		if row == "" || strings.HasPrefix(row, "##") {
			continue
		}
		if strings.HasPrefix(row, "#CHROM") {
			cols := strings.Split(row, "\t")
			if len(cols) < formatIdx {
				return nil, fmt.Errorf("vcf.NewScanner: line %d: #CHROM line has %d columns, expected at least %d", s.line, len(cols), formatIdx)
			}
			s.nCols = len(cols)
			if len(cols) > SampleIdx {
				s.samples = cols[SampleIdx:]
			}
			return s, nil
		}
		if row[0] == '#' {
			continue
		}
		return nil, fmt.Errorf("vcf.NewScanner: line %d: data line before #CHROM header", s.line)
	}
	if err := b.Err(); err != nil {
		return nil, err
	}
	return nil, ErrNoHeader
}

// Samples returns the raw sample column names from the #CHROM line, in
// column order.  The slice is empty for a sites-only VCF.
func (s *Scanner) Samples() []string { return s.samples }

// Line returns the 1-based line number of the most recently read line,
// for error reporting.
func (s *Scanner) Line() int { return s.line }

// Scan reads the next data line into rec.  It returns false at end of input
// or on error; check Err once Scan returns false.
func (s *Scanner) Scan(rec *Record) bool {
	if s.err != nil {
		return false
	}
	for s.b.Scan() {
		s.line++
		row := chomp(s.b.Text())
		if row == "" || row[0] == '#' {
			continue
		}
		fields := strings.Split(row, "\t")
		if len(fields) != s.nCols {
			s.err = fmt.Errorf("vcf.Scan: line %d has %d columns, #CHROM line declares %d", s.line, len(fields), s.nCols)
			return false
		}
		rec.Chrom = fields[chromIdx]
		rec.Pos = fields[posIdx]
		rec.ID = fields[idIdx]
		rec.Ref = fields[refIdx]
		rec.Alt = fields[altIdx]
		if len(fields) > SampleIdx {
			rec.Genotypes = fields[SampleIdx:]
		} else {
			rec.Genotypes = nil
		}
		return true
	}
	s.err = s.b.Err()
	return false
}

// Err returns the first error encountered while scanning, if any.  End of
// input is not an error.
func (s *Scanner) Err() error { return s.err }

// chomp removes a trailing carriage return; bufio.Scanner already strips the
// newline, but CRLF-terminated VCFs exist in the wild.
func chomp(row string) string {
	if n := len(row); n > 0 && row[n-1] == '\r' {
		return row[:n-1]
	}
	return row
}
