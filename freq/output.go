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
	"context"
	"fmt"
	"os"
	"runtime"
	"strconv"

	"github.com/apache/arrow/go/v14/arrow"
	"github.com/apache/arrow/go/v14/arrow/array"
	"github.com/apache/arrow/go/v14/arrow/ipc"
	"github.com/apache/arrow/go/v14/arrow/memory"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/tsv"
	"github.com/grailbio/hts/bgzf"
	"github.com/grailbio/vcffreq/encoding/vcf"
)

// naToken is written in place of a frequency whenever a group has zero
// called alleles at a variant.
const naToken = "NA"

// freqPrec is the number of significant digits in a frequency cell.
const freqPrec = 6

// rowWriter receives one accumulated row per variant, in input order.
// alt[i] and called[i] are the alternate-allele and called-allele tallies
// for column universe entry i.
type rowWriter interface {
	WriteRow(rec *vcf.Record, alt, called []uint32) error
	Close() error
}

func newRowWriter(ctx context.Context, path, format string, parallelism int, cols []GroupCol) (rowWriter, error) {
	switch format {
	case "tsv", "tsv-bgz":
		return newTSVWriter(ctx, path, format == "tsv-bgz", parallelism, cols)
	case "arrow":
		return newArrowWriter(path, cols)
	}
	return nil, fmt.Errorf("freq.newRowWriter: unrecognized output format %q", format)
}

type tsvWriter struct {
	ctx  context.Context
	dst  file.File
	bgzw *bgzf.Writer
	w    *tsv.Writer
}

func newTSVWriter(ctx context.Context, path string, bgzip bool, parallelism int, cols []GroupCol) (tw *tsvWriter, err error) {
	tw = &tsvWriter{ctx: ctx}
	if tw.dst, err = file.Create(ctx, path); err != nil {
		return nil, err
	}
	if bgzip {
		if parallelism == 0 {
			parallelism = runtime.NumCPU()
		}
		tw.bgzw = bgzf.NewWriter(tw.dst.Writer(ctx), parallelism)
		tw.w = tsv.NewWriter(tw.bgzw)
	} else {
		tw.w = tsv.NewWriter(tw.dst.Writer(ctx))
	}
	tw.w.WriteString("Chr\tPosition\trsID\tRef\tAlt")
	for _, c := range cols {
		tw.w.WriteString(c.Scheme + "_" + c.Group + "_freq")
		tw.w.WriteString(c.Scheme + "_" + c.Group + "_count")
	}
	if err = tw.w.EndLine(); err != nil {
		return nil, err
	}
	return tw, nil
}

func (tw *tsvWriter) WriteRow(rec *vcf.Record, alt, called []uint32) error {
	// The first five VCF fields pass through byte-for-byte; POS in
	// particular is not reparsed.
	tw.w.WriteString(rec.Chrom)
	tw.w.WriteString(rec.Pos)
	tw.w.WriteString(rec.ID)
	tw.w.WriteString(rec.Ref)
	tw.w.WriteString(rec.Alt)
	for i := range alt {
		if called[i] == 0 {
			tw.w.WriteString(naToken)
		} else {
			tw.w.WriteFloat64(float64(alt[i])/float64(called[i]), 'g', freqPrec)
		}
		tw.w.WriteUint32(alt[i])
	}
	return tw.w.EndLine()
}

func (tw *tsvWriter) Close() (err error) {
	err = tw.w.Flush()
	if tw.bgzw != nil {
		if e := tw.bgzw.Close(); e != nil && err == nil {
			err = e
		}
	}
	if e := tw.dst.Close(tw.ctx); e != nil && err == nil {
		err = e
	}
	return
}

// arrowChunkRows is the number of rows buffered per Arrow record batch.
const arrowChunkRows = 4096

// arrowWriter emits the same table as an Arrow IPC file: utf8
// Chr/rsID/Ref/Alt, int64 Position, and a float64/int32 column pair per
// group, with undefined frequencies stored as nulls rather than an NA
// string.  Arrow's IPC FileWriter needs an io.WriteSeeker, so this format
// writes to the local filesystem only.
type arrowWriter struct {
	f      *os.File
	schema *arrow.Schema
	w      *ipc.FileWriter
	pool   *memory.GoAllocator

	chrB, idB, refB, altB *array.StringBuilder
	posB                  *array.Int64Builder
	freqB                 []*array.Float64Builder
	countB                []*array.Int32Builder
	rows                  int
}

func newArrowWriter(path string, cols []GroupCol) (*arrowWriter, error) {
	fields := []arrow.Field{
		{Name: "Chr", Type: arrow.BinaryTypes.String},
		{Name: "Position", Type: arrow.PrimitiveTypes.Int64},
		{Name: "rsID", Type: arrow.BinaryTypes.String},
		{Name: "Ref", Type: arrow.BinaryTypes.String},
		{Name: "Alt", Type: arrow.BinaryTypes.String},
	}
	for _, c := range cols {
		fields = append(fields,
			arrow.Field{Name: c.Scheme + "_" + c.Group + "_freq", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
			arrow.Field{Name: c.Scheme + "_" + c.Group + "_count", Type: arrow.PrimitiveTypes.Int32})
	}
	aw := &arrowWriter{
		schema: arrow.NewSchema(fields, nil),
		pool:   memory.NewGoAllocator(),
	}
	var err error
	if aw.f, err = os.Create(path); err != nil {
		return nil, err
	}
	if aw.w, err = ipc.NewFileWriter(aw.f, ipc.WithSchema(aw.schema)); err != nil {
		return nil, err
	}
	aw.chrB = array.NewStringBuilder(aw.pool)
	aw.posB = array.NewInt64Builder(aw.pool)
	aw.idB = array.NewStringBuilder(aw.pool)
	aw.refB = array.NewStringBuilder(aw.pool)
	aw.altB = array.NewStringBuilder(aw.pool)
	aw.freqB = make([]*array.Float64Builder, len(cols))
	aw.countB = make([]*array.Int32Builder, len(cols))
	for i := range cols {
		aw.freqB[i] = array.NewFloat64Builder(aw.pool)
		aw.countB[i] = array.NewInt32Builder(aw.pool)
	}
	return aw, nil
}

func (aw *arrowWriter) WriteRow(rec *vcf.Record, alt, called []uint32) error {
	pos, err := strconv.ParseInt(rec.Pos, 10, 64)
	if err != nil {
		return fmt.Errorf("freq: non-numeric POS %q at %s (required by -format arrow)", rec.Pos, rec.Chrom)
	}
	aw.chrB.Append(rec.Chrom)
	aw.posB.Append(pos)
	aw.idB.Append(rec.ID)
	aw.refB.Append(rec.Ref)
	aw.altB.Append(rec.Alt)
	for i := range alt {
		if called[i] == 0 {
			aw.freqB[i].AppendNull()
		} else {
			aw.freqB[i].Append(float64(alt[i]) / float64(called[i]))
		}
		aw.countB[i].Append(int32(alt[i]))
	}
	aw.rows++
	if aw.rows == arrowChunkRows {
		return aw.writeChunk()
	}
	return nil
}

func (aw *arrowWriter) writeChunk() error {
	// Builder.NewArray drains and resets the builder.
	cols := make([]arrow.Array, 0, len(aw.schema.Fields()))
	cols = append(cols, aw.chrB.NewArray(), aw.posB.NewArray(), aw.idB.NewArray(), aw.refB.NewArray(), aw.altB.NewArray())
	for i := range aw.freqB {
		cols = append(cols, aw.freqB[i].NewArray(), aw.countB[i].NewArray())
	}
	record := array.NewRecord(aw.schema, cols, int64(aw.rows))
	defer record.Release()
	aw.rows = 0
	return aw.w.Write(record)
}

func (aw *arrowWriter) Close() (err error) {
	if aw.rows > 0 {
		err = aw.writeChunk()
	}
	if e := aw.w.Close(); e != nil && err == nil {
		err = e
	}
	if e := aw.f.Close(); e != nil && err == nil {
		err = e
	}
	return
}
