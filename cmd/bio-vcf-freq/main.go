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
package main

// See doc.go for documentation

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/vcffreq/freq"
)

var (
	vcfPath     = flag.String("vcf", "", "Input VCF path, plain or gzip-compressed; required")
	groupsPath  = flag.String("groups", "", "Tab-separated grouping table with a mandatory header row (sampleID, then one column per grouping scheme); required")
	outPath     = flag.String("output", "", "Output table path; required")
	useFid      = flag.Bool("use-fid", freq.DefaultOpts.UseFamilyID, "Map samples into the grouping table by family ID (second-to-last '_'-delimited token of the sample name) instead of individual ID (last token)")
	format      = flag.String("format", freq.DefaultOpts.Format, "Output format; 'tsv', 'tsv-bgz' and 'arrow' supported")
	parallelism = flag.Int("parallelism", freq.DefaultOpts.Parallelism, "Maximum number of simultaneous bgzf compression threads for -format tsv-bgz; 0 = runtime.NumCPU()")
)

func vcfFreqUsage() {
	fmt.Printf("Usage: %s -vcf <path> -groups <path> -output <path> [OPTIONS]\n", os.Args[0])
	fmt.Printf("Other options:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = vcfFreqUsage
	shutdown := grail.Init()
	defer shutdown()

	if flag.NArg() != 0 {
		log.Fatalf("Unexpected positional arguments; please check flag syntax: '%s'", strings.Join(flag.Args(), " "))
	}
	if *vcfPath == "" || *groupsPath == "" || *outPath == "" {
		log.Fatalf("-vcf, -groups and -output are all required")
	}
	ctx := vcontext.Background()
	opts := freq.Opts{
		UseFamilyID: *useFid,
		Format:      *format,
		Parallelism: *parallelism,
	}
	if err := freq.Compute(ctx, *vcfPath, *groupsPath, *outPath, &opts); err != nil {
		log.Fatalf("%v", err)
	}
	log.Debug.Printf("exiting")
}
