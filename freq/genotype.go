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
	"fmt"
	"strings"
)

// CountAlt translates one VCF genotype field (e.g. "0/1", "1|1:35:...",
// "./.") into a count of alternate alleles and a called-allele denominator.
//
// Only the first colon-delimited subfield is read.  Allele tokens are split
// on '/' and '|' (phasing is ignored).  The policies here are:
//   - A "." allele anywhere makes the whole call not-called (called=false,
//     both counts zero).  This is the standard diploid convention; a
//     half-missing call like "0/." tells us nothing about the genotype.
//   - Only allele index 1 counts as alternate.  Other indices (2, 3, ...)
//     at unsplit multi-allelic sites are excluded from the alt count but
//     still count toward the called denominator, so frequencies remain
//     probabilities over called alleles.
//   - Ploidy is whatever the field says: haploid "1" yields alt=1 with
//     alleles=1, triploid calls yield alleles=3.
//
// Anything else (empty field, non-numeric allele token) is an error; the
// caller is expected to attach the sample and variant.
func CountAlt(field string) (alt, alleles int, called bool, err error) {
	gt := field
	if i := strings.IndexByte(gt, ':'); i >= 0 {
		gt = gt[:i]
	}
	if gt == "" {
		return 0, 0, false, fmt.Errorf("empty genotype %q", field)
	}
	missing := false
	start := 0
	for i := 0; i <= len(gt); i++ {
		if i != len(gt) && gt[i] != '/' && gt[i] != '|' {
			continue
		}
		tok := gt[start:i]
		start = i + 1
		if tok == "." {
			missing = true
			continue
		}
		if !isAlleleIndex(tok) {
			return 0, 0, false, fmt.Errorf("unrecognized genotype %q", field)
		}
		if tok == "1" {
			alt++
		}
		alleles++
	}
	if missing {
		return 0, 0, false, nil
	}
	return alt, alleles, true, nil
}

func isAlleleIndex(tok string) bool {
	if tok == "" {
		return false
	}
	for i := 0; i < len(tok); i++ {
		if tok[i] < '0' || tok[i] > '9' {
			return false
		}
	}
	return true
}
