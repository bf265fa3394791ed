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

// KeyMode selects which token of a compound VCF sample name is used as the
// key into the grouping table.
type KeyMode int

const (
	// IndividualID keys samples by the last '_'-delimited token of the
	// sample name.  This is the default.
	IndividualID KeyMode = iota
	// FamilyID keys samples by the second-to-last '_'-delimited token.
	// PLINK-style exports commonly name sample columns FID_IID.
	FamilyID
)

// SampleKey derives the grouping-table key from a raw VCF sample column
// name.  A name without any underscore is its own individual ID; family-ID
// mode requires at least two tokens.
func SampleKey(name string, mode KeyMode) (string, error) {
	tokens := strings.Split(name, "_")
	if mode == FamilyID {
		if len(tokens) < 2 {
			return "", fmt.Errorf("freq.SampleKey: sample %q has no family ID (need at least two '_'-delimited tokens)", name)
		}
		return tokens[len(tokens)-2], nil
	}
	return tokens[len(tokens)-1], nil
}
