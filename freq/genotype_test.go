package freq_test

import (
	"testing"

	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/vcffreq/freq"
)

func TestCountAlt(t *testing.T) {
	tests := []struct {
		field   string
		alt     int
		alleles int
		called  bool
	}{
		{"0/0", 0, 2, true},
		{"0/1", 1, 2, true},
		{"1/0", 1, 2, true},
		{"1/1", 2, 2, true},
		{"0|0", 0, 2, true},
		{"1|1", 2, 2, true},
		{"0|1", 1, 2, true},
		// Missing anywhere means the whole call is uncertain.
		{"./.", 0, 0, false},
		{".|.", 0, 0, false},
		{".", 0, 0, false},
		{"0/.", 0, 0, false},
		{"./1", 0, 0, false},
		// Haploid calls contribute a single allele.
		{"0", 0, 1, true},
		{"1", 1, 1, true},
		// Non-1 allele indices are called but not alternate.
		{"0/2", 0, 2, true},
		{"1/2", 1, 2, true},
		{"2|3", 0, 2, true},
		{"12/1", 1, 2, true},
		// Ploidy is taken from the field.
		{"1/1/1", 3, 3, true},
		{"0|1|2", 1, 3, true},
		// FORMAT subfields after the genotype are ignored.
		{"1|1:35:110,30,0", 2, 2, true},
		{"0/0:.", 0, 2, true},
		{"./.:0:.", 0, 0, false},
	}
	for _, test := range tests {
		alt, alleles, called, err := freq.CountAlt(test.field)
		assert.NoError(t, err, test.field)
		assert.EQ(t, alt, test.alt, test.field)
		assert.EQ(t, alleles, test.alleles, test.field)
		assert.EQ(t, called, test.called, test.field)
	}
}

func TestCountAltErrors(t *testing.T) {
	tests := []struct {
		field string
		want  string
	}{
		{"", "empty genotype"},
		{":35", "empty genotype"},
		{"a/b", "unrecognized genotype"},
		{"0/x", "unrecognized genotype"},
		{"0//1", "unrecognized genotype"},
		{"./", "unrecognized genotype"},
		{"-1/0", "unrecognized genotype"},
	}
	for _, test := range tests {
		_, _, _, err := freq.CountAlt(test.field)
		assert.NotNil(t, err, test.field)
		assert.HasSubstr(t, err.Error(), test.want)
	}
}
