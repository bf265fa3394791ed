package freq_test

import (
	"testing"

	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/vcffreq/freq"
)

func TestSampleKey(t *testing.T) {
	tests := []struct {
		name string
		mode freq.KeyMode
		want string
	}{
		{"FAM1_IND1", freq.IndividualID, "IND1"},
		{"FAM1_IND1", freq.FamilyID, "FAM1"},
		{"IND1", freq.IndividualID, "IND1"},
		{"COHORT_FAM1_IND1", freq.IndividualID, "IND1"},
		{"COHORT_FAM1_IND1", freq.FamilyID, "FAM1"},
		{"A_", freq.IndividualID, ""},
		{"A_", freq.FamilyID, "A"},
	}
	for _, test := range tests {
		got, err := freq.SampleKey(test.name, test.mode)
		assert.NoError(t, err, test.name)
		assert.EQ(t, got, test.want, test.name)
	}
}

func TestSampleKeyNoFamilyID(t *testing.T) {
	_, err := freq.SampleKey("IND1", freq.FamilyID)
	assert.NotNil(t, err)
	assert.HasSubstr(t, err.Error(), `"IND1" has no family ID`)
}
