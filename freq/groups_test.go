package freq_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/vcffreq/freq"
	"github.com/klauspost/compress/gzip"
)

const testGroups = "sampleID\tpop\tregion\n" +
	"IND1\tCEU\tEUR\n" +
	"IND2\tYRI\tAFR\n" +
	"IND3\tCEU\tEUR\n" +
	"IND4\tTSI \tEUR\n" + // trailing space must be trimmed
	"IND5\tYRI\t\n" // no region assignment

func TestReadGroups(t *testing.T) {
	g, err := freq.ReadGroups(strings.NewReader(testGroups))
	assert.NoError(t, err)
	assert.EQ(t, g.Schemes, []string{"pop", "region"})
	// Scheme-major, first-observed group order.
	assert.EQ(t, g.Cols, []freq.GroupCol{
		{Scheme: "pop", Group: "CEU"},
		{Scheme: "pop", Group: "YRI"},
		{Scheme: "pop", Group: "TSI"},
		{Scheme: "region", Group: "EUR"},
		{Scheme: "region", Group: "AFR"},
	})
	assert.EQ(t, g.NumSamples(), 5)

	tests := []struct {
		sample string
		cols   []int
	}{
		{"IND1", []int{0, 3}},
		{"IND2", []int{1, 4}},
		{"IND3", []int{0, 3}},
		{"IND4", []int{2, 3}},
		{"IND5", []int{1}}, // empty region cell: ungrouped under that scheme
	}
	for _, test := range tests {
		cols, ok := g.Columns(test.sample)
		assert.True(t, ok, test.sample)
		assert.EQ(t, cols, test.cols, test.sample)
	}
	_, ok := g.Columns("IND6")
	assert.False(t, ok)
}

func TestReadGroupsErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "empty",
			in:   "",
			want: "header row required",
		},
		{
			name: "no_schemes",
			in:   "sampleID\nIND1\n",
			want: "at least one scheme",
		},
		{
			name: "short_row",
			in:   "sampleID\tpop\tregion\nIND1\tCEU\n",
			want: "line 2 has 2 columns, header has 3",
		},
		{
			name: "long_row",
			in:   "sampleID\tpop\nIND1\tCEU\tEUR\n",
			want: "line 2 has 3 columns, header has 2",
		},
		{
			name: "duplicate_sample",
			in:   "sampleID\tpop\nIND1\tCEU\nIND2\tYRI\nIND1\tTSI\n",
			want: `duplicate sample ID "IND1" on line 4`,
		},
		{
			name: "empty_sample_id",
			in:   "sampleID\tpop\n\tCEU\n",
			want: "line 2 has an empty sample ID",
		},
		{
			name: "no_samples",
			in:   "sampleID\tpop\n",
			want: "header but no samples",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := freq.ReadGroups(strings.NewReader(test.in))
			assert.NotNil(t, err)
			assert.HasSubstr(t, err.Error(), test.want)
		})
	}
}

func TestLoadGroupsGzip(t *testing.T) {
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tmpdir)
	ctx := vcontext.Background()

	path := filepath.Join(tmpdir, "groups.tsv.gz")
	f, err := os.Create(path)
	assert.NoError(t, err)
	zw := gzip.NewWriter(f)
	_, err = zw.Write([]byte(testGroups))
	assert.NoError(t, err)
	assert.NoError(t, zw.Close())
	assert.NoError(t, f.Close())

	g, err := freq.LoadGroups(ctx, path)
	assert.NoError(t, err)
	assert.EQ(t, g.Schemes, []string{"pop", "region"})
	assert.EQ(t, g.NumSamples(), 5)
}

func TestLoadGroupsMissingFile(t *testing.T) {
	ctx := vcontext.Background()
	_, err := freq.LoadGroups(ctx, "/nonexistent/groups.tsv")
	assert.NotNil(t, err)
}
