package annotation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testIndex(t *testing.T) *Index {
	idx, err := NewIndex([]Exon{
		{Chrom: "chr1", Start: 1000, End: 1100, Gene: "G1"},
		{Chrom: "chr1", Start: 1200, End: 1300, Gene: "G1"},
		{Chrom: "chr1", Start: 1250, End: 1400, Gene: "G2"},
		{Chrom: "chr2", Start: 50, End: 150, Gene: "G3"},
	})
	require.NoError(t, err)
	return idx
}

func TestOverlapping(t *testing.T) {
	idx := testIndex(t)
	tests := []struct {
		chrom      string
		start, end int
		want       []string
	}{
		// Within a single exon.
		{"chr1", 1010, 1060, []string{"G1"}},
		// Spanning the gap between G1's exons still hits only G1.
		{"chr1", 1090, 1210, []string{"G1"}},
		// The shared region hits both genes.
		{"chr1", 1260, 1290, []string{"G1", "G2"}},
		// Unannotated gap.
		{"chr1", 1101, 1200, nil},
		// Touching interval ends do not overlap (half-open).
		{"chr1", 1100, 1200, nil},
		{"chr1", 900, 1001, []string{"G1"}},
		{"chr2", 100, 120, []string{"G3"}},
		// Unknown chromosome.
		{"chrM", 0, 1000, nil},
	}
	for _, test := range tests {
		got := idx.Overlapping(test.chrom, test.start, test.end)
		assert.Equal(t, test.want, got, "%s:%d-%d", test.chrom, test.start, test.end)
	}
}

func TestGenes(t *testing.T) {
	idx := testIndex(t)
	assert.Equal(t, []string{"G1", "G2", "G3"}, idx.Genes())
	assert.True(t, idx.HasGene("G2"))
	assert.False(t, idx.HasGene("G4"))
}

func TestEmptyIndex(t *testing.T) {
	idx, err := NewIndex(nil)
	require.NoError(t, err)
	assert.Empty(t, idx.Genes())
	assert.Nil(t, idx.Overlapping("chr1", 0, 100))
}
