package count

import (
	"bytes"
	"testing"

	"github.com/grailbio/umicount/annotation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func spikeIndex(t *testing.T) *annotation.Index {
	index, err := annotation.NewIndex([]annotation.Exon{
		{Chrom: "ERCC-00002", Start: 0, End: 1061, Gene: "ERCC-00002"},
		{Chrom: "ERCC-00003", Start: 0, End: 500, Gene: "ERCC-00003"},
	})
	require.NoError(t, err)
	return index
}

func genomicIndex(t *testing.T) *annotation.Index {
	index, err := annotation.NewIndex([]annotation.Exon{
		{Chrom: "chr1", Start: 1000, End: 1100, Gene: "G1"},
		{Chrom: "chr1", Start: 1200, End: 1300, Gene: "G1"},
		{Chrom: "chr1", Start: 1250, End: 1400, Gene: "G2"},
	})
	require.NoError(t, err)
	return index
}

func TestSetCountSpike(t *testing.T) {
	cells := map[string]bool{"AAA": true, "CCC": true}
	c := NewSetCounter(SetCounterOpts{Spike: true, MinQual: 10}, spikeIndex(t), cells)

	// The same molecule sequenced twice counts once.
	require.NoError(t, c.Add(newRecord("s1:CELL_AAA:UMI_TTTT", spike2, 10, 0, 60)))
	require.NoError(t, c.Add(newRecord("s2:CELL_AAA:UMI_TTTT", spike2, 40, 0, 60)))
	// A second distinct molecule of the same spike.
	require.NoError(t, c.Add(newRecord("s3:CELL_AAA:UMI_GGGG", spike2, 10, 0, 60)))
	// Another cell on another spike.
	require.NoError(t, c.Add(newRecord("s4:CELL_CCC:UMI_TTTT", spike3, 10, 0, 60)))
	// Off-list cells and low-quality alignments are skipped.
	require.NoError(t, c.Add(newRecord("s5:CELL_GGG:UMI_TTTT", spike2, 10, 0, 60)))
	require.NoError(t, c.Add(newRecord("s6:CELL_AAA:UMI_TTTT", spike2, 10, 0, 5)))

	stats := c.Stats()
	assert.Equal(t, 6, stats.Records)
	assert.Equal(t, 1, stats.Filtered)
	assert.Equal(t, 1, stats.OffList)
	assert.Equal(t, 4, stats.Counted)

	var buf bytes.Buffer
	require.NoError(t, c.WriteMatrix(&buf))
	want := "\tAAA\tCCC\n" +
		"ERCC-00002\t2\t0\n" +
		"ERCC-00003\t0\t1\n"
	assert.Equal(t, want, buf.String())
}

func TestSetCountSpikeUnknownTarget(t *testing.T) {
	cells := map[string]bool{"AAA": true}
	c := NewSetCounter(SetCounterOpts{Spike: true}, spikeIndex(t), cells)
	err := c.Add(newRecord("u1:CELL_AAA:UMI_TTTT", tx1, 10, 0, 60))
	require.Error(t, err)
	mmErr, ok := err.(*MissingMappingError)
	require.True(t, ok)
	assert.Equal(t, "ENST01", mmErr.Target)
}

func TestSetCountGenomic(t *testing.T) {
	cells := map[string]bool{"AAA": true}
	c := NewSetCounter(SetCounterOpts{MinQual: 10}, genomicIndex(t), cells)

	require.NoError(t, c.Add(newRecord("g1:CELL_AAA:UMI_AAAA", chrA, 1010, 0, 60)))
	require.NoError(t, c.Add(newRecord("g2:CELL_AAA:UMI_CCCC", chrA, 1010, 0, 60)))
	// Overlaps G1 and G2 at once, dropped.
	require.NoError(t, c.Add(newRecord("g3:CELL_AAA:UMI_AAAA", chrA, 1260, 0, 60)))
	// Overlaps nothing, dropped.
	require.NoError(t, c.Add(newRecord("g4:CELL_AAA:UMI_AAAA", chrA, 500, 0, 60)))

	stats := c.Stats()
	assert.Equal(t, 4, stats.Records)
	assert.Equal(t, 2, stats.Ambiguous)
	assert.Equal(t, 2, stats.Counted)

	var buf bytes.Buffer
	require.NoError(t, c.WriteMatrix(&buf))
	want := "\tAAA\n" +
		"G1\t2\n" +
		"G2\t0\n"
	assert.Equal(t, want, buf.String())
}

func TestSetCountUMITruncation(t *testing.T) {
	cells := map[string]bool{"AAA": true}
	c := NewSetCounter(SetCounterOpts{Spike: true, UMILength: 4}, spikeIndex(t), cells)

	// Distinct tails beyond the configured length collapse together.
	require.NoError(t, c.Add(newRecord("t1:CELL_AAA:UMI_TTTTAA", spike2, 10, 0, 60)))
	require.NoError(t, c.Add(newRecord("t2:CELL_AAA:UMI_TTTTCC", spike2, 10, 0, 60)))
	require.NoError(t, c.Add(newRecord("t3:CELL_AAA:UMI_GGGGAA", spike2, 10, 0, 60)))

	var buf bytes.Buffer
	require.NoError(t, c.WriteMatrix(&buf))
	want := "\tAAA\n" +
		"ERCC-00002\t2\n" +
		"ERCC-00003\t0\n"
	assert.Equal(t, want, buf.String())
}

func TestSetCountMalformedName(t *testing.T) {
	cells := map[string]bool{"AAA": true}
	c := NewSetCounter(SetCounterOpts{Spike: true}, spikeIndex(t), cells)
	err := c.Add(newRecord("no-tags-here", spike2, 10, 0, 60))
	require.Error(t, err)
}

func TestSetCountEmptyMatrix(t *testing.T) {
	c := NewSetCounter(SetCounterOpts{Spike: true}, spikeIndex(t), map[string]bool{})
	var buf bytes.Buffer
	require.NoError(t, c.WriteMatrix(&buf))
	assert.Equal(t, "\n", buf.String())
}
