package count

import (
	"io"
	"sort"

	"github.com/grailbio/base/tsv"
	"github.com/grailbio/umicount/encoding/fastq"
)

// CensusOpts configures a Census.
type CensusOpts struct {
	// CBStart and CBEnd delimit the cell barcode, 1-based inclusive.
	CBStart, CBEnd int
	// MinQual is the minimum base quality required at every barcode
	// position.
	MinQual int
}

// Census tallies raw reads per cell barcode, before any alignment.
// It ranks barcodes by read count so real cells can be told apart
// from ambient noise.
type Census struct {
	opts   CensusOpts
	counts map[string]int
	nReads int
	nLowQ  int
}

// NewCensus returns an empty Census.
func NewCensus(opts CensusOpts) *Census {
	return &Census{opts: opts, counts: map[string]int{}}
}

// Add tallies one read. Reads whose barcode window lies entirely off
// the read or contains a base below the quality floor are skipped.
func (c *Census) Add(r *fastq.Read) {
	c.nReads++
	min, ok := r.MinQual(c.opts.CBStart, c.opts.CBEnd)
	if !ok || min < c.opts.MinQual {
		c.nLowQ++
		return
	}
	c.counts[r.Window(c.opts.CBStart, c.opts.CBEnd)]++
}

// NumReads returns the number of reads seen and the number rejected
// for barcode quality.
func (c *Census) NumReads() (total, lowQual int) {
	return c.nReads, c.nLowQ
}

// WriteCounts writes barcodes and read counts as TSV, most frequent
// first, ties in barcode order.
func (c *Census) WriteCounts(w io.Writer) error {
	barcodes := make([]string, 0, len(c.counts))
	for bc := range c.counts {
		barcodes = append(barcodes, bc)
	}
	sort.Slice(barcodes, func(i, j int) bool {
		if c.counts[barcodes[i]] != c.counts[barcodes[j]] {
			return c.counts[barcodes[i]] > c.counts[barcodes[j]]
		}
		return barcodes[i] < barcodes[j]
	})
	tw := tsv.NewWriter(w)
	for _, bc := range barcodes {
		tw.WriteString(bc)
		tw.WriteUint32(uint32(c.counts[bc]))
		if err := tw.EndLine(); err != nil {
			return err
		}
	}
	return tw.Flush()
}
