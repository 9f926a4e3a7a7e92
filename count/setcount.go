package count

import (
	"io"
	"sort"

	"github.com/grailbio/base/tsv"
	"github.com/grailbio/hts/sam"
	"github.com/grailbio/umicount/annotation"
	"github.com/grailbio/umicount/barcode"
)

// SetCounterOpts configures a SetCounter.
type SetCounterOpts struct {
	// Spike treats each alignment target as its own gene. The target
	// name must be a gene known to the index.
	Spike bool
	// MinQual is the minimum mapping quality for a record to count.
	MinQual int
	// UMILength truncates UMIs to this many bases. Zero keeps them
	// whole.
	UMILength int
}

// SetStats counts the fates of records offered to a SetCounter.
type SetStats struct {
	Records   int // records read
	Filtered  int // unaligned or below mapping quality
	OffList   int // cell barcode not on the whitelist
	Ambiguous int // overlapped zero or multiple genes
	Counted   int // contributed a UMI
}

// SetCounter collapses duplicate molecules by collecting, per cell
// and gene, the set of distinct UMIs observed. The count for a
// (gene, cell) pair is the cardinality of its UMI set.
type SetCounter struct {
	opts  SetCounterOpts
	index *annotation.Index
	cells map[string]bool
	// seen maps cell -> gene -> set of UMIs. A cell's gene map is
	// created on first sight with every index gene present, so the
	// matrix is zero-filled for genes the cell never expressed.
	seen  map[string]map[string]map[string]bool
	stats SetStats
}

// NewSetCounter returns a SetCounter over the given gene index,
// restricted to the whitelisted cells.
func NewSetCounter(opts SetCounterOpts, index *annotation.Index, cells map[string]bool) *SetCounter {
	return &SetCounter{
		opts:  opts,
		index: index,
		cells: cells,
		seen:  map[string]map[string]map[string]bool{},
	}
}

// Add folds one alignment record into the per-cell UMI sets.
// Unaligned or low-quality records and records from cells off the
// whitelist are skipped silently, as are reads overlapping zero or
// multiple genes. A record whose name lacks barcode tags, or whose
// target is unknown in spike mode, is fatal.
func (c *SetCounter) Add(rec *sam.Record) error {
	c.stats.Records++
	if !aligned(rec) || int(rec.MapQ) < c.opts.MinQual {
		c.stats.Filtered++
		return nil
	}
	tags, err := barcode.Parse(rec.Name)
	if err != nil {
		return err
	}
	tags.TruncateUMI(c.opts.UMILength)
	if !c.cells[tags.Cell] {
		c.stats.OffList++
		return nil
	}
	sets := c.seen[tags.Cell]
	if sets == nil {
		genes := c.index.Genes()
		sets = make(map[string]map[string]bool, len(genes))
		for _, gene := range genes {
			sets[gene] = map[string]bool{}
		}
		c.seen[tags.Cell] = sets
	}
	var gene string
	if c.opts.Spike {
		gene = rec.Ref.Name()
		if !c.index.HasGene(gene) {
			return &MissingMappingError{Target: gene}
		}
	} else {
		genes := c.index.Overlapping(rec.Ref.Name(), rec.Start(), rec.End())
		if len(genes) != 1 {
			c.stats.Ambiguous++
			return nil
		}
		gene = genes[0]
	}
	sets[gene][tags.UMI] = true
	c.stats.Counted++
	return nil
}

// Stats returns the record fate counts so far.
func (c *SetCounter) Stats() SetStats {
	return c.stats
}

// WriteMatrix writes the gene x cell count matrix as TSV. The header
// row holds a leading empty field and the sorted cell barcodes; each
// following row holds a gene and its per-cell distinct UMI counts.
// With no cells seen, only the empty header line is written.
func (c *SetCounter) WriteMatrix(w io.Writer) error {
	cells := make([]string, 0, len(c.seen))
	for cell := range c.seen {
		cells = append(cells, cell)
	}
	sort.Strings(cells)
	tw := tsv.NewWriter(w)
	tw.WriteString("")
	for _, cell := range cells {
		tw.WriteString(cell)
	}
	if err := tw.EndLine(); err != nil {
		return err
	}
	if len(cells) > 0 {
		for _, gene := range c.index.Genes() {
			tw.WriteString(gene)
			for _, cell := range cells {
				tw.WriteUint32(uint32(len(c.seen[cell][gene])))
			}
			if err := tw.EndLine(); err != nil {
				return err
			}
		}
	}
	return tw.Flush()
}
