package count

import (
	"bufio"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/grailbio/hts/sam"
	"github.com/grailbio/umicount/barcode"
)

// TagCounterOpts configures a TagCounter.
type TagCounterOpts struct {
	// GeneMap remaps target (transcript) names to genes. When nil,
	// targets count under their own names; when supplied, it must
	// cover every aligned target.
	GeneMap map[string]string
	// Positional adds the alignment position to the evidence key, so
	// identical UMIs at different positions stay distinct molecules.
	Positional bool
}

// Key identifies one molecule's evidence: cell barcode, gene,
// optional 0-based alignment position, and UMI. Pos is -1 when
// positional evidence is off.
type Key struct {
	Cell string
	Gene string
	Pos  int
	UMI  string
}

// TagCounter accumulates fractional per-molecule evidence from
// tagged alignments. A read reported as hitting NH equally good
// targets contributes 1/NH per target, so multi-mapped reads do not
// overcount.
type TagCounter struct {
	opts       TagCounterOpts
	evidence   map[Key]float64
	nRecords   int
	nUnaligned int
}

// NewTagCounter returns an empty TagCounter.
func NewTagCounter(opts TagCounterOpts) *TagCounter {
	return &TagCounter{opts: opts, evidence: map[Key]float64{}}
}

// Add folds one alignment record into the evidence map. Unaligned
// records are skipped silently. A record whose name lacks barcode
// tags, or whose target is missing from a supplied gene map, is
// fatal.
func (c *TagCounter) Add(rec *sam.Record) error {
	c.nRecords++
	if !aligned(rec) {
		c.nUnaligned++
		return nil
	}
	tags, err := barcode.Parse(rec.Name)
	if err != nil {
		return err
	}
	gene := rec.Ref.Name()
	if c.opts.GeneMap != nil {
		mapped, ok := c.opts.GeneMap[gene]
		if !ok {
			return &MissingMappingError{Target: gene}
		}
		gene = mapped
	}
	key := Key{Cell: tags.Cell, Gene: gene, Pos: -1, UMI: tags.UMI}
	if c.opts.Positional {
		key.Pos = rec.Pos
	}
	c.evidence[key] += 1 / float64(hitCount(rec))
	return nil
}

// NumRecords returns the number of records seen and the number
// skipped as unaligned.
func (c *TagCounter) NumRecords() (total, unaligned int) {
	return c.nRecords, c.nUnaligned
}

// NumKeys returns the number of distinct evidence keys accumulated.
func (c *TagCounter) NumKeys() int {
	return len(c.evidence)
}

// WriteEvidence writes one line per evidence key: the
// comma-separated key fields, then the accumulated weight. Lines are
// sorted by key. There is no header.
func (c *TagCounter) WriteEvidence(w io.Writer) error {
	keys := make([]Key, 0, len(c.evidence))
	for key := range c.evidence {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.Cell != b.Cell {
			return a.Cell < b.Cell
		}
		if a.Gene != b.Gene {
			return a.Gene < b.Gene
		}
		if a.Pos != b.Pos {
			return a.Pos < b.Pos
		}
		return a.UMI < b.UMI
	})
	bw := bufio.NewWriter(w)
	fields := make([]string, 0, 5)
	for _, key := range keys {
		fields = fields[:0]
		fields = append(fields, key.Cell, key.Gene)
		if c.opts.Positional {
			fields = append(fields, strconv.Itoa(key.Pos))
		}
		fields = append(fields,
			key.UMI,
			strconv.FormatFloat(c.evidence[key], 'g', -1, 64))
		if _, err := bw.WriteString(strings.Join(fields, ",")); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}
