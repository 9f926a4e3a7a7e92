package annotation

import (
	"sort"

	"github.com/biogo/store/interval"
	"github.com/pkg/errors"
)

// exonInterval is one registered exon within a chromosome tree.
type exonInterval struct {
	start, end int
	uid        uintptr
	gene       string
}

// Overlap reports intersection of half-open intervals.
func (i exonInterval) Overlap(b interval.IntRange) bool {
	return i.end > b.Start && i.start < b.End
}

func (i exonInterval) ID() uintptr { return i.uid }

func (i exonInterval) Range() interval.IntRange {
	return interval.IntRange{Start: i.start, End: i.end}
}

// Index answers which annotated genes' exons intersect a genomic
// interval. It is immutable after construction and safe for
// concurrent lookups. Lookups are strand-insensitive.
type Index struct {
	trees map[string]*interval.IntTree
	genes []string
}

// NewIndex builds an Index registering every exon under its gene.
func NewIndex(exons []Exon) (*Index, error) {
	idx := &Index{trees: map[string]*interval.IntTree{}}
	seen := map[string]bool{}
	for i, exon := range exons {
		tree, ok := idx.trees[exon.Chrom]
		if !ok {
			tree = &interval.IntTree{}
			idx.trees[exon.Chrom] = tree
		}
		iv := exonInterval{start: exon.Start, end: exon.End, uid: uintptr(i), gene: exon.Gene}
		if err := tree.Insert(iv, false); err != nil {
			return nil, errors.Wrapf(err, "register exon %s:%d-%d", exon.Chrom, exon.Start, exon.End)
		}
		if !seen[exon.Gene] {
			seen[exon.Gene] = true
			idx.genes = append(idx.genes, exon.Gene)
		}
	}
	for _, tree := range idx.trees {
		tree.AdjustRanges()
	}
	sort.Strings(idx.genes)
	return idx, nil
}

// Genes returns the names of all annotated genes, sorted.
func (x *Index) Genes() []string {
	return x.genes
}

// HasGene reports whether gene is annotated.
func (x *Index) HasGene(gene string) bool {
	i := sort.SearchStrings(x.genes, gene)
	return i < len(x.genes) && x.genes[i] == gene
}

// Overlapping returns the sorted names of the genes with at least
// one exon overlapping the 0-based half-open interval [start, end)
// on chrom. An unannotated chromosome yields nil.
func (x *Index) Overlapping(chrom string, start, end int) []string {
	tree, ok := x.trees[chrom]
	if !ok {
		return nil
	}
	var genes []string
	seen := map[string]bool{}
	for _, iv := range tree.Get(exonInterval{start: start, end: end}) {
		gene := iv.(exonInterval).gene
		if !seen[gene] {
			seen[gene] = true
			genes = append(genes, gene)
		}
	}
	sort.Strings(genes)
	return genes
}
