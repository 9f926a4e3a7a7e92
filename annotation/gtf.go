// Package annotation maps genomic intervals to annotated genes. It
// reads exon records from GTF annotations and answers interval
// overlap queries through per-chromosome interval trees.
package annotation

import (
	"bufio"
	"context"
	"io"
	"strings"

	"github.com/grailbio/base/compress"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/tsv"
	"github.com/pkg/errors"
)

// geneAttr is the attribute naming the gene an exon belongs to.
const geneAttr = "gene_id"

// Exon is one exon row of a GTF annotation: a genomic interval
// belonging to a gene. Coordinates are 0-based half-open, converted
// from the GTF's 1-based closed convention on read.
type Exon struct {
	Chrom string
	Start int
	End   int
	Gene  string
}

// gtfRecord is one line of a GTF file.
type gtfRecord struct {
	Chrom      string
	Source     string
	Feature    string
	Start      int
	End        int
	Score      string // unused floating point value, but may be "."
	Strand     string
	Frame      string
	Attributes string
}

// ReadExons reads the exon records of a GTF annotation. The file may
// be compressed. Non-exon rows are ignored; an exon row without a
// gene_id attribute is an error.
func ReadExons(ctx context.Context, path string) (exons []Exon, err error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer file.CloseAndReport(ctx, in, &err)
	var inr io.Reader = in.Reader(ctx)
	if u := compress.NewReaderPath(inr, in.Name()); u != nil {
		inr = u
	}
	scanner := tsv.NewReader(bufio.NewReaderSize(inr, 64<<10))
	scanner.Comment = '#'
	scanner.LazyQuotes = true
	attrs := map[string]string{}
	var line gtfRecord
	for {
		if err := scanner.Read(&line); err != nil {
			if err != io.EOF {
				return nil, errors.Wrapf(err, "%s", path)
			}
			break
		}
		if line.Feature != "exon" {
			continue
		}
		parseAttributes(attrs, line.Attributes)
		gene, ok := attrs[geneAttr]
		if !ok {
			return nil, errors.Errorf("%s: exon %s:%d-%d lacks a %s attribute",
				path, line.Chrom, line.Start, line.End, geneAttr)
		}
		exons = append(exons, Exon{
			Chrom: line.Chrom,
			Start: line.Start - 1,
			End:   line.End,
			Gene:  gene,
		})
	}
	return exons, nil
}

// parseAttributes parses a GTF attribute column into key/value
// pairs, reusing the supplied map.
func parseAttributes(parsed map[string]string, info string) {
	for k := range parsed {
		delete(parsed, k)
	}
	for _, field := range strings.Split(strings.TrimSpace(info), ";") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		pair := strings.SplitN(field, " ", 2)
		if len(pair) != 2 {
			continue
		}
		parsed[pair[0]] = strings.Trim(pair[1], "\"")
	}
}
