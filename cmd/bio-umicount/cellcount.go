package main

import (
	"context"
	"io"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/umicount/count"
	"github.com/grailbio/umicount/encoding/fastq"
)

// cellCount tallies raw reads per cell barcode and writes the tally
// to out, most frequent barcode first.
func cellCount(ctx context.Context, flags cellcountFlags, fastqPath string, out io.Writer) (err error) {
	if err = checkWindow("cb", flags.cbStart, flags.cbEnd); err != nil {
		return err
	}
	in, r, err := openFASTQ(ctx, fastqPath)
	if err != nil {
		return err
	}
	defer file.CloseAndReport(ctx, in, &err)
	census := count.NewCensus(count.CensusOpts{
		CBStart: flags.cbStart,
		CBEnd:   flags.cbEnd,
		MinQual: flags.minQual,
	})
	sc := fastq.NewScanner(r, fastq.Seq|fastq.Qual)
	var rec fastq.Read
	for sc.Scan(&rec) {
		census.Add(&rec)
	}
	if err = sc.Err(); err != nil {
		return err
	}
	total, lowQual := census.NumReads()
	log.Printf("%s: %d reads, %d dropped for quality", fastqPath, total, lowQual)
	return census.WriteCounts(out)
}
