package main

import (
	"context"
	"io"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/umicount/annotation"
	"github.com/grailbio/umicount/barcode"
	"github.com/grailbio/umicount/count"
	"github.com/pkg/errors"
)

// samCount collapses aligned reads into a gene x cell matrix of
// distinct UMI counts. Reads are assigned to the single gene whose
// exons they overlap, or to their target contig with -spike.
func samCount(ctx context.Context, flags samcountFlags, samPath, gtfPath, cellPath, outPath string) (err error) {
	exons, err := annotation.ReadExons(ctx, gtfPath)
	if err != nil {
		return err
	}
	index, err := annotation.NewIndex(exons)
	if err != nil {
		return err
	}
	log.Printf("%s: %d exons, %d genes", gtfPath, len(exons), len(index.Genes()))
	cells, err := barcode.LoadWhitelist(ctx, cellPath)
	if err != nil {
		return err
	}
	log.Printf("%s: %d cell barcodes", cellPath, len(cells))

	in, err := file.Open(ctx, samPath)
	if err != nil {
		return err
	}
	defer file.CloseAndReport(ctx, in, &err)
	r, err := newRecordReader(in.Reader(ctx), samPath)
	if err != nil {
		return err
	}
	counter := count.NewSetCounter(count.SetCounterOpts{
		Spike:     flags.spike,
		MinQual:   flags.minQual,
		UMILength: flags.umiLength,
	}, index, cells)
	for {
		rec, rerr := r.Read()
		if rec == nil {
			if rerr != io.EOF {
				return errors.Wrapf(rerr, "%s: read failed", samPath)
			}
			break
		}
		if err = counter.Add(rec); err != nil {
			return err
		}
	}
	out, err := file.Create(ctx, outPath)
	if err != nil {
		return err
	}
	defer file.CloseAndReport(ctx, out, &err)
	wio, finish := newOutputWriter(out.Writer(ctx), outPath)
	defer func() {
		if e := finish(); e != nil && err == nil {
			err = e
		}
	}()
	if err = counter.WriteMatrix(wio); err != nil {
		return err
	}
	stats := counter.Stats()
	log.Printf("%s: %d records, %d filtered, %d off-list, %d ambiguous, %d counted",
		samPath, stats.Records, stats.Filtered, stats.OffList, stats.Ambiguous, stats.Counted)
	return nil
}
