package main

import (
	"context"
	"io"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/umicount/annotation"
	"github.com/grailbio/umicount/count"
	"github.com/pkg/errors"
)

// tagCount accumulates fractional molecule evidence from a
// transcriptome alignment and writes one evidence line per
// (cell, gene, UMI) key.
func tagCount(ctx context.Context, flags tagcountFlags, samPath, outPath string) (err error) {
	opts := count.TagCounterOpts{Positional: flags.positional}
	if flags.geneMap != "" {
		if opts.GeneMap, err = annotation.ReadGeneMap(ctx, flags.geneMap); err != nil {
			return err
		}
		log.Printf("%s: %d target mappings", flags.geneMap, len(opts.GeneMap))
	}
	in, err := file.Open(ctx, samPath)
	if err != nil {
		return err
	}
	defer file.CloseAndReport(ctx, in, &err)
	r, err := newRecordReader(in.Reader(ctx), samPath)
	if err != nil {
		return err
	}
	counter := count.NewTagCounter(opts)
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
	if err = counter.WriteEvidence(wio); err != nil {
		return err
	}
	total, unaligned := counter.NumRecords()
	log.Printf("%s: %d records, %d unaligned, %d evidence keys", samPath, total, unaligned, counter.NumKeys())
	return nil
}
