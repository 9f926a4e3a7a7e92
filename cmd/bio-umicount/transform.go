package main

import (
	"context"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/umicount/barcode"
	"github.com/grailbio/umicount/encoding/fastq"
)

// fastqTransform rebuilds each read with its cell barcode and UMI,
// located by the transform file's patterns, embedded in the read
// name. Reads the patterns do not match are dropped. r2Path may be
// empty for single-ended data.
func fastqTransform(ctx context.Context, flags transformFlags, transformPath, r1Path, r2Path, outPath string) (err error) {
	paired := r2Path != ""
	tr, err := barcode.LoadTransform(ctx, transformPath, paired)
	if err != nil {
		return err
	}
	in1, r1, err := openFASTQ(ctx, r1Path)
	if err != nil {
		return err
	}
	defer file.CloseAndReport(ctx, in1, &err)
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

	w := fastq.NewWriter(wio)
	nSkipped := 0
	apply := func(rec1, rec2 *fastq.Read) error {
		tagged, ok, err := tr.Apply(rec1, rec2, flags.demuxedCB)
		if err != nil {
			return err
		}
		if !ok {
			nSkipped++
			return nil
		}
		return w.Write(tagged)
	}
	var rec1, rec2 fastq.Read
	var nRead int
	if paired {
		in2, r2, err2 := openFASTQ(ctx, r2Path)
		if err2 != nil {
			return err2
		}
		defer file.CloseAndReport(ctx, in2, &err)
		sc := fastq.NewPairScanner(r1, r2, fastq.All)
		for sc.Scan(&rec1, &rec2) {
			if err = apply(&rec1, &rec2); err != nil {
				return err
			}
		}
		if err = sc.Err(); err != nil {
			return err
		}
		nRead = sc.N()
	} else {
		sc := fastq.NewScanner(r1, fastq.All)
		for sc.Scan(&rec1) {
			if err = apply(&rec1, nil); err != nil {
				return err
			}
		}
		if err = sc.Err(); err != nil {
			return err
		}
		nRead = sc.N()
	}
	if err = w.Flush(); err != nil {
		return err
	}
	log.Printf("%s: %d reads in, %d tagged, %d unmatched", r1Path, nRead, w.N(), nSkipped)
	return nil
}
