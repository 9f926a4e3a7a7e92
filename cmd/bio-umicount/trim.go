package main

import (
	"context"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/umicount/barcode"
	"github.com/grailbio/umicount/encoding/fastq"
)

// fastqTrim rewrites read2 of every pair with read1's cell barcode
// and UMI windows embedded in the read name. Pairs with a low
// quality base in either window are dropped.
func fastqTrim(ctx context.Context, flags trimFlags, r1Path, r2Path, outPath string) (err error) {
	if err = checkWindow("cb", flags.cbStart, flags.cbEnd); err != nil {
		return err
	}
	if err = checkWindow("umi", flags.umiStart, flags.umiEnd); err != nil {
		return err
	}
	in1, r1, err := openFASTQ(ctx, r1Path)
	if err != nil {
		return err
	}
	defer file.CloseAndReport(ctx, in1, &err)
	in2, r2, err := openFASTQ(ctx, r2Path)
	if err != nil {
		return err
	}
	defer file.CloseAndReport(ctx, in2, &err)
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
	sc := fastq.NewPairScanner(r1, r2, fastq.All)
	var (
		rec1, rec2 fastq.Read
		nDropped   int
	)
	for sc.Scan(&rec1, &rec2) {
		q1, ok1 := rec1.MinQual(flags.cbStart, flags.cbEnd)
		q2, ok2 := rec1.MinQual(flags.umiStart, flags.umiEnd)
		if !ok1 || !ok2 || q1 < flags.minQual || q2 < flags.minQual {
			nDropped++
			continue
		}
		name1, name2 := rec1.Name(), rec2.Name()
		if name1 != name2 {
			return &fastq.PairMismatchError{Name1: name1, Name2: name2}
		}
		cb := rec1.Window(flags.cbStart, flags.cbEnd)
		umi := rec1.Window(flags.umiStart, flags.umiEnd)
		tagged := fastq.Read{
			ID:   "@" + barcode.TagName(name1, cb, umi),
			Seq:  rec2.Seq,
			Unk:  "+",
			Qual: rec2.Qual,
		}
		if err = w.Write(&tagged); err != nil {
			return err
		}
	}
	if err = sc.Err(); err != nil {
		return err
	}
	if err = w.Flush(); err != nil {
		return err
	}
	log.Printf("%s: %d pairs read, %d tagged, %d dropped for quality", r1Path, sc.N(), w.N(), nDropped)
	return nil
}
