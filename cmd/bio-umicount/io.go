package main

import (
	"context"
	"io"
	"strings"

	"github.com/grailbio/base/compress"
	"github.com/grailbio/base/file"
	"github.com/grailbio/hts/bam"
	"github.com/grailbio/hts/sam"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

// recordReader yields alignment records from a SAM or BAM stream.
type recordReader interface {
	Read() (*sam.Record, error)
}

// newRecordReader creates a SAM or BAM reader for in, chosen by the
// path extension. SAM input may be compressed.
func newRecordReader(in io.Reader, path string) (recordReader, error) {
	if strings.HasSuffix(path, ".bam") {
		r, err := bam.NewReader(in, 1)
		if err != nil {
			return nil, errors.Wrapf(err, "open %s: failed to open BAM", path)
		}
		return r, nil
	}
	if u := compress.NewReaderPath(in, path); u != nil {
		in = u
	}
	r, err := sam.NewReader(in)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s: failed to open SAM", path)
	}
	return r, nil
}

// openFASTQ opens a FASTQ file, transparently decompressing it when
// the extension calls for it. The caller closes the returned file.
func openFASTQ(ctx context.Context, path string) (file.File, io.Reader, error) {
	f, err := file.Open(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	in := io.Reader(f.Reader(ctx))
	if u := compress.NewReaderPath(in, f.Name()); u != nil {
		in = u
	}
	return f, in, nil
}

// newOutputWriter wraps w with a gzip compressor when path ends in
// ".gz". The returned finish function must be called after the last
// write, before the underlying file is closed.
func newOutputWriter(w io.Writer, path string) (io.Writer, func() error) {
	if !strings.HasSuffix(path, ".gz") {
		return w, func() error { return nil }
	}
	gz := gzip.NewWriter(w)
	return gz, gz.Close
}
