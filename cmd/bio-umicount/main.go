package main

// bio-umicount counts unique molecules (UMIs) per gene, per cell in
// single-cell RNA sequencing experiments.
//
// A typical workflow:
//
//   1. fastqtrim (or fastqtransform) moves each read's cell barcode
//      and UMI from the raw bases into the read name.
//   2. An external aligner maps the tagged reads to a transcriptome
//      or genome.
//   3. tagcount or samcount collapses the aligned reads into a
//      per-gene, per-cell molecule count table.
//
// cellcount tallies raw reads per cell barcode before alignment, to
// help pick a cell whitelist.

import (
	"fmt"
	"log"
	"os"

	"github.com/grailbio/base/cmdutil"
	"github.com/grailbio/base/vcontext"
	"v.io/x/lib/cmdline"
)

type trimFlags struct {
	cbStart, cbEnd   int
	umiStart, umiEnd int
	minQual          int
}

func newCmdFastqTrim() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "fastqtrim",
		Short:    "Tag read names with position-based cell barcodes and UMIs",
		ArgsName: "read1.fastq read2.fastq output.fastq",
	}
	flags := trimFlags{}
	cmd.Flags.IntVar(&flags.cbStart, "cb-start", 0, "Start position of the cell barcode in read1, 1-based")
	cmd.Flags.IntVar(&flags.cbEnd, "cb-end", 0, "End position of the cell barcode in read1, inclusive")
	cmd.Flags.IntVar(&flags.umiStart, "umi-start", 0, "Start position of the UMI in read1, 1-based")
	cmd.Flags.IntVar(&flags.umiEnd, "umi-end", 0, "End position of the UMI in read1, inclusive")
	cmd.Flags.IntVar(&flags.minQual, "min-qual", 10, "Drop pairs with a barcode or UMI base below this Phred quality")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 3 {
			return fmt.Errorf("fastqtrim takes read1, read2 and output paths, but got %v", argv)
		}
		return fastqTrim(vcontext.Background(), flags, argv[0], argv[1], argv[2])
	})
	return cmd
}

type transformFlags struct {
	demuxedCB string
}

func newCmdFastqTransform() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "fastqtransform",
		Short:    "Tag read names with cell barcodes and UMIs located by a transform file",
		ArgsName: "transform.json read1.fastq [read2.fastq] output.fastq",
	}
	flags := transformFlags{}
	cmd.Flags.StringVar(&flags.demuxedCB, "demuxed-cb", "",
		"Use this cell barcode for every read, for data demultiplexed upstream")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		switch len(argv) {
		case 3:
			return fastqTransform(vcontext.Background(), flags, argv[0], argv[1], "", argv[2])
		case 4:
			return fastqTransform(vcontext.Background(), flags, argv[0], argv[1], argv[2], argv[3])
		default:
			return fmt.Errorf("fastqtransform takes transform, read1, optional read2 and output paths, but got %v", argv)
		}
	})
	return cmd
}

type tagcountFlags struct {
	geneMap    string
	positional bool
}

func newCmdTagCount() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "tagcount",
		Short:    "Accumulate per-molecule evidence from reads aligned to a transcriptome",
		ArgsName: "input.{sam,bam} output.txt",
	}
	flags := tagcountFlags{}
	cmd.Flags.StringVar(&flags.geneMap, "gene-map", "",
		"Two-column file mapping alignment targets to genes; when set, every target must be mapped")
	cmd.Flags.BoolVar(&flags.positional, "positional", false,
		"Treat the alignment position as part of the molecular evidence")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 2 {
			return fmt.Errorf("tagcount takes input and output paths, but got %v", argv)
		}
		return tagCount(vcontext.Background(), flags, argv[0], argv[1])
	})
	return cmd
}

type samcountFlags struct {
	spike     bool
	minQual   int
	umiLength int
}

func newCmdSamCount() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "samcount",
		Short:    "Build a gene x cell matrix of distinct UMI counts from aligned reads",
		ArgsName: "input.{sam,bam} exons.gtf cells.txt output.tsv",
	}
	flags := samcountFlags{}
	cmd.Flags.BoolVar(&flags.spike, "spike", false,
		"Count spike-in alignments, treating each alignment target as a gene")
	cmd.Flags.IntVar(&flags.minQual, "min-qual", 10, "Skip alignments with mapping quality below this value")
	cmd.Flags.IntVar(&flags.umiLength, "umi-length", 0, "Truncate UMIs to this many bases; 0 keeps them whole")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 4 {
			return fmt.Errorf("samcount takes input, GTF, cell list and output paths, but got %v", argv)
		}
		return samCount(vcontext.Background(), flags, argv[0], argv[1], argv[2], argv[3])
	})
	return cmd
}

type cellcountFlags struct {
	cbStart, cbEnd int
	minQual        int
}

func newCmdCellCount() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "cellcount",
		Short:    "Tally raw reads per cell barcode",
		ArgsName: "input.fastq",
	}
	flags := cellcountFlags{}
	cmd.Flags.IntVar(&flags.cbStart, "cb-start", 0, "Start position of the cell barcode, 1-based")
	cmd.Flags.IntVar(&flags.cbEnd, "cb-end", 0, "End position of the cell barcode, inclusive")
	cmd.Flags.IntVar(&flags.minQual, "min-qual", 10, "Drop reads with a barcode base below this Phred quality")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 1 {
			return fmt.Errorf("cellcount takes one FASTQ path, but got %v", argv)
		}
		return cellCount(vcontext.Background(), flags, argv[0], os.Stdout)
	})
	return cmd
}

// checkWindow validates a 1-based inclusive barcode window given on
// the command line.
func checkWindow(name string, start, end int) error {
	if start < 1 {
		return fmt.Errorf("-%s-start must be positive, got %d", name, start)
	}
	if end < start {
		return fmt.Errorf("-%s-end (%d) must not precede -%s-start (%d)", name, end, name, start)
	}
	return nil
}

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.Lshortfile)
	cmdline.HideGlobalFlagsExcept()
	cmdline.Main(
		&cmdline.Command{
			Name:     "bio-umicount",
			Short:    "Count unique molecules in single-cell sequencing data",
			LookPath: false,
			Children: []*cmdline.Command{
				newCmdFastqTrim(),
				newCmdFastqTransform(),
				newCmdTagCount(),
				newCmdSamCount(),
				newCmdCellCount(),
			},
		})
}
