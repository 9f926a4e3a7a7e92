package fastq

import (
	"fmt"
	"strings"
	"unicode"
)

// qualOffset is the Sanger Phred encoding offset.
const qualOffset = 33

// A Read is a FASTQ read, comprising an ID, sequence, line 3
// ("unknown"), and a quality string.
type Read struct {
	ID, Seq, Unk, Qual string
}

// Name returns the read name: the ID line with its leading '@'
// removed and truncated at the first whitespace character.
func (r *Read) Name() string {
	name := strings.TrimPrefix(r.ID, "@")
	if i := strings.IndexFunc(name, unicode.IsSpace); i >= 0 {
		name = name[:i]
	}
	return name
}

// Window returns the sequence bases within the 1-based inclusive
// window [start, end], clipped to the read length.
func (r *Read) Window(start, end int) string {
	start, end = clipWindow(start, end, len(r.Seq))
	return r.Seq[start:end]
}

// MinQual returns the minimum Phred score within the 1-based
// inclusive window [start, end] of the quality string, clipped to
// the read length. ok is false if the clipped window is empty, for
// example when the read is too short to cover it.
func (r *Read) MinQual(start, end int) (min int, ok bool) {
	start, end = clipWindow(start, end, len(r.Qual))
	if start >= end {
		return 0, false
	}
	min = int(r.Qual[start]) - qualOffset
	for i := start + 1; i < end; i++ {
		if q := int(r.Qual[i]) - qualOffset; q < min {
			min = q
		}
	}
	return min, true
}

// clipWindow converts a 1-based inclusive window to 0-based
// half-open offsets within a string of length n.
func clipWindow(start, end, n int) (int, int) {
	if start < 1 {
		start = 1
	}
	if start > n+1 {
		start = n + 1
	}
	if end > n {
		end = n
	}
	if end < start {
		end = start - 1
	}
	return start - 1, end
}

// PairMismatchError is returned when the names of two paired reads
// disagree.
type PairMismatchError struct {
	Name1, Name2 string
}

func (e *PairMismatchError) Error() string {
	return fmt.Sprintf("read1 name %q does not match read2 name %q", e.Name1, e.Name2)
}
