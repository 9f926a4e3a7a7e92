// Package count aggregates per-molecule evidence from aligned
// single-cell reads into count tables. A TagCounter accumulates
// fractional multi-mapping credit per evidence key; a SetCounter
// deduplicates PCR copies per (cell, gene) by UMI-set cardinality;
// a Census tallies raw cell barcodes from untagged reads. All
// aggregators stream: each record is folded in and discarded, and a
// single goroutine owns an aggregator for the duration of a run.
package count

import (
	"fmt"

	"github.com/grailbio/hts/sam"
)

var nhTag = sam.Tag{'N', 'H'}

// MissingMappingError is returned when a record's target cannot be
// resolved to a gene: a supplied gene map lacks the target, or a
// spike-in chromosome is not in the annotation.
type MissingMappingError struct {
	Target string
}

func (e *MissingMappingError) Error() string {
	return fmt.Sprintf("target %q has no gene mapping", e.Target)
}

// aligned reports whether rec represents a successful alignment.
func aligned(rec *sam.Record) bool {
	return rec.Flags&sam.Unmapped == 0 && rec.Ref != nil
}

// hitCount returns the record's number-of-hits (NH) auxiliary value.
// A record without a valid NH tag counts as a single unambiguous
// hit.
func hitCount(rec *sam.Record) int {
	aux := rec.AuxFields.Get(nhTag)
	if aux == nil {
		return 1
	}
	var nh int
	switch v := aux.Value().(type) {
	case int8:
		nh = int(v)
	case uint8:
		nh = int(v)
	case int16:
		nh = int(v)
	case uint16:
		nh = int(v)
	case int32:
		nh = int(v)
	case uint32:
		nh = int(v)
	case int:
		nh = v
	default:
		return 1
	}
	if nh < 1 {
		return 1
	}
	return nh
}
