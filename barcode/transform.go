package barcode

import (
	"context"
	"encoding/json"
	"regexp"

	"github.com/grailbio/base/file"
	"github.com/grailbio/umicount/encoding/fastq"
	"github.com/pkg/errors"
)

// templateGroups are the named groups a transform must bind to
// produce a tagged read.
var templateGroups = []string{"name", "CB", "MB", "seq", "qual"}

// A Transform rewrites reads from an arbitrary vendor layout into
// tagged reads. Each pattern is matched against the raw four-line
// text of its read; named groups bind the output fields: name (the
// output ID line), CB (cell barcode), MB (molecular barcode), seq
// and qual (the output sequence and quality lines). Groups may be
// split across the two patterns of a pair; read2 bindings win ties.
type Transform struct {
	read1 *regexp.Regexp
	read2 *regexp.Regexp
}

// LoadTransform reads a transform definition: a JSON object whose
// "read1" key holds the RE2 pattern for read 1 and, for paired
// input, "read2" the pattern for read 2.
func LoadTransform(ctx context.Context, path string, paired bool) (*Transform, error) {
	data, err := file.ReadFile(ctx, path)
	if err != nil {
		return nil, errors.Wrapf(err, "read transform %s", path)
	}
	var def struct {
		Read1 string `json:"read1"`
		Read2 string `json:"read2"`
	}
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, errors.Wrapf(err, "parse transform %s", path)
	}
	t := &Transform{}
	if t.read1, err = regexp.Compile(def.Read1); err != nil {
		return nil, errors.Wrapf(err, "transform %s: read1 pattern", path)
	}
	if paired {
		if def.Read2 == "" {
			return nil, errors.Errorf("transform %s: no read2 pattern for paired input", path)
		}
		if t.read2, err = regexp.Compile(def.Read2); err != nil {
			return nil, errors.Wrapf(err, "transform %s: read2 pattern", path)
		}
	}
	return t, nil
}

// Apply transforms one read (r2 nil) or one read pair into a tagged
// read. A read that does not match its pattern drops the record: ok
// is false and there is no error, mirroring upstream demultiplexers
// that interleave reads from several layouts. demuxedCB, when
// non-empty, overrides the CB binding for pre-demultiplexed layouts.
// A pattern set that leaves any output field unbound is an error.
func (t *Transform) Apply(r1, r2 *fastq.Read, demuxedCB string) (*fastq.Read, bool, error) {
	groups := map[string]string{}
	if !bindGroups(t.read1, r1, groups) {
		return nil, false, nil
	}
	if t.read2 != nil {
		if !bindGroups(t.read2, r2, groups) {
			return nil, false, nil
		}
	}
	if demuxedCB != "" {
		groups["CB"] = demuxedCB
	}
	for _, g := range templateGroups {
		if _, ok := groups[g]; !ok {
			return nil, false, errors.Errorf("transform binds no %q group", g)
		}
	}
	return &fastq.Read{
		ID:   TagName(groups["name"], groups["CB"], groups["MB"]),
		Seq:  groups["seq"],
		Unk:  "+",
		Qual: groups["qual"],
	}, true, nil
}

// bindGroups matches re against the raw four-line text of r and
// merges the named group bindings into groups. It reports whether
// the read matched.
func bindGroups(re *regexp.Regexp, r *fastq.Read, groups map[string]string) bool {
	text := r.ID + "\n" + r.Seq + "\n" + r.Unk + "\n" + r.Qual + "\n"
	m := re.FindStringSubmatch(text)
	if m == nil {
		return false
	}
	for i, name := range re.SubexpNames() {
		if name != "" {
			groups[name] = m[i]
		}
	}
	return true
}
