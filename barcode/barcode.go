// Package barcode handles the cell and molecular barcodes that
// single-cell protocols embed in sequencing reads: composing and
// parsing tagged read identifiers, rewriting vendor read layouts,
// and loading cell-barcode whitelists.
package barcode

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/grailbio/base/compress"
	"github.com/grailbio/base/file"
	"github.com/pkg/errors"
)

// tagRe matches a tagged read identifier, "<name>:CELL_<cb>:UMI_<umi>".
// The name group is greedy, so a name that itself contains a tag-like
// run binds the last tag pair. Barcode tokens are non-whitespace runs
// and may be empty.
var tagRe = regexp.MustCompile(`^(.*):CELL_(\S*):UMI_(\S*)$`)

// Tags holds the barcodes recovered from a tagged read identifier.
type Tags struct {
	Cell string
	UMI  string
}

// MalformedIdentifierError is returned when a read identifier lacks
// the expected CELL_ and UMI_ tags.
type MalformedIdentifierError struct {
	Name string
}

func (e *MalformedIdentifierError) Error() string {
	return fmt.Sprintf("read name %q lacks CELL_/UMI_ tags", e.Name)
}

// Parse recovers the cell and molecular barcodes from a tagged read
// identifier produced by TagName. It returns a
// MalformedIdentifierError when the identifier does not carry both
// tags.
func Parse(name string) (Tags, error) {
	m := tagRe.FindStringSubmatch(name)
	if m == nil {
		return Tags{}, &MalformedIdentifierError{Name: name}
	}
	return Tags{Cell: m[2], UMI: m[3]}, nil
}

// TruncateUMI cuts the UMI to its first n bases, for layouts whose
// upstream tagging embedded extra bases. It is a no-op when n <= 0
// or the UMI is already no longer than n.
func (t *Tags) TruncateUMI(n int) {
	if n > 0 && len(t.UMI) > n {
		t.UMI = t.UMI[:n]
	}
}

// TagName appends the cell and molecular barcodes to a read name.
// Counting stages recover them with Parse.
func TagName(name, cell, umi string) string {
	return name + ":CELL_" + cell + ":UMI_" + umi
}

// LoadWhitelist reads a cell-barcode whitelist, one barcode per line,
// ignoring blank lines and surrounding whitespace. The file may be
// compressed.
func LoadWhitelist(ctx context.Context, path string) (cells map[string]bool, err error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer file.CloseAndReport(ctx, in, &err)
	r := io.Reader(in.Reader(ctx))
	if u := compress.NewReaderPath(r, path); u != nil {
		r = u
	}
	cells = map[string]bool{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		cell := strings.TrimSpace(scanner.Text())
		if cell == "" {
			continue
		}
		cells[cell] = true
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	return cells, nil
}
