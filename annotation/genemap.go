package annotation

import (
	"bufio"
	"context"
	"io"
	"strings"

	"github.com/grailbio/base/compress"
	"github.com/grailbio/base/file"
	"github.com/pkg/errors"
)

// ReadGeneMap reads a transcript-to-gene mapping: two
// whitespace-separated columns per line, transcript then gene. Blank
// lines are ignored; any other column count is an error. The file
// may be compressed.
func ReadGeneMap(ctx context.Context, path string) (m map[string]string, err error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer file.CloseAndReport(ctx, in, &err)
	var inr io.Reader = in.Reader(ctx)
	if u := compress.NewReaderPath(inr, in.Name()); u != nil {
		inr = u
	}
	m = map[string]string{}
	scanner := bufio.NewScanner(inr)
	n := 0
	for scanner.Scan() {
		n++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 2 {
			return nil, errors.Errorf("%s:%d: expected 'transcript gene', found %q", path, n, scanner.Text())
		}
		m[fields[0]] = fields[1]
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	return m, nil
}
