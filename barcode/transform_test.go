package barcode

import (
	"context"
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/grailbio/testutil"
	"github.com/grailbio/umicount/encoding/fastq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTransform(t *testing.T, dir, body string) string {
	path := filepath.Join(dir, "transform.json")
	require.NoError(t, ioutil.WriteFile(path, []byte(body), 0644))
	return path
}

// cellseqTransform splits the barcode read into CB and MB and takes
// name, sequence and quality from the cDNA read.
const cellseqTransform = `{
	"read1": "(?P<name>@[^\\s]+).*\n(?P<CB>.{6})(?P<MB>.{4}).*\n\\+.*\n.*\n",
	"read2": "@[^\\s]+.*\n(?P<seq>.*)\n\\+.*\n(?P<qual>.*)\n"
}`

func TestTransformPaired(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	path := writeTransform(t, tempDir, cellseqTransform)
	tr, err := LoadTransform(context.Background(), path, true)
	require.NoError(t, err)

	r1 := &fastq.Read{
		ID:   "@pair1 1:N:0:ATCACG",
		Seq:  "GGTCCACCCTTT",
		Unk:  "+",
		Qual: "FFFFFFFFFFFF",
	}
	r2 := &fastq.Read{
		ID:   "@pair1 2:N:0:ATCACG",
		Seq:  "ATACAGGCCTGA",
		Unk:  "+",
		Qual: "AAAAAEEEEEEE",
	}
	out, ok, err := tr.Apply(r1, r2, "")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "@pair1:CELL_GGTCCA:UMI_CCCT", out.ID)
	assert.Equal(t, "ATACAGGCCTGA", out.Seq)
	assert.Equal(t, "+", out.Unk)
	assert.Equal(t, "AAAAAEEEEEEE", out.Qual)
}

func TestTransformSingle(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	path := writeTransform(t, tempDir, `{
	"read1": "(?P<name>@[^\\s]+).*\n(?P<CB>.{4})(?P<MB>.{4})(?P<seq>.*)\n\\+.*\n.{8}(?P<qual>.*)\n"
}`)
	tr, err := LoadTransform(context.Background(), path, false)
	require.NoError(t, err)

	r1 := &fastq.Read{
		ID:   "@single1",
		Seq:  "AAAATTTTGGCCGGCC",
		Unk:  "+",
		Qual: "FFFFFFFFEEEEEEEE",
	}
	out, ok, err := tr.Apply(r1, nil, "")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "@single1:CELL_AAAA:UMI_TTTT", out.ID)
	assert.Equal(t, "GGCCGGCC", out.Seq)
	assert.Equal(t, "EEEEEEEE", out.Qual)
}

func TestTransformNoMatch(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	path := writeTransform(t, tempDir, cellseqTransform)
	tr, err := LoadTransform(context.Background(), path, true)
	require.NoError(t, err)

	// The barcode read is too short for the CB/MB groups: the record
	// is dropped, not an error.
	r1 := &fastq.Read{ID: "@pair1", Seq: "GGT", Unk: "+", Qual: "FFF"}
	r2 := &fastq.Read{ID: "@pair1", Seq: "ATACAGGCCTGA", Unk: "+", Qual: "AAAAAEEEEEEE"}
	out, ok, err := tr.Apply(r1, r2, "")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, out)
}

func TestTransformDemuxedCB(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	path := writeTransform(t, tempDir, cellseqTransform)
	tr, err := LoadTransform(context.Background(), path, true)
	require.NoError(t, err)

	r1 := &fastq.Read{ID: "@pair1", Seq: "GGTCCACCCTTT", Unk: "+", Qual: "FFFFFFFFFFFF"}
	r2 := &fastq.Read{ID: "@pair1", Seq: "ATACAGGCCTGA", Unk: "+", Qual: "AAAAAEEEEEEE"}
	out, ok, err := tr.Apply(r1, r2, "PLATE7")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "@pair1:CELL_PLATE7:UMI_CCCT", out.ID)
}

func TestTransformUnboundGroup(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	// No qual group anywhere in the pattern set.
	path := writeTransform(t, tempDir, `{
	"read1": "(?P<name>@[^\\s]+).*\n(?P<CB>.{6})(?P<MB>.{4})(?P<seq>.*)\n\\+.*\n.*\n"
}`)
	tr, err := LoadTransform(context.Background(), path, false)
	require.NoError(t, err)

	r1 := &fastq.Read{ID: "@single1", Seq: "GGTCCACCCTTT", Unk: "+", Qual: "FFFFFFFFFFFF"}
	_, _, err = tr.Apply(r1, nil, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "qual")
}

func TestTransformBadPattern(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	path := writeTransform(t, tempDir, `{"read1": "(?P<name"}`)
	_, err := LoadTransform(context.Background(), path, false)
	require.Error(t, err)
}
