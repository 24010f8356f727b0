package genotype

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleExport = `# file_id: test-123
# signature: abc123
# timestamp: 2025-10-07 12:00:00
#
# rsid	chromosome	position	genotype
rs548049170	1	69869	TT
rs2	1	200	AG
rs3	2	300	--
rs4	X	400	GC
rs5	MT	500	A
`

func parseAll(t *testing.T, input string) ([]*SNP, *Parser) {
	t.Helper()
	p := NewParserFromReader(strings.NewReader(input))
	var snps []*SNP
	for {
		snp, err := p.Next()
		require.NoError(t, err)
		if snp == nil {
			break
		}
		snps = append(snps, snp)
	}
	return snps, p
}

func TestParserBasic(t *testing.T) {
	snps, p := parseAll(t, sampleExport)

	require.Len(t, snps, 5)
	assert.Equal(t, "rs548049170", snps[0].Rsid)
	assert.Equal(t, "1", snps[0].Chromosome)
	assert.Equal(t, uint64(69869), snps[0].Position)
	assert.Equal(t, "TT", snps[0].Genotype)
	assert.Equal(t, 0, p.Warnings())
}

func TestParserMetadata(t *testing.T) {
	_, p := parseAll(t, sampleExport)

	md := p.Metadata()
	assert.Equal(t, "test-123", md.FileID)
	assert.Equal(t, "abc123", md.Signature)
	assert.Equal(t, "2025-10-07 12:00:00", md.Timestamp)
	assert.Equal(t, DefaultBuild, md.Build)
}

func TestParserBuildDetection(t *testing.T) {
	input := "# positions are based on build 38 coordinates\nrs1\t1\t100\tAA\n"
	_, p := parseAll(t, input)
	assert.Equal(t, "GRCh38/hg38", p.Metadata().Build)
}

func TestParserMalformedLines(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"missing field", "rs1\t1\t100"},
		{"non-numeric position", "rs1\t1\tabc\tAA"},
		{"invalid genotype alphabet", "rs1\t1\t100\tAZ"},
		{"genotype too long", "rs1\t1\t100\tAAA"},
		{"too many fields", "rs1\t1\t100\tAA\textra"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := tt.line + "\nrs2\t2\t200\tGG\n"
			snps, p := parseAll(t, input)

			// The bad line is skipped, the good line still loads.
			require.Len(t, snps, 1)
			assert.Equal(t, "rs2", snps[0].Rsid)
			assert.Equal(t, 1, p.Warnings())
		})
	}
}

func TestParserSkipsBlankLinesAndComments(t *testing.T) {
	input := "# comment\n\nrs1\t1\t100\tAA\n\n# trailing comment\nrs2\t2\t200\tTT\n"
	snps, p := parseAll(t, input)

	assert.Len(t, snps, 2)
	assert.Equal(t, 0, p.Warnings())
}

func TestParserNoTrailingNewline(t *testing.T) {
	snps, _ := parseAll(t, "rs1\t1\t100\tAA")
	require.Len(t, snps, 1)
	assert.Equal(t, "rs1", snps[0].Rsid)
}

func TestParserEmptyGenotype(t *testing.T) {
	snps, p := parseAll(t, "rs1\t1\t100\t\n")
	require.Len(t, snps, 1)
	assert.Equal(t, "", snps[0].Genotype)
	assert.Equal(t, 0, p.Warnings())
}

func TestParserChromNormalization(t *testing.T) {
	snps, _ := parseAll(t, "rs1\tchr7\t100\tAA\nrs2\tM\t200\tTT\n")
	require.Len(t, snps, 2)
	assert.Equal(t, "7", snps[0].Chromosome)
	assert.Equal(t, "MT", snps[1].Chromosome)
}

func TestNewParserGzipInput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "genome.txt.gz")

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(sampleExport))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	p, err := NewParser(path)
	require.NoError(t, err)
	defer p.Close()

	snp, err := p.Next()
	require.NoError(t, err)
	require.NotNil(t, snp)
	assert.Equal(t, "rs548049170", snp.Rsid)
}

func TestNewParserMissingFile(t *testing.T) {
	_, err := NewParser(filepath.Join(t.TempDir(), "nope.txt"))
	require.Error(t, err)
}

func TestParseErrorMessage(t *testing.T) {
	err := &ParseError{Line: 7, Message: "boom"}
	assert.Contains(t, err.Error(), "line 7")
	assert.Contains(t, err.Error(), "boom")
}
