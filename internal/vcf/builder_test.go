package vcf

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/genomelab/snp2vcf/internal/genotype"
	"github.com/genomelab/snp2vcf/internal/panel"
)

func loadGenome(t *testing.T, input string) *genotype.Genome {
	t.Helper()
	g, err := genotype.LoadFromReader(strings.NewReader(input), zap.NewNop())
	require.NoError(t, err)
	return g
}

func testPanel(t *testing.T) *panel.Panel {
	t.Helper()
	p := panel.New("1", "GRCh37/hg19", 2)
	entries := []*panel.Entry{
		{Chromosome: "1", Position: 100000, Ref: 'A', Alt: 'G',
			SampleGenotypes: []string{"0/0", "0/1"}},
		{Chromosome: "1", Position: 300000, Ref: 'C', Alt: 'T',
			SampleGenotypes: []string{"1/1", "./."}},
		{Chromosome: "1", Position: 400000, Ref: 'G', Alt: 'G', // not biallelic
			SampleGenotypes: []string{"0/0", "0/0"}},
		{Chromosome: "2", Position: 50000, Ref: 'T', Alt: 'C',
			SampleGenotypes: []string{"0/1", "0/1"}},
	}
	for _, e := range entries {
		require.NoError(t, p.Add(e))
	}
	return p
}

func fixedBuilder(g *genotype.Genome, p *panel.Panel) *Builder {
	b := NewBuilder(g, p)
	b.now = func() time.Time {
		return time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	}
	return b
}

// dataLines strips the header and returns the record lines.
func dataLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}

func TestBuildHeterozygousAgainstPanel(t *testing.T) {
	g := loadGenome(t, "rs123\t1\t100000\tAG\n")
	result := fixedBuilder(g, testPanel(t)).Build("1")

	require.True(t, result.ImputationReady)
	lines := dataLines(result.Text)
	require.Len(t, lines, 1)

	fields := strings.Split(lines[0], "\t")
	require.Len(t, fields, 12) // 9 fixed columns + 2 anonymous + user
	assert.Equal(t, "1", fields[0])
	assert.Equal(t, "100000", fields[1])
	assert.Equal(t, "rs123", fields[2])
	assert.Equal(t, "A", fields[3])
	assert.Equal(t, "G", fields[4])
	assert.Equal(t, ".", fields[5])
	assert.Equal(t, "PASS", fields[6])
	assert.Equal(t, "NS=3", fields[7])
	assert.Equal(t, "GT", fields[8])
	assert.Equal(t, "0/0", fields[9])  // anonymous-1, pre-stored
	assert.Equal(t, "0/1", fields[10]) // anonymous-2, pre-stored
	assert.Equal(t, "0/1", fields[11]) // user call AG against A/G
}

func TestBuildGenotypeClassification(t *testing.T) {
	tests := []struct {
		name     string
		genotype string
		wantGT   string
	}{
		{"hom ref", "AA", "0/0"},
		{"het", "AG", "0/1"},
		{"het swapped order", "GA", "0/1"},
		{"hom alt", "GG", "1/1"},
		{"no-call", "--", "./."},
		{"indel", "ID", "./."},
		{"single char", "A", "./."},
		{"mismatching allele", "AT", "./."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := loadGenome(t, "rs123\t1\t100000\t"+tt.genotype+"\n")
			result := fixedBuilder(g, testPanel(t)).Build("1")

			lines := dataLines(result.Text)
			require.Len(t, lines, 1)
			fields := strings.Split(lines[0], "\t")
			assert.Equal(t, tt.wantGT, fields[11])
		})
	}
}

func TestBuildMismatchCounted(t *testing.T) {
	// T matches neither panel REF A nor ALT G.
	g := loadGenome(t, "rs123\t1\t100000\tAT\n")
	result := fixedBuilder(g, testPanel(t)).Build("1")

	assert.Equal(t, 1, result.Stats.AlleleMismatch)
	assert.Equal(t, 1, result.Stats.Emitted)
}

func TestBuildExcludesSNPsAbsentFromPanel(t *testing.T) {
	g := loadGenome(t, "rs124\t1\t200000\tCC\n")
	result := fixedBuilder(g, testPanel(t)).Build("1")

	assert.Empty(t, dataLines(result.Text))
	assert.Equal(t, 1, result.Stats.NoPanelMatch)
	assert.Equal(t, 0, result.Stats.Emitted)
	assert.NotContains(t, result.Text, "rs124")
}

func TestBuildExcludesNonBiallelicSites(t *testing.T) {
	g := loadGenome(t, "rs1\t1\t400000\tGG\n")
	result := fixedBuilder(g, testPanel(t)).Build("1")

	assert.Empty(t, dataLines(result.Text))
	assert.Equal(t, 1, result.Stats.NonBiallelic)
}

func TestBuildEmptyGenomeHeaderOnly(t *testing.T) {
	g := loadGenome(t, "")
	result := fixedBuilder(g, testPanel(t)).Build("1")

	assert.Empty(t, dataLines(result.Text))
	assert.True(t, strings.HasPrefix(result.Text, "##fileformat=VCFv4.2\n"))
	assert.Contains(t, result.Text, "#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT")
}

func TestBuildUnrecognizedChromosome(t *testing.T) {
	g := loadGenome(t, "rs123\t1\t100000\tAG\n")
	result := fixedBuilder(g, testPanel(t)).Build("17q")

	assert.Empty(t, dataLines(result.Text))
}

func TestBuildHeader(t *testing.T) {
	g := loadGenome(t, "rs123\t1\t100000\tAG\n")
	b := fixedBuilder(g, testPanel(t))
	b.SetSampleName("alice")
	result := b.Build("1")

	lines := strings.Split(result.Text, "\n")
	assert.Equal(t, "##fileformat=VCFv4.2", lines[0])
	assert.Equal(t, "##fileDate=20260314", lines[1])
	assert.Contains(t, result.Text, "##reference=GRCh37/hg19\n")
	assert.Contains(t, result.Text, "##contig=<ID=1>\n")
	assert.Contains(t, result.Text, "##INFO=<ID=NS,")
	assert.Contains(t, result.Text, "##FORMAT=<ID=GT,")
	assert.Contains(t, result.Text, "##FILTER=<ID=PASS,")
	assert.Contains(t, result.Text,
		"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT\tanonymous-1\tanonymous-2\talice\n")
	assert.NotContains(t, result.Text, "##note=")
}

func TestBuildOrderedByPosition(t *testing.T) {
	// Input arrives out of order; output must be strictly increasing.
	g := loadGenome(t, "rs3\t1\t300000\tCC\nrs1\t1\t100000\tAA\n")
	result := fixedBuilder(g, testPanel(t)).Build("1")

	lines := dataLines(result.Text)
	require.Len(t, lines, 2)

	var prev uint64
	for i, line := range lines {
		fields := strings.Split(line, "\t")
		pos, err := strconv.ParseUint(fields[1], 10, 64)
		require.NoError(t, err)
		if i > 0 {
			assert.Greater(t, pos, prev)
		}
		prev = pos
	}
}

func TestBuildDropsDuplicatePositions(t *testing.T) {
	// Distinct rsids at the same position: only the first survives.
	g := loadGenome(t, "rs123\t1\t100000\tAG\nrs999\t1\t100000\tAA\n")
	result := fixedBuilder(g, testPanel(t)).Build("1")

	lines := dataLines(result.Text)
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "rs123")
	assert.Equal(t, 1, result.Stats.DuplicatePosition)
}

func TestBuildDegradedMode(t *testing.T) {
	g := loadGenome(t, "rs1\t1\t100\tAA\nrs2\t1\t200\tAG\nrs3\t1\t300\t--\n")
	result := fixedBuilder(g, nil).Build("1")

	require.False(t, result.ImputationReady)
	assert.Contains(t, result.Text, "##note=")
	assert.Contains(t, result.Text,
		"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT\tSAMPLE\n")

	lines := dataLines(result.Text)
	require.Len(t, lines, 2) // the no-call line is dropped

	hom := strings.Split(lines[0], "\t")
	assert.Equal(t, "A", hom[3])
	assert.Equal(t, ".", hom[4])
	assert.Equal(t, "0/0", hom[9])

	het := strings.Split(lines[1], "\t")
	assert.Equal(t, "A", het[3])
	assert.Equal(t, "G", het[4])
	assert.Equal(t, "0/1", het[9])
}

func TestBuildChromosomeFilter(t *testing.T) {
	g := loadGenome(t, "rs123\t1\t100000\tAG\nrs200\t2\t50000\tTC\n")
	result := fixedBuilder(g, testPanel(t)).Build("2")

	lines := dataLines(result.Text)
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "rs200")
	assert.NotContains(t, result.Text, "rs123")
}
