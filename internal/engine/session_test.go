package engine

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/genomelab/snp2vcf/internal/genotype"
	"github.com/genomelab/snp2vcf/internal/panel"
)

const sampleExport = `# This data file generated by 23andMe at: Sat Feb 21 09:55:11 2026
# rsid	chromosome	position	genotype
rs1	1	100	AA
rs2	1	200	AG
rs3	2	300	CC
rs4	X	400	T
`

func writeExport(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "genome.txt")
	require.NoError(t, os.WriteFile(path, []byte(sampleExport), 0o644))
	return path
}

func sessionPanel(t *testing.T) *panel.Panel {
	t.Helper()
	p := panel.New("1", "GRCh37/hg19", 1)
	require.NoError(t, p.Add(&panel.Entry{
		Chromosome: "1", Position: 200, Ref: 'A', Alt: 'G',
		SampleGenotypes: []string{"0/1"},
	}))
	return p
}

func TestNewSession(t *testing.T) {
	s, err := NewSession(writeExport(t))
	require.NoError(t, err)
	assert.Equal(t, 4, s.Genome().TotalSNPs())
}

func TestNewSessionMissingFile(t *testing.T) {
	s, err := NewSession(filepath.Join(t.TempDir(), "absent.txt"))
	assert.Error(t, err)
	assert.Nil(t, s)
}

func TestCapabilities(t *testing.T) {
	g, err := genotype.LoadFromReader(strings.NewReader(sampleExport), zap.NewNop())
	require.NoError(t, err)

	degraded := NewSessionFromGenome(g).Capabilities()
	assert.False(t, degraded.ReferenceGuidedExport)
	assert.True(t, degraded.DegradedExport)
	assert.True(t, degraded.BlockCompression)

	guided := NewSessionFromGenome(g, WithPanel(sessionPanel(t))).Capabilities()
	assert.True(t, guided.ReferenceGuidedExport)
}

func TestLookupSNP(t *testing.T) {
	s, err := NewSession(writeExport(t))
	require.NoError(t, err)

	snp := s.LookupSNP("rs2")
	require.NotNil(t, snp)
	assert.Equal(t, "AG", snp.Genotype)
	assert.Nil(t, s.LookupSNP("rs999"))
}

func TestSummarize(t *testing.T) {
	s, err := NewSession(writeExport(t))
	require.NoError(t, err)

	summary := s.Summarize()
	assert.Equal(t, 4, summary.TotalSNPs)
	assert.Equal(t, 2, summary.ChromosomeCounts["1"])
}

func TestChromosomeStats(t *testing.T) {
	s, err := NewSession(writeExport(t))
	require.NoError(t, err)

	cs := s.ChromosomeStats("chr1")
	assert.Equal(t, "1", cs.Chromosome)
	assert.Equal(t, 2, cs.TotalSNPs)
	assert.Equal(t, 1, cs.HeterozygousCount)
	assert.InDelta(t, 0.5, cs.HeterozygosityRate, 1e-9)

	empty := s.ChromosomeStats("7")
	assert.Equal(t, 0, empty.TotalSNPs)
	assert.Equal(t, 0.0, empty.HeterozygosityRate)
}

func TestPanelStats(t *testing.T) {
	g, err := genotype.LoadFromReader(strings.NewReader(sampleExport), zap.NewNop())
	require.NoError(t, err)

	_, err = NewSessionFromGenome(g).PanelStats()
	assert.Error(t, err)

	ps, err := NewSessionFromGenome(g, WithPanel(sessionPanel(t))).PanelStats()
	require.NoError(t, err)
	assert.Equal(t, 1, ps.EntryCount)
}

func TestGenerateVCF(t *testing.T) {
	s, err := NewSession(writeExport(t), WithPanel(sessionPanel(t)), WithSampleName("alice"))
	require.NoError(t, err)

	r := s.GenerateVCF("1")
	assert.True(t, r.ImputationReady)
	// rs2 matches the panel entry; rs1 has none.
	assert.Equal(t, 1, r.Stats.Emitted)
	assert.Equal(t, 1, r.Stats.NoPanelMatch)
	assert.Contains(t, r.Text, "\talice\n")
	assert.Contains(t, r.Text, "rs2")
	assert.NotContains(t, r.Text, "rs3")
}

func TestGenerateAll(t *testing.T) {
	s, err := NewSession(writeExport(t))
	require.NoError(t, err)

	results := s.GenerateAll(context.Background())
	require.Len(t, results, 22)
	assert.Contains(t, results["1"].Text, "rs1")
	assert.Contains(t, results["2"].Text, "rs3")
	// X is outside the autosome batch.
	assert.NotContains(t, results, "X")
}

func TestGenerateAllCancelled(t *testing.T) {
	s, err := NewSession(writeExport(t))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Empty(t, s.GenerateAll(ctx))
}
