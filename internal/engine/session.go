// Package engine exposes the analysis session consumed by surrounding
// tooling: one loaded genome, an optional shared reference panel, and
// the operations defined over them. The engine itself holds no state
// between calls beyond the immutable panel.
package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/genomelab/snp2vcf/internal/export"
	"github.com/genomelab/snp2vcf/internal/genotype"
	"github.com/genomelab/snp2vcf/internal/panel"
	"github.com/genomelab/snp2vcf/internal/stats"
	"github.com/genomelab/snp2vcf/internal/vcf"
)

// Capabilities describes which export operations a session supports,
// so callers can probe features instead of discovering missing ones at
// call time.
type Capabilities struct {
	// ReferenceGuidedExport is true when a reference panel is loaded
	// and VCF output is imputation-ready.
	ReferenceGuidedExport bool
	// DegradedExport is always available: VCF without panel-verified
	// alleles, flagged as not import-ready.
	DegradedExport bool
	// BlockCompression reports block-gzip container support.
	BlockCompression bool
}

// Session owns one genome analysis: created on file load, discarded at
// the end of the session. The reference panel is shared and read-only.
type Session struct {
	genome     *genotype.Genome
	panel      *panel.Panel
	sampleName string
	logger     *zap.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithPanel attaches a loaded reference panel.
func WithPanel(p *panel.Panel) Option {
	return func(s *Session) { s.panel = p }
}

// WithSampleName sets the user's sample label in VCF output.
func WithSampleName(name string) Option {
	return func(s *Session) { s.sampleName = name }
}

// WithLogger sets the session logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// NewSession starts a session by loading a genotyping export.
// An unreadable file is a hard failure: no session is produced.
func NewSession(path string, opts ...Option) (*Session, error) {
	s := &Session{sampleName: vcf.DefaultSampleName, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}

	g, err := genotype.Load(path, s.logger)
	if err != nil {
		return nil, err
	}
	s.genome = g
	return s, nil
}

// NewSessionFromGenome starts a session over an already-loaded genome.
func NewSessionFromGenome(g *genotype.Genome, opts ...Option) *Session {
	s := &Session{
		genome:     g,
		sampleName: vcf.DefaultSampleName,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Capabilities returns the operations available to this session.
func (s *Session) Capabilities() Capabilities {
	return Capabilities{
		ReferenceGuidedExport: s.panel != nil,
		DegradedExport:        true,
		BlockCompression:      true,
	}
}

// Genome returns the session's genome store.
func (s *Session) Genome() *genotype.Genome {
	return s.genome
}

// PanelStats returns the loaded panel's statistics.
func (s *Session) PanelStats() (panel.Stats, error) {
	if s.panel == nil {
		return panel.Stats{}, fmt.Errorf("no reference panel loaded")
	}
	return s.panel.Stats(), nil
}

// Summarize computes the genome's summary statistics.
func (s *Session) Summarize() *stats.Summary {
	return stats.NewAnalyzer(s.genome).Summarize()
}

// LookupSNP finds a SNP by rsid, or nil.
func (s *Session) LookupSNP(rsid string) *genotype.SNP {
	return s.genome.FindByRsid(rsid)
}

// ChromosomeStats summarizes one chromosome.
type ChromosomeStats struct {
	Chromosome         string
	TotalSNPs          int
	HeterozygousCount  int
	HeterozygosityRate float64
}

// ChromosomeStats computes per-chromosome counts and heterozygosity.
func (s *Session) ChromosomeStats(chrom string) ChromosomeStats {
	snps := s.genome.SNPsForChromosome(chrom)
	het := 0
	for _, snp := range snps {
		if snp.IsHeterozygous() {
			het++
		}
	}
	cs := ChromosomeStats{
		Chromosome:        genotype.NormalizeChrom(chrom),
		TotalSNPs:         len(snps),
		HeterozygousCount: het,
	}
	if len(snps) > 0 {
		cs.HeterozygosityRate = float64(het) / float64(len(snps))
	}
	return cs
}

// builder assembles a configured VCF builder for this session.
func (s *Session) builder() *vcf.Builder {
	b := vcf.NewBuilder(s.genome, s.panel)
	b.SetSampleName(s.sampleName)
	b.SetLogger(s.logger)
	return b
}

// GenerateVCF builds one chromosome's VCF text.
func (s *Session) GenerateVCF(chrom string) *vcf.Result {
	return s.builder().Build(chrom)
}

// GenerateAll builds VCF output for chromosomes 1-22 in parallel.
// Cancelling ctx omits not-yet-started chromosomes from the result.
func (s *Session) GenerateAll(ctx context.Context) map[string]*vcf.Result {
	d := export.NewDriver(s.builder(), 0)
	d.SetLogger(s.logger)
	return d.GenerateAll(ctx)
}
