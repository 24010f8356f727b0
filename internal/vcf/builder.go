package vcf

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/genomelab/snp2vcf/internal/genotype"
	"github.com/genomelab/snp2vcf/internal/panel"
)

// DefaultSampleName labels the user's sample column when the caller
// supplies none.
const DefaultSampleName = "SAMPLE"

// BuildStats counts per-record outcomes of one chromosome build.
type BuildStats struct {
	// Emitted is the number of records written.
	Emitted int
	// NoPanelMatch counts SNPs excluded because no panel entry exists
	// at their position. Emitting them would risk an undetected allele
	// switch against the imputation reference.
	NoPanelMatch int
	// NonBiallelic counts panel sites without a clean single-base
	// REF/ALT pair.
	NonBiallelic int
	// AlleleMismatch counts calls carrying an allele that is neither
	// the panel REF nor ALT; their GT is emitted as missing.
	AlleleMismatch int
	// DuplicatePosition counts records dropped to keep positions
	// strictly increasing.
	DuplicatePosition int
}

// Result is the output of one chromosome build.
type Result struct {
	Chromosome string
	Text       string
	// ImputationReady is false when the output was produced without a
	// reference panel and must not be uploaded for imputation.
	ImputationReady bool
	Stats           BuildStats
}

// Builder joins a genome store against a reference panel and emits
// per-chromosome VCF text. Stateless between Build calls; safe for
// concurrent use once configured.
type Builder struct {
	genome     *genotype.Genome
	panel      *panel.Panel
	sampleName string
	logger     *zap.Logger

	// now stamps the header fileDate; overridable in tests.
	now func() time.Time
}

// NewBuilder creates a builder. A nil panel selects the degraded mode:
// VCF text is still produced, with REF/ALT inferred from the raw
// genotype, but flagged as unsuitable for imputation.
func NewBuilder(g *genotype.Genome, p *panel.Panel) *Builder {
	return &Builder{
		genome:     g,
		panel:      p,
		sampleName: DefaultSampleName,
		logger:     zap.NewNop(),
		now:        time.Now,
	}
}

// SetSampleName sets the user's sample column label.
func (b *Builder) SetSampleName(name string) {
	if name != "" {
		b.sampleName = name
	}
}

// SetLogger sets the logger for per-build diagnostics.
func (b *Builder) SetLogger(l *zap.Logger) {
	b.logger = l
}

// ReferenceGuided reports whether builds use a loaded reference panel.
func (b *Builder) ReferenceGuided() bool {
	return b.panel != nil
}

// Build produces the VCF text for one chromosome. An unrecognized
// chromosome or one with no retained SNPs yields a valid header-only
// file, not an error.
func (b *Builder) Build(chrom string) *Result {
	chrom = genotype.NormalizeChrom(chrom)

	var records []*Record
	stats := BuildStats{}
	if b.panel != nil {
		records = b.buildGuided(chrom, &stats)
	} else {
		records = b.buildDegraded(chrom, &stats)
	}

	// Stable sort by position; input order breaks ties before
	// duplicates are dropped.
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Position < records[j].Position
	})

	var out strings.Builder
	build := b.genome.Metadata().Build
	if b.panel != nil {
		build = b.panel.Build()
	}
	anonymous := 0
	if b.panel != nil {
		anonymous = b.panel.SampleCount()
	}
	writeHeader(&out, chrom, build, b.now(), sampleNames(anonymous, b.sampleName), b.panel != nil)

	lastPos := uint64(0)
	for _, rec := range records {
		if stats.Emitted > 0 && rec.Position == lastPos {
			stats.DuplicatePosition++
			continue
		}
		rec.WriteTo(&out)
		lastPos = rec.Position
		stats.Emitted++
	}

	b.logger.Debug("chromosome build finished",
		zap.String("chrom", chrom),
		zap.Int("emitted", stats.Emitted),
		zap.Int("no_panel_match", stats.NoPanelMatch),
		zap.Int("non_biallelic", stats.NonBiallelic),
		zap.Int("allele_mismatch", stats.AlleleMismatch))

	return &Result{
		Chromosome:      chrom,
		Text:            out.String(),
		ImputationReady: b.panel != nil,
		Stats:           stats,
	}
}

// buildGuided joins SNPs against the reference panel. REF/ALT always
// come from the panel entry, never from the raw genotype; SNPs without
// a panel entry are excluded outright.
func (b *Builder) buildGuided(chrom string, stats *BuildStats) []*Record {
	snps := b.genome.SNPsForChromosome(chrom)
	info := "NS=" + strconv.Itoa(b.panel.SampleCount()+1)

	var records []*Record
	for _, snp := range snps {
		entry, ok := b.panel.Lookup(chrom, snp.Position)
		if !ok {
			stats.NoPanelMatch++
			continue
		}
		if !entry.Biallelic() {
			stats.NonBiallelic++
			continue
		}

		gt, mismatch := classifyGenotype(snp.Genotype, entry.Ref, entry.Alt)
		if mismatch {
			stats.AlleleMismatch++
		}

		samples := make([]string, 0, len(entry.SampleGenotypes)+1)
		samples = append(samples, entry.SampleGenotypes...)
		samples = append(samples, gt)

		records = append(records, &Record{
			Chromosome: chrom,
			Position:   snp.Position,
			ID:         snp.Rsid,
			Ref:        string(entry.Ref),
			Alt:        string(entry.Alt),
			Qual:       ".",
			Filter:     "PASS",
			Info:       info,
			Format:     "GT",
			Samples:    samples,
		})
	}
	return records
}

// buildDegraded emits records without panel guidance: the raw genotype
// supplies the alleles (homozygous calls become REF with no ALT,
// heterozygous calls take the first allele as REF). Only the user's
// sample column is present.
func (b *Builder) buildDegraded(chrom string, stats *BuildStats) []*Record {
	var records []*Record
	for _, snp := range b.genome.SNPsForChromosome(chrom) {
		if snp.IsNoCall() || len(snp.Genotype) != 2 {
			continue
		}
		a1, a2 := snp.Genotype[0], snp.Genotype[1]

		ref, alt, gt := string(a1), ".", "0/0"
		if a1 != a2 {
			alt, gt = string(a2), "0/1"
		}
		records = append(records, &Record{
			Chromosome: chrom,
			Position:   snp.Position,
			ID:         snp.Rsid,
			Ref:        ref,
			Alt:        alt,
			Qual:       ".",
			Filter:     "PASS",
			Info:       "NS=1",
			Format:     "GT",
			Samples:    []string{gt},
		})
	}
	return records
}

// classifyGenotype maps a raw two-character call onto the panel's
// REF/ALT pair. No-calls, indels, and short calls give a missing GT.
// An allele matching neither REF nor ALT also gives a missing GT and
// reports a mismatch; an allele is never invented to force a fit.
func classifyGenotype(genotype string, ref, alt byte) (string, bool) {
	if len(genotype) != 2 {
		return "./.", false
	}

	altCount := 0
	for i := 0; i < 2; i++ {
		switch genotype[i] {
		case ref:
		case alt:
			altCount++
		case '-', 'I', 'D':
			return "./.", false
		default:
			return "./.", true
		}
	}

	switch altCount {
	case 0:
		return "0/0", false
	case 1:
		return "0/1", false
	default:
		return "1/1", false
	}
}
