package genotype

import (
	"fmt"
	"io"

	"go.uber.org/zap"
)

// Genome is the in-memory store for one analysis session: the parsed
// SNPs plus header metadata. Read-only after Load returns.
type Genome struct {
	snps     []*SNP
	metadata Metadata
	warnings int

	// byRsid is built once at load time for O(1) lookups.
	byRsid map[string]*SNP
}

// Load reads an entire genotyping export into a Genome.
// Malformed lines are skipped with a warning count; an unreadable file
// is a hard failure and no Genome is produced.
func Load(path string, logger *zap.Logger) (*Genome, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	p, err := NewParser(path)
	if err != nil {
		return nil, err
	}
	defer p.Close()
	p.SetLogger(logger)

	g, err := readAll(p)
	if err != nil {
		return nil, err
	}
	logger.Info("genome loaded",
		zap.String("path", path),
		zap.Int("snps", len(g.snps)),
		zap.Int("skipped_lines", g.warnings))
	return g, nil
}

// LoadFromReader reads a genotyping export from a stream.
func LoadFromReader(r io.Reader, logger *zap.Logger) (*Genome, error) {
	p := NewParserFromReader(r)
	if logger != nil {
		p.SetLogger(logger)
	}
	return readAll(p)
}

func readAll(p *Parser) (*Genome, error) {
	g := &Genome{byRsid: make(map[string]*SNP)}
	for {
		snp, err := p.Next()
		if err != nil {
			return nil, fmt.Errorf("load genome: %w", err)
		}
		if snp == nil {
			break
		}
		if _, dup := g.byRsid[snp.Rsid]; dup {
			// rsids are unique within a store; later duplicates lose
			p.warnings++
			continue
		}
		g.snps = append(g.snps, snp)
		g.byRsid[snp.Rsid] = snp
	}
	g.metadata = p.Metadata()
	g.warnings = p.Warnings()
	return g, nil
}

// FindByRsid returns the SNP with the given rsid, or nil.
func (g *Genome) FindByRsid(rsid string) *SNP {
	return g.byRsid[rsid]
}

// SNPsForChromosome returns the SNPs on one chromosome, in file order.
func (g *Genome) SNPsForChromosome(chrom string) []*SNP {
	chrom = NormalizeChrom(chrom)
	var out []*SNP
	for _, s := range g.snps {
		if s.Chromosome == chrom {
			out = append(out, s)
		}
	}
	return out
}

// SNPs returns all SNPs in file order. Callers must not mutate.
func (g *Genome) SNPs() []*SNP {
	return g.snps
}

// ChromosomeCounts returns the number of SNPs per chromosome.
// Empty store yields an empty mapping.
func (g *Genome) ChromosomeCounts() map[string]int {
	counts := make(map[string]int)
	for _, s := range g.snps {
		counts[s.Chromosome]++
	}
	return counts
}

// HeterozygosityRate is the fraction of two-character genotypes whose
// alleles differ. Returns 0 when no SNP has a two-character genotype.
func (g *Genome) HeterozygosityRate() float64 {
	var het, called int
	for _, s := range g.snps {
		if len(s.Genotype) != 2 {
			continue
		}
		called++
		if s.Genotype[0] != s.Genotype[1] {
			het++
		}
	}
	if called == 0 {
		return 0
	}
	return float64(het) / float64(called)
}

// TotalSNPs returns the number of stored SNPs.
func (g *Genome) TotalSNPs() int {
	return len(g.snps)
}

// Warnings returns the number of input lines skipped during load.
func (g *Genome) Warnings() int {
	return g.warnings
}

// Metadata returns the header metadata parsed from the input file.
func (g *Genome) Metadata() Metadata {
	return g.metadata
}
