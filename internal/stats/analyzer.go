// Package stats computes population-genetics summary statistics over a
// loaded genome store.
package stats

import (
	"fmt"
	"sort"
	"strings"

	"github.com/genomelab/snp2vcf/internal/genotype"
)

// Analyzer derives summary statistics from a genome store.
type Analyzer struct {
	genome *genotype.Genome
}

// NewAnalyzer creates an analyzer over a loaded genome.
func NewAnalyzer(g *genotype.Genome) *Analyzer {
	return &Analyzer{genome: g}
}

// AlleleFrequencies returns the relative frequency of each called base
// over {A,C,G,T}. No-call, insertion, and deletion markers are ignored.
// An empty genome yields an empty map.
func (a *Analyzer) AlleleFrequencies() map[byte]float64 {
	counts := make(map[byte]int)
	total := 0
	for _, s := range a.genome.SNPs() {
		for i := 0; i < len(s.Genotype); i++ {
			switch b := s.Genotype[i]; b {
			case 'A', 'C', 'G', 'T':
				counts[b]++
				total++
			}
		}
	}

	freqs := make(map[byte]float64, len(counts))
	for b, n := range counts {
		freqs[b] = float64(n) / float64(total)
	}
	return freqs
}

// isTransition reports whether an allele pair is a purine-purine or
// pyrimidine-pyrimidine substitution (A<->G, C<->T).
func isTransition(a, b byte) bool {
	switch {
	case a == 'A' && b == 'G', a == 'G' && b == 'A':
		return true
	case a == 'C' && b == 'T', a == 'T' && b == 'C':
		return true
	}
	return false
}

// TsTvRatio returns the transition/transversion ratio over heterozygous
// SNPs. Homozygous calls carry no substitution signal and are excluded.
// Returns 0 when there are no transversions.
func (a *Analyzer) TsTvRatio() float64 {
	var ts, tv int
	for _, s := range a.genome.SNPs() {
		if !s.IsHeterozygous() || s.IsNoCall() {
			continue
		}
		if isTransition(s.Genotype[0], s.Genotype[1]) {
			ts++
		} else {
			tv++
		}
	}
	if tv == 0 {
		return 0
	}
	return float64(ts) / float64(tv)
}

// Summary aggregates the headline statistics for one genome.
type Summary struct {
	TotalSNPs          int
	HeterozygosityRate float64
	TsTvRatio          float64
	AlleleFrequencies  map[byte]float64
	ChromosomeCounts   map[string]int
}

// Summarize computes the full summary for the analyzer's genome.
func (a *Analyzer) Summarize() *Summary {
	return &Summary{
		TotalSNPs:          a.genome.TotalSNPs(),
		HeterozygosityRate: a.genome.HeterozygosityRate(),
		TsTvRatio:          a.TsTvRatio(),
		AlleleFrequencies:  a.AlleleFrequencies(),
		ChromosomeCounts:   a.genome.ChromosomeCounts(),
	}
}

// String renders the summary as a human-readable report.
func (s *Summary) String() string {
	var b strings.Builder
	b.WriteString("Genome Data Summary\n")
	b.WriteString("===================\n\n")
	fmt.Fprintf(&b, "Total SNPs: %d\n", s.TotalSNPs)
	fmt.Fprintf(&b, "Heterozygosity Rate: %.4f (%.2f%%)\n",
		s.HeterozygosityRate, s.HeterozygosityRate*100)
	fmt.Fprintf(&b, "Transition/Transversion Ratio: %.4f\n\n", s.TsTvRatio)

	b.WriteString("Allele Frequencies:\n")
	bases := make([]byte, 0, len(s.AlleleFrequencies))
	for base := range s.AlleleFrequencies {
		bases = append(bases, base)
	}
	sort.Slice(bases, func(i, j int) bool {
		return s.AlleleFrequencies[bases[i]] > s.AlleleFrequencies[bases[j]]
	})
	for _, base := range bases {
		f := s.AlleleFrequencies[base]
		fmt.Fprintf(&b, "  %c: %.4f (%.2f%%)\n", base, f, f*100)
	}

	b.WriteString("\nSNPs per Chromosome:\n")
	chroms := make([]string, 0, len(s.ChromosomeCounts))
	for chrom := range s.ChromosomeCounts {
		chroms = append(chroms, chrom)
	}
	sort.Slice(chroms, func(i, j int) bool {
		return genotype.CompareChroms(chroms[i], chroms[j]) < 0
	})
	for _, chrom := range chroms {
		fmt.Fprintf(&b, "  Chr %s: %d\n", chrom, s.ChromosomeCounts[chrom])
	}
	return b.String()
}
