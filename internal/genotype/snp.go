// Package genotype provides parsing and in-memory storage for consumer
// genotyping exports (23andMe-style tab-separated SNP calls).
package genotype

import (
	"fmt"
	"strings"
)

// SNP is a single genotype call from a raw genotyping export.
// Immutable once parsed.
type SNP struct {
	// Rsid is the variant identifier (rsid or vendor-internal id).
	Rsid string
	// Chromosome is 1-22, X, Y, or MT.
	Chromosome string
	// Position is the one-based coordinate on the chromosome.
	Position uint64
	// Genotype is 0-2 characters from {A,C,G,T,-,I,D}.
	// "-" is a no-call, "I"/"D" mark insertions and deletions.
	Genotype string
}

// IsHeterozygous reports whether the two called alleles differ.
func (s *SNP) IsHeterozygous() bool {
	return len(s.Genotype) == 2 && s.Genotype[0] != s.Genotype[1]
}

// IsHomozygous reports whether both called alleles are identical.
func (s *SNP) IsHomozygous() bool {
	return len(s.Genotype) == 2 && s.Genotype[0] == s.Genotype[1]
}

// IsNoCall reports whether the genotype contains no usable base call.
func (s *SNP) IsNoCall() bool {
	if len(s.Genotype) == 0 {
		return true
	}
	for i := 0; i < len(s.Genotype); i++ {
		switch s.Genotype[i] {
		case '-', 'I', 'D':
			return true
		}
	}
	return false
}

func (s *SNP) String() string {
	return fmt.Sprintf("%s\t%s\t%d\t%s", s.Rsid, s.Chromosome, s.Position, s.Genotype)
}

// Chromosomes lists the recognized chromosome names in canonical order:
// 1-22, then X, Y, MT.
var Chromosomes = []string{
	"1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11",
	"12", "13", "14", "15", "16", "17", "18", "19", "20", "21", "22",
	"X", "Y", "MT",
}

// Autosomes lists chromosomes 1-22, the set covered by batch VCF export.
var Autosomes = Chromosomes[:22]

// NormalizeChrom strips a leading "chr" prefix and maps "M" to "MT".
func NormalizeChrom(chrom string) string {
	chrom = strings.TrimPrefix(chrom, "chr")
	if chrom == "M" {
		return "MT"
	}
	return chrom
}

// chromRank orders chromosomes 1-22 numerically, then X, Y, MT.
// Unrecognized names sort last, alphabetically.
func chromRank(chrom string) int {
	for i, c := range Chromosomes {
		if c == chrom {
			return i
		}
	}
	return len(Chromosomes)
}

// CompareChroms orders chromosome names canonically (1-22, X, Y, MT).
func CompareChroms(a, b string) int {
	ra, rb := chromRank(a), chromRank(b)
	if ra != rb {
		return ra - rb
	}
	return strings.Compare(a, b)
}

// validGenotype reports whether g is 0-2 characters from the
// 23andMe call alphabet.
func validGenotype(g string) bool {
	if len(g) > 2 {
		return false
	}
	for i := 0; i < len(g); i++ {
		switch g[i] {
		case 'A', 'C', 'G', 'T', '-', 'I', 'D':
		default:
			return false
		}
	}
	return true
}
